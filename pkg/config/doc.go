// Package config fills configuration structs from the environment.
//
// Fields are described with caarlos0/env tags; a .env file in the working
// directory, when present, is read once through godotenv before the first
// parse. Values already set in the process environment win over the file.
//
//	var cfg sqlitestore.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
