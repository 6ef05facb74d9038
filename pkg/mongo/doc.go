// Package mongo opens MongoDB connections for stockroom.
//
// New connects and pings with retries driven by Config; NewWithDatabase returns
// a database handle directly. Healthcheck returns a ping check. The key-value
// adapter built on a collection lives in pkg/kvstore/mongostore.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//		return err
//	}
//	store := mongostore.New(db.Collection(cfg.Collection))
package mongo
