package cli

import "github.com/spf13/cobra"

func (a *app) newLangCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lang [code]",
		Short: "Show or set the interface language (BCP 47, e.g. tr, en-US)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				lang string
				err  error
			)
			if len(args) == 1 {
				lang, err = a.svc.SetLanguage(ctx, args[0])
			} else {
				lang, err = a.svc.Language(ctx)
			}
			if err != nil {
				return err
			}
			return a.print(map[string]string{"language": lang}, func() *Table {
				t := NewTable("LANGUAGE")
				t.AddRow(lang)
				return t
			})
		},
	}
}
