package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/eringen/duckblog/scaffold"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a starter site in a new directory",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			created, err := scaffold.Write(afero.NewOsFs(), dir, scaffold.Data{
				SiteName: scaffold.TitleFromDir(dir),
				Date:     time.Now().UTC().Format("2006-01-02"),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range created {
				fmt.Fprintf(out, "  created %s\n", f)
			}
			fmt.Fprintf(out, "\nNext steps:\n\n  cd %s\n  duckblog serve --config config.yaml --dev\n", dir)
			return nil
		},
	}
}
