package main

import (
	"github.com/JonMunkholm/worldstats/internal/reconcile"
	"github.com/spf13/cobra"
)

func newNormalizeCommand(a *app) *cobra.Command {
	var aliases string

	cmd := &cobra.Command{
		Use:   "normalize NAME...",
		Short: "Show the canonical country name for each NAME",
		Example: `  worldstats normalize USA "Viet Nam" France
  worldstats normalize --aliases aliases.yaml "Republic of Korea"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("aliases") {
				a.cfg.Pipeline.AliasFile = aliases
			}

			table := reconcile.DefaultAliasTable()
			if a.cfg.Pipeline.AliasFile != "" {
				var err error
				if table, err = reconcile.LoadAliasFile(a.cfg.Pipeline.AliasFile); err != nil {
					return err
				}
			}
			n := reconcile.NewNormalizer(table)

			rows := make([][]string, len(args))
			for i, name := range args {
				rows[i] = []string{name, n.NormalizeString(name)}
			}
			return renderTable(cmd.OutOrStdout(), []string{"Name", "Canonical"}, rows)
		},
	}

	cmd.Flags().StringVar(&aliases, "aliases", "", "YAML country alias file")

	return cmd
}
