package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/spf13/cobra"
)

func newSourcesCommand(a *app) *cobra.Command {
	var (
		manifest string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the sources a run reads, in join order",
		Example: `  worldstats sources
  worldstats sources --sources sources.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sources") {
				a.cfg.Pipeline.SourcesFile = manifest
			}

			defs := core.All()
			if a.cfg.Pipeline.SourcesFile != "" {
				var err error
				if defs, err = core.LoadManifest(a.cfg.Pipeline.SourcesFile); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				infos := make([]core.SourceInfo, len(defs))
				for i, d := range defs {
					infos[i] = d.Info
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			rows := make([][]string, 0, len(defs))
			for _, d := range defs {
				cols := "all"
				if len(d.Info.Columns) > 0 {
					cols = fmt.Sprint(len(d.Info.Columns))
				}
				rows = append(rows, []string{
					d.Info.Key, d.Info.File, d.Info.KeyColumn, cols, strings.TrimSpace(d.Info.Label),
				})
			}
			return renderTable(out, []string{"Key", "File", "Key column", "Columns", "Label"}, rows)
		},
	}

	cmd.Flags().StringVar(&manifest, "sources", "", "YAML source manifest replacing the built-in sources")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
