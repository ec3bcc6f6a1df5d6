package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/JonMunkholm/worldstats/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type runFlags struct {
	dataDir       string
	manifest      string
	aliases       string
	minNonMissing int
	policy        string
	only          []string

	csv      string
	sqlite   string
	parquet  string
	postgres string
	table    string

	json bool
}

func newRunCommand(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation pipeline once",
		Example: `  worldstats run                                  # Built-in sources from ./data
  worldstats run --data-dir ./raw --csv out.csv   # Custom input and output
  worldstats run --sqlite stats.db --parquet stats.parquet
  worldstats run --only whr --only suicide_rates --min-non-missing 3
  worldstats run --sources sources.yaml --aliases aliases.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dataDir, "data-dir", "", "directory holding the source CSV files (default $DATA_DIR)")
	flags.StringVar(&f.manifest, "sources", "", "YAML source manifest replacing the built-in sources")
	flags.StringVar(&f.aliases, "aliases", "", "YAML country alias file")
	flags.IntVar(&f.minNonMissing, "min-non-missing", 0, "keep rows with at least this many values (0: half the columns)")
	flags.StringVar(&f.policy, "policy", "", "shared column policy: coalesce or last_writer_wins")
	flags.StringSliceVar(&f.only, "only", nil, "restrict the run to these source keys")
	flags.StringVar(&f.csv, "csv", "", "write the merged dataset to this CSV file")
	flags.StringVar(&f.sqlite, "sqlite", "", "write the merged dataset to this SQLite database")
	flags.StringVar(&f.parquet, "parquet", "", "write the merged dataset to this Parquet file")
	flags.StringVar(&f.postgres, "postgres", "", "write the merged dataset to this Postgres database URL")
	flags.StringVar(&f.table, "table", "", "table name for the database sinks")
	flags.BoolVar(&f.json, "json", false, "print the run result as JSON")

	return cmd
}

func (a *app) run(cmd *cobra.Command, f runFlags) error {
	ctx := cmd.Context()
	cfg := a.cfg

	changed := cmd.Flags().Changed
	if changed("data-dir") {
		cfg.Pipeline.DataDir = f.dataDir
	}
	if changed("sources") {
		cfg.Pipeline.SourcesFile = f.manifest
	}
	if changed("aliases") {
		cfg.Pipeline.AliasFile = f.aliases
	}
	if changed("min-non-missing") {
		cfg.Pipeline.MinNonMissing = f.minNonMissing
	}
	if changed("policy") {
		cfg.Pipeline.CollisionPolicy = f.policy
	}
	if changed("csv") {
		cfg.Sink.CSVPath = f.csv
	}
	if changed("sqlite") {
		cfg.Sink.SQLitePath = f.sqlite
	}
	if changed("parquet") {
		cfg.Sink.ParquetPath = f.parquet
	}
	if changed("postgres") {
		cfg.Database.URL = f.postgres
	}
	if changed("table") {
		cfg.Sink.Table = f.table
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var pg store.TxBeginner
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		pg = pool
	}

	svcCfg, err := core.ConfigFromPipeline(cfg.Pipeline, store.FromConfig(cfg.Sink, pg))
	if err != nil {
		return err
	}
	svc, err := core.NewService(svcCfg)
	if err != nil {
		return err
	}

	res, err := svc.Run(ctx, core.RunOptions{Sources: f.only})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if err := printRun(out, res); err != nil {
		return err
	}

	for _, s := range res.Sinks {
		if s.Error != "" {
			return fmt.Errorf("%d of %d sinks failed", res.Summary().FailedSinks, len(res.Sinks))
		}
	}
	return nil
}

func printRun(w io.Writer, res *core.RunResult) error {
	st := res.Stats

	rows := [][]string{
		{"run", res.ID},
		{"duration", res.Duration.Round(time.Millisecond).String()},
	}
	add := func(k, format string, args ...any) {
		rows = append(rows, []string{k, fmt.Sprintf(format, args...)})
	}

	for _, name := range sortedKeys(st.SourceRows) {
		add("source "+name, "%d rows", st.SourceRows[name])
	}
	add("merged", "%d countries (%d duplicated)", st.Merge.Keys, st.Merge.DuplicateKeys)
	if st.Merge.DroppedRows > 0 {
		add("no country", "%d rows dropped", st.Merge.DroppedRows)
	}
	for _, c := range st.Merge.Collisions {
		add("shared column", "%s (%s, %s)", c.Column, c.Earlier, c.Later)
	}
	add("filtered", "%d rows below %d values", st.FilteredRows, st.Threshold)
	add("output", "%d rows x %d columns", st.OutputRows, st.Columns)
	if len(st.Impute.Unfilled) > 0 {
		add("unfilled", "%s", strings.Join(st.Impute.Unfilled, ", "))
	}
	for _, s := range res.Sinks {
		if s.Error != "" {
			add("sink "+s.Sink, "FAILED: %s", s.Error)
			continue
		}
		add("sink "+s.Sink, "%d rows", s.Rows)
	}

	return renderTable(w, nil, rows)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
