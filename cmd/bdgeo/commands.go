package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bd-geo/internal/config"
	"bd-geo/internal/dataset"
	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
	"bd-geo/internal/metrics"
	"bd-geo/internal/migrate"
	"bd-geo/internal/utils"
)

// openLookup 可在测试中替换为合成数据
var openLookup = dataset.Open

// gatherer 为 --metrics-out 的指标来源
var gatherer prometheus.Gatherer = prometheus.DefaultGatherer

type app struct {
	source     string
	dataDir    string
	metricsOut string
	lk         *geo.Lookup
	ds         *geo.Dataset
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bdgeo",
		Short:         "Query the Bangladesh division/district/upazila/union hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.dumpMetrics()
		},
	}
	root.PersistentFlags().StringVar(&a.source, "source", "", "dataset source: embedded|dir|postgres|sqlite|redis (overrides DATA_SOURCE)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the reference JSON files (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file after the command")

	root.AddCommand(
		&cobra.Command{
			Use:   "divisions",
			Short: "List all divisions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.lk.Divisions())
			},
		},
		&cobra.Command{
			Use:   "districts <division-id>",
			Short: "List districts of a division",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.lk.DistrictsByDivision(args[0]))
			},
		},
		&cobra.Command{
			Use:   "upazilas <district-id>",
			Short: "List upazilas of a district",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.lk.UpazilasByDistrict(args[0]))
			},
		},
		&cobra.Command{
			Use:   "unions <upazila-id>",
			Short: "List unions of an upazila",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.lk.UnionsByUpazila(args[0]))
			},
		},
		&cobra.Command{
			Use:   "areas <district-id>",
			Short: "List named areas of a district",
			Long:  "List named areas of a district. A district without area data prints an empty list.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.lk.AreasByDistrict(args[0]))
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show record counts of the loaded dataset",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeJSON(cmd.OutOrStdout(), a.ds.Counts())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the reference tables of the sqlite or postgres source",
			Long:  "Create the bdgeo_* tables used by the sqlite and postgres sources. Existing tables are left untouched.",
			Args:  cobra.NoArgs,
			// 建表不需要加载数据集
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.migrate(cmd.OutOrStdout())
			},
		},
	)
	return root
}

// loadConfig：配置文件与环境变量之上再叠加命令行参数，并初始化日志
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if a.source != "" {
		cfg.Source = a.source
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
		if a.source == "" {
			cfg.Source = "dir"
		}
	}
	l := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	l.Debug("config_loaded", "source", cfg.Source, "data_dir", cfg.DataDir)
	return cfg, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a.lk, a.ds, err = openLookup(ctx, cfg)
	return err
}

func (a *app) migrate(w io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	var db *sql.DB
	switch strings.ToLower(cfg.Source) {
	case "sqlite":
		db, err = utils.OpenSQLiteRW(cfg.SQLitePath)
	case "postgres":
		db, err = utils.OpenPostgres(cfg.PostgresDSN())
	default:
		return fmt.Errorf("migrate needs --source sqlite or postgres, got %q", cfg.Source)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.Source, err)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	logger.L().Info("schema_ready", "source", cfg.Source)
	return writeJSON(w, map[string]string{"source": cfg.Source, "status": "ok"})
}

// dumpMetrics：写入临时文件后改名，避免采集方读到半截内容
func (a *app) dumpMetrics() error {
	if a.metricsOut == "" {
		return nil
	}
	tmp := a.metricsOut + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	if err := metrics.WriteText(f, gatherer); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing metrics: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, a.metricsOut)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
