package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timegrain/timegrain/internal/core/config"
	"github.com/timegrain/timegrain/internal/core/reconcile"
	"github.com/timegrain/timegrain/internal/data/source"
	"github.com/timegrain/timegrain/internal/presentation/formatter"
	"github.com/timegrain/timegrain/internal/util"
)

var (
	// Logging related
	debug   bool
	logFile string

	// Event store
	serverURL  string
	configPath string

	// Time window
	date    string
	fromStr string
	toStr   string

	// Output related
	outputFormat string

	// Engine overrides
	toleranceMs   int64
	minDurationMs int64
	titlePriority string
	emptyPolicy   string
	includeAFK    bool

	rootCmd = &cobra.Command{
		Use:   "timegrain [flags]",
		Short: "Reconcile desktop activity telemetry into a daily timeline",
		Long: `timegrain pulls raw window, browser and idle telemetry from a bucket
store, reconciles it into a single non-overlapping timeline restricted to
periods the user was present, and prints the result.

Examples:
  timegrain                                  # Reconcile today (UTC) against localhost
  timegrain --date 2026-08-22                # Reconcile one calendar day
  timegrain --from 2026-08-22T08:00:00Z --to 2026-08-22T18:00:00Z
  timegrain --output json                    # Machine-readable result with warnings
  timegrain --no-afk-policy keep_all         # Keep activity when no presence data exists
  timegrain buckets                          # Show the store's buckets and role resolution`,
		RunE: runReconcile,
	}
)

const defaultConfigFile = "~/.timegrain/config.yaml"

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Event store base URL (default http://localhost:5600)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile,
		"Config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Also write logs to this file")

	rootCmd.Flags().StringVar(&date, "date", "",
		"UTC calendar day to reconcile (2006-01-02, default today)")
	rootCmd.Flags().StringVar(&fromStr, "from", "",
		"Window start (RFC3339), overrides --date together with --to")
	rootCmd.Flags().StringVar(&toStr, "to", "",
		"Window end (RFC3339)")

	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "",
		"Output format (table, json, csv, summary)")

	rootCmd.Flags().Int64Var(&toleranceMs, "tolerance-ms", 0,
		"Window/tab join tolerance in milliseconds")
	rootCmd.Flags().Int64Var(&minDurationMs, "min-duration-ms", 0,
		"Drop window/tab events shorter than this (never AFK events)")
	rootCmd.Flags().StringVar(&titlePriority, "title-priority", "",
		"Which title wins on a tab match (window, web)")
	rootCmd.Flags().StringVar(&emptyPolicy, "no-afk-policy", "",
		"Behavior when no active periods exist (drop_all, keep_all)")
	rootCmd.Flags().BoolVar(&includeAFK, "include-afk", true,
		"Include idle/active states as timeline entries")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	fileCfg, err := setup(cmd)
	if err != nil {
		return err
	}

	window, err := resolveWindow()
	if err != nil {
		return err
	}

	client := source.NewHTTPClient(fileCfg.Server, 15*time.Second)

	ctx := context.Background()
	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}
	resolved, err := source.Resolve(buckets, fileCfg.Engine)
	if err != nil {
		return err
	}

	result, err := reconcile.New(fileCfg.Engine, client).Reconcile(ctx, window, resolved)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		util.LogWarn(w.String())
	}

	return formatAndOutput(fileCfg.Output, result)
}

// setup loads the config file, layers changed flags over it, and initializes
// logging. Shared by every subcommand.
func setup(cmd *cobra.Command) (*config.File, error) {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	if logFile != "" {
		if err := ensureDir(filepath.Dir(expandPath(logFile))); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	util.InitLogger(logLevel, expandPath(logFile), true)

	fileCfg, err := config.LoadFile(expandPath(configPath))
	if err != nil {
		return nil, err
	}

	if serverURL != "" {
		fileCfg.Server = serverURL
	}
	if outputFormat != "" {
		fileCfg.Output = outputFormat
	}

	flags := cmd.Flags()
	if flags.Changed("tolerance-ms") {
		fileCfg.Engine.ToleranceMs = toleranceMs
	}
	if flags.Changed("min-duration-ms") {
		fileCfg.Engine.MinDurationMs = minDurationMs
	}
	if flags.Changed("title-priority") {
		fileCfg.Engine.TitlePriority = config.TitlePriority(titlePriority)
	}
	if flags.Changed("no-afk-policy") {
		fileCfg.Engine.EmptyActivePolicy = config.EmptyActivePolicy(emptyPolicy)
	}
	if flags.Changed("include-afk") {
		fileCfg.Engine.IncludeAFK = includeAFK
	}

	return fileCfg, nil
}

// resolveWindow turns the --date / --from / --to flags into UTC bounds.
func resolveWindow() (reconcile.Window, error) {
	if fromStr != "" || toStr != "" {
		if fromStr == "" || toStr == "" {
			return reconcile.Window{}, fmt.Errorf("--from and --to must be given together")
		}
		from, err := util.ParseTimestampMs(fromStr)
		if err != nil {
			return reconcile.Window{}, err
		}
		to, err := util.ParseTimestampMs(toStr)
		if err != nil {
			return reconcile.Window{}, err
		}
		return reconcile.Window{StartMs: from, EndMs: to}, nil
	}

	day := date
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	start, end, err := util.DayWindowMs(day)
	if err != nil {
		return reconcile.Window{}, err
	}
	return reconcile.Window{StartMs: start, EndMs: end}, nil
}

func formatAndOutput(format string, result *reconcile.Result) error {
	switch format {
	case "json":
		return formatter.NewJSONFormatter().Format(result)
	case "csv":
		return formatter.NewCSVFormatter().Format(result)
	case "summary":
		return formatter.NewSummaryFormatter().Format(result)
	default:
		return formatter.NewTableFormatter().Format(result)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
