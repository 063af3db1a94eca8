package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/repository"
)

type rootOptions struct {
	dsn         string
	inmem       bool
	configPath  string
	logFile     string
	verbose     bool
	metricsFile string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "assay-loader",
		Short: "Load assaying master data from spreadsheets into the database",
		Long: `assay-loader reads XLSX/CSV master sheets and inserts their rows into the
assaying database, resolving commodity, parameter, measurement method and UoM
references by name. Rows that cannot be loaded are skipped and reported.

Connection settings come from flags, the environment (DB_URL or
DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD), a .env file and an optional
assay-loader.yaml, in that order of precedence.

Exit Codes:
  0  - Run completed (rows may have been skipped)
  1  - Run failed and was rolled back
  2  - Usage or configuration error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.dsn, "dsn", "", "database DSN (postgres://... or sqlite:path); overrides DB_URL")
	pf.BoolVar(&opts.inmem, "inmem", false, "use a throwaway in-memory SQLite database")
	pf.StringVar(&opts.configPath, "config", "", "path to assay-loader.yaml (default: ./"+common.ConfigFileName+" if present)")
	pf.StringVar(&opts.logFile, "log-file", "", "log file path (default app.log)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics to this node-exporter textfile")

	root.AddCommand(
		newAssayingDetailsCmd(opts),
		newMeasurementMethodsCmd(opts),
		newCommodityTypesCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

// execute runs the CLI.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return executeCmd(ctx, newRootCmd(stdout, stderr), args)
}

// executeCmd runs root and classifies its error. Plain errors are cobra's
// command and argument errors unless ctx was cancelled during the run.
func executeCmd(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = common.NewAppError("RUN_ABORTED", "run interrupted", errors.Join(ctxErr, err))
		} else {
			err = usageError(err.Error())
		}
	}
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return err
}

func usageError(msg string) error {
	return common.NewAppError("USAGE_ERROR", msg, common.ErrInvalidInput)
}

// runEnv is everything a subcommand needs once configuration is resolved.
type runEnv struct {
	cfg    *common.Config
	logger *slog.Logger
	store  *repository.Store

	closers []io.Closer
}

func (e *runEnv) Close() {
	if e.store != nil {
		e.store.Close()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// loadConfig resolves flags > env > .env > yaml > defaults.
func (o *rootOptions) loadConfig() (*common.Config, error) {
	_ = godotenv.Load()

	path := o.configPath
	if path == "" {
		path = common.ConfigFileName
	}
	file, err := common.LoadFile(path)
	switch {
	case errors.Is(err, common.ErrConfigNotFound) && o.configPath == "":
		file = nil
	case errors.Is(err, common.ErrConfigNotFound):
		return nil, usageError(fmt.Sprintf("config file %q not found", o.configPath))
	case err != nil:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("read config file %q", path), errors.Join(common.ErrSource, err))
	}

	cfg := common.LoadConfig(file)
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	if o.inmem {
		cfg.Database.DSN = repository.InMemoryDSN
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if o.metricsFile != "" {
		cfg.Metrics.File = o.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads configuration, builds the logger and connects to the database.
func (o *rootOptions) setup(ctx context.Context) (*runEnv, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := common.NewLogger(o.stderr, cfg.Log.File, cfg.Log.Level)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, common.NewAppError("LOG_ERROR", "failed to set up logging", err)
	}
	slog.SetDefault(logger)
	env := &runEnv{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	db := cfg.Database
	store, err := repository.Open(ctx, repository.Config{
		DSN:              db.ResolveDSN(),
		MaxConns:         db.MaxConns,
		MinConns:         db.MinConns,
		MaxConnLifetime:  db.MaxConnLifetime,
		MaxConnIdleTime:  db.MaxConnIdleTime,
		DialTimeout:      db.DialTimeout,
		StatementTimeout: db.StatementTimeout,
	}, logger)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.store = store

	// A fresh in-memory database has no tables yet.
	if o.inmem || strings.HasSuffix(db.ResolveDSN(), ":memory:") {
		if err := store.Migrate(ctx); err != nil {
			env.Close()
			return nil, common.NewAppError("DB_ERROR", "failed to create schema", errors.Join(common.ErrDatabase, err))
		}
	}
	return env, nil
}
