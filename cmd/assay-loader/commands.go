package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/assay-loader/internal/common"
	"github.com/joseph-ayodele/assay-loader/internal/export"
	"github.com/joseph-ayodele/assay-loader/internal/ingest"
	"github.com/joseph-ayodele/assay-loader/internal/metrics"
	"github.com/joseph-ayodele/assay-loader/internal/source"
)

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(fmt.Sprintf("unexpected arguments: %s", strings.Join(args, " ")))
	}
	return nil
}

func requireFile(file string) error {
	if strings.TrimSpace(file) == "" {
		return usageError("--file is required")
	}
	return nil
}

// openSource reads location, wiring an S3 client only for s3:// locations.
func openSource(ctx context.Context, env *runEnv, location, sheet string) (*source.Table, error) {
	var readerOpts []source.ReaderOption
	if strings.HasPrefix(location, "s3://") {
		client, err := source.NewS3Client(ctx, env.cfg.S3)
		if err != nil {
			return nil, common.NewAppError("SOURCE_ERROR", "failed to create s3 client", errors.Join(common.ErrSource, err))
		}
		readerOpts = append(readerOpts, source.WithObjectGetter(client))
	}
	if sheet == "" {
		sheet = env.cfg.Source.Sheet
	}
	return source.NewReader(env.logger, readerOpts...).Open(ctx, location, source.Options{
		Sheet:   sheet,
		Aliases: env.cfg.Source.HeaderAliases,
	})
}

// finishMetrics records the run result and writes the textfile when configured.
func finishMetrics(env *runEnv, m *metrics.Metrics, start time.Time, runErr error) {
	m.ObserveRun(time.Since(start), runErr, time.Now())
	if env.cfg.Metrics.File == "" {
		return
	}
	if err := m.WriteTextfile(env.cfg.Metrics.File); err != nil {
		env.logger.Error("failed to write metrics", "path", env.cfg.Metrics.File, "error", err)
		return
	}
	env.logger.Debug("metrics written", "path", env.cfg.Metrics.File)
}

func newAssayingDetailsCmd(opts *rootOptions) *cobra.Command {
	var file, sheet, report string
	cmd := &cobra.Command{
		Use:   "assaying-details",
		Short: "Load commodity-wise assaying details from a master sheet",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFile(file); err != nil {
				return err
			}
			ctx := common.WithRunID(cmd.Context(), uuid.NewString())
			env, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			start := time.Now()
			m := metrics.New("assaying_details")
			sum, err := runAssayingDetails(ctx, env, m, file, sheet, report)
			finishMetrics(env, m, start, err)
			if err != nil {
				env.logger.Error("script failed", "error", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data insertion completed. Success: %d, Skipped: %d\n", sum.Inserted, sum.Skipped)
			for _, r := range sum.Reasons {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d records skipped because: %s\n", r.Count, r.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "XLSX/CSV file or s3://bucket/key to load (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (default from config, Sheet1)")
	cmd.Flags().StringVar(&report, "report", "", "write skipped rows to this XLSX file")
	return cmd
}

func runAssayingDetails(ctx context.Context, env *runEnv, m *metrics.Metrics, file, sheet, report string) (ingest.Summary, error) {
	tbl, err := openSource(ctx, env, file, sheet)
	if err != nil {
		return ingest.Summary{}, err
	}
	p := ingest.NewPipeline(ingest.NewStore(env.store), env.logger, ingest.WithRecorder(m))
	sum, err := p.RunBatch(ctx, tbl)
	if err != nil {
		return sum, err
	}
	if report != "" {
		if err := export.NewService(env.logger).WriteSkipReport(report, sum); err != nil {
			// The batch is already committed at this point.
			env.logger.Error("failed to write skip report", "path", report, "error", err)
		}
	}
	return sum, nil
}

func newMeasurementMethodsCmd(opts *rootOptions) *cobra.Command {
	var file, sheet string
	cmd := &cobra.Command{
		Use:   "measurement-methods",
		Short: "Seed measurement_component_master from the master sheet's method column",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFile(file); err != nil {
				return err
			}
			ctx := common.WithRunID(cmd.Context(), uuid.NewString())
			env, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			start := time.Now()
			m := metrics.New("measurement_methods")
			stats, err := func() (ingest.SeedStats, error) {
				tbl, err := openSource(ctx, env, file, sheet)
				if err != nil {
					return ingest.SeedStats{}, err
				}
				return ingest.NewPipeline(ingest.NewStore(env.store), env.logger).SeedMeasurementMethods(ctx, tbl)
			}()
			if err == nil {
				m.AddRows("INSERTED", stats.Inserted)
				m.AddRows("EXISTING", stats.Existing)
				m.AddRows("DUPLICATE", stats.DuplicateIn)
				m.AddRows("BLANK", stats.Blank)
			}
			finishMetrics(env, m, start, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data insertion completed. Inserted: %d, Existing: %d, Duplicates: %d, Blank: %d\n",
				stats.Inserted, stats.Existing, stats.DuplicateIn, stats.Blank)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "XLSX/CSV file or s3://bucket/key to read (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (default from config, Sheet1)")
	return cmd
}

func newCommodityTypesCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "commodity-types",
		Short: "Load commodity_types from a CSV export",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFile(file); err != nil {
				return err
			}
			ctx := common.WithRunID(cmd.Context(), uuid.NewString())
			env, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			start := time.Now()
			m := metrics.New("commodity_types")
			stats, err := func() (ingest.LoadStats, error) {
				tbl, err := openSource(ctx, env, file, "")
				if err != nil {
					return ingest.LoadStats{}, err
				}
				return ingest.NewPipeline(ingest.NewStore(env.store), env.logger).LoadCommodityTypes(ctx, tbl)
			}()
			if err == nil {
				m.AddRows("INSERTED", stats.Inserted)
				m.AddRows("SKIPPED", stats.Skipped)
			}
			finishMetrics(env, m, start, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d commodity types (%d skipped).\n", stats.Inserted, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file or s3://bucket/key to load (required)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the loader's tables if they do not exist",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.store.Migrate(cmd.Context()); err != nil {
				return common.NewAppError("DB_ERROR", "migration failed", errors.Join(common.ErrDatabase, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}
