// cmd/salesclean/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/audit"
	"github.com/David-Botos/sales-clean/pkg/cleaner"
	"github.com/David-Botos/sales-clean/pkg/config"
	"github.com/David-Botos/sales-clean/pkg/connector"
	"github.com/David-Botos/sales-clean/pkg/loader"
	"github.com/David-Botos/sales-clean/pkg/logger"
	"github.com/David-Botos/sales-clean/pkg/model"
	"github.com/David-Botos/sales-clean/pkg/pipeline"
	"github.com/David-Botos/sales-clean/pkg/render"
	"github.com/David-Botos/sales-clean/pkg/sink"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	if len(os.Args) > 1 {
		cfg.InputPath = os.Args[1]
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(2)
	}

	code := 0
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("Run failed",
			zap.Stringer("category", model.CategorizeError(err)),
			zap.Error(err))
		code = 1
	}
	log.Info("Main program ended.")
	_ = log.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Main program started.",
		zap.String("source", cfg.Source),
		zap.Bool("auditEnabled", cfg.AuditEnabled))

	factory := connector.NewConnectorFactory(cfg, log)

	source, closeSource, err := newSource(ctx, cfg, factory, log)
	if err != nil {
		return err
	}
	defer closeSource()

	table, err := source.Load()
	if err != nil {
		return err
	}

	dc, err := cleaner.NewDataCleaner(log.Named("cleaner"),
		render.NewHeatmapSink(cfg.ImagesDir, log.Named("diagnostics")),
		os.Stdout,
		cleaner.Config{
			TableName:     model.SalesInputSchema.Table,
			DuplicateKey:  cfg.DuplicateKey,
			MaxReportRows: cfg.MaxReportRows,
		})
	if err != nil {
		return err
	}

	csvSink, err := sink.NewCSVSink(cfg.ArtifactPath, log.Named("sink"))
	if err != nil {
		return err
	}

	p, err := pipeline.New(log.Named("pipeline"), dc, csvSink)
	if err != nil {
		return err
	}

	if cfg.AuditEnabled {
		conn, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		recorder, err := audit.NewPostgresRecorder(conn.DBX(), cfg.Postgres.AuditSchema, log.Named("audit"))
		if err != nil {
			return err
		}
		if err := recorder.EnsureTable(ctx); err != nil {
			return err
		}
		p = p.WithRecorder(recorder)
	}

	cleaned, result, err := p.Run(table)
	if err != nil {
		return err
	}
	fmt.Println(result.Report())

	if cfg.RenderCharts {
		if err := render.NewVisualizer(cfg.ImagesDir, log.Named("render")).RenderAll(cleaned); err != nil {
			return fmt.Errorf("failed to render charts: %w", err)
		}
	}
	return nil
}

// newSource picks the configured input and returns a cleanup for any
// connection it opened
func newSource(ctx context.Context, cfg *config.Config, factory *connector.ConnectorFactory, log *zap.Logger) (loader.Source, func(), error) {
	switch cfg.Source {
	case config.SourceSnowflake:
		conn, err := factory.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, nil, err
		}
		src := loader.NewSnowflakeSource(conn, cfg.Snowflake.QualifiedTable(), cfg.Snowflake.BatchSize, log.Named("loader"))
		return src, func() {
			connector.LogConnectionStats(log, "snowflake", conn.DB())
			conn.Close()
		}, nil
	default:
		return loader.NewCSVSource(cfg.InputPath, log.Named("loader")), func() {}, nil
	}
}
