package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/config"
	"github.com/crimson-sun/sift/internal/engine"
	"github.com/crimson-sun/sift/internal/engine/classifier"
	"github.com/crimson-sun/sift/internal/engine/extractor"
	"github.com/crimson-sun/sift/internal/metrics"
	"github.com/crimson-sun/sift/internal/output"
	"github.com/crimson-sun/sift/internal/output/async"
	"github.com/crimson-sun/sift/internal/output/file"
	"github.com/crimson-sun/sift/internal/output/multi"
	"github.com/crimson-sun/sift/internal/output/pretty"
	"github.com/crimson-sun/sift/internal/output/stdout"
	"github.com/crimson-sun/sift/internal/output/webhook"
	"github.com/crimson-sun/sift/internal/pipeline"
	"github.com/crimson-sun/sift/internal/sanitizer"
)

type preprocessFlags struct {
	artifactFlags
	follow    bool
	format    string
	verbosity string
	path      string
	webhook   string
	workers   int
	indent    bool
}

func newPreprocessCmd(a *app) *cobra.Command {
	f := &preprocessFlags{}
	cmd := &cobra.Command{
		Use:   "preprocess [path...]",
		Short: "Classify artifacts and write their compressed records",
		Long: `Reads files, directories ("-" or no path means stdin) or an NDJSON stream
of artifact requests and writes one record per artifact, in input order.

Examples:

  sift preprocess app.log config.yaml
  kubectl logs api-7c9 | sift preprocess --type logs_and_errors
  sift preprocess --follow --format pretty ./incident/
  sift preprocess --provider ndjson requests.ndjson --output out.ndjson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPreprocess(cmd, f, args)
		},
	}
	f.bind(cmd)
	fl := cmd.Flags()
	fl.BoolVarP(&f.follow, "follow", "f", false, "keep watching directories for new or rewritten files")
	fl.StringVar(&f.format, "format", "", "stdout format: ndjson or pretty (default from output.format)")
	fl.StringVar(&f.verbosity, "verbosity", "", "minimal, standard or full (default from output.verbosity)")
	fl.StringVarP(&f.path, "output", "o", "", "also append NDJSON records to this rotating file")
	fl.StringVar(&f.webhook, "webhook", "", "also POST record batches to this URL")
	fl.IntVarP(&f.workers, "workers", "w", 0, "concurrent artifacts (default from engine.workers)")
	fl.BoolVar(&f.indent, "indent", false, "indent NDJSON records")
	return cmd
}

func (a *app) runPreprocess(cmd *cobra.Command, f *preprocessFlags, args []string) error {
	cfg := a.cfg
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.verbosity != "" {
		cfg.Output.Verbosity = f.verbosity
	}
	if f.path != "" {
		cfg.Output.Path = f.path
	}
	if f.webhook != "" {
		cfg.Output.WebhookURL = f.webhook
	}
	if f.workers > 0 {
		cfg.Engine.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	verbosity, err := output.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return err
	}

	connCfg, err := f.connectorConfig(a, args)
	if err != nil {
		return err
	}
	connCfg.Follow = f.follow
	conn, err := openConnector(connCfg.Provider)
	if err != nil {
		return err
	}

	out, err := a.buildOutput(cfg, verbosity, f.indent)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, a.logger); err != nil {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	p := pipeline.New(conn, a.newEngine(cfg), out,
		pipeline.WithWorkers(cfg.Engine.Workers),
		pipeline.WithLogger(a.logger),
	)
	a.logger.Info("sift starting",
		zap.String("version", cmd.Root().Version),
		zap.String("provider", connCfg.Provider),
		zap.Bool("follow", f.follow),
		zap.String("verbosity", verbosity.String()))

	if f.follow {
		_, err = p.Stream(ctx, connCfg)
	} else {
		_, err = p.Query(ctx, connCfg, f.queryParams(a))
	}
	if closeErr := p.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) newEngine(cfg config.Config) *engine.Engine {
	var san sanitizer.Sanitizer
	if cfg.Sanitizer.Endpoint != "" {
		san = sanitizer.NewHTTP(cfg.Sanitizer.Endpoint, cfg.Sanitizer.Token, cfg.Sanitizer.Timeout, a.logger)
	}
	return engine.New(classifier.New(), extractor.Default(cfg.Engine.DirectLimit), san, a.logger)
}

// buildOutput fans records out to stdout and the optional file and
// webhook sinks. The webhook runs behind an async buffer.
func (a *app) buildOutput(cfg config.Config, v output.Verbosity, indent bool) (output.Output, error) {
	var outs []output.Output
	if cfg.Output.Format == "pretty" {
		outs = append(outs, pretty.NewWriter(a.stdout, v))
	} else {
		outs = append(outs, stdout.NewWriter(a.stdout, v, indent))
	}

	if cfg.Output.Path != "" {
		fo, err := file.New(cfg.Output.Path, v, file.WithMaxSizeMB(cfg.Output.MaxSizeMB))
		if err != nil {
			return nil, err
		}
		outs = append(outs, fo)
	}

	if cfg.Output.WebhookURL != "" {
		wh := webhook.New(cfg.Output.WebhookURL,
			webhook.WithToken(cfg.Output.WebhookToken),
			webhook.WithBatchSize(cfg.Output.WebhookBatchSize),
			webhook.WithVerbosity(v),
			webhook.WithLogger(a.logger),
		)
		outs = append(outs, async.New(wh, async.WithLogger(a.logger)))
	}

	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
