// v8log replays V8 trace logs (--log-code, --log-ic) into a code registry
// and reports inline-cache statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/mrzor/v8log/internal/config"
	"github.com/mrzor/v8log/internal/otel"
)

// Version information injected by GoReleaser at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// app carries what every sub-command shares.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	tracer  trace.Tracer
	cleanup func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{
		logger:  zap.NewNop(),
		tracer:  noop.NewTracerProvider().Tracer(""),
		cleanup: func() {},
	}

	cfg, envErr := config.ParseEnv()
	if envErr != nil {
		// Flags still work; report the bad environment once a command runs.
		cfg = config.Default()
	}
	a.cfg = cfg

	root := &cobra.Command{
		Use:           "v8log",
		Short:         "Process V8 trace logs",
		Long:          "v8log replays the code events of a V8 trace log into an address-keyed registry and tallies inline-cache events.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envErr != nil {
				return envErr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.setup()
		},
	}
	root.PersistentFlags().BoolVar(&a.cfg.Verbose, "verbose", a.cfg.Verbose, "Enable debug logging.")
	root.PersistentFlags().IntVar(&a.cfg.MaxLineBytes, "max-line-bytes", a.cfg.MaxLineBytes, "Skip lines longer than this many bytes.")

	root.AddCommand(
		processCmd(a),
		dumpCmd(a),
	)
	return root
}

// setup builds the logger and, when an OTLP endpoint is configured, the tracer.
func (a *app) setup() error {
	logger, err := newLogger(a.cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger

	tracer, cleanup, err := setupOTEL(logger, fmt.Sprintf("%s (%s)", version, commit))
	if err != nil {
		return err
	}
	a.tracer = tracer
	a.cleanup = cleanup
	return nil
}

// finish flushes spans and logs. Sub-commands defer it so it runs on failure too.
func (a *app) finish() {
	a.cleanup()
	_ = a.logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// setupOTEL initializes the OTEL provider and returns a tracer and cleanup function.
// Without an endpoint in the environment, spans go to a no-op tracer.
func setupOTEL(logger *zap.Logger, versionInfo string) (trace.Tracer, func(), error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse OTEL config: %w", err)
	}
	if !otelCfg.Enabled() {
		return noop.NewTracerProvider().Tracer(""), func() {}, nil
	}

	tp, err := otel.InitProvider(otelCfg, versionInfo, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otel.ShutdownProvider(shutdownCtx, tp); err != nil {
			logger.Warn("error shutting down OTEL provider", zap.Error(err))
		}
	}

	return tp.Tracer("v8log"), cleanup, nil
}
