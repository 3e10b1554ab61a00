package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrzor/v8log/internal/attributes"
	"github.com/mrzor/v8log/internal/config"
	"github.com/mrzor/v8log/internal/eventstream"
	"github.com/mrzor/v8log/internal/output"
	"github.com/mrzor/v8log/internal/timesync"
)

func dumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dump [FILE]",
		Short:   "Replay a trace log and print the live code registry as JSON",
		Example: "dump --filter 'kind == \"function\"' --attr 'fn=function' --base-time 2024-01-02T03:04:05Z v8.log",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.finish()
			return runDump(cmd.Context(), a, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&a.cfg.Filter, "filter", a.cfg.Filter, "Expression selecting the records to dump.")
	cmd.Flags().StringVar(&a.cfg.Attributes, "attr", a.cfg.Attributes, "Custom attributes as name=expr;name=expr.")
	cmd.Flags().StringVar(&a.cfg.BaseTime, "base-time", a.cfg.BaseTime, "Wall-clock time of log timestamp zero (RFC 3339 or unix seconds).")

	return cmd
}

func runDump(ctx context.Context, a *app, args []string, stdin io.Reader, out io.Writer) error {
	selection, err := buildSelection(a.cfg, a.logger)
	if err != nil {
		return err
	}

	d := eventstream.New(
		eventstream.WithLogger(a.logger),
		eventstream.WithTracer(a.tracer),
		eventstream.WithMaxLineBytes(a.cfg.MaxLineBytes),
		eventstream.WithMaxSpanEvents(a.cfg.MaxSpanEvents),
	)

	source := "<stdin>"
	if len(args) == 0 || args[0] == "-" {
		err = d.ProcessReader(ctx, source, stdin)
	} else {
		source = args[0]
		err = d.ProcessFile(ctx, source)
	}
	if err != nil {
		return err
	}

	return output.NewDumper(selection).Dump(out, source, d.Registry())
}

func buildSelection(cfg *config.Config, logger *zap.Logger) (output.Selection, error) {
	filter, err := attributes.NewFilter(cfg.Filter)
	if err != nil {
		return output.Selection{}, err
	}
	customAttrs, err := cfg.CustomAttributes()
	if err != nil {
		return output.Selection{}, err
	}
	evaluator, err := attributes.NewEvaluator(customAttrs, logger)
	if err != nil {
		return output.Selection{}, err
	}
	converter, err := timesync.ParseBaseTime(cfg.BaseTime)
	if err != nil {
		return output.Selection{}, err
	}

	return output.Selection{
		Filter:    filter,
		Evaluator: evaluator,
		Converter: converter,
	}, nil
}
