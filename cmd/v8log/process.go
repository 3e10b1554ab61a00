package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrzor/v8log/internal/attributes"
	"github.com/mrzor/v8log/internal/eventprocessor"
	"github.com/mrzor/v8log/internal/eventstream"
	"github.com/mrzor/v8log/internal/output"
)

type processOptions struct {
	icEvents bool
}

func processCmd(a *app) *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:     "process [FILE...]",
		Short:   "Replay trace logs and print IC statistics",
		Example: "process --ic-events v8.log\nprocess --parallel 8 --filter 'type == \"JS\"' *.log",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.finish()
			return runProcess(cmd.Context(), a, opts, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&a.cfg.Filter, "filter", a.cfg.Filter, "Expression selecting code records to count (and export as spans when tracing).")
	cmd.Flags().IntVar(&a.cfg.Parallelism, "parallel", a.cfg.Parallelism, "Number of files processed concurrently.")
	cmd.Flags().BoolVar(&opts.icEvents, "ic-events", false, "Print every IC event as it is processed.")

	return cmd
}

// fileReport is what process prints for one input, in input order.
type fileReport struct {
	source string
	driver *eventstream.Driver
	events bytes.Buffer
	err    error
}

func runProcess(ctx context.Context, a *app, opts processOptions, paths []string, stdin io.Reader, out io.Writer) (err error) {
	selection, err := buildSelection(a.cfg, a.logger)
	if err != nil {
		return err
	}
	filter := selection.Filter

	ctx, span := a.tracer.Start(ctx, "v8log.run", trace.WithAttributes(
		attribute.Int("v8log.files", len(paths)),
		attribute.String("v8log.filter", filter.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// ProcessFiles creates drivers in path order, so reports line up with results.
	var reports []*fileReport
	newDriver := func(source string) *eventstream.Driver {
		report := &fileReport{source: source}
		reports = append(reports, report)
		driverOpts := []eventstream.Option{
			eventstream.WithLogger(a.logger.With(zap.String("source", source))),
			eventstream.WithTracer(a.tracer),
			eventstream.WithMaxLineBytes(a.cfg.MaxLineBytes),
			eventstream.WithMaxSpanEvents(a.cfg.MaxSpanEvents),
		}
		if opts.icEvents {
			driverOpts = append(driverOpts, eventstream.WithProcessorOptions(
				eventprocessor.WithICObserver(func(ev eventprocessor.ICEvent) {
					fmt.Fprintln(&report.events, ev.String())
				}),
			))
		}
		report.driver = eventstream.New(driverOpts...)
		return report.driver
	}

	var runErr error
	if len(paths) == 0 {
		d := newDriver("<stdin>")
		runErr = d.ProcessReader(ctx, "<stdin>", stdin)
		reports[0].err = runErr
	} else {
		var results []eventstream.Result
		results, runErr = eventstream.ProcessFiles(ctx, paths, a.cfg.Parallelism, newDriver)
		for i, r := range results {
			reports[i].err = r.Err
		}
	}

	formatter := output.NewOTELFormatter(a.tracer, selection)
	var total eventprocessor.Counters
	for _, report := range reports {
		if err := writeReport(ctx, out, report, filter, formatter); err != nil {
			return err
		}
		total.Merge(report.driver.Counters())
	}

	if err := output.WriteICSummary(out, total); err != nil {
		return err
	}
	return runErr
}

func writeReport(ctx context.Context, out io.Writer, report *fileReport, filter *attributes.Filter, formatter *output.OTELFormatter) error {
	if _, err := report.events.WriteTo(out); err != nil {
		return err
	}
	if report.err != nil {
		fmt.Fprintf(out, "%s: %v\n", report.source, report.err)
		if !errors.Is(report.err, eventstream.ErrStreamRead) {
			return report.err
		}
	}

	reg := report.driver.Registry()
	if err := output.WriteStats(out, report.source, report.driver.Stats(), reg.Len(), reg.FuncLen()); err != nil {
		return err
	}

	if filter.String() == "" {
		return nil
	}
	n, err := formatter.EmitRecords(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %d code records match %s\n", n, filter.String())
	return nil
}
