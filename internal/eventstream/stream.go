package eventstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/mrzor/v8log/internal/codemap"
	"github.com/mrzor/v8log/internal/eventprocessor"
	"github.com/mrzor/v8log/internal/logline"
)

const (
	// DefaultMaxLineBytes bounds a single line; longer lines are skipped as malformed.
	DefaultMaxLineBytes = 1 << 20
	// DefaultMaxSpanEvents bounds the malformed-line events recorded on a span.
	DefaultMaxSpanEvents = 100

	readBufferSize = 64 * 1024
)

var (
	// ErrStreamRead wraps failures to open or read the input.
	ErrStreamRead = errors.New("reading trace stream")
	// ErrFinished is returned when a Driver is asked to process a second stream.
	ErrFinished = errors.New("driver already used")
)

// State is the lifecycle position of a Driver.
type State int

const (
	Idle State = iota
	Streaming
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats counts what happened to the lines of a stream.
type Stats struct {
	Lines         int // non-empty lines read
	Dispatched    int
	Malformed     int
	UnknownTags   int
	HandlerErrors int
	ByTag         map[string]int // dispatched lines per tag
}

// Driver reads one trace stream into its own registry and counters.
type Driver struct {
	state     State
	registry  *codemap.Registry
	counters  *eventprocessor.Counters
	processor *eventprocessor.Processor
	stats     Stats

	logger        *zap.Logger
	tracer        trace.Tracer
	maxLineBytes  int
	maxSpanEvents int
	spanEvents    int
	procOpts      []eventprocessor.Option
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used by the driver and its processor.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTracer records one span per processed stream.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Driver) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// WithMaxLineBytes bounds the length of a single line.
func WithMaxLineBytes(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxLineBytes = n
		}
	}
}

// WithMaxSpanEvents bounds the malformed-line events added to the span.
func WithMaxSpanEvents(n int) Option {
	return func(d *Driver) {
		if n >= 0 {
			d.maxSpanEvents = n
		}
	}
}

// WithProcessorOptions forwards options, such as observers, to the processor.
func WithProcessorOptions(opts ...eventprocessor.Option) Option {
	return func(d *Driver) {
		d.procOpts = append(d.procOpts, opts...)
	}
}

// New creates an idle driver with a fresh registry and zeroed counters.
func New(opts ...Option) *Driver {
	d := &Driver{
		registry:      codemap.New(),
		counters:      &eventprocessor.Counters{},
		stats:         Stats{ByTag: make(map[string]int)},
		logger:        zap.NewNop(),
		tracer:        noop.NewTracerProvider().Tracer(""),
		maxLineBytes:  DefaultMaxLineBytes,
		maxSpanEvents: DefaultMaxSpanEvents,
	}
	for _, opt := range opts {
		opt(d)
	}

	procOpts := append([]eventprocessor.Option{eventprocessor.WithLogger(d.logger)}, d.procOpts...)
	d.processor = eventprocessor.NewProcessor(d.registry, d.counters, procOpts...)
	return d
}

// ProcessFile streams the log at path.
func (d *Driver) ProcessFile(ctx context.Context, path string) error {
	if err := d.begin(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		d.state = Finished
		return fmt.Errorf("%w: %w", ErrStreamRead, err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // Read-only file
	}()

	return d.run(ctx, path, f)
}

// ProcessString streams an in-memory, newline-separated log.
func (d *Driver) ProcessString(ctx context.Context, log string) error {
	if err := d.begin(); err != nil {
		return err
	}
	return d.run(ctx, "<string>", strings.NewReader(log))
}

// ProcessReader streams r. source names it in logs and spans.
func (d *Driver) ProcessReader(ctx context.Context, source string, r io.Reader) error {
	if err := d.begin(); err != nil {
		return err
	}
	return d.run(ctx, source, r)
}

// State returns the driver's lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Registry returns the registry the stream was replayed into.
func (d *Driver) Registry() *codemap.Registry {
	return d.registry
}

// Counters returns a copy of the IC counters.
func (d *Driver) Counters() eventprocessor.Counters {
	return *d.counters
}

// Stats returns a copy of the line statistics.
func (d *Driver) Stats() Stats {
	stats := d.stats
	stats.ByTag = maps.Clone(d.stats.ByTag)
	return stats
}

func (d *Driver) begin() error {
	if d.state != Idle {
		return fmt.Errorf("%w: state is %s", ErrFinished, d.state)
	}
	d.state = Streaming
	return nil
}

func (d *Driver) run(ctx context.Context, source string, r io.Reader) (err error) {
	ctx, span := d.tracer.Start(ctx, "v8log.process",
		trace.WithAttributes(attribute.String("v8log.source", source)))
	defer func() {
		d.state = Finished
		d.finishSpan(span, err)
	}()

	d.logger.Debug("processing stream", zap.String("source", source))

	br := bufio.NewReaderSize(r, readBufferSize)
	buf := make([]byte, 0, readBufferSize)
	lineNo := 0
	tooLong := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %s: line %d: %w", ErrStreamRead, source, lineNo+1, err)
		}

		if !tooLong && len(buf)+len(chunk) <= d.maxLineBytes {
			buf = append(buf, chunk...)
		} else {
			tooLong = true
		}
		if isPrefix {
			continue
		}

		lineNo++
		d.handleLine(span, lineNo, string(buf), tooLong)
		buf = buf[:0]
		tooLong = false
	}
}

func (d *Driver) handleLine(span trace.Span, lineNo int, line string, tooLong bool) {
	if line == "" && !tooLong {
		return
	}
	d.stats.Lines++

	if tooLong {
		d.stats.Malformed++
		err := fmt.Errorf("%w: longer than %d bytes", logline.ErrMalformedLine, d.maxLineBytes)
		d.logger.Debug("skipping line", zap.Int("line", lineNo), zap.Error(err))
		d.recordMalformed(span, lineNo, err)
		return
	}

	tag, err := d.dispatch(line)
	switch {
	case err == nil:
		d.stats.Dispatched++
		d.stats.ByTag[tag]++
	case errors.Is(err, eventprocessor.ErrUnknownTag):
		d.stats.UnknownTags++
	case errors.Is(err, logline.ErrMalformedLine):
		d.stats.Malformed++
		d.logger.Debug("skipping malformed line", zap.Int("line", lineNo), zap.Error(err))
		d.recordMalformed(span, lineNo, err)
	default:
		d.stats.HandlerErrors++
		d.logger.Warn("handler failed", zap.Int("line", lineNo), zap.String("tag", tag), zap.Error(err))
	}
}

// dispatch turns a handler panic into an error so one record cannot end the stream.
func (d *Driver) dispatch(line string) (tag string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return d.processor.HandleLine(line)
}

func (d *Driver) recordMalformed(span trace.Span, lineNo int, err error) {
	if d.spanEvents >= d.maxSpanEvents {
		return
	}
	d.spanEvents++
	span.AddEvent("malformed line", trace.WithAttributes(
		attribute.Int("v8log.line", lineNo),
		attribute.String("v8log.error", err.Error()),
	))
}

func (d *Driver) finishSpan(span trace.Span, err error) {
	span.SetAttributes(
		attribute.Int("v8log.lines", d.stats.Lines),
		attribute.Int("v8log.dispatched", d.stats.Dispatched),
		attribute.Int("v8log.malformed", d.stats.Malformed),
		attribute.Int("v8log.unknown_tags", d.stats.UnknownTags),
		attribute.Int("v8log.handler_errors", d.stats.HandlerErrors),
		attribute.Int("v8log.code_records", d.registry.Len()),
		attribute.Int("v8log.function_records", d.registry.FuncLen()),
		attribute.Int("v8log.ic.load", d.counters.Load),
		attribute.Int("v8log.ic.store", d.counters.Store),
		attribute.Int("v8log.ic.keyed_load", d.counters.KeyedLoad),
		attribute.Int("v8log.ic.keyed_store", d.counters.KeyedStore),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
