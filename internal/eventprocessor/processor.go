package eventprocessor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mrzor/v8log/internal/codemap"
	"github.com/mrzor/v8log/internal/logline"
)

// Field layouts of the V8 tags the processor understands.
var (
	codeCreationLayout = []logline.FieldParser{
		logline.String, // type
		logline.Int,    // kind
		logline.Int,    // timestamp
		logline.Uint,   // start
		logline.Uint,   // size
		logline.String, // name
		logline.VarArgs,
	}
	// Written by loggers that predate the kind field.
	codeCreationCompactLayout = []logline.FieldParser{
		logline.String, // type
		logline.Int,    // timestamp
		logline.Uint,   // start
		logline.Uint,   // size
		logline.String, // name
		logline.VarArgs,
	}
	moveLayout          = []logline.FieldParser{logline.Uint, logline.Uint}
	deleteLayout        = []logline.FieldParser{logline.Uint}
	sharedLibraryLayout = []logline.FieldParser{logline.String, logline.Uint, logline.Uint, logline.VarArgs}
	propertyICLayout    = []logline.FieldParser{
		logline.Uint,   // pc
		logline.Int,    // time
		logline.Int,    // line
		logline.Int,    // column
		logline.String, // old state
		logline.String, // new state
		logline.String, // map
		logline.String, // key
		logline.String, // modifier
		logline.String, // slow reason
	}
	propertyICLegacyLayout = []logline.FieldParser{
		logline.Uint,
		logline.Int,
		logline.Int,
		logline.String,
		logline.String,
		logline.String,
		logline.String,
		logline.String,
		logline.String,
	}
	mapLayout = []logline.FieldParser{
		logline.String, // type
		logline.Int,    // time
		logline.String, // from
		logline.String, // to
		logline.Uint,   // pc
		logline.Int,    // line
		logline.Int,    // column
		logline.String, // reason
		logline.VarArgs,
	}
	mapDetailsLayout = []logline.FieldParser{logline.String, logline.VarArgs}
)

// Processor applies V8 trace lines to a registry and IC counters.
type Processor struct {
	dispatcher *Dispatcher
	registry   *codemap.Registry
	counters   *Counters
	logger     *zap.Logger
	onIC       func(ICEvent)
	onMap      func(MapEvent)
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithICObserver receives every counted IC event, after counting.
func WithICObserver(fn func(ICEvent)) Option {
	return func(p *Processor) {
		p.onIC = fn
	}
}

// WithMapObserver receives every map event.
func WithMapObserver(fn func(MapEvent)) Option {
	return func(p *Processor) {
		p.onMap = fn
	}
}

// NewProcessor creates a processor writing into registry and counters.
func NewProcessor(registry *codemap.Registry, counters *Counters, opts ...Option) *Processor {
	p := &Processor{
		dispatcher: NewDispatcher(),
		registry:   registry,
		counters:   counters,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.registerCodeRoutes()
	p.registerICRoutes()
	p.registerMapRoutes()
	return p
}

// Dispatcher exposes the route table, for registering additional tags.
func (p *Processor) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// HandleLine tokenizes and dispatches one trace line, returning its tag.
func (p *Processor) HandleLine(line string) (string, error) {
	return p.dispatcher.DispatchLine(line)
}

func (p *Processor) registerCodeRoutes() {
	reg := p.registry
	d := p.dispatcher

	d.Register("code-creation", codeCreationLayout, func(a logline.Args) error {
		return createCode(reg, a.String(0), a.Int(2), a.Uint(3), a.Uint(4), a.String(5), a.Tail(), 6)
	})
	d.Register("code-creation", codeCreationCompactLayout, func(a logline.Args) error {
		return createCode(reg, a.String(0), a.Int(1), a.Uint(2), a.Uint(3), a.String(4), a.Tail(), 5)
	})

	d.Register("code-move", moveLayout, func(a logline.Args) error {
		if !reg.MoveCode(a.Uint(0), a.Uint(1)) {
			p.logger.Debug("code-move from unknown address", zap.Uint64("from", a.Uint(0)))
		}
		return nil
	})
	d.Register("code-delete", deleteLayout, func(a logline.Args) error {
		if !reg.DeleteCode(a.Uint(0)) {
			p.logger.Debug("code-delete of unknown address", zap.Uint64("address", a.Uint(0)))
		}
		return nil
	})

	moveFunc := func(a logline.Args) error {
		if !reg.MoveFunc(a.Uint(0), a.Uint(1)) {
			p.logger.Debug("function move from unknown address", zap.Uint64("from", a.Uint(0)))
		}
		return nil
	}
	d.Register("sfi-move", moveLayout, moveFunc)
	d.Register("function-move", moveLayout, moveFunc)

	d.Register("shared-library", sharedLibraryLayout, func(a logline.Args) error {
		reg.AddLibrary(a.String(0), a.Uint(1), a.Uint(2))
		return nil
	})
}

// createCode validates the optional [funcAddr, state] tail before touching
// the registry. tailField is the tail's position, for error reporting.
func createCode(reg *codemap.Registry, typ string, timestamp int64, start, size uint64, name string, maybeFunc []string, tailField int) error {
	if len(maybeFunc) == 0 {
		reg.AddCode(typ, name, timestamp, start, size)
		return nil
	}

	funcAddr, err := logline.ParseUint(maybeFunc[0])
	if err != nil {
		return &logline.MalformedLineError{Field: tailField, Value: maybeFunc[0], Reason: "expected function address", Err: err}
	}

	var marker string
	if len(maybeFunc) > 1 {
		marker = maybeFunc[1]
	}
	state, err := codemap.ParseState(marker)
	if err != nil {
		return &logline.MalformedLineError{Field: tailField + 1, Value: marker, Err: err}
	}

	reg.AddFuncCode(typ, name, timestamp, start, size, funcAddr, state)
	return nil
}

func (p *Processor) registerICRoutes() {
	for _, tag := range ICTags {
		p.dispatcher.Register(tag, propertyICLayout, func(a logline.Args) error {
			p.propertyIC(ICEvent{
				Type:       tag,
				PC:         a.Uint(0),
				Time:       a.Int(1),
				Line:       a.Int(2),
				Column:     a.Int(3),
				OldState:   a.String(4),
				NewState:   a.String(5),
				Map:        a.String(6),
				Key:        a.String(7),
				Modifier:   a.String(8),
				SlowReason: a.String(9),
			})
			return nil
		})
		p.dispatcher.Register(tag, propertyICLegacyLayout, func(a logline.Args) error {
			p.propertyIC(ICEvent{
				Type:       tag,
				PC:         a.Uint(0),
				Line:       a.Int(1),
				Column:     a.Int(2),
				OldState:   a.String(3),
				NewState:   a.String(4),
				Map:        a.String(5),
				Key:        a.String(6),
				Modifier:   a.String(7),
				SlowReason: a.String(8),
			})
			return nil
		})
	}
}

func (p *Processor) propertyIC(ev ICEvent) {
	p.counters.Record(ev.Type)
	if p.onIC == nil {
		return
	}
	ev.Function = p.registry.ResolveName(ev.PC)
	p.onIC(ev)
}

func (p *Processor) registerMapRoutes() {
	p.dispatcher.Register("map", mapLayout, func(a logline.Args) error {
		ev := MapEvent{
			Type:   a.String(0),
			Time:   a.Int(1),
			From:   a.String(2),
			To:     a.String(3),
			PC:     a.Uint(4),
			Line:   a.Int(5),
			Column: a.Int(6),
			Reason: a.String(7),
		}
		if tail := a.Tail(); len(tail) > 0 {
			ev.Name = tail[0]
		}
		p.logger.Debug("map",
			zap.String("type", ev.Type),
			zap.Int64("time", ev.Time),
			zap.String("from", ev.From),
			zap.String("to", ev.To),
			zap.Uint64("pc", ev.PC),
			zap.Int64("line", ev.Line),
			zap.Int64("column", ev.Column),
			zap.String("reason", ev.Reason),
			zap.String("name", ev.Name),
		)
		if p.onMap != nil {
			p.onMap(ev)
		}
		return nil
	})

	p.dispatcher.Register("map-details", mapDetailsLayout, func(a logline.Args) error {
		p.logger.Debug("map-details",
			zap.String("id", a.String(0)),
			zap.String("details", strings.Join(a.Tail(), ",")),
		)
		return nil
	})
}
