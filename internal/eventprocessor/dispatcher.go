package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/mrzor/v8log/internal/logline"
)

// ErrUnknownTag is returned for lines whose tag has no route.
var ErrUnknownTag = errors.New("unknown tag")

// HandlerFunc consumes the parsed fields of one line.
//
// A handler that finds its input malformed beyond what the layout checks
// returns an error matching logline.ErrMalformedLine, before mutating
// anything, and the dispatcher moves on to the tag's next route.
type HandlerFunc func(args logline.Args) error

// Route pairs a field layout with the handler that understands it.
type Route struct {
	Parsers []logline.FieldParser
	Handle  HandlerFunc
}

// Dispatcher maps tags to routes.
type Dispatcher struct {
	routes map[string][]Route
}

// NewDispatcher creates a dispatcher with no routes.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		routes: make(map[string][]Route),
	}
}

// Register appends a route for tag. Routes of one tag are tried in
// registration order. It panics on an invalid layout.
func (d *Dispatcher) Register(tag string, parsers []logline.FieldParser, handle HandlerFunc) {
	if err := logline.ValidateLayout(parsers); err != nil {
		panic(fmt.Sprintf("eventprocessor: route %q: %v", tag, err))
	}
	if handle == nil {
		panic(fmt.Sprintf("eventprocessor: route %q: nil handler", tag))
	}
	d.routes[tag] = append(d.routes[tag], Route{Parsers: parsers, Handle: handle})
}

// Handles reports whether tag has at least one route.
func (d *Dispatcher) Handles(tag string) bool {
	return len(d.routes[tag]) > 0
}

// Dispatch parses fields with the first matching layout of tag and invokes
// its handler.
//
// When no route accepts the fields, the first rejection is returned,
// wrapping a logline.MalformedLineError.
func (d *Dispatcher) Dispatch(tag string, fields []string) error {
	routes := d.routes[tag]
	if len(routes) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	var firstErr error
	for _, route := range routes {
		args, err := logline.Parse(fields, route.Parsers)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		err = route.Handle(args)
		if errors.Is(err, logline.ErrMalformedLine) {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return err
	}
	return fmt.Errorf("%s: %w", tag, firstErr)
}

// DispatchLine tokenizes line and dispatches it.
func (d *Dispatcher) DispatchLine(line string) (string, error) {
	tag, fields := logline.Tokenize(line)
	return tag, d.Dispatch(tag, fields)
}
