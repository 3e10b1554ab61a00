package eventprocessor

import (
	"fmt"
	"regexp"
)

// ICEvent is one inline-cache state transition.
type ICEvent struct {
	Type       string // LoadIC, StoreIC, ...
	PC         uint64
	Time       int64 // zero for logs without IC timestamps
	Line       int64
	Column     int64
	OldState   string
	NewState   string
	Map        string
	Key        string
	Modifier   string
	SlowReason string
	Function   string // resolved from PC, "" when unknown
}

var sourcePositionSuffix = regexp.MustCompile(`:[0-9]+:[0-9]+$`)

// String renders the event the way the IC processor prints it:
//
//	LoadIC (0->1) at foo:12:5 x (map 0x2a)
func (e ICEvent) String() string {
	fn := "<unknown>"
	if e.Function != "" {
		fn = sourcePositionSuffix.ReplaceAllString(e.Function, "")
	}
	s := fmt.Sprintf("%s (%s->%s%s) at %s:%d:%d %s (map %s)",
		e.Type, e.OldState, e.NewState, e.Modifier, fn, e.Line, e.Column, e.Key, e.Map)
	if e.SlowReason != "" {
		s += " " + e.SlowReason
	}
	return s
}

// MapEvent is a map (hidden class) log entry. It is passed through as-is.
type MapEvent struct {
	Type   string
	Time   int64
	From   string
	To     string
	PC     uint64
	Line   int64
	Column int64
	Reason string
	Name   string
}
