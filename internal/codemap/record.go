package codemap

import "fmt"

// Kind separates plain code from code tied to a JS-visible function.
type Kind uint8

const (
	KindCode Kind = iota
	KindFunctionCode
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindFunctionCode:
		return "function"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// OptimizationState is the tier a function's code was compiled at.
type OptimizationState uint8

const (
	Compiled OptimizationState = iota
	Optimizable
	Optimized
	Baseline
	Maglev
)

var stateMarkers = map[string]OptimizationState{
	"":  Compiled,
	"~": Optimizable,
	"*": Optimized,
	"^": Baseline,
	"+": Maglev,
}

// ParseState maps a code-creation state marker to its state.
func ParseState(marker string) (OptimizationState, error) {
	state, ok := stateMarkers[marker]
	if !ok {
		return Compiled, fmt.Errorf("unknown optimization state marker %q", marker)
	}
	return state, nil
}

// Marker is the inverse of ParseState.
func (s OptimizationState) Marker() string {
	switch s {
	case Optimizable:
		return "~"
	case Optimized:
		return "*"
	case Baseline:
		return "^"
	case Maglev:
		return "+"
	default:
		return ""
	}
}

func (s OptimizationState) String() string {
	switch s {
	case Compiled:
		return "compiled"
	case Optimizable:
		return "optimizable"
	case Optimized:
		return "optimized"
	case Baseline:
		return "baseline"
	case Maglev:
		return "maglev"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// FunctionRecord is a JS function (SharedFunctionInfo) known to the log.
type FunctionRecord struct {
	Address uint64
	Name    string
}

// CodeRecord is one compiled unit: a function's code, a builtin, a stub.
type CodeRecord struct {
	Start     uint64
	Size      uint64
	Name      string
	Type      string // log type: JS, Builtin, Stub, RegExp, ...
	Kind      Kind
	Timestamp int64 // microseconds since logger start

	// Function and State are set only for KindFunctionCode.
	Function *FunctionRecord
	State    OptimizationState
}

// End returns the first address past the record.
func (r *CodeRecord) End() uint64 {
	return r.Start + r.Size
}

// Contains reports whether addr falls inside [Start, End).
func (r *CodeRecord) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End()
}

// FunctionAddress returns the linked function's current address.
func (r *CodeRecord) FunctionAddress() (uint64, bool) {
	if r.Function == nil {
		return 0, false
	}
	return r.Function.Address, true
}

// DisplayName prefixes function code with its state marker, e.g. "*foo".
func (r *CodeRecord) DisplayName() string {
	if r.Kind != KindFunctionCode {
		return r.Name
	}
	return r.State.Marker() + r.Name
}

// Library is a statically mapped address range, such as a shared object.
type Library struct {
	Name  string
	Start uint64
	End   uint64
}

// Contains reports whether addr falls inside [Start, End).
func (l *Library) Contains(addr uint64) bool {
	return addr >= l.Start && addr < l.End
}
