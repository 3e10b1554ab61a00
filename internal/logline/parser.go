package logline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type parserKind uint8

const (
	kindString parserKind = iota
	kindInt
	kindUint
	kindVarArgs
)

// FieldParser describes how one positional field is parsed.
type FieldParser struct {
	kind parserKind
}

var (
	// String keeps the field as-is.
	String = FieldParser{kind: kindString}
	// Int parses a signed decimal or 0x-prefixed hex integer.
	Int = FieldParser{kind: kindInt}
	// Uint parses an unsigned decimal or 0x-prefixed hex integer, used for addresses.
	Uint = FieldParser{kind: kindUint}
	// VarArgs collects every remaining field unparsed. Only valid as the last parser.
	VarArgs = FieldParser{kind: kindVarArgs}
)

func (p FieldParser) String() string {
	switch p.kind {
	case kindString:
		return "string"
	case kindInt:
		return "int"
	case kindUint:
		return "uint"
	case kindVarArgs:
		return "varargs"
	default:
		return fmt.Sprintf("parser(%d)", p.kind)
	}
}

func (p FieldParser) parse(field string) (any, error) {
	switch p.kind {
	case kindInt:
		return ParseInt(field)
	case kindUint:
		return ParseUint(field)
	default:
		return field, nil
	}
}

// ValidateLayout reports whether parsers form a usable layout.
func ValidateLayout(parsers []FieldParser) error {
	for i, p := range parsers {
		if p.kind == kindVarArgs && i != len(parsers)-1 {
			return fmt.Errorf("varargs parser at position %d of %d must be last", i, len(parsers))
		}
	}
	return nil
}

// Parse applies parsers to fields positionally.
// Fields beyond the layout are ignored unless the layout ends with VarArgs.
func Parse(fields []string, parsers []FieldParser) (Args, error) {
	required := len(parsers)
	hasTail := required > 0 && parsers[required-1].kind == kindVarArgs
	if hasTail {
		required--
	}

	if len(fields) < required {
		return Args{}, &MalformedLineError{
			Field:  len(fields),
			Reason: fmt.Sprintf("expected at least %d fields, got %d", required, len(fields)),
		}
	}

	values := make([]any, required)
	for i := 0; i < required; i++ {
		v, err := parsers[i].parse(fields[i])
		if err != nil {
			return Args{}, &MalformedLineError{
				Field:  i,
				Value:  fields[i],
				Reason: "expected " + parsers[i].String(),
				Err:    err,
			}
		}
		values[i] = v
	}

	args := Args{values: values}
	if hasTail {
		args.tail = append(make([]string, 0, len(fields)-required), fields[required:]...)
	}
	return args, nil
}

// ParseUint parses decimal or 0x-prefixed hex.
func ParseUint(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// ParseInt parses an optionally negative decimal or 0x-prefixed hex.
func ParseInt(s string) (int64, error) {
	rest, negative := strings.CutPrefix(s, "-")
	v, err := ParseUint(rest)
	if err != nil {
		return 0, err
	}
	if negative {
		if v > -math.MinInt64 {
			return 0, fmt.Errorf("parsing %q: %w", s, strconv.ErrRange)
		}
		return int64(-v), nil
	}
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("parsing %q: %w", s, strconv.ErrRange)
	}
	return int64(v), nil
}

// ErrMalformedLine matches every MalformedLineError.
var ErrMalformedLine = errors.New("malformed line")

// MalformedLineError reports a line that does not fit its tag's layout.
type MalformedLineError struct {
	Field  int // zero-based, counted after the tag
	Value  string
	Reason string
	Err    error
}

func (e *MalformedLineError) Error() string {
	msg := fmt.Sprintf("malformed line: field %d", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedLine) hold.
func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}
