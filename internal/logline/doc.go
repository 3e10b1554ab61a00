// Package logline tokenizes V8 trace log lines.
//
// A trace line is a tag followed by comma-separated fields:
//
//	code-creation,JS,0,1234,0x2f10,64,foo
//	^ tag         ^ fields parsed positionally
//
// Each tag has a layout: an ordered list of FieldParser values, one per
// field. String leaves a field untouched, Int and Uint parse decimal or
// 0x-prefixed hex. VarArgs is a sentinel that may only close a layout and
// collects every remaining field, unparsed, as the tail.
//
// Fields may carry the logger's escapes (\\, \xHH, \uHHHH, \u{H..H}), which
// Split decodes. Older logs quote string fields instead; a field opening with
// a double quote runs to its closing quote and may contain commas.
package logline
