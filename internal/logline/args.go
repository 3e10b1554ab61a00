package logline

// Args holds the parsed fields of one line, in layout order.
// Accessors panic when the index or type does not match the layout,
// which is a bug in the handler rather than in the input.
type Args struct {
	values []any
	tail   []string
}

// Len returns the number of positional values, excluding the tail.
func (a Args) Len() int {
	return len(a.values)
}

// String returns the value at i, parsed with String.
func (a Args) String(i int) string {
	return a.values[i].(string)
}

// Int returns the value at i, parsed with Int.
func (a Args) Int(i int) int64 {
	return a.values[i].(int64)
}

// Uint returns the value at i, parsed with Uint.
func (a Args) Uint(i int) uint64 {
	return a.values[i].(uint64)
}

// Tail returns the fields collected by VarArgs. It is empty, not nil,
// when the layout has a tail and no fields were left.
func (a Args) Tail() []string {
	return a.tail
}
