package codemap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddCodeAndGet(t *testing.T) {
	r := New()

	r.AddCode("JS", "foo", 1, 0x1000, 64)

	got := r.CodeAt(0x1000)
	if got == nil {
		t.Fatal("CodeAt() returned nil")
	}
	if got.Name != "foo" {
		t.Errorf("Name = %q, want foo", got.Name)
	}
	if got.Kind != KindCode {
		t.Errorf("Kind = %v, want code", got.Kind)
	}
	if _, ok := got.FunctionAddress(); ok {
		t.Error("plain code should have no function address")
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	r := New()

	if r.CodeAt(0x9999) != nil {
		t.Error("Expected nil for unknown address")
	}
	if r.FuncAt(0x9999) != nil {
		t.Error("Expected nil for unknown function")
	}
}

func TestRegistry_DistinctAddressesKeepLatest(t *testing.T) {
	r := New()

	for i := uint64(0); i < 50; i++ {
		r.AddCode("JS", fmt.Sprintf("old%d", i), 1, 0x1000+i*0x100, 16)
	}
	for i := uint64(0); i < 50; i++ {
		r.AddCode("Builtin", fmt.Sprintf("new%d", i), 2, 0x1000+i*0x100, 32)
	}

	require.Equal(t, 50, r.Len())
	for i := uint64(0); i < 50; i++ {
		rec := r.CodeAt(0x1000 + i*0x100)
		require.NotNil(t, rec)
		assert.Equal(t, fmt.Sprintf("new%d", i), rec.Name)
		assert.Equal(t, "Builtin", rec.Type)
		assert.Equal(t, uint64(32), rec.Size)
		assert.Equal(t, int64(2), rec.Timestamp)
	}
}

func TestRegistry_MoveCode(t *testing.T) {
	r := New()
	rec := r.AddCode("JS", "foo", 1, 0x1000, 64)

	require.True(t, r.MoveCode(0x1000, 0x2000))

	assert.Nil(t, r.CodeAt(0x1000))
	assert.Same(t, rec, r.CodeAt(0x2000), "move must preserve identity")
	assert.Equal(t, uint64(0x2000), rec.Start)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MoveCodeOverwritesTarget(t *testing.T) {
	r := New()
	moved := r.AddCode("JS", "foo", 1, 0x1000, 64)
	r.AddCode("JS", "victim", 1, 0x2000, 8)

	require.True(t, r.MoveCode(0x1000, 0x2000))

	assert.Same(t, moved, r.CodeAt(0x2000))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_MoveCodeMissingIsNoop(t *testing.T) {
	r := New()
	r.AddCode("JS", "foo", 1, 0x1000, 64)
	before := r.Records()

	assert.False(t, r.MoveCode(0x5000, 0x1000))
	assert.Equal(t, before, r.Records())
	assert.Equal(t, "foo", r.CodeAt(0x1000).Name)
}

func TestRegistry_DeleteIdempotent(t *testing.T) {
	r := New()
	r.AddCode("JS", "foo", 1, 0x1000, 64)

	assert.True(t, r.DeleteCode(0x1000))
	assert.False(t, r.DeleteCode(0x1000))
	assert.Zero(t, r.Len())

	assert.False(t, New().DeleteCode(0x9999))
}

func TestRegistry_AddFuncCode(t *testing.T) {
	r := New()

	rec := r.AddFuncCode("JS", "foo", 5, 0x1000, 64, 0x8000, Optimizable)

	assert.Equal(t, KindFunctionCode, rec.Kind)
	assert.Equal(t, Optimizable, rec.State)
	addr, ok := rec.FunctionAddress()
	require.True(t, ok)
	assert.Equal(t, uint64(0x8000), addr)

	fn := r.FuncAt(0x8000)
	require.NotNil(t, fn)
	assert.Equal(t, "foo", fn.Name)
	assert.Same(t, fn, rec.Function)
}

func TestRegistry_AddFuncCodeStateChangeKeepsRecord(t *testing.T) {
	r := New()

	first := r.AddFuncCode("JS", "foo", 5, 0x1000, 64, 0x8000, Optimizable)
	second := r.AddFuncCode("JS", "foo", 9, 0x1000, 64, 0x8000, Optimized)

	assert.Same(t, first, second)
	assert.Equal(t, Optimized, first.State)
	assert.Equal(t, int64(5), first.Timestamp, "creation timestamp is kept")
}

func TestRegistry_AddFuncCodeDifferentSizeReplaces(t *testing.T) {
	r := New()

	first := r.AddFuncCode("JS", "foo", 5, 0x1000, 64, 0x8000, Optimizable)
	second := r.AddFuncCode("JS", "foo", 9, 0x1000, 128, 0x8000, Optimized)

	assert.NotSame(t, first, second)
	assert.Same(t, second, r.CodeAt(0x1000))
	assert.Equal(t, 1, r.FuncLen())
}

func TestRegistry_AddFuncCodeRenamesFunction(t *testing.T) {
	r := New()

	r.AddFuncCode("JS", "foo", 1, 0x1000, 64, 0x8000, Compiled)
	r.AddFuncCode("JS", "bar", 2, 0x3000, 64, 0x8000, Compiled)

	assert.Equal(t, "bar", r.FuncAt(0x8000).Name)
	assert.Equal(t, "bar", r.CodeAt(0x1000).Function.Name)
}

func TestRegistry_MoveFunc(t *testing.T) {
	r := New()
	rec := r.AddFuncCode("JS", "foo", 1, 0x1000, 64, 0x8000, Compiled)

	require.True(t, r.MoveFunc(0x8000, 0x9000))

	assert.Nil(t, r.FuncAt(0x8000))
	require.NotNil(t, r.FuncAt(0x9000))
	addr, _ := rec.FunctionAddress()
	assert.Equal(t, uint64(0x9000), addr, "code follows its function")
	assert.Same(t, rec, r.CodeAt(0x1000), "code address space is independent")

	assert.False(t, r.MoveFunc(0x8000, 0xa000))
}

func TestRegistry_FindContaining(t *testing.T) {
	r := New()
	r.AddCode("JS", "a", 1, 0x1000, 0x100)
	r.AddCode("JS", "b", 1, 0x2000, 0x10)
	r.AddCode("JS", "empty", 1, 0x3000, 0)

	tests := []struct {
		addr uint64
		want string
	}{
		{addr: 0x0fff, want: ""},
		{addr: 0x1000, want: "a"},
		{addr: 0x10ff, want: "a"},
		{addr: 0x1100, want: ""},
		{addr: 0x2008, want: "b"},
		{addr: 0x3000, want: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#x", tt.addr), func(t *testing.T) {
			rec := r.FindContaining(tt.addr)
			if tt.want == "" {
				assert.Nil(t, rec)
				return
			}
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.Name)
		})
	}
}

func TestRegistry_FindContainingOverlap(t *testing.T) {
	r := New()
	r.AddCode("Builtin", "outer", 1, 0x1000, 0x1000)
	r.AddCode("JS", "inner", 2, 0x1400, 0x100)

	assert.Equal(t, "inner", r.FindContaining(0x1410).Name, "nearest start wins")
	require.NotNil(t, r.FindContaining(0x1800))
	assert.Equal(t, "outer", r.FindContaining(0x1800).Name, "falls back to the enclosing record")
	assert.Equal(t, "outer", r.FindContaining(0x1000).Name)
	assert.Nil(t, r.FindContaining(0x2000))
}

func TestRegistry_FindContainingAfterMove(t *testing.T) {
	r := New()
	r.AddCode("JS", "a", 1, 0x1000, 0x100)
	require.NotNil(t, r.FindContaining(0x1010))

	r.MoveCode(0x1000, 0x5000)

	assert.Nil(t, r.FindContaining(0x1010))
	assert.Equal(t, "a", r.FindContaining(0x5010).Name)
}

func TestRegistry_ResolveName(t *testing.T) {
	r := New()
	r.AddLibrary("/usr/lib/libc.so", 0x7f000000, 0x7f100000)
	r.AddFuncCode("JS", "foo", 1, 0x1000, 0x100, 0x8000, Optimized)

	assert.Equal(t, "*foo", r.ResolveName(0x1010))
	assert.Equal(t, "/usr/lib/libc.so", r.ResolveName(0x7f000010))
	assert.Empty(t, r.ResolveName(0x42))
}

func TestRegistry_RecordsSorted(t *testing.T) {
	r := New()
	r.AddCode("JS", "c", 1, 0x3000, 1)
	r.AddCode("JS", "a", 1, 0x1000, 1)
	r.AddCode("JS", "b", 1, 0x2000, 1)

	var names []string
	for _, rec := range r.Records() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestParseState(t *testing.T) {
	tests := []struct {
		marker string
		want   OptimizationState
	}{
		{marker: "", want: Compiled},
		{marker: "~", want: Optimizable},
		{marker: "*", want: Optimized},
		{marker: "^", want: Baseline},
		{marker: "+", want: Maglev},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := ParseState(tt.marker)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.marker, got.Marker())
		})
	}

	_, err := ParseState("?")
	assert.Error(t, err)
}
