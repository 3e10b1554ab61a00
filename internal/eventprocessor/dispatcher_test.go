package eventprocessor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/v8log/internal/logline"
)

func TestDispatcher_UnknownTag(t *testing.T) {
	d := NewDispatcher()

	_, err := d.DispatchLine("future-tag,1,2,3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.False(t, d.Handles("future-tag"))
}

func TestDispatcher_InvokesHandlerWithParsedArgs(t *testing.T) {
	d := NewDispatcher()

	var got []uint64
	d.Register("code-move", []logline.FieldParser{logline.Uint, logline.Uint}, func(a logline.Args) error {
		got = append(got, a.Uint(0), a.Uint(1))
		return nil
	})

	tag, err := d.DispatchLine("code-move,0x10,32")
	require.NoError(t, err)
	assert.Equal(t, "code-move", tag)
	assert.Equal(t, []uint64{0x10, 32}, got)
}

func TestDispatcher_MalformedSkipsHandler(t *testing.T) {
	d := NewDispatcher()

	called := false
	d.Register("code-delete", []logline.FieldParser{logline.Uint}, func(logline.Args) error {
		called = true
		return nil
	})

	_, err := d.DispatchLine("code-delete,nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, logline.ErrMalformedLine)
	assert.False(t, called)

	_, err = d.DispatchLine("code-delete")
	assert.ErrorIs(t, err, logline.ErrMalformedLine)
	assert.False(t, called)
}

func TestDispatcher_FallsBackToNextLayout(t *testing.T) {
	d := NewDispatcher()

	var used string
	d.Register("x", []logline.FieldParser{logline.Int, logline.Int}, func(logline.Args) error {
		used = "wide"
		return nil
	})
	d.Register("x", []logline.FieldParser{logline.Int}, func(logline.Args) error {
		used = "narrow"
		return nil
	})

	_, err := d.DispatchLine("x,1,2")
	require.NoError(t, err)
	assert.Equal(t, "wide", used)

	_, err = d.DispatchLine("x,1")
	require.NoError(t, err)
	assert.Equal(t, "narrow", used)
}

func TestDispatcher_HandlerMalformedTriesNextRoute(t *testing.T) {
	d := NewDispatcher()

	var used string
	d.Register("x", []logline.FieldParser{logline.String}, func(logline.Args) error {
		return &logline.MalformedLineError{Field: 0, Reason: "rejected"}
	})
	d.Register("x", []logline.FieldParser{logline.String}, func(logline.Args) error {
		used = "second"
		return nil
	})

	_, err := d.DispatchLine("x,a")
	require.NoError(t, err)
	assert.Equal(t, "second", used)
}

func TestDispatcher_HandlerErrorReturned(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")

	d.Register("x", nil, func(logline.Args) error { return boom })

	_, err := d.DispatchLine("x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, logline.ErrMalformedLine)
}

func TestDispatcher_RegisterRejectsBadLayout(t *testing.T) {
	d := NewDispatcher()

	assert.Panics(t, func() {
		d.Register("x", []logline.FieldParser{logline.VarArgs, logline.Int}, func(logline.Args) error { return nil })
	})
	assert.Panics(t, func() {
		d.Register("x", nil, nil)
	})
}
