package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/v8log/internal/eventprocessor"
	"github.com/mrzor/v8log/internal/eventstream"
)

func TestWriteICSummary(t *testing.T) {
	tests := []struct {
		name     string
		counters eventprocessor.Counters
		want     string
	}{
		{
			name: "zero",
			want: "=====================\nLoad: 0\nStore: 0\nKeyedLoad: 0\nKeyedStore: 0\n",
		},
		{
			name:     "counts",
			counters: eventprocessor.Counters{Load: 3, Store: 1, KeyedLoad: 12, KeyedStore: 7},
			want:     "=====================\nLoad: 3\nStore: 1\nKeyedLoad: 12\nKeyedStore: 7\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteICSummary(&buf, tt.counters))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteStats(t *testing.T) {
	stats := eventstream.Stats{
		Lines:         6,
		Dispatched:    4,
		Malformed:     1,
		UnknownTags:   1,
		HandlerErrors: 0,
		ByTag:         map[string]int{"code-move": 1, "LoadIC": 1, "code-creation": 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, "v8.log", stats, 2, 1))

	want := "v8.log: 6 lines, 4 dispatched, 1 malformed, 1 unknown, 0 failed; 2 code records, 1 functions\n" +
		"  LoadIC: 1\n" +
		"  code-creation: 2\n" +
		"  code-move: 1\n"
	assert.Equal(t, want, buf.String())
}
