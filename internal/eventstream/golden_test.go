package eventstream_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/txtar"

	"github.com/mrzor/v8log/internal/codemap"
	"github.com/mrzor/v8log/internal/eventstream"
	"github.com/mrzor/v8log/internal/output"
)

// Each testdata/*.txtar archive holds a "v8.log" input and the expected
// "registry", "stats" and "summary" renderings after processing it.
func TestGolden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, path := range archives {
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			require.NoError(t, err)

			files := make(map[string]string, len(archive.Files))
			for _, f := range archive.Files {
				files[f.Name] = string(f.Data)
			}
			input, ok := files["v8.log"]
			require.True(t, ok, "archive has no v8.log")

			d := eventstream.New(eventstream.WithLogger(zaptest.NewLogger(t)))
			require.NoError(t, d.ProcessString(context.Background(), input))

			if want, ok := files["registry"]; ok {
				assert.Equal(t, want, renderRegistry(d.Registry()))
			}
			if want, ok := files["stats"]; ok {
				var buf bytes.Buffer
				require.NoError(t, output.WriteStats(&buf, name, d.Stats(), d.Registry().Len(), d.Registry().FuncLen()))
				assert.Equal(t, want, buf.String())
			}
			if want, ok := files["summary"]; ok {
				var buf bytes.Buffer
				require.NoError(t, output.WriteICSummary(&buf, d.Counters()))
				assert.Equal(t, want, buf.String())
			}
		})
	}
}

func renderRegistry(reg *codemap.Registry) string {
	var b strings.Builder
	for _, rec := range reg.Records() {
		fmt.Fprintf(&b, "%#x %d %s %s", rec.Start, rec.Size, rec.Type, rec.DisplayName())
		if addr, ok := rec.FunctionAddress(); ok {
			fmt.Fprintf(&b, " fn=%#x", addr)
		}
		b.WriteByte('\n')
	}
	for _, lib := range reg.Libraries() {
		fmt.Fprintf(&b, "lib %#x-%#x %s\n", lib.Start, lib.End, lib.Name)
	}
	return b.String()
}
