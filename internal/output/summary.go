package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mrzor/v8log/internal/eventprocessor"
	"github.com/mrzor/v8log/internal/eventstream"
)

const summaryRule = "====================="

// WriteICSummary prints the IC counters in the fixed summary layout.
func WriteICSummary(w io.Writer, c eventprocessor.Counters) error {
	_, err := fmt.Fprintf(w, "%s\nLoad: %d\nStore: %d\nKeyedLoad: %d\nKeyedStore: %d\n",
		summaryRule, c.Load, c.Store, c.KeyedLoad, c.KeyedStore)
	return err
}

// WriteStats prints a one-line digest of a processed stream, followed by the
// dispatched count per tag in tag order.
func WriteStats(w io.Writer, source string, stats eventstream.Stats, records, functions int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d lines, %d dispatched, %d malformed, %d unknown, %d failed; %d code records, %d functions\n",
		source, stats.Lines, stats.Dispatched, stats.Malformed, stats.UnknownTags, stats.HandlerErrors,
		records, functions)

	tags := make([]string, 0, len(stats.ByTag))
	for tag := range stats.ByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(&b, "  %s: %d\n", tag, stats.ByTag[tag])
	}

	_, err := io.WriteString(w, b.String())
	return err
}
