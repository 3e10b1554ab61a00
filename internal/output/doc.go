// Package output renders processing results.
//
//   - WriteICSummary prints the inline-cache summary block.
//   - WriteStats prints one line of per-stream statistics.
//   - Dumper writes the live code registry as JSON.
//   - OTELFormatter emits one span per live code record.
//
// Dumper and OTELFormatter share the same selection pipeline: records are
// filtered with an attributes.Filter, enriched with attributes.Evaluator
// output, and stamped with wall-clock times when a timesync.Converter is set.
package output
