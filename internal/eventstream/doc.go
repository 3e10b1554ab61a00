// Package eventstream drives a V8 trace log through an event processor.
//
// State Machine (Driver):
//
//	┌─────────┐
//	│  Idle   │
//	└────┬────┘
//	     │ ProcessFile / ProcessString / ProcessReader
//	     ▼
//	┌───────────┐
//	│ Streaming │ ◄──┐
//	└────┬──────┘    │ next line: tokenize, dispatch, count
//	     │           │
//	     │ EOF, read failure or context done
//	     ▼
//	┌──────────┐
//	│ Finished │  registry, counters and stats stay queryable
//	└──────────┘
//
// Lines are consumed strictly in order. Malformed lines, unknown tags and
// handler failures are counted and skipped. Only failing to read the input
// ends the stream with ErrStreamRead.
//
// A Driver owns its registry and counters. ProcessFiles gives every file
// its own Driver, so independent logs can be processed concurrently.
package eventstream
