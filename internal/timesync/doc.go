// Package timesync converts V8 log timestamps to wall-clock time.
//
// Timestamps in a V8 log are microseconds since the isolate started
// logging, not absolute times. When the caller knows when logging began
// (a base time), Converter anchors log timestamps at it.
package timesync
