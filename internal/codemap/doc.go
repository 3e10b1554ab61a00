// Package codemap tracks the code objects a V8 log describes.
//
// Registry keys CodeRecord values by start address and FunctionRecord values
// by function address, in two independent address spaces.
//
// Commands (mutations):
//   - AddCode(type, name, ts, addr, size) - Insert or overwrite
//   - AddFuncCode(..., funcAddr, state) - Same, linked to a function
//   - MoveCode(from, to) - Relocate, keeping the record's identity
//   - DeleteCode(addr) - Discard
//   - MoveFunc(from, to) - Relocate a function record
//   - AddLibrary(name, start, end) - Register a static address range
//
// Queries (read-only):
//   - CodeAt(addr), FuncAt(addr) - Exact start-address lookup
//   - FindContaining(addr) - Record whose [start, start+size) covers addr
//   - ResolveName(addr) - Code or library name for a pc
//   - Records(), Functions(), Libraries() - Snapshots sorted by address
//
// A log is a window into a long-running process, so moves and deletes of
// unknown addresses are no-ops rather than errors.
//
// Registry is not safe for concurrent use. Each log stream owns one.
package codemap
