// Package eventprocessor routes V8 trace lines to their handlers.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│      Raw trace line                     │
//	└─────────────────┬───────────────────────┘
//	                  │ logline.Tokenize
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   Dispatcher                            │  ← Tag routing
//	│   - tag → routes (layout + handler)     │
//	│   - first layout that parses wins       │
//	│   - unknown tag → ErrUnknownTag         │
//	└─────────┬───────────────────────────────┘
//	          │
//	          ├──→ code-creation ──────→ codemap.Registry
//	          │    code-move/delete       - AddCode / AddFuncCode
//	          │    sfi-move               - MoveCode / DeleteCode / MoveFunc
//	          │    shared-library         - AddLibrary
//	          │
//	          ├──→ *IC ────────────────→ Counters
//	          │                           - Load/Store/KeyedLoad/KeyedStore
//	          │                           - ICEvent to the IC observer
//	          │
//	          └──→ map/map-details ────→ debug log, MapEvent observer
//
// Handlers are closures over the registry and counters handed to
// NewProcessor. Nothing is shared between processors.
package eventprocessor
