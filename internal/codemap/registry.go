package codemap

import (
	"maps"
	"slices"
	"sort"
)

// Registry maps addresses to the code and function records live at them.
type Registry struct {
	code   map[uint64]*CodeRecord     // start address -> code
	funcs  map[uint64]*FunctionRecord // function address -> function
	libs   []*Library
	starts []uint64 // sorted code keys, nil when stale
	// maxSize is the largest size ever inserted; it bounds how far back
	// FindContaining looks for an enclosing record.
	maxSize uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		code:  make(map[uint64]*CodeRecord),
		funcs: make(map[uint64]*FunctionRecord),
	}
}

// AddCode inserts a record at address, replacing whatever lived there.
func (r *Registry) AddCode(typ, name string, timestamp int64, address, size uint64) *CodeRecord {
	rec := &CodeRecord{
		Start:     address,
		Size:      size,
		Name:      name,
		Type:      typ,
		Kind:      KindCode,
		Timestamp: timestamp,
	}
	r.put(rec)
	return rec
}

// AddFuncCode inserts function code at address and links it to the function
// at funcAddress, creating or renaming that function as needed.
//
// When the record already at address has the same size and function, only
// its state changes and the existing record is returned.
func (r *Registry) AddFuncCode(typ, name string, timestamp int64, address, size, funcAddress uint64, state OptimizationState) *CodeRecord {
	fn := r.funcs[funcAddress]
	if fn == nil {
		fn = &FunctionRecord{Address: funcAddress, Name: name}
		r.funcs[funcAddress] = fn
	} else if fn.Name != name {
		// Function object has been overwritten with a new one.
		fn.Name = name
	}

	if rec := r.code[address]; rec != nil && rec.Size == size && rec.Function == fn {
		rec.State = state
		rec.Name = name
		return rec
	}

	rec := &CodeRecord{
		Start:     address,
		Size:      size,
		Name:      name,
		Type:      typ,
		Kind:      KindFunctionCode,
		Timestamp: timestamp,
		Function:  fn,
		State:     state,
	}
	r.put(rec)
	return rec
}

// MoveCode relocates the record at from to to, overwriting any record at to.
// It returns false, changing nothing, when no record lives at from.
func (r *Registry) MoveCode(from, to uint64) bool {
	rec := r.code[from]
	if rec == nil {
		return false
	}
	delete(r.code, from)
	r.starts = nil
	rec.Start = to
	r.put(rec)
	return true
}

// DeleteCode discards the record at address and reports whether one existed.
func (r *Registry) DeleteCode(address uint64) bool {
	if _, ok := r.code[address]; !ok {
		return false
	}
	delete(r.code, address)
	r.starts = nil
	return true
}

// MoveFunc relocates a function record. Code linked to it follows.
func (r *Registry) MoveFunc(from, to uint64) bool {
	fn := r.funcs[from]
	if fn == nil {
		return false
	}
	delete(r.funcs, from)
	fn.Address = to
	r.funcs[to] = fn
	return true
}

// AddLibrary registers a static range consulted when no code record matches.
func (r *Registry) AddLibrary(name string, start, end uint64) *Library {
	lib := &Library{Name: name, Start: start, End: end}
	r.libs = append(r.libs, lib)
	return lib
}

// CodeAt returns the record starting exactly at address, or nil.
func (r *Registry) CodeAt(address uint64) *CodeRecord {
	return r.code[address]
}

// FuncAt returns the function record at address, or nil.
func (r *Registry) FuncAt(address uint64) *FunctionRecord {
	return r.funcs[address]
}

// FindContaining returns the code record covering address, or nil.
// Overlapping records are kept; the one with the nearest start wins.
func (r *Registry) FindContaining(address uint64) *CodeRecord {
	starts := r.sortedStarts()
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > address })
	for j := i - 1; j >= 0 && address-starts[j] < r.maxSize; j-- {
		if rec := r.code[starts[j]]; rec.Contains(address) {
			return rec
		}
	}
	return nil
}

// LibraryContaining returns the most recently added library covering address, or nil.
func (r *Registry) LibraryContaining(address uint64) *Library {
	for i := len(r.libs) - 1; i >= 0; i-- {
		if r.libs[i].Contains(address) {
			return r.libs[i]
		}
	}
	return nil
}

// ResolveName names the code or library covering address.
// It returns "" when nothing does.
func (r *Registry) ResolveName(address uint64) string {
	if rec := r.FindContaining(address); rec != nil {
		return rec.DisplayName()
	}
	if lib := r.LibraryContaining(address); lib != nil {
		return lib.Name
	}
	return ""
}

// Records returns the live code records sorted by start address.
func (r *Registry) Records() []*CodeRecord {
	starts := r.sortedStarts()
	out := make([]*CodeRecord, 0, len(starts))
	for _, start := range starts {
		out = append(out, r.code[start])
	}
	return out
}

// Functions returns the function records sorted by address.
func (r *Registry) Functions() []*FunctionRecord {
	out := make([]*FunctionRecord, 0, len(r.funcs))
	for _, addr := range slices.Sorted(maps.Keys(r.funcs)) {
		out = append(out, r.funcs[addr])
	}
	return out
}

// Libraries returns the registered libraries in registration order.
func (r *Registry) Libraries() []*Library {
	return slices.Clone(r.libs)
}

// Len returns the number of live code records.
func (r *Registry) Len() int {
	return len(r.code)
}

// FuncLen returns the number of function records.
func (r *Registry) FuncLen() int {
	return len(r.funcs)
}

func (r *Registry) put(rec *CodeRecord) {
	r.maxSize = max(r.maxSize, rec.Size)
	if _, ok := r.code[rec.Start]; !ok {
		r.starts = nil
	}
	r.code[rec.Start] = rec
}

func (r *Registry) sortedStarts() []uint64 {
	if r.starts == nil {
		r.starts = slices.Sorted(maps.Keys(r.code))
	}
	return r.starts
}
