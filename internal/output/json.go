package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mrzor/v8log/internal/codemap"
)

type jsonFunction struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type jsonRecord struct {
	Start       string         `json:"start"`
	End         string         `json:"end"`
	Size        uint64         `json:"size"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Type        string         `json:"type"`
	Kind        string         `json:"kind"`
	State       string         `json:"state,omitempty"`
	Timestamp   int64          `json:"timestamp"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	Function    *jsonFunction  `json:"function,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type jsonLibrary struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type jsonDump struct {
	Source    string        `json:"source,omitempty"`
	Records   []jsonRecord  `json:"records"`
	Libraries []jsonLibrary `json:"libraries"`
}

// Dumper writes a registry as an indented JSON document.
type Dumper struct {
	selection Selection
}

// NewDumper creates a Dumper for the given selection.
func NewDumper(selection Selection) *Dumper {
	return &Dumper{selection: selection}
}

// Dump writes the selected records of reg, sorted by address, and every library.
func (d *Dumper) Dump(w io.Writer, source string, reg *codemap.Registry) error {
	records, err := d.selection.records(reg)
	if err != nil {
		return err
	}

	doc := jsonDump{
		Source:    source,
		Records:   make([]jsonRecord, 0, len(records)),
		Libraries: make([]jsonLibrary, 0),
	}
	for _, rec := range records {
		doc.Records = append(doc.Records, d.record(rec))
	}
	for _, lib := range reg.Libraries() {
		doc.Libraries = append(doc.Libraries, jsonLibrary{
			Name:  lib.Name,
			Start: hex(lib.Start),
			End:   hex(lib.End),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return nil
}

func (d *Dumper) record(rec *codemap.CodeRecord) jsonRecord {
	out := jsonRecord{
		Start:       hex(rec.Start),
		End:         hex(rec.End()),
		Size:        rec.Size,
		Name:        rec.Name,
		DisplayName: rec.DisplayName(),
		Type:        rec.Type,
		Kind:        rec.Kind.String(),
		Timestamp:   rec.Timestamp,
	}
	if rec.Kind == codemap.KindFunctionCode {
		out.State = rec.State.String()
	}
	if rec.Function != nil {
		out.Function = &jsonFunction{Address: hex(rec.Function.Address), Name: rec.Function.Name}
	}
	if d.selection.Converter.Enabled() {
		created := d.selection.Converter.ToWallClock(rec.Timestamp).UTC()
		out.CreatedAt = &created
	}
	if attrs := d.selection.Evaluator.EvaluateCustomAttributes(rec); len(attrs) > 0 {
		out.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			out.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	return out
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}
