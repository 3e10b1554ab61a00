package output

import (
	"github.com/mrzor/v8log/internal/attributes"
	"github.com/mrzor/v8log/internal/codemap"
	"github.com/mrzor/v8log/internal/timesync"
)

// Selection decides which records are reported and how they are enriched.
// The zero Selection reports every record with no extra attributes.
type Selection struct {
	Filter    *attributes.Filter
	Evaluator *attributes.Evaluator
	Converter *timesync.Converter
}

func (s Selection) records(reg *codemap.Registry) ([]*codemap.CodeRecord, error) {
	return s.Filter.Select(reg.Records())
}
