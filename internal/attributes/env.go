package attributes

import "github.com/mrzor/v8log/internal/codemap"

// recordEnv builds the evaluation environment for rec.
func recordEnv(rec *codemap.CodeRecord) map[string]any {
	var (
		state    string
		function string
		funcAddr uint64
	)
	if rec.Kind == codemap.KindFunctionCode {
		state = rec.State.String()
	}
	if rec.Function != nil {
		function = rec.Function.Name
		funcAddr = rec.Function.Address
	}

	return map[string]any{
		"address":          rec.Start,
		"end":              rec.End(),
		"size":             rec.Size,
		"name":             rec.Name,
		"type":             rec.Type,
		"kind":             rec.Kind.String(),
		"state":            state,
		"timestamp":        rec.Timestamp,
		"function":         function,
		"function_address": funcAddr,
	}
}

// typeCheckEnv gives the compiler the shape of recordEnv.
func typeCheckEnv() map[string]any {
	return recordEnv(&codemap.CodeRecord{})
}
