// Package attributes evaluates expr-lang expressions over code records.
//
// Expressions see one record as:
//
//	address, end, size      uint64
//	name, type, kind, state string
//	timestamp               int64
//	function                string (empty for plain code)
//	function_address        uint64 (zero for plain code)
//
// Filter compiles a boolean expression that selects records. Evaluator
// computes named custom attributes for the records that are reported.
package attributes
