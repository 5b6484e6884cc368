package clause

import "fmt"

// Operator identifies the comparison a clause performs.
//
// The set is closed: the compiler dispatches over it with an
// exhaustive switch, so an out-of-range value is an upstream contract
// violation, not an extension point.
type Operator int

const (
	// OpBetween matches values within an inclusive range.
	// Consumes two placeholders: lower bound, then upper bound.
	OpBetween Operator = iota

	// OpGreaterThan matches values strictly above the argument.
	OpGreaterThan

	// OpGreaterThanEqual matches values at or above the argument.
	OpGreaterThanEqual

	// OpLessThan matches values strictly below the argument.
	OpLessThan

	// OpLessThanEqual matches values at or below the argument.
	OpLessThanEqual

	// OpIsNull matches absent values. Consumes no placeholders.
	OpIsNull

	// OpIsNotNull matches present values. Consumes no placeholders.
	OpIsNotNull

	// OpIn matches values contained in a collection argument.
	OpIn

	// OpNotIn matches values not contained in a collection argument.
	OpNotIn

	// OpLike matches text against a pattern argument.
	OpLike

	// OpNotLike matches text not matching a pattern argument.
	OpNotLike

	// OpEquals matches values equal to the argument.
	OpEquals

	// OpNotEquals matches values different from the argument.
	OpNotEquals
)

// operatorNames maps operators to their definition-file spellings.
var operatorNames = map[Operator]string{
	OpBetween:          "between",
	OpGreaterThan:      "greaterThan",
	OpGreaterThanEqual: "greaterThanEqual",
	OpLessThan:         "lessThan",
	OpLessThanEqual:    "lessThanEqual",
	OpIsNull:           "isNull",
	OpIsNotNull:        "isNotNull",
	OpIn:               "in",
	OpNotIn:            "notIn",
	OpLike:             "like",
	OpNotLike:          "notLike",
	OpEquals:           "equals",
	OpNotEquals:        "notEquals",
}

// String returns the definition-file spelling of the operator.
func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Arity returns the number of parameter placeholders the operator
// consumes: 0 for null checks, 2 for between, 1 otherwise.
func (op Operator) Arity() int {
	switch op {
	case OpIsNull, OpIsNotNull:
		return 0
	case OpBetween:
		return 2
	default:
		return 1
	}
}

// ParseOperator converts a definition-file spelling to an Operator.
func ParseOperator(name string) (Operator, error) {
	for op, n := range operatorNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", name)
}

// CaseMode controls whether a clause compares text case-insensitively.
type CaseMode int

const (
	// CaseNever compares verbatim. The default.
	CaseNever CaseMode = iota

	// CaseAlways folds both sides to upper case and fails compilation
	// if the property is not text.
	CaseAlways

	// CaseWhenPossible folds both sides when the property is text and
	// silently compares verbatim otherwise.
	CaseWhenPossible
)

// String returns the definition-file spelling of the case mode.
func (m CaseMode) String() string {
	switch m {
	case CaseAlways:
		return "always"
	case CaseWhenPossible:
		return "whenPossible"
	default:
		return "never"
	}
}

// ParseCaseMode converts a definition-file spelling to a CaseMode.
// The empty string means CaseNever.
func ParseCaseMode(name string) (CaseMode, error) {
	switch name {
	case "", "never":
		return CaseNever, nil
	case "always":
		return CaseAlways, nil
	case "whenPossible":
		return CaseWhenPossible, nil
	default:
		return 0, fmt.Errorf("unknown case mode %q", name)
	}
}
