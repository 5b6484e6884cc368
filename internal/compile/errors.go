package compile

import (
	"errors"
	"fmt"

	"github.com/nurkiewicz/partq/internal/clause"
)

// Error represents a failure detected while compiling a clause tree.
//
// All compilation failures are structural: they mean the tree, its
// declared parameters, or the definition they came from is malformed.
// Retrying with the same inputs is pointless, so callers should treat
// any Error as a bug in upstream definition construction.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Property is the dot-joined property path of the offending
	// clause, when one is known.
	Property string

	// Operator is the offending operator for unsupported-operator
	// errors.
	Operator clause.Operator
}

// ErrorCode categorizes compilation errors.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates the declared parameters do not
	// match what the clause tree requires: placeholder exhaustion or
	// a missing placeholder type.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"

	// ErrCodeUnsupportedOperator indicates an operator outside the
	// known mapping reached the compiler.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeTypeMismatch indicates a case-folding requirement was
	// applied to a non-text property.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s: %s (property=%s)", e.Code, e.Message, e.Property)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError reports whether err is a parameter
// configuration error. Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeConfiguration
}

// IsUnsupportedOperatorError reports whether err is an
// unsupported-operator error.
func IsUnsupportedOperatorError(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeUnsupportedOperator
}

// IsTypeMismatchError reports whether err is a case-fold type
// mismatch error.
func IsTypeMismatchError(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeTypeMismatch
}

// newExhaustedError creates a configuration error for placeholder
// exhaustion.
func newExhaustedError(declared int) *Error {
	return &Error{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("clause tree requires more placeholders than the %d declared parameters", declared),
	}
}

// newUntypedError creates a configuration error for a placeholder
// request with no type.
func newUntypedError(p clause.Param) *Error {
	return &Error{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("parameter %q has no declared type", p.Name),
	}
}

// newUnsupportedOperatorError creates an error naming the operator
// that has no predicate mapping.
func newUnsupportedOperatorError(c clause.Clause) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedOperator,
		Message:  fmt.Sprintf("no predicate mapping for operator %s", c.Operator),
		Property: c.Path.String(),
		Operator: c.Operator,
	}
}

// newTypeMismatchError creates an error naming the non-text property
// that a mandatory case fold was applied to.
func newTypeMismatchError(property string, got clause.ValueType) *Error {
	return &Error{
		Code:     ErrCodeTypeMismatch,
		Message:  fmt.Sprintf("cannot ignore case of %s value, property %q must be text", got, property),
		Property: property,
	}
}
