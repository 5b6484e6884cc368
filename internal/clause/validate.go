package clause

import "fmt"

// ValidationError describes a structural defect in a tree or its
// declared parameters, found before compilation starts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid clause tree: " + e.Message
}

// Validate checks a tree against its declared parameters.
//
// Rules:
//   - every clause must have a non-empty path
//   - the sum of operator arities must equal the declared param count
//   - every declared param must have a usable type
//
// Compilation enforces placeholder exhaustion again at allocation
// time; validating up front turns a count mismatch into one clear
// error instead of a mid-compile failure.
func Validate(tree *Tree, params []Param) error {
	if tree == nil {
		return &ValidationError{Message: "tree is nil"}
	}
	for gi, g := range tree.Groups {
		for ci, c := range g {
			if len(c.Path) == 0 {
				return &ValidationError{
					Message: fmt.Sprintf("group %d clause %d has an empty property path", gi, ci),
				}
			}
		}
	}
	for i, p := range params {
		if p.Type.IsZero() {
			return &ValidationError{
				Message: fmt.Sprintf("param %d (%s) has no type", i, p.Name),
			}
		}
	}
	if want, got := tree.Slots(), len(params); want != got {
		return &ValidationError{
			Message: fmt.Sprintf("tree consumes %d parameter slots but %d params are declared", want, got),
		}
	}
	return nil
}
