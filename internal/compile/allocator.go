package compile

import "github.com/nurkiewicz/partq/internal/clause"

// Allocator issues parameter placeholders against the declared
// parameter list, one per value a clause consumes, in strict
// left-to-right order. The cursor over the declared params is the
// only mutable state; an Allocator belongs to exactly one compilation
// and must not be shared.
type Allocator struct {
	params    []clause.Param
	cursor    int
	allocated []clause.Placeholder
}

// NewAllocator creates an allocator over the declared parameters.
func NewAllocator(params []clause.Param) *Allocator {
	return &Allocator{params: params}
}

// Next allocates a placeholder with the next declared parameter's
// type and name.
func (a *Allocator) Next() (clause.Placeholder, error) {
	p, err := a.advance()
	if err != nil {
		return clause.Placeholder{}, err
	}
	return a.emit(p.Type, p.Name)
}

// NextOf allocates a placeholder forcing the given type, used when an
// operator needs a type other than the declared one (a membership
// operator needing a list, a pattern operator needing text). The
// declared type wins when it is assignable to the requested type,
// keeping the declared name; otherwise the requested type is used and
// the name is dropped.
func (a *Allocator) NextOf(want clause.ValueType) (clause.Placeholder, error) {
	if want.IsZero() {
		return clause.Placeholder{}, &Error{
			Code:    ErrCodeConfiguration,
			Message: "placeholder requested with no type",
		}
	}
	p, err := a.advance()
	if err != nil {
		return clause.Placeholder{}, err
	}
	if p.Type.AssignableTo(want) {
		return a.emit(p.Type, p.Name)
	}
	return a.emit(want, "")
}

// Allocated returns every placeholder created so far, in creation
// order. The returned slice is shared; callers must not modify it.
func (a *Allocator) Allocated() []clause.Placeholder {
	return a.allocated
}

// advance consumes the next declared parameter.
func (a *Allocator) advance() (clause.Param, error) {
	if a.cursor >= len(a.params) {
		return clause.Param{}, newExhaustedError(len(a.params))
	}
	p := a.params[a.cursor]
	if p.Type.IsZero() {
		return clause.Param{}, newUntypedError(p)
	}
	a.cursor++
	return p, nil
}

// emit records and returns a placeholder. Ordinals are 1-based.
func (a *Allocator) emit(t clause.ValueType, name string) (clause.Placeholder, error) {
	ph := clause.Placeholder{
		Ordinal: len(a.allocated) + 1,
		Name:    name,
		Type:    t,
	}
	a.allocated = append(a.allocated, ph)
	return ph, nil
}
