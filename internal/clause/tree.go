package clause

import "strings"

// Path is a property path: an ordered sequence of field names,
// possibly traversing associations (e.g. ["customer", "name"]).
type Path []string

// ParsePath splits a dot-joined property path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// String returns the dot-joined form of the path.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Leaf returns the final segment of the path, the property the
// comparison applies to. Empty paths return "".
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Clause is one atomic filter condition: a property path, an
// operator, and a case-sensitivity mode. Clauses are immutable once
// produced by the definition loader.
type Clause struct {
	Path     Path
	Operator Operator
	Case     CaseMode
}

// Group is an ordered run of clauses combined with AND.
type Group []Clause

// Tree is the full filter specification: groups combined with OR,
// plus a distinct flag for the query projection.
type Tree struct {
	Groups   []Group
	Distinct bool
}

// Slots returns the total number of placeholders the tree will
// allocate: the sum of each clause's operator arity, left to right.
func (t *Tree) Slots() int {
	n := 0
	for _, g := range t.Groups {
		for _, c := range g {
			n += c.Operator.Arity()
		}
	}
	return n
}

// SortKey is one requested ordering: a property path and direction.
type SortKey struct {
	Path       Path
	Descending bool
}

// Sort is an ordered list of sort keys. An empty Sort leaves ordering
// to the query builder's stable default.
type Sort []SortKey
