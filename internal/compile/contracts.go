package compile

import "github.com/nurkiewicz/partq/internal/clause"

// Expr is an opaque typed expression owned by the query-builder
// backend: a resolved property path, a parameter reference, or a
// wrapped transform of either. The compiler never inspects an Expr
// beyond its value type, which it needs to decide case foldability.
type Expr interface {
	ValueType() clause.ValueType
}

// Predicate is an opaque boolean expression node produced by a
// Builder. The compiler only combines predicates through the Builder
// and returns them; backends implement the marker method.
type Predicate interface {
	PredicateNode()
}

// Ordering is an opaque ordering expression produced by a Builder.
type Ordering interface {
	OrderingNode()
}

// Query is an opaque finished query produced by Builder.Finalize:
// projection, filter, ordering, and distinct flag assembled by the
// backend.
type Query interface {
	QueryNode()
}

// Resolver turns a property path into a navigable typed expression,
// traversing associations as needed. Implementations are assumed
// stateless or externally synchronized.
type Resolver interface {
	Resolve(path clause.Path) (Expr, error)
}

// Builder is the query-building capability the compiler targets. One
// method per predicate shape keeps the operator mapping explicit and
// lets backends stay oblivious to clause semantics.
//
// Builders may accumulate state across calls (joins, fragments); the
// compiler holds exactly one builder per compilation and never shares
// it.
type Builder interface {
	// Param produces a reference to an allocated placeholder.
	Param(p clause.Placeholder) Expr

	// Upper wraps an expression in an uppercase transform.
	Upper(e Expr) Expr

	Between(e, lo, hi Expr) Predicate
	GreaterThan(e, v Expr) Predicate
	GreaterThanEqual(e, v Expr) Predicate
	LessThan(e, v Expr) Predicate
	LessThanEqual(e, v Expr) Predicate
	IsNull(e Expr) Predicate
	IsNotNull(e Expr) Predicate
	In(e, v Expr) Predicate
	Like(e, v Expr) Predicate
	Equal(e, v Expr) Predicate
	NotEqual(e, v Expr) Predicate

	Not(p Predicate) Predicate
	And(a, b Predicate) Predicate
	Or(a, b Predicate) Predicate

	// True produces the always-true predicate, the identity for the
	// AND fold over an empty group.
	True() Predicate

	// Ascending and Descending produce ordering expressions for
	// resolved sort keys.
	Ascending(e Expr) Ordering
	Descending(e Expr) Ordering

	// Finalize assembles the finished query from the composed filter,
	// the translated orderings, and the tree's distinct flag.
	Finalize(filter Predicate, orders []Ordering, distinct bool) (Query, error)
}
