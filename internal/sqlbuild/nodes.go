package sqlbuild

import "github.com/nurkiewicz/partq/internal/clause"

// Expr is a SQL fragment with the value type of what it evaluates to.
type Expr struct {
	SQL  string
	Type clause.ValueType
}

// ValueType implements compile.Expr.
func (e Expr) ValueType() clause.ValueType { return e.Type }

// Pred is a SQL boolean fragment.
type Pred struct {
	SQL string
}

// PredicateNode implements compile.Predicate.
func (Pred) PredicateNode() {}

// Order is a SQL ordering fragment.
type Order struct {
	SQL string
}

// OrderingNode implements compile.Ordering.
func (Order) OrderingNode() {}

// Query is a finished, parameterized SELECT statement. Values are
// never interpolated: every placeholder renders as ? and is bound by
// the caller in placeholder creation order (list placeholders are
// expanded at bind time, see the store package).
type Query struct {
	// SQL is the complete statement text.
	SQL string

	// Entity is the root entity the query selects from.
	Entity string
}

// QueryNode implements compile.Query.
func (*Query) QueryNode() {}
