// Package testutil provides deterministic collaborator doubles for
// compiler tests: a resolver over a fixed property→type table and a
// builder that renders every node as an s-expression string, so tests
// can assert exact predicate shape without a SQL backend.
package testutil

import (
	"fmt"
	"strings"

	"github.com/nurkiewicz/partq/internal/clause"
	"github.com/nurkiewicz/partq/internal/compile"
)

// FakeExpr is an expression rendered as text.
type FakeExpr struct {
	Repr string
	Type clause.ValueType
}

// ValueType implements compile.Expr.
func (e FakeExpr) ValueType() clause.ValueType { return e.Type }

// FakePredicate is a predicate rendered as text.
type FakePredicate struct {
	Repr string
}

// PredicateNode implements compile.Predicate.
func (FakePredicate) PredicateNode() {}

// FakeOrdering is an ordering rendered as text.
type FakeOrdering struct {
	Repr string
}

// OrderingNode implements compile.Ordering.
func (FakeOrdering) OrderingNode() {}

// FakeQuery is the finalized query: the rendered filter and orderings
// plus the distinct flag, kept as plain fields for assertions.
type FakeQuery struct {
	Filter   string
	Orders   []string
	Distinct bool
}

// QueryNode implements compile.Query.
func (*FakeQuery) QueryNode() {}

// FakeResolver resolves property paths against a fixed table of
// dot-joined path → value type. Unknown paths are an error.
type FakeResolver struct {
	Types map[string]clause.ValueType
}

// Resolve implements compile.Resolver.
func (r *FakeResolver) Resolve(path clause.Path) (compile.Expr, error) {
	t, ok := r.Types[path.String()]
	if !ok {
		return nil, fmt.Errorf("unknown property %q", path)
	}
	return FakeExpr{Repr: path.String(), Type: t}, nil
}

// FakeBuilder renders predicates as s-expressions:
//
//	(= (upper name) (upper ?1))
//	(and (> age ?2) (between price ?3 ?4))
//
// Placeholders render as ?N with N the creation ordinal, so tests can
// read allocation order straight out of the predicate text.
type FakeBuilder struct{}

func expr(e compile.Expr) string { return e.(FakeExpr).Repr }

func pred(p compile.Predicate) string { return p.(FakePredicate).Repr }

// Param implements compile.Builder.
func (FakeBuilder) Param(p clause.Placeholder) compile.Expr {
	return FakeExpr{Repr: fmt.Sprintf("?%d", p.Ordinal), Type: p.Type}
}

// Upper implements compile.Builder.
func (FakeBuilder) Upper(e compile.Expr) compile.Expr {
	return FakeExpr{Repr: "(upper " + expr(e) + ")", Type: clause.Text}
}

func binary(op string, e, v compile.Expr) compile.Predicate {
	return FakePredicate{Repr: fmt.Sprintf("(%s %s %s)", op, expr(e), expr(v))}
}

func (FakeBuilder) Between(e, lo, hi compile.Expr) compile.Predicate {
	return FakePredicate{Repr: fmt.Sprintf("(between %s %s %s)", expr(e), expr(lo), expr(hi))}
}

func (FakeBuilder) GreaterThan(e, v compile.Expr) compile.Predicate { return binary(">", e, v) }

func (FakeBuilder) GreaterThanEqual(e, v compile.Expr) compile.Predicate { return binary(">=", e, v) }

func (FakeBuilder) LessThan(e, v compile.Expr) compile.Predicate { return binary("<", e, v) }

func (FakeBuilder) LessThanEqual(e, v compile.Expr) compile.Predicate { return binary("<=", e, v) }

func (FakeBuilder) IsNull(e compile.Expr) compile.Predicate {
	return FakePredicate{Repr: "(is-null " + expr(e) + ")"}
}

func (FakeBuilder) IsNotNull(e compile.Expr) compile.Predicate {
	return FakePredicate{Repr: "(is-not-null " + expr(e) + ")"}
}

func (FakeBuilder) In(e, v compile.Expr) compile.Predicate { return binary("in", e, v) }

func (FakeBuilder) Like(e, v compile.Expr) compile.Predicate { return binary("like", e, v) }

func (FakeBuilder) Equal(e, v compile.Expr) compile.Predicate { return binary("=", e, v) }

func (FakeBuilder) NotEqual(e, v compile.Expr) compile.Predicate { return binary("<>", e, v) }

func (FakeBuilder) Not(p compile.Predicate) compile.Predicate {
	return FakePredicate{Repr: "(not " + pred(p) + ")"}
}

func (FakeBuilder) And(a, b compile.Predicate) compile.Predicate {
	return FakePredicate{Repr: fmt.Sprintf("(and %s %s)", pred(a), pred(b))}
}

func (FakeBuilder) Or(a, b compile.Predicate) compile.Predicate {
	return FakePredicate{Repr: fmt.Sprintf("(or %s %s)", pred(a), pred(b))}
}

func (FakeBuilder) True() compile.Predicate {
	return FakePredicate{Repr: "true"}
}

func (FakeBuilder) Ascending(e compile.Expr) compile.Ordering {
	return FakeOrdering{Repr: "(asc " + expr(e) + ")"}
}

func (FakeBuilder) Descending(e compile.Expr) compile.Ordering {
	return FakeOrdering{Repr: "(desc " + expr(e) + ")"}
}

// Finalize implements compile.Builder.
func (FakeBuilder) Finalize(filter compile.Predicate, orders []compile.Ordering, distinct bool) (compile.Query, error) {
	q := &FakeQuery{Filter: pred(filter), Distinct: distinct}
	for _, o := range orders {
		q.Orders = append(q.Orders, o.(FakeOrdering).Repr)
	}
	return q, nil
}

// Types builds a resolver type table from alternating path, type
// pairs, cutting fixture noise in tests:
//
//	testutil.Types("name", clause.Text, "age", clause.Int)
func Types(pairs ...any) map[string]clause.ValueType {
	if len(pairs)%2 != 0 {
		panic("testutil.Types: odd number of arguments")
	}
	m := make(map[string]clause.ValueType, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1].(clause.ValueType)
	}
	return m
}

// JoinOrders renders orderings for one-line assertions.
func JoinOrders(q *FakeQuery) string {
	return strings.Join(q.Orders, " ")
}
