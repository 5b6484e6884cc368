package compile

import "github.com/nurkiewicz/partq/internal/clause"

// Creator compiles one clause tree into a finished query against an
// injected resolver/builder pair.
//
// A Creator accumulates state across the single compilation it was
// created for (the placeholder cursor and the predicate fold) and is
// not reentrant: construct one per compilation and discard it after
// Compile returns. Compilation is synchronous and performs no I/O;
// it always completes or fails in O(number of clauses).
type Creator struct {
	tree     *clause.Tree
	alloc    *Allocator
	resolver Resolver
	builder  Builder
}

// New creates a Creator for the given tree, declared parameters, and
// collaborator pair.
func New(tree *clause.Tree, params []clause.Param, r Resolver, b Builder) *Creator {
	return &Creator{
		tree:     tree,
		alloc:    NewAllocator(params),
		resolver: r,
		builder:  b,
	}
}

// Compile translates the clause tree into a query with the given sort
// and returns the finished query together with every allocated
// placeholder in creation order. That order is the binding contract:
// the caller supplies values positionally against it.
//
// Compilation fails atomically: on error no query and no placeholder
// list are returned.
func (c *Creator) Compile(sort clause.Sort) (Query, []clause.Placeholder, error) {
	filter, err := c.compose()
	if err != nil {
		return nil, nil, err
	}

	orders, err := c.orderings(sort)
	if err != nil {
		return nil, nil, err
	}

	q, err := c.builder.Finalize(filter, orders, c.tree.Distinct)
	if err != nil {
		return nil, nil, err
	}
	return q, c.alloc.Allocated(), nil
}

// compose folds the tree into one predicate: AND within a group, OR
// across groups. An empty group and an empty tree both yield the
// builder's always-true predicate, the identity for the fold.
func (c *Creator) compose() (Predicate, error) {
	var disjunction Predicate
	for _, group := range c.tree.Groups {
		var conjunction Predicate
		for _, cl := range group {
			p, err := c.predicate(cl)
			if err != nil {
				return nil, err
			}
			if conjunction == nil {
				conjunction = p
			} else {
				conjunction = c.builder.And(conjunction, p)
			}
		}
		if conjunction == nil {
			conjunction = c.builder.True()
		}
		if disjunction == nil {
			disjunction = conjunction
		} else {
			disjunction = c.builder.Or(disjunction, conjunction)
		}
	}
	if disjunction == nil {
		disjunction = c.builder.True()
	}
	return disjunction, nil
}

// predicate maps a single clause to one predicate, consuming
// placeholders matching the operator's arity.
//
// The property side is resolved and case-folded before any
// placeholder is allocated, so a failing clause leaks nothing into
// the allocated list.
func (c *Creator) predicate(cl clause.Clause) (Predicate, error) {
	path, err := c.resolver.Resolve(cl.Path)
	if err != nil {
		return nil, err
	}

	switch cl.Operator {
	case clause.OpBetween:
		lo, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		hi, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		return c.builder.Between(path, c.builder.Param(lo), c.builder.Param(hi)), nil

	case clause.OpGreaterThan:
		v, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		return c.builder.GreaterThan(path, c.builder.Param(v)), nil

	case clause.OpGreaterThanEqual:
		v, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		return c.builder.GreaterThanEqual(path, c.builder.Param(v)), nil

	case clause.OpLessThan:
		v, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		return c.builder.LessThan(path, c.builder.Param(v)), nil

	case clause.OpLessThanEqual:
		v, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		return c.builder.LessThanEqual(path, c.builder.Param(v)), nil

	case clause.OpIsNull:
		return c.builder.IsNull(path), nil

	case clause.OpIsNotNull:
		return c.builder.IsNotNull(path), nil

	case clause.OpIn, clause.OpNotIn:
		v, err := c.alloc.NextOf(clause.ValueType{Kind: clause.KindList})
		if err != nil {
			return nil, err
		}
		in := c.builder.In(path, c.builder.Param(v))
		if cl.Operator == clause.OpNotIn {
			return c.builder.Not(in), nil
		}
		return in, nil

	case clause.OpLike, clause.OpNotLike:
		folded, err := c.foldCase(path, cl)
		if err != nil {
			return nil, err
		}
		v, err := c.alloc.NextOf(clause.Text)
		if err != nil {
			return nil, err
		}
		pattern, err := c.foldCase(c.builder.Param(v), cl)
		if err != nil {
			return nil, err
		}
		like := c.builder.Like(folded, pattern)
		if cl.Operator == clause.OpNotLike {
			return c.builder.Not(like), nil
		}
		return like, nil

	case clause.OpEquals, clause.OpNotEquals:
		folded, err := c.foldCase(path, cl)
		if err != nil {
			return nil, err
		}
		v, err := c.alloc.Next()
		if err != nil {
			return nil, err
		}
		arg, err := c.foldCase(c.builder.Param(v), cl)
		if err != nil {
			return nil, err
		}
		if cl.Operator == clause.OpNotEquals {
			return c.builder.NotEqual(folded, arg), nil
		}
		return c.builder.Equal(folded, arg), nil

	default:
		return nil, newUnsupportedOperatorError(cl)
	}
}

// foldCase applies the clause's case-normalization policy to an
// expression. The same policy wraps the property side and the
// placeholder side of a comparison, keeping folding symmetric.
//
// CaseAlways on a non-text expression fails; CaseWhenPossible falls
// back to the unfolded expression without error.
func (c *Creator) foldCase(e Expr, cl clause.Clause) (Expr, error) {
	switch cl.Case {
	case clause.CaseAlways:
		if e.ValueType().Kind != clause.KindText {
			return nil, newTypeMismatchError(cl.Path.String(), e.ValueType())
		}
		return c.builder.Upper(e), nil
	case clause.CaseWhenPossible:
		if e.ValueType().Kind == clause.KindText {
			return c.builder.Upper(e), nil
		}
		return e, nil
	default:
		return e, nil
	}
}

// orderings translates the requested sort keys through the resolver.
func (c *Creator) orderings(sort clause.Sort) ([]Ordering, error) {
	if len(sort) == 0 {
		return nil, nil
	}
	orders := make([]Ordering, 0, len(sort))
	for _, key := range sort {
		e, err := c.resolver.Resolve(key.Path)
		if err != nil {
			return nil, err
		}
		if key.Descending {
			orders = append(orders, c.builder.Descending(e))
		} else {
			orders = append(orders, c.builder.Ascending(e))
		}
	}
	return orders, nil
}
