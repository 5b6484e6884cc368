// Package sqlbuild implements the compile.Builder and
// compile.Resolver contracts for SQLite. Property paths resolve
// against a schema; association steps become inner joins with stable
// table aliases; predicates and orderings are plain SQL fragments
// assembled into one parameterized SELECT.
package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/nurkiewicz/partq/internal/clause"
	"github.com/nurkiewicz/partq/internal/compile"
	"github.com/nurkiewicz/partq/internal/schema"
)

// join is one accumulated association traversal.
type join struct {
	table string // joined table name
	alias string
	on    string
}

// Builder builds one SQLite query. It accumulates joins as the
// compiler resolves paths, so a Builder serves exactly one
// compilation, mirroring the creator's own lifetime.
type Builder struct {
	schema *schema.Schema
	root   *schema.Entity

	joins   []join
	aliases map[string]string // association path prefix → alias
}

// NewBuilder creates a builder rooted at the named entity. The root
// table always gets alias t0.
func NewBuilder(s *schema.Schema, entity string) (*Builder, error) {
	root := s.Entity(entity)
	if root == nil {
		return nil, fmt.Errorf("unknown entity %q", entity)
	}
	return &Builder{
		schema:  s,
		root:    root,
		aliases: map[string]string{"": "t0"},
	}, nil
}

// Resolve implements compile.Resolver. Every leading path segment
// must name an association; the final segment must name a field of
// the entity reached. Repeated traversals of the same association
// path reuse one join.
func (b *Builder) Resolve(path clause.Path) (compile.Expr, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty property path")
	}

	entity := b.root
	alias := "t0"
	prefix := ""
	for _, step := range path[:len(path)-1] {
		assoc := entity.AssociationByName(step)
		if assoc == nil {
			return nil, fmt.Errorf("entity %q has no association %q (in path %q)", entity.Name, step, path)
		}
		target := b.schema.Entity(assoc.Target)
		next := prefix + step + "."
		joined, ok := b.aliases[next]
		if !ok {
			joined = fmt.Sprintf("t%d", len(b.aliases))
			targetCol := assoc.TargetColumn
			if targetCol == "" {
				targetCol = target.PrimaryKey
			}
			b.joins = append(b.joins, join{
				table: target.Table,
				alias: joined,
				on:    fmt.Sprintf("%s.%s = %s.%s", alias, assoc.Column, joined, targetCol),
			})
			b.aliases[next] = joined
		}
		entity = target
		alias = joined
		prefix = next
	}

	leaf := path.Leaf()
	field := entity.FieldByName(leaf)
	if field == nil {
		return nil, fmt.Errorf("entity %q has no field %q (in path %q)", entity.Name, leaf, path)
	}
	return Expr{
		SQL:  alias + "." + field.ColumnName(),
		Type: field.ValueType(),
	}, nil
}

func sqlOf(e compile.Expr) string { return e.(Expr).SQL }

func sqlPred(p compile.Predicate) string { return p.(Pred).SQL }

// Param implements compile.Builder. Every placeholder renders as ?;
// binding is positional in creation order.
func (b *Builder) Param(p clause.Placeholder) compile.Expr {
	return Expr{SQL: "?", Type: p.Type}
}

// Upper implements compile.Builder.
func (b *Builder) Upper(e compile.Expr) compile.Expr {
	return Expr{SQL: "UPPER(" + sqlOf(e) + ")", Type: clause.Text}
}

func (b *Builder) compare(op string, e, v compile.Expr) compile.Predicate {
	return Pred{SQL: fmt.Sprintf("%s %s %s", sqlOf(e), op, sqlOf(v))}
}

func (b *Builder) Between(e, lo, hi compile.Expr) compile.Predicate {
	return Pred{SQL: fmt.Sprintf("%s BETWEEN %s AND %s", sqlOf(e), sqlOf(lo), sqlOf(hi))}
}

func (b *Builder) GreaterThan(e, v compile.Expr) compile.Predicate { return b.compare(">", e, v) }

func (b *Builder) GreaterThanEqual(e, v compile.Expr) compile.Predicate {
	return b.compare(">=", e, v)
}

func (b *Builder) LessThan(e, v compile.Expr) compile.Predicate { return b.compare("<", e, v) }

func (b *Builder) LessThanEqual(e, v compile.Expr) compile.Predicate { return b.compare("<=", e, v) }

func (b *Builder) IsNull(e compile.Expr) compile.Predicate {
	return Pred{SQL: sqlOf(e) + " IS NULL"}
}

func (b *Builder) IsNotNull(e compile.Expr) compile.Predicate {
	return Pred{SQL: sqlOf(e) + " IS NOT NULL"}
}

func (b *Builder) In(e, v compile.Expr) compile.Predicate { return b.compare("IN", e, v) }

func (b *Builder) Like(e, v compile.Expr) compile.Predicate { return b.compare("LIKE", e, v) }

func (b *Builder) Equal(e, v compile.Expr) compile.Predicate { return b.compare("=", e, v) }

func (b *Builder) NotEqual(e, v compile.Expr) compile.Predicate { return b.compare("<>", e, v) }

func (b *Builder) Not(p compile.Predicate) compile.Predicate {
	return Pred{SQL: "NOT (" + sqlPred(p) + ")"}
}

// And joins without parentheses; Or parenthesizes its operands so the
// composed filter keeps group precedence when AND and OR mix.
func (b *Builder) And(a, p compile.Predicate) compile.Predicate {
	return Pred{SQL: sqlPred(a) + " AND " + sqlPred(p)}
}

func (b *Builder) Or(a, p compile.Predicate) compile.Predicate {
	return Pred{SQL: "(" + sqlPred(a) + ") OR (" + sqlPred(p) + ")"}
}

// True returns the vacuous-truth predicate.
func (b *Builder) True() compile.Predicate {
	return Pred{SQL: "1 = 1"}
}

func (b *Builder) Ascending(e compile.Expr) compile.Ordering {
	return Order{SQL: sqlOf(e) + " ASC"}
}

func (b *Builder) Descending(e compile.Expr) compile.Ordering {
	return Order{SQL: sqlOf(e) + " DESC"}
}

// Finalize implements compile.Builder. Every query gets an ORDER BY:
// when no sort was requested the root primary key with COLLATE BINARY
// keeps results deterministic across runs.
func (b *Builder) Finalize(filter compile.Predicate, orders []compile.Ordering, distinct bool) (compile.Query, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString("t0.* FROM ")
	sb.WriteString(b.root.Table)
	sb.WriteString(" t0")

	for _, j := range b.joins {
		fmt.Fprintf(&sb, " INNER JOIN %s %s ON %s", j.table, j.alias, j.on)
	}

	if f := sqlPred(filter); f != "1 = 1" {
		sb.WriteString(" WHERE ")
		sb.WriteString(f)
	}

	sb.WriteString(" ORDER BY ")
	if len(orders) == 0 {
		fmt.Fprintf(&sb, "t0.%s COLLATE BINARY ASC", b.root.PrimaryKey)
	} else {
		parts := make([]string, len(orders))
		for i, o := range orders {
			parts[i] = o.(Order).SQL
		}
		sb.WriteString(strings.Join(parts, ", "))
	}

	return &Query{SQL: sb.String(), Entity: b.root.Name}, nil
}
