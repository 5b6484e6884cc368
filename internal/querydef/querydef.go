// Package querydef compiles CUE query definitions into the clause
// model. A definition names a root entity, the clause tree (a list of
// AND groups combined with OR), the declared parameters, and an
// optional sort:
//
//	query: "adults-by-name": {
//		entity: "User"
//		where: [[
//			{path: "name", op: "equals", ignoreCase: "always"},
//			{path: "age", op: "greaterThan"},
//		]]
//		params: [
//			{name: "name", type: "text"},
//			{name: "age", type: "int"},
//		]
//		sort: [{path: "name"}, {path: "age", dir: "desc"}]
//	}
package querydef

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/nurkiewicz/partq/internal/clause"
)

// QueryDef is one compiled query definition.
type QueryDef struct {
	Name   string
	Entity string
	Tree   clause.Tree
	Params []clause.Param
	Sort   clause.Sort
}

// CompileError describes a defect in a CUE query definition.
type CompileError struct {
	Field   string // definition field the error relates to
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileQuery parses a CUE value into a QueryDef. The value should
// be the query struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: "by-name": { ... }`)
//	def, err := CompileQuery(v.LookupPath(cue.ParsePath(`query."by-name"`)))
//
// The compiled tree and params are validated together before return.
func CompileQuery(v cue.Value) (*QueryDef, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "query", Message: err.Error(), Pos: v.Pos()}
	}

	def := &QueryDef{}

	// The query name is the struct label, possibly quoted.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	var err error
	def.Entity, err = parseEntity(v)
	if err != nil {
		return nil, err
	}

	def.Tree, err = parseWhere(v)
	if err != nil {
		return nil, err
	}

	def.Params, err = parseParams(v)
	if err != nil {
		return nil, err
	}

	def.Sort, err = parseSort(v)
	if err != nil {
		return nil, err
	}

	if err := clause.Validate(&def.Tree, def.Params); err != nil {
		return nil, &CompileError{Field: "params", Message: err.Error(), Pos: v.Pos()}
	}

	return def, nil
}

func parseEntity(v cue.Value) (string, error) {
	entityVal := v.LookupPath(cue.ParsePath("entity"))
	if !entityVal.Exists() {
		return "", &CompileError{Field: "entity", Message: "entity is required", Pos: v.Pos()}
	}
	entity, err := entityVal.String()
	if err != nil {
		return "", &CompileError{Field: "entity", Message: err.Error(), Pos: entityVal.Pos()}
	}
	return entity, nil
}

// parseWhere extracts the clause tree: a list of groups, each a list
// of clauses. A missing where compiles to the empty tree (match all).
func parseWhere(v cue.Value) (clause.Tree, error) {
	tree := clause.Tree{}

	distinctVal := v.LookupPath(cue.ParsePath("distinct"))
	if distinctVal.Exists() {
		d, err := distinctVal.Bool()
		if err != nil {
			return tree, &CompileError{Field: "distinct", Message: err.Error(), Pos: distinctVal.Pos()}
		}
		tree.Distinct = d
	}

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return tree, nil
	}

	groups, err := whereVal.List()
	if err != nil {
		return tree, &CompileError{Field: "where", Message: "where must be a list of clause groups", Pos: whereVal.Pos()}
	}
	for groups.Next() {
		group, err := parseGroup(groups.Value())
		if err != nil {
			return tree, err
		}
		tree.Groups = append(tree.Groups, group)
	}
	return tree, nil
}

func parseGroup(v cue.Value) (clause.Group, error) {
	clauses, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "where", Message: "clause group must be a list of clauses", Pos: v.Pos()}
	}
	var group clause.Group
	for clauses.Next() {
		c, err := parseClause(clauses.Value())
		if err != nil {
			return nil, err
		}
		group = append(group, c)
	}
	return group, nil
}

func parseClause(v cue.Value) (clause.Clause, error) {
	var c clause.Clause

	pathVal := v.LookupPath(cue.ParsePath("path"))
	if !pathVal.Exists() {
		return c, &CompileError{Field: "where", Message: "clause path is required", Pos: v.Pos()}
	}
	path, err := pathVal.String()
	if err != nil {
		return c, &CompileError{Field: "where", Message: err.Error(), Pos: pathVal.Pos()}
	}
	c.Path = clause.ParsePath(path)

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return c, &CompileError{Field: "where", Message: fmt.Sprintf("clause %q has no op", path), Pos: v.Pos()}
	}
	opName, err := opVal.String()
	if err != nil {
		return c, &CompileError{Field: "where", Message: err.Error(), Pos: opVal.Pos()}
	}
	c.Operator, err = clause.ParseOperator(opName)
	if err != nil {
		return c, &CompileError{Field: "where", Message: err.Error(), Pos: opVal.Pos()}
	}

	caseVal := v.LookupPath(cue.ParsePath("ignoreCase"))
	if caseVal.Exists() {
		caseName, err := caseVal.String()
		if err != nil {
			return c, &CompileError{Field: "where", Message: err.Error(), Pos: caseVal.Pos()}
		}
		c.Case, err = clause.ParseCaseMode(caseName)
		if err != nil {
			return c, &CompileError{Field: "where", Message: err.Error(), Pos: caseVal.Pos()}
		}
	}

	return c, nil
}

func parseParams(v cue.Value) ([]clause.Param, error) {
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil
	}
	list, err := paramsVal.List()
	if err != nil {
		return nil, &CompileError{Field: "params", Message: "params must be a list", Pos: paramsVal.Pos()}
	}
	var params []clause.Param
	for list.Next() {
		pv := list.Value()
		var p clause.Param

		nameVal := pv.LookupPath(cue.ParsePath("name"))
		if nameVal.Exists() {
			p.Name, err = nameVal.String()
			if err != nil {
				return nil, &CompileError{Field: "params", Message: err.Error(), Pos: nameVal.Pos()}
			}
		}

		typeVal := pv.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{Field: "params", Message: fmt.Sprintf("param %q has no type", p.Name), Pos: pv.Pos()}
		}
		typeName, err := typeVal.String()
		if err != nil {
			return nil, &CompileError{Field: "params", Message: err.Error(), Pos: typeVal.Pos()}
		}
		p.Type, err = clause.ParseValueType(typeName)
		if err != nil {
			return nil, &CompileError{Field: "params", Message: err.Error(), Pos: typeVal.Pos()}
		}
		params = append(params, p)
	}
	return params, nil
}

func parseSort(v cue.Value) (clause.Sort, error) {
	sortVal := v.LookupPath(cue.ParsePath("sort"))
	if !sortVal.Exists() {
		return nil, nil
	}
	list, err := sortVal.List()
	if err != nil {
		return nil, &CompileError{Field: "sort", Message: "sort must be a list", Pos: sortVal.Pos()}
	}
	var sort clause.Sort
	for list.Next() {
		kv := list.Value()
		var key clause.SortKey

		pathVal := kv.LookupPath(cue.ParsePath("path"))
		if !pathVal.Exists() {
			return nil, &CompileError{Field: "sort", Message: "sort key path is required", Pos: kv.Pos()}
		}
		path, err := pathVal.String()
		if err != nil {
			return nil, &CompileError{Field: "sort", Message: err.Error(), Pos: pathVal.Pos()}
		}
		key.Path = clause.ParsePath(path)

		dirVal := kv.LookupPath(cue.ParsePath("dir"))
		if dirVal.Exists() {
			dir, err := dirVal.String()
			if err != nil {
				return nil, &CompileError{Field: "sort", Message: err.Error(), Pos: dirVal.Pos()}
			}
			switch dir {
			case "asc":
			case "desc":
				key.Descending = true
			default:
				return nil, &CompileError{Field: "sort", Message: fmt.Sprintf("invalid sort direction %q, must be \"asc\" or \"desc\"", dir), Pos: dirVal.Pos()}
			}
		}
		sort = append(sort, key)
	}
	return sort, nil
}
