package querydef

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurkiewicz/partq/internal/clause"
)

func compileDef(t *testing.T, src, path string) (*QueryDef, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileQuery(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileQueryBasic(t *testing.T) {
	def, err := compileDef(t, `
		query: "adults-by-name": {
			entity: "User"
			where: [[
				{path: "name", op: "equals", ignoreCase: "always"},
				{path: "age", op: "greaterThan"},
			]]
			params: [
				{name: "name", type: "text"},
				{name: "minAge", type: "int"},
			]
			sort: [{path: "name"}, {path: "age", dir: "desc"}]
		}
	`, `query."adults-by-name"`)
	require.NoError(t, err)

	assert.Equal(t, "adults-by-name", def.Name)
	assert.Equal(t, "User", def.Entity)
	assert.False(t, def.Tree.Distinct)

	require.Len(t, def.Tree.Groups, 1)
	group := def.Tree.Groups[0]
	require.Len(t, group, 2)
	assert.Equal(t, clause.ParsePath("name"), group[0].Path)
	assert.Equal(t, clause.OpEquals, group[0].Operator)
	assert.Equal(t, clause.CaseAlways, group[0].Case)
	assert.Equal(t, clause.OpGreaterThan, group[1].Operator)
	assert.Equal(t, clause.CaseNever, group[1].Case)

	require.Len(t, def.Params, 2)
	assert.Equal(t, clause.Param{Name: "name", Type: clause.Text}, def.Params[0])
	assert.Equal(t, clause.Param{Name: "minAge", Type: clause.Int}, def.Params[1])

	require.Len(t, def.Sort, 2)
	assert.False(t, def.Sort[0].Descending)
	assert.True(t, def.Sort[1].Descending)
}

func TestCompileQueryOrGroups(t *testing.T) {
	def, err := compileDef(t, `
		query: byStatus: {
			entity: "Order"
			distinct: true
			where: [
				[{path: "status", op: "in"}],
				[{path: "total", op: "between"}],
			]
			params: [
				{name: "statuses", type: "list<text>"},
				{name: "lo", type: "int"},
				{name: "hi", type: "int"},
			]
		}
	`, "query.byStatus")
	require.NoError(t, err)

	assert.Equal(t, "byStatus", def.Name)
	assert.True(t, def.Tree.Distinct)
	assert.Len(t, def.Tree.Groups, 2)
	assert.Equal(t, clause.ListOf(clause.KindText), def.Params[0].Type)
}

func TestCompileQueryNoWhere(t *testing.T) {
	def, err := compileDef(t, `
		query: all: {
			entity: "Order"
		}
	`, "query.all")
	require.NoError(t, err)

	assert.Empty(t, def.Tree.Groups)
	assert.Empty(t, def.Params)
	assert.Empty(t, def.Sort)
}

func TestCompileQueryNestedPath(t *testing.T) {
	def, err := compileDef(t, `
		query: byCity: {
			entity: "Order"
			where: [[{path: "customer.address.city", op: "equals"}]]
			params: [{name: "city", type: "text"}]
		}
	`, "query.byCity")
	require.NoError(t, err)

	assert.Equal(t, clause.Path{"customer", "address", "city"}, def.Tree.Groups[0][0].Path)
}

func TestCompileQueryErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		errPart string
	}{
		{
			name:    "missing entity",
			src:     `query: bad: { where: [[{path: "x", op: "isNull"}]] }`,
			errPart: "entity is required",
		},
		{
			name: "missing op",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "status"}]]
			}`,
			errPart: "no op",
		},
		{
			name: "unknown op",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "status", op: "near"}]]
				params: [{name: "x", type: "text"}]
			}`,
			errPart: "unknown operator",
		},
		{
			name: "unknown case mode",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "status", op: "equals", ignoreCase: "sometimes"}]]
				params: [{name: "x", type: "text"}]
			}`,
			errPart: "unknown case mode",
		},
		{
			name: "untyped param",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "status", op: "equals"}]]
				params: [{name: "x"}]
			}`,
			errPart: "no type",
		},
		{
			name: "float param",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "total", op: "equals"}]]
				params: [{name: "total", type: "float"}]
			}`,
			errPart: "float",
		},
		{
			name: "param count mismatch",
			src: `query: bad: {
				entity: "Order"
				where: [[{path: "total", op: "between"}]]
				params: [{name: "lo", type: "int"}]
			}`,
			errPart: "parameter slots",
		},
		{
			name: "bad sort direction",
			src: `query: bad: {
				entity: "Order"
				sort: [{path: "total", dir: "down"}]
			}`,
			errPart: "invalid sort direction",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileDef(t, tc.src, "query.bad")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)

			var cerr *CompileError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}
