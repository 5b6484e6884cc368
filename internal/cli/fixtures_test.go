package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nurkiewicz/partq/internal/schema"
	"github.com/nurkiewicz/partq/internal/store"
)

const fixtureSchema = `
entities:
  - name: Order
    table: orders
    primary_key: id
    fields:
      - name: id
        type: int
      - name: status
        type: text
      - name: total
        column: total_cents
        type: int
    associations:
      - name: customer
        target: Customer
        column: customer_id
  - name: Customer
    table: customers
    primary_key: id
    fields:
      - name: id
        type: int
      - name: name
        type: text
`

const fixtureDefs = `package queries

query: "paid-orders": {
	entity: "Order"
	where: [[{path: "status", op: "equals"}]]
	params: [{name: "status", type: "text"}]
}

query: "big-orders": {
	entity: "Order"
	where: [[{path: "total", op: "greaterThan"}]]
	params: [{name: "min", type: "int"}]
	sort: [{path: "total", dir: "desc"}]
}
`

// writeSchemaFile writes the fixture schema and returns its path.
func writeSchemaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureSchema), 0o644))
	return path
}

// writeDefsDir writes CUE definition sources into a fresh directory.
func writeDefsDir(t *testing.T, sources ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, src := range sources {
		name := "queries.cue"
		if i > 0 {
			name = string(rune('a'+i)) + "_queries.cue"
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

// loadSchemaForTest loads a schema file, failing the test on error.
func loadSchemaForTest(t *testing.T, path string) *schema.Schema {
	t.Helper()
	sch, err := schema.Load(path)
	require.NoError(t, err)
	return sch
}

// writeOrdersDB creates a seeded SQLite database and returns its path.
func writeOrdersDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	stmts := []string{
		"CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, status TEXT NOT NULL, total_cents INTEGER NOT NULL, customer_id INTEGER NOT NULL REFERENCES customers(id))",
		"INSERT INTO customers (id, name) VALUES (1, 'Smith'), (2, 'Jones')",
		"INSERT INTO orders (id, status, total_cents, customer_id) VALUES " +
			"(1, 'new', 500, 1), (2, 'paid', 1500, 1), (3, 'paid', 900, 2)",
	}
	for _, stmt := range stmts {
		_, err := s.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return path
}
