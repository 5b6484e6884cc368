package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCompile(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCompileCommand_Text(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, fixtureDefs)

	buf, err := runCompile(t, "text", defsDir, "--schema", schemaPath)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "paid-orders (Order)")
	assert.Contains(t, output, "SELECT t0.* FROM orders t0 WHERE t0.status = ?")
	assert.Contains(t, output, "?1(status text)")
	assert.Contains(t, output, "2 queries compiled")
}

func TestCompileCommand_JSON(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, fixtureDefs)

	buf, err := runCompile(t, "json", defsDir, "--schema", schemaPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Queries, 2)

	byName := map[string]CompiledQuery{}
	for _, q := range result.Queries {
		byName[q.Name] = q
	}
	big := byName["big-orders"]
	assert.Equal(t, "Order", big.Entity)
	assert.Contains(t, big.SQL, "t0.total_cents > ?")
	assert.Contains(t, big.SQL, "ORDER BY t0.total_cents DESC")
	assert.Equal(t, []string{"?1(min int)"}, big.Placeholders)
}

func TestCompileCommand_OutputFile(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, fixtureDefs)
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	_, err := runCompile(t, "text", defsDir, "--schema", schemaPath, "--output", outputFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Queries, 2)
}

func TestCompileCommand_MissingSchema(t *testing.T) {
	defsDir := writeDefsDir(t, fixtureDefs)

	_, err := runCompile(t, "text", defsDir, "--schema", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileCommand_MissingDefsDir(t *testing.T) {
	schemaPath := writeSchemaFile(t)

	_, err := runCompile(t, "text", "/nonexistent/defs", "--schema", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileCommand_BadDefinition(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, `package queries

query: "unknown-field": {
	entity: "Order"
	where: [[{path: "nope", op: "isNull"}]]
}
`)

	buf, err := runCompile(t, "text", defsDir, "--schema", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "unknown-field")
}

func TestCompileCommand_UnknownEntity(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, `package queries

query: "bad-entity": {
	entity: "Invoice"
}
`)

	buf, err := runCompile(t, "text", defsDir, "--schema", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Invoice")
}

func TestCompileDefinitionHelper(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, fixtureDefs)

	sch := loadSchemaForTest(t, schemaPath)
	result, errs := LoadQueries(defsDir, LoadModeFailFast)
	require.Empty(t, errs)

	for _, def := range result.Queries {
		q, placeholders, err := CompileDefinition(sch, def)
		require.NoError(t, err)
		assert.Equal(t, "Order", q.Entity)
		assert.Len(t, placeholders, 1)
	}
}
