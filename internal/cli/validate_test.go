package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidate(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateCommand_Valid(t *testing.T) {
	defsDir := writeDefsDir(t, fixtureDefs)

	buf, err := runValidate(t, "text", defsDir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "OK: 2 queries valid")
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	defsDir := writeDefsDir(t, fixtureDefs)

	buf, err := runValidate(t, "json", defsDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Queries)
	assert.Empty(t, result.Issues)
}

func TestValidateCommand_CollectsAllIssues(t *testing.T) {
	defsDir := writeDefsDir(t, `package queries

query: "bad-op": {
	entity: "Order"
	where: [[{path: "status", op: "near"}]]
	params: [{name: "status", type: "text"}]
}

query: "bad-count": {
	entity: "Order"
	where: [[{path: "total", op: "between"}]]
	params: [{name: "lo", type: "int"}]
}
`)

	buf, err := runValidate(t, "json", defsDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data, jerr := json.Marshal(resp.Data)
	require.NoError(t, jerr)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 2)
}

func TestValidateCommand_SchemaChecks(t *testing.T) {
	schemaPath := writeSchemaFile(t)

	// Structurally fine, but the path does not exist on the entity;
	// only a schema-aware validation can catch it
	defsDir := writeDefsDir(t, `package queries

query: "ghost-path": {
	entity: "Order"
	where: [[{path: "ghost", op: "isNull"}]]
}
`)

	_, err := runValidate(t, "text", defsDir)
	require.NoError(t, err)

	buf, err := runValidate(t, "text", defsDir, "--schema", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "ghost")
}

func TestValidateCommand_CaseFoldMismatch(t *testing.T) {
	schemaPath := writeSchemaFile(t)
	defsDir := writeDefsDir(t, `package queries

query: "fold-int": {
	entity: "Order"
	where: [[{path: "total", op: "equals", ignoreCase: "always"}]]
	params: [{name: "total", type: "int"}]
}
`)

	buf, err := runValidate(t, "text", defsDir, "--schema", schemaPath)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "E201")
	assert.Contains(t, buf.String(), "must be text")
}

func TestValidateCommand_MissingDir(t *testing.T) {
	_, err := runValidate(t, "text", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
