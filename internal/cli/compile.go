package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nurkiewicz/partq/internal/clause"
	"github.com/nurkiewicz/partq/internal/compile"
	"github.com/nurkiewicz/partq/internal/querydef"
	"github.com/nurkiewicz/partq/internal/schema"
	"github.com/nurkiewicz/partq/internal/sqlbuild"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema string // schema YAML path
	Output string // output file path
}

// CompiledQuery is one query definition translated to SQL.
type CompiledQuery struct {
	Name         string   `json:"name"`
	Entity       string   `json:"entity"`
	SQL          string   `json:"sql"`
	Placeholders []string `json:"placeholders"`
}

// CompilationResult holds every compiled query.
type CompilationResult struct {
	Queries []CompiledQuery `json:"queries"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <defs-dir>",
		Short: "Compile query definitions to SQL",
		Long: `Compile CUE query definitions to parameterized SQL.

Each definition's clause tree is translated into one SELECT statement
against the entities declared in the schema file, together with the
ordered placeholder list callers bind values against.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompileCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "path to schema YAML (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runCompileCmd(opts *CompileOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	sch, err := schema.Load(opts.Schema)
	if err != nil {
		return outputCompileError(formatter, ErrCodeNotFound, err.Error(), nil)
	}

	loadResult, loadErrors := LoadQueries(defsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}
	if len(loadErrors) > 0 {
		msgs := make([]string, len(loadErrors))
		for i, e := range loadErrors {
			msgs[i] = e.Error()
		}
		return outputCompileError(formatter, ErrCodeCompileFailed,
			fmt.Sprintf("%d definition(s) failed to load", len(loadErrors)), msgs)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	result := CompilationResult{}
	for _, def := range loadResult.Queries {
		q, placeholders, err := CompileDefinition(sch, def)
		if err != nil {
			return outputCompileError(formatter, ErrCodeCompileFailed,
				fmt.Sprintf("query %q: %v", def.Name, err), nil)
		}
		result.Queries = append(result.Queries, CompiledQuery{
			Name:         def.Name,
			Entity:       q.Entity,
			SQL:          q.SQL,
			Placeholders: placeholderStrings(placeholders),
		})
		formatter.VerboseLog("Compiled query: %s", def.Name)
	}

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0o644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, err.Error(), nil)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	var sb strings.Builder
	for _, q := range result.Queries {
		fmt.Fprintf(&sb, "%s (%s):\n  %s\n", q.Name, q.Entity, q.SQL)
		if len(q.Placeholders) > 0 {
			fmt.Fprintf(&sb, "  binds: %s\n", strings.Join(q.Placeholders, ", "))
		}
	}
	fmt.Fprintf(&sb, "%d quer%s compiled", len(result.Queries), plural(len(result.Queries), "y", "ies"))
	return formatter.Success(sb.String())
}

// CompileDefinition translates one query definition into a SQL query
// using a fresh builder. The builder serves as both resolver and
// query target for the compilation.
func CompileDefinition(sch *schema.Schema, def querydef.QueryDef) (*sqlbuild.Query, []clause.Placeholder, error) {
	b, err := sqlbuild.NewBuilder(sch, def.Entity)
	if err != nil {
		return nil, nil, err
	}
	creator := compile.New(&def.Tree, def.Params, b, b)
	q, placeholders, err := creator.Compile(def.Sort)
	if err != nil {
		return nil, nil, err
	}
	return q.(*sqlbuild.Query), placeholders, nil
}

func placeholderStrings(placeholders []clause.Placeholder) []string {
	out := make([]string, len(placeholders))
	for i, p := range placeholders {
		out[i] = p.String()
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// outputCompileError reports an error and returns an ExitError so the
// process exits non-zero.
func outputCompileError(f *OutputFormatter, code, message string, details interface{}) error {
	if err := f.Error(code, message, details); err != nil {
		return err
	}
	exitCode := ExitFailure
	if code == ErrCodeNotFound || code == ErrCodeScanError || code == ErrCodeWriteFailed {
		exitCode = ExitCommandError
	}
	return NewExitError(exitCode, message)
}
