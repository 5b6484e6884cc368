package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nurkiewicz/partq/internal/querydef"
	"github.com/nurkiewicz/partq/internal/schema"
	"github.com/nurkiewicz/partq/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Schema   string
	Database string

	// TraceGenerator allows overriding the trace token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	TraceGenerator TraceTokenGenerator
}

// RunResult is the payload of a successful run.
type RunResult struct {
	Query   string           `json:"query"`
	SQL     string           `json:"sql"`
	Rows    []map[string]any `json:"rows"`
	TraceID string           `json:"trace_id"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <defs-dir> <query-name> [args...]",
		Short: "Compile one query and execute it against a database",
		Long: `Compile the named query definition and execute it against a SQLite
database, binding the given arguments positionally against the
compiled placeholder list. List arguments are comma-separated.

Example:
  partq run --schema shop.yaml --db shop.db ./queries adults-by-name Smith 18`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "path to schema YAML (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *RunOptions, defsDir, name string, cliArgs []string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sch, err := schema.Load(opts.Schema)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	def, err := loadNamedQuery(defsDir, name)
	if err != nil {
		return err
	}

	logger.Debug("compiling query", "query", name, "entity", def.Entity)
	q, placeholders, err := CompileDefinition(sch, *def)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to compile query %q", name), err)
	}

	if len(cliArgs) != len(placeholders) {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"query %q takes %d argument(s) (%s), got %d",
			name, len(placeholders), strings.Join(placeholderStrings(placeholders), ", "), len(cliArgs)))
	}

	args := make([]any, len(cliArgs))
	for i, s := range cliArgs {
		args[i], err = store.ParseArg(placeholders[i], s)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("argument %d", i+1), err)
		}
	}
	bound, err := store.BindArgs(placeholders, args)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to bind arguments", err)
	}
	sqlText, flat, err := store.ExpandLists(q.SQL, bound)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to expand list arguments", err)
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	traceGen := opts.TraceGenerator
	if traceGen == nil {
		traceGen = UUIDv7Generator{}
	}
	traceID := traceGen.Generate()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("executing query", "query", name, "trace_id", traceID, "sql", sqlText)
	rows, err := st.Select(ctx, sqlText, flat...)
	if err != nil {
		return WrapExitError(ExitFailure, "query execution failed", err)
	}

	result := RunResult{Query: name, SQL: sqlText, Rows: rows, TraceID: traceID}
	if opts.Format == "json" {
		return formatter.SuccessTraced(traceID, result)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d row(s)", name, len(rows))
	for _, row := range rows {
		fmt.Fprintf(&sb, "\n  %v", row)
	}
	return formatter.Success(sb.String())
}

// loadNamedQuery loads all definitions and picks the requested one.
func loadNamedQuery(defsDir, name string) (*querydef.QueryDef, error) {
	loadResult, loadErrors := LoadQueries(defsDir, LoadModeFailFast)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load definitions", loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return nil, WrapExitError(ExitFailure, "failed to load definitions", loadErrors[0])
	}
	for i := range loadResult.Queries {
		if loadResult.Queries[i].Name == name {
			return &loadResult.Queries[i], nil
		}
	}
	known := make([]string, len(loadResult.Queries))
	for i, q := range loadResult.Queries {
		known[i] = q.Name
	}
	return nil, NewExitError(ExitFailure, fmt.Sprintf("unknown query %q (known: %s)", name, strings.Join(known, ", ")))
}
