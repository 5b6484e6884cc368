package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nurkiewicz/partq/internal/schema"
)

// ValidationIssue is one problem found in the definitions.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Queries int               `json:"queries"`
	Issues  []ValidationIssue `json:"issues,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate query definitions without compiling to SQL",
		Long: `Validate CUE query definitions: syntax, operator and type spellings,
parameter counts against clause arity, and (when a schema is given)
that every entity, property path, and sort key resolves.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateCmd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "path to schema YAML (optional; enables path checks)")

	return cmd
}

func runValidateCmd(opts *ValidateOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	var sch *schema.Schema
	if opts.Schema != "" {
		var err error
		sch, err = schema.Load(opts.Schema)
		if err != nil {
			if ferr := formatter.Error(ErrCodeNotFound, err.Error(), nil); ferr != nil {
				return ferr
			}
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	loadResult, loadErrors := LoadQueries(defsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			if ferr := formatter.Error(loadErr.Code, loadErr.Message, nil); ferr != nil {
				return ferr
			}
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		if ferr := formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	var issues []ValidationIssue
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issues = append(issues, ValidationIssue{Code: loadErr.Code, Message: loadErr.Message})
		} else {
			issues = append(issues, ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()})
		}
	}

	// With a schema, dry-compile each definition so unknown entities,
	// properties, and case-fold mismatches surface here too.
	if sch != nil {
		for _, def := range loadResult.Queries {
			formatter.VerboseLog("Validating query: %s", def.Name)
			if _, _, err := CompileDefinition(sch, def); err != nil {
				issues = append(issues, ValidationIssue{
					Code:    ErrCodeCompileFailed,
					Message: fmt.Sprintf("query %q: %v", def.Name, err),
				})
			}
		}
	}

	result := ValidationResult{
		Valid:   len(issues) == 0,
		Queries: len(loadResult.Queries),
		Issues:  issues,
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		var sb strings.Builder
		if result.Valid {
			fmt.Fprintf(&sb, "OK: %d quer%s valid", result.Queries, plural(result.Queries, "y", "ies"))
		} else {
			fmt.Fprintf(&sb, "%d issue(s) found:", len(issues))
			for _, issue := range issues {
				fmt.Fprintf(&sb, "\n  [%s] %s", issue.Code, issue.Message)
			}
		}
		if err := formatter.Success(sb.String()); err != nil {
			return err
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation issue(s)", len(issues)))
	}
	return nil
}
