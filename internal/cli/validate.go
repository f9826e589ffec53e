package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/convene/internal/compiler"
	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Conventions int                        `json:"conventions"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
	Cycles      []compiler.CycleReport     `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate convention manifests",
		Long: `Validate the CUE convention manifests of a specs directory.

Compiles every convention, checks declarations against each other
(names, host types, sources, dependency targets) and reports every
dependency cycle, without resolving an order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// Collect every compile error so one run reports them all
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		code, message := firstLoadError(loadErrors)
		return outputValidateError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := validateDeclared(loadResult.Declared, loadErrors)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	return outputValidateSuccess(formatter, result)
}

// validateDeclared combines load errors, declaration validation and cycle
// analysis into one result.
func validateDeclared(decls []ir.Declared, loadErrors []error) ValidationResult {
	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			errs = append(errs, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Error(),
				Code:    loadErr.Code,
			})
			continue
		}
		errs = append(errs, compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeGeneric})
	}

	errs = append(errs, compiler.Validate(decls)...)
	cycles := compiler.AnalyzeCycles(decls)

	return ValidationResult{
		Valid:       len(errs) == 0 && len(cycles) == 0,
		Conventions: len(decls),
		Errors:      errs,
		Cycles:      cycles,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d conventions)\n", result.Conventions)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every validation error and cycle.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	count := len(result.Errors) + len(result.Cycles)
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", count))

	if formatter.IsJSON() {
		code, message := string(engine.ErrCodeCyclicDependency), ""
		if len(result.Errors) > 0 {
			code, message = result.Errors[0].Code, result.Errors[0].Message
		} else {
			message = result.Cycles[0].Message
		}
		if err := formatter.Failure(code, message, result); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)

	for _, err := range result.Errors {
		fmt.Fprintf(w, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}
	for _, c := range result.Cycles {
		fmt.Fprintf(w, "  %s %s\n", engine.ErrCodeCyclicDependency, c.Message)
	}

	return failure
}
