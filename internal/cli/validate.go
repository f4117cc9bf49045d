package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/episim/internal/config"
	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/report"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	File   string         `json:"file"`
	Valid  bool           `json:"valid"`
	Config *config.Config `json:"config,omitempty"`
	Steps  int            `json:"steps,omitempty"`
	Error  string         `json:"error,omitempty"`
	Code   string         `json:"code,omitempty"`
	Field  string         `json:"field,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file without running it",
		Long: `Load a .yaml, .yml or .cue config file and check it.

Reports the number of steps the configuration would run. With --strict the
probabilities must lie in [0, 1], whatever the file says.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject probabilities outside [0, 1]")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	result := ValidationResult{File: path}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, "config file not found", err)
	}
	if err == nil {
		if opts.Strict {
			cfg.Strict = true
		}
		err = cfg.Validate()
	}

	if err != nil {
		result.Error = err.Error()
		result.Code = ErrCodeConfigLoadError
		var ce *engine.ConfigError
		if errors.As(err, &ce) {
			result.Code = string(ce.Code)
			result.Field = ce.Field
		}
		if writeErr := outputValidation(cmd, opts.Format, result); writeErr != nil {
			return writeErr
		}
		return WrapExitError(ExitFailure, "invalid config", err)
	}

	result.Valid = true
	result.Config = &cfg
	result.Steps = cfg.Parameters.NumIterations()
	return outputValidation(cmd, opts.Format, result)
}

func outputValidation(cmd *cobra.Command, format string, result ValidationResult) error {
	if format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    ErrCodeInvalidConfig,
				Message: result.Error,
				Details: result,
			}
			response.Data = nil
		}
		return writeJSON(cmd, response)
	}

	w := cmd.OutOrStdout()
	if !result.Valid {
		fmt.Fprintf(w, "✗ %s\n", result.File)
		fmt.Fprintf(w, "  %s\n", result.Error)
		return nil
	}

	cfg := result.Config
	fmt.Fprintf(w, "✓ %s\n", result.File)
	fmt.Fprintf(w, "  agents: %d\n", cfg.Agents)
	fmt.Fprintf(w, "  steps: %d (%s years at %s per step)\n", result.Steps,
		report.FormatFloat(cfg.Parameters.NumYears), report.FormatFloat(cfg.Parameters.TimeStep))
	fmt.Fprintf(w, "  seed: %d/%d\n", cfg.Seed.General, cfg.Seed.Geometric)
	if cfg.Strict {
		fmt.Fprintln(w, "  strict: true")
	}
	return nil
}
