package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// ParseCUE evaluates a CUE config against the #Config schema and decodes the
// result onto Default. filename is used in error positions only.
//
// CUE configs may compute values, e.g. time_step: 1 / 365.25.
func ParseCUE(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	// JSON is the common ground between the evaluated value and the Go
	// struct; absent fields keep their defaults.
	raw, err := unified.MarshalJSON()
	if err != nil {
		return Config{}, formatCUEError(err)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode CUE: %w", err)
	}
	cfg.Resolve()
	return cfg, nil
}

// formatCUEError flattens a CUE error list into one message with positions.
func formatCUEError(err error) error {
	if len(cueerrors.Errors(err)) == 0 {
		return err
	}
	return fmt.Errorf("CUE: %s", cueerrors.Details(err, nil))
}
