package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/episim/internal/engine"
	"github.com/roach88/episim/internal/rng"
)

// marshalSeed serializes a seed pair for the runs.seed column.
func marshalSeed(seed rng.Seed) (string, error) {
	data, err := json.Marshal(seed)
	if err != nil {
		return "", fmt.Errorf("marshal seed: %w", err)
	}
	return string(data), nil
}

// marshalParameters serializes run parameters for the runs.parameters column.
// encoding/json writes the shortest float representation that round-trips,
// so parameters read back bit-identical.
func marshalParameters(p engine.Parameters) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal parameters: %w", err)
	}
	return string(data), nil
}

func unmarshalSeed(data string) (rng.Seed, error) {
	var seed rng.Seed
	if err := json.Unmarshal([]byte(data), &seed); err != nil {
		return rng.Seed{}, fmt.Errorf("unmarshal seed: %w", err)
	}
	return seed, nil
}

func unmarshalParameters(data string) (engine.Parameters, error) {
	var p engine.Parameters
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return engine.Parameters{}, fmt.Errorf("unmarshal parameters: %w", err)
	}
	return p, nil
}
