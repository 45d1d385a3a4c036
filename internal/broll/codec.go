package broll

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// planSchemaVersion is bumped whenever the serialized layout changes
// incompatibly. Readers reject plans written by a different version.
const planSchemaVersion = 1

// ErrMalformedPlan reports that a serialized plan could not be decoded
// into a valid Plan. The stored artifact cannot be repaired; the plan
// has to be regenerated.
var ErrMalformedPlan = errors.New("malformed plan")

type planEnvelope struct {
	Version int   `json:"version"`
	Plan    *Plan `json:"plan"`
}

// Encode writes the plan to w as versioned JSON. Invalid plans are
// rejected rather than persisted.
func Encode(w io.Writer, plan *Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(planEnvelope{Version: planSchemaVersion, Plan: plan}); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return nil
}

// Decode reads a versioned plan from r. Any structural problem, a
// version mismatch included, reports ErrMalformedPlan.
func Decode(r io.Reader) (*Plan, error) {
	var envelope planEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if envelope.Version != planSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedPlan, envelope.Version)
	}
	if envelope.Plan == nil {
		return nil, fmt.Errorf("%w: missing plan body", ErrMalformedPlan)
	}
	if err := envelope.Plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	return envelope.Plan, nil
}

// Save persists the plan artifact at path.
func Save(path string, plan *Plan) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	if err := Encode(file, plan); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// Load reads a plan artifact from path.
func Load(path string) (*Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	defer file.Close()
	return Decode(file)
}
