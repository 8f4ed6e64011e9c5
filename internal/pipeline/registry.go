package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Resolve for unknown pipeline types.
var ErrNotFound = errors.New("pipeline not found")

// Registry is the static pipeline table, populated at startup.
// Lookups are O(1) by type identifier; List preserves registration
// order. Read-only after construction, safe for concurrent use.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// New builds a registry from the given definitions, validating each.
// A later definition with the same type replaces an earlier one, which
// lets an overlay file override the defaults.
func New(defs []Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}

	for _, def := range defs {
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", def.Type, err)
		}
		if _, exists := r.defs[def.Type]; !exists {
			r.order = append(r.order, def.Type)
		}
		r.defs[def.Type] = def
	}
	return r, nil
}

// Default returns a registry holding only the built-in definitions.
func Default() *Registry {
	r, err := New(Defaults())
	if err != nil {
		// The built-in table is static; failing validation is a
		// programming error.
		panic(err)
	}
	return r
}

// Resolve returns the definition for the given pipeline type.
func (r *Registry) Resolve(pipelineType string) (Definition, error) {
	def, ok := r.defs[pipelineType]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, pipelineType)
	}
	return def, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.defs[t])
	}
	return out
}

// validate rejects definitions that would only fail mid-execution:
// empty type, zero steps, steps without a capability, and steps
// consuming context fields that neither job inputs nor an earlier
// step can provide.
func validate(def Definition) error {
	if def.Type == "" {
		return errors.New("type is required")
	}
	if len(def.Steps) == 0 {
		return errors.New("at least one step is required")
	}

	available := map[string]bool{}
	for f := range jobInputFields {
		available[f] = true
	}

	for i, step := range def.Steps {
		if step.Capability == "" {
			return fmt.Errorf("step %d: capability is required", i)
		}
		for payloadField, ctxField := range step.Inputs {
			if payloadField == "" || ctxField == "" {
				return fmt.Errorf("step %d: empty input mapping", i)
			}
			if !available[ctxField] {
				return fmt.Errorf("step %d: consumes %q which no earlier step produces", i, ctxField)
			}
		}
		for _, out := range step.Outputs {
			if out.Field == "" {
				return fmt.Errorf("step %d: output field is required", i)
			}
			available[out.Key()] = true
		}
	}
	return nil
}

// overlayFile is the on-disk shape of a pipeline overlay.
type overlayFile struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// LoadOverlay reads extra pipeline definitions from a YAML file.
// Definitions are validated by New when the registry is built.
func LoadOverlay(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline overlay: %w", err)
	}

	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse pipeline overlay: %w", err)
	}
	return f.Pipelines, nil
}
