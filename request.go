package chatrelay

import "fmt"

// Request carries the conversation context and generation parameters for a
// single provider call. The provider uses its own defaults when fields are
// zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Turns        []Turn   // ordered, most recent last; no system turns
	Temperature  *float64 // nil = provider default
}

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	for _, t := range r.Turns {
		switch t.Role {
		case RoleUser, RoleAssistant:
		case RoleSystem:
			return fmt.Errorf("system turn in Turns; use SystemPrompt: %w", ErrValidation)
		default:
			return fmt.Errorf("unknown role %q: %w", t.Role, ErrValidation)
		}
	}
	return nil
}
