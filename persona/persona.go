// Package persona defines the static roles that take turns in a group chat.
//
// Personas are data: an id, a human-readable name and description, and an
// instruction template rendered per turn. A Catalog is a fixed mapping from
// id to Persona built once at configuration time and never mutated.
package persona

import (
	"fmt"
	"strings"
)

// Role classifies what a persona is expected to produce. Response validators
// use it to select the vocabulary a persona's output must match.
type Role string

const (
	RoleGeneral    Role = "general"
	RoleDiagnostic Role = "diagnostic"
	RoleExecution  Role = "execution"
)

// Persona is an immutable role definition.
//
// Observe lists tools the orchestrator invokes before every turn of this
// persona, handing their fresh output to the backend. Tools lists the tools
// the backend may call on the persona's behalf. ContextFrom, when set,
// narrows the transcript passed to the backend to the most recent message
// spoken by that persona.
type Persona struct {
	ID           string   `yaml:"id" json:"id"`
	DisplayName  string   `yaml:"display_name" json:"display_name"`
	Description  string   `yaml:"description" json:"description"`
	Instructions string   `yaml:"instructions" json:"instructions"`
	Role         Role     `yaml:"role,omitempty" json:"role,omitempty"`
	Observe      []string `yaml:"observe,omitempty" json:"observe,omitempty"`
	Tools        []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	ContextFrom  string   `yaml:"context_from,omitempty" json:"context_from,omitempty"`
}

// Validate checks the persona has an id, a known role and parseable
// instructions.
func (p Persona) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyPersonaID
	}
	switch p.Role {
	case "", RoleGeneral, RoleDiagnostic, RoleExecution:
	default:
		return fmt.Errorf("%w: %s: unknown role %q", ErrInvalidPersona, p.ID, p.Role)
	}
	if _, err := parseTemplate(p); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPersona, p.ID, err)
	}
	return nil
}

// Normalized returns a copy with whitespace trimmed, an empty role defaulted
// to RoleGeneral, and an empty display name defaulted to the id.
func (p Persona) Normalized() Persona {
	p.ID = strings.TrimSpace(p.ID)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.Description = strings.TrimSpace(p.Description)
	p.ContextFrom = strings.TrimSpace(p.ContextFrom)
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}
	if p.Role == "" {
		p.Role = RoleGeneral
	}
	p.Observe = append([]string(nil), p.Observe...)
	p.Tools = append([]string(nil), p.Tools...)
	return p
}
