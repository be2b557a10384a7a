// Package capability declares the structured data-fetch operations the
// engine can invoke, scoped by caller role.
package capability

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Role identifies the caller class a capability is exposed to.
type Role string

const (
	// RoleAdmin may run identity-bearing lookups keyed by arbitrary names.
	RoleAdmin Role = "admin"
	// RoleCandidate gets the self-scoped equivalents: executors are closed
	// over the caller's own identity and accept no name arguments.
	RoleCandidate Role = "candidate"
)

// Result is a structured capability payload. Failures are reported inside
// the payload ("is_error" + "error") so the generation backend can relay
// them instead of the turn crashing.
type Result map[string]any

// ErrorResult builds a failure payload.
func ErrorResult(base Result, err error) Result {
	if base == nil {
		base = Result{}
	}
	base["is_error"] = true
	base["error"] = err.Error()
	return base
}

// OK marks the payload successful.
func OK(base Result) Result {
	base["is_error"] = false
	return base
}

// IsError reports whether the payload carries a failure.
func (r Result) IsError() bool {
	isErr, _ := r["is_error"].(bool)
	return isErr
}

// Capability is one registry entry: a named, schema-typed operation with an
// executor. Entries are immutable once registered.
type Capability struct {
	Name        string
	Description string

	// Parameters is the genai object schema for the arguments, nil for
	// zero-argument capabilities.
	Parameters *genai.Schema

	Execute func(ctx context.Context, args map[string]any) Result
}

// Declaration returns the genai function declaration advertised to the
// generation backend.
func (c *Capability) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        c.Name,
		Description: c.Description,
		Parameters:  c.Parameters,
	}
}

// Invocation records one capability execution within a turn. Ephemeral,
// kept only for observability output.
type Invocation struct {
	Name    string         `json:"name"`
	Args    map[string]any `json:"arguments,omitempty"`
	Result  Result         `json:"result"`
	Success bool           `json:"success"`
}

// Set is the role-scoped view of the registry: the capabilities one caller
// may see and invoke.
type Set struct {
	capabilities []*Capability
	byName       map[string]*Capability
}

func newSet(capabilities []*Capability) *Set {
	byName := make(map[string]*Capability, len(capabilities))
	for _, c := range capabilities {
		byName[c.Name] = c
	}
	return &Set{capabilities: capabilities, byName: byName}
}

// Len returns the number of visible capabilities.
func (s *Set) Len() int {
	return len(s.capabilities)
}

// Declarations returns the function declarations for the backend request.
func (s *Set) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(s.capabilities))
	for _, c := range s.capabilities {
		decls = append(decls, c.Declaration())
	}
	return decls
}

// Invoke executes the named capability with the given arguments. An unknown
// name yields an error payload rather than a hard failure: role-based
// absence is itself information worth relaying.
func (s *Set) Invoke(ctx context.Context, name string, args map[string]any) Invocation {
	capability, ok := s.byName[name]
	if !ok {
		result := ErrorResult(Result{}, fmt.Errorf("unknown capability: %s", name))
		return Invocation{Name: name, Args: args, Result: result, Success: false}
	}

	// Zero-argument capabilities tolerate empty or missing argument maps.
	if len(args) == 0 {
		args = nil
	}

	result := capability.Execute(ctx, args)
	return Invocation{
		Name:    name,
		Args:    args,
		Result:  result,
		Success: !result.IsError(),
	}
}
