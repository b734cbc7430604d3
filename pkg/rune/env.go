package rune

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrUndefinedVariable is wrapped by lookups of unbound names.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrImmutable is wrapped by assignments to let bindings.
	ErrImmutable = errors.New("immutable binding")
)

// Env is one lexical frame of variable bindings.
type Env struct {
	values    map[string]Value
	mutable   map[string]bool
	enclosing *Env
}

// NewEnv creates a frame nested in enclosing, which may be nil for the
// global frame.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		values:    map[string]Value{},
		mutable:   map[string]bool{},
		enclosing: enclosing,
	}
}

// Enclosing returns the parent frame.
func (e *Env) Enclosing() *Env { return e.enclosing }

// Names returns the names bound in this frame, sorted.
func (e *Env) Names() []string {
	return slices.Sorted(maps.Keys(e.values))
}

// Define binds name in this frame, replacing any earlier binding.
func (e *Env) Define(name string, v Value, mutable bool) {
	e.values[name] = v
	e.mutable[name] = mutable
}

// Get looks name up through the chain of frames.
func (e *Env) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUndefinedVariable, name)
}

// GetAt reads name from the frame distance hops up the chain.
func (e *Env) GetAt(distance int, name string) (Value, error) {
	env := e.ancestor(distance)
	if env != nil {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUndefinedVariable, name)
}

// Assign rebinds the nearest existing binding of name.
func (e *Env) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name]; ok {
			return env.set(name, v)
		}
	}
	return fmt.Errorf("%w %q", ErrUndefinedVariable, name)
}

// AssignAt rebinds name in the frame distance hops up the chain.
func (e *Env) AssignAt(distance int, name string, v Value) error {
	env := e.ancestor(distance)
	if env == nil {
		return fmt.Errorf("%w %q", ErrUndefinedVariable, name)
	}
	if _, ok := env.values[name]; !ok {
		return fmt.Errorf("%w %q", ErrUndefinedVariable, name)
	}
	return env.set(name, v)
}

func (e *Env) set(name string, v Value) error {
	if !e.mutable[name] {
		return fmt.Errorf("cannot assign to %q: %w", name, ErrImmutable)
	}
	e.values[name] = v
	return nil
}

func (e *Env) ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.enclosing
	}
	return env
}
