package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchGlobal   = errors.New("no such global")
	ErrNoSuchProperty = errors.New("no such property")
	ErrNoSuchCallback = errors.New("no such callback")
)

// Callback is a host-provided handler for a global callback.
type Callback func(args ...interface{}) interface{}

// Globals is the registry host code uses to reach global singletons by
// name. Generated code registers the properties and callbacks of each
// exported global; lookups by unknown names fail with a sentinel error.
type Globals struct {
	arena   *Arena
	globals map[string]*global
}

type global struct {
	properties map[string]Property
	callbacks  map[string]Callback
}

func NewGlobals(arena *Arena) *Globals {
	return &Globals{
		arena:   arena,
		globals: make(map[string]*global),
	}
}

// RegisterProperty creates the cell backing (globalName, property) and
// returns its handle. The global is created on first registration.
func (g *Globals) RegisterProperty(globalName, property string, initial interface{}) Property {
	e := g.entry(globalName)
	p := g.arena.NewProperty(initial)
	e.properties[property] = p
	return p
}

// RegisterCallback installs the handler for (globalName, callback).
func (g *Globals) RegisterCallback(globalName, callback string, fn Callback) {
	g.entry(globalName).callbacks[callback] = fn
}

func (g *Globals) entry(name string) *global {
	e := g.globals[name]
	if e == nil {
		e = &global{
			properties: make(map[string]Property),
			callbacks:  make(map[string]Callback),
		}
		g.globals[name] = e
	}
	return e
}

// Property resolves the cell behind (globalName, property).
func (g *Globals) Property(globalName, property string) (Property, error) {
	e := g.globals[globalName]
	if e == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoSuchGlobal, globalName)
	}
	p, ok := e.properties[property]
	if !ok {
		return 0, fmt.Errorf("%w: %q on global %q", ErrNoSuchProperty, property, globalName)
	}
	return p, nil
}

// Get reads a global property by name.
func (g *Globals) Get(globalName, property string) (interface{}, error) {
	p, err := g.Property(globalName, property)
	if err != nil {
		return nil, err
	}
	return g.arena.Get(p), nil
}

// Set writes a global property by name, invalidating its dependents.
func (g *Globals) Set(globalName, property string, value interface{}) error {
	p, err := g.Property(globalName, property)
	if err != nil {
		return err
	}
	g.arena.Set(p, value)
	return nil
}

// Invoke calls a global callback by name.
func (g *Globals) Invoke(globalName, callback string, args ...interface{}) (interface{}, error) {
	e := g.globals[globalName]
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchGlobal, globalName)
	}
	fn, ok := e.callbacks[callback]
	if !ok {
		return nil, fmt.Errorf("%w: %q on global %q", ErrNoSuchCallback, callback, globalName)
	}
	return fn(args...), nil
}
