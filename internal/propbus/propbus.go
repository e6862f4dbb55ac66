// Package propbus implements the property bus (spec.md §4.2): the single
// registry of named, typed accessors every module publishes into and every
// external collaborator (FCS, script, output formatter) reads from.
package propbus

import (
	"fmt"
	"sort"
	"sync"
)

// Getter reads the current value of a property.
type Getter func() float64

// Setter writes a new value to a property. Read-only properties have a
// nil Setter.
type Setter func(float64)

// Property is one bound (name, getter, optional setter) triple.
type Property struct {
	Name   string
	Get    Getter
	Set    Setter
	Module string // owning module, for diagnostics
}

// Bus is the name -> typed accessor registry shared by all modules
// (spec.md §4.2). Bind-time registration happens while the Executive is
// constructing its module pipeline, before any tick runs; spec.md §5
// treats the post-bind bus as read-mostly, so the mutex mainly guards the
// bind/unbind path and the occasional script-driven Set.
type Bus struct {
	mu         sync.RWMutex
	properties map[string]*Property
}

func New() *Bus {
	return &Bus{properties: make(map[string]*Property)}
}

// Bind registers a property. It returns an error rather than panicking on
// a duplicate path so a loader can report which aircraft/module conflicted
// (spec.md §7 Configuration error: duplicate property path is fatal at
// load time).
func (b *Bus) Bind(module, name string, get Getter, set Setter) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.properties[name]; exists {
		return fmt.Errorf("propbus: duplicate property %q (registering from %q)", name, module)
	}
	b.properties[name] = &Property{Name: name, Get: get, Set: set, Module: module}
	return nil
}

// Unbind removes a property, e.g. when a module is torn down.
func (b *Bus) Unbind(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.properties, name)
}

// Get reads a property's current value. ok is false if name is unbound.
func (b *Bus) Get(name string) (float64, bool) {
	b.mu.RLock()
	p, exists := b.properties[name]
	b.mu.RUnlock()
	if !exists {
		return 0, false
	}
	return p.Get(), true
}

// Set writes a property's value. ok is false if name is unbound or
// read-only.
func (b *Bus) Set(name string, value float64) bool {
	b.mu.RLock()
	p, exists := b.properties[name]
	b.mu.RUnlock()
	if !exists || p.Set == nil {
		return false
	}
	p.Set(value)
	return true
}

// Has reports whether name is currently bound.
func (b *Bus) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.properties[name]
	return exists
}

// Names returns every bound path, sorted, mostly for diagnostics and tests.
func (b *Bus) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.properties))
	for n := range b.properties {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BindConstant is a convenience for a read-only property backed by a
// captured value rather than a live accessor — used by modules that
// publish a handful of static reference constants at bind time.
func (b *Bus) BindConstant(module, name string, value float64) error {
	return b.Bind(module, name, func() float64 { return value }, nil)
}
