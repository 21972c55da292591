// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"maps"
	"slices"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Namespace is the global scope examples run in: shell variables, shell
	// functions and the working directory. It implements expand.Environ so it
	// can seed an interpreter directly.
	//
	// A Namespace is not safe for concurrent use.
	Namespace struct {
		vars       map[string]expand.Variable
		funcs      map[string]*syntax.Stmt
		dir        string
		persistent bool
	}

	// layeredEnviron resolves names from top first, then base.
	layeredEnviron struct {
		top  *Namespace
		base expand.Environ
	}
)

// NewNamespace returns an empty namespace that Clear empties.
func NewNamespace() *Namespace {
	return &Namespace{
		vars:  make(map[string]expand.Variable),
		funcs: make(map[string]*syntax.Stmt),
	}
}

// NewPersistentNamespace returns an empty namespace whose Clear is a no-op.
// Its contents still change through Set, Delete and CopyFrom.
func NewPersistentNamespace() *Namespace {
	ns := NewNamespace()
	ns.persistent = true
	return ns
}

// Persistent reports whether Clear has been disabled.
func (ns *Namespace) Persistent() bool {
	return ns.persistent
}

// Get implements expand.Environ.
func (ns *Namespace) Get(name string) expand.Variable {
	return ns.vars[name]
}

// Each implements expand.Environ. Names are visited in sorted order.
func (ns *Namespace) Each(f func(name string, vr expand.Variable) bool) {
	for _, name := range ns.Names() {
		if !f(name, ns.vars[name]) {
			return
		}
	}
}

// Set implements expand.WriteEnviron. Setting an unset variable deletes it.
func (ns *Namespace) Set(name string, vr expand.Variable) error {
	if !vr.IsSet() {
		delete(ns.vars, name)
		return nil
	}
	ns.vars[name] = cloneVariable(vr)
	return nil
}

// SetString stores a plain exported string variable.
func (ns *Namespace) SetString(name, value string) {
	ns.vars[name] = expand.Variable{Set: true, Exported: true, Kind: expand.String, Str: value}
}

// Lookup returns a variable and whether it is present.
func (ns *Namespace) Lookup(name string) (expand.Variable, bool) {
	vr, ok := ns.vars[name]
	return vr, ok
}

// Delete removes a variable.
func (ns *Namespace) Delete(name string) {
	delete(ns.vars, name)
}

// Names returns the sorted variable names.
func (ns *Namespace) Names() []string {
	return slices.Sorted(maps.Keys(ns.vars))
}

// Len returns the number of variables.
func (ns *Namespace) Len() int {
	return len(ns.vars)
}

// Func returns the body of a shell function, or nil.
func (ns *Namespace) Func(name string) *syntax.Stmt {
	return ns.funcs[name]
}

// Funcs returns the sorted function names.
func (ns *Namespace) Funcs() []string {
	return slices.Sorted(maps.Keys(ns.funcs))
}

// Dir returns the working directory, or "" when none has been recorded.
func (ns *Namespace) Dir() string {
	return ns.dir
}

// SetDir records the working directory.
func (ns *Namespace) SetDir(dir string) {
	ns.dir = dir
}

// Empty reports whether the namespace holds no state at all.
func (ns *Namespace) Empty() bool {
	return len(ns.vars) == 0 && len(ns.funcs) == 0 && ns.dir == ""
}

// Clear drops all state unless the namespace is persistent.
func (ns *Namespace) Clear() {
	if ns.persistent {
		return
	}
	clear(ns.vars)
	clear(ns.funcs)
	ns.dir = ""
}

// CopyFrom replaces the contents of ns with a deep copy of src.
// The identity of ns and its persistence never change.
func (ns *Namespace) CopyFrom(src *Namespace) {
	if ns == src {
		return
	}
	clear(ns.vars)
	for name, vr := range src.vars {
		ns.vars[name] = cloneVariable(vr)
	}
	clear(ns.funcs)
	maps.Copy(ns.funcs, src.funcs)
	ns.dir = src.dir
}

// Clone returns a deep, non-persistent copy.
func (ns *Namespace) Clone() *Namespace {
	out := NewNamespace()
	out.CopyFrom(ns)
	return out
}

func (l layeredEnviron) Get(name string) expand.Variable {
	if vr, ok := l.top.Lookup(name); ok {
		return vr
	}
	return l.base.Get(name)
}

func (l layeredEnviron) Each(f func(name string, vr expand.Variable) bool) {
	stopped := false
	l.base.Each(func(name string, vr expand.Variable) bool {
		if !f(name, vr) {
			stopped = true
			return false
		}
		return true
	})
	if !stopped {
		l.top.Each(f)
	}
}

func cloneVariable(vr expand.Variable) expand.Variable {
	vr.List = slices.Clone(vr.List)
	vr.Map = maps.Clone(vr.Map)
	return vr
}

func sameVariable(a, b expand.Variable) bool {
	return a.Set == b.Set &&
		a.Exported == b.Exported &&
		a.ReadOnly == b.ReadOnly &&
		a.Kind == b.Kind &&
		a.Str == b.Str &&
		slices.Equal(a.List, b.List) &&
		maps.Equal(a.Map, b.Map)
}
