// Package module implements the kernel's module registration and
// dependency resolution layer (spec §4.6). Modules register the classes
// they provide and the modules they depend on; the registry topologically
// orders them before anything loads, so no class is brought up before
// the classes it extends.
//
// Grounded on kernel/threads/registry/loader.go's ModuleRegistry: the
// same 3-field version triple, the same DependencySpec (min/max version,
// optional flag, alternatives list), and the same Kahn's-algorithm
// ordering. The original reads EnhancedModuleEntry structs out of a
// shared-array-buffer region written by another process; since modules
// here register themselves in-process at init time, Entry is a plain Go
// struct rather than a 96-byte packed binary layout — the registration
// API is kept, the wire format is dropped because there is no longer a
// second process to share it with.
package module

import (
	"fmt"
	"sort"
	"sync"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// Version is a three-part module version, compared field-by-field.
type Version struct {
	Major, Minor, Patch uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

func (v Version) greater(o Version) bool { return o.less(v) }

// Dependency names a required module and the version range this module
// accepts from it; Alternatives lists module IDs that may satisfy the
// same requirement if ModuleID isn't registered.
type Dependency struct {
	ModuleID     string
	MinVersion   Version
	MaxVersion   Version
	Optional     bool
	Alternatives []string
}

func compatible(actual, dep Dependency, actualVersion Version) bool {
	if actualVersion.less(dep.MinVersion) {
		return false
	}
	if dep.MaxVersion != (Version{}) && actualVersion.greater(dep.MaxVersion) {
		return false
	}
	return true
}

// Entry describes one registered module: its identity, version,
// dependencies, and an OnLoad hook invoked once all dependencies have
// been ordered ahead of it.
type Entry struct {
	ID           string
	Version      Version
	Dependencies []Dependency
	OnLoad       func() error
}

// Registry tracks registered module Entries and computes load order.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Entry)}
}

// Register adds a module entry. Registering the same ID twice replaces
// the prior entry (hot-reload during development).
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := e
	r.modules[e.ID] = &entry
}

func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.modules[id]
	if !ok {
		return nil, kerr.New(kerr.MissingClass)
	}
	return e, nil
}

// Order returns module IDs topologically sorted so that every module
// appears after all of its non-optional dependencies, using Kahn's
// algorithm exactly as the original registry's GetDependencyOrder did.
// An unsatisfied required dependency, an incompatible version, or a
// cycle is reported as an error rather than silently dropping modules.
func (r *Registry) Order() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := make(map[string][]string)
	inDegree := make(map[string]int)
	for id := range r.modules {
		inDegree[id] = 0
	}

	for id, m := range r.modules {
		for _, dep := range m.Dependencies {
			target := dep.ModuleID
			depMod, ok := r.modules[target]
			if !ok {
				if dep.Optional {
					continue
				}
				found := false
				for _, alt := range dep.Alternatives {
					if altMod, ok := r.modules[alt]; ok {
						graph[alt] = append(graph[alt], id)
						inDegree[id]++
						found = true
						_ = altMod
						break
					}
				}
				if !found {
					return nil, kerr.Wrap(kerr.MissingClass, fmt.Errorf("module %q requires %q (unsatisfied, no alternative)", id, target))
				}
				continue
			}
			if !compatible(*m, dep, depMod.Version) {
				return nil, kerr.Wrap(kerr.FieldTypeMismatch, fmt.Errorf(
					"module %q requires %s@%s..%s but found %s@%s",
					id, target, dep.MinVersion, dep.MaxVersion, target, depMod.Version))
			}
			graph[target] = append(graph[target], id)
			inDegree[id]++
		}
	}

	// Deterministic starting queue so identical registrations always
	// produce the same order.
	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		var unlocked []string
		for _, next := range graph[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				unlocked = append(unlocked, next)
			}
		}
		sort.Strings(unlocked)
		queue = append(queue, unlocked...)
	}

	if len(result) != len(r.modules) {
		return nil, kerr.Wrap(kerr.Failed, fmt.Errorf("circular module dependency detected"))
	}
	return result, nil
}

// LoadAll resolves Order and invokes each module's OnLoad hook in that
// order, stopping at the first failure.
func (r *Registry) LoadAll() error {
	order, err := r.Order()
	if err != nil {
		return err
	}
	for _, id := range order {
		m, err := r.Get(id)
		if err != nil {
			return err
		}
		if m.OnLoad != nil {
			if err := m.OnLoad(); err != nil {
				return kerr.Wrap(kerr.Failed, fmt.Errorf("loading module %q: %w", id, err))
			}
		}
	}
	return nil
}
