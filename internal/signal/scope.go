package signal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a signal or scope path does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a name is already used in a scope.
	ErrDuplicate = errors.New("duplicate name")
)

// Directory is the hierarchical view of a device used by drivers, monitors
// and parameter discovery. Scope IDs and signal paths are dot-separated and
// relative to the directory root; the empty scope ID names the root.
type Directory interface {
	Signal(path string) (*Signal, error)
	ListChildren(scopeID string) ([]string, error)
	ChildCount(scopeID string) (int, error)
}

// Scope is a node of the signal hierarchy.
// Children keep declaration order: scopes first, then signals.
type Scope struct {
	name    string
	path    string
	signals []*Signal
	scopes  []*Scope
	byName  map[string]any
}

var _ Directory = (*Scope)(nil)

// NewScope creates a root scope.
func NewScope(name string) *Scope {
	return &Scope{name: name, byName: make(map[string]any)}
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

func (s *Scope) childPath(name string) string {
	if s.path == "" {
		return name
	}
	return s.path + "." + name
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, ". \t") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

// AddSignal declares a signal in this scope.
func (s *Scope) AddSignal(name string, width int, signed bool) (*Signal, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := CheckWidth(width); err != nil {
		return nil, fmt.Errorf("signal %s: %w", name, err)
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s in scope %q", ErrDuplicate, name, s.path)
	}
	sig := newSignal(name, s.childPath(name), width, signed)
	s.signals = append(s.signals, sig)
	s.byName[name] = sig
	return sig, nil
}

// AddScope declares a child scope.
func (s *Scope) AddScope(name string) (*Scope, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s in scope %q", ErrDuplicate, name, s.path)
	}
	child := &Scope{name: name, path: s.childPath(name), byName: make(map[string]any)}
	s.scopes = append(s.scopes, child)
	s.byName[name] = child
	return child, nil
}

// Signals returns the signals declared directly in this scope.
func (s *Scope) Signals() []*Signal { return append([]*Signal(nil), s.signals...) }

// Scopes returns the direct child scopes.
func (s *Scope) Scopes() []*Scope { return append([]*Scope(nil), s.scopes...) }

// Scope resolves a child scope by relative path. The empty path returns s.
func (s *Scope) Scope(path string) (*Scope, error) {
	cur := s
	if path == "" {
		return cur, nil
	}
	for _, part := range strings.Split(path, ".") {
		child, ok := cur.byName[part].(*Scope)
		if !ok {
			return nil, fmt.Errorf("scope %q: %w", path, ErrNotFound)
		}
		cur = child
	}
	return cur, nil
}

// Signal resolves a signal by relative path ("stage0" or "integrators.stage0").
func (s *Scope) Signal(path string) (*Signal, error) {
	scopePath, name := "", path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		scopePath, name = path[:i], path[i+1:]
	}
	sc, err := s.Scope(scopePath)
	if err != nil {
		return nil, fmt.Errorf("signal %q: %w", path, ErrNotFound)
	}
	sig, ok := sc.byName[name].(*Signal)
	if !ok {
		return nil, fmt.Errorf("signal %q: %w", path, ErrNotFound)
	}
	return sig, nil
}

// ListChildren returns the names of the child scopes and signals of the
// scope identified by scopeID.
func (s *Scope) ListChildren(scopeID string) ([]string, error) {
	sc, err := s.Scope(scopeID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sc.scopes)+len(sc.signals))
	for _, c := range sc.scopes {
		names = append(names, c.name)
	}
	for _, sig := range sc.signals {
		names = append(names, sig.name)
	}
	return names, nil
}

// ChildCount returns len(ListChildren(scopeID)) without allocating.
func (s *Scope) ChildCount(scopeID string) (int, error) {
	sc, err := s.Scope(scopeID)
	if err != nil {
		return 0, err
	}
	return len(sc.scopes) + len(sc.signals), nil
}
