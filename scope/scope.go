// Package scope implements the lexical scope stack and symbol tables that
// frontends drive while walking source ASTs, per the scope manager component
// of the graph model. It is grounded on the teacher's analyzer/linage.Scope
// (ID/Kind/Parent/Symbols shape, analyzer/node.go's ad hoc scope creation
// during AST walks) and on other_examples' symbol_table.go
// (gavlooth-codeloom), whose BaseSymbolTable.Register/Resolve/RegisterImport
// shape the per-scope symbol table and qualified-name resolution here.
package scope

import (
	"fmt"
)

// Kind identifies what a Scope was opened for.
type Kind string

const (
	Global    Kind = "global"
	Namespace Kind = "namespace"
	Record    Kind = "record"
	Function  Kind = "function"
	Block     Kind = "block"
	TryCatch  Kind = "try_catch"
	Loop      Kind = "loop"
)

// Declaration is the minimal surface the scope manager needs from a graph
// node in order to register and resolve it, without scope importing graph
// (graph imports scope, not the other way around).
type Declaration interface {
	DeclName() string
	DeclKind() string
}

// Scope is one lexical container. Scopes form a tree rooted at Global.
type Scope struct {
	ID     string
	Kind   Kind
	Name   string // e.g. the namespace/record/function name; empty for blocks
	Parent   *Scope
	Children []*Scope // Namespace/Record sub-scopes opened under this one, for qualified lookup

	names   []string               // declared names, in declaration order
	symbols map[string][]Declaration // simple name -> declarations, oldest first
}

func newScope(id string, kind Kind, name string, parent *Scope) *Scope {
	return &Scope{
		ID:      id,
		Kind:    kind,
		Name:    name,
		Parent:  parent,
		symbols: make(map[string][]Declaration),
	}
}

// Declare registers decl under name in this scope's symbol table. A later
// declaration of the same name is appended after the earlier ones, so the
// last entry Lookup returns is the most recent; the name is listed once in
// Names.
func (s *Scope) Declare(name string, decl Declaration) {
	if _, exists := s.symbols[name]; !exists {
		s.names = append(s.names, name)
	}
	s.symbols[name] = append(s.symbols[name], decl)
}

// Lookup returns every declaration of name in this scope only (no outward
// walk), oldest first. Reference resolution binds to the last one; call
// resolution treats all of them as overload candidates.
func (s *Scope) Lookup(name string) []Declaration {
	decls := s.symbols[name]
	if len(decls) == 0 {
		return nil
	}
	out := make([]Declaration, len(decls))
	copy(out, decls)
	return out
}

// Names returns the declared names in this scope, in declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// IsAncestorOf reports whether s is on the parent chain of other (or is
// other itself) — used by the "refersTo target's defining scope is an
// ancestor of the reference's enclosing scope" invariant (spec §8.3).
func (s *Scope) IsAncestorOf(other *Scope) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == s {
			return true
		}
	}
	return false
}

// QualifiedPrefix returns the concatenation of enclosing Namespace/Record
// names with delimiter, used when assigning fully-qualified names to newly
// constructed declarations (currentNamePrefixWithDelimiter in spec §4.3).
func (s *Scope) QualifiedPrefix(delimiter string) string {
	var parts []string
	for cur := s; cur != nil; cur = cur.Parent {
		if (cur.Kind == Namespace || cur.Kind == Record) && cur.Name != "" {
			parts = append([]string{cur.Name}, parts...)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += delimiter + p
	}
	return out + delimiter
}

// Manager owns the active scope stack for a single frontend instance plus
// the mapping from each declaration to its defining scope.
type Manager struct {
	stack     []*Scope
	global    *Scope
	declScope map[Declaration]*Scope
	seq       int
}

// NewManager creates a scope manager with an open Global scope. Child-scope
// linkage lives on Scope.Children rather than a package-level registry, so
// concurrently parsing frontends (§5: "no shared mutable state across
// concurrent frontends") never contend on shared state.
func NewManager() *Manager {
	g := newScope("global", Global, "", nil)
	return &Manager{
		stack:     []*Scope{g},
		global:    g,
		declScope: make(map[Declaration]*Scope),
	}
}

// GlobalScope returns the root scope.
func (m *Manager) GlobalScope() *Scope { return m.global }

// CurrentScope returns the innermost open scope.
func (m *Manager) CurrentScope() *Scope {
	return m.stack[len(m.stack)-1]
}

// EnterScope pushes a new scope of kind, named name, nested under the
// current scope.
func (m *Manager) EnterScope(kind Kind, name string) *Scope {
	m.seq++
	parent := m.CurrentScope()
	id := fmt.Sprintf("%s.%s#%d", parent.ID, string(kind), m.seq)
	s := newScope(id, kind, name, parent)
	m.stack = append(m.stack, s)
	return s
}

// LeaveScope pops the current scope, asserting it matches expected.
// On a mismatch it panics with a *ScopeImbalanceError — ScopeImbalance is
// the one fatal error kind in this system (spec §7).
func (m *Manager) LeaveScope(expected *Scope) {
	top := m.stack[len(m.stack)-1]
	if top != expected {
		panic(&ScopeImbalanceError{Expected: expected.ID, Got: top.ID})
	}
	m.stack = m.stack[:len(m.stack)-1]
}

// ScopeImbalanceError mirrors cpgerr.ScopeImbalance without creating an
// import cycle (cpgerr has no dependents here; scope is a leaf package).
// The pass pipeline (pass.runPass) recovers it and re-panics with a
// *cpgerr.ScopeImbalance; the translate package does not recover it.
type ScopeImbalanceError struct {
	Expected string
	Got      string
}

func (e *ScopeImbalanceError) Error() string {
	return fmt.Sprintf("scope imbalance: expected to leave %q, got %q", e.Expected, e.Got)
}

// NearestScope walks outward from the current scope looking for the nearest
// enclosing scope of kind. Generalizes the teacher's topFileScope helper
// (analyzer/node.go), which did the same walk for a single hard-coded kind.
func (m *Manager) NearestScope(kind Kind) *Scope {
	for cur := m.CurrentScope(); cur != nil; cur = cur.Parent {
		if cur.Kind == kind {
			return cur
		}
	}
	return nil
}

// NearestScopeFrom is NearestScope starting from an arbitrary scope rather
// than the manager's current one — used by resolution passes operating
// after parsing has finished and the stack has unwound.
func NearestScopeFrom(from *Scope, kind Kind) *Scope {
	for cur := from; cur != nil; cur = cur.Parent {
		if cur.Kind == kind {
			return cur
		}
	}
	return nil
}

// AddDeclaration registers decl in the innermost scope permitted by its
// kind: fields nearest Record, parameters nearest Function, everything else
// in the current scope. targetKind is the scope kind to search outward for;
// pass "" to just use the current scope.
func (m *Manager) AddDeclaration(name string, decl Declaration, targetKind Kind) *Scope {
	var target *Scope
	if targetKind == "" {
		target = m.CurrentScope()
	} else {
		target = m.NearestScope(targetKind)
		if target == nil {
			target = m.CurrentScope()
		}
	}
	target.Declare(name, decl)
	m.declScope[decl] = target
	return target
}

// ScopeOf returns the scope a declaration was registered in.
func (m *Manager) ScopeOf(decl Declaration) *Scope {
	return m.declScope[decl]
}

// Filter selects a subset of declarations, e.g. "is callable".
type Filter func(Declaration) bool

// AnyFilter matches everything.
func AnyFilter(Declaration) bool { return true }

// Resolve walks outward from fromScope toward Global and returns the
// declarations matching name and filter in the first scope that has any,
// without looking further out. Inner scopes shadow
// outer ones only in the sense that callers typically want the innermost
// non-empty result; Resolve returns all matches at the first scope (walking
// outward) that has any, which is how shadowing works per spec §4.3 ("inner
// scopes shadow outer"). A free function, not a Manager method, since
// resolution-pass code (run after parsing, once every frontend's Manager has
// gone out of scope) only ever holds the *Scope chain itself.
func Resolve(name string, fromScope *Scope, filter Filter) []Declaration {
	if filter == nil {
		filter = AnyFilter
	}
	for cur := fromScope; cur != nil; cur = cur.Parent {
		candidates := cur.Lookup(name)
		if len(candidates) == 0 {
			continue
		}
		var matched []Declaration
		for _, d := range candidates {
			if filter(d) {
				matched = append(matched, d)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return nil
}

// Resolve is a thin method form of the free function, kept for frontend
// call sites that already hold a Manager handy.
func (m *Manager) Resolve(name string, fromScope *Scope, filter Filter) []Declaration {
	return Resolve(name, fromScope, filter)
}

// ResolveQualified resolves a "::"/"."/"/" delimited qualified name: it first
// locates the chain of Namespace/Record scopes named by all but the last
// segment (searching from fromScope outward for the first segment, then
// strictly within each subsequent scope), then resolves the last segment
// within that scope. A free function for the same reason as Resolve: it only
// needs the *Scope chain; child linkage lives on Scope.Children.
func ResolveQualified(segments []string, delimiter string, fromScope *Scope, filter Filter) []Declaration {
	if len(segments) == 0 {
		return nil
	}
	if len(segments) == 1 {
		return Resolve(segments[0], fromScope, filter)
	}
	// Locate the first segment as a Namespace/Record scope reachable from fromScope.
	var container *Scope
	for cur := fromScope; cur != nil; cur = cur.Parent {
		if found := findChildContainer(cur, segments[0]); found != nil {
			container = found
			break
		}
	}
	if container == nil {
		return nil
	}
	for _, seg := range segments[1 : len(segments)-1] {
		next := findChildContainer(container, seg)
		if next == nil {
			return nil
		}
		container = next
	}
	last := segments[len(segments)-1]
	if filter == nil {
		filter = AnyFilter
	}
	var matched []Declaration
	for _, d := range container.Lookup(last) {
		if filter(d) {
			matched = append(matched, d)
		}
	}
	return matched
}

// ResolveQualified is a thin method form of the free function.
func (m *Manager) ResolveQualified(segments []string, delimiter string, fromScope *Scope, filter Filter) []Declaration {
	return ResolveQualified(segments, delimiter, fromScope, filter)
}

// findChildContainer looks up a Namespace/Record sub-scope of parent by
// name, walking parent.Children — which is part of the Scope tree itself
// (not a side registry), so it survives after the Manager that built it
// goes out of scope and carries no state shared across concurrently
// parsing frontends.
func findChildContainer(parent *Scope, name string) *Scope {
	for _, c := range parent.Children {
		if c.Name == name && (c.Kind == Namespace || c.Kind == Record) {
			return c
		}
	}
	return nil
}

// EnterNamedScope is EnterScope specialized for Namespace/Record scopes: it
// additionally records the parent/child relationship for ResolveQualified.
func (m *Manager) EnterNamedScope(kind Kind, name string) *Scope {
	parent := m.CurrentScope()
	child := m.EnterScope(kind, name)
	parent.Children = append(parent.Children, child)
	return child
}
