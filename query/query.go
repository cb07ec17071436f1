// Package query implements the read-only accessor surface callers use once
// the pass pipeline has finished (§4.7): name/kind lookups on a translation
// unit, typed statement access, and a reverse call-site index for downstream
// rule tooling. Grounded on the teacher's inspector/graph map-indexed
// lookup-by-name idiom (Project.GetPackage, Package.LookupMethod): NewIndex
// builds a name->index map once instead of scanning the slice on every
// call.
package query

import (
	"fmt"

	"github.com/cpgkit/cpg/cpgerr"
	"github.com/cpgkit/cpg/graph"
)

// DeclarationsByName scans unit's top-level declarations and returns every
// one whose simple Name matches exactly and whose Kind is in kindFilter. An
// empty kindFilter matches any kind, mirroring the teacher's
// Package.LookupMethod "no type restriction" fallback when typeMap is empty.
func DeclarationsByName(unit *graph.TranslationUnitDeclaration, name string, kindFilter ...graph.Kind) []*graph.Node {
	var out []*graph.Node
	for _, d := range unit.Declarations {
		if d.Name != name {
			continue
		}
		if len(kindFilter) == 0 || kindMatches(d.Kind(), kindFilter) {
			out = append(out, d)
		}
	}
	return out
}

func kindMatches(k graph.Kind, filter []graph.Kind) bool {
	for _, f := range filter {
		if k == f {
			return true
		}
	}
	return false
}

// GetBodyStatementAs returns the i-th statement of fn's body if it matches
// kind, failing with *cpgerr.TypeMismatch otherwise (§4.7, §7).
func GetBodyStatementAs(fn *graph.FunctionDeclaration, index int, kind graph.Kind) (*graph.Node, error) {
	if fn.Body == nil {
		return nil, &cpgerr.TypeMismatch{Want: kind.String(), Got: "<no body>"}
	}
	stmts := bodyStatements(fn.Body)
	if index < 0 || index >= len(stmts) {
		return nil, &cpgerr.TypeMismatch{Want: fmt.Sprintf("statement at index %d", index), Got: fmt.Sprintf("body has %d statements", len(stmts))}
	}
	stmt := stmts[index]
	if stmt.Kind() != kind {
		return nil, &cpgerr.TypeMismatch{Want: kind.String(), Got: stmt.Kind().String()}
	}
	return stmt, nil
}

// bodyStatements returns the ordered AST children of a function body. A body
// is usually a BlockStatement (ordered Statements slice via AST edges); a
// frontend may also set a single bare statement as the body (e.g. a
// one-line function), in which case that statement is index 0.
func bodyStatements(body *graph.Node) []*graph.Node {
	if body.Kind() == graph.KindBlock {
		return body.Targets(graph.EdgeAST)
	}
	return []*graph.Node{body}
}

// Index caches a name->declarations map over a translation unit so repeated
// DeclarationsByName-style lookups don't rescan the slice, per the teacher's
// Package.typeMap/functionMap idiom.
type Index struct {
	unit    *graph.TranslationUnitDeclaration
	byName  map[string][]*graph.Node
	callers map[int][]*graph.Node // FunctionDeclaration.ID() -> CallExpression/MemberCall sites invoking it
}

// NewIndex builds an Index over unit, scanning every declaration reachable
// via AST edges (not just top-level ones) so methods/fields/nested records
// are covered too.
func NewIndex(unit *graph.TranslationUnitDeclaration) *Index {
	idx := &Index{
		unit:    unit,
		byName:  map[string][]*graph.Node{},
		callers: map[int][]*graph.Node{},
	}
	seen := map[int]bool{}
	var walk func(n *graph.Node)
	walk = func(n *graph.Node) {
		if n == nil || seen[n.ID()] {
			return
		}
		seen[n.ID()] = true
		idx.byName[n.Name] = append(idx.byName[n.Name], n)
		if n.Kind() == graph.KindCallExpression || n.Kind() == graph.KindMemberCall {
			for _, callee := range n.Targets(graph.EdgeInvokes) {
				idx.callers[callee.ID()] = append(idx.callers[callee.ID()], n)
			}
		}
		for _, e := range n.Edges() {
			if e.Label == graph.EdgeAST {
				walk(e.Dst)
			}
		}
	}
	walk(unit.Node)
	return idx
}

// DeclarationsByKind returns every indexed node with the given Kind, scanning
// the cached name map rather than re-walking the tree. Mirrors the teacher's
// Project.GetPackage lookup-by-index-map shape, generalized from a single
// name key to a full-tree scan since callers ask by Kind, not by name, here.
func (idx *Index) DeclarationsByKind(kind graph.Kind) []*graph.Node {
	var out []*graph.Node
	for _, nodes := range idx.byName {
		for _, n := range nodes {
			if n.Kind() == kind {
				out = append(out, n)
			}
		}
	}
	return out
}

// ByName returns every indexed node (any kind) with the given simple name.
func (idx *Index) ByName(name string) []*graph.Node {
	return idx.byName[name]
}

// CallSites returns every CallExpression/MemberCall whose invokes set
// includes callee, i.e. the reverse of the CallResolver's invokes edge.
// Used by downstream rule tooling to answer "where is this function called
// from" without re-scanning every call site in the unit (§6).
func (idx *Index) CallSites(callee *graph.Node) []*graph.Node {
	return idx.callers[callee.ID()]
}
