package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// DFGPass computes data-flow edges over the EOG built by EOGPass, per §4.6
// item 7: a write (assignment LHS, variable initializer, parameter binding)
// defines a declaration's value at that program point; a read (a resolved
// DeclaredReference/MemberExpression in r-value position) gets a DFG edge
// from every write that reaches it, computed as a standard
// forward reaching-definitions dataflow over the EOG with union-at-merge and
// kill-at-definition. Multiple reaching writes (e.g. after an if/else that
// assigns on both arms) produce multiple incoming edges, per spec.
type DFGPass struct {
	MaxIterations int
}

func (DFGPass) Name() string    { return "DFGPass" }
func (DFGPass) Monotonic() bool { return true }

func (d DFGPass) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	max := d.MaxIterations
	if max <= 0 {
		max = 50
	}
	for _, kind := range []graph.Kind{graph.KindFunction, graph.KindMethod, graph.KindConstructor} {
		for _, fn := range g.NodesOfKind(kind) {
			entries := fn.EOGSuccessors()
			if len(entries) == 0 {
				continue
			}
			converged := runReachingDefs(entries[0], parametersOf(fn), max)
			if !converged {
				report.Warn("DFGPass", "reached max fix-point iterations without converging for "+fn.Name, nil)
			}
		}
	}
	return nil
}

// defState maps a declaration node to the set of value-nodes whose write
// reaches this program point.
type defState map[*graph.Node]map[*graph.Node]struct{}

func cloneState(s defState) defState {
	out := make(defState, len(s))
	for decl, writers := range s {
		ws := make(map[*graph.Node]struct{}, len(writers))
		for w := range writers {
			ws[w] = struct{}{}
		}
		out[decl] = ws
	}
	return out
}

func unionInto(dst, src defState) {
	for decl, writers := range src {
		ws, ok := dst[decl]
		if !ok {
			ws = map[*graph.Node]struct{}{}
			dst[decl] = ws
		}
		for w := range writers {
			ws[w] = struct{}{}
		}
	}
}

func statesEqual(a, b defState) bool {
	if len(a) != len(b) {
		return false
	}
	for decl, aw := range a {
		bw, ok := b[decl]
		if !ok || len(aw) != len(bw) {
			return false
		}
		for w := range aw {
			if _, ok := bw[w]; !ok {
				return false
			}
		}
	}
	return true
}

// runReachingDefs runs the fixed-point dataflow over entry's EOG-reachable
// node set, seeded with params bound to themselves at function entry, then
// emits the resulting DFG edges. Returns false if the iteration cap was hit.
func runReachingDefs(entry *graph.Node, params []*graph.Node, maxIter int) bool {
	nodes := reachableEOG(entry)
	out := make(map[*graph.Node]defState, len(nodes))
	for _, n := range nodes {
		out[n] = defState{}
	}
	seed := defState{}
	for _, p := range params {
		seed[p] = map[*graph.Node]struct{}{p: {}}
	}

	converged := false
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for _, n := range nodes {
			in := mergeIn(n, entry, out, seed)
			next := applyGenKill(n, in)
			if !statesEqual(out[n], next) {
				out[n] = next
				changed = true
			}
		}
		if !changed {
			converged = true
			break
		}
	}

	for _, n := range nodes {
		emitReads(n, entry, out, seed)
	}
	return converged
}

func mergeIn(n, entry *graph.Node, out map[*graph.Node]defState, seed defState) defState {
	result := defState{}
	if n == entry {
		unionInto(result, seed)
	}
	for _, p := range n.EOGPredecessors() {
		if ps, ok := out[p]; ok {
			unionInto(result, ps)
		}
	}
	return result
}

// applyGenKill models the two write shapes the pass recognizes: a plain "="
// assignment and a declaration statement's variable initializers. Any other
// node passes its incoming reaching-definition state through unchanged.
func applyGenKill(n, in defState) defState {
	switch n.Kind() {
	case graph.KindBinaryOperator:
		if n.Name != "=" {
			return in
		}
		decl := refersToDecl(astChildAt(n, 0))
		if decl == nil {
			return in
		}
		writer := astChildAt(n, 1)
		if writer == nil {
			writer = n
		}
		next := cloneState(in)
		next[decl] = map[*graph.Node]struct{}{writer: {}}
		return next
	case graph.KindDeclarationStmt:
		var next defState
		for _, d := range astChildren(n) {
			if d.Kind() != graph.KindVariable {
				continue
			}
			init := initializerOf(d)
			if init == nil {
				continue
			}
			if next == nil {
				next = cloneState(in)
			}
			next[d] = map[*graph.Node]struct{}{init: {}}
		}
		if next == nil {
			return in
		}
		return next
	default:
		return in
	}
}

func refersToDecl(n *graph.Node) *graph.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case graph.KindDeclaredReference, graph.KindMemberExpression:
		targets := n.Targets(graph.EdgeRefersTo)
		if len(targets) > 0 {
			return targets[0]
		}
	}
	return nil
}

// emitReads adds the actual DFG edges for n if it's a resolved
// DeclaredReference/MemberExpression in r-value position (the LHS of a plain
// assignment is a write, not a read, and is excluded).
func emitReads(n, entry *graph.Node, out map[*graph.Node]defState, seed defState) {
	if n.Kind() != graph.KindDeclaredReference && n.Kind() != graph.KindMemberExpression {
		return
	}
	if isAssignmentTarget(n) {
		return
	}
	targets := n.Targets(graph.EdgeRefersTo)
	if len(targets) == 0 {
		return
	}
	in := mergeIn(n, entry, out, seed)
	for _, decl := range targets {
		for w := range in[decl] {
			n.AddDFGPredecessor(w)
		}
	}
}

func isAssignmentTarget(n *graph.Node) bool {
	p := astParent(n)
	return p != nil && p.Kind() == graph.KindBinaryOperator && p.Name == "=" && astChildAt(p, 0) == n
}

func reachableEOG(entry *graph.Node) []*graph.Node {
	visited := map[*graph.Node]bool{entry: true}
	order := []*graph.Node{entry}
	for i := 0; i < len(order); i++ {
		for _, s := range order[i].EOGSuccessors() {
			if !visited[s] {
				visited[s] = true
				order = append(order, s)
			}
		}
	}
	return order
}
