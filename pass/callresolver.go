package pass

import (
	"context"
	"fmt"
	"strings"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/scope"
	"github.com/cpgkit/cpg/typesys"
)

// CallResolver fills invokes on every CallExpression/MemberCall, per §4.6
// item 5: candidates are collected by name (simple or qualified) and
// arity/argument-type compatibility; MemberCall additionally restricts to
// methods reachable on the base's type or its super-classes. Virtual
// dispatch is modeled structurally: every method sharing the call's simple
// name on the base's record or any of its super-classes is a candidate,
// since the graph records no vtable and a real dispatch target can't be
// picked without one. Overrides declared in subclasses of the base's record
// are not collected.
type CallResolver struct{}

func (CallResolver) Name() string    { return "CallResolver" }
func (CallResolver) Monotonic() bool { return true }

func (CallResolver) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	// memo caches the superclass method walk by (record, name): a
	// call site count in the hundreds against a handful of distinct records
	// would otherwise re-walk the same chain per call.
	memo := make(map[uint64][]*graph.Node)
	for _, n := range g.NodesOfKind(graph.KindCallExpression) {
		resolveCallExpression(g, n)
	}
	for _, n := range g.NodesOfKind(graph.KindMemberCall) {
		resolveMemberCall(g, n, memo)
	}
	return nil
}

func resolveCallExpression(g *graph.Graph, n *graph.Node) {
	if len(n.Targets(graph.EdgeInvokes)) > 0 {
		return
	}
	s := enclosingScope(n)
	if s == nil {
		return
	}
	simpleName := n.Name
	if idx := lastDelimiterIndex(n.Name); idx >= 0 {
		simpleName = n.Name[idx+1:]
	}
	candidates := scope.Resolve(simpleName, s, callableFilter)
	args := n.EdgesOf(graph.EdgeAST)
	argNodes := make([]*graph.Node, len(args))
	for i, e := range args {
		argNodes[i] = e.Dst
	}
	idx := 0
	for _, d := range candidates {
		fn, ok := d.(*graph.Node)
		if !ok || !arityCompatible(fn, len(args)) || !argumentsCompatible(fn, argNodes) {
			continue
		}
		n.AddEdge(graph.EdgeInvokes, fn, idx, nil)
		idx++
	}
	n.Unresolved = idx == 0
}

// resolveMemberCall restricts candidates to methods on the base's type or
// its super-classes, collecting every method with the matching name up the
// superclass chain (virtual dispatch over-approximation; subclass overrides
// are not collected). When
// the base's type doesn't resolve to a known record at all (an UnknownType
// base, per §9's Open Question), it falls back to every method named n.Name
// across every known record rather than leaving the call unresolved — the
// spec declares that over-approximation intended, safer than silent loss.
func resolveMemberCall(g *graph.Graph, n *graph.Node, memo map[uint64][]*graph.Node) {
	if len(n.Targets(graph.EdgeInvokes)) > 0 {
		return
	}
	base := astChildAt(n, 0)
	if base == nil {
		return
	}
	var methods []*graph.Node
	if rec := recordOfExpression(g, base); rec != nil {
		var err error
		methods, err = memoizedMethodsNamed(memo, rec, n.Name)
		if err != nil {
			// Hashing never fails for this fixed-size key; fall back to an
			// unmemoized walk rather than leaving the call unresolved.
			methods = methodsNamed(rec, n.Name, map[*graph.Node]bool{})
		}
	} else {
		methods = methodsNamedAcrossAllRecords(g, n.Name)
	}
	idx := 0
	// MemberCall's argument edges start at index 1 (index 0 is the base).
	var argNodes []*graph.Node
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Index >= 1 {
			argNodes = append(argNodes, e.Dst)
		}
	}
	for _, m := range methods {
		if !arityCompatible(m, len(argNodes)) || !argumentsCompatible(m, argNodes) {
			continue
		}
		n.AddEdge(graph.EdgeInvokes, m, idx, nil)
		idx++
	}
	n.Unresolved = idx == 0
}

// memoizedMethodsNamed wraps methodsNamed with a cache keyed by a stable
// hash of the record's node ID and the call name, so repeat member calls to
// the same method on the same record skip the superclass-chain walk.
func memoizedMethodsNamed(memo map[uint64][]*graph.Node, rec *graph.Node, name string) ([]*graph.Node, error) {
	key, err := graph.StableHash([]byte(fmt.Sprintf("%d:%s", rec.ID(), name)))
	if err != nil {
		return nil, err
	}
	if cached, ok := memo[key]; ok {
		return cached, nil
	}
	methods := methodsNamed(rec, name, map[*graph.Node]bool{})
	memo[key] = methods
	return methods, nil
}

// methodsNamedAcrossAllRecords collects every Method/Constructor named name
// on every record known to g, for the UnknownType-base over-approximation
// fallback: with no record to anchor the lookup on, this is the only way to
// avoid silently dropping the call site from the (approximate) call graph.
func methodsNamedAcrossAllRecords(g *graph.Graph, name string) []*graph.Node {
	var out []*graph.Node
	for _, rec := range g.NodesOfKind(graph.KindRecord) {
		out = append(out, methodsNamed(rec, name, map[*graph.Node]bool{})...)
	}
	return out
}

// methodsNamed collects every Method/Constructor named name reachable from
// rec's own method list and (recursively) its super-classes.
func methodsNamed(rec *graph.Node, name string, visited map[*graph.Node]bool) []*graph.Node {
	if rec == nil || visited[rec] {
		return nil
	}
	visited[rec] = true
	var out []*graph.Node
	for _, e := range rec.EdgesOf(graph.EdgeAST) {
		if e.Dst == nil {
			continue
		}
		if (e.Dst.Kind() == graph.KindMethod || e.Dst.Kind() == graph.KindConstructor) && e.Dst.Name == name {
			out = append(out, e.Dst)
		}
	}
	for _, super := range rec.Targets(graph.EdgeSuperClass) {
		out = append(out, methodsNamed(super, name, visited)...)
	}
	return out
}

// arityCompatible checks fn's fixed parameter count against argCount,
// allowing any argCount >= fixed arity when fn is variadic (S2).
func arityCompatible(fn *graph.Node, argCount int) bool {
	fixed := len(parametersOf(fn))
	if fn.IsVariadic {
		return argCount >= fixed
	}
	return argCount == fixed
}

func parametersOf(fn *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, e := range fn.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil && e.Dst.Kind() == graph.KindParameter {
			out = append(out, e.Dst)
		}
	}
	return out
}

// argumentsCompatible checks each fixed argument's inferred type against its
// parameter's declared type via typesys.IsCompatible, per §4.2/§4.6 item 5.
// An argument or parameter whose type can't be inferred (no literal/resolved
// reference, or an untyped parameter) is treated as compatible rather than
// rejecting the candidate outright — this pass has no general expression
// type-inference pass to lean on, only the type text already attached to
// declarations and literals.
func argumentsCompatible(fn *graph.Node, args []*graph.Node) bool {
	params := parametersOf(fn)
	for i, arg := range args {
		if i >= len(params) {
			break // variadic tail; arityCompatible already accepted the count
		}
		argType := inferredTypeText(arg)
		paramType := typeTextOf(params[i])
		if argType == "" || paramType == "" {
			continue
		}
		from := typesys.Parse(fn.Graph(), argType, false, nil)
		to := typesys.Parse(fn.Graph(), paramType, false, nil)
		if !typesys.IsCompatible(from, to, nil) {
			return false
		}
	}
	return true
}

// inferredTypeText recovers a coarse type-text for a value-producing
// expression: a literal's text shape (quoted -> char*, digits -> int), or a
// resolved DeclaredReference's declared type.
func inferredTypeText(n *graph.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case graph.KindLiteral:
		return literalTypeText(n.Code)
	case graph.KindDeclaredReference:
		targets := n.Targets(graph.EdgeRefersTo)
		if len(targets) == 0 {
			return ""
		}
		return typeTextOf(targets[0])
	default:
		return ""
	}
}

func literalTypeText(code string) string {
	switch {
	case len(code) >= 2 && (code[0] == '"' || code[0] == '\''):
		return "char*"
	case code == "true" || code == "false":
		return "int"
	default:
		for _, r := range code {
			if r < '0' || r > '9' {
				if r == '.' {
					return "double"
				}
				return ""
			}
		}
		if code != "" {
			return "int"
		}
		return ""
	}
}

// typeTextOf reconstructs the declared type text of a Field/Variable/
// Parameter from its EdgeType target's node chain, reversing the
// outer-to-inner wrapper walk back into source order.
func typeTextOf(decl *graph.Node) string {
	targets := decl.Targets(graph.EdgeType)
	if len(targets) == 0 {
		return ""
	}
	var wrappers []string
	cur := targets[0]
	for cur != nil {
		switch cur.Kind() {
		case graph.KindPointerType:
			wrappers = append(wrappers, "*")
		case graph.KindReferenceType:
			wrappers = append(wrappers, "&")
		case graph.KindObjectType:
			for i, j := 0, len(wrappers)-1; i < j; i, j = i+1, j-1 {
				wrappers[i], wrappers[j] = wrappers[j], wrappers[i]
			}
			return cur.Name + strings.Join(wrappers, "")
		default:
			return ""
		}
		next := cur.Targets(graph.EdgeType)
		if len(next) == 0 {
			return ""
		}
		cur = next[0]
	}
	return ""
}

func callableFilter(d scope.Declaration) bool {
	switch d.DeclKind() {
	case "Function", "Method", "Constructor":
		return true
	default:
		return false
	}
}

func lastDelimiterIndex(name string) int {
	for _, delim := range []string{"::", "."} {
		if idx := lastIndexOf(name, delim); idx >= 0 {
			return idx + len(delim) - 1
		}
	}
	return -1
}

func lastIndexOf(s, sub string) int {
	last := -1
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			last = i
		}
	}
	return last
}
