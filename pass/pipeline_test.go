package pass_test

import (
	"context"
	"testing"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/frontend"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/pass"
	"github.com/cpgkit/cpg/scope"
	"github.com/cpgkit/cpg/typesys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFunction wires a Function node into a translation unit with a
// populated scope chain, the way a frontend would: the TU carries the
// global scope, the function its own Function scope, declared in global.
func buildFunction(g *graph.Graph, sm *scope.Manager, name string) (*graph.TranslationUnitDeclaration, *graph.FunctionDeclaration) {
	tu := g.NewTranslationUnit(name + ".c")
	tu.Scope = sm.GlobalScope()
	fn := g.NewFunction(name)
	fnScope := sm.EnterScope(scope.Function, name)
	fn.Scope = fnScope
	sm.LeaveScope(fnScope)
	sm.AddDeclaration(name, fn.Node, "")
	tu.AddDeclaration(fn.Node)
	return tu, fn
}

func TestTypeResolverLinksObjectTypeToRecord(t *testing.T) {
	g := graph.New()
	sm := scope.NewManager()
	rec := g.NewRecord("Widget", "struct")
	sm.AddDeclaration("Widget", rec.Node, "")

	ot := g.NewObjectType("Widget")
	v := g.NewVariable("w")
	v.SetType(ot.Node)

	tu := g.NewTranslationUnit("u.c")
	tu.Scope = sm.GlobalScope()
	tu.AddDeclaration(rec.Node)
	tu.AddDeclaration(v.Node)

	report := diag.NewReport()
	tr := pass.TypeResolver{MaxIterations: 10}
	require.NoError(t, tr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	targets := ot.Node.Targets(graph.EdgeRefersTo)
	require.Len(t, targets, 1)
	assert.Same(t, rec.Node, targets[0])
}

func TestCallResolverVariadic(t *testing.T) {
	// S2: `int printf(const char*, ...); int main(){ printf("%d", 1); }`
	g := graph.New()
	sm := scope.NewManager()

	printfFn := g.NewFunction("printf")
	printfFn.IsVariadic = true
	param := g.NewParameter("fmt")
	param.SetType(typesys.Parse(g, "const char*", false, nil).Node)
	printfFn.AddParameter(param.Node)
	sm.AddDeclaration("printf", printfFn.Node, "")

	tu, main := buildFunction(g, sm, "main")
	call := g.NewCallExpression("printf")
	call.AddArgument(g.NewLiteral(`"%d"`).Node)
	call.AddArgument(g.NewLiteral("1").Node)
	body := g.NewBlock()
	body.AddStatement(g.NewExpressionStmt(call.Node).Node)
	main.SetBody(body.Node)

	report := diag.NewReport()
	cr := pass.CallResolver{}
	require.NoError(t, cr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	invokes := call.Node.Targets(graph.EdgeInvokes)
	require.Len(t, invokes, 1)
	assert.Same(t, printfFn.Node, invokes[0])
	assert.False(t, call.Node.Unresolved)
}

func TestCallResolverArityMismatchLeavesUnresolved(t *testing.T) {
	g := graph.New()
	sm := scope.NewManager()

	fn := g.NewFunction("f")
	p := g.NewParameter("x")
	fn.AddParameter(p.Node)
	sm.AddDeclaration("f", fn.Node, "")

	tu, main := buildFunction(g, sm, "main")
	call := g.NewCallExpression("f") // zero args, f wants one
	body := g.NewBlock()
	body.AddStatement(g.NewExpressionStmt(call.Node).Node)
	main.SetBody(body.Node)

	report := diag.NewReport()
	cr := pass.CallResolver{}
	require.NoError(t, cr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	assert.Empty(t, call.Node.Targets(graph.EdgeInvokes))
	assert.True(t, call.Node.Unresolved)
}

func TestCallResolverMemberCallRepeatedSiteShareCandidates(t *testing.T) {
	// Two MemberCall sites against the same record/method exercise the same
	// memoized superclass-chain walk; both must still resolve independently.
	g := graph.New()
	sm := scope.NewManager()

	rec := g.NewRecord("Widget", "struct")
	raw := g.NewFunction("DoThing")
	method := frontend.PromoteToMethod(g, raw, rec)

	ot := g.NewObjectType("Widget")
	ot.Node.AddEdge(graph.EdgeRefersTo, rec.Node, -1, nil)
	v := g.NewVariable("w")
	v.SetType(ot.Node)
	sm.AddDeclaration("w", v.Node, "")

	tu, main := buildFunction(g, sm, "main")
	body := g.NewBlock()
	for i := 0; i < 2; i++ {
		ref := g.NewDeclaredReference("w")
		ref.ResolveTo([]*graph.Node{v.Node})
		call := g.NewMemberCall(ref.Node, "DoThing")
		body.AddStatement(g.NewExpressionStmt(call.Node).Node)
	}
	main.SetBody(body.Node)

	report := diag.NewReport()
	cr := pass.CallResolver{}
	require.NoError(t, cr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	for _, call := range g.NodesOfKind(graph.KindMemberCall) {
		invokes := call.Targets(graph.EdgeInvokes)
		require.Len(t, invokes, 1)
		assert.Same(t, method.Node, invokes[0])
		assert.False(t, call.Unresolved)
	}
}

func TestCallResolverMemberCallUnknownTypeFallsBackAcrossAllRecords(t *testing.T) {
	// §9 Open Question: a MemberCall base with no resolvable record type
	// over-approximates invokes with every same-named method on every known
	// record, rather than leaving the call unresolved.
	g := graph.New()
	sm := scope.NewManager()

	rec := g.NewRecord("Widget", "struct")
	raw := g.NewFunction("DoThing")
	method := frontend.PromoteToMethod(g, raw, rec)

	// v has no SetType call, so its declared type is unknown: recordOfExpression
	// can't anchor the base to Widget (or any record) directly.
	v := g.NewVariable("w")
	sm.AddDeclaration("w", v.Node, "")

	tu, main := buildFunction(g, sm, "main")
	ref := g.NewDeclaredReference("w")
	ref.ResolveTo([]*graph.Node{v.Node})
	call := g.NewMemberCall(ref.Node, "DoThing")
	body := g.NewBlock()
	body.AddStatement(g.NewExpressionStmt(call.Node).Node)
	main.SetBody(body.Node)

	report := diag.NewReport()
	cr := pass.CallResolver{}
	require.NoError(t, cr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	invokes := call.Node.Targets(graph.EdgeInvokes)
	require.Len(t, invokes, 1)
	assert.Same(t, method.Node, invokes[0])
	assert.False(t, call.Node.Unresolved)
}

func TestVariableUsageResolverMemberExpressionThroughTypedVariable(t *testing.T) {
	// Regression: declaredType previously read the wrong edge label, so a
	// MemberExpression base typed via a plain variable (not "this"/"self")
	// never resolved to its field.
	g := graph.New()
	sm := scope.NewManager()

	rec := g.NewRecord("Widget", "struct")
	field := g.NewField("count")
	rec.AddField(field.Node)

	ot := g.NewObjectType("Widget")
	ot.Node.AddEdge(graph.EdgeRefersTo, rec.Node, -1, nil)
	v := g.NewVariable("w")
	v.SetType(ot.Node)
	sm.AddDeclaration("w", v.Node, "")

	tu, main := buildFunction(g, sm, "main")
	ref := g.NewDeclaredReference("w")
	ref.ResolveTo([]*graph.Node{v.Node})
	member := g.NewMemberExpression(ref.Node, "count")
	body := g.NewBlock()
	body.AddStatement(g.NewExpressionStmt(member.Node).Node)
	main.SetBody(body.Node)

	report := diag.NewReport()
	vr := pass.VariableUsageResolver{MaxIterations: 10}
	require.NoError(t, vr.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	targets := member.Node.Targets(graph.EdgeRefersTo)
	require.Len(t, targets, 1)
	assert.Same(t, field.Node, targets[0])
}

func TestEOGPassShortCircuit(t *testing.T) {
	// S6: `if (a && b) c;` — a's evaluation has two EOG successors: b's
	// entry, and the "&&" operator node itself (the post-expression join,
	// reached directly when a alone already determines the result); b's
	// evaluation has a single successor, the same join at "&&".
	g := graph.New()
	sm := scope.NewManager()

	a := g.NewDeclaredReference("a")
	b := g.NewDeclaredReference("b")
	and := g.NewBinaryOperator("&&", a.Node, b.Node)
	cCall := g.NewExpressionStmt(g.NewCallExpression("c").Node)
	ifStmt := g.NewIf(and.Node, cCall.Node, nil)
	after := g.NewExpressionStmt(g.NewCallExpression("after").Node)

	blockBody := g.NewBlock()
	blockBody.AddStatement(ifStmt.Node)
	blockBody.AddStatement(after.Node)

	tu, fn := buildFunction(g, sm, "f")
	fn.SetBody(blockBody.Node)

	report := diag.NewReport()
	ep := pass.EOGPass{}
	require.NoError(t, ep.Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	aSuccessors := a.Node.EOGSuccessors()
	assert.Len(t, aSuccessors, 2, "a's evaluation splits to b's entry and the post-expression join")
	assert.Contains(t, aSuccessors, b.Node)
	assert.Contains(t, aSuccessors, and.Node)

	bSuccessors := b.Node.EOGSuccessors()
	assert.Equal(t, []*graph.Node{and.Node}, bSuccessors, "b's evaluation has a single successor: the join at &&")
}

func TestDFGPassReachesSingleWrite(t *testing.T) {
	g := graph.New()
	sm := scope.NewManager()

	tu, fn := buildFunction(g, sm, "f")

	one := g.NewLiteral("1")
	xDecl := g.NewVariable("x")
	xDecl.SetInitial(one.Node)
	declStmt := g.NewDeclarationStmt()
	declStmt.AddDeclaration(xDecl.Node)
	sm.AddDeclaration("x", xDecl.Node, "")

	xRef := g.NewDeclaredReference("x")
	xRef.ResolveTo([]*graph.Node{xDecl.Node})
	readStmt := g.NewExpressionStmt(xRef.Node)

	block := g.NewBlock()
	block.AddStatement(declStmt.Node)
	block.AddStatement(readStmt.Node)
	fn.SetBody(block.Node)

	report := diag.NewReport()
	require.NoError(t, (pass.EOGPass{}).Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))
	require.NoError(t, (pass.DFGPass{MaxIterations: 50}).Run(context.Background(), g, []*graph.TranslationUnitDeclaration{tu}, report))

	preds := xRef.Node.DFGPredecessors()
	require.Len(t, preds, 1)
	assert.Same(t, one.Node, preds[0], "the read's only reaching write is x's initializer")
}

func TestPipelineToleratesPassPanicAndContinues(t *testing.T) {
	g := graph.New()
	report := diag.NewReport()

	p := &pass.Pipeline{Passes: []pass.Pass{panickyPass{}, pass.FilenameMapper{}}}
	p.Run(context.Background(), g, nil, report)

	require.Len(t, report.Events(), 1)
	assert.Equal(t, diag.Error, report.Events()[0].Severity)
	assert.True(t, report.HasErrors())
}

type panickyPass struct{}

func (panickyPass) Name() string    { return "Panicky" }
func (panickyPass) Monotonic() bool { return true }
func (panickyPass) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	panic("boom")
}
