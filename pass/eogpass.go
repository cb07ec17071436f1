package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// EOGPass builds intra-procedural evaluation-order edges per §4.6 item 6:
// operands left-to-right then the expression itself; short-circuit operators
// split the left operand's exit into two successors (the right operand's
// entry, and the post-expression join); statements connect sequentially
// within blocks, with structured control statements connecting
// header -> body -> continuation and back-edges for loops. Unlike
// TypeResolver/CallResolver this pass doesn't qualify for pass-internal
// parallelism (§5): building the successor chain for one function reads and
// writes the same shared node set a sibling function's chain could touch via
// shared record/global declarations reached through EdgeRefersTo.
type EOGPass struct{}

func (EOGPass) Name() string    { return "EOGPass" }
func (EOGPass) Monotonic() bool { return true }

func (EOGPass) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	for _, kind := range []graph.Kind{graph.KindFunction, graph.KindMethod, graph.KindConstructor} {
		for _, fn := range g.NodesOfKind(kind) {
			body := astChildAt(fn, -1)
			if body == nil {
				continue
			}
			b := &eogBuilder{}
			entry, _ := b.connectStmt(body)
			if entry != nil {
				fn.AddEOGSuccessor(entry, "")
			}
		}
	}
	return nil
}

// eogExit is an EOG chain's dangling successor: a source node plus the
// branch label the eventual edge to the next entry should carry (e.g. the
// "false" exit of an if with no else falls straight through to whatever
// follows).
type eogExit struct {
	node   *graph.Node
	branch string
}

// eogBuilder threads loop break/continue targets through the recursive
// descent, since break/continue jump to a point determined by the nearest
// enclosing loop rather than by normal sequential chaining.
type eogBuilder struct {
	breakTargets    [][]eogExit
	continueTargets []*graph.Node
}

func (b *eogBuilder) pushLoop() { b.breakTargets = append(b.breakTargets, nil) }

func (b *eogBuilder) popLoop() []eogExit {
	n := len(b.breakTargets)
	top := b.breakTargets[n-1]
	b.breakTargets = b.breakTargets[:n-1]
	return top
}

func (b *eogBuilder) recordBreak(ex eogExit) {
	if n := len(b.breakTargets); n > 0 {
		b.breakTargets[n-1] = append(b.breakTargets[n-1], ex)
	}
}

func (b *eogBuilder) pushContinue(target *graph.Node) {
	b.continueTargets = append(b.continueTargets, target)
}

func (b *eogBuilder) popContinue() {
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
}

func (b *eogBuilder) continueTarget() *graph.Node {
	if n := len(b.continueTargets); n > 0 {
		return b.continueTargets[n-1]
	}
	return nil
}

// connectStmt wires n's own evaluation-order chain and returns its entry
// node plus its dangling exits for the caller to connect onward.
func (b *eogBuilder) connectStmt(n *graph.Node) (*graph.Node, []eogExit) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind() {
	case graph.KindBlock:
		return b.connectBlock(n)
	case graph.KindIf:
		return b.connectIf(n)
	case graph.KindWhile:
		return b.connectWhile(n)
	case graph.KindFor:
		return b.connectFor(n)
	case graph.KindForEach:
		return b.connectForEach(n)
	case graph.KindSwitch:
		return b.connectSwitch(n)
	case graph.KindCase:
		return b.connectCaseLike(n, caseBody(n))
	case graph.KindDefault:
		return b.connectCaseLike(n, astChildren(n))
	case graph.KindTry:
		return b.connectTry(n)
	case graph.KindReturn:
		if val := astChildAt(n, 0); val != nil {
			vEntry, vExit := b.connectExpr(val)
			vExit.AddEOGSuccessor(n, "")
			return vEntry, nil
		}
		return n, nil
	case graph.KindBreak:
		b.recordBreak(eogExit{n, ""})
		return n, nil
	case graph.KindContinue:
		if t := b.continueTarget(); t != nil {
			n.AddEOGSuccessor(t, "")
		}
		return n, nil
	case graph.KindDeclarationStmt:
		return b.connectDeclarationStmt(n)
	case graph.KindExpressionStmt:
		expr := astChildAt(n, 0)
		eEntry, eExit := b.connectExpr(expr)
		if eExit == nil {
			return n, []eogExit{{n, ""}}
		}
		eExit.AddEOGSuccessor(n, "")
		return eEntry, []eogExit{{n, ""}}
	default:
		return n, []eogExit{{n, ""}}
	}
}

func (b *eogBuilder) connectBlock(n *graph.Node) (*graph.Node, []eogExit) {
	children := astChildren(n)
	if len(children) == 0 {
		return n, []eogExit{{n, ""}}
	}
	return b.chainStatements(children)
}

func (b *eogBuilder) chainStatements(stmts []*graph.Node) (*graph.Node, []eogExit) {
	var entry *graph.Node
	var prevExits []eogExit
	for _, s := range stmts {
		sEntry, sExits := b.connectStmt(s)
		if sEntry == nil {
			continue
		}
		if entry == nil {
			entry = sEntry
		}
		for _, pe := range prevExits {
			pe.node.AddEOGSuccessor(sEntry, pe.branch)
		}
		prevExits = sExits
	}
	return entry, prevExits
}

func (b *eogBuilder) connectCaseLike(n *graph.Node, body []*graph.Node) (*graph.Node, []eogExit) {
	if len(body) == 0 {
		return n, []eogExit{{n, ""}}
	}
	return b.chainStatements(body)
}

func caseBody(n *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Index >= 1 {
			out = append(out, e.Dst)
		}
	}
	return out
}

func (b *eogBuilder) connectIf(n *graph.Node) (*graph.Node, []eogExit) {
	cond := astChildAt(n, 0)
	then := astChildAt(n, 1)
	els := astChildAt(n, 2)

	condEntry, condExit := b.connectExpr(cond)
	thenEntry, thenExits := b.connectStmt(then)
	condExit.AddEOGSuccessor(thenEntry, "true")

	var exits []eogExit
	exits = append(exits, thenExits...)
	if els != nil {
		elseEntry, elseExits := b.connectStmt(els)
		condExit.AddEOGSuccessor(elseEntry, "false")
		exits = append(exits, elseExits...)
	} else {
		exits = append(exits, eogExit{condExit, "false"})
	}
	return condEntry, exits
}

func (b *eogBuilder) connectWhile(n *graph.Node) (*graph.Node, []eogExit) {
	cond := astChildAt(n, 0)
	body := astChildAt(n, 1)

	condEntry, condExit := b.connectExpr(cond)
	b.pushLoop()
	b.pushContinue(condEntry)
	bodyEntry, bodyExits := b.connectStmt(body)
	b.popContinue()
	breaks := b.popLoop()

	condExit.AddEOGSuccessor(bodyEntry, "true")
	for _, be := range bodyExits {
		be.node.AddEOGSuccessor(condEntry, be.branch)
	}

	exits := append([]eogExit{{condExit, "false"}}, breaks...)
	return condEntry, exits
}

func (b *eogBuilder) connectFor(n *graph.Node) (*graph.Node, []eogExit) {
	init := astChildAt(n, 0)
	cond := astChildAt(n, 1)
	update := astChildAt(n, 2)
	body := astChildAt(n, 3)

	var entry *graph.Node
	var initExit *graph.Node
	if init != nil {
		ie, iExits := b.connectStmt(init)
		entry = ie
		if len(iExits) > 0 {
			initExit = iExits[0].node
		}
	}

	var condEntry, condExit *graph.Node
	if cond != nil {
		condEntry, condExit = b.connectExpr(cond)
	} else {
		// No condition: the for-node itself stands in as the loop header.
		condEntry, condExit = n, n
	}
	if entry == nil {
		entry = condEntry
	} else if initExit != nil {
		initExit.AddEOGSuccessor(condEntry, "")
	}

	continueTarget := condEntry
	var updateEntry *graph.Node
	if update != nil {
		ue, uExit := b.connectExpr(update)
		updateEntry = ue
		uExit.AddEOGSuccessor(condEntry, "")
		continueTarget = updateEntry
	}

	b.pushLoop()
	b.pushContinue(continueTarget)
	bodyEntry, bodyExits := b.connectStmt(body)
	b.popContinue()
	breaks := b.popLoop()

	branch := ""
	if cond != nil {
		branch = "true"
	}
	condExit.AddEOGSuccessor(bodyEntry, branch)
	for _, be := range bodyExits {
		if update != nil {
			be.node.AddEOGSuccessor(updateEntry, be.branch)
		} else {
			be.node.AddEOGSuccessor(condEntry, be.branch)
		}
	}

	var exits []eogExit
	if cond != nil {
		exits = append(exits, eogExit{condExit, "false"})
	}
	exits = append(exits, breaks...)
	return entry, exits
}

func (b *eogBuilder) connectForEach(n *graph.Node) (*graph.Node, []eogExit) {
	iterable := astChildAt(n, 1)
	body := astChildAt(n, 2)

	iterEntry, iterExit := b.connectExpr(iterable)
	iterExit.AddEOGSuccessor(n, "") // n itself is the next-element check

	b.pushLoop()
	b.pushContinue(n)
	bodyEntry, bodyExits := b.connectStmt(body)
	b.popContinue()
	breaks := b.popLoop()

	n.AddEOGSuccessor(bodyEntry, "true")
	for _, be := range bodyExits {
		be.node.AddEOGSuccessor(n, be.branch)
	}

	exits := append([]eogExit{{n, "false"}}, breaks...)
	return iterEntry, exits
}

func (b *eogBuilder) connectSwitch(n *graph.Node) (*graph.Node, []eogExit) {
	selector := astChildAt(n, 0)
	selEntry, selExit := b.connectExpr(selector)

	b.pushLoop() // break inside a switch exits the switch, same mechanism as a loop break
	var prevFallthrough []eogExit
	var exits []eogExit
	for _, c := range switchCases(n) {
		branch := "case"
		if c.Kind() == graph.KindDefault {
			branch = "default"
		}
		cEntry, cExits := b.connectStmt(c)
		selExit.AddEOGSuccessor(cEntry, branch)
		for _, pf := range prevFallthrough {
			pf.node.AddEOGSuccessor(cEntry, pf.branch)
		}
		prevFallthrough = cExits
	}
	breaks := b.popLoop()
	exits = append(exits, prevFallthrough...)
	exits = append(exits, breaks...)
	return selEntry, exits
}

func switchCases(n *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Index >= 1 {
			out = append(out, e.Dst)
		}
	}
	return out
}

func (b *eogBuilder) connectTry(n *graph.Node) (*graph.Node, []eogExit) {
	body := astChildAt(n, 0)
	bodyEntry, bodyExits := b.connectStmt(body)
	n.AddEOGSuccessor(bodyEntry, "")

	exits := append([]eogExit(nil), bodyExits...)
	var finallyNode *graph.Node
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		switch {
		case e.Index == 0:
			continue // body, already handled
		case e.Index == -1:
			finallyNode = e.Dst
		default:
			catchEntry, catchExits := b.connectStmt(e.Dst)
			n.AddEOGSuccessor(catchEntry, "catch")
			exits = append(exits, catchExits...)
		}
	}
	if finallyNode == nil {
		return n, exits
	}
	finallyEntry, finallyExits := b.connectStmt(finallyNode)
	for _, ex := range exits {
		ex.node.AddEOGSuccessor(finallyEntry, ex.branch)
	}
	return n, finallyExits
}

func (b *eogBuilder) connectDeclarationStmt(n *graph.Node) (*graph.Node, []eogExit) {
	var entry *graph.Node
	var prevExit *graph.Node
	for _, d := range astChildren(n) {
		init := initializerOf(d)
		if init == nil {
			continue
		}
		e, x := b.connectExpr(init)
		if entry == nil {
			entry = e
		}
		if prevExit != nil {
			prevExit.AddEOGSuccessor(e, "")
		}
		prevExit = x
	}
	if prevExit != nil && prevExit != n {
		prevExit.AddEOGSuccessor(n, "")
	}
	if entry == nil {
		entry = n
	}
	return entry, []eogExit{{n, ""}}
}

func initializerOf(d *graph.Node) *graph.Node {
	if d.Kind() != graph.KindVariable {
		return nil
	}
	for _, e := range d.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil && e.Dst.Kind().IsExpression() {
			return e.Dst
		}
	}
	return nil
}

// connectExpr wires n's operand evaluation order (left to right, then n
// itself) and returns a single entry/exit pair: every expression variant
// produces its value at the expression node, so one exit suffices except for
// the short-circuit split handled inline below.
func (b *eogBuilder) connectExpr(n *graph.Node) (*graph.Node, *graph.Node) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind() {
	case graph.KindLiteral, graph.KindDeclaredReference:
		return n, n
	case graph.KindBinaryOperator:
		return b.connectBinaryOperator(n)
	case graph.KindUnaryOperator:
		oEntry, oExit := b.connectExpr(astChildAt(n, 0))
		oExit.AddEOGSuccessor(n, "")
		return oEntry, n
	case graph.KindCast:
		tEntry, tExit := b.connectExpr(astChildAt(n, 0))
		tExit.AddEOGSuccessor(n, "")
		return tEntry, n
	case graph.KindArraySubscript:
		baseEntry, baseExit := b.connectExpr(astChildAt(n, 0))
		idxEntry, idxExit := b.connectExpr(astChildAt(n, 1))
		baseExit.AddEOGSuccessor(idxEntry, "")
		idxExit.AddEOGSuccessor(n, "")
		return baseEntry, n
	case graph.KindConditional:
		condEntry, condExit := b.connectExpr(astChildAt(n, 0))
		thenEntry, thenExit := b.connectExpr(astChildAt(n, 1))
		elseEntry, elseExit := b.connectExpr(astChildAt(n, 2))
		condExit.AddEOGSuccessor(thenEntry, "true")
		condExit.AddEOGSuccessor(elseEntry, "false")
		thenExit.AddEOGSuccessor(n, "")
		elseExit.AddEOGSuccessor(n, "")
		return condEntry, n
	case graph.KindMemberExpression:
		baseEntry, baseExit := b.connectExpr(astChildAt(n, 0))
		baseExit.AddEOGSuccessor(n, "")
		return baseEntry, n
	case graph.KindCallExpression, graph.KindMemberCall, graph.KindConstructExpression,
		graph.KindNewExpression, graph.KindInitializerList:
		return b.connectOperandList(n)
	default:
		return n, n
	}
}

// connectBinaryOperator implements the §4.6/S6 short-circuit split: the left
// operand's exit goes both to the right operand's entry (normal evaluation)
// and directly to the operator node (the post-expression join taken when
// the left operand alone already determines the result).
func (b *eogBuilder) connectBinaryOperator(n *graph.Node) (*graph.Node, *graph.Node) {
	lhs := astChildAt(n, 0)
	rhs := astChildAt(n, 1)
	lEntry, lExit := b.connectExpr(lhs)
	rEntry, rExit := b.connectExpr(rhs)

	shortCircuit := n.Name == "&&" || n.Name == "||"
	lExit.AddEOGSuccessor(rEntry, "")
	if shortCircuit {
		lExit.AddEOGSuccessor(n, "short-circuit")
	}
	rExit.AddEOGSuccessor(n, "")
	return lEntry, n
}

// connectOperandList evaluates every ordered AST child left to right (the
// base expression of a MemberCall precedes its arguments, since both are
// ordinary ordered AST children) then joins at n.
func (b *eogBuilder) connectOperandList(n *graph.Node) (*graph.Node, *graph.Node) {
	children := astChildren(n)
	if len(children) == 0 {
		return n, n
	}
	var entry *graph.Node
	var prevExit *graph.Node
	for _, c := range children {
		e, x := b.connectExpr(c)
		if entry == nil {
			entry = e
		}
		if prevExit != nil {
			prevExit.AddEOGSuccessor(e, "")
		}
		prevExit = x
	}
	prevExit.AddEOGSuccessor(n, "")
	return entry, n
}

// astChildren returns every ordered (index >= 0) AST child of n, in index
// order — EdgesOf already preserves insertion order, which matches index
// order for every node variant that only ever appends ordered children.
func astChildren(n *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil && e.Index >= 0 {
			out = append(out, e.Dst)
		}
	}
	return out
}
