package graph

// Every statement and expression carries an EOG predecessor set; EOGPass
// populates it via AddEOGSuccessor below rather than a
// per-variant field, since the edge applies uniformly across both families.

// AddEOGSuccessor records an evaluation-order edge from n to next, optionally
// tagged with a branch outcome (e.g. "true"/"false" for an If's two exits).
func (n *Node) AddEOGSuccessor(next *Node, branch string) {
	var props map[string]string
	if branch != "" {
		props = map[string]string{"branch": branch}
	}
	n.AddEdge(EdgeEOG, next, -1, props)
}

// EOGSuccessors returns the evaluation-order successors of n, in insertion
// order.
func (n *Node) EOGSuccessors() []*Node {
	return n.Targets(EdgeEOG)
}

// EOGPredecessors returns nodes with an EOG edge into n.
func (n *Node) EOGPredecessors() []*Node {
	var out []*Node
	for _, src := range n.in {
		for _, e := range src.out {
			if e.Label == EdgeEOG && e.Dst == n {
				out = append(out, src)
				break
			}
		}
	}
	return out
}

// AddDFGPredecessor records a data-flow edge from the writer/source value
// node to n, the consuming node. Multiple reaching writes add multiple
// edges, per §4.6 DFGPass.
func (n *Node) AddDFGPredecessor(writer *Node) {
	writer.AddEdge(EdgeDFG, n, -1, nil)
}

// DFGPredecessors returns every node with a DFG edge into n.
func (n *Node) DFGPredecessors() []*Node {
	var out []*Node
	for _, src := range n.in {
		for _, e := range src.out {
			if e.Label == EdgeDFG && e.Dst == n {
				out = append(out, src)
				break
			}
		}
	}
	return out
}

// BlockStatement is an ordered sequence of statements, e.g. a function body
// or a compound statement.
type BlockStatement struct {
	*Node
	Statements []*Node
}

func (g *Graph) NewBlock() *BlockStatement {
	return &BlockStatement{Node: g.alloc(KindBlock)}
}

func (b *BlockStatement) AddStatement(s *Node) {
	b.AddEdge(EdgeAST, s, len(b.Statements), nil)
	b.Statements = append(b.Statements, s)
}

// IfStatement.
type IfStatement struct {
	*Node
	Condition *Node
	Then      *Node
	Else      *Node // nil if there is no else branch
}

func (g *Graph) NewIf(cond, then, els *Node) *IfStatement {
	n := g.alloc(KindIf)
	n.AddEdge(EdgeAST, cond, 0, nil)
	n.AddEdge(EdgeAST, then, 1, nil)
	if els != nil {
		n.AddEdge(EdgeAST, els, 2, nil)
	}
	return &IfStatement{Node: n, Condition: cond, Then: then, Else: els}
}

// WhileStatement.
type WhileStatement struct {
	*Node
	Condition *Node
	Body      *Node
}

func (g *Graph) NewWhile(cond, body *Node) *WhileStatement {
	n := g.alloc(KindWhile)
	n.AddEdge(EdgeAST, cond, 0, nil)
	n.AddEdge(EdgeAST, body, 1, nil)
	return &WhileStatement{Node: n, Condition: cond, Body: body}
}

// ForStatement.
type ForStatement struct {
	*Node
	Init      *Node
	Condition *Node
	Update    *Node
	Body      *Node
}

func (g *Graph) NewFor(init, cond, update, body *Node) *ForStatement {
	n := g.alloc(KindFor)
	idx := 0
	for _, part := range []*Node{init, cond, update, body} {
		if part != nil {
			n.AddEdge(EdgeAST, part, idx, nil)
		}
		idx++
	}
	return &ForStatement{Node: n, Init: init, Condition: cond, Update: update, Body: body}
}

// ForEachStatement iterates Iterable binding each element to Variable.
type ForEachStatement struct {
	*Node
	Variable *Node
	Iterable *Node
	Body     *Node
}

func (g *Graph) NewForEach(variable, iterable, body *Node) *ForEachStatement {
	n := g.alloc(KindForEach)
	n.AddEdge(EdgeAST, variable, 0, nil)
	n.AddEdge(EdgeAST, iterable, 1, nil)
	n.AddEdge(EdgeAST, body, 2, nil)
	return &ForEachStatement{Node: n, Variable: variable, Iterable: iterable, Body: body}
}

// SwitchStatement.
type SwitchStatement struct {
	*Node
	Selector *Node
	Cases    []*Node // CaseStatement/DefaultStatement
}

func (g *Graph) NewSwitch(selector *Node) *SwitchStatement {
	n := g.alloc(KindSwitch)
	n.AddEdge(EdgeAST, selector, 0, nil)
	return &SwitchStatement{Node: n, Selector: selector}
}

func (s *SwitchStatement) AddCase(c *Node) {
	s.AddEdge(EdgeAST, c, len(s.Cases)+1, nil)
	s.Cases = append(s.Cases, c)
}

// CaseStatement.
type CaseStatement struct {
	*Node
	Value *Node
	Body  []*Node
}

func (g *Graph) NewCase(value *Node) *CaseStatement {
	n := g.alloc(KindCase)
	n.AddEdge(EdgeAST, value, 0, nil)
	return &CaseStatement{Node: n, Value: value}
}

func (c *CaseStatement) AddBodyStatement(s *Node) {
	c.AddEdge(EdgeAST, s, len(c.Body)+1, nil)
	c.Body = append(c.Body, s)
}

// DefaultStatement is a switch's default arm.
type DefaultStatement struct {
	*Node
	Body []*Node
}

func (g *Graph) NewDefault() *DefaultStatement {
	return &DefaultStatement{Node: g.alloc(KindDefault)}
}

func (d *DefaultStatement) AddBodyStatement(s *Node) {
	d.AddEdge(EdgeAST, s, len(d.Body), nil)
	d.Body = append(d.Body, s)
}

// ReturnStatement.
type ReturnStatement struct {
	*Node
	Value *Node // nil for a bare return
}

func (g *Graph) NewReturn(value *Node) *ReturnStatement {
	n := g.alloc(KindReturn)
	if value != nil {
		n.AddEdge(EdgeAST, value, 0, nil)
	}
	return &ReturnStatement{Node: n, Value: value}
}

// BreakStatement.
type BreakStatement struct{ *Node }

func (g *Graph) NewBreak() *BreakStatement { return &BreakStatement{g.alloc(KindBreak)} }

// ContinueStatement.
type ContinueStatement struct{ *Node }

func (g *Graph) NewContinue() *ContinueStatement { return &ContinueStatement{g.alloc(KindContinue)} }

// TryStatement.
type TryStatement struct {
	*Node
	Body     *Node
	Catches  []*Node
	Finally  *Node
}

func (g *Graph) NewTry(body *Node) *TryStatement {
	n := g.alloc(KindTry)
	n.AddEdge(EdgeAST, body, 0, nil)
	return &TryStatement{Node: n, Body: body}
}

func (t *TryStatement) AddCatch(c *Node) {
	t.AddEdge(EdgeAST, c, len(t.Catches)+1, nil)
	t.Catches = append(t.Catches, c)
}

func (t *TryStatement) SetFinally(f *Node) {
	t.Finally = f
	t.AddEdge(EdgeAST, f, -1, nil)
}

// CatchStatement binds Parameter (possibly nil for a catch-all) over Body.
type CatchStatement struct {
	*Node
	Parameter *Node
	Body      *Node
}

func (g *Graph) NewCatch(param, body *Node) *CatchStatement {
	n := g.alloc(KindCatch)
	if param != nil {
		n.AddEdge(EdgeAST, param, 0, nil)
	}
	n.AddEdge(EdgeAST, body, 1, nil)
	return &CatchStatement{Node: n, Parameter: param, Body: body}
}

// DeclarationStatement wraps one or more declarations appearing in
// statement position (e.g. `int x = 1, y = 2;`).
type DeclarationStatement struct {
	*Node
	Declarations []*Node
}

func (g *Graph) NewDeclarationStmt() *DeclarationStatement {
	return &DeclarationStatement{Node: g.alloc(KindDeclarationStmt)}
}

func (d *DeclarationStatement) AddDeclaration(decl *Node) {
	d.AddEdge(EdgeAST, decl, len(d.Declarations), nil)
	d.Declarations = append(d.Declarations, decl)
}

// ExpressionStatement wraps an expression evaluated for effect.
type ExpressionStatement struct {
	*Node
	Expression *Node
}

func (g *Graph) NewExpressionStmt(expr *Node) *ExpressionStatement {
	n := g.alloc(KindExpressionStmt)
	n.AddEdge(EdgeAST, expr, 0, nil)
	return &ExpressionStatement{Node: n, Expression: expr}
}
