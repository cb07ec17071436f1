package graph

// LiteralExpression holds a literal value's source text and its static type
// once assigned by a frontend or TypeResolver. Two literals with identical
// Value are still distinct nodes (§4.1, identity is allocation not content).
type LiteralExpression struct {
	*Node
	Value string
	Type  *Node
}

func (g *Graph) NewLiteral(value string) *LiteralExpression {
	n := g.alloc(KindLiteral)
	n.Code = value
	return &LiteralExpression{Node: n, Value: value}
}

// DeclaredReference holds an unresolved identifier until VariableUsageResolver
// fills RefersTo.
type DeclaredReference struct {
	*Node
	Identifier string
	RefersTo   []*Node // ValueDeclarations; non-empty iff resolved
}

func (g *Graph) NewDeclaredReference(identifier string) *DeclaredReference {
	n := g.alloc(KindDeclaredReference)
	n.Name = identifier
	return &DeclaredReference{Node: n, Identifier: identifier}
}

// ResolveTo fills RefersTo with the resolved targets and clears Unresolved.
func (r *DeclaredReference) ResolveTo(targets []*Node) {
	for i, t := range targets {
		r.AddEdge(EdgeRefersTo, t, i, nil)
	}
	r.RefersTo = append(r.RefersTo, targets...)
	r.Unresolved = len(r.RefersTo) == 0
}

// MemberExpression is base.Member (or base->Member): resolves the base's
// static/inferred type to a record, then looks up Member in that record.
type MemberExpression struct {
	*Node
	Base       *Node
	MemberName string
	RefersTo   *Node // resolved FieldDeclaration, once VariableUsageResolver runs
}

func (g *Graph) NewMemberExpression(base *Node, member string) *MemberExpression {
	n := g.alloc(KindMemberExpression)
	n.Name = member
	n.AddEdge(EdgeAST, base, 0, nil)
	return &MemberExpression{Node: n, Base: base, MemberName: member}
}

func (m *MemberExpression) ResolveTo(field *Node) {
	m.RefersTo = field
	m.AddEdge(EdgeRefersTo, field, -1, nil)
	m.Unresolved = false
}

// CallExpression holds an unresolved callee name plus ordered arguments;
// after CallResolver it additionally holds Invokes edges to every candidate
// callee.
type CallExpression struct {
	*Node
	Callee    string
	Arguments []*Node
	Invokes   []*Node // FunctionDeclaration/MethodDeclaration candidates
}

func (g *Graph) NewCallExpression(callee string) *CallExpression {
	n := g.alloc(KindCallExpression)
	n.Name = callee
	return &CallExpression{Node: n, Callee: callee}
}

func (c *CallExpression) AddArgument(arg *Node) {
	c.AddEdge(EdgeAST, arg, len(c.Arguments), nil)
	c.Arguments = append(c.Arguments, arg)
}

func (c *CallExpression) ResolveInvokes(targets []*Node) {
	for i, t := range targets {
		c.AddEdge(EdgeInvokes, t, i, nil)
	}
	c.Invokes = append(c.Invokes, targets...)
	c.Unresolved = len(c.Invokes) == 0
}

// MemberCall is base.Method(args): CallResolver restricts candidates to
// methods on the base's type or its super-classes.
type MemberCall struct {
	*Node
	Base       *Node
	MethodName string
	Arguments  []*Node
	Invokes    []*Node
}

func (g *Graph) NewMemberCall(base *Node, method string) *MemberCall {
	n := g.alloc(KindMemberCall)
	n.Name = method
	n.AddEdge(EdgeAST, base, 0, nil)
	return &MemberCall{Node: n, Base: base, MethodName: method}
}

func (mc *MemberCall) AddArgument(arg *Node) {
	mc.AddEdge(EdgeAST, arg, len(mc.Arguments)+1, nil)
	mc.Arguments = append(mc.Arguments, arg)
}

func (mc *MemberCall) ResolveInvokes(targets []*Node) {
	for i, t := range targets {
		mc.AddEdge(EdgeInvokes, t, i, nil)
	}
	mc.Invokes = append(mc.Invokes, targets...)
	mc.Unresolved = len(mc.Invokes) == 0
}

// NewExpression allocates heap storage of Type, optionally running an
// initializer (ConstructExpression).
type NewExpression struct {
	*Node
	Type        *Node
	Initializer *Node
}

func (g *Graph) NewNewExpression(typ *Node) *NewExpression {
	n := g.alloc(KindNewExpression)
	n.AddEdge(EdgeType, typ, -1, nil)
	return &NewExpression{Node: n, Type: typ}
}

// ConstructExpression invokes a RecordDeclaration's constructor.
type ConstructExpression struct {
	*Node
	Type      *Node
	Arguments []*Node
	Invokes   []*Node // resolved ConstructorDeclaration candidates
}

func (g *Graph) NewConstructExpression(typ *Node) *ConstructExpression {
	n := g.alloc(KindConstructExpression)
	n.AddEdge(EdgeType, typ, -1, nil)
	return &ConstructExpression{Node: n, Type: typ}
}

func (c *ConstructExpression) AddArgument(arg *Node) {
	c.AddEdge(EdgeAST, arg, len(c.Arguments), nil)
	c.Arguments = append(c.Arguments, arg)
}

// BinaryOperator.
type BinaryOperator struct {
	*Node
	Operator string
	LHS      *Node
	RHS      *Node
}

func (g *Graph) NewBinaryOperator(op string, lhs, rhs *Node) *BinaryOperator {
	n := g.alloc(KindBinaryOperator)
	n.Name = op
	n.AddEdge(EdgeAST, lhs, 0, nil)
	n.AddEdge(EdgeAST, rhs, 1, nil)
	return &BinaryOperator{Node: n, Operator: op, LHS: lhs, RHS: rhs}
}

// IsShortCircuit reports whether op requires the EOGPass split-successor
// treatment (§4.6).
func (b *BinaryOperator) IsShortCircuit() bool {
	return b.Operator == "&&" || b.Operator == "||"
}

// UnaryOperator.
type UnaryOperator struct {
	*Node
	Operator string
	Operand  *Node
	Postfix  bool
}

func (g *Graph) NewUnaryOperator(op string, operand *Node, postfix bool) *UnaryOperator {
	n := g.alloc(KindUnaryOperator)
	n.Name = op
	n.AddEdge(EdgeAST, operand, 0, nil)
	return &UnaryOperator{Node: n, Operator: op, Operand: operand, Postfix: postfix}
}

// Cast.
type Cast struct {
	*Node
	Type   *Node
	Target *Node
}

func (g *Graph) NewCast(typ, target *Node) *Cast {
	n := g.alloc(KindCast)
	n.AddEdge(EdgeType, typ, -1, nil)
	n.AddEdge(EdgeAST, target, 0, nil)
	return &Cast{Node: n, Type: typ, Target: target}
}

// ArraySubscript.
type ArraySubscript struct {
	*Node
	Base  *Node
	Index *Node
}

func (g *Graph) NewArraySubscript(base, index *Node) *ArraySubscript {
	n := g.alloc(KindArraySubscript)
	n.AddEdge(EdgeAST, base, 0, nil)
	n.AddEdge(EdgeAST, index, 1, nil)
	return &ArraySubscript{Node: n, Base: base, Index: index}
}

// Conditional is the ternary `cond ? then : els`.
type Conditional struct {
	*Node
	Condition *Node
	Then      *Node
	Else      *Node
}

func (g *Graph) NewConditional(cond, then, els *Node) *Conditional {
	n := g.alloc(KindConditional)
	n.AddEdge(EdgeAST, cond, 0, nil)
	n.AddEdge(EdgeAST, then, 1, nil)
	n.AddEdge(EdgeAST, els, 2, nil)
	return &Conditional{Node: n, Condition: cond, Then: then, Else: els}
}

// InitializerList is a brace-enclosed list of element initializers.
type InitializerList struct {
	*Node
	Elements []*Node
}

func (g *Graph) NewInitializerList() *InitializerList {
	return &InitializerList{Node: g.alloc(KindInitializerList)}
}

func (il *InitializerList) AddElement(e *Node) {
	il.AddEdge(EdgeAST, e, len(il.Elements), nil)
	il.Elements = append(il.Elements, e)
}
