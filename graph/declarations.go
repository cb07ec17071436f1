package graph

// TranslationUnitDeclaration is the root node produced for a single input
// file. Its ordered AST children are the top-level declarations.
type TranslationUnitDeclaration struct {
	*Node
	Declarations []*Node // ordered top-level declarations
}

// NewTranslationUnit allocates a TranslationUnitDeclaration.
func (g *Graph) NewTranslationUnit(name string) *TranslationUnitDeclaration {
	n := g.alloc(KindTranslationUnit)
	n.Name = name
	return &TranslationUnitDeclaration{Node: n}
}

// AddDeclaration appends a top-level declaration and links it with an AST
// edge, preserving declaration order.
func (t *TranslationUnitDeclaration) AddDeclaration(d *Node) {
	t.AddEdge(EdgeAST, d, len(t.Declarations), nil)
	t.Declarations = append(t.Declarations, d)
}

// NamespaceDeclaration groups records/functions/nested namespaces under a
// qualified name. ImportResolver/NamespaceResolver merges same-named
// namespace nodes across units.
type NamespaceDeclaration struct {
	*Node
	Members []*Node
}

func (g *Graph) NewNamespace(name string) *NamespaceDeclaration {
	n := g.alloc(KindNamespace)
	n.Name = name
	return &NamespaceDeclaration{Node: n}
}

func (ns *NamespaceDeclaration) AddMember(m *Node) {
	ns.AddEdge(EdgeAST, m, len(ns.Members), nil)
	ns.Members = append(ns.Members, m)
}

// RecordDeclaration models struct/union/class. Owns fields, methods,
// constructors, and nested records (spec §3, "Records own their fields,
// methods, constructors, and nested records").
type RecordDeclaration struct {
	*Node
	RecordKind     string // "struct", "union", "class"
	Fields         []*Node
	Methods        []*Node
	Constructors   []*Node
	NestedRecords  []*Node
	TypeParameters []*Node // ParsedType placeholders; inert metadata
}

func (g *Graph) NewRecord(name, recordKind string) *RecordDeclaration {
	n := g.alloc(KindRecord)
	n.Name = name
	return &RecordDeclaration{Node: n, RecordKind: recordKind}
}

func (r *RecordDeclaration) AddField(f *Node) {
	r.AddEdge(EdgeAST, f, len(r.Fields), nil)
	r.Fields = append(r.Fields, f)
}

func (r *RecordDeclaration) AddMethod(m *Node) {
	r.AddEdge(EdgeAST, m, len(r.Methods), nil)
	r.Methods = append(r.Methods, m)
}

func (r *RecordDeclaration) AddConstructor(c *Node) {
	r.AddEdge(EdgeAST, c, len(r.Constructors), nil)
	r.Constructors = append(r.Constructors, c)
}

func (r *RecordDeclaration) AddNestedRecord(nr *Node) {
	r.AddEdge(EdgeAST, nr, len(r.NestedRecords), nil)
	r.NestedRecords = append(r.NestedRecords, nr)
}

// FunctionDeclaration owns an ordered parameter list and a body statement.
type FunctionDeclaration struct {
	*Node
	Parameters     []*Node
	Body           *Node
	ReturnType     *Node // a Types-family node, set by the frontend
	TypeParameters []*Node
}

func (g *Graph) NewFunction(name string) *FunctionDeclaration {
	n := g.alloc(KindFunction)
	n.Name = name
	return &FunctionDeclaration{Node: n}
}

func (f *FunctionDeclaration) AddParameter(p *Node) {
	f.AddEdge(EdgeAST, p, len(f.Parameters), nil)
	f.Parameters = append(f.Parameters, p)
}

func (f *FunctionDeclaration) SetBody(b *Node) {
	f.Body = b
	f.AddEdge(EdgeAST, b, -1, nil)
}

// SetReturnType records ret both on the wrapper and as an EdgeType edge, so
// passes operating on the bare *Node (the only handle they carry once
// parsing has finished) can still reach it.
func (f *FunctionDeclaration) SetReturnType(ret *Node) {
	f.ReturnType = ret
	f.AddEdge(EdgeType, ret, -1, nil)
}

// Arity returns len(Parameters). The cfamily frontend records a `...` tail
// only through IsVariadic; a frontend that adds its variadic parameter to
// Parameters (golike) has that parameter counted here too.
func (f *FunctionDeclaration) Arity() int { return len(f.Parameters) }

// MethodDeclaration is a FunctionDeclaration promoted into a record's
// member list by the reparenting rule (§4.4).
type MethodDeclaration struct {
	*FunctionDeclaration
	Record *RecordDeclaration
}

func (g *Graph) NewMethod(name string, owner *RecordDeclaration) *MethodDeclaration {
	n := g.alloc(KindMethod)
	n.Name = name
	fd := &FunctionDeclaration{Node: n}
	return &MethodDeclaration{FunctionDeclaration: fd, Record: owner}
}

// ConstructorDeclaration is a MethodDeclaration whose name equals its
// record's name, further promoted per the reparenting rule.
type ConstructorDeclaration struct {
	*FunctionDeclaration
	Record *RecordDeclaration
}

func (g *Graph) NewConstructor(owner *RecordDeclaration) *ConstructorDeclaration {
	n := g.alloc(KindConstructor)
	n.Name = owner.Name
	fd := &FunctionDeclaration{Node: n}
	return &ConstructorDeclaration{FunctionDeclaration: fd, Record: owner}
}

// FieldDeclaration is a Variable promoted into record scope (§4.4) or
// declared directly as a field by a frontend.
type FieldDeclaration struct {
	*Node
	Type    *Node
	Default *Node // initializer expression, if any
}

func (g *Graph) NewField(name string) *FieldDeclaration {
	n := g.alloc(KindField)
	n.Name = name
	return &FieldDeclaration{Node: n}
}

// SetType records typ both on the wrapper and as an EdgeType edge.
func (f *FieldDeclaration) SetType(typ *Node) {
	f.Type = typ
	f.AddEdge(EdgeType, typ, -1, nil)
}

// VariableDeclaration is a local, global, or block-scoped variable.
type VariableDeclaration struct {
	*Node
	Type    *Node
	Initial *Node
}

func (g *Graph) NewVariable(name string) *VariableDeclaration {
	n := g.alloc(KindVariable)
	n.Name = name
	return &VariableDeclaration{Node: n}
}

func (v *VariableDeclaration) SetInitial(expr *Node) {
	v.Initial = expr
	v.AddEdge(EdgeAST, expr, -1, nil)
}

// SetType records typ both on the wrapper and as an EdgeType edge.
func (v *VariableDeclaration) SetType(typ *Node) {
	v.Type = typ
	v.AddEdge(EdgeType, typ, -1, nil)
}

// ParameterDeclaration is a function/method formal parameter.
type ParameterDeclaration struct {
	*Node
	Type     *Node
	Variadic bool // synthetic variadic marker, per S2
}

func (g *Graph) NewParameter(name string) *ParameterDeclaration {
	n := g.alloc(KindParameter)
	n.Name = name
	return &ParameterDeclaration{Node: n}
}

// SetType records typ both on the wrapper and as an EdgeType edge.
func (p *ParameterDeclaration) SetType(typ *Node) {
	p.Type = typ
	p.AddEdge(EdgeType, typ, -1, nil)
}

// EnumDeclaration owns an ordered list of enumerator constants.
type EnumDeclaration struct {
	*Node
	Constants []*Node
}

func (g *Graph) NewEnum(name string) *EnumDeclaration {
	n := g.alloc(KindEnum)
	n.Name = name
	return &EnumDeclaration{Node: n}
}

func (e *EnumDeclaration) AddConstant(c *Node) {
	e.AddEdge(EdgeAST, c, len(e.Constants), nil)
	e.Constants = append(e.Constants, c)
}

// TypedefDeclaration aliases Name to Target.
type TypedefDeclaration struct {
	*Node
	Target *Node
}

func (g *Graph) NewTypedef(name string, target *Node) *TypedefDeclaration {
	n := g.alloc(KindTypedefDecl)
	n.Name = name
	td := &TypedefDeclaration{Node: n, Target: target}
	n.AddEdge(EdgeType, target, -1, nil)
	return td
}
