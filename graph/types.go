package graph

// ObjectType names a nominal type by text (`int`, `std::string`, `Widget`);
// once TypeResolver finds a matching RecordDeclaration it sets Record.
type ObjectType struct {
	*Node
	Record       *Node // resolved RecordDeclaration, nil until TypeResolver runs
	Qualifiers   []string
	SuperClasses []string // propagated text form, pre-resolution
}

func (g *Graph) NewObjectType(name string) *ObjectType {
	n := g.alloc(KindObjectType)
	n.Name = name
	return &ObjectType{Node: n}
}

// PointerType wraps Pointee with one level of pointer indirection.
type PointerType struct {
	*Node
	Pointee *Node
}

func (g *Graph) NewPointerType(pointee *Node) *PointerType {
	n := g.alloc(KindPointerType)
	n.AddEdge(EdgeType, pointee, -1, nil)
	return &PointerType{Node: n, Pointee: pointee}
}

// ReferenceType wraps Referent with one level of reference indirection.
type ReferenceType struct {
	*Node
	Referent *Node
}

func (g *Graph) NewReferenceType(referent *Node) *ReferenceType {
	n := g.alloc(KindReferenceType)
	n.AddEdge(EdgeType, referent, -1, nil)
	return &ReferenceType{Node: n, Referent: referent}
}

// ArrayType wraps Element with a fixed or unknown length N (-1 if unknown).
// Modeled as a PointerType-shaped wrapper per §4.2's "postfix modifiers
// produce a stack of *, &, and [N] wrappers"; kept distinct so
// ParsedType.String() can round-trip the original bracket form.
type ArrayType struct {
	*Node
	Element *Node
	Length  int
}

func (g *Graph) NewArrayType(element *Node, length int) *ArrayType {
	n := g.alloc(KindPointerType) // arrays decay to pointer-family for type compatibility purposes
	n.Name = "[]"
	n.AddEdge(EdgeType, element, -1, nil)
	return &ArrayType{Node: n, Element: element, Length: length}
}

// FunctionType models a function-pointer shape `(*name)(args)`, recognized
// structurally per §4.2.
type FunctionType struct {
	*Node
	Return     *Node
	Parameters []*Node
	Variadic   bool
}

func (g *Graph) NewFunctionType(ret *Node) *FunctionType {
	n := g.alloc(KindFunctionType)
	if ret != nil {
		n.AddEdge(EdgeType, ret, -1, nil)
	}
	return &FunctionType{Node: n, Return: ret}
}

func (f *FunctionType) AddParameter(p *Node) {
	f.AddEdge(EdgeAST, p, len(f.Parameters), nil)
	f.Parameters = append(f.Parameters, p)
}

// IncompleteType stands for a declared-but-not-yet-defined record (a forward
// declaration).
type IncompleteType struct {
	*Node
}

func (g *Graph) NewIncompleteType(name string) *IncompleteType {
	n := g.alloc(KindIncompleteType)
	n.Name = name
	return &IncompleteType{Node: n}
}

// UnknownType stands for text that could not be parsed as a type at all.
type UnknownType struct {
	*Node
}

func (g *Graph) NewUnknownType(text string) *UnknownType {
	n := g.alloc(KindUnknownType)
	n.Code = text
	return &UnknownType{Node: n}
}

// NewUnimplemented allocates the synthetic fallback node a handler produces
// for a raw-AST node variant its dispatch table has no entry for. The raw
// source text is preserved on Code; the build continues rather than failing
// (§4.4).
func (g *Graph) NewUnimplemented(rawKind, sourceText string) *Node {
	n := g.alloc(KindUnimplemented)
	n.Name = rawKind
	n.Code = sourceText
	n.Unimplemented = true
	return n
}
