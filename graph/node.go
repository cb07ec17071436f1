// Package graph implements the language-neutral node/edge model that every
// frontend builds into and every pass mutates: a closed set of tagged node
// variants sharing a common Node envelope, arena-allocated with stable
// integer identity, per the teacher's inspector/graph package (Type/File/
// Function/Field shapes) generalized from a single-language declaration
// graph into the full declaration/statement/expression/type node algebra.
package graph

import "github.com/cpgkit/cpg/scope"

// Kind tags every node with its closed-set variant. Kind replaces a deep
// virtual hierarchy, per the teacher's flat graph.Type/graph.Field/
// graph.Function sibling-struct style: one field discriminates the variant,
// shared state lives on Node, variant-specific state lives on the wrapping
// struct.
type Kind int

const (
	KindUnknown Kind = iota

	// Declarations
	KindTranslationUnit
	KindNamespace
	KindRecord
	KindFunction
	KindMethod
	KindConstructor
	KindField
	KindVariable
	KindParameter
	KindEnum
	KindTypedefDecl

	// Statements
	KindBlock
	KindIf
	KindWhile
	KindFor
	KindForEach
	KindSwitch
	KindCase
	KindDefault
	KindReturn
	KindBreak
	KindContinue
	KindTry
	KindCatch
	KindDeclarationStmt
	KindExpressionStmt

	// Expressions
	KindLiteral
	KindDeclaredReference
	KindMemberExpression
	KindCallExpression
	KindMemberCall
	KindNewExpression
	KindConstructExpression
	KindBinaryOperator
	KindUnaryOperator
	KindCast
	KindArraySubscript
	KindConditional
	KindInitializerList

	// Types
	KindObjectType
	KindPointerType
	KindReferenceType
	KindFunctionType
	KindIncompleteType
	KindUnknownType

	// Fallback for raw-AST node kinds a frontend's handler table has no
	// entry for.
	KindUnimplemented
)

func (k Kind) String() string {
	switch k {
	case KindTranslationUnit:
		return "TranslationUnit"
	case KindNamespace:
		return "Namespace"
	case KindRecord:
		return "Record"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindConstructor:
		return "Constructor"
	case KindField:
		return "Field"
	case KindVariable:
		return "Variable"
	case KindParameter:
		return "Parameter"
	case KindEnum:
		return "Enum"
	case KindTypedefDecl:
		return "TypedefDecl"
	case KindBlock:
		return "Block"
	case KindIf:
		return "If"
	case KindWhile:
		return "While"
	case KindFor:
		return "For"
	case KindForEach:
		return "ForEach"
	case KindSwitch:
		return "Switch"
	case KindCase:
		return "Case"
	case KindDefault:
		return "Default"
	case KindReturn:
		return "Return"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindTry:
		return "Try"
	case KindCatch:
		return "Catch"
	case KindDeclarationStmt:
		return "DeclarationStmt"
	case KindExpressionStmt:
		return "ExpressionStmt"
	case KindLiteral:
		return "Literal"
	case KindDeclaredReference:
		return "DeclaredReference"
	case KindMemberExpression:
		return "MemberExpression"
	case KindCallExpression:
		return "CallExpression"
	case KindMemberCall:
		return "MemberCall"
	case KindNewExpression:
		return "NewExpression"
	case KindConstructExpression:
		return "ConstructExpression"
	case KindBinaryOperator:
		return "BinaryOperator"
	case KindUnaryOperator:
		return "UnaryOperator"
	case KindCast:
		return "Cast"
	case KindArraySubscript:
		return "ArraySubscript"
	case KindConditional:
		return "Conditional"
	case KindInitializerList:
		return "InitializerList"
	case KindObjectType:
		return "ObjectType"
	case KindPointerType:
		return "PointerType"
	case KindReferenceType:
		return "ReferenceType"
	case KindFunctionType:
		return "FunctionType"
	case KindIncompleteType:
		return "IncompleteType"
	case KindUnknownType:
		return "UnknownType"
	case KindUnimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

// IsDeclaration reports whether k is one of the Declarations family.
func (k Kind) IsDeclaration() bool {
	return k >= KindTranslationUnit && k <= KindTypedefDecl
}

// IsStatement reports whether k is one of the Statements family.
func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindExpressionStmt
}

// IsExpression reports whether k is one of the Expressions family.
func (k Kind) IsExpression() bool {
	return k >= KindLiteral && k <= KindInitializerList
}

// IsType reports whether k is one of the Types family.
func (k Kind) IsType() bool {
	return k >= KindObjectType && k <= KindUnknownType
}

// Region is a 1-based, inclusive source range, per the physical-location
// tuple in the translation manager's downstream boundary.
type Region struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Location pairs a file URI with the Region within it.
type Location struct {
	FileURI string
	Region  Region
}

// EdgeLabel names the relationship an edge represents. Argument lists,
// statement sequences, and similar ordered collections use the Index field
// on Edge to recover order; EdgeLabel alone answers "what kind of edge".
type EdgeLabel string

const (
	EdgeAST        EdgeLabel = "ast"        // structural parent -> child
	EdgeRefersTo   EdgeLabel = "refersTo"   // DeclaredReference -> ValueDeclaration
	EdgeInvokes    EdgeLabel = "invokes"    // CallExpression/MemberCall -> FunctionDeclaration
	EdgeEOG        EdgeLabel = "eog"        // evaluation-order successor
	EdgeDFG        EdgeLabel = "dfg"        // data-flow predecessor -> consumer
	EdgeSuperClass EdgeLabel = "superClass" // Record -> Record (inheritance)
	EdgeType       EdgeLabel = "type"       // node -> its resolved Type node
)

// Edge is one (src, label, dst) relationship, with an optional Index for
// order-sensitive edge sets (argument position, statement sequence number)
// and an optional Property bag for secondary attributes such as branch
// outcome on EOG edges.
type Edge struct {
	Label    EdgeLabel
	Dst      *Node
	Index    int // -1 when the edge set is unordered
	Property map[string]string
}

// Node is the shared envelope every variant embeds. Identity is the
// allocator-assigned ID, never structural content: two syntactically
// identical literals parsed from the same text are still distinct nodes.
type Node struct {
	id   int
	kind Kind

	Name     string // possibly qualified
	Code     string // originating source substring
	Location Location
	Scope    *scope.Scope

	Comment    string // attached doc comment, if any
	Annotation string // e.g. a recognized "@Tag" convention in the comment

	// Implements holds a Record's unresolved superclass/interface name list
	// before TypeResolver runs. Kept on the shared envelope rather than on
	// RecordDeclaration alone so passes operating on a bare *Node (the only
	// handle the pipeline carries once parsing is done) can read it without
	// a variant-specific registry.
	Implements []string

	// IsVariadic marks a Function/Method/Constructor that accepts a trailing
	// variadic parameter (S2), kept on the shared envelope for the same
	// reason as Implements: CallResolver's arity check only ever holds a
	// bare *Node once parsing has finished.
	IsVariadic bool

	Unresolved    bool // set by resolution passes that found no target
	Unimplemented bool // true only for KindUnimplemented synthetic nodes

	out []Edge
	in  []*Node // nodes with an edge pointing at this one, for disconnect

	graph *Graph
}

// ID returns the node's stable allocator identity.
func (n *Node) ID() int { return n.id }

// Graph returns the Graph that allocated n, so passes holding only a bare
// *Node (e.g. a declaration reached via an edge) can still allocate new
// nodes in the same arena (typesys.Parse needs a *Graph to build Type nodes).
func (n *Node) Graph() *Graph { return n.graph }

// Kind returns the node's closed-set variant tag.
func (n *Node) Kind() Kind { return n.kind }

// DeclName implements scope.Declaration.
func (n *Node) DeclName() string { return n.Name }

// DeclKind implements scope.Declaration.
func (n *Node) DeclKind() string { return n.kind.String() }

// AddEdge appends an ordered or unordered edge from n to dst. Pass index -1
// for unordered edge sets (e.g. refersTo, invokes); pass the position for
// ordered sets (arguments, statement sequence).
func (n *Node) AddEdge(label EdgeLabel, dst *Node, index int, props map[string]string) {
	n.out = append(n.out, Edge{Label: label, Dst: dst, Index: index, Property: props})
	if dst != nil {
		dst.in = append(dst.in, n)
	}
}

// Edges returns every outgoing edge, in insertion order.
func (n *Node) Edges() []Edge {
	out := make([]Edge, len(n.out))
	copy(out, n.out)
	return out
}

// EdgesOf returns outgoing edges carrying label, in insertion order. For
// ordered edge sets the order reflects Index.
func (n *Node) EdgesOf(label EdgeLabel) []Edge {
	var out []Edge
	for _, e := range n.out {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// Targets returns the destination nodes of every edge carrying label.
func (n *Node) Targets(label EdgeLabel) []*Node {
	edges := n.EdgesOf(label)
	out := make([]*Node, len(edges))
	for i, e := range edges {
		out[i] = e.Dst
	}
	return out
}

// Incoming returns every node holding an edge that targets n.
func (n *Node) Incoming() []*Node {
	out := make([]*Node, len(n.in))
	copy(out, n.in)
	return out
}

// DisconnectFromGraph severs every incoming and outgoing edge on n but
// leaves n allocated, so references held elsewhere (e.g. a *Node a caller
// cached before a reparenting promotion ran) remain valid pointers to a
// now-isolated node. Per §4.1/§9, this is how "promote Function to Method"
// retires the old node without invalidating external references to it.
func (n *Node) DisconnectFromGraph() {
	for _, src := range n.in {
		src.out = removeEdgesTo(src.out, n)
	}
	for _, e := range n.out {
		if e.Dst != nil {
			e.Dst.in = removeNode(e.Dst.in, n)
		}
	}
	n.in = nil
	n.out = nil
}

func removeEdgesTo(edges []Edge, target *Node) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e.Dst != target {
			out = append(out, e)
		}
	}
	return out
}

func removeNode(nodes []*Node, target *Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
