// Package frontend defines the abstract contract a language frontend
// implements (§4.4) and the reparenting helpers shared by every concrete
// frontend: promoting a parsed Function to a Method or Constructor, and a
// Variable to a Field, when the enclosing context demands it.
package frontend

import (
	"context"

	"github.com/cpgkit/cpg/graph"
)

// Frontend is the contract a language adapter implements: parse a file into
// a TranslationUnitDeclaration, or fail with an error. The translation
// manager records that error on its report exactly as returned, so a
// frontend reports a failed parse as a *cpgerr.ParseFailure and a failed
// walk as a *cpgerr.TranslationException itself.
type Frontend interface {
	// Parse reads path, parses it with the frontend's native parser, and
	// walks the raw AST into a CPG subtree.
	Parse(ctx context.Context, g *graph.Graph, path string, src []byte) (*graph.TranslationUnitDeclaration, error)

	// NamespaceDelimiter returns this language's qualifier separator
	// ("::", ".", "/"), the delimiter Scope.QualifiedPrefix takes.
	NamespaceDelimiter() string
}

// CommentAttacher associates a preceding doc comment with the node it
// immediately precedes, based on source-range adjacency: a comment is
// attached when no non-whitespace, non-comment text separates its end line
// from the node's start line. Generalizes the teacher's go/ast-based
// comment association (inspector/golang/inspector.go) and the sibling-walk
// idiom in inspector/java/inspector.go's findImportNodes to tree-sitter
// frontends, which have no ast.CommentMap equivalent.
type CommentAttacher struct {
	// PendingLine is the line on which the last seen comment ended, and
	// PendingText is its text; both reset after a successful attach or
	// after a node that wasn't immediately adjacent is seen.
	PendingLine int
	PendingText string
}

// Observe records a comment ending at endLine with the given text (sans
// comment-syntax delimiters), replacing any previously pending comment that
// was never attached (blank-line separated comments don't carry forward).
func (c *CommentAttacher) Observe(endLine int, text string) {
	c.PendingLine = endLine
	c.PendingText = text
}

// Attach assigns the pending comment to node if node starts on the line
// immediately after the pending comment ended (adjacency, no blank line
// between). Returns whether it attached anything; clears the pending
// comment either way, since a comment attaches to at most one node.
func (c *CommentAttacher) Attach(node *graph.Node, nodeStartLine int) bool {
	defer func() { c.PendingLine = 0; c.PendingText = "" }()
	if c.PendingText == "" {
		return false
	}
	if nodeStartLine == c.PendingLine+1 {
		node.Comment = c.PendingText
		return true
	}
	return false
}

// PromoteToMethod reparents a parsed FunctionDeclaration into a
// MethodDeclaration owned by record, per the critical reparenting rule in
// §4.4: a fresh node of the target variant is allocated carrying the same
// attributes, incoming edges are rewritten to the new node, and the old one
// is disconnected and retired — matching the §9 design note that this is
// cleaner than mutating a node's tag in place.
func PromoteToMethod(g *graph.Graph, fn *graph.FunctionDeclaration, record *graph.RecordDeclaration) *graph.MethodDeclaration {
	method := g.NewMethod(fn.Name, record)
	copyFunctionShape(fn, method.FunctionDeclaration)
	rewireIncoming(fn.Node, method.Node)
	fn.DisconnectFromGraph()
	record.AddMethod(method.Node)
	return method
}

// PromoteToConstructor reparents a MethodDeclaration whose name equals its
// record's name into a ConstructorDeclaration, given the record's type and
// placed in its constructors list, per §4.4. The retired method is dropped
// from the record's Methods list.
func PromoteToConstructor(g *graph.Graph, method *graph.MethodDeclaration) *graph.ConstructorDeclaration {
	ctor := g.NewConstructor(method.Record)
	copyFunctionShape(method.FunctionDeclaration, ctor.FunctionDeclaration)
	rewireIncoming(method.Node, ctor.Node)
	method.DisconnectFromGraph()
	kept := method.Record.Methods[:0]
	for _, m := range method.Record.Methods {
		if m != method.Node {
			kept = append(kept, m)
		}
	}
	method.Record.Methods = kept
	method.Record.AddConstructor(ctor.Node)
	return ctor
}

// SynthesizeDefaultConstructor allocates a ConstructorDeclaration with an
// empty parameter list and an empty body, used when a record's reparenting
// pass found no user-declared constructor (per §4.4 and scenario S3).
func SynthesizeDefaultConstructor(g *graph.Graph, record *graph.RecordDeclaration) *graph.ConstructorDeclaration {
	ctor := g.NewConstructor(record)
	ctor.SetBody(g.NewBlock().Node)
	record.AddConstructor(ctor.Node)
	return ctor
}

// PromoteToField reparents a VariableDeclaration declared in record scope
// into a FieldDeclaration, per §4.4's "Variables declared in record scope
// are promoted to FieldDeclaration."
func PromoteToField(g *graph.Graph, v *graph.VariableDeclaration, record *graph.RecordDeclaration) *graph.FieldDeclaration {
	field := g.NewField(v.Name)
	field.SetType(v.Type)
	field.Default = v.Initial
	field.Comment = v.Comment
	field.Annotation = v.Annotation
	field.Location = v.Location
	field.Code = v.Code
	rewireIncoming(v.Node, field.Node)
	v.DisconnectFromGraph()
	record.AddField(field.Node)
	return field
}

func copyFunctionShape(src, dst *graph.FunctionDeclaration) {
	dst.Comment = src.Comment
	dst.Annotation = src.Annotation
	dst.Location = src.Location
	dst.Code = src.Code
	if src.ReturnType != nil {
		dst.SetReturnType(src.ReturnType)
	}
	dst.IsVariadic = src.IsVariadic
	for _, p := range src.Parameters {
		dst.AddParameter(p)
	}
	if src.Body != nil {
		dst.SetBody(src.Body)
	}
}

// rewireIncoming redirects every edge that pointed at old so it now points
// at replacement, preserving label/index/property, without disturbing old's
// own outgoing edges (the caller retires those via DisconnectFromGraph
// after copying the attributes it needs).
func rewireIncoming(old, replacement *graph.Node) {
	for _, src := range old.Incoming() {
		for _, e := range src.Edges() {
			if e.Dst == old {
				src.AddEdge(e.Label, replacement, e.Index, e.Property)
			}
		}
	}
}
