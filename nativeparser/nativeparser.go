// Package nativeparser adapts github.com/smacker/go-tree-sitter into the
// native-parser boundary described in §6: parseString, childrenOf, kindOf,
// textOf, rangeOf, freeTree. Grounded directly on the teacher's
// inspector/golang/inspector_tree_sitter.go (sitter.NewParser +
// parser.SetLanguage + parser.ParseCtx + Node.Content/StartByte/EndByte/
// ChildByFieldName), the only teacher file that already uses this library
// for a full-file parse rather than line-oriented scanning.
package nativeparser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// Family names the tree-sitter grammar family a Tree was parsed with.
type Family string

const (
	CFamily Family = "cfamily"
	GoLike  Family = "golike"
	PyLike  Family = "pylike"
)

func languageFor(family Family, ext string) *sitter.Language {
	switch family {
	case CFamily:
		if ext == ".c" || ext == ".h" {
			return c.GetLanguage()
		}
		return cpp.GetLanguage()
	case PyLike:
		return python.GetLanguage()
	default:
		return golang.GetLanguage()
	}
}

// Tree wraps a parsed *sitter.Tree plus the source bytes it was parsed from,
// since every text/range accessor on a *sitter.Node needs the original
// bytes alongside the node handle.
type Tree struct {
	src  []byte
	tree *sitter.Tree
}

// ParseString parses text as family/ext and returns the resulting Tree.
// Handle lifetime is bounded by the caller's use of the returned Tree;
// FreeTree releases native resources early if the caller wants to.
func ParseString(ctx context.Context, family Family, ext string, text []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(family, ext))

	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", family, err)
	}
	return &Tree{src: text, tree: tree}, nil
}

// RootNode returns the tree's root handle.
func (t *Tree) RootNode() *sitter.Node {
	return t.tree.RootNode()
}

// FreeTree releases the underlying tree-sitter tree. Safe to call more than
// once; a nil receiver is a no-op.
func (t *Tree) FreeTree() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}

// ChildrenOf returns every named child of handle, in source order — raw-AST
// child access the frontend handlers recurse through.
func ChildrenOf(handle *sitter.Node) []*sitter.Node {
	if handle == nil {
		return nil
	}
	count := int(handle.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, handle.NamedChild(i))
	}
	return out
}

// FieldChild returns handle's child registered under the grammar's named
// field (e.g. "name", "type", "body"), or nil.
func FieldChild(handle *sitter.Node, field string) *sitter.Node {
	if handle == nil {
		return nil
	}
	return handle.ChildByFieldName(field)
}

// KindOf returns the raw-AST node's type tag — the key every frontend's
// Handler dispatch map switches on.
func KindOf(handle *sitter.Node) string {
	if handle == nil {
		return ""
	}
	return handle.Type()
}

// TextOf returns handle's originating source substring.
func (t *Tree) TextOf(handle *sitter.Node) string {
	if handle == nil {
		return ""
	}
	return handle.Content(t.src)
}

// RangeOf returns handle's 1-based, inclusive source region.
func (t *Tree) RangeOf(handle *sitter.Node) (startLine, startCol, endLine, endCol int) {
	if handle == nil {
		return 0, 0, 0, 0
	}
	start := handle.StartPoint()
	end := handle.EndPoint()
	// tree-sitter points are 0-based; the downstream boundary (§6) wants
	// 1-based inclusive coordinates.
	return int(start.Row) + 1, int(start.Column) + 1, int(end.Row) + 1, int(end.Column)
}
