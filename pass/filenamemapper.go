package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// FilenameMapper stamps each declaration with its originating file URI,
// per §4.6 item 1. It runs first because every later pass's diagnostics
// reference a file.
type FilenameMapper struct{}

func (FilenameMapper) Name() string    { return "FilenameMapper" }
func (FilenameMapper) Monotonic() bool { return true }

func (FilenameMapper) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	for _, u := range units {
		uri := u.Name
		stampSubtree(u.Node, uri)
	}
	return nil
}

func stampSubtree(n *graph.Node, uri string) {
	if n.Location.FileURI == "" {
		n.Location.FileURI = uri
	}
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil {
			stampSubtree(e.Dst, uri)
		}
	}
}
