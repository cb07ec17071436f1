package graph

// Graph is the arena allocator backing one build: every Node is allocated
// through a Graph and keeps a stable integer ID for its lifetime, per the
// "arena allocator with stable indices" design in §9. Disconnect-and-survive
// is trivially correct because nodes are never freed individually, only
// unlinked.
type Graph struct {
	nodes []*Node
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{}
}

func (g *Graph) alloc(kind Kind) *Node {
	n := &Node{
		id:    len(g.nodes),
		kind:  kind,
		graph: g,
	}
	g.nodes = append(g.nodes, n)
	return n
}

// AllNodes returns every node allocated in this graph, in allocation order.
func (g *Graph) AllNodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// NodesOfKind returns every allocated node with the given Kind, in
// allocation order. Used by the passes to visit every node of one variant.
func (g *Graph) NodesOfKind(kind Kind) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// NodeByID returns the node with the given allocator ID, or nil if out of
// range. IDs are dense and start at 0, so this is an O(1) slice index.
func (g *Graph) NodeByID(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Clone deep-copies the graph: every node is re-allocated with the same
// field values and every edge is rebuilt between the corresponding clones.
// Lets a caller snapshot the graph before a second pipeline run and compare
// EdgeSetSignature against the result after.
func (g *Graph) Clone() *Graph {
	clone := New()
	mapping := make(map[*Node]*Node, len(g.nodes))

	for _, n := range g.nodes {
		cn := clone.alloc(n.kind)
		cn.Name = n.Name
		cn.Code = n.Code
		cn.Location = n.Location
		cn.Scope = n.Scope
		cn.Comment = n.Comment
		cn.Annotation = n.Annotation
		cn.Unresolved = n.Unresolved
		cn.Unimplemented = n.Unimplemented
		cn.IsVariadic = n.IsVariadic
		if n.Implements != nil {
			cn.Implements = append([]string(nil), n.Implements...)
		}
		mapping[n] = cn
	}
	for _, n := range g.nodes {
		cn := mapping[n]
		for _, e := range n.out {
			var dst *Node
			if e.Dst != nil {
				dst = mapping[e.Dst]
			}
			cn.AddEdge(e.Label, dst, e.Index, e.Property)
		}
	}
	return clone
}

// Merge adopts every node allocated in other into g, re-stamping each
// node's id and graph to belong to g's arena. Used by the translation
// manager to fold each file's independently-parsed graph (built by a
// per-file frontend instance, per §5's "no shared mutable state across
// concurrent frontends") into the single shared graph the pass pipeline
// then runs over. other is left with its nodes reassigned and should not be
// used afterward.
func (g *Graph) Merge(other *Graph) {
	for _, n := range other.nodes {
		n.id = len(g.nodes)
		n.graph = g
		g.nodes = append(g.nodes, n)
	}
	other.nodes = nil
}

// EdgeSetSignature returns a comparable summary of every edge in the graph
// (src id, label, dst id, index), suitable for an idempotence equality
// check without relying on pointer identity across Clone boundaries.
func (g *Graph) EdgeSetSignature() []EdgeSig {
	var out []EdgeSig
	for _, n := range g.nodes {
		for _, e := range n.out {
			dstID := -1
			if e.Dst != nil {
				dstID = e.Dst.id
			}
			out = append(out, EdgeSig{SrcID: n.id, Label: e.Label, DstID: dstID, Index: e.Index})
		}
	}
	return out
}

// EdgeSig is a value-comparable projection of an Edge, independent of any
// particular Graph instance's pointers.
type EdgeSig struct {
	SrcID int
	Label EdgeLabel
	DstID int
	Index int
}
