package sema

import (
	"github.com/dekarrin/gizzard/internal/fe/faults"
)

// GraphNode is one node of the semantic graph: an optional resolved type
// and a visited flag. Nodes live in the graph's arena and refer to each
// other by index through the adjacency lists.
type GraphNode struct {
	Index   int
	Type    *Type
	Visited bool
}

// Graph is the constraint graph over expression nodes. Edges run from a
// node to the nodes whose values it must accept; solving the graph assigns
// every node the least upper bound of its children along the hierarchy.
type Graph struct {
	ctx   *Context
	adj   [][]int
	nodes []*GraphNode

	// Error absorbs every type it meets; Vector marks a node whose element
	// type is still being collected. Both are graph-local markers, never
	// registered in the context.
	Error  *Type
	Vector *Type
}

// NewGraph returns an empty graph over ctx.
func NewGraph(ctx *Context) *Graph {
	return &Graph{
		ctx:    ctx,
		Error:  &Type{Name: "Error"},
		Vector: &Type{Name: "Vector"},
	}
}

// AddNode appends a node with the given (possibly nil) declared type.
func (g *Graph) AddNode(t *Type) *GraphNode {
	n := &GraphNode{Index: len(g.nodes), Type: t}
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return n
}

// AddPath adds the edge parent -> child ("parent must accept child's
// value") and returns parent. A parent already solved is unsolved again so
// the new constraint is seen.
func (g *Graph) AddPath(parent, child *GraphNode) *GraphNode {
	g.adj[parent.Index] = append(g.adj[parent.Index], child.Index)
	if parent.Visited {
		parent.Visited = false
	}
	return parent
}

func (g *Graph) children(n *GraphNode) []*GraphNode {
	out := make([]*GraphNode, len(g.adj[n.Index]))
	for i, idx := range g.adj[n.Index] {
		out[i] = g.nodes[idx]
	}
	return out
}

// lub is the lowest common ancestor of a and b along the combined
// class+protocol hierarchy, bottoming at Object and saturating at Error.
// nil (unknown) is the identity.
func (g *Graph) lub(a, b *Type) *Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a == g.Error || b == g.Error {
		return g.Error
	}
	if a.Name == b.Name {
		return a
	}
	if a.IsProtocol && b.ConformsTo(a) {
		return a
	}
	if b.IsProtocol && a.ConformsTo(b) {
		return b
	}

	inAChain := map[string]bool{}
	for c := a; c != nil; c = c.Parent {
		inAChain[c.Name] = true
	}
	for c := b; c != nil; c = c.Parent {
		if inAChain[c.Name] {
			return c
		}
	}
	return g.ctx.Object()
}

// dfs is the single-sink propagation pass: it computes n's type from its
// children, pushing a known type down onto unknown children and checking
// conformance of known ones. It returns the (possibly Error) resolved type.
func (g *Graph) dfs(n *GraphNode) *Type {
	n.Visited = true

	children := g.children(n)
	if len(children) == 0 {
		if n.Type == g.Vector {
			n.Type = g.ctx.VectorOf(g.ctx.Object())
		}
		return n.Type
	}

	childType := func() *Type {
		var acc *Type
		for _, child := range children {
			if !child.Visited {
				g.dfs(child)
			}
			acc = g.lub(acc, child.Type)
		}
		return acc
	}

	switch {
	case n.Type == nil:
		n.Type = childType()

	case n.Type == g.Vector:
		q := childType()
		if q == nil {
			q = g.ctx.Object()
		}
		if q == g.Error || q.IsVector() {
			n.Type = g.Error
		} else {
			n.Type = g.ctx.VectorOf(q)
		}

	default:
		for _, child := range children {
			if !child.Visited {
				g.dfs(child)
			}
			if child.Type == nil {
				child.Type = n.Type
				continue
			}
			if child.Type == g.Error || !child.Type.ConformsTo(n.Type) {
				n.Type = g.Error
				break
			}
		}
	}

	return n.Type
}

// LocalInference resolves just the subgraph under n, so an expression used
// as a receiver can be typed before the surrounding expression is
// finalized.
func (g *Graph) LocalInference(n *GraphNode) (*Type, error) {
	if n.Visited {
		if n.Type == nil || n.Type == g.Error {
			return nil, faults.New(faults.InconsistentInference, 0, 0, "Incorrect type declaration.")
		}
		return n.Type, nil
	}
	t := g.dfs(n)
	if t == nil || t == g.Error {
		return nil, faults.New(faults.InconsistentInference, 0, 0, "Incorrect type declaration.")
	}
	return t, nil
}

// TypeInference solves the whole graph: first every strongly-connected
// component is checked for type consistency (all known types within one
// component must agree), then every unsolved node is resolved in index
// order by dfs.
func (g *Graph) TypeInference() error {
	ccList := g.components()

	ccTypes := map[int]*Type{}
	for i, n := range g.nodes {
		if n.Type == nil {
			continue
		}
		cc := ccList[i]
		if existing, ok := ccTypes[cc]; ok {
			if existing.Name != n.Type.Name {
				return faults.New(faults.InconsistentInference, 0, 0, "Incorrect type declaration.")
			}
			continue
		}
		ccTypes[cc] = n.Type
	}

	for _, n := range g.nodes {
		if n.Visited {
			continue
		}
		if t := g.dfs(n); t == nil || t == g.Error {
			return faults.New(faults.InconsistentInference, 0, 0, "Incorrect type declaration.")
		}
	}
	return nil
}

// components labels every node with its strongly-connected component via
// the two-pass depth-first search over the graph and its transpose.
func (g *Graph) components() []int {
	n := len(g.adj)

	transposed := make([][]int, n)
	for i := range g.adj {
		for _, j := range g.adj[i] {
			transposed[j] = append(transposed[j], i)
		}
	}

	mask := make([]bool, n)
	order := make([]int, 0, n)

	var visit func(v int, adj [][]int, cc int, ccList []int)
	visit = func(v int, adj [][]int, cc int, ccList []int) {
		mask[v] = true
		for _, w := range adj[v] {
			if !mask[w] {
				visit(w, adj, cc, ccList)
			}
		}
		if cc == -1 {
			order = append(order, v)
		} else {
			ccList[v] = cc
		}
	}

	ccList := make([]int, n)
	for i := range ccList {
		ccList[i] = -1
	}

	for i := 0; i < n; i++ {
		if !mask[i] {
			visit(i, g.adj, -1, ccList)
		}
	}

	mask = make([]bool, n)
	cc := 0
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		if !mask[v] {
			visit(v, transposed, cc, ccList)
			cc++
		}
	}

	return ccList
}
