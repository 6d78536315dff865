package content

import "golang.org/x/net/html"

// Arena allocates nodes and resolves them by id.
//
// Arena is not safe for concurrent use; it is owned by a single document
// and mutated on the editor's event loop.
type Arena struct {
	next  NodeID
	nodes map[NodeID]*Node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make(map[NodeID]*Node)}
}

func (a *Arena) alloc() NodeID {
	a.next++
	return a.next
}

// NewText allocates a text run.
func (a *Arena) NewText(text string) *Node {
	n := &Node{ID: a.alloc(), Kind: KindText, Text: text}
	a.nodes[n.ID] = n
	return n
}

// NewElement allocates an element node.
func (a *Arena) NewElement(tag string, attrs []html.Attribute, inner string) *Node {
	n := &Node{ID: a.alloc(), Kind: KindElement, Tag: tag, Attrs: attrs, Inner: inner}
	a.nodes[n.ID] = n
	return n
}

// Adopt registers a node built outside the arena and assigns it a fresh id.
func (a *Arena) Adopt(n *Node) *Node {
	c := n.clone(a.alloc())
	a.nodes[c.ID] = c
	return c
}

// Get returns the node with the given id.
func (a *Arena) Get(id NodeID) (*Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Release forgets a node. Its id is never handed out again.
func (a *Arena) Release(id NodeID) {
	delete(a.nodes, id)
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Reset forgets every node but keeps the id counter.
func (a *Arena) Reset() {
	a.nodes = make(map[NodeID]*Node)
}
