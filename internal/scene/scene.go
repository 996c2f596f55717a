package scene

import (
	"fmt"
	"sync"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node is an element of the scene graph. Position and Scale are local to the parent.
type Node struct {
	Name     string
	Position r3.Vec
	Scale    r3.Vec
	// Anchor is set on anchor nodes only; their world pose follows the anchor.
	Anchor core.Anchor

	parent   *Node
	children []*Node
}

// NewNode creates a detached node with unit scale
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

// Parent returns the node this one is attached to, or nil
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Find returns the first descendant (depth-first) with the given name
func (n *Node) Find(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// WorldPosition walks up to the anchor node (or root) composing positions and scales.
func (n *Node) WorldPosition() r3.Vec {
	pos := r3.Vec{}
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Anchor != nil {
			pose := cur.Anchor.Pose()
			return r3.Add(pose.Rotate(pos), pose.Position)
		}
		pos = r3.Add(r3.Vec{X: pos.X * cur.Scale.X, Y: pos.Y * cur.Scale.Y, Z: pos.Z * cur.Scale.Z}, cur.Position)
	}
	return pos
}

// Scene owns the node tree. All structural changes go through it.
type Scene struct {
	mu   sync.RWMutex
	root *Node
}

// New creates an empty scene
func New() *Scene {
	return &Scene{root: NewNode("root")}
}

// Root returns the root node
func (s *Scene) Root() *Node {
	return s.root
}

// AddAnchor creates an anchor node under the root
func (s *Scene) AddAnchor(a core.Anchor) *Node {
	n := NewNode("anchor:" + a.ID())
	n.Anchor = a
	s.AddChild(s.root, n)
	return n
}

// AddChild attaches child under parent. A child that already has a parent is moved.
func (s *Scene) AddChild(parent, child *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent.Append(child)
}

// Append links child under n without locking. Use it to assemble a subtree before
// the subtree is added to a scene.
func (n *Node) Append(child *Node) {
	if child.parent != nil {
		detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches n and its subtree
func (s *Scene) Remove(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	detach(n)
}

func detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// AnchorNode returns the node bound to the anchor ID
func (s *Scene) AnchorNode(anchorID string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.root.children {
		if c.Anchor != nil && c.Anchor.ID() == anchorID {
			return c, true
		}
	}
	return nil, false
}

// Contains reports whether n is still reachable from the root
func (s *Scene) Contains(n *Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ; n != nil; n = n.parent {
		if n == s.root {
			return true
		}
	}
	return false
}

// Clear removes every node below the root
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.root.children {
		c.parent = nil
	}
	s.root.children = nil
}

// Count returns the number of nodes below the root
func (s *Scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return count(s.root) - 1
}

func count(n *Node) int {
	total := 1
	for _, c := range n.children {
		total += count(c)
	}
	return total
}

// Dump renders the tree one node per line, indented by depth.
func (s *Scene) Dump() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lines []string
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}
		lines = append(lines, fmt.Sprintf("%s%s pos=(%g,%g,%g) scale=(%g,%g,%g)", indent, n.Name,
			n.Position.X, n.Position.Y, n.Position.Z, n.Scale.X, n.Scale.Y, n.Scale.Z))
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(s.root, 0)
	return lines
}
