package circuit

// Tree is a mutable, rooted, ordered N-ary tree of circuit nodes stored as
// an arena. Every structural edit keeps two invariants: no node is its own
// ancestor, and every non-root node is reachable from the root via parent
// references. The engine is the sole mutator; callers read.
type Tree struct {
	nodes  map[NodeID]*Node
	root   NodeID
	nextID NodeID
}

// NewTree creates a tree holding only a supply root at the given voltage.
func NewTree(systemVoltage float64) *Tree {
	t := &Tree{nodes: make(map[NodeID]*Node), nextID: 1}
	root := &Node{
		ID:      t.nextID,
		Kind:    KindRoot,
		Name:    "Supply",
		Voltage: systemVoltage,
	}
	t.nextID++
	t.nodes[root.ID] = root
	t.root = root.ID
	return t
}

// Root returns the supply node.
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node { return t.nodes[id] }

// Size returns the total node count, root included.
func (t *Tree) Size() int { return len(t.nodes) }

// NewNode allocates an unattached device node in the arena.
func (t *Tree) NewNode(deviceID, name string, data *DeviceData) *Node {
	n := &Node{
		ID:       t.nextID,
		DeviceID: deviceID,
		Kind:     KindDevice,
		Name:     name,
		Data:     data,
	}
	t.nextID++
	t.nodes[n.ID] = n
	return n
}

// AddChild attaches child under parent, assigns its sibling sequence number,
// and recomputes accumulated load. A missing child or parent is a no-op.
func (t *Tree) AddChild(parent, child NodeID) {
	p, c := t.nodes[parent], t.nodes[child]
	if p == nil || c == nil {
		return
	}
	c.Parent = parent
	p.Children = append(p.Children, child)
	c.Sequence = len(p.Children)
	t.RecomputeLoads()
}

// RemoveChild detaches child from parent, renumbers the remaining siblings
// from 1, and recomputes accumulated load. The child's own descendants keep
// their references; re-homing them is the caller's responsibility.
func (t *Tree) RemoveChild(parent, child NodeID) {
	p, c := t.nodes[parent], t.nodes[child]
	if p == nil || c == nil {
		return
	}
	kept := p.Children[:0]
	for _, id := range p.Children {
		if id != child {
			kept = append(kept, id)
		}
	}
	p.Children = kept
	for i, id := range p.Children {
		t.nodes[id].Sequence = i + 1
	}
	c.Parent = NoNode
	t.RecomputeLoads()
}

// Delete removes a node from the arena entirely. The node must already be
// detached; its subtree, if any, becomes unreachable and is dropped too.
func (t *Tree) Delete(id NodeID) {
	n := t.nodes[id]
	if n == nil || id == t.root {
		return
	}
	for _, childID := range n.Children {
		t.Delete(childID)
	}
	delete(t.nodes, id)
}

// FindByDeviceID returns the first node carrying the given external device
// id in pre-order, or nil.
func (t *Tree) FindByDeviceID(deviceID string) *Node {
	if deviceID == "" {
		return nil
	}
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.DeviceID == deviceID {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByNodeID returns the node with the given arena id if it is reachable
// from the root, or nil.
func (t *Tree) FindByNodeID(id NodeID) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every reachable node in pre-order, root first. Returning
// false from fn stops the traversal.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.walk(t.root, fn)
}

func (t *Tree) walk(id NodeID, fn func(*Node) bool) bool {
	n := t.nodes[id]
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, childID := range n.Children {
		if !t.walk(childID, fn) {
			return false
		}
	}
	return true
}

// RecomputeLoads performs a full bottom-up sweep so that every node's
// accumulated load equals its own current plus the sum of its children's
// accumulated loads.
func (t *Tree) RecomputeLoads() {
	t.recomputeLoad(t.root)
}

func (t *Tree) recomputeLoad(id NodeID) float64 {
	n := t.nodes[id]
	if n == nil {
		return 0
	}
	load := n.ownCurrent()
	for _, childID := range n.Children {
		load += t.recomputeLoad(childID)
	}
	n.AccumulatedLoad = load
	return load
}

// UpdateVoltages runs the top-down voltage pass from the root. For a node
// with a positive incoming segment, drop = load × (2 × dist/1000) × R and
// voltage = parent voltage − drop; the root and zero-length segments carry
// the parent voltage unchanged. Every reachable node is visited exactly once.
func (t *Tree) UpdateVoltages(parentVoltage, resistancePerKft float64) {
	t.updateVoltage(t.root, parentVoltage, resistancePerKft)
}

func (t *Tree) updateVoltage(id NodeID, parentVoltage, resistancePerKft float64) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	if n.ID == t.root || n.DistanceFromParent <= 0 {
		n.Voltage = parentVoltage
		n.VoltageDrop = 0
	} else {
		n.VoltageDrop = segmentDrop(n.AccumulatedLoad, n.DistanceFromParent, resistancePerKft)
		n.Voltage = parentVoltage - n.VoltageDrop
	}
	for _, childID := range n.Children {
		t.updateVoltage(childID, n.Voltage, resistancePerKft)
	}
}

// segmentDrop is the one voltage-drop formula everything shares:
// drop = current × (2 × distance / 1000) × resistancePerKft. The factor 2
// accounts for the round-trip supply-and-return conductor path.
func segmentDrop(current, distance, resistancePerKft float64) float64 {
	return current * (2 * distance / 1000) * resistancePerKft
}
