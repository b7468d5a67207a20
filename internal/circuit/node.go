package circuit

// NodeID is a stable opaque identifier for a node within one tree arena.
// The zero value means "no node".
type NodeID int

// NoNode is the absent-node sentinel.
const NoNode NodeID = 0

// Kind distinguishes the supply root from device nodes.
type Kind int

const (
	// KindRoot is the single supply node at the top of the tree.
	KindRoot Kind = iota
	// KindDevice is a notification or initiation device on the circuit.
	KindDevice
)

// Node is one entry in the circuit topology tree. Parent and Children are
// arena references, never raw pointers, so the structure is acyclic-safe
// and serializes without back-reference cycles.
type Node struct {
	ID       NodeID
	DeviceID string // external device identity; empty for the root
	Kind     Kind
	// IsBranch marks T-tap membership. Main-chain and branch children of
	// the same parent are distinguished solely by this flag.
	IsBranch bool
	Name     string
	// Sequence is the 1-based position among siblings.
	Sequence int
	// DistanceFromParent is the routed wire length of the incoming segment,
	// in feet. Zero for the root.
	DistanceFromParent float64

	// Computed fields, owned by the engine's recomputation passes.
	Voltage         float64 // volts at this node
	VoltageDrop     float64 // volts lost across the incoming segment
	AccumulatedLoad float64 // amps through the incoming segment

	// Data is nil for the root.
	Data *DeviceData

	Parent   NodeID
	Children []NodeID
}

// ownCurrent is the node's own alarm draw, zero for the root.
func (n *Node) ownCurrent() float64 {
	if n.Data == nil {
		return 0
	}
	return n.Data.AlarmCurrent
}

// IsLeaf reports whether the node terminates its chain.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}
