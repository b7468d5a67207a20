package circuit

import "fmt"

// Document is the persisted configuration snapshot: parameters, the full
// topology tree, and the statistics current at save time. It is a
// versionless structured document suitable for file or blob storage.
// Node identifiers are not stored; a restored circuit is electrically
// identical even though its arena ids differ.
type Document struct {
	Parameters Parameters   `json:"parameters"`
	Root       SnapshotNode `json:"root"`
	Stats      Statistics   `json:"stats"`
}

// SnapshotNode is one tree node in a Document. Computed fields (voltage,
// drop, load) are omitted; they are recomputed on restore.
type SnapshotNode struct {
	DeviceID string         `json:"device_id,omitempty"`
	Name     string         `json:"name,omitempty"`
	IsBranch bool           `json:"is_branch,omitempty"`
	Distance float64        `json:"distance,omitempty"`
	Data     *DeviceData    `json:"data,omitempty"`
	Children []SnapshotNode `json:"children,omitempty"`
}

// Snapshot serializes the current circuit into a Document.
func (e *Engine) Snapshot() Document {
	e.refreshStats()
	return Document{
		Parameters: e.params,
		Root:       e.snapshotNode(e.tree.Root()),
		Stats:      e.stats,
	}
}

func (e *Engine) snapshotNode(n *Node) SnapshotNode {
	sn := SnapshotNode{
		DeviceID: n.DeviceID,
		Name:     n.Name,
		IsBranch: n.IsBranch,
		Distance: n.DistanceFromParent,
		Data:     n.Data,
	}
	for _, childID := range n.Children {
		sn.Children = append(sn.Children, e.snapshotNode(e.tree.Node(childID)))
	}
	return sn
}

// Restore replaces the whole circuit with the document's contents: it
// validates the document, clears all current state, rebuilds the tree,
// reconstructs every flat index by a pre-order traversal of the restored
// tree, and recomputes voltages and statistics. The traversal-based rebuild
// is the sole mechanism for deriving indexes from a tree, so a restored
// circuit always carries the same indexes no matter how the original was
// built. An invalid document leaves the engine untouched.
func (e *Engine) Restore(doc Document) (ChangeSet, error) {
	params := doc.Parameters.withDerived()
	if err := params.Validate(); err != nil {
		return ChangeSet{}, fmt.Errorf("circuit: restore: %w", err)
	}
	if err := validateSnapshotTree(doc.Root); err != nil {
		return ChangeSet{}, fmt.Errorf("circuit: restore: %w", err)
	}

	before := e.capture()
	e.params = params
	e.reset()
	e.restoreChildren(e.tree.root, doc.Root.Children)
	e.rebuildIndexesFromTree()
	return e.finishMutation(OpRestore, "", nil, before), nil
}

// validateSnapshotTree checks that every device node carries a unique id
// and electrical data before any current state is thrown away.
func validateSnapshotTree(root SnapshotNode) error {
	seen := make(map[string]bool)
	var check func(sn SnapshotNode) error
	check = func(sn SnapshotNode) error {
		for _, child := range sn.Children {
			if child.DeviceID == "" {
				return fmt.Errorf("%w: device node without id", ErrInvalidSnapshot)
			}
			if child.Data == nil {
				return fmt.Errorf("%w: device %q has no electrical data", ErrInvalidSnapshot, child.DeviceID)
			}
			if seen[child.DeviceID] {
				return fmt.Errorf("%w: duplicate device id %q", ErrInvalidSnapshot, child.DeviceID)
			}
			seen[child.DeviceID] = true
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}

func (e *Engine) restoreChildren(parent NodeID, children []SnapshotNode) {
	for _, sn := range children {
		node := e.tree.NewNode(sn.DeviceID, sn.Name, sn.Data)
		node.IsBranch = sn.IsBranch
		node.DistanceFromParent = sn.Distance
		e.tree.AddChild(parent, node.ID)
		e.restoreChildren(node.ID, sn.Children)
	}
}

// rebuildIndexesFromTree reconstructs the flat indexes from a pre-order
// traversal, classifying each device as main-chain or branch member by its
// branch flag. A branch device's tap point is its nearest non-branch device
// ancestor. Branch labels are reissued in traversal order.
func (e *Engine) rebuildIndexesFromTree() {
	e.mainOrder = nil
	e.branches = make(map[string][]string)
	e.branchLabels = make(map[string]string)
	e.devices = make(map[string]*DeviceData)
	e.nodeByDevice = make(map[string]NodeID)
	e.branchSeq = 0

	e.tree.Walk(func(n *Node) bool {
		if n.Kind != KindDevice {
			return true
		}
		e.devices[n.DeviceID] = n.Data
		e.nodeByDevice[n.DeviceID] = n.ID
		if !n.IsBranch {
			e.mainOrder = append(e.mainOrder, n.DeviceID)
			return true
		}
		tap := e.tapOf(n)
		if tap == "" {
			// No main-chain ancestor; drop the orphan from the indexes.
			return true
		}
		if _, ok := e.branches[tap]; !ok {
			e.branchSeq++
			e.branchLabels[tap] = fmt.Sprintf("T-Tap %d", e.branchSeq)
		}
		e.branches[tap] = append(e.branches[tap], n.DeviceID)
		return true
	})
	e.resetTail()
}

// tapOf walks parent references to the nearest non-branch device ancestor.
func (e *Engine) tapOf(n *Node) string {
	for p := e.tree.Node(n.Parent); p != nil; p = e.tree.Node(p.Parent) {
		if p.Kind == KindDevice && !p.IsBranch {
			return p.DeviceID
		}
		if p.Kind == KindRoot {
			break
		}
	}
	return ""
}
