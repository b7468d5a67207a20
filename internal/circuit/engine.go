// Package circuit models a power-limited signaling circuit as a rooted tree
// of devices fed from a single supply and keeps its electrical state —
// cumulative current, per-segment voltage drop, and node voltage — correct
// under structural edits: main-chain growth, T-tap branches, and removals
// with branch re-homing.
package circuit

import (
	"fmt"
	"math"
	"slices"

	"github.com/emberfield/nacalc/internal/geom"
)

// Mode selects which index a newly added device is appended to. It carries
// no tree semantics; it exists for caller orchestration only.
type Mode int

const (
	// ModeMain appends new devices to the main chain. Initial and default.
	ModeMain Mode = iota
	// ModeBranch appends new devices to the active tap point's branch.
	ModeBranch
)

// CircuitType selects which chain a voltage query walks.
type CircuitType int

const (
	// CircuitMain queries a main-chain device.
	CircuitMain CircuitType = iota
	// CircuitBranch queries a T-tap branch device.
	CircuitBranch
)

// AreaMain is the location label for main-chain devices. Branch devices
// carry their branch label instead.
const AreaMain = "Main"

const (
	// DefaultSegmentLength is substituted when a segment cannot be measured:
	// a missing connection point or a non-finite computed distance.
	DefaultSegmentLength = 25.0
	minSegmentLength     = 1.0
	maxSegmentLength     = 1000.0
)

// UnlimitedDistance is the sentinel MaxDistance returns when no finite
// bound applies.
const UnlimitedDistance = math.MaxFloat64

// Location identifies where a device sat in the circuit: the main chain or
// a labeled branch, plus its 1-based position there.
type Location struct {
	// Area is AreaMain or the branch label, e.g. "T-Tap 2".
	Area string
	// Tap is the tap-point device id for branch locations, empty for main.
	Tap string
	// Position is 1-based within the chain.
	Position int
}

// NodeChange records one node's electrical state after a mutation.
type NodeChange struct {
	NodeID          NodeID
	DeviceID        string
	Voltage         float64
	VoltageDrop     float64
	AccumulatedLoad float64
}

// ChangeSet is the post-mutation summary a host pulls instead of receiving
// push-style change events: every node whose voltage, drop, or load changed,
// plus any device ids that left the circuit entirely.
type ChangeSet struct {
	Op       string
	DeviceID string
	Removed  []string
	Nodes    []NodeChange
}

// Mutation op labels used in ChangeSet and telemetry.
const (
	OpAddMain   = "add_main"
	OpAddBranch = "add_branch"
	OpRemove    = "remove"
	OpRestore   = "restore"
	OpClear     = "clear"
	OpParams    = "set_parameters"
)

// Engine is the sole entry point for building and mutating a circuit. It
// owns the topology tree plus flat indexes kept in lockstep with it, and
// recomputes voltages and statistics inline as the final step of every
// mutation. One engine instance is single-owner state; callers needing
// concurrent access must serialize around it.
type Engine struct {
	params Parameters
	tree   *Tree

	mainOrder    []string            // main-chain device ids, supply-first order
	branches     map[string][]string // tap device id → ordered branch device ids
	branchLabels map[string]string   // tap device id → human-readable label
	devices      map[string]*DeviceData
	nodeByDevice map[string]NodeID

	tailID    NodeID // growth point of the main chain
	mode      Mode
	activeTap string
	branchSeq int // counter behind branch labels

	stats Statistics
}

// NewEngine validates the parameter contract and returns an engine holding
// an empty circuit at system voltage.
func NewEngine(params Parameters) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}
	e := &Engine{params: params.withDerived()}
	e.reset()
	return e, nil
}

// reset rebuilds the empty state: fresh tree, empty indexes, main mode.
func (e *Engine) reset() {
	e.tree = NewTree(e.params.SystemVoltage)
	e.mainOrder = nil
	e.branches = make(map[string][]string)
	e.branchLabels = make(map[string]string)
	e.devices = make(map[string]*DeviceData)
	e.nodeByDevice = make(map[string]NodeID)
	e.tailID = e.tree.root
	e.mode = ModeMain
	e.activeTap = ""
	e.branchSeq = 0
	e.refreshStats()
}

// Clear resets all indexes, rebuilds an empty tree with a fresh root at
// system voltage, and returns the mode to Main.
func (e *Engine) Clear() ChangeSet {
	e.reset()
	return ChangeSet{Op: OpClear}
}

// Params returns the current parameter contract.
func (e *Engine) Params() Parameters { return e.params }

// SetParameters replaces the parameter contract and recomputes all
// electrical state under the new supply. Invalid parameters are rejected
// and the circuit is left untouched.
func (e *Engine) SetParameters(params Parameters) (ChangeSet, error) {
	if err := params.Validate(); err != nil {
		return ChangeSet{}, fmt.Errorf("circuit: %w", err)
	}
	before := e.capture()
	e.params = params.withDerived()
	e.tree.Root().Voltage = e.params.SystemVoltage
	return e.finishMutation(OpParams, "", nil, before), nil
}

// Tree exposes the topology for read-only traversal.
func (e *Engine) Tree() *Tree { return e.tree }

// Mode returns the current selection mode.
func (e *Engine) Mode() Mode { return e.mode }

// ActiveTap returns the tap-point device id branch additions default to.
func (e *Engine) ActiveTap() string { return e.activeTap }

// EnterBranchMode switches the selection mode to Branch rooted at the given
// main-chain device. It reports false, leaving the mode unchanged, when the
// tap id is not a main-chain member.
func (e *Engine) EnterBranchMode(tapID string) bool {
	if !slices.Contains(e.mainOrder, tapID) {
		return false
	}
	e.mode = ModeBranch
	e.activeTap = tapID
	return true
}

// ExitBranchMode returns the selection mode to Main. The mode never expires
// on its own.
func (e *Engine) ExitBranchMode() {
	e.mode = ModeMain
	e.activeTap = ""
}

// AddDevice appends a device to whichever chain the current mode selects.
func (e *Engine) AddDevice(id string, data *DeviceData) ChangeSet {
	if e.mode == ModeBranch {
		return e.AddDeviceToBranch(id, data, e.activeTap)
	}
	return e.AddDeviceToMain(id, data)
}

// AddDeviceToMain appends a device to the end of the main chain. Empty ids,
// duplicate ids, and missing electrical data are silent no-ops. The segment
// length comes from the previous main device's connection point, or the
// configured supply distance for the first device. The main-chain growth
// point advances to the new device.
func (e *Engine) AddDeviceToMain(id string, data *DeviceData) ChangeSet {
	if id == "" || data == nil || e.knownDevice(id) {
		return ChangeSet{}
	}
	before := e.capture()

	var dist float64
	if len(e.mainOrder) == 0 {
		dist = e.params.SupplyDistance
	} else {
		prev := e.devices[e.mainOrder[len(e.mainOrder)-1]]
		dist = e.SegmentLength(prev.Location, data.Location)
	}

	node := e.tree.NewNode(id, data.Name, data)
	node.DistanceFromParent = dist
	e.tree.AddChild(e.tailID, node.ID)

	e.mainOrder = append(e.mainOrder, id)
	e.devices[id] = data
	e.nodeByDevice[id] = node.ID
	e.tailID = node.ID

	return e.finishMutation(OpAddMain, id, nil, before)
}

// AddDeviceToBranch appends a device to the branch hanging off tapID, or
// off the active tap when tapID is empty. The branch's index entry and
// label are created lazily on first use. The new node is attached under the
// branch chain's current last device — directly under the tap node when the
// branch is empty — and the main-chain growth point is left untouched.
func (e *Engine) AddDeviceToBranch(id string, data *DeviceData, tapID string) ChangeSet {
	if tapID == "" {
		tapID = e.activeTap
	}
	if id == "" || data == nil || e.knownDevice(id) || !slices.Contains(e.mainOrder, tapID) {
		return ChangeSet{}
	}
	before := e.capture()

	if _, ok := e.branches[tapID]; !ok {
		e.branchSeq++
		e.branches[tapID] = nil
		e.branchLabels[tapID] = fmt.Sprintf("T-Tap %d", e.branchSeq)
	}

	parent := e.branchTail(tapID)
	dist := e.SegmentLength(parent.Data.Location, data.Location)

	node := e.tree.NewNode(id, data.Name, data)
	node.IsBranch = true
	node.DistanceFromParent = dist
	e.tree.AddChild(parent.ID, node.ID)

	e.branches[tapID] = append(e.branches[tapID], id)
	e.devices[id] = data
	e.nodeByDevice[id] = node.ID

	return e.finishMutation(OpAddBranch, id, nil, before)
}

// branchTail returns the last device of the branch chain under tapID by
// following the first branch-flagged child at each level, or the tap node
// itself when the branch is empty.
func (e *Engine) branchTail(tapID string) *Node {
	n := e.tree.Node(e.nodeByDevice[tapID])
	for {
		var next *Node
		for _, childID := range n.Children {
			if c := e.tree.Node(childID); c != nil && c.IsBranch {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// RemoveDevice removes a device from the main chain or from any branch and
// repairs both the indexes and the tree. A branch rooted at a removed main
// device is re-homed to the previous main device, else the next, else
// discarded; branches merge into an existing branch at the destination.
// The removed node's children are reattached to its former parent with the
// removed segment's length folded into theirs — unless any branch existed,
// in which case the tree is rebuilt wholesale from the flat indexes.
// It returns the device's former location and the mutation summary; ok is
// false when the id is unknown.
func (e *Engine) RemoveDevice(id string) (Location, ChangeSet, bool) {
	if id == "" || !e.knownDevice(id) {
		return Location{}, ChangeSet{}, false
	}
	before := e.capture()

	if i := slices.Index(e.mainOrder, id); i >= 0 {
		loc := Location{Area: AreaMain, Position: i + 1}
		hadBranches := len(e.branches) > 0
		discarded := e.removeMainIndexes(i)
		if hadBranches {
			e.rebuildTree()
		} else {
			e.patchTreeAround(id)
		}
		delete(e.devices, id)
		delete(e.nodeByDevice, id)
		e.resetTail()
		return loc, e.finishMutation(OpRemove, id, append(discarded, id), before), true
	}

	for _, tap := range e.mainOrder {
		list, ok := e.branches[tap]
		if !ok {
			continue
		}
		j := slices.Index(list, id)
		if j < 0 {
			continue
		}
		loc := Location{Area: e.branchLabels[tap], Tap: tap, Position: j + 1}
		list = slices.Delete(slices.Clone(list), j, j+1)
		if len(list) == 0 {
			delete(e.branches, tap)
			delete(e.branchLabels, tap)
		} else {
			e.branches[tap] = list
		}
		e.patchTreeAround(id)
		delete(e.devices, id)
		delete(e.nodeByDevice, id)
		return loc, e.finishMutation(OpRemove, id, []string{id}, before), true
	}

	// Index maps disagree with the chain lists; treat as not found rather
	// than guess.
	return Location{}, ChangeSet{}, false
}

// removeMainIndexes drops position i from the main order and re-homes any
// branch rooted there. It returns the ids of branch devices discarded
// because no main-chain neighbor could adopt them.
func (e *Engine) removeMainIndexes(i int) (discarded []string) {
	id := e.mainOrder[i]
	if list, ok := e.branches[id]; ok {
		var dest string
		switch {
		case i > 0:
			dest = e.mainOrder[i-1]
		case i+1 < len(e.mainOrder):
			dest = e.mainOrder[i+1]
		}
		switch {
		case dest == "":
			// Orphaned branch: no neighbor to adopt it.
			for _, bid := range list {
				delete(e.devices, bid)
				delete(e.nodeByDevice, bid)
				discarded = append(discarded, bid)
			}
		case len(e.branches[dest]) > 0:
			// Merge into the destination's existing branch, keeping its label.
			e.branches[dest] = append(e.branches[dest], list...)
		default:
			e.branches[dest] = list
			e.branchLabels[dest] = e.branchLabels[id]
		}
		delete(e.branches, id)
		delete(e.branchLabels, id)
	}
	e.mainOrder = slices.Delete(e.mainOrder, i, i+1)
	return discarded
}

// patchTreeAround detaches the device's node and reattaches its children to
// the node's former parent, folding the removed segment's length into each
// child's distance so segment lengths compose additively.
func (e *Engine) patchTreeAround(id string) {
	node := e.tree.Node(e.nodeByDevice[id])
	if node == nil {
		return
	}
	parent := node.Parent
	children := slices.Clone(node.Children)
	for _, childID := range children {
		child := e.tree.Node(childID)
		child.DistanceFromParent += node.DistanceFromParent
		e.tree.RemoveChild(node.ID, childID)
	}
	e.tree.RemoveChild(parent, node.ID)
	for _, childID := range children {
		e.tree.AddChild(parent, childID)
	}
	e.tree.Delete(node.ID)
}

// rebuildTree reconstructs the whole tree from the flat indexes: the main
// chain first, then each tap's branch chain. Segment lengths are recomputed
// from connection points under the current routing factor.
func (e *Engine) rebuildTree() {
	e.tree = NewTree(e.params.SystemVoltage)
	e.nodeByDevice = make(map[string]NodeID, len(e.devices))
	parentID := e.tree.root

	var prev *DeviceData
	for i, id := range e.mainOrder {
		data := e.devices[id]
		node := e.tree.NewNode(id, data.Name, data)
		if i == 0 {
			node.DistanceFromParent = e.params.SupplyDistance
		} else {
			node.DistanceFromParent = e.SegmentLength(prev.Location, data.Location)
		}
		e.tree.AddChild(parentID, node.ID)
		e.nodeByDevice[id] = node.ID
		parentID = node.ID
		prev = data
	}

	for _, tap := range e.mainOrder {
		list, ok := e.branches[tap]
		if !ok {
			continue
		}
		branchParent := e.nodeByDevice[tap]
		prevData := e.devices[tap]
		for _, bid := range list {
			data := e.devices[bid]
			node := e.tree.NewNode(bid, data.Name, data)
			node.IsBranch = true
			node.DistanceFromParent = e.SegmentLength(prevData.Location, data.Location)
			e.tree.AddChild(branchParent, node.ID)
			e.nodeByDevice[bid] = node.ID
			branchParent = node.ID
			prevData = data
		}
	}
	e.resetTail()
}

// resetTail points the main-chain growth point at the last main device, or
// the root when the chain is empty.
func (e *Engine) resetTail() {
	if len(e.mainOrder) == 0 {
		e.tailID = e.tree.root
		return
	}
	e.tailID = e.nodeByDevice[e.mainOrder[len(e.mainOrder)-1]]
}

// knownDevice reports whether the id is already present in the circuit.
func (e *Engine) knownDevice(id string) bool {
	_, ok := e.devices[id]
	return ok
}

// MainOrder returns the main-chain device ids in supply-first order.
func (e *Engine) MainOrder() []string { return slices.Clone(e.mainOrder) }

// Branch returns the ordered device ids of the branch at tapID.
func (e *Engine) Branch(tapID string) []string { return slices.Clone(e.branches[tapID]) }

// BranchLabel returns the human-readable label of the branch at tapID.
func (e *Engine) BranchLabel(tapID string) string { return e.branchLabels[tapID] }

// TapPoints returns the main-chain devices that currently carry a branch,
// in main-chain order.
func (e *Engine) TapPoints() []string {
	var taps []string
	for _, id := range e.mainOrder {
		if _, ok := e.branches[id]; ok {
			taps = append(taps, id)
		}
	}
	return taps
}

// Device returns the electrical data for a known device id, or nil.
func (e *Engine) Device(id string) *DeviceData { return e.devices[id] }

// VoltageDrop computes the drop across a wire segment:
// current × (2 × distance / 1000) × resistancePerKft. The factor 2 accounts
// for the round-trip supply-and-return conductor path.
func (e *Engine) VoltageDrop(current, distance float64) float64 {
	return segmentDrop(current, distance, e.params.ResistancePerKft)
}

// SegmentLength converts two connection points into a routed wire length:
// straight-line distance times the routing factor, clamped to
// [1, 1000] feet. A missing point or a non-finite or negative result falls
// back to DefaultSegmentLength.
func (e *Engine) SegmentLength(a, b *geom.Point) float64 {
	if a == nil || b == nil {
		return DefaultSegmentLength
	}
	d := geom.Distance(*a, *b) * e.params.RoutingFactor
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return DefaultSegmentLength
	}
	return math.Min(math.Max(d, minSegmentLength), maxSegmentLength)
}

// MaxDistance inverts the voltage-drop formula: the largest total circuit
// distance, in feet, that keeps the end-of-line voltage above the minimum
// at the given load. It returns UnlimitedDistance when load or resistance
// is non-positive.
func (e *Engine) MaxDistance(load float64) float64 {
	if load <= 0 || e.params.ResistancePerKft <= 0 {
		return UnlimitedDistance
	}
	allowable := e.params.SystemVoltage - e.params.MinVoltage
	return allowable * 1000 / (2 * load * e.params.ResistancePerKft)
}

// VoltageAtDevice computes the voltage at a device by walking the flat
// indexes instead of reading the tree — an independent cross-check of the
// same physics the tree computes incrementally. Main-chain voltage walks
// the chain from the supply, applying one per-segment drop with the full
// downstream current through each segment. Branch voltage starts from the
// tap point's main-chain voltage and accumulates branch-only segments.
// For CircuitBranch, an empty tapID means the active tap, then every branch
// is searched. ok is false when the device is not in the selected chain.
func (e *Engine) VoltageAtDevice(id string, ct CircuitType, tapID string) (float64, bool) {
	switch ct {
	case CircuitBranch:
		if tapID == "" {
			tapID = e.activeTap
		}
		if slices.Contains(e.branches[tapID], id) {
			return e.branchVoltage(id, tapID)
		}
		for _, tap := range e.mainOrder {
			if slices.Contains(e.branches[tap], id) {
				return e.branchVoltage(id, tap)
			}
		}
		return 0, false
	default:
		return e.mainChainVoltage(id)
	}
}

// mainChainVoltage walks the main chain from index 0 to the target device.
// The current through the segment feeding main device i is the sum of every
// downstream main device's draw plus the draw of the branches hanging off
// them, which is exactly the tree's accumulated load at that node.
func (e *Engine) mainChainVoltage(id string) (float64, bool) {
	k := slices.Index(e.mainOrder, id)
	if k < 0 {
		return 0, false
	}
	segLoad := make([]float64, len(e.mainOrder))
	for i, mid := range e.mainOrder {
		load := e.devices[mid].AlarmCurrent
		for _, bid := range e.branches[mid] {
			load += e.devices[bid].AlarmCurrent
		}
		segLoad[i] = load
	}
	for i := len(segLoad) - 2; i >= 0; i-- {
		segLoad[i] += segLoad[i+1]
	}

	v := e.params.SystemVoltage
	for i := 0; i <= k; i++ {
		node := e.tree.Node(e.nodeByDevice[e.mainOrder[i]])
		v -= segmentDrop(segLoad[i], node.DistanceFromParent, e.params.ResistancePerKft)
	}
	return v, true
}

// branchVoltage starts from the tap point's main-chain voltage and walks
// the branch chain, accumulating branch-only distance and current up to and
// including the target device.
func (e *Engine) branchVoltage(id, tapID string) (float64, bool) {
	list := e.branches[tapID]
	k := slices.Index(list, id)
	if k < 0 {
		return 0, false
	}
	v, ok := e.mainChainVoltage(tapID)
	if !ok {
		return 0, false
	}
	segLoad := make([]float64, len(list))
	for i, bid := range list {
		segLoad[i] = e.devices[bid].AlarmCurrent
	}
	for i := len(segLoad) - 2; i >= 0; i-- {
		segLoad[i] += segLoad[i+1]
	}
	for i := 0; i <= k; i++ {
		node := e.tree.Node(e.nodeByDevice[list[i]])
		v -= segmentDrop(segLoad[i], node.DistanceFromParent, e.params.ResistancePerKft)
	}
	return v, true
}

// capture records every node's electrical state before a mutation so the
// ChangeSet can report exactly what moved.
func (e *Engine) capture() map[NodeID][3]float64 {
	before := make(map[NodeID][3]float64, e.tree.Size())
	e.tree.Walk(func(n *Node) bool {
		before[n.ID] = [3]float64{n.Voltage, n.VoltageDrop, n.AccumulatedLoad}
		return true
	})
	return before
}

// finishMutation is the shared tail of every mutating operation: recompute
// loads and voltages root-first, refresh statistics, and assemble the
// ChangeSet by diffing against the pre-mutation capture.
func (e *Engine) finishMutation(op, deviceID string, removed []string, before map[NodeID][3]float64) ChangeSet {
	e.tree.RecomputeLoads()
	e.tree.UpdateVoltages(e.params.SystemVoltage, e.params.ResistancePerKft)
	e.refreshStats()

	cs := ChangeSet{Op: op, DeviceID: deviceID, Removed: removed}
	e.tree.Walk(func(n *Node) bool {
		prev, existed := before[n.ID]
		if !existed || prev != [3]float64{n.Voltage, n.VoltageDrop, n.AccumulatedLoad} {
			cs.Nodes = append(cs.Nodes, NodeChange{
				NodeID:          n.ID,
				DeviceID:        n.DeviceID,
				Voltage:         n.Voltage,
				VoltageDrop:     n.VoltageDrop,
				AccumulatedLoad: n.AccumulatedLoad,
			})
		}
		return true
	})
	return cs
}
