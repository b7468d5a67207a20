package circuit

import (
	"math"
	"testing"
)

func testDevice(name string, alarm float64) *DeviceData {
	return &DeviceData{Name: name, Type: "Horn Strobe", AlarmCurrent: alarm, StandbyCurrent: alarm / 10}
}

// chainNode attaches a device node under parent with the given segment length.
func chainNode(t *testing.T, tr *Tree, parent NodeID, id string, alarm, dist float64) *Node {
	t.Helper()
	n := tr.NewNode(id, id, testDevice(id, alarm))
	n.DistanceFromParent = dist
	tr.AddChild(parent, n.ID)
	return n
}

func TestNewTree(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)

	root := tr.Root()
	if root == nil {
		t.Fatal("Root() = nil")
	}
	if root.Kind != KindRoot {
		t.Errorf("root kind = %v, want KindRoot", root.Kind)
	}
	if root.Voltage != 24.0 {
		t.Errorf("root voltage = %v, want 24.0", root.Voltage)
	}
	if tr.Size() != 1 {
		t.Errorf("Size() = %d, want 1", tr.Size())
	}
}

func TestAddChild(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	root := tr.Root()

	a := chainNode(t, tr, root.ID, "a", 0.03, 50)
	b := chainNode(t, tr, a.ID, "b", 0.02, 25)

	if a.Parent != root.ID {
		t.Errorf("a.Parent = %v, want root", a.Parent)
	}
	if a.Sequence != 1 || b.Sequence != 1 {
		t.Errorf("sequences = %d, %d, want 1, 1", a.Sequence, b.Sequence)
	}

	// Accumulated load propagates to the root on every attach.
	if got, want := root.AccumulatedLoad, 0.05; math.Abs(got-want) > 1e-12 {
		t.Errorf("root load = %v, want %v", got, want)
	}
	if got, want := a.AccumulatedLoad, 0.05; math.Abs(got-want) > 1e-12 {
		t.Errorf("a load = %v, want %v", got, want)
	}
	if got, want := b.AccumulatedLoad, 0.02; math.Abs(got-want) > 1e-12 {
		t.Errorf("b load = %v, want %v", got, want)
	}
}

func TestAddChildMissingIsNoop(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	tr.AddChild(tr.root, NodeID(999))
	if tr.Size() != 1 {
		t.Errorf("Size() = %d after no-op attach, want 1", tr.Size())
	}
}

func TestRemoveChildRenumbersSiblings(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	root := tr.Root()

	a := chainNode(t, tr, root.ID, "a", 0.01, 10)
	b := chainNode(t, tr, root.ID, "b", 0.01, 10)
	c := chainNode(t, tr, root.ID, "c", 0.01, 10)

	tr.RemoveChild(root.ID, b.ID)

	if len(root.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(root.Children))
	}
	if a.Sequence != 1 || c.Sequence != 2 {
		t.Errorf("sequences after removal = %d, %d, want 1, 2", a.Sequence, c.Sequence)
	}
	if b.Parent != NoNode {
		t.Errorf("detached child parent = %v, want NoNode", b.Parent)
	}
	if got, want := root.AccumulatedLoad, 0.02; math.Abs(got-want) > 1e-12 {
		t.Errorf("root load = %v, want %v", got, want)
	}
}

func TestFindByDeviceID(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	a := chainNode(t, tr, tr.root, "smoke-1", 0.03, 50)
	chainNode(t, tr, a.ID, "smoke-2", 0.03, 25)

	if n := tr.FindByDeviceID("smoke-2"); n == nil || n.DeviceID != "smoke-2" {
		t.Errorf("FindByDeviceID(smoke-2) = %v", n)
	}
	if n := tr.FindByDeviceID("missing"); n != nil {
		t.Errorf("FindByDeviceID(missing) = %v, want nil", n)
	}
	if n := tr.FindByDeviceID(""); n != nil {
		t.Errorf("FindByDeviceID(\"\") = %v, want nil", n)
	}
}

func TestWalkPreOrder(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	a := chainNode(t, tr, tr.root, "a", 0.01, 10)
	chainNode(t, tr, a.ID, "b", 0.01, 10)
	chainNode(t, tr, tr.root, "c", 0.01, 10)

	var order []string
	tr.Walk(func(n *Node) bool {
		order = append(order, n.Name)
		return true
	})

	want := []string{"Supply", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}
}

func TestUpdateVoltages(t *testing.T) {
	t.Parallel()
	tr := NewTree(29.0)
	a := chainNode(t, tr, tr.root, "a", 0.09, 50)
	b := chainNode(t, tr, a.ID, "b", 0.06, 25)
	// Zero-length segment carries the parent voltage unchanged.
	c := chainNode(t, tr, b.ID, "c", 0.03, 0)

	const r = 4.016
	tr.RecomputeLoads()
	tr.UpdateVoltages(29.0, r)

	wantDropA := 0.18 * (2 * 50 / 1000.0) * r
	if math.Abs(a.VoltageDrop-wantDropA) > 1e-12 {
		t.Errorf("a drop = %v, want %v", a.VoltageDrop, wantDropA)
	}
	if math.Abs(a.Voltage-(29.0-wantDropA)) > 1e-12 {
		t.Errorf("a voltage = %v, want %v", a.Voltage, 29.0-wantDropA)
	}
	if c.Voltage != b.Voltage {
		t.Errorf("zero-distance child voltage = %v, want parent's %v", c.Voltage, b.Voltage)
	}
	if c.VoltageDrop != 0 {
		t.Errorf("zero-distance child drop = %v, want 0", c.VoltageDrop)
	}
	if tr.Root().VoltageDrop != 0 {
		t.Errorf("root drop = %v, want 0", tr.Root().VoltageDrop)
	}

	// A second pass with no structural change is a fixpoint.
	va, vb, vc := a.Voltage, b.Voltage, c.Voltage
	tr.UpdateVoltages(29.0, r)
	if a.Voltage != va || b.Voltage != vb || c.Voltage != vc {
		t.Error("UpdateVoltages is not idempotent")
	}
}

func TestLoadInvariantAfterEdits(t *testing.T) {
	t.Parallel()
	tr := NewTree(24.0)
	a := chainNode(t, tr, tr.root, "a", 0.05, 10)
	b := chainNode(t, tr, a.ID, "b", 0.07, 10)
	chainNode(t, tr, b.ID, "c", 0.02, 10)
	tr.RemoveChild(a.ID, b.ID)

	tr.Walk(func(n *Node) bool {
		sum := n.ownCurrent()
		for _, childID := range n.Children {
			sum += tr.Node(childID).AccumulatedLoad
		}
		if math.Abs(n.AccumulatedLoad-sum) > 1e-12 {
			t.Errorf("node %s load = %v, want own+children = %v", n.Name, n.AccumulatedLoad, sum)
		}
		return true
	})
}
