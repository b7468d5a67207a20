package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/emberfield/nacalc/internal/circuit"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument(t *testing.T) circuit.Document {
	t.Helper()
	eng, err := circuit.NewEngine(circuit.Parameters{
		SystemVoltage:    29.0,
		MinVoltage:       16.0,
		MaxLoad:          3.0,
		ReservedFraction: 0.2,
		WireGauge:        "16 AWG",
		ResistancePerKft: 4.016,
		SupplyDistance:   50,
		RoutingFactor:    1.0,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	eng.AddDeviceToMain("horn-1", &circuit.DeviceData{
		Name:         "Horn Strobe 1",
		Type:         "Horn Strobe",
		AlarmCurrent: 0.030,
	})
	eng.AddDeviceToMain("horn-2", &circuit.DeviceData{
		Name:         "Horn Strobe 2",
		Type:         "Horn Strobe",
		AlarmCurrent: 0.030,
	})
	return eng.Snapshot()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()
	doc := testDocument(t)

	if err := s.Save(ctx, "baseline", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "baseline")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Parameters.SystemVoltage != doc.Parameters.SystemVoltage {
		t.Errorf("system voltage = %v, want %v", got.Parameters.SystemVoltage, doc.Parameters.SystemVoltage)
	}
	if len(got.Root.Children) != len(doc.Root.Children) {
		t.Errorf("root children = %d, want %d", len(got.Root.Children), len(doc.Root.Children))
	}

	// The loaded document must be restorable.
	eng, err := circuit.NewEngine(got.Parameters)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := eng.Restore(got); err != nil {
		t.Fatalf("Restore of a loaded document: %v", err)
	}
	if order := eng.MainOrder(); len(order) != 2 {
		t.Errorf("restored main order = %v, want 2 devices", order)
	}
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	doc := testDocument(t)
	if err := s.Save(ctx, "baseline", doc); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	doc.Parameters.SystemVoltage = 24.0
	if err := s.Save(ctx, "baseline", doc); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load(ctx, "baseline")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Parameters.SystemVoltage != 24.0 {
		t.Errorf("system voltage = %v, want the overwritten 24.0", got.Parameters.SystemVoltage)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1 after overwrite", len(entries))
	}
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()
	s := testStore(t)

	_, err := s.Load(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()
	doc := testDocument(t)

	for _, name := range []string{"alpha", "beta"} {
		if err := s.Save(ctx, name, doc); err != nil {
			t.Fatalf("Save %q: %v", name, err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
		if e.SavedAt.IsZero() {
			t.Errorf("entry %q has a zero timestamp", e.Name)
		}
	}
	if !names["alpha"] || !names["beta"] {
		t.Errorf("entries = %+v, want alpha and beta", entries)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "baseline", testDocument(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "baseline"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "baseline"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load after Delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "baseline"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}
