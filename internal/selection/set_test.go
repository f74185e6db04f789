package selection_test

import (
	"testing"

	"obdexporter/internal/selection"
	"obdexporter/internal/thing"
)

func TestAddDeduplicatesAndPreservesOrder(t *testing.T) {
	s := selection.New()
	inputs := []thing.Identity{
		thing.New(thing.Item, 100),
		thing.New(thing.Outfit, 5),
		thing.New(thing.Item, 100),
		thing.New(thing.Effect, 7),
		thing.New(thing.Outfit, 5),
	}
	for _, id := range inputs {
		s.Add(id)
	}

	want := []thing.Identity{
		thing.New(thing.Item, 100),
		thing.New(thing.Outfit, 5),
		thing.New(thing.Effect, 7),
	}
	got := s.Items()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAddReportsChange(t *testing.T) {
	s := selection.New()
	if !s.Add(thing.New(thing.Item, 1)) {
		t.Fatal("expected first add to change the set")
	}
	if s.Add(thing.New(thing.Item, 1)) {
		t.Fatal("expected duplicate add to be a no-op")
	}
	if s.Len() != 1 {
		t.Fatalf("expected size 1, got %d", s.Len())
	}
}

func TestAddAllCountsNewEntries(t *testing.T) {
	s := selection.New()
	s.Add(thing.New(thing.Item, 2))
	added := s.AddAll([]thing.Identity{
		thing.New(thing.Item, 1),
		thing.New(thing.Item, 2),
		thing.New(thing.Item, 3),
		thing.New(thing.Item, 1),
	})
	if added != 2 {
		t.Fatalf("expected 2 additions, got %d", added)
	}
	got := s.Items()
	if got[0].ID != 2 || got[1].ID != 1 || got[2].ID != 3 {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestRemove(t *testing.T) {
	s := selection.New()
	a := thing.New(thing.Item, 100)
	b := thing.New(thing.Outfit, 5)
	c := thing.New(thing.Missile, 3)
	s.AddAll([]thing.Identity{a, b, c})

	if n := s.Remove(thing.New(thing.Effect, 99)); n != 0 {
		t.Fatalf("expected removing absent identity to be a no-op, removed %d", n)
	}
	if s.Len() != 3 {
		t.Fatalf("expected size unchanged, got %d", s.Len())
	}

	if n := s.Remove(b); n != 1 {
		t.Fatalf("expected one removal, got %d", n)
	}
	if s.Len() != 2 || s.Contains(b) {
		t.Fatalf("expected %v removed, got %v", b, s.Items())
	}
	got := s.Items()
	if got[0] != a || got[1] != c {
		t.Fatalf("unexpected order after removal %v", got)
	}

	// Re-adding after removal appends at the end.
	s.Add(b)
	got = s.Items()
	if got[2] != b {
		t.Fatalf("expected %v at the end, got %v", b, got)
	}
	if n := s.Remove(a, c, a); n != 2 {
		t.Fatalf("expected two removals, got %d", n)
	}
	if s.Len() != 1 || !s.Contains(b) {
		t.Fatalf("unexpected contents %v", s.Items())
	}
}

func TestClear(t *testing.T) {
	s := selection.New()
	s.AddAll([]thing.Identity{thing.New(thing.Item, 1), thing.New(thing.Item, 2)})
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
	if s.Contains(thing.New(thing.Item, 1)) {
		t.Fatal("expected cleared set to forget members")
	}
	s.Add(thing.New(thing.Item, 1))
	if s.Len() != 1 {
		t.Fatal("expected set to be usable after Clear")
	}
}

func TestItemsIsSnapshot(t *testing.T) {
	s := selection.New()
	s.Add(thing.New(thing.Item, 1))
	snap := s.Items()
	snap[0] = thing.New(thing.Item, 999)
	if s.Items()[0].ID != 1 {
		t.Fatal("mutating the snapshot must not affect the set")
	}
}

func TestZeroValueSet(t *testing.T) {
	var s selection.Set
	s.Add(thing.New(thing.Effect, 4))
	if !s.Contains(thing.New(thing.Effect, 4)) {
		t.Fatal("expected zero-value set to accept additions")
	}
}
