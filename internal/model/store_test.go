package model

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func storeWith(t *testing.T, texts ...string) (*Store, []Handle) {
	t.Helper()
	s := NewStore()
	handles := s.ReplaceFromLines(texts)
	if err := s.Validate(); err != nil {
		t.Fatalf("invalid store after setup: %v", err)
	}
	return s, handles
}

func texts(s *Store) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Rows() {
		out = append(out, r.Text)
	}
	return out
}

func TestInsertAfterFirstRow(t *testing.T) {
	s, h := storeWith(t, "A", "B", "C")

	added := s.InsertAfter(h[0])

	if got, want := texts(s), []string{"A", "", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	row, ok := s.Get(added)
	if !ok || row.Position != 1 {
		t.Fatalf("new row = %+v ok=%v, want position 1", row, ok)
	}
	for i, r := range s.Rows() {
		if r.Position != i {
			t.Fatalf("row %d has position %d", i, r.Position)
		}
	}
	if b, _ := s.Get(h[1]); b.Position != 2 || b.Text != "B" {
		t.Fatalf("B should shift to 2, got %+v", b)
	}
}

func TestInsertAfterStaleAnchorGoesToTop(t *testing.T) {
	s, h := storeWith(t, "A", "B")
	if _, ok := s.Remove(h[1]); !ok {
		t.Fatal("expected remove to succeed")
	}
	added := s.InsertAfter(h[1])
	if row, _ := s.Get(added); row.Position != 0 {
		t.Fatalf("expected insert at top for stale anchor, got %d", row.Position)
	}
	if s.InsertAfter(Handle{}) == added {
		t.Fatal("expected a fresh handle")
	}
}

func TestInsertIntoEmptyStore(t *testing.T) {
	s := NewStore()
	h := s.InsertAfter(Handle{})
	row, ok := s.Get(h)
	if !ok || row.Position != 0 || s.Len() != 1 {
		t.Fatalf("unexpected first row %+v ok=%v len=%d", row, ok, s.Len())
	}
}

func TestRemoveLastRowIsRefused(t *testing.T) {
	s, h := storeWith(t, "only")
	if _, ok := s.Remove(h[0]); ok {
		t.Fatal("expected last row removal to be refused")
	}
	if _, err := s.RemoveErr(h[0]); !errors.Is(err, ErrLastRow) {
		t.Fatalf("expected ErrLastRow, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", s.Len())
	}
}

func TestRemoveShiftsRowsBelow(t *testing.T) {
	s, h := storeWith(t, "A", "B", "C", "D")
	if _, ok := s.Remove(h[1]); !ok {
		t.Fatal("remove B failed")
	}
	if got, want := texts(s), []string{"A", "C", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	if d, _ := s.Get(h[3]); d.Position != 2 {
		t.Fatalf("D position = %d, want 2", d.Position)
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	s, h := storeWith(t, "A", "B")
	s.Remove(h[1])
	reused := s.InsertAfter(h[0])
	if reused.slot != h[1].slot {
		t.Fatalf("expected slot reuse, got %v vs %v", reused, h[1])
	}
	if s.Contains(h[1]) {
		t.Fatal("old handle must not resolve to the reused slot")
	}
	if s.SetText(h[1], "ghost") {
		t.Fatal("SetText through a stale handle must fail")
	}
	if _, err := s.RemoveErr(h[1]); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("expected ErrStaleHandle, got %v", err)
	}
}

func TestClearConvergesToOneBlankRow(t *testing.T) {
	s, h := storeWith(t, "A", "B", "C")
	s.SetChecked(h[2], true)

	survivor := s.Clear()

	if s.Len() != 1 || s.CheckedCount() != 0 {
		t.Fatalf("len=%d checked=%d after clear", s.Len(), s.CheckedCount())
	}
	row, ok := s.Get(survivor)
	if !ok || row.Text != "" || row.Checked || row.Position != 0 {
		t.Fatalf("unexpected survivor %+v ok=%v", row, ok)
	}
}

func TestReplaceFromLinesKeepsTextVerbatim(t *testing.T) {
	s, _ := storeWith(t, "old")
	s.ReplaceFromLines([]string{"  padded ", "", "tail"})
	if got, want := texts(s), []string{"  padded ", "", "tail"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	s.ReplaceFromLines(nil)
	if got, want := texts(s), []string{""}; !reflect.DeepEqual(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
}

func TestSerializeSkipsBlankRows(t *testing.T) {
	s, _ := storeWith(t, "A", "", "B", "")
	if got, want := s.Serialize(), "A\nB\n"; got != want {
		t.Fatalf("serialize = %q, want %q", got, want)
	}
}

func TestSerializeRoundTripKeepsNonBlankText(t *testing.T) {
	s, _ := storeWith(t, "milk", "", "eggs", " bread", "")
	out := s.Serialize()

	lines := strings.Split(out, "\n")
	lines = lines[:len(lines)-1]
	reloaded := NewStore()
	reloaded.ReplaceFromLines(lines)

	if got, want := texts(reloaded), []string{"milk", "eggs", " bread"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	if reloaded.Serialize() != out {
		t.Fatalf("second serialize differs: %q vs %q", reloaded.Serialize(), out)
	}
}

func TestCheckedCountTracksMutations(t *testing.T) {
	s, h := storeWith(t, "A", "B", "C")
	if !s.SetChecked(h[0], true) || !s.SetChecked(h[2], true) {
		t.Fatal("expected check to change state")
	}
	if s.SetChecked(h[2], true) {
		t.Fatal("re-checking must not change state")
	}
	if s.CheckedCount() != 2 {
		t.Fatalf("checked = %d, want 2", s.CheckedCount())
	}
	s.Remove(h[0])
	if s.CheckedCount() != 1 {
		t.Fatalf("checked = %d after removing a checked row, want 1", s.CheckedCount())
	}
	if got := s.Checked(); len(got) != 1 || got[0] != h[2] {
		t.Fatalf("checked handles = %v", got)
	}
}

func TestRandomInsertRemoveKeepsPositionsDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewStore()
	s.InsertAt(0)
	for i := 0; i < 2000; i++ {
		handles := s.Handles()
		pick := handles[rng.Intn(len(handles))]
		switch rng.Intn(4) {
		case 0, 1:
			s.InsertAfter(pick)
		case 2:
			s.Remove(pick)
		case 3:
			s.SetChecked(pick, rng.Intn(2) == 0)
		}
		if err := s.Validate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if s.Len() < 1 {
			t.Fatalf("step %d: store emptied", i)
		}
	}
}
