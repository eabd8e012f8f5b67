package model

import (
	"fmt"
	"strings"
)

type slot struct {
	row  Row
	gen  uint32
	live bool
}

// Store is the ordered set of rows of one document. Rows are addressed by
// Handle; positions are kept dense in [0, Len()).
type Store struct {
	slots   []slot
	free    []uint32
	count   int
	checked int
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Len() int {
	return s.count
}

func (s *Store) CheckedCount() int {
	return s.checked
}

func (s *Store) Get(h Handle) (Row, bool) {
	sl, ok := s.lookup(h)
	if !ok {
		return Row{}, false
	}
	return sl.row, true
}

func (s *Store) Contains(h Handle) bool {
	_, ok := s.lookup(h)
	return ok
}

// At returns the handle of the row at pos.
func (s *Store) At(pos int) (Handle, bool) {
	if pos < 0 || pos >= s.count {
		return Handle{}, false
	}
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].row.Position == pos {
			return Handle{slot: uint32(i), gen: s.slots[i].gen}, true
		}
	}
	return Handle{}, false
}

// Handles lists live handles in position order.
func (s *Store) Handles() []Handle {
	out := make([]Handle, s.count)
	for i := range s.slots {
		if !s.slots[i].live {
			continue
		}
		out[s.slots[i].row.Position] = Handle{slot: uint32(i), gen: s.slots[i].gen}
	}
	return out
}

// Rows returns a snapshot of all rows in position order.
func (s *Store) Rows() []Row {
	out := make([]Row, s.count)
	for i := range s.slots {
		if s.slots[i].live {
			out[s.slots[i].row.Position] = s.slots[i].row
		}
	}
	return out
}

// Checked lists the handles of checked rows in position order.
func (s *Store) Checked() []Handle {
	out := make([]Handle, 0, s.checked)
	for _, h := range s.Handles() {
		if s.slots[h.slot].row.Checked {
			out = append(out, h)
		}
	}
	return out
}

// InsertAfter creates an empty row directly below anchor. A zero or stale
// anchor inserts at the top.
func (s *Store) InsertAfter(anchor Handle) Handle {
	pos := 0
	if sl, ok := s.lookup(anchor); ok {
		pos = sl.row.Position + 1
	}
	return s.InsertAt(pos)
}

func (s *Store) InsertAt(pos int) Handle {
	if pos < 0 {
		pos = 0
	}
	if pos > s.count {
		pos = s.count
	}
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].row.Position >= pos {
			s.slots[i].row.Position++
		}
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{})
		idx = uint32(len(s.slots) - 1)
	}
	sl := &s.slots[idx]
	sl.gen++
	sl.live = true
	sl.row = Row{Position: pos}
	s.count++
	return Handle{slot: idx, gen: sl.gen}
}

// Remove deletes the row behind h. The last remaining row is never removed.
func (s *Store) Remove(h Handle) (Row, bool) {
	row, err := s.RemoveErr(h)
	return row, err == nil
}

func (s *Store) RemoveErr(h Handle) (Row, error) {
	sl, ok := s.lookup(h)
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	if s.count == 1 {
		return Row{}, ErrLastRow
	}
	removed := sl.row
	sl.live = false
	sl.row = Row{}
	s.free = append(s.free, h.slot)
	s.count--
	if removed.Checked {
		s.checked--
	}
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].row.Position > removed.Position {
			s.slots[i].row.Position--
		}
	}
	return removed, nil
}

// Clear removes rows one at a time until a single blank, unchecked row is
// left.
func (s *Store) Clear() Handle {
	if s.count == 0 {
		return s.InsertAt(0)
	}
	for _, h := range s.Handles() {
		s.Remove(h)
	}
	survivor, _ := s.At(0)
	s.SetText(survivor, "")
	s.SetChecked(survivor, false)
	return survivor
}

// ReplaceFromLines resets the store to one row per line, in order. Text is
// kept verbatim. With no lines the store holds a single blank row.
func (s *Store) ReplaceFromLines(lines []string) []Handle {
	first := s.Clear()
	out := []Handle{first}
	if len(lines) == 0 {
		return out
	}
	s.SetText(first, lines[0])
	prev := first
	for _, line := range lines[1:] {
		prev = s.InsertAfter(prev)
		s.SetText(prev, line)
		out = append(out, prev)
	}
	return out
}

func (s *Store) SetText(h Handle, text string) bool {
	sl, ok := s.lookup(h)
	if !ok {
		return false
	}
	sl.row.Text = text
	return true
}

// SetChecked reports whether the flag actually changed.
func (s *Store) SetChecked(h Handle, checked bool) bool {
	sl, ok := s.lookup(h)
	if !ok || sl.row.Checked == checked {
		return false
	}
	sl.row.Checked = checked
	if checked {
		s.checked++
	} else {
		s.checked--
	}
	return true
}

// Serialize writes every non-blank row followed by a newline, in position
// order. Blank rows are placeholders and are not written.
func (s *Store) Serialize() string {
	var b strings.Builder
	for _, row := range s.Rows() {
		if row.IsBlank() {
			continue
		}
		b.WriteString(row.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Validate checks that positions form [0, Len()) with no duplicates and that
// the checked counter matches the rows.
func (s *Store) Validate() error {
	seen := make([]bool, s.count)
	checked := 0
	live := 0
	for i := range s.slots {
		sl := s.slots[i]
		if !sl.live {
			continue
		}
		live++
		p := sl.row.Position
		if p < 0 || p >= s.count || seen[p] {
			return fmt.Errorf("%w: slot %d at position %d", ErrPositions, i, p)
		}
		seen[p] = true
		if sl.row.Checked {
			checked++
		}
	}
	if live != s.count {
		return fmt.Errorf("%w: %d live rows, count %d", ErrPositions, live, s.count)
	}
	if checked != s.checked {
		return fmt.Errorf("model: checked count %d, rows say %d", s.checked, checked)
	}
	return nil
}

func (s *Store) lookup(h Handle) (*slot, bool) {
	if h.IsZero() || int(h.slot) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[h.slot]
	if !sl.live || sl.gen != h.gen {
		return nil, false
	}
	return sl, true
}
