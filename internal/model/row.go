package model

import (
	"errors"
	"fmt"
)

var (
	ErrStaleHandle = errors.New("model: stale row handle")
	ErrLastRow     = errors.New("model: cannot remove the last row")
	ErrPositions   = errors.New("model: row positions are not contiguous")
)

// Handle identifies a row independently of its position. Handles are issued
// by a Store and stay valid until the row is removed; a handle to a removed
// row never matches a row created later in the same slot.
type Handle struct {
	slot uint32
	gen  uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "row(none)"
	}
	return fmt.Sprintf("row(%d.%d)", h.slot, h.gen)
}

type Row struct {
	Text     string
	Checked  bool
	Position int
}

func (r Row) IsBlank() bool {
	return r.Text == ""
}
