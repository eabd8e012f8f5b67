package update

import "github.com/sandeepkv93/todofile/internal/model"

// InsertMsg adds a blank row directly below Handle.
type InsertMsg struct {
	Handle model.Handle
}

type RemoveMsg struct {
	Handle model.Handle
}

type ToggledMsg struct {
	Handle model.Handle
	Active bool
}

// DeleteMsg removes every checked row.
type DeleteMsg struct{}

// ModifiedMsg re-arms the save debouncer.
type ModifiedMsg struct{}

type EditMsg struct {
	Handle model.Handle
	Text   string
}

// SyncToDiskMsg writes the document now, cancelling any pending save.
type SyncToDiskMsg struct{}

// ClosedMsg starts the shutdown handshake with the worker.
type ClosedMsg struct{}

type QuitMsg struct{}

type SetStatusMsg struct {
	Text    string
	IsError bool
}
