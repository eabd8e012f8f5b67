package worker

import "github.com/sandeepkv93/todofile/internal/storage"

// Request is sent from the router to the worker.
type Request interface {
	isRequest()
}

type LoadRequest struct {
	Path string
}

type SaveRequest struct {
	Path     string
	Contents string
}

type HistoryRequest struct {
	Limit int
}

// ActivityRequest asks for the newest journal entries of one document.
type ActivityRequest struct {
	Path  string
	Limit int
}

type QuitRequest struct{}

func (LoadRequest) isRequest()     {}
func (SaveRequest) isRequest()     {}
func (HistoryRequest) isRequest()  {}
func (ActivityRequest) isRequest() {}
func (QuitRequest) isRequest()     {}

// Results flow back to the router. They are delivered as tea messages, so
// they carry no behaviour.

type Loaded struct {
	Path string
	Data string
}

type LoadFailed struct {
	Path string
	Err  error
}

type Saved struct {
	Path  string
	Bytes int
}

type SaveFailed struct {
	Path string
	Err  error
}

type History struct {
	Documents []storage.RecentDocument
	Err       error
}

// Activity lists journal entries for Path, newest first.
type Activity struct {
	Path    string
	Entries []storage.Entry
	Err     error
}

// Stopped is the last message a worker sends before Run returns.
type Stopped struct{}
