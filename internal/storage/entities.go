package storage

import "time"

type Op string

const (
	OpLoad Op = "load"
	OpSave Op = "save"
)

// Entry is one line of the activity journal: a load or save attempt and its
// outcome. Error is empty on success.
type Entry struct {
	ID    int64
	Op    Op
	Path  string
	Bytes int
	Error string
	At    time.Time
}

func (e Entry) Failed() bool {
	return e.Error != ""
}

type EntryListFilter struct {
	Op     Op
	Path   string
	Limit  int
	Offset int
}

// RecentDocument is a path that was loaded or saved successfully, with the
// time of its latest such operation.
type RecentDocument struct {
	Path     string
	LastUsed time.Time
}
