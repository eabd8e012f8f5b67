package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "journal-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	journal, err := NewSQLiteJournal(db)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	return journal
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func onlyEntry(t *testing.T, journal *SQLiteJournal, path string) Entry {
	t.Helper()
	entries, err := journal.ListEntries(context.Background(), EntryListFilter{Path: path})
	if err != nil {
		t.Fatalf("list %q: %v", path, err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry for %q, got %#v", path, entries)
	}
	return entries[0]
}

func TestRecordAndListEntry(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	at := parseRFC3339(t, "2026-02-09T12:00:00Z")

	id, err := journal.Record(ctx, Entry{Op: OpSave, Path: "/data/Default", Bytes: 12, At: at})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got := onlyEntry(t, journal, "/data/Default")
	if got.ID != id || got.Op != OpSave || got.Bytes != 12 || got.Failed() {
		t.Fatalf("unexpected entry: %#v", got)
	}
	if !got.At.Equal(at) {
		t.Fatalf("at = %v, want %v", got.At, at)
	}

	if _, err := journal.Record(ctx, Entry{Op: OpLoad, Path: "/data/gone", Error: "no such file", At: at}); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if failed := onlyEntry(t, journal, "/data/gone"); !failed.Failed() {
		t.Fatalf("expected failed entry: %#v", failed)
	}

	none, err := journal.ListEntries(ctx, EntryListFilter{Path: "/data/other"})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no entries, got %#v err=%v", none, err)
	}
}

func TestRecordRejectsUnknownOp(t *testing.T) {
	journal := setupJournal(t)
	if _, err := journal.Record(context.Background(), Entry{Op: Op("sync"), Path: "x"}); err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	journal := setupJournal(t)
	fixed := parseRFC3339(t, "2026-03-01T08:30:00Z")
	journal.now = func() time.Time { return fixed }

	if _, err := journal.Record(context.Background(), Entry{Op: OpLoad, Path: "notes"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := onlyEntry(t, journal, "notes"); !got.At.Equal(fixed) {
		t.Fatalf("at = %v, want %v", got.At, fixed)
	}
}

func TestListEntriesFiltersAndOrders(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")

	records := []Entry{
		{Op: OpLoad, Path: "a", At: base},
		{Op: OpSave, Path: "a", Bytes: 3, At: base.Add(time.Minute)},
		{Op: OpSave, Path: "b", Error: "disk full", At: base.Add(2 * time.Minute)},
		{Op: OpSave, Path: "a", Bytes: 5, At: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		if _, err := journal.Record(ctx, r); err != nil {
			t.Fatalf("record %+v: %v", r, err)
		}
	}

	saves, err := journal.ListEntries(ctx, EntryListFilter{Op: OpSave})
	if err != nil {
		t.Fatalf("list saves: %v", err)
	}
	if len(saves) != 3 || saves[0].Bytes != 5 {
		t.Fatalf("unexpected saves: %#v", saves)
	}

	page, err := journal.ListEntries(ctx, EntryListFilter{Path: "a", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Bytes != 3 {
		t.Fatalf("unexpected page: %#v", page)
	}

	skipped, err := journal.ListEntries(ctx, EntryListFilter{Offset: 3})
	if err != nil {
		t.Fatalf("list offset only: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Op != OpLoad {
		t.Fatalf("unexpected offset-only result: %#v", skipped)
	}
}

func TestRecentDocumentsIgnoresFailures(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	base := parseRFC3339(t, "2026-02-09T12:00:00Z")

	records := []Entry{
		{Op: OpSave, Path: "groceries", At: base},
		{Op: OpLoad, Path: "work", At: base.Add(time.Minute)},
		{Op: OpSave, Path: "broken", Error: "permission denied", At: base.Add(2 * time.Minute)},
		{Op: OpSave, Path: "groceries", At: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		if _, err := journal.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	docs, err := journal.RecentDocuments(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 recent docs, got %#v", docs)
	}
	if docs[0].Path != "groceries" || docs[1].Path != "work" {
		t.Fatalf("unexpected order: %#v", docs)
	}
	if !docs[0].LastUsed.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("unexpected last used: %v", docs[0].LastUsed)
	}

	limited, err := journal.RecentDocuments(ctx, 1)
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(limited))
	}
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	journal, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer journal.Close()

	if _, err := journal.Record(context.Background(), Entry{Op: OpLoad, Path: "x"}); err != nil {
		t.Fatalf("record after open: %v", err)
	}
}
