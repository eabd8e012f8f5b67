package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width UTC timestamps so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteJournal struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteJournal{db: db, now: time.Now}, nil
}

// OpenSQLite opens (creating if needed) the journal database at path and
// applies migrations.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: journal path is empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	journal, err := NewSQLiteJournal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) Record(ctx context.Context, in Entry) (int64, error) {
	if in.Op != OpLoad && in.Op != OpSave {
		return 0, fmt.Errorf("storage: invalid journal op %q", in.Op)
	}
	at := in.At
	if at.IsZero() {
		at = j.now()
	}
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO journal (op, path, bytes, error, at)
		VALUES (?, ?, ?, ?, ?)`,
		string(in.Op), in.Path, in.Bytes, in.Error, formatTime(at),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (j *SQLiteJournal) ListEntries(ctx context.Context, filter EntryListFilter) ([]Entry, error) {
	query := `SELECT id, op, path, bytes, error, at FROM journal`
	var where []string
	args := make([]any, 0, 4)
	if filter.Op != "" {
		where = append(where, "op = ?")
		args = append(args, string(filter.Op))
	}
	if filter.Path != "" {
		where = append(where, "path = ?")
		args = append(args, filter.Path)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY at DESC, id DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) RecentDocuments(ctx context.Context, limit int) ([]RecentDocument, error) {
	query := `
		SELECT path, MAX(at) AS last_used
		FROM journal
		WHERE error = ''
		GROUP BY path
		ORDER BY last_used DESC`
	args := make([]any, 0, 1)
	query += applyPagination(&args, limit, 0)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentDocument, 0)
	for rows.Next() {
		var doc RecentDocument
		var last string
		if err := rows.Scan(&doc.Path, &last); err != nil {
			return nil, err
		}
		at, err := parseTime(last)
		if err != nil {
			return nil, err
		}
		doc.LastUsed = at
		out = append(out, doc)
	}
	return out, rows.Err()
}

func formatTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var out Entry
	var op, at string
	if err := s.Scan(&out.ID, &op, &out.Path, &out.Bytes, &out.Error, &at); err != nil {
		return Entry{}, err
	}
	parsed, err := parseTime(at)
	if err != nil {
		return Entry{}, err
	}
	out.Op = Op(op)
	out.At = parsed
	return out, nil
}
