package storage

import "context"

type Journal interface {
	Record(ctx context.Context, in Entry) (int64, error)
	ListEntries(ctx context.Context, filter EntryListFilter) ([]Entry, error)
	RecentDocuments(ctx context.Context, limit int) ([]RecentDocument, error)
}
