package worker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sandeepkv93/todofile/internal/mailbox"
	"github.com/sandeepkv93/todofile/internal/storage"
)

var ErrNoJournal = errors.New("worker: activity journal disabled")

const defaultHistoryLimit = 10

type Options struct {
	DataDir string
	// InitialPath, when set, is loaded at startup instead of the most
	// recently modified file. A missing file starts an empty document.
	InitialPath string
	Journal     storage.Journal
	Logger      *zerolog.Logger
}

// Worker owns all blocking file I/O. It reads requests from one queue and
// answers on another; it shares no memory with the router.
type Worker struct {
	dataDir  string
	initial  string
	journal  storage.Journal
	log      zerolog.Logger
	requests *mailbox.Queue[Request]
	results  *mailbox.Queue[any]
}

func New(requests *mailbox.Queue[Request], results *mailbox.Queue[any], opts Options) *Worker {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "worker").Logger()
	}
	return &Worker{
		dataDir:  opts.DataDir,
		initial:  opts.InitialPath,
		journal:  opts.Journal,
		log:      log,
		requests: requests,
		results:  results,
	}
}

// Run performs startup discovery and then serves requests until a
// QuitRequest arrives, the request queue is closed, or ctx is done. It always
// finishes by sending Stopped.
func (w *Worker) Run(ctx context.Context) {
	defer w.emit(Stopped{})

	w.startup(ctx)
	for {
		req, err := w.requests.Recv(ctx)
		if err != nil {
			w.log.Debug().Err(err).Msg("request queue finished")
			return
		}
		switch r := req.(type) {
		case LoadRequest:
			w.load(ctx, r.Path, false)
		case SaveRequest:
			w.save(ctx, r)
		case HistoryRequest:
			w.history(ctx, r.Limit)
		case ActivityRequest:
			w.activity(ctx, r)
		case QuitRequest:
			w.log.Debug().Msg("quit requested")
			return
		default:
			w.log.Warn().Str("type", typeName(req)).Msg("ignoring unknown request")
		}
	}
}

func (w *Worker) startup(ctx context.Context) {
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		w.log.Warn().Err(err).Str("dir", w.dataDir).Msg("cannot create data dir")
	}
	if w.initial != "" {
		w.load(ctx, w.initial, true)
		return
	}
	path, err := storage.MostRecentFile(w.dataDir)
	if err != nil {
		w.log.Info().Err(err).Msg("startup scan failed, starting empty")
		return
	}
	if path == "" {
		w.log.Debug().Msg("no previous document")
		return
	}
	w.load(ctx, path, false)
}

func (w *Worker) load(ctx context.Context, path string, missingIsEmpty bool) {
	resolved := storage.Resolve(w.dataDir, path)
	data, err := storage.ReadText(resolved)
	if err != nil && missingIsEmpty && errors.Is(err, os.ErrNotExist) {
		data, err = "", nil
	}
	w.record(ctx, storage.Entry{Op: storage.OpLoad, Path: resolved, Bytes: len(data), Error: errText(err)})
	if err != nil {
		w.log.Info().Err(err).Str("path", resolved).Msg("load failed")
		w.emit(LoadFailed{Path: resolved, Err: err})
		return
	}
	w.log.Debug().Str("path", resolved).Int("bytes", len(data)).Msg("loaded")
	w.emit(Loaded{Path: resolved, Data: data})
}

func (w *Worker) save(ctx context.Context, req SaveRequest) {
	resolved := storage.Resolve(w.dataDir, req.Path)
	n, err := storage.WriteText(resolved, req.Contents)
	w.record(ctx, storage.Entry{Op: storage.OpSave, Path: resolved, Bytes: n, Error: errText(err)})
	if err != nil {
		w.log.Error().Err(err).Str("path", resolved).Msg("save failed")
		w.emit(SaveFailed{Path: resolved, Err: err})
		return
	}
	w.log.Debug().Str("path", resolved).Int("bytes", n).Msg("saved")
	w.emit(Saved{Path: resolved, Bytes: n})
}

func (w *Worker) history(ctx context.Context, limit int) {
	if w.journal == nil {
		w.emit(History{Err: ErrNoJournal})
		return
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	docs, err := w.journal.RecentDocuments(ctx, limit)
	if err != nil {
		w.log.Warn().Err(err).Msg("journal query failed")
	}
	w.emit(History{Documents: docs, Err: err})
}

func (w *Worker) activity(ctx context.Context, req ActivityRequest) {
	resolved := storage.Resolve(w.dataDir, req.Path)
	if w.journal == nil {
		w.emit(Activity{Path: resolved, Err: ErrNoJournal})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := w.journal.ListEntries(ctx, storage.EntryListFilter{Path: resolved, Limit: limit})
	if err != nil {
		w.log.Warn().Err(err).Str("path", resolved).Msg("journal query failed")
	}
	w.emit(Activity{Path: resolved, Entries: entries, Err: err})
}

func (w *Worker) record(ctx context.Context, entry storage.Entry) {
	if w.journal == nil {
		return
	}
	if _, err := w.journal.Record(ctx, entry); err != nil {
		w.log.Warn().Err(err).Str("op", string(entry.Op)).Msg("journal write failed")
	}
}

// emit never blocks. A closed result queue means the router is gone.
func (w *Worker) emit(v any) {
	if err := w.results.Send(v); err != nil {
		w.log.Debug().Err(err).Str("type", typeName(v)).Msg("result dropped")
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
