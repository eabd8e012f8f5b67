package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/sandeepkv93/todofile/internal/config"
	"github.com/sandeepkv93/todofile/internal/logging"
	"github.com/sandeepkv93/todofile/internal/mailbox"
	"github.com/sandeepkv93/todofile/internal/scheduler"
	"github.com/sandeepkv93/todofile/internal/storage"
	"github.com/sandeepkv93/todofile/internal/update"
	"github.com/sandeepkv93/todofile/internal/worker"
	"github.com/spf13/cobra"
)

// workerDrainTimeout bounds how long exit waits for queued saves.
const workerDrainTimeout = 5 * time.Second

type options struct {
	configPath string
	dataDir    string
	saveDelay  time.Duration
	logLevel   string
	journal    string
}

// loadConfig layers the TOML file, TODOFILE_* variables and explicit flags,
// in that order.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Config{}, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg = config.FromEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("save-delay") && opts.saveDelay > 0 {
		cfg.SaveDelayMS = int(opts.saveDelay / time.Millisecond)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("journal") {
		cfg.JournalPath = opts.journal
	}
	return config.ResolvePaths(cfg)
}

func run(ctx context.Context, cfg config.Config, file string) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, logCloser, err := logging.OpenFile(cfg.LogFile, level)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logCloser.Close()
	log.Info().Str("data_dir", cfg.DataDir).Dur("save_delay", cfg.SaveDelay()).Msg("starting")

	journal, journalCloser := openJournal(cfg, log)
	if journalCloser != nil {
		defer journalCloser.Close()
	}

	requests := mailbox.New[worker.Request]()
	results := mailbox.New[any]()

	debouncer := scheduler.NewDebouncer(cfg.SaveDelay(), 1)
	debouncer.Start()
	defer debouncer.Stop()

	w := worker.New(requests, results, worker.Options{
		DataDir:     cfg.DataDir,
		InitialPath: file,
		Journal:     journal,
		Logger:      &log,
	})
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		w.Run(workerCtx)
	}()

	m := update.NewModel(update.Options{
		Requests:  requests,
		Results:   results,
		Debouncer: debouncer,
		DataDir:   cfg.DataDir,
		Keys:      cfg.Keys,
		Logger:    &log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		log.Info().Msg("interrupted")
		runErr = nil
	}
	queueFinalSave(requests, final, log)

	// Requests already queued, including the final save, are still served.
	requests.Close()
	select {
	case <-workerDone:
	case <-time.After(workerDrainTimeout):
		log.Warn().Msg("worker did not finish in time")
		cancelWorker()
	}
	results.Close()
	log.Info().Uint64("dropped_timer_events", debouncer.Dropped()).Msg("stopped")
	return runErr
}

// queueFinalSave covers exits that bypassed the close handshake, such as a
// signal, by queueing whatever the last model state had not saved.
func queueFinalSave(requests *mailbox.Queue[worker.Request], final tea.Model, log zerolog.Logger) {
	m, ok := final.(update.Model)
	if !ok {
		return
	}
	req, ok := m.UnsavedChanges()
	if !ok {
		return
	}
	if err := requests.Send(req); err != nil {
		log.Warn().Err(err).Str("path", req.Path).Msg("final save not queued")
		return
	}
	log.Info().Str("path", req.Path).Msg("final save queued")
}

func openJournal(cfg config.Config, log zerolog.Logger) (storage.Journal, io.Closer) {
	if !cfg.JournalEnabled() {
		return nil, nil
	}
	j, err := storage.OpenSQLite(cfg.JournalPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.JournalPath).Msg("activity journal unavailable")
		return nil, nil
	}
	return j, j
}
