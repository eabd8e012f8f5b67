package update

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todofile/internal/model"
	"github.com/sandeepkv93/todofile/internal/storage"
	"github.com/sandeepkv93/todofile/internal/worker"
)

func (m *Model) applyInsert(anchor model.Handle) {
	h := m.Store.InsertAfter(anchor)
	m.setFocus(h)
}

// applyRemove relies on the store to keep the last row.
func (m *Model) applyRemove(h model.Handle) {
	row, ok := m.Store.Get(h)
	if !ok {
		return
	}
	if _, removed := m.Store.Remove(h); !removed {
		m.Status = StatusBar{Text: "the last row cannot be removed"}
		return
	}
	m.dirty = true
	if h == m.Focus {
		m.focusPosition(row.Position)
	}
	m.ShowDelete = m.Store.CheckedCount() != 0
}

func (m *Model) applyToggled(h model.Handle, active bool) {
	m.Store.SetChecked(h, active)
	m.ShowDelete = m.Store.CheckedCount() != 0
}

func (m *Model) applyDelete() {
	focusPos := 0
	if row, ok := m.Store.Get(m.Focus); ok {
		focusPos = row.Position
	}
	removed := 0
	for _, h := range m.Store.Checked() {
		if _, ok := m.Store.Remove(h); ok {
			removed++
		}
	}
	if removed > 0 {
		m.dirty = true
	}
	// A checked last row survives removal; it must not stay counted.
	for _, h := range m.Store.Checked() {
		m.Store.SetChecked(h, false)
	}
	m.ShowDelete = false
	if !m.Store.Contains(m.Focus) {
		m.focusPosition(focusPos)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %d checked row(s)", removed)}
}

func (m *Model) applyModified() {
	m.dirty = true
	if m.debouncer == nil {
		return
	}
	if _, err := m.debouncer.Arm(); err != nil {
		m.log.Warn().Err(err).Msg("cannot arm save timer")
	}
}

func (m *Model) applyEdit(h model.Handle, text string) {
	if !m.Store.SetText(h, text) {
		return
	}
	if h == m.Focus && m.editor.Value() != text {
		m.editor.SetValue(text)
	}
	m.applyModified()
}

// applyLoaded replaces the document. Unsaved changes to the previous
// document are flushed to its own path first. Loading is not a modification,
// so no save timer survives it.
func (m *Model) applyLoaded(l worker.Loaded) {
	m.flushPending()
	if m.debouncer != nil {
		m.debouncer.Cancel()
	}
	m.dirty = false
	handles := m.Store.ReplaceFromLines(storage.SplitLines(l.Data))
	m.DocPath = l.Path
	m.Subtitle = filepath.Base(l.Path)
	m.ShowDelete = m.Store.CheckedCount() != 0
	m.setFocus(handles[0])
	m.Status = StatusBar{Text: fmt.Sprintf("opened %s", m.Subtitle)}
	m.log.Debug().Str("path", l.Path).Int("rows", len(handles)).Msg("document loaded")
}

func (m *Model) applySyncToDisk() error {
	if m.debouncer != nil {
		m.debouncer.Cancel()
	}
	err := m.send(worker.SaveRequest{Path: m.DocPath, Contents: m.Store.Serialize()})
	if err != nil {
		m.log.Warn().Err(err).Str("path", m.DocPath).Msg("save request not sent")
		m.Status = StatusBar{Text: fmt.Sprintf("save not sent: %v", err), IsError: true}
		return err
	}
	m.dirty = false
	return nil
}

// flushPending saves the current document if it changed since the last save
// request. Called before another document replaces it.
func (m *Model) flushPending() {
	if m.dirty {
		_ = m.applySyncToDisk()
	}
}

// UnsavedChanges returns the save request for changes the worker has not
// been asked to write yet.
func (m Model) UnsavedChanges() (worker.SaveRequest, bool) {
	if !m.dirty {
		return worker.SaveRequest{}, false
	}
	return worker.SaveRequest{Path: m.DocPath, Contents: m.Store.Serialize()}, true
}

// applyClosed flushes the document and asks the worker to stop. The worker
// answers with Stopped, which ends the program. A second close, or a worker
// that can no longer be reached, quits at once.
func (m Model) applyClosed() (Model, tea.Cmd) {
	if m.closing {
		m.Quitting = true
		return m, tea.Quit
	}
	m.closing = true
	_ = m.applySyncToDisk()
	if err := m.send(worker.QuitRequest{}); err != nil {
		m.log.Info().Err(err).Msg("worker unreachable, quitting")
		m.Quitting = true
		return m, tea.Quit
	}
	m.Status = StatusBar{Text: "saving and closing"}
	return m, nil
}

func (m *Model) applyWorkerResult(msg tea.Msg) {
	switch r := msg.(type) {
	case worker.Loaded:
		m.applyLoaded(r)
	case worker.LoadFailed:
		m.Status = StatusBar{Text: fmt.Sprintf("cannot open %s: %v", filepath.Base(r.Path), r.Err), IsError: true}
	case worker.Saved:
		m.Status = StatusBar{Text: fmt.Sprintf("saved %d bytes to %s", r.Bytes, filepath.Base(r.Path))}
	case worker.SaveFailed:
		m.Status = StatusBar{Text: fmt.Sprintf("save failed for %s: %v", filepath.Base(r.Path), r.Err), IsError: true}
	case worker.History:
		if r.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("recent documents unavailable: %v", r.Err), IsError: true}
			return
		}
		m.Recent = r.Documents
		if !m.PickerVisible {
			m.Status = StatusBar{Text: recentSummary(r.Documents)}
		}
	case worker.Activity:
		if r.Err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("activity unavailable: %v", r.Err), IsError: true}
			return
		}
		m.Status = StatusBar{Text: activitySummary(r.Path, r.Entries)}
	}
}

func (m *Model) send(req worker.Request) error {
	if m.requests == nil {
		return errNoWorker
	}
	return m.requests.Send(req)
}

func (m *Model) setFocus(h model.Handle) {
	m.Focus = h
	row, _ := m.Store.Get(h)
	m.editor.SetValue(row.Text)
	m.editor.CursorEnd()
}

func (m *Model) focusPosition(pos int) {
	if pos >= m.Store.Len() {
		pos = m.Store.Len() - 1
	}
	if pos < 0 {
		pos = 0
	}
	if h, ok := m.Store.At(pos); ok {
		m.setFocus(h)
	}
}

func (m *Model) moveFocus(delta int) {
	row, ok := m.Store.Get(m.Focus)
	if !ok {
		m.focusPosition(0)
		return
	}
	m.focusPosition(row.Position + delta)
}

func recentSummary(docs []storage.RecentDocument) string {
	if len(docs) == 0 {
		return "no recent documents"
	}
	out := "recent:"
	for i, d := range docs {
		if i > 0 {
			out += ","
		}
		out += " " + filepath.Base(d.Path)
	}
	return out
}

func activitySummary(path string, entries []storage.Entry) string {
	name := filepath.Base(path)
	if len(entries) == 0 {
		return "no activity for " + name
	}
	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
		}
	}
	last := entries[0]
	outcome := "ok"
	if last.Failed() {
		outcome = "failed: " + last.Error
	}
	return fmt.Sprintf("%s: %d entries, %d failed; last %s %s", name, len(entries), failed, last.Op, outcome)
}
