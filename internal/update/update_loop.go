package update

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todofile/internal/mailbox"
	"github.com/sandeepkv93/todofile/internal/scheduler"
	"github.com/sandeepkv93/todofile/internal/views"
	"github.com/sandeepkv93/todofile/internal/worker"
)

const appTitle = "todofile"

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForResultCmd(m.results), waitForFiredCmd(m.debouncer))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.helpModel.Width = typed.Width
		if m.PickerVisible {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(typed)
			return m, cmd
		}
		return m, nil
	case InsertMsg:
		m.applyInsert(typed.Handle)
		return m, nil
	case RemoveMsg:
		m.applyRemove(typed.Handle)
		return m, nil
	case ToggledMsg:
		m.applyToggled(typed.Handle, typed.Active)
		return m, nil
	case DeleteMsg:
		m.applyDelete()
		return m, nil
	case ModifiedMsg:
		m.applyModified()
		return m, nil
	case EditMsg:
		m.applyEdit(typed.Handle, typed.Text)
		return m, nil
	case SyncToDiskMsg:
		_ = m.applySyncToDisk()
		return m, nil
	case ClosedMsg:
		return m.applyClosed()
	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case scheduler.Fired:
		if m.debouncer != nil && m.debouncer.IsCurrent(typed.Gen) {
			_ = m.applySyncToDisk()
		} else {
			m.log.Debug().Uint64("gen", typed.Gen).Msg("stale save timer ignored")
		}
		return m, waitForFiredCmd(m.debouncer)
	case worker.Stopped:
		m.Quitting = true
		return m, tea.Quit
	case worker.Loaded, worker.LoadFailed, worker.Saved, worker.SaveFailed, worker.History, worker.Activity:
		m.applyWorkerResult(typed)
		return m, waitForResultCmd(m.results)
	}

	if m.PickerVisible {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Inside an overlay esc only dismisses it; the other close keys still quit.
	if (m.PickerVisible || m.Palette.Active) && msg.String() != "esc" && key.Matches(msg, m.Keys.Close) {
		if m.PickerVisible {
			m.closePicker()
		}
		if m.Palette.Active {
			m.closePalette()
		}
		return m.applyClosed()
	}
	if m.PickerVisible {
		return m.handlePickerKey(msg)
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Close):
		return m.applyClosed()
	case key.Matches(msg, m.Keys.Up):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.Keys.Down):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.Keys.Insert):
		// Enter on a blank row does nothing.
		if row, ok := m.Store.Get(m.Focus); ok && !row.IsBlank() {
			m.applyInsert(m.Focus)
		}
		return m, nil
	case key.Matches(msg, m.Keys.Remove):
		m.applyRemove(m.Focus)
		return m, nil
	case key.Matches(msg, m.Keys.Toggle):
		if row, ok := m.Store.Get(m.Focus); ok {
			m.applyToggled(m.Focus, !row.Checked)
		}
		return m, nil
	case key.Matches(msg, m.Keys.DeleteChecked):
		if m.ShowDelete {
			m.applyDelete()
		}
		return m, nil
	case key.Matches(msg, m.Keys.Save):
		_ = m.applySyncToDisk()
		return m, nil
	case key.Matches(msg, m.Keys.Open):
		return m.openPicker()
	case key.Matches(msg, m.Keys.Palette):
		m.Palette = CommandPaletteState{Active: true}
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.editor.Blur()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case key.Matches(msg, m.Keys.Preview):
		m.PreviewVisible = !m.PreviewVisible
		return m, nil
	case key.Matches(msg, m.Keys.Help):
		m.HelpVisible = !m.HelpVisible
		m.helpModel.ShowAll = m.HelpVisible
		return m, nil
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.applyEdit(m.Focus, after)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	rows := m.rowData()
	body := views.RenderRows(rows)
	if action := views.RenderDeleteAction(m.ShowDelete, m.Keys.DeleteChecked.Help().Key, m.Store.CheckedCount()); action != "" {
		body += "\n\n" + action
	}

	var side []string
	switch {
	case m.PickerVisible:
		side = append(side, views.RenderOpenPanel(m.picker.View(), m.recentData()))
	case m.Palette.Active:
		side = append(side, views.RenderCommandPalette(true, m.commandInput.View()))
	}
	if m.PreviewVisible {
		side = append(side, views.RenderMarkdown(views.ChecklistMarkdown(m.Subtitle, rows)))
	}
	if m.HelpVisible {
		side = append(side, m.renderHelpView())
	}

	return views.RenderApp(views.AppData{
		Header:      appTitle,
		Subtitle:    m.Subtitle,
		Body:        body,
		SidePane:    strings.Join(side, "\n\n"),
		StatusLine:  m.Status.Text,
		StatusError: m.Status.IsError,
		Footer:      m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
	})
}

func (m Model) rowData() []views.RowData {
	rows := m.Store.Rows()
	handles := m.Store.Handles()
	out := make([]views.RowData, 0, len(rows))
	for i, row := range rows {
		rd := views.RowData{Text: row.Text, Checked: row.Checked}
		if handles[i] == m.Focus {
			rd.Focused = true
			if !m.PickerVisible && !m.Palette.Active {
				rd.EditorView = m.editor.View()
			}
		}
		out = append(out, rd)
	}
	return out
}

// waitForResultCmd delivers the next worker result. It must be re-issued
// after every result so exactly one receive is outstanding.
func waitForResultCmd(q *mailbox.Queue[any]) tea.Cmd {
	if q == nil {
		return nil
	}
	return func() tea.Msg {
		v, err := q.Recv(context.Background())
		if err != nil {
			return nil
		}
		return v
	}
}

func waitForFiredCmd(d *scheduler.Debouncer) tea.Cmd {
	if d == nil {
		return nil
	}
	ch := d.C()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}
