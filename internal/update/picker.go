package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todofile/internal/views"
	"github.com/sandeepkv93/todofile/internal/worker"
)

// openPicker shows the file picker rooted at the data directory and asks the
// worker for the journal's recent documents to list beside it.
func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.newPicker()
	m.PickerVisible = true
	m.editor.Blur()
	if err := m.send(worker.HistoryRequest{}); err != nil {
		m.log.Debug().Err(err).Msg("history request not sent")
	}
	m.Status = StatusBar{Text: "select a file to open"}
	return m, m.picker.Init()
}

func (m *Model) closePicker() {
	m.PickerVisible = false
	m.editor.Focus()
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.closePicker()
		m.Status = StatusBar{Text: "open cancelled"}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if selected, path := m.picker.DidSelectFile(msg); selected {
		m.closePicker()
		m.flushPending()
		if err := m.send(worker.LoadRequest{Path: path}); err != nil {
			m.Status = StatusBar{Text: "open not sent: " + err.Error(), IsError: true}
			return m, cmd
		}
		m.Status = StatusBar{Text: "opening " + path}
	}
	return m, cmd
}

func (m Model) recentData() []views.RecentData {
	out := make([]views.RecentData, 0, len(m.Recent))
	for _, d := range m.Recent {
		out = append(out, views.RecentData{Name: d.Path, When: d.LastUsed.Local().Format(time.DateTime)})
	}
	return out
}
