package update

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todofile/internal/commands"
	"github.com/sandeepkv93/todofile/internal/worker"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m *Model) closePalette() {
	m.Palette = CommandPaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	m.editor.Focus()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var quit bool
	res, err := commands.Execute(cmd, commands.Handlers{
		Open: func(a commands.OpenArgs) (commands.Result, error) {
			m.flushPending()
			if err := m.send(worker.LoadRequest{Path: a.Name}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("opening %s", a.Name)}, nil
		},
		Save: func(a commands.SaveArgs) (commands.Result, error) {
			if name := strings.TrimSpace(a.Name); name != "" {
				m.DocPath = name
				m.Subtitle = filepath.Base(name)
			}
			if err := m.applySyncToDisk(); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("saving %s", m.Subtitle)}, nil
		},
		Delete: func() (commands.Result, error) {
			if !m.ShowDelete {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no checked rows to delete"}
			}
			m.applyDelete()
			return commands.Result{Message: m.Status.Text}, nil
		},
		Recent: func(a commands.RecentArgs) (commands.Result, error) {
			if err := m.send(worker.HistoryRequest{Limit: a.Limit}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "loading recent documents"}, nil
		},
		Activity: func(a commands.ActivityArgs) (commands.Result, error) {
			if err := m.send(worker.ActivityRequest{Path: m.DocPath, Limit: a.Limit}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("loading activity for %s", m.Subtitle)}, nil
		},
		Quit: func() (commands.Result, error) {
			quit = true
			return commands.Result{}, nil
		},
	})
	if err != nil {
		var ce *commands.CommandError
		if !errors.As(err, &ce) {
			m.log.Warn().Err(err).Str("command", string(cmd.Type)).Msg("palette command failed")
		}
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if quit {
		return m.applyClosed()
	}
	m.Status = StatusBar{Text: res.Message}
	return m, nil
}
