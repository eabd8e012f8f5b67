package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/todofile/internal/config"
	"github.com/sandeepkv93/todofile/internal/views"
)

type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Insert        key.Binding
	Remove        key.Binding
	Toggle        key.Binding
	DeleteChecked key.Binding
	Save          key.Binding
	Open          key.Binding
	Palette       key.Binding
	Preview       key.Binding
	Close         key.Binding
	Help          key.Binding
}

func NewKeyMap(cfg config.Keymap) KeyMap {
	bind := func(k, desc string, extra ...string) key.Binding {
		return key.NewBinding(key.WithKeys(append([]string{k}, extra...)...), key.WithHelp(k, desc))
	}
	return KeyMap{
		Up:            bind(cfg.Up, "previous row"),
		Down:          bind(cfg.Down, "next row"),
		Insert:        bind(cfg.Insert, "insert row below"),
		Remove:        bind(cfg.Remove, "remove row"),
		Toggle:        bind(cfg.Toggle, "check/uncheck"),
		DeleteChecked: bind(cfg.DeleteChecked, "delete checked"),
		Save:          bind(cfg.Save, "save now"),
		Open:          bind(cfg.Open, "open file"),
		Palette:       bind(cfg.Palette, "command palette"),
		Preview:       bind(cfg.Preview, "markdown preview"),
		Close:         bind(cfg.Close, "save and quit", "esc"),
		Help:          bind("f1", "toggle help"),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Insert, k.Toggle, k.Save, k.Open, k.Help, k.Close}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Insert, k.Remove},
		{k.Toggle, k.DeleteChecked, k.Save, k.Open},
		{k.Palette, k.Preview, k.Help, k.Close},
	}
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, col := range m.Keys.FullHelp() {
		for _, b := range col {
			plain = append(plain, fmt.Sprintf("- %s: %s", b.Help().Key, b.Help().Desc))
		}
	}
	plain = append(plain, "- palette: open NAME | save [NAME] | delete | recent [N] | quit")
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(m.Keys),
	})
}
