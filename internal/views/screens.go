package views

import (
	"fmt"
	"strings"
)

type RowData struct {
	Text    string
	Checked bool
	Focused bool
	// EditorView replaces Text on the focused row.
	EditorView string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

type RecentData struct {
	Name string
	When string
}

func RenderRows(rows []RowData) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		cursor := " "
		if row.Focused {
			cursor = cursorStyle.Render(">")
		}
		box := "[ ]"
		if row.Checked {
			box = "[x]"
		}
		text := row.Text
		switch {
		case row.Focused && row.EditorView != "":
			text = row.EditorView
		case row.Checked:
			text = checkedStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, box, text))
	}
	return b.String()
}

// ChecklistMarkdown renders the document as a GitHub style task list. Blank
// rows are skipped, matching what gets written to disk.
func ChecklistMarkdown(title string, rows []RowData) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	n := 0
	for _, row := range rows {
		if row.Text == "" {
			continue
		}
		mark := " "
		if row.Checked {
			mark = "x"
		}
		b.WriteString(fmt.Sprintf("- [%s] %s\n", mark, row.Text))
		n++
	}
	if n == 0 {
		b.WriteString("_nothing to do_\n")
	}
	return b.String()
}

func RenderDeleteAction(visible bool, key string, checked int) string {
	if !visible {
		return ""
	}
	return fmt.Sprintf("[%s] delete %d checked", key, checked)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}

func RenderOpenPanel(pickerView string, recent []RecentData) string {
	var b strings.Builder
	b.WriteString("open:\n")
	b.WriteString(pickerView)
	if len(recent) > 0 {
		b.WriteString("\n\nrecent:\n")
		for _, r := range recent {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", r.Name, r.When))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
