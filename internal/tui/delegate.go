package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/ui"
)

// listItem adapts model.Item to list.Item.
type listItem struct{ model.Item }

func (i listItem) FilterValue() string { return i.Text }

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = listItem{it}
	}
	return out
}

// itemDelegate renders two lines per item: checkbox + text, then the caption.
type itemDelegate struct {
	now func() time.Time
}

func (d itemDelegate) Height() int                         { return 2 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()

	box, text := t.Muted.Render(t.BoxUnchecked), it.Text
	if it.IsCompleted() {
		box, text = t.Success.Render(t.BoxChecked), t.Bought.Render(it.Text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s\n", prefix, box, text)
	fmt.Fprintf(w, "    %s", t.Muted.Render(ui.Caption(it.Item, d.now())))
}
