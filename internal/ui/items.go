package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/idilsaglam/shopping/internal/model"
)

const maxTextWidth = 60

// Stats counts bought and pending items.
func Stats(items []model.Item) (bought, pending int) {
	for _, it := range items {
		if it.IsCompleted() {
			bought++
		} else {
			pending++
		}
	}
	return
}

// Header is the title line with live counts.
func Header(items []model.Item) string {
	t := Current()
	b, p := Stats(items)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Shopping list"),
		t.Success.Render(t.SymDone), b,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

// Caption describes when the item was added and, if so, bought.
func Caption(it model.Item, now time.Time) string {
	s := "added " + humanize.RelTime(it.CreatedAt, now, "ago", "from now")
	if it.IsCompleted() {
		s += ", bought " + humanize.RelTime(*it.CompletedAt, now, "ago", "from now")
	}
	return s
}

// ItemLine renders one row: checkbox, text and caption.
func ItemLine(it model.Item, now time.Time) string {
	t := Current()
	text := ansi.Truncate(it.Text, maxTextWidth, "...")
	box := t.Muted.Render(t.BoxUnchecked)
	if it.IsCompleted() {
		box = t.Success.Render(t.BoxChecked)
		text = t.Bought.Render(text)
	}
	return fmt.Sprintf("%s %s  %s", box, text, t.Muted.Render(Caption(it, now)))
}

// FlatLines numbers items from 1 in the order given.
func FlatLines(items []model.Item, now time.Time) []string {
	if len(items) == 0 {
		return []string{Current().Muted.Render("nothing to buy")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := Current().Muted.Render(fmt.Sprintf("%2d.", i+1))
		out = append(out, idx+" "+ItemLine(it, now))
	}
	return out
}

// GroupLines splits items into "To buy" and "Bought" sections.
func GroupLines(items []model.Item, now time.Time) []string {
	t := Current()
	var pend, bought []model.Item
	for _, it := range items {
		if it.IsCompleted() {
			bought = append(bought, it)
		} else {
			pend = append(pend, it)
		}
	}
	section := func(title string, items []model.Item) []string {
		lines := []string{t.Accent.Render(title)}
		if len(items) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, FlatLines(items, now)...)
	}
	lines := section("To buy", pend)
	lines = append(lines, "")
	return append(lines, section("Bought", bought)...)
}

// ListLines builds the panel body: header, progress bar and rows.
func ListLines(items []model.Item, group bool, now time.Time) []string {
	b, p := Stats(items)
	lines := []string{
		Header(items),
		Current().Muted.Render(ProgressBar(b, b+p, 28)),
		"",
	}
	if group {
		lines = append(lines, GroupLines(items, now)...)
	} else {
		lines = append(lines, FlatLines(items, now)...)
	}
	return append(lines, "", Current().Muted.Render(`Tip: add with `+"`shopping add \"Milk\"`"))
}
