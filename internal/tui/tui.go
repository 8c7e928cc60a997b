package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/store"
	"github.com/idilsaglam/shopping/internal/ui"
	"github.com/idilsaglam/shopping/internal/validate"
	"github.com/idilsaglam/shopping/internal/viewmodel"
)

const statusTimeout = 3 * time.Second

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	frameStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// ViewModel is what the screens need from the state projector.
type ViewModel interface {
	States(ctx context.Context) (<-chan viewmodel.State, error)
	AddNewItem(ctx context.Context, text string) error
	CompleteItem(ctx context.Context, item model.Item) error
}

// Options tune the interactive app.
type Options struct {
	CharLimit int
	Now       func() time.Time // clock for captions; defaults to time.Now
}

// messages
type (
	stateMsg        struct{ state viewmodel.State }
	statesClosedMsg struct{}
	intentDoneMsg   struct {
		verb string // "add" | "complete"
		text string
		err  error
	}
	clearStatusMsg struct{ seq int }
)

type modelTUI struct {
	ctx    context.Context
	vm     ViewModel
	states <-chan viewmodel.State
	opt    Options
	keys   keyMap

	state viewmodel.State
	list  list.Model
	spin  spinner.Model
	count int // items in the last Success, to scroll up when it changes

	// add-item sheet
	adding bool
	input  textinput.Model

	status    string
	statusSeq int

	width, height int
}

func newModel(ctx context.Context, vm ViewModel, opt Options) (modelTUI, error) {
	if opt.CharLimit <= 0 {
		opt.CharLimit = 200
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	states, err := vm.States(ctx)
	if err != nil {
		return modelTUI{}, fmt.Errorf("subscribe: %w", err)
	}

	keys := defaultKeys()
	l := list.New(nil, itemDelegate{now: opt.Now}, 0, 0)
	l.Title = "Shopping list"
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = keys.listKeys
	l.AdditionalFullHelpKeys = keys.listKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What do you need to buy?"
	ti.CharLimit = opt.CharLimit

	return modelTUI{
		ctx:    ctx,
		vm:     vm,
		states: states,
		opt:    opt,
		keys:   keys,
		state:  viewmodel.Loading{},
		list:   l,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.Current().Accent)),
		input:  ti,
		width:  80,
		height: 24,
	}, nil
}

// Run starts the interactive app and blocks until the user quits or ctx ends.
func Run(ctx context.Context, vm ViewModel, opt Options) error {
	m, err := newModel(ctx, vm, opt)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func waitForState(ch <-chan viewmodel.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return statesClosedMsg{}
		}
		return stateMsg{st}
	}
}

func (m modelTUI) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForState(m.states))
}

// validateText is the add button's enable check.
func (m modelTUI) validateText(text string) error {
	return validate.ItemText(text, m.opt.CharLimit)
}

func (m modelTUI) addItem(text string) tea.Cmd {
	ctx, vm := m.ctx, m.vm
	return func() tea.Msg {
		return intentDoneMsg{verb: "add", text: text, err: vm.AddNewItem(ctx, text)}
	}
}

func (m modelTUI) completeItem(it model.Item) tea.Cmd {
	ctx, vm := m.ctx, m.vm
	return func() tea.Msg {
		return intentDoneMsg{verb: "complete", text: it.Text, err: vm.CompleteItem(ctx, it)}
	}
}

func (m *modelTUI) setStatus(s string) tea.Cmd {
	m.statusSeq++
	m.status = s
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq} })
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case stateMsg:
		return m.applyState(msg.state)

	case statesClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if _, loading := m.state.(viewmodel.Loading); !loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case intentDoneMsg:
		t := ui.Current()
		if msg.err != nil {
			reason := msg.err.Error()
			switch {
			case errors.Is(msg.err, store.ErrAlreadyCompleted):
				reason = "already bought"
			case errors.Is(msg.err, store.ErrItemNotFound):
				reason = "no longer on the list"
			}
			cmd := m.setStatus(t.Error.Render(fmt.Sprintf("could not %s %q: %s", msg.verb, msg.text, reason)))
			return m, cmd
		}
		verb := "added"
		if msg.verb == "complete" {
			verb = "bought"
		}
		cmd := m.setStatus(t.Success.Render(fmt.Sprintf("%s %s %q", t.SymDone, verb, msg.text)))
		return m, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		// ctrl+c quits even while typing into the sheet or the filter.
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateSheet(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Add):
			if _, ok := m.state.(viewmodel.Success); !ok {
				return m, nil
			}
			m.adding = true
			m.input.Reset()
			m.resize()
			cmd := m.input.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Complete):
			it, ok := m.list.SelectedItem().(listItem)
			if !ok || it.IsCompleted() {
				return m, nil
			}
			return m, m.completeItem(it.Item)
		}
	}

	if _, ok := m.state.(viewmodel.Success); !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateSheet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if m.validateText(text) != nil {
			return m, nil
		}
		m.closeSheet()
		return m, m.addItem(text)
	case key.Matches(msg, m.keys.Cancel):
		m.closeSheet()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *modelTUI) closeSheet() {
	m.adding = false
	m.input.Reset()
	m.input.Blur()
	m.resize()
}

func (m modelTUI) applyState(st viewmodel.State) (tea.Model, tea.Cmd) {
	m.state = st
	cmds := []tea.Cmd{waitForState(m.states)}
	if s, ok := st.(viewmodel.Success); ok {
		m.list.Title = ui.Header(s.Items)
		cmds = append(cmds, m.list.SetItems(toListItems(s.Items)))
		if len(s.Items) != m.count {
			m.list.Select(0)
		}
		m.count = len(s.Items)
	}
	return m, tea.Batch(cmds...)
}

func (m *modelTUI) resize() {
	h := m.height - 4
	if m.adding {
		h -= 4
	}
	if m.status != "" {
		h--
	}
	m.list.SetSize(max(m.width-4, 10), max(h, 4))
}

func (m modelTUI) View() string {
	var content string
	switch st := m.state.(type) {
	case viewmodel.Loading:
		content = m.spin.View() + " Loading your list..."
	case viewmodel.Error:
		t := ui.Current()
		content = t.Error.Render("Something went wrong") + "\n\n" + st.Reason + "\n\n" + helpStyle.Render("q quit")
	case viewmodel.Success:
		content = m.list.View()
		if m.adding {
			content += "\n" + m.sheetView()
		}
	}
	if m.status != "" {
		content += "\n" + m.status
	}
	return frameStyle.Render(content)
}

// sheetView is the add-item sheet. Its action is dimmed while the text
// would be rejected.
func (m modelTUI) sheetView() string {
	t := ui.Current()
	action := t.Muted.Render("enter add")
	if m.validateText(m.input.Value()) == nil {
		action = t.Accent.Render("enter add")
	}
	body := t.Title.Render("Add new item") + "\n" + m.input.View() + "\n" +
		action + helpStyle.Render(" • esc close")
	return frameStyle.Render(body)
}
