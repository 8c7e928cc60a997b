package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/shopping/internal/model"
	"github.com/idilsaglam/shopping/internal/store"
	"github.com/idilsaglam/shopping/internal/store/memstore"
	"github.com/idilsaglam/shopping/internal/tui"
	"github.com/idilsaglam/shopping/internal/ui"
	"github.com/idilsaglam/shopping/internal/validate"
	"github.com/idilsaglam/shopping/internal/viewmodel"
)

// Options tune behavior from root flags. Zero streams default to the process's.
type Options struct {
	Group     bool // list grouped by to buy/bought
	JSON      bool // ls prints JSON
	Seed      int  // placeholder items the list starts with
	CharLimit int

	Log    *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Store options, e.g. a fixed clock in tests.
	StoreOptions []memstore.Option
	Now          func() time.Time
}

func (o *Options) defaults() {
	if o.Log == nil {
		o.Log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.CharLimit <= 0 {
		o.CharLimit = 200
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// app is one process-lifetime wiring of store and view-model.
type app struct {
	opt   Options
	store *memstore.Store
	vm    *viewmodel.ViewModel
}

func newApp(opt Options) *app {
	s := memstore.New(append([]memstore.Option{memstore.WithSeed(opt.Seed)}, opt.StoreOptions...)...)
	return &app{opt: opt, store: s, vm: viewmodel.New(s, opt.Log)}
}

// items is the current list in display order.
func (a *app) items() []model.Item { return viewmodel.Sort(a.store.Snapshot()) }

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// Without a subcommand the interactive app starts.
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	cmd, a := "tui", []string(nil)
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}
	opt.Log.DebugContext(ctx, "run", "cmd", cmd, "args", len(a))

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "tui":
		return doTUI(ctx, newApp(opt))

	case "ls":
		return doList(newApp(opt))

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: shopping add <text...>")
			return 2
		}
		return doAdd(ctx, newApp(opt), strings.Join(a, " "))

	case "shell":
		return doShell(ctx, newApp(opt))
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `shopping - a tiny shopping list

Usage:
  shopping [subcommand] [args] [flags]

Subcommands:
  tui                Interactive list (default)
  ls                 Print the list (--group, --json)
  add <text...>      Add an item and print the list
  shell              Read commands from stdin: add <text>, done <n>, ls, quit
  help               Show this help

The list lives in memory and starts with placeholder items (--seed).

Examples:
  shopping
  shopping ls --group
  shopping add "Oat milk"
  printf 'add Eggs\ndone 1\nls\n' | shopping shell
`)
}

// -------------- subcommand impls ----------------

func doTUI(ctx context.Context, a *app) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.store.Close()
	defer a.vm.Close()

	a.vm.Start(ctx)
	err := tui.Run(ctx, a.vm, tui.Options{CharLimit: a.opt.CharLimit, Now: a.opt.Now})
	if err != nil {
		a.opt.Log.ErrorContext(ctx, "tui failed", "error", err)
		ui.Fail(a.opt.Stderr, "tui: "+err.Error())
		return 1
	}
	return 0
}

func doList(a *app) int {
	if err := a.printList(); err != nil {
		ui.Fail(a.opt.Stderr, "ls: "+err.Error())
		return 1
	}
	return 0
}

func (a *app) printList() error {
	items := a.items()
	if a.opt.JSON {
		enc := json.NewEncoder(a.opt.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	}
	ui.Panel(a.opt.Stdout, ui.ListLines(items, a.opt.Group, a.opt.Now()))
	return nil
}

func doAdd(ctx context.Context, a *app, text string) int {
	if code := a.add(ctx, text); code != 0 {
		return code
	}
	return doList(a)
}

func (a *app) add(ctx context.Context, text string) int {
	text = strings.TrimSpace(text)
	if err := validate.ItemText(text, a.opt.CharLimit); err != nil {
		ui.Fail(a.opt.Stderr, "add: "+err.Error())
		return 2
	}
	if err := a.vm.AddNewItem(ctx, text); err != nil {
		ui.Fail(a.opt.Stderr, "add: "+err.Error())
		return 1
	}
	ui.OK(a.opt.Stdout, "added "+strconv.Quote(text))
	return 0
}

// complete marks the item at a 1-based index of the displayed order.
func (a *app) complete(ctx context.Context, userIndex int) int {
	items := a.items()
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(a.opt.Stderr, fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(a.opt.Stderr, ui.Current().Muted.Render("Hint: run `ls` to see valid indexes"))
		return 2
	}
	it := items[userIndex-1]
	if err := a.vm.CompleteItem(ctx, it); err != nil {
		if errors.Is(err, store.ErrAlreadyCompleted) {
			ui.Fail(a.opt.Stderr, fmt.Sprintf("%q is already bought", it.Text))
			return 2
		}
		ui.Fail(a.opt.Stderr, "done: "+err.Error())
		return 1
	}
	ui.OK(a.opt.Stdout, "bought "+strconv.Quote(it.Text))
	return 0
}

// doShell runs line commands against one store until EOF or quit. The exit
// code is that of the last failing command, or 0.
func doShell(ctx context.Context, a *app) int {
	defer a.store.Close()

	code := 0
	sc := bufio.NewScanner(a.opt.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			break
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		cmd, rest := fields[0], fields[1:]

		var c int
		switch cmd {
		case "quit", "exit":
			return code
		case "ls":
			c = doList(a)
		case "add":
			if len(rest) == 0 {
				ui.Fail(a.opt.Stderr, "usage: add <text...>")
				c = 2
				break
			}
			c = a.add(ctx, strings.Join(rest, " "))
		case "done":
			if len(rest) != 1 {
				ui.Fail(a.opt.Stderr, "usage: done <index>")
				c = 2
				break
			}
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				ui.Fail(a.opt.Stderr, "done: not a number: "+rest[0])
				c = 2
				break
			}
			c = a.complete(ctx, n)
		case "help":
			fmt.Fprintln(a.opt.Stdout, "commands: add <text...>, done <index>, ls, quit")
		default:
			ui.Fail(a.opt.Stderr, "unknown command: "+cmd)
			c = 2
		}
		if c != 0 {
			code = c
		}
	}
	if err := sc.Err(); err != nil {
		ui.Fail(a.opt.Stderr, "read: "+err.Error())
		return 1
	}
	return code
}
