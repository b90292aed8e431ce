package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/bridge"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/config"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/picker"
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// openFacade connects to the local window system. The returned func closes it.
func openFacade() (*automation.Facade, func(), error) {
	backend, err := platform.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open window system")
	}
	return automation.New(backend), func() { backend.Close() }, nil
}

// parseHandle accepts decimal or 0x-prefixed hex.
func parseHandle(s string) (platform.WindowHandle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return platform.WindowHandle{}, errors.New("--handle is required")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return platform.WindowHandle{}, errors.Errorf("invalid window handle %q", s)
	}
	return platform.HandleFromRaw(uintptr(v)), nil
}

func sortedCommands() []string {
	names := bridge.Commands()
	sort.Strings(names)
	return names
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output JSON (default when stdout is not a terminal)")
	filter := fs.String("filter", "", "Only windows whose title contains this text (case-insensitive)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge windows [--json] [--filter TEXT]")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return 2
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	var windows []automation.WindowEntry
	if *filter != "" {
		windows = facade.FindWindowsByTitle(*filter)
	} else {
		windows = facade.VisibleWindows()
	}

	if *jsonOut || !isTTY(os.Stdout) {
		return printJSON(os.Stdout, windows)
	}
	printWindowTable(os.Stdout, windows)
	return 0
}

func printJSON(w io.Writer, v interface{}) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printWindowTable(w io.Writer, windows []automation.WindowEntry) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "No visible windows.")
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(14)
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-14s%s", "HANDLE", "TITLE")))
	for _, win := range windows {
		handle := strconv.FormatUint(uint64(win.Handle.Raw()), 10)
		fmt.Fprintln(w, handleStyle.Render(handle)+titleStyle.Render(win.Title))
	}
}

func runForeground(args []string) int {
	fs := flag.NewFlagSet("foreground", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge foreground")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print the title and rectangle of the focused window as JSON.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	info, ok := facade.ForegroundWindowInfo()
	if !ok {
		fmt.Println("null")
		return 0
	}
	return printJSON(os.Stdout, info)
}

func runKeys(args []string) int {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	handleFlag := fs.String("handle", "", "Target window handle")
	kindFlag := fs.String("kind", "", "Keystroke sequence: enter or ctrlv")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge keys --handle N --kind enter|ctrlv")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	h, err := parseHandle(*handleFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	kind, ok := automation.ParseKeystrokeKind(*kindFlag)
	if !ok {
		fmt.Fprintf(os.Stderr, "%v: %q\n", automation.ErrUnknownKeystroke, *kindFlag)
		return 2
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if _, err := facade.SendKeystrokes(h, kind); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runType(args []string) int {
	fs := flag.NewFlagSet("type", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	handleFlag := fs.String("handle", "", "Target window handle")
	post := fs.Bool("post", false, "Queue characters without waiting for the window")
	delay := fs.Int("delay", -1, "Delay between characters in ms (default: typing.delay_ms)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge type --handle N [--post] [--delay MS] <text>")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "type requires exactly one text argument")
		fs.Usage()
		return 2
	}

	h, err := parseHandle(*handleFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	d := automation.DefaultStringDelay
	if *delay >= 0 {
		d = time.Duration(*delay) * time.Millisecond
	} else if cfg, err := config.Load(); err == nil {
		d = cfg.StringDelay()
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := typeInto(ctx, facade, h, fs.Arg(0), d, *post); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var errNothingDelivered = errors.New("no character was delivered")

func typeInto(ctx context.Context, facade *automation.Facade, h platform.WindowHandle, text string, d time.Duration, post bool) error {
	var ok bool
	if post {
		ok = facade.PostString(ctx, h, text, d)
	} else {
		ok = facade.SendString(ctx, h, text, d)
	}
	if !ok {
		return errNothingDelivered
	}
	return nil
}

func runClipboard(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge clipboard set <text>")
		return 2
	}
	if args[0] != "set" {
		fmt.Fprintf(os.Stderr, "Unknown clipboard command: %s\n", args[0])
		return 2
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "clipboard set requires exactly one text argument")
		return 2
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if _, err := facade.SetClipboardText(args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPaste(args []string) int {
	fs := flag.NewFlagSet("paste", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	handleFlag := fs.String("handle", "", "Target window handle")
	message := fs.Bool("message", false, "Send a paste message instead of Ctrl+V")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge paste --handle N [--message]")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	h, err := parseHandle(*handleFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	if *message {
		if !facade.PasteClipboard(h) {
			fmt.Fprintln(os.Stderr, "window did not accept the paste message")
			return 1
		}
		return 0
	}
	facade.SendPaste(h)
	return 0
}

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	paste := fs.Bool("paste", false, "Ask for text and paste it into the chosen window")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskbridge pick [--paste]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Choose a window and print its handle.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	facade, closeFn, err := openFacade()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	target, err := picker.Pick(facade)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, picker.ErrNoTTY) {
			return 2
		}
		return 1
	}

	if *paste {
		text, err := picker.PromptText(target)
		if err != nil {
			if !errors.Is(err, picker.ErrCancelled) {
				fmt.Fprintln(os.Stderr, err)
			}
			return 1
		}
		if err := picker.PasteInto(facade, target, text); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	fmt.Println(strconv.FormatUint(uint64(target.Handle.Raw()), 10))
	return 0
}
