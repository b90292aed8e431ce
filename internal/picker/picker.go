// Package picker is the interactive window chooser behind `deskbridge pick`.
package picker

import (
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/automation"
)

var (
	// ErrNoTTY is returned when stdin or stdout is not a terminal.
	ErrNoTTY = errors.New("pick requires an interactive terminal (stdin/stdout must be TTYs)")
	// ErrCancelled is returned when the user leaves without choosing.
	ErrCancelled = errors.New("cancelled")
	// ErrNoWindows is returned when there is nothing to choose from.
	ErrNoWindows = errors.New("no visible windows")
)

const (
	defaultWidth  = 80
	defaultHeight = 20
)

type windowItem struct {
	entry automation.WindowEntry
}

func (i windowItem) Title() string       { return i.entry.Title }
func (i windowItem) Description() string { return "handle " + i.entry.Handle.String() }
func (i windowItem) FilterValue() string { return i.entry.Title }

// Model is the bubbletea model listing windows.
type Model struct {
	list      list.Model
	chosen    *automation.WindowEntry
	cancelled bool
}

// NewModel builds a picker over windows.
func NewModel(windows []automation.WindowEntry) Model {
	items := make([]list.Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, windowItem{entry: w})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(items, delegate, defaultWidth, defaultHeight)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetEnabled(false)

	return Model{list: l}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "esc", "q":
			if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
				break
			}
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			item, ok := m.list.SelectedItem().(windowItem)
			if !ok {
				return m, nil
			}
			entry := item.entry
			m.chosen = &entry
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No visible windows")
	}
	return m.list.View()
}

// Chosen returns the selected window, if any.
func (m Model) Chosen() (automation.WindowEntry, bool) {
	if m.chosen == nil {
		return automation.WindowEntry{}, false
	}
	return *m.chosen, true
}

// Cancelled reports whether the user quit without choosing.
func (m Model) Cancelled() bool { return m.cancelled }

func requireTTY() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNoTTY
	}
	return nil
}

// Pick shows the visible windows and returns the one the user chose.
func Pick(facade *automation.Facade) (automation.WindowEntry, error) {
	if err := requireTTY(); err != nil {
		return automation.WindowEntry{}, err
	}

	windows := facade.VisibleWindows()
	if len(windows) == 0 {
		return automation.WindowEntry{}, ErrNoWindows
	}

	final, err := tea.NewProgram(NewModel(windows), tea.WithAltScreen()).Run()
	if err != nil {
		return automation.WindowEntry{}, errors.Wrap(err, "picker failed")
	}

	m, ok := final.(Model)
	if !ok {
		return automation.WindowEntry{}, errors.Errorf("unexpected picker model %T", final)
	}
	entry, ok := m.Chosen()
	if !ok {
		return automation.WindowEntry{}, ErrCancelled
	}
	return entry, nil
}

// PromptText asks for the text to paste into target.
func PromptText(target automation.WindowEntry) (string, error) {
	if err := requireTTY(); err != nil {
		return "", err
	}

	var text string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("text").
				Title("Paste into " + target.Title).
				Description("Placed on the clipboard, then pasted with Ctrl+V").
				Validate(func(s string) error {
					if s == "" {
						return errors.New("text cannot be empty")
					}
					return nil
				}).
				Value(&text),
		),
	).WithShowHelp(true).WithShowErrors(true)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", errors.Wrap(err, "input form failed")
	}
	return text, nil
}

// PasteInto places text on the clipboard and sends Ctrl+V to target.
func PasteInto(facade *automation.Facade, target automation.WindowEntry, text string) error {
	if _, err := facade.SetClipboardText(text); err != nil {
		return err
	}
	facade.SendPaste(target.Handle)
	return nil
}
