package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JasonZhangjc/stock-query/internal/watch"
)

// keyMap lists the bindings shown in the status bar. Letter commands are
// matched case-insensitively by the state machine; the bindings here drive
// help text and the force-quit shortcut.
type keyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Refresh   key.Binding
	New       key.Binding
	Delete    key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	Up        key.Binding
	Down      key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "Q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Refresh:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
		New:       key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "new")),
		Delete:    key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		MoveUp:    key.NewBinding(key.WithKeys("u", "U"), key.WithHelp("u", "move up")),
		MoveDown:  key.NewBinding(key.WithKeys("j", "J"), key.WithHelp("j", "move down")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "select up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "select down")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// helpFor returns the bindings shown for mode.
func (k keyMap) helpFor(mode watch.Mode) []key.Binding {
	if _, ok := mode.(watch.Adding); ok {
		return []key.Binding{k.Confirm, k.Cancel}
	}
	return []key.Binding{k.Quit, k.Refresh, k.New, k.Delete, k.MoveUp, k.MoveDown, k.Up, k.Down}
}

// translateKey maps a terminal key event to state-machine keys. A paste of
// several runes yields one key per rune.
func translateKey(msg tea.KeyMsg) []watch.Key {
	switch msg.Type {
	case tea.KeyRunes:
		keys := make([]watch.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, watch.RuneKey(r))
		}
		return keys
	case tea.KeySpace:
		return []watch.Key{watch.RuneKey(' ')}
	case tea.KeyEnter:
		return []watch.Key{{Kind: watch.KeyEnter}}
	case tea.KeyEsc:
		return []watch.Key{{Kind: watch.KeyEsc}}
	case tea.KeyBackspace:
		return []watch.Key{{Kind: watch.KeyBackspace}}
	case tea.KeyUp:
		return []watch.Key{{Kind: watch.KeyUp}}
	case tea.KeyDown:
		return []watch.Key{{Kind: watch.KeyDown}}
	default:
		return []watch.Key{{Kind: watch.KeyOther}}
	}
}
