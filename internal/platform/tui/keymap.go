package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is a player intent derived from a key press.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionCycleTower
	ActionBuy
	ActionSell
	ActionUpgrade
	ActionNextWave
	ActionPause
	ActionSpeed
	ActionSave
	ActionRestart
	ActionQuit
)

// KeyMap defines the key bindings of the game screen.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Tower    key.Binding
	Buy      key.Binding
	Sell     key.Binding
	Upgrade  key.Binding
	NextWave key.Binding
	Pause    key.Binding
	Speed    key.Binding
	Save     key.Binding
	Restart  key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tower, k.Buy, k.Upgrade, k.Sell, k.NextWave, k.Pause, k.Speed, k.Save, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Tower, k.Buy, k.Upgrade, k.Sell},
		{k.NextWave, k.Pause, k.Speed},
		{k.Save, k.Restart, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		Tower: key.NewBinding(
			key.WithKeys("tab", "t"),
			key.WithHelp("tab", "tower"),
		),
		Buy: key.NewBinding(
			key.WithKeys("enter", "b"),
			key.WithHelp("enter", "build"),
		),
		Sell: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "sell"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("u", "+"),
			key.WithHelp("u", "upgrade"),
		),
		NextWave: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n", "next wave"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Speed: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "speed"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^s", "save"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MapKey translates a key message to an action.
func (k KeyMap) MapKey(msg tea.KeyMsg) Action {
	bindings := []struct {
		binding key.Binding
		action  Action
	}{
		{k.Quit, ActionQuit},
		{k.Up, ActionUp},
		{k.Down, ActionDown},
		{k.Left, ActionLeft},
		{k.Right, ActionRight},
		{k.Tower, ActionCycleTower},
		{k.Buy, ActionBuy},
		{k.Sell, ActionSell},
		{k.Upgrade, ActionUpgrade},
		{k.NextWave, ActionNextWave},
		{k.Pause, ActionPause},
		{k.Speed, ActionSpeed},
		{k.Save, ActionSave},
		{k.Restart, ActionRestart},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return b.action
		}
	}
	return ActionNone
}
