package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Quit      key.Binding
	Help      key.Binding
	Filter    key.Binding
	Sort      key.Binding
	Copy      key.Binding
	Inherited key.Binding
	Priority  key.Binding
	Charts    key.Binding
	Export    key.Binding
	Report    key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Theme     key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy control ID"),
		),
		Inherited: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inherited filter"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "P1 filter"),
		),
		Charts: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "charts"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export"),
		),
		Report: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view report"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "t"),
			key.WithHelp("t", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "b", "G"),
			key.WithHelp("b", "bottom"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle theme"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Filter, k.Enter, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Enter, k.Back},
		{k.Filter, k.Sort, k.Inherited, k.Priority, k.Copy},
		{k.Charts, k.Export, k.Report, k.Theme, k.Help, k.Quit},
	}
}
