package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the main screen bindings
type keyMap struct {
	Open     key.Binding
	Upload   key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
	Delete   key.Binding
	Link     key.Binding
	Copy     key.Binding
	Search   key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
	Yes      key.Binding
	No       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Open:    key.NewBinding(key.WithKeys("o", "f"), key.WithHelp("o", "open csv")),
		Upload:  key.NewBinding(key.WithKeys("u", "enter"), key.WithHelp("u", "upload")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Delete:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Link:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "pdf link")),
		Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy link")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Help:    key.NewBinding(key.WithKeys("?", "h"), key.WithHelp("?", "help")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Yes:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Upload, k.Delete, k.Link, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Upload, k.Refresh},
		{k.Up, k.Down, k.Search},
		{k.Delete, k.Link, k.Copy},
		{k.Help, k.Back, k.Quit},
	}
}
