package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the merge keys. Scrolling keys belong to the viewport (arrows, j/k, pgup/pgdown, ...), so none of these overlap them.
type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	CopyToRight key.Binding
	CopyToLeft  key.Binding
	Granularity key.Binding
	Write       key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:        key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next hunk")),
		Prev:        key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "prev hunk")),
		CopyToRight: key.NewBinding(key.WithKeys(">", "L"), key.WithHelp(">", "copy to right")),
		CopyToLeft:  key.NewBinding(key.WithKeys("<", "H"), key.WithHelp("<", "copy to left")),
		Granularity: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "granularity")),
		Write:       key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "write")),
		Top:         key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "top")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.CopyToRight, k.CopyToLeft, k.Write, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Top, k.Bottom},
		{k.CopyToRight, k.CopyToLeft, k.Granularity},
		{k.Write, k.Help, k.Quit},
	}
}
