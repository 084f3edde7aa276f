package bubbletea

import "github.com/charmbracelet/bubbles/key"

// keyMap binds the conversation triggers. Bindings are enabled and disabled
// as the session moves through its states so help only shows what works.
type keyMap struct {
	Begin  key.Binding
	End    key.Binding
	Replay key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Begin:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		End:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop & send")),
		Replay: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "replay")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Begin, k.End, k.Replay, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
