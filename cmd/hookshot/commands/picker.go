package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.Confirm, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.All},
		{k.Confirm, k.Quit},
	}
}

var pickerKeys = pickerKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "abort")),
}

type repoModel struct {
	choices  []string
	selected map[int]struct{}
	cursor   int
	aborted  bool
	keys     pickerKeyMap
	help     help.Model
}

func initialRepoModel(urls []string) repoModel {
	return repoModel{
		choices:  urls,
		selected: make(map[int]struct{}),
		keys:     pickerKeys,
		help:     help.New(),
	}
}

func (m repoModel) Init() tea.Cmd {
	return nil
}

func (m repoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			_, ok := m.selected[m.cursor]
			if ok {
				delete(m.selected, m.cursor)
			} else {
				m.selected[m.cursor] = struct{}{}
			}
		case key.Matches(msg, m.keys.All):
			for i := range m.choices {
				m.selected[i] = struct{}{}
			}
		case key.Matches(msg, m.keys.Confirm):
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m repoModel) View() string {
	s := strings.Builder{}
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("? Which repositories should be updated?"))
	s.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		checked := " "
		if _, ok := m.selected[i]; ok {
			checked = "x"
		}

		s.WriteString(fmt.Sprintf("%s [%s] %s\n", cursor, checked, choice))
	}

	s.WriteString("\n" + m.help.View(m.keys) + "\n")
	return s.String()
}

func (m repoModel) SelectedRepos() []string {
	if m.aborted {
		return nil
	}
	var selected []string
	for i := range m.selected {
		selected = append(selected, m.choices[i])
	}
	sort.Strings(selected)
	return selected
}

// PromptForRepos asks interactively which remote repositories an
// autoupdate should touch. An empty result means the user picked nothing.
func PromptForRepos(urls []string) ([]string, error) {
	p := tea.NewProgram(initialRepoModel(urls))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	if repoModel, ok := m.(repoModel); ok {
		return repoModel.SelectedRepos(), nil
	}
	return nil, nil
}
