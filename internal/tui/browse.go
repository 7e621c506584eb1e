// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides a read-only terminal browser for a parsed key file.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/authkeys/internal/authkeys"
)

// browseModel lists the keys of one file and shows the options of the
// selected key.
type browseModel struct {
	file      *authkeys.File
	displayed []int // indexes into file.Keys()
	cursor    int

	filter      string
	isFiltering bool

	status string
	err    error

	keys   keyMap
	help   help.Model
	copyFn func(string) error

	width, height int
}

func newBrowseModel(f *authkeys.File) browseModel {
	m := browseModel{
		file:   f,
		keys:   defaultKeyMap,
		help:   help.New(),
		copyFn: clipboard.WriteAll,
	}
	m.rebuildDisplayed()
	return m
}

// Run starts the browser for f and blocks until the user quits.
func Run(f *authkeys.File) error {
	_, err := tea.NewProgram(newBrowseModel(f), tea.WithAltScreen()).Run()
	return err
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

// keyLabel is the short type column of a key.
func keyLabel(k authkeys.Key) string {
	switch kk := k.(type) {
	case *authkeys.ModernKey:
		return kk.Type
	case *authkeys.LegacyKey:
		return "rsa1 " + strconv.Itoa(kk.Bits)
	}
	return "?"
}

// rebuildDisplayed applies the filter to comments and key types and keeps
// the cursor in bounds.
func (m *browseModel) rebuildDisplayed() {
	m.displayed = nil
	lowerFilter := strings.ToLower(m.filter)
	for i, k := range m.file.Keys() {
		if lowerFilter == "" ||
			strings.Contains(strings.ToLower(k.Comment()), lowerFilter) ||
			strings.Contains(strings.ToLower(keyLabel(k)), lowerFilter) {
			m.displayed = append(m.displayed, i)
		}
	}
	if m.cursor >= len(m.displayed) {
		m.cursor = len(m.displayed) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the file index of the key under the cursor.
func (m browseModel) selected() (int, bool) {
	if len(m.displayed) == 0 {
		return 0, false
	}
	return m.displayed[m.cursor], true
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.isFiltering {
			return m.updateFilter(msg), nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.displayed)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Filter):
			m.isFiltering = true
			m.status = ""
		case key.Matches(msg, m.keys.Copy):
			if i, ok := m.selected(); ok {
				if err := m.copyFn(m.file.Keys()[i].String()); err != nil {
					m.err = err
					m.status = ""
				} else {
					m.err = nil
					m.status = fmt.Sprintf("copied key %d", i)
				}
			}
		}
	}
	return m, nil
}

func (m browseModel) updateFilter(msg tea.KeyMsg) browseModel {
	switch msg.Type {
	case tea.KeyEnter:
		m.isFiltering = false
	case tea.KeyEsc:
		m.isFiltering = false
		m.filter = ""
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(msg.Runes)
	}
	m.rebuildDisplayed()
	return m
}

func (m browseModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s (%s, %d keys)", m.file.Path(), m.file.Format(), len(m.file.Keys()))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if m.isFiltering || m.filter != "" {
		b.WriteString(helpStyle.Render("filter: "+m.filter) + "\n")
	}

	var list strings.Builder
	if len(m.displayed) == 0 {
		list.WriteString(helpStyle.Render("no keys"))
	}
	for row, i := range m.displayed {
		k := m.file.Keys()[i]
		line := fmt.Sprintf("%3d  %-20s %s", i, keyLabel(k), k.Comment())
		if row == m.cursor {
			list.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			list.WriteString(itemStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", m.detailView()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(optionStyle.Render("error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return docStyle.Render(b.String())
}

// detailView renders the options of the selected key.
func (m browseModel) detailView() string {
	i, ok := m.selected()
	if !ok {
		return ""
	}
	k := m.file.Keys()[i]
	var b strings.Builder
	b.WriteString(keyLabel(k) + "\n")
	if k.Comment() != "" {
		b.WriteString(k.Comment() + "\n")
	}
	opts := k.Options()
	if opts.Len() == 0 {
		b.WriteString(helpStyle.Render("no options"))
	}
	for _, name := range opts.Names() {
		v, _ := opts.Get(name)
		switch v.Kind() {
		case authkeys.OptionFlag:
			b.WriteString(optionStyle.Render(name) + "\n")
		default:
			for _, val := range v.Values() {
				b.WriteString(optionStyle.Render(name) + "=" + val + "\n")
			}
		}
	}
	return paneStyle.Render(strings.TrimRight(b.String(), "\n"))
}
