/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Drilldown Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package tui is a terminal front end for a drill-down session.
package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/google/drilldown/core/aggregates"
	"github.com/google/drilldown/core/query"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/tables"
	"github.com/google/drilldown/core/views"
)

const barWidth = 20

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	levelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	totalStyle    = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1)
	emptyBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
)

// SnapshotMsg delivers a reloaded snapshot to a running program.
type SnapshotMsg struct {
	Snapshot *tables.Snapshot
}

// Model is the bubbletea model wrapping a session.
type Model struct {
	title     string
	sess      *session.Session
	rows      []*aggregates.Node
	cursor    int
	input     textinput.Model
	searching bool
}

// New returns a model showing sess.
func New(sess *session.Session, title string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a city or area"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	m := Model{title: title, sess: sess, input: ti}
	m.reload()
	return m
}

// Session returns the wrapped session.
func (m Model) Session() *session.Session {
	return m.sess
}

// Cursor returns the index of the highlighted row.
func (m Model) Cursor() int {
	return m.cursor
}

// Rows returns the visible groups in display order.
func (m Model) Rows() []*aggregates.Node {
	return m.rows
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.sess.Update(msg.Snapshot)
		m.reload()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.apply(query.Search(m.input.Value()))
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1":
		m.cycle(selection.Level1)
	case "2":
		m.cycle(selection.Level2)
	case "3":
		m.cycle(selection.Level3)
	case "c":
		m.apply(query.Clear())
	case "/":
		m.searching = true
		m.input.SetValue(m.sess.SearchText())
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.toggle()
	}
	return m, nil
}

// cycle moves level l to the next dimension it may take, passing through
// unassigned.
func (m *Model) cycle(l selection.Level) {
	options := append([]string{""}, m.sess.AvailableFor(l)...)
	current := m.sess.Selection().Dimension(l)
	next := 0
	for i, o := range options {
		if o == current {
			next = (i + 1) % len(options)
			break
		}
	}
	m.apply(query.Assign(l, options[next]))
}

func (m *Model) toggle() {
	if m.cursor >= len(m.rows) {
		return
	}
	n := m.rows[m.cursor]
	if !n.Expandable {
		return
	}
	switch n.Level {
	case selection.Level1:
		m.apply(query.Toggle1(n.Key))
	case selection.Level2:
		m.apply(query.Toggle2(n.Path))
	}
}

func (m *Model) apply(a query.Action) {
	a.Apply(m.sess)
	m.reload()
}

func (m *Model) reload() {
	m.rows = m.sess.Result().Flatten()
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n")
	}
	b.WriteString(m.levelsLine())
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.input.View())
	} else if q := m.sess.SearchText(); q != "" {
		b.WriteString(dimStyle.Render("search: " + q))
	} else {
		b.WriteString(dimStyle.Render("search: (none)"))
	}
	b.WriteString("\n\n")

	switch {
	case !m.sess.HasSnapshot():
		b.WriteString("Waiting for data.\n")
	case len(m.rows) == 0:
		b.WriteString("Assign a dimension to level 1 to see the summary.\n")
	default:
		b.WriteString(totalStyle.Render(fmt.Sprintf("Total %s  %s", m.sess.MeasureName(),
			aggregates.FormatCompact(m.sess.Result().GrandTotal))))
		b.WriteString("\n")
		for i, n := range m.rows {
			line := m.rowLine(n)
			if i == m.cursor {
				line = cursorStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("1/2/3 level  c clear  / search  ↑/↓ move  enter toggle  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) levelsLine() string {
	a := m.sess.Selection()
	parts := make([]string, 0, selection.Levels)
	for _, l := range selection.AllLevels() {
		d := a.Dimension(l)
		if d == "" {
			d = dimStyle.Render(views.Placeholder)
		} else {
			d = levelStyle.Render(d)
		}
		parts = append(parts, fmt.Sprintf("%d: %s", int(l), d))
	}
	return strings.Join(parts, " › ")
}

func (m Model) rowLine(n *aggregates.Node) string {
	indent := strings.Repeat("  ", int(n.Level)-1)
	arrow := " "
	if n.Expandable {
		arrow = views.ArrowClosed
		if n.Expanded {
			arrow = views.ArrowOpen
		}
	}
	line := fmt.Sprintf("%s%s %-24s %8s", indent, arrow, n.Key, aggregates.FormatCompact(n.Total))
	if n.Level == selection.Level1 {
		line += "  " + bar(n.Percent) + " " + aggregates.FormatPercent(n.Percent)
	}
	return line
}

func bar(percent float64) string {
	filled := int(math.Round(percent / 100 * barWidth))
	filled = min(max(filled, 0), barWidth)
	return barStyle.Render(strings.Repeat("█", filled)) +
		emptyBarStyle.Render(strings.Repeat("░", barWidth-filled))
}
