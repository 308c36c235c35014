package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"salemre/backend/internal/clientstate"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("236"))
)

// fetchedMsg carries a list response tagged with the fetch that requested it.
type fetchedMsg struct {
	tok  clientstate.Token
	page *listPage
	err  error
}

type fetchFunc func(ctx context.Context, rawURL string, toRow rowFunc) (*listPage, error)

type model struct {
	views    []*listView
	active   int
	registry *clientstate.Registry
	fetch    fetchFunc

	searching bool
	input     string
	selected  int
	width     int
	height    int
}

func newModel(views []*listView, fetch fetchFunc) model {
	return model{views: views, registry: clientstate.NewRegistry(), fetch: fetch}
}

func (m model) view() *listView { return m.views[m.active] }

func (m model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.views))
	for _, v := range m.views {
		cmds = append(cmds, m.load(v))
	}
	return tea.Batch(cmds...)
}

// load starts a fetch of v's current URL. Rows of the previous filter set
// are dropped so they never show under the new filters.
func (m model) load(v *listView) tea.Cmd {
	tok := m.registry.Begin(v.name)
	v.page = nil
	v.rowsLoaded = false
	rawURL, toRow, fetch := v.state.URL(), v.toRow, m.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		page, err := fetch(ctx, rawURL, toRow)
		return fetchedMsg{tok: tok, page: page, err: err}
	}
}

func (m model) viewByName(name string) *listView {
	for _, v := range m.views {
		if v.name == name {
			return v
		}
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fetchedMsg:
		if !m.registry.Finish(msg.tok, msg.err) {
			return m, nil
		}
		if v := m.viewByName(msg.tok.Key); v != nil && msg.err == nil {
			v.page = msg.page
			v.rowsLoaded = true
			if m.view() == v && m.selected >= len(msg.page.Rows) {
				m.selected = 0
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		v := m.view()
		_ = v.state.SetSearch(m.input)
		m.selected = 0
		return m, m.load(v)
	case tea.KeyEsc:
		m.searching = false
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.active = (m.active + 1) % len(m.views)
		m.selected = 0
		return m, nil
	case "/":
		m.searching = true
		m.input = v.state.Get("search")
		return m, nil
	case "t":
		v.cycleKind()
	case "s":
		v.cycleStatus()
	case "o":
		v.cycleSort()
	case "c":
		v.clear()
	case "r":
	case "n", "right":
		if !v.nextPage() {
			return m, nil
		}
	case "p", "left":
		if !v.prevPage() {
			return m, nil
		}
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if v.page != nil && m.selected < len(v.page.Rows)-1 {
			m.selected++
		}
		return m, nil
	default:
		return m, nil
	}
	m.selected = 0
	return m, m.load(v)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("estatectl"))
	b.WriteString("  ")
	for i, v := range m.views {
		if i == m.active {
			b.WriteString(activeTab.Render(v.name))
		} else {
			b.WriteString(tabStyle.Render(v.name))
		}
	}
	b.WriteString("\n")

	v := m.view()
	b.WriteString(mutedStyle.Render(v.summary()))
	b.WriteString("\n")
	if m.searching {
		b.WriteString("search: " + m.input + "█\n")
	}
	b.WriteString("\n")
	b.WriteString(m.body(v))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("/ search  t type  s status  o sort  n/p page  c clear  r reload  tab switch  q quit"))
	return b.String()
}

func (m model) body(v *listView) string {
	st := m.registry.Status(v.name)
	switch {
	case st.Loading:
		return mutedStyle.Render("Loading " + v.name + "…")
	case st.Err != nil:
		return errorStyle.Render("Error: "+st.Err.Error()) + "\n" + mutedStyle.Render("press r to retry")
	case !v.rowsLoaded || v.page == nil:
		return ""
	case len(v.page.Rows) == 0:
		msg := "No " + v.name + " found."
		if v.state.Filtered() {
			msg += " Press c to clear filters."
		}
		return msg
	}
	return renderTable(v.columns, v.page.Rows, m.selected) + "\n" +
		mutedStyle.Render(fmt.Sprintf("page %d of %d, %d total", v.page.CurrentPage, v.page.TotalPages, v.page.Count))
}

func renderTable(columns []string, rows [][]string, selected int) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = min(lipgloss.Width(cell), 40)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			cell = fitWidth(cell, widths[i])
			parts[i] = cell + strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0))
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(columns)))
	for i, row := range rows {
		b.WriteString("\n")
		if i == selected {
			b.WriteString(selectedStyle.Render(line(row)))
		} else {
			b.WriteString(line(row))
		}
	}
	return b.String()
}

// fitWidth cuts s to at most w terminal cells, ending in an ellipsis when
// cut. Wide runes count as two cells.
func fitWidth(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
