package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-arena/internal/arena"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the page list sidebar
	sidebarWidth       = 20
	maxRows            = 100
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextPage, k.PrevPage, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev page"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Page is one table shown by the scoreboard.
type Page struct {
	Title   string
	Columns []table.Column
	Rows    []table.Row
	Empty   string
}

// LeaderboardPage ranks usernames by best score.
func LeaderboardPage(entries []storage.LeaderEntry) Page {
	p := Page{
		Title: "Leaderboard",
		Columns: []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 16},
			{Title: "Kind", Width: 6},
			{Title: "Best", Width: 6},
			{Title: "Total", Width: 7},
			{Title: "Runs", Width: 6},
			{Title: "Deaths", Width: 7},
		},
		Empty: "No runs recorded yet.\nPlay a match to fill the board!",
	}
	for i, e := range entries {
		p.Rows = append(p.Rows, table.Row{
			fmt.Sprintf("#%d", i+1),
			e.Username,
			kind(e.IsAI),
			fmt.Sprintf("%d", e.BestScore),
			fmt.Sprintf("%d", e.TotalScore),
			fmt.Sprintf("%d", e.Runs),
			fmt.Sprintf("%d", e.Deaths),
		})
	}
	return p
}

// RecentRunsPage lists runs newest first with their winner.
func RecentRunsPage(runs []storage.Run) Page {
	p := Page{
		Title: "Recent runs",
		Columns: []table.Column{
			{Title: "Date", Width: 14},
			{Title: "Ticks", Width: 7},
			{Title: "Players", Width: 8},
			{Title: "Winner", Width: 16},
			{Title: "Mode", Width: 9},
		},
		Empty: "No runs recorded yet.",
	}
	for _, r := range runs {
		winner := "-"
		best := -1
		for _, pl := range r.Players {
			if pl.Score > best {
				best = pl.Score
				winner = fmt.Sprintf("%s (%d)", pl.Username, pl.Score)
			}
		}
		p.Rows = append(p.Rows, table.Row{
			r.StartedAt.Local().Format("Jan 02 15:04"),
			fmt.Sprintf("%d", r.Ticks),
			fmt.Sprintf("%d", len(r.Players)),
			winner,
			r.Mode,
		})
	}
	return p
}

// ResultsPage shows the standings of a finished match.
func ResultsPage(results []arena.PlayerResult) Page {
	p := Page{
		Title: "Match results",
		Columns: []table.Column{
			{Title: "ID", Width: 4},
			{Title: "Player", Width: 16},
			{Title: "Score", Width: 6},
			{Title: "Deaths", Width: 7},
			{Title: "Length", Width: 7},
			{Title: "Misses", Width: 7},
			{Title: "Status", Width: 24},
		},
		Empty: "Nobody played.",
	}
	for _, r := range results {
		status := "active"
		if r.Failure != "" {
			status = r.Failure
		} else if !r.Active {
			status = "disabled"
		}
		p.Rows = append(p.Rows, table.Row{
			fmt.Sprintf("%d", r.Player),
			r.Username,
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.Deaths),
			fmt.Sprintf("%d", r.Length),
			fmt.Sprintf("%d", r.Misses),
			status,
		})
	}
	return p
}

// StorePages loads the leaderboard and recent runs.
func StorePages(store *storage.Store) ([]Page, error) {
	if store == nil {
		return []Page{LeaderboardPage(nil), RecentRunsPage(nil)}, nil
	}
	leaders, err := store.Leaderboard(maxRows)
	if err != nil {
		return nil, err
	}
	runs, err := store.RecentRuns(maxRows)
	if err != nil {
		return nil, err
	}
	return []Page{LeaderboardPage(leaders), RecentRunsPage(runs)}, nil
}

func kind(isAI bool) string {
	if isAI {
		return "AI"
	}
	return "human"
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	pages       []Page
	cursor      int
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(pages []Page, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		pages:       pages,
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar && len(pages) > 1,
	}
	m.table = m.createTable()
	return m
}

// createTable builds the table for the current page.
func (m *ScoreboardModel) createTable() table.Model {
	var page Page
	if len(m.pages) > 0 {
		page = m.pages[m.cursor]
	}

	t := table.New(
		table.WithColumns(page.Columns),
		table.WithRows(page.Rows),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *ScoreboardModel) switchPage(delta int) {
	if len(m.pages) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.pages)) % len(m.pages)
	m.table = m.createTable()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextPage):
			m.switchPage(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevPage):
			m.switchPage(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar && len(m.pages) > 1
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "SNAKE ARENA"
	if len(m.pages) > 0 {
		title = fmt.Sprintf("SNAKE ARENA - %s", m.pages[m.cursor].Title)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", tableRendered))
	} else {
		b.WriteString(centerText(tableRendered, m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m ScoreboardModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Pages\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, p := range m.pages {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + p.Title))
		sidebar.WriteString("\n")
	}
	return sidebarStyle.Render(sidebar.String())
}

// renderTableContent renders the table or the page's empty message.
func (m ScoreboardModel) renderTableContent() string {
	if len(m.pages) == 0 || len(m.pages[m.cursor].Rows) == 0 {
		msg := "Nothing to show."
		if len(m.pages) > 0 && m.pages[m.cursor].Empty != "" {
			msg = m.pages[m.cursor].Empty
		}
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render(msg)
	}
	return m.table.View()
}

// centerText pads each line of s so it sits in the middle of width.
func centerText(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		pad := (width - lipgloss.Width(line)) / 2
		if pad > 0 {
			lines[i] = strings.Repeat(" ", pad) + line
		}
	}
	return strings.Join(lines, "\n")
}

// RunScoreboard shows pages until the user quits.
func RunScoreboard(pages []Page, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(pages, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
