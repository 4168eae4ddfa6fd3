package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateReverse
)

var categoryFilters = []ledger.Category{
	"",
	ledger.CategoryRevenue,
	ledger.CategoryFuel,
	ledger.CategoryMaintenance,
	ledger.CategoryOperatingExpense,
	ledger.CategoryPayroll,
	ledger.CategoryOther,
}

var dateLabels = []string{"All Time", "This Month", "Last Month"}

type ListModel struct {
	CommonModel
	ledgerService *ledger.Service
	companyID     uuid.UUID

	state  listState
	table  table.Model
	events []ledger.Event
	form   *huh.Form

	categoryFilterIdx int
	dateFilterIdx     int

	filter  ledger.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	reason *string
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewListModel(svc *ledger.Service, companyID uuid.UUID) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 20},
		{Title: "Category", Width: 18},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
	}

	return ListModel{
		ledgerService: svc,
		companyID:     companyID,
		table:         newTable(columns),
		filter:        ledger.ListFilter{CompanyID: companyID},
		loading:       true,
		reason:        new(string),
	}
}

func (m ListModel) Title() string { return "Ledger Events" }
func (m ListModel) ShortHelp() string {
	if m.state == listStateReverse {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | x: reverse | c: category filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadEventsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.events = msg.events
		m.refreshTable()
		return m, nil

	case reverseResultMsg:
		m.status = "Reversal recorded."
		if msg.err != nil {
			m.status = fmt.Sprintf("Error reversing: %v", msg.err)
		}
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadEventsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateReverse:
		return m.updateReverse(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadEventsCmd()
		case "x":
			return m.enterReverseMode()
		case "c":
			m.categoryFilterIdx = (m.categoryFilterIdx + 1) % len(categoryFilters)
			m.applyFilter(time.Now())
			return m, m.loadEventsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateLabels)
			m.applyFilter(time.Now())
			return m, m.loadEventsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ListModel) enterReverseMode() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}

	if e.IsReversal() {
		m.status = "Reversals cannot be reversed."
		return m, nil
	}

	*m.reason = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("Duplicated import").
				Value(m.reason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("reason cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateReverse
	m.table.Blur()
	return m, m.form.Init()
}

func (m ListModel) updateReverse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.reverseCmd()
}

func (m ListModel) selected() (ledger.Event, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.events) {
		return ledger.Event{}, false
	}

	return m.events[idx], true
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading events...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	category := "All"
	if c := categoryFilters[m.categoryFilterIdx]; c != "" {
		category = string(c)
	}

	header := fmt.Sprintf(
		"Filter: [c] Category: %s | [d] Date: %s",
		activeStyle(category),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == listStateReverse && m.form != nil {
		e, _ := m.selected()

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(
				fmt.Sprintf("Reverse Event\n\n%s  %s\n%s\n\n%s", FormatDate(e.EventDate), FormatSigned(e), e.Description, m.form.View()),
			)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) applyFilter(now time.Time) {
	m.filter.Category = nil
	if c := categoryFilters[m.categoryFilterIdx]; c != "" {
		m.filter.Category = &c
	}

	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.events))
	for _, e := range m.events {
		rows = append(rows, table.Row{
			FormatDate(e.EventDate),
			string(e.Type),
			string(e.Category),
			FormatSigned(e),
			e.Description,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	events []ledger.Event
	err    error
}

func (m ListModel) loadEventsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		events, err := m.ledgerService.List(ctx, filter)
		return loadListMsg{events: events, err: err}
	}
}

type reverseResultMsg struct {
	err error
}

func (m ListModel) reverseCmd() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}

	reason := strings.TrimSpace(*m.reason)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.ledgerService.Reverse(ctx, m.companyID, e.ID, reason)
		return reverseResultMsg{err: err}
	}
}
