package view

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type summaryState int

const (
	summaryStateTimeframe summaryState = iota
	summaryStateLoading
	summaryStateResult
)

type SummaryModel struct {
	CommonModel
	ledgerService *ledger.Service
	companyID     uuid.UUID

	state           summaryState
	timeframePicker TimeframePicker
	spinner         spinner.Model

	window  *ledger.DateRange
	summary ledger.Summary
	err     error
}

func NewSummaryModel(svc *ledger.Service, companyID uuid.UUID) SummaryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SummaryModel{
		ledgerService:   svc,
		companyID:       companyID,
		timeframePicker: NewTimeframePicker(),
		spinner:         s,
	}
}

func (m SummaryModel) Title() string { return "Ledger Summary" }

func (m SummaryModel) ShortHelp() string {
	if m.state == summaryStateResult {
		return "Esc: pick another timeframe"
	}

	return "Esc: back | Enter: select"
}

func (m SummaryModel) Init() tea.Cmd {
	return nil
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.window = msg.Window
		m.state = summaryStateLoading

		return m, tea.Batch(m.spinner.Tick, m.loadSummaryCmd(msg.Window))

	case summaryLoadedMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.state = summaryStateResult

		return m, nil
	}

	switch m.state {
	case summaryStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case summaryStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case summaryStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = summaryStateTimeframe
			m.timeframePicker.Reset()
		}
	}

	return m, nil
}

func (m SummaryModel) View() string {
	switch m.state {
	case summaryStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case summaryStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Summarizing ledger...")
	case summaryStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return lipgloss.NewStyle().Padding(1).Render(renderSummary(m.window, m.summary))
	}

	return ""
}

func renderSummary(window *ledger.DateRange, s ledger.Summary) string {
	period := "All time"
	if window != nil {
		period = fmt.Sprintf("%s to %s", FormatDate(window.Start), FormatDate(window.End))
	}

	net := FormatAmount(s.NetCashflow)
	if s.NetCashflow < 0 {
		net = errorStyle.Render(net)
	} else {
		net = successStyle.Render(net)
	}

	lines := []string{
		headerStyle.Render(period),
		"",
		row("Income", FormatAmount(s.TotalIncome)),
		row("Expenses", FormatAmount(s.TotalExpenses)),
		row("Net cashflow", net),
		"",
		row("Invoiced", FormatAmount(s.Invoiced)),
		row("Payments received", FormatAmount(s.PaymentsReceived)),
		row("Accounts receivable", FormatAmount(s.AccountsReceivable)),
		"",
		row("Fuel", FormatAmount(s.FuelExpenses)),
		row("Maintenance", FormatAmount(s.MaintenanceExpenses)),
		row("Events", fmt.Sprintf("%d", s.EventCount)),
	}

	if len(s.ExpensesByCategory) > 0 {
		lines = append(lines, "", headerStyle.Render("Expenses by category"), "")
		lines = append(lines, categoryRows(s.ExpensesByCategory)...)
	}

	if len(s.IncomeByCategory) > 0 {
		lines = append(lines, "", headerStyle.Render("Income by category"), "")
		lines = append(lines, categoryRows(s.IncomeByCategory)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func categoryRows(totals map[ledger.Category]int64) []string {
	cats := make([]ledger.Category, 0, len(totals))
	for c := range totals {
		cats = append(cats, c)
	}

	slices.Sort(cats)

	rows := make([]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, row(string(c), FormatAmount(totals[c])))
	}

	return rows
}

type summaryLoadedMsg struct {
	summary ledger.Summary
	err     error
}

func (m SummaryModel) loadSummaryCmd(window *ledger.DateRange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.ledgerService.Summary(ctx, m.companyID, window)
		return summaryLoadedMsg{summary: s, err: err}
	}
}
