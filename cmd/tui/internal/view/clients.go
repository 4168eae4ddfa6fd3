package view

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type ClientsModel struct {
	CommonModel
	ledgerService *ledger.Service
	companyID     uuid.UUID

	table   table.Model
	loading bool
	err     error
}

func NewClientsModel(svc *ledger.Service, companyID uuid.UUID) ClientsModel {
	columns := []table.Column{
		{Title: "Client", Width: 36},
		{Title: "Invoiced", Width: 12},
		{Title: "Paid", Width: 12},
		{Title: "Balance", Width: 12},
	}

	return ClientsModel{
		ledgerService: svc,
		companyID:     companyID,
		table:         newTable(columns),
		loading:       true,
	}
}

func (m ClientsModel) Title() string     { return "Client Balances" }
func (m ClientsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m ClientsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.table.SetRows(m.rows(msg.balances))

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

type clientRow struct {
	id uuid.UUID
	ledger.ClientBalance
}

// rows lists clients with the largest outstanding balance first.
func (m ClientsModel) rows(balances map[uuid.UUID]ledger.ClientBalance) []table.Row {
	sorted := make([]clientRow, 0, len(balances))
	for id, b := range balances {
		sorted = append(sorted, clientRow{id: id, ClientBalance: b})
	}

	slices.SortFunc(sorted, func(a, b clientRow) int {
		if c := cmp.Compare(b.Balance, a.Balance); c != 0 {
			return c
		}

		return cmp.Compare(a.id.String(), b.id.String())
	})

	rows := make([]table.Row, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, table.Row{
			c.id.String(),
			FormatAmount(c.Invoiced),
			FormatAmount(c.Paid),
			FormatAmount(c.Balance),
		})
	}

	return rows
}

func (m ClientsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading balances...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.table.Rows()) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No invoices or payments recorded.\n\n(Esc to back)")
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)
}

type clientsLoadedMsg struct {
	balances map[uuid.UUID]ledger.ClientBalance
	err      error
}

func (m ClientsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		balances, err := m.ledgerService.ClientBalances(ctx, m.companyID)
		return clientsLoadedMsg{balances: balances, err: err}
	}
}
