package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type InvoiceModel struct {
	CommonModel
	ledgerService *ledger.Service
	companyID     uuid.UUID

	idInput textinput.Model

	loading bool
	result  *ledger.InvoiceStatus
	status  string
}

func NewInvoiceModel(svc *ledger.Service, companyID uuid.UUID) InvoiceModel {
	ti := textinput.New()
	ti.Placeholder = "invoice id (uuid)"
	ti.CharLimit = 36
	ti.Width = 40
	ti.Focus()

	return InvoiceModel{
		ledgerService: svc,
		companyID:     companyID,
		idInput:       ti,
	}
}

func (m InvoiceModel) Title() string     { return "Invoice Status" }
func (m InvoiceModel) ShortHelp() string { return "Enter: look up | Esc: back" }

func (m InvoiceModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			id, err := uuid.Parse(strings.TrimSpace(m.idInput.Value()))
			if err != nil {
				m.result = nil
				m.status = "Not a valid invoice id."
				return m, nil
			}

			m.loading = true
			return m, m.lookupCmd(id)
		}

	case invoiceStatusMsg:
		m.loading = false
		m.result = nil
		m.status = ""

		switch {
		case errors.Is(msg.err, ledger.ErrUnknownInvoice):
			m.status = "No events reference this invoice."
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		default:
			m.result = &msg.status
		}

		return m, nil
	}

	m.idInput, cmd = m.idInput.Update(msg)

	return m, cmd
}

func (m InvoiceModel) View() string {
	body := fmt.Sprintf("Invoice lookup\n\n%s\n", m.idInput.View())

	switch {
	case m.loading:
		body += "\nLooking up..."
	case m.result != nil:
		paid := errorStyle.Render("outstanding")
		if m.result.IsPaid {
			paid = successStyle.Render("paid")
		}

		body += "\n" + lipgloss.JoinVertical(lipgloss.Left,
			row("Invoiced", FormatAmount(m.result.Invoiced)),
			row("Paid", FormatAmount(m.result.Paid)),
			row("Outstanding", FormatAmount(m.result.Outstanding)),
			row("Status", paid),
		)
	case m.status != "":
		body += "\n" + m.status
	}

	return lipgloss.NewStyle().Padding(2).Render(body + "\n\n(Enter to look up, Esc to back)")
}

type invoiceStatusMsg struct {
	status ledger.InvoiceStatus
	err    error
}

func (m InvoiceModel) lookupCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		status, err := m.ledgerService.InvoiceStatus(ctx, m.companyID, id)
		return invoiceStatusMsg{status: status, err: err}
	}
}
