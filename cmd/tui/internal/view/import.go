package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/importer"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreviewing
	importStatePreview
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	companyID     uuid.UUID

	state      importState
	filePicker filepicker.Model
	path       string

	preview     *importer.Result
	previewList list.Model

	status string
	err    error
}

func NewImportModel(svc *importer.Service, companyID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: svc,
		companyID:     companyID,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: record events | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case previewResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.preview = msg.result
		m.state = importStatePreview

		items := make([]list.Item, len(msg.result.Params))
		for i, p := range msg.result.Params {
			items[i] = lineItem{params: p}
		}

		m.previewList = list.New(items, lineDelegate{}, 100, 20)
		m.previewList.Title = fmt.Sprintf("%s statement (%s), %d lines", msg.result.Profile, msg.result.Charset, len(items))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		if errors.Is(msg.err, importer.ErrDuplicateLines) {
			m.err = msg.err
			m.status = conflictReport(msg.result.Conflicts)

			return m, nil
		}

		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Recorded %d events.", len(msg.result.Events))

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.path = path
		m.state = importStatePreviewing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.preview = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Recording %d events...", len(m.preview.Params))

		return m, m.importCmd(m.path)
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a fuel card or bank statement (CSV):\n\n%s", m.filePicker.View()),
		)
	case importStatePreviewing, importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return m.viewPreview()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	content := m.previewList.View()

	if len(m.preview.UnknownPlates) > 0 {
		warn := errorStyle.Render("Unknown plates: " + strings.Join(m.preview.UnknownPlates, ", "))
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", warn)
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n(Enter to record, Esc to cancel)")
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

func conflictReport(conflicts []ledger.Conflict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d lines are already in the ledger, nothing was recorded:\n", len(conflicts))

	for _, c := range conflicts {
		fmt.Fprintf(&b, "\n  %s  %s  %s", FormatDate(c.Incoming.EventDate), FormatAmount(c.Incoming.Amount), c.Incoming.Description)
	}

	return b.String()
}

// Messages

type previewResultMsg struct {
	result *importer.Result
	err    error
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.withFile(path, m.importService.Preview)
		return previewResultMsg{result: result, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.withFile(path, m.importService.Import)
		return importResultMsg{result: result, err: err}
	}
}

func (m ImportModel) withFile(path string, fn func(context.Context, uuid.UUID, io.Reader) (*importer.Result, error)) (*importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	return fn(ctx, m.companyID, f)
}

// Preview list item

type lineItem struct {
	params ledger.RecordParams
}

func (i lineItem) Title() string       { return "" }
func (i lineItem) Description() string { return "" }
func (i lineItem) FilterValue() string { return i.params.Description }

// Preview list delegate

type lineDelegate struct{}

func (d lineDelegate) Height() int                             { return 2 }
func (d lineDelegate) Spacing() int                            { return 0 }
func (d lineDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d lineDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(lineItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	p := item.params
	sign := "+"
	if p.Direction == ledger.DirectionOut {
		sign = "-"
	}

	vehicle := ""
	if p.VehicleID != nil {
		vehicle = "  vehicle " + p.VehicleID.String()[:8]
	}

	line1 := fmt.Sprintf("%s%s  %s%s  %s", cursor, FormatDate(p.EventDate), sign, FormatAmount(p.Amount), p.Description)
	line2 := fmt.Sprintf("    %s / %s%s", p.Type, p.Category, vehicle)

	fmt.Fprintf(w, "%s\n%s\n", line1, lipgloss.NewStyle().Faint(true).Render(line2))
}
