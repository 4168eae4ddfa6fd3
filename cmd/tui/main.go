package main

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fleetledger/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fleetledger/internal/config"
	"github.com/MrJamesThe3rd/fleetledger/internal/database"
	"github.com/MrJamesThe3rd/fleetledger/internal/export"
	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	fleetStore "github.com/MrJamesThe3rd/fleetledger/internal/fleet/store"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/fleetledger/internal/ledger/store"
	"github.com/MrJamesThe3rd/fleetledger/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fleetledger/internal/matching/store"
)

type model struct {
	companyID     uuid.UUID
	defaultBuffer int

	ledgerService *ledger.Service
	fleetService  *fleet.Service
	importService *importer.Service
	exportService *export.Service

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu     View = 0
	ViewFuel     View = 1
	ViewSummary  View = 2
	ViewEvents   View = 3
	ViewClients  View = 4
	ViewInvoices View = 5
	ViewImport   View = 6
	ViewExport   View = 7
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.LoadTUI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	companyID, err := uuid.Parse(cfg.CompanyID)
	if err != nil {
		slog.Error("invalid TUI_COMPANY_ID", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.DB.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	shards := cfg.Ledger.Shards
	if shards == 0 {
		shards = runtime.NumCPU()
	}

	profiles, err := statement.LoadProfilesFile(cfg.Import.ProfilesFile)
	if err != nil {
		slog.Error("failed to load statement profiles", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db), ledger.NewAggregator(cfg.Ledger.ParallelThreshold, shards))
	fleetSvc := fleet.NewService(fleetStore.New(db), ledgerSvc)
	matchSvc := matching.NewService(matchingStore.New(db))

	return model{
		companyID:     companyID,
		defaultBuffer: cfg.Fuel.DefaultBufferPercent,
		ledgerService: ledgerSvc,
		fleetService:  fleetSvc,
		importService: importer.NewService(fleetSvc, matchSvc, ledgerSvc, importer.WithParser(statement.NewParser(profiles...))),
		exportService: export.NewService(ledgerSvc),
		currentView:   ViewMenu,
	}
}

func (m model) open(v View) view.View {
	switch v {
	case ViewFuel:
		return view.NewFuelModel(m.fleetService, m.companyID, m.defaultBuffer)
	case ViewSummary:
		return view.NewSummaryModel(m.ledgerService, m.companyID)
	case ViewEvents:
		return view.NewListModel(m.ledgerService, m.companyID)
	case ViewClients:
		return view.NewClientsModel(m.ledgerService, m.companyID)
	case ViewInvoices:
		return view.NewInvoiceModel(m.ledgerService, m.companyID)
	case ViewImport:
		return view.NewImportModel(m.importService, m.companyID)
	case ViewExport:
		return view.NewExportModel(m.exportService, m.companyID)
	}

	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1", "2", "3", "4", "5", "6", "7":
				m.currentView = View(msg.String()[0] - '0')
				m.active = m.open(m.currentView)

				return m, m.active.Init()
			}

			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"FleetLedger TUI\n\n" +
				"1. Fuel Planner\n" +
				"2. Ledger Summary\n" +
				"3. Ledger Events\n" +
				"4. Client Balances\n" +
				"5. Invoice Status\n" +
				"6. Import Statement\n" +
				"7. Export Statement\n\n" +
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.active.Title()),
		m.active.View(),
		lipgloss.NewStyle().PaddingLeft(1).Render(help),
	)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
