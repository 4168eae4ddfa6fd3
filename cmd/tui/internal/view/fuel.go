package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/fleet"
	"github.com/MrJamesThe3rd/fleetledger/internal/fuel"
)

type fuelState int

const (
	fuelStateLoading fuelState = iota
	fuelStateForm
	fuelStateResult
)

const manualVehicle = "manual"

// plannerFields holds the form bindings. huh writes through these pointers,
// so they must outlive the value copies bubbletea makes of the model.
type plannerFields struct {
	vehicle  string
	distance string
	load     fuel.LoadStatus
	buffer   string
	emptyKPL string
	loadKPL  string
}

type FuelModel struct {
	CommonModel
	fleetService *fleet.Service
	companyID    uuid.UUID

	state    fuelState
	vehicles []*fleet.Vehicle
	fields   *plannerFields
	form     *huh.Form

	plan       fuel.Plan
	comparison fuel.Comparison
	err        error
}

func NewFuelModel(svc *fleet.Service, companyID uuid.UUID, defaultBuffer int) FuelModel {
	return FuelModel{
		fleetService: svc,
		companyID:    companyID,
		fields: &plannerFields{
			vehicle: manualVehicle,
			load:    fuel.LoadStatusLoaded,
			buffer:  strconv.Itoa(defaultBuffer),
		},
	}
}

func (m FuelModel) Title() string { return "Fuel Planner" }

func (m FuelModel) ShortHelp() string {
	if m.state == fuelStateResult {
		return "Enter: plan another | Esc: back"
	}

	return "Esc: back | Enter: next"
}

func (m FuelModel) Init() tea.Cmd {
	return m.loadVehiclesCmd()
}

func (m FuelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case vehiclesLoadedMsg:
		// The planner works without a registry, so a failed load only hides the vehicle picker.
		m.vehicles = msg.vehicles
		m.err = msg.err
		m.form = m.buildForm()
		m.state = fuelStateForm

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == fuelStateResult && msg.Type == tea.KeyEnter {
			m.err = nil
			m.form = m.buildForm()
			m.state = fuelStateForm

			return m, m.form.Init()
		}
	}

	if m.state != fuelStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.plan, m.comparison, m.err = m.estimate()
	m.state = fuelStateResult

	return m, nil
}

func (m FuelModel) estimate() (fuel.Plan, fuel.Comparison, error) {
	distance, err := parseFloat(m.fields.distance)
	if err != nil {
		return fuel.Plan{}, fuel.Comparison{}, fmt.Errorf("distance: %w", err)
	}

	buffer, err := strconv.Atoi(strings.TrimSpace(m.fields.buffer))
	if err != nil {
		return fuel.Plan{}, fuel.Comparison{}, fmt.Errorf("buffer: %w", err)
	}

	profile, err := m.profile()
	if err != nil {
		return fuel.Plan{}, fuel.Comparison{}, err
	}

	plan, err := fuel.Estimate(distance, m.fields.load, profile, buffer)
	if err != nil {
		return fuel.Plan{}, fuel.Comparison{}, err
	}

	cmp, err := fuel.CompareLoadedVsEmpty(distance, profile, buffer)
	if err != nil {
		return fuel.Plan{}, fuel.Comparison{}, err
	}

	return plan, cmp, nil
}

func (m FuelModel) profile() (fuel.Profile, error) {
	if m.fields.vehicle != manualVehicle {
		for _, v := range m.vehicles {
			if v.ID.String() == m.fields.vehicle {
				return v.Profile, nil
			}
		}

		return fuel.Profile{}, fleet.ErrNotFound
	}

	empty, err := parseFloat(m.fields.emptyKPL)
	if err != nil {
		return fuel.Profile{}, fmt.Errorf("empty km/L: %w", err)
	}

	loaded, err := parseFloat(m.fields.loadKPL)
	if err != nil {
		return fuel.Profile{}, fmt.Errorf("loaded km/L: %w", err)
	}

	return fuel.Profile{EmptyKmPerLiter: empty, LoadedKmPerLiter: loaded}, nil
}

func (m FuelModel) buildForm() *huh.Form {
	options := []huh.Option[string]{huh.NewOption("Manual profile", manualVehicle)}
	for _, v := range m.vehicles {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", v.Plate, v.Name), v.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Vehicle").
				Options(options...).
				Value(&m.fields.vehicle),
			huh.NewInput().
				Title("Distance (km)").
				Placeholder("700").
				Value(&m.fields.distance).
				Validate(validatePositive),
			huh.NewSelect[fuel.LoadStatus]().
				Title("Load").
				Options(
					huh.NewOption("Loaded", fuel.LoadStatusLoaded),
					huh.NewOption("Empty", fuel.LoadStatusEmpty),
				).
				Value(&m.fields.load),
			huh.NewInput().
				Title("Buffer (%)").
				Value(&m.fields.buffer).
				Validate(validatePercent),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Empty km/L").
				Value(&m.fields.emptyKPL).
				Validate(validatePositive),
			huh.NewInput().
				Title("Loaded km/L").
				Value(&m.fields.loadKPL).
				Validate(validatePositive),
		).WithHideFunc(func() bool {
			return m.fields.vehicle != manualVehicle
		}),
	).WithWidth(50).WithShowHelp(false)
}

func (m FuelModel) View() string {
	switch m.state {
	case fuelStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading vehicles...")
	case fuelStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case fuelStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Enter to retry, Esc to back)")
		}

		return lipgloss.NewStyle().Padding(1).Render(renderPlan(m.plan, m.comparison))
	}

	return ""
}

func renderPlan(plan fuel.Plan, cmp fuel.Comparison) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("%.1f km, %s", plan.DistanceKm, plan.LoadStatus)),
		"",
		row("Efficiency", fmt.Sprintf("%.2f km/L", plan.EfficiencyKmPerLiter)),
		row("Base", FormatLiters(plan.BaseLiters)),
		row(fmt.Sprintf("Buffer (%d%%)", plan.BufferPercent), FormatLiters(plan.BufferLiters)),
		row("Total", FormatLiters(plan.TotalLiters)),
		"",
		headerStyle.Render("Loaded vs empty"),
		"",
		row("Loaded total", FormatLiters(cmp.Loaded.TotalLiters)),
		row("Empty total", FormatLiters(cmp.Empty.TotalLiters)),
		row("Difference", fmt.Sprintf("%s (%.1f%%)", FormatLiters(cmp.DeltaLiters), cmp.DeltaPercent)),
	)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func validatePositive(s string) error {
	v, err := parseFloat(s)
	if err != nil || v <= 0 {
		return errors.New("must be a number above zero")
	}

	return nil
}

func validatePercent(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 100 {
		return errors.New("must be a whole number between 0 and 100")
	}

	return nil
}

type vehiclesLoadedMsg struct {
	vehicles []*fleet.Vehicle
	err      error
}

func (m FuelModel) loadVehiclesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		vehicles, err := m.fleetService.ListVehicles(ctx, m.companyID)
		return vehiclesLoadedMsg{vehicles: vehicles, err: err}
	}
}
