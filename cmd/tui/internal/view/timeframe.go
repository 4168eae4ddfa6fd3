package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

// Timeframe is a reporting period offered by the picker.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeYearToDate
	TimeframeLastYear
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = [...]string{
	TimeframeThisMonth:  "This Month",
	TimeframeLastMonth:  "Last Month",
	TimeframeYearToDate: "Year to Date",
	TimeframeLastYear:   "Last Year",
	TimeframeAll:        "All Time",
	TimeframeCustom:     "Custom Range",
}

func (t Timeframe) String() string {
	if t < 0 || int(t) >= len(timeframeLabels) {
		return "Unknown"
	}

	return timeframeLabels[t]
}

// windowFor returns the UTC day window of tf as seen at now. All time and
// custom ranges have no fixed window and return nil.
func windowFor(tf Timeframe, now time.Time) *ledger.DateRange {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	switch tf {
	case TimeframeThisMonth:
		return &ledger.DateRange{Start: monthStart, End: today}
	case TimeframeLastMonth:
		return &ledger.DateRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart.AddDate(0, 0, -1)}
	case TimeframeYearToDate:
		return &ledger.DateRange{Start: yearStart, End: today}
	case TimeframeLastYear:
		return &ledger.DateRange{Start: yearStart.AddDate(-1, 0, 0), End: yearStart.AddDate(0, 0, -1)}
	}

	return nil
}

// parseCustomRange validates the two typed dates of a custom range.
func parseCustomRange(start, end string) (*ledger.DateRange, error) {
	s, err := time.Parse(time.DateOnly, strings.TrimSpace(start))
	if err != nil {
		return nil, errors.New("invalid start date (YYYY-MM-DD)")
	}

	e, err := time.Parse(time.DateOnly, strings.TrimSpace(end))
	if err != nil {
		return nil, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if e.Before(s) {
		return nil, errors.New("end date is before start date")
	}

	return &ledger.DateRange{Start: s, End: e}, nil
}

// TimeframeSelectedMsg is emitted once a period is chosen. Window is nil for all time.
type TimeframeSelectedMsg struct {
	Window *ledger.DateRange
}

// TimeframePicker lists the reporting periods and, for a custom range,
// asks for the start and end dates.
type TimeframePicker struct {
	selected Timeframe
	custom   bool
	inputs   [2]textinput.Model
	focus    int
	err      error
	now      func() time.Time
}

func NewTimeframePicker() TimeframePicker {
	m := TimeframePicker{now: time.Now}

	for i, prompt := range []string{"Start Date: ", "End Date:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		m.inputs[i] = in
	}

	return m
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	if !m.custom {
		if isKey {
			return m.updateSelect(key)
		}

		return m, nil
	}

	if isKey {
		switch key.String() {
		case "tab", "shift+tab":
			return m.focusInput((m.focus + 1) % len(m.inputs))
		case "esc":
			m.custom, m.err = false, nil
			return m, nil
		case "enter":
			window, err := parseCustomRange(m.inputs[0].Value(), m.inputs[1].Value())
			if m.err = err; err != nil {
				return m, nil
			}

			return m, selected(window)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m TimeframePicker) updateSelect(key tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch key.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.custom = true
			return m.focusInput(0)
		}

		return m, selected(windowFor(m.selected, m.now()))
	}

	return m, nil
}

func (m TimeframePicker) focusInput(i int) (TimeframePicker, tea.Cmd) {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}

	m.focus = i
	m.inputs[i].Focus()

	return m, textinput.Blink
}

func selected(window *ledger.DateRange) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{Window: window}
	}
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.custom {
		fmt.Fprintf(&b, "Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)",
			m.inputs[0].View(), m.inputs[1].View())
	} else {
		b.WriteString("Select Timeframe:\n\n")

		for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
			cursor := " "
			if tf == m.selected {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, tf)
		}

		b.WriteString("\n(Enter to select, Esc to back)")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("\n\nError: " + m.err.Error()))
	}

	return b.String()
}

// IsSelecting reports whether Esc should leave the picker rather than the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return !m.custom
}

func (m *TimeframePicker) Reset() {
	m.selected, m.custom, m.err = TimeframeThisMonth, false, nil

	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
}
