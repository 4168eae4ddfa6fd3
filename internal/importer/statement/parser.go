package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/fleetledger/internal/encoding"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

var (
	ErrUnknownFormat = errors.New("statement: no matching format")
	ErrMalformedRow  = errors.New("statement: malformed row")
)

// Line is one money movement read from a statement, amount in cents and always positive.
type Line struct {
	Row         int
	Date        time.Time
	Description string
	Plate       string
	Liters      decimal.Decimal
	Amount      int64
	Direction   ledger.Direction
}

type Statement struct {
	Profile string
	Kind    Kind
	Charset enc.Charset
	Lines   []Line
}

// Parser reads semicolon separated fuel-card and bank exports.
// The layout is detected by matching column headers against known profiles.
type Parser struct {
	profiles []Profile
}

// NewParser returns a parser that tries the extra profiles before the built-in ones.
func NewParser(extra ...Profile) *Parser {
	return &Parser{profiles: append(slices.Clone(extra), builtinProfiles...)}
}

func (p *Parser) Parse(r io.Reader) (*Statement, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := p.detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	if err != nil {
		return nil, err
	}

	return &Statement{
		Profile: profile.Name,
		Kind:    profile.Kind,
		Charset: charset,
		Lines:   lines,
	}, nil
}

type colIndex map[string]int

func (p *Parser) detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range p.profiles {
			if matchesProfile(&p.profiles[i], cols) {
				return &p.profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or amount (footers, totals). A row with
// a date and an amount cell that does not parse is an error.
// headerRowNum is the 0-based index of the header, used for 1-based row numbers in errors.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	plateIdx, litersIdx := -1, -1
	if p.PlateCol != "" {
		plateIdx = cols[p.PlateCol]
	}

	if idx, ok := cols[p.LitersCol]; ok && p.LitersCol != "" {
		litersIdx = idx
	}

	var lines []Line

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("%w: row %d: missing description", ErrMalformedRow, rowNum)
		}

		amount, dir, ok, err := parseAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedRow, rowNum, err)
		}

		if !ok {
			continue
		}

		line := Line{
			Row:         rowNum,
			Date:        date,
			Description: desc,
			Plate:       cellValue(row, plateIdx),
			Amount:      amount,
			Direction:   dir,
		}

		if s := cellValue(row, litersIdx); s != "" {
			liters, err := parseEuropeanDecimal(s)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid liters %q: %w", ErrMalformedRow, rowNum, s, err)
			}

			line.Liters = liters
		}

		lines = append(lines, line)
	}

	return lines, nil
}

var dateLayouts = []string{"02-01-2006", "02/01/2006", "2006-01-02"}

func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount reports ok=false for rows with no amount or a zero amount.
func parseAmount(p *Profile, cols colIndex, row []string) (int64, ledger.Direction, bool, error) {
	switch p.AmountMode {
	case AmountSingle:
		return parseSingleAmount(row, cols[p.AmountCol], p.DebitPositive)
	case AmountSplit:
		return parseSplitAmount(row, cols[p.DebitCol], cols[p.CreditCol])
	}

	return 0, "", false, nil
}

func parseSingleAmount(row []string, idx int, debitPositive bool) (int64, ledger.Direction, bool, error) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, "", false, nil
	}

	cents, err := parseEuropeanAmount(s)
	if err != nil {
		return 0, "", false, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if cents == 0 {
		return 0, "", false, nil
	}

	if debitPositive {
		cents = -cents
	}

	if cents < 0 {
		return -cents, ledger.DirectionOut, true, nil
	}

	return cents, ledger.DirectionIn, true, nil
}

func parseSplitAmount(row []string, debitIdx, creditIdx int) (int64, ledger.Direction, bool, error) {
	if s := cellValue(row, debitIdx); s != "" {
		cents, err := parseEuropeanAmount(s)
		if err != nil {
			return 0, "", false, fmt.Errorf("invalid debit %q: %w", s, err)
		}

		if cents != 0 {
			return abs(cents), ledger.DirectionOut, true, nil
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		cents, err := parseEuropeanAmount(s)
		if err != nil {
			return 0, "", false, fmt.Errorf("invalid credit %q: %w", s, err)
		}

		if cents != 0 {
			return abs(cents), ledger.DirectionIn, true, nil
		}
	}

	return 0, "", false, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
