package statement

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind tells fuel-card statements, where every row is a purchase, from bank statements.
type Kind string

const (
	KindFuelCard Kind = "fuelcard"
	KindBank     Kind = "bank"
)

func (k Kind) Valid() bool {
	return k == KindFuelCard || k == KindBank
}

type AmountMode string

const (
	// AmountSingle means one signed column (e.g. "Montante" with value "-10,00").
	AmountSingle AmountMode = "single"
	// AmountSplit means separate debit and credit columns.
	AmountSplit AmountMode = "split"
)

// Profile describes the column layout of a statement export.
type Profile struct {
	Name       string     `yaml:"name"`
	Kind       Kind       `yaml:"kind"`
	DateCol    string     `yaml:"date"`
	DescCol    string     `yaml:"description"`
	PlateCol   string     `yaml:"plate"`
	LitersCol  string     `yaml:"liters"`
	AmountMode AmountMode `yaml:"amount_mode"`
	AmountCol  string     `yaml:"amount"`
	DebitCol   string     `yaml:"debit"`
	CreditCol  string     `yaml:"credit"`
	// DebitPositive flips the sign convention: positive amounts are spending.
	DebitPositive bool `yaml:"debit_positive"`
}

func (p Profile) validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}

	if !p.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", p.Kind)
	}

	if p.DateCol == "" || p.DescCol == "" {
		return errors.New("date and description columns are required")
	}

	switch p.AmountMode {
	case AmountSingle:
		if p.AmountCol == "" {
			return errors.New("amount column is required")
		}
	case AmountSplit:
		if p.DebitCol == "" || p.CreditCol == "" {
			return errors.New("debit and credit columns are required")
		}
	default:
		return fmt.Errorf("unknown amount mode %q", p.AmountMode)
	}

	return nil
}

// LoadProfiles reads extra statement layouts from a YAML document of the form
//
//	profiles:
//	  - name: galp
//	    kind: fuelcard
//	    date: Data
//	    ...
func LoadProfiles(r io.Reader) ([]Profile, error) {
	var doc struct {
		Profiles []Profile `yaml:"profiles"`
	}

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	for i, p := range doc.Profiles {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
	}

	return doc.Profiles, nil
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	if p.PlateCol != "" {
		cols = append(cols, p.PlateCol)
	}

	switch p.AmountMode {
	case AmountSingle:
		cols = append(cols, p.AmountCol)
	case AmountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// LoadProfilesFile is LoadProfiles over a file. An empty path yields no profiles.
func LoadProfilesFile(path string) ([]Profile, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	return LoadProfiles(f)
}

// builtinProfiles is tried in order; more specific layouts come first.
var builtinProfiles = []Profile{
	{
		Name:          "fuelcard",
		Kind:          KindFuelCard,
		DateCol:       "Data",
		DescCol:       "Descrição",
		PlateCol:      "Matrícula",
		LitersCol:     "Litros",
		AmountMode:    AmountSingle,
		AmountCol:     "Valor",
		DebitPositive: true,
	},
	{
		Name:       "cartão",
		Kind:       KindBank,
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: AmountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "extrato",
		Kind:       KindBank,
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: AmountSingle,
		AmountCol:  "Movimento",
	},
	{
		Name:       "conta",
		Kind:       KindBank,
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: AmountSingle,
		AmountCol:  "Montante",
	},
}
