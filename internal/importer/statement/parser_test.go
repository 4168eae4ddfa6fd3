package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	enc "github.com/MrJamesThe3rd/fleetledger/internal/encoding"
	"github.com/MrJamesThe3rd/fleetledger/internal/importer/statement"
	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_FuelCard(t *testing.T) {
	csv := `Extrato cartão frota - 31-07-2024
Cliente;TRANSPORTES NORTE LDA

Data;Matrícula;Posto;Descrição;Litros;Valor
02-07-2024;aa-11-bb;GALP MAIA;GASOLEO;52,30;84,10
05-07-2024;CC-22-DD;REPSOL FEIRA;GASOLEO;120,00;1.230,50
07-07-2024;CC-22-DD;REPSOL FEIRA;DEVOLUCAO;;-12,00
Total;;;;;1.302,60
`

	p := statement.NewParser()
	st, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, st.Lines, 3)

	assert.Equal(t, "fuelcard", st.Profile)
	assert.Equal(t, statement.KindFuelCard, st.Kind)
	assert.Equal(t, enc.CharsetUTF8, st.Charset)

	first := st.Lines[0]
	assert.Equal(t, 5, first.Row)
	assert.Equal(t, date(2024, 7, 2), first.Date)
	assert.Equal(t, "aa-11-bb", first.Plate)
	assert.Equal(t, "GASOLEO", first.Description)
	assert.True(t, decimal.RequireFromString("52.3").Equal(first.Liters))
	assert.Equal(t, int64(8410), first.Amount)
	assert.Equal(t, ledger.DirectionOut, first.Direction)

	assert.Equal(t, int64(123050), st.Lines[1].Amount)

	refund := st.Lines[2]
	assert.Equal(t, int64(1200), refund.Amount)
	assert.Equal(t, ledger.DirectionIn, refund.Direction)
	assert.True(t, refund.Liters.IsZero())
}

func TestParser_BankProfiles(t *testing.T) {
	type testCase struct {
		name        string
		csv         string
		wantProfile string
		want        []statement.Line
	}

	tests := []testCase{
		{
			name: "Conta",
			csv: `Consultar saldos e movimentos à ordem - 31-01-2026
Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;OFICINA SILVA;-588,74;48.825,46
09-01-2026;09-01-2026;TRF CLIENTE ACME;8.608,52;52.532,78
`,
			wantProfile: "conta",
			want: []statement.Line{
				{Row: 3, Date: date(2026, 1, 30), Description: "OFICINA SILVA", Amount: 58874, Direction: ledger.DirectionOut},
				{Row: 4, Date: date(2026, 1, 9), Description: "TRF CLIENTE ACME", Amount: 860852, Direction: ledger.DirectionIn},
			},
		},
		{
			name: "Extrato",
			csv: `Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;
`,
			wantProfile: "extrato",
			want: []statement.Line{
				{Row: 2, Date: date(2026, 2, 13), Description: "PAGAMENTO TSU", Amount: 60813, Direction: ledger.DirectionOut},
			},
		},
		{
			name: "CartaoDebitAndCredit",
			csv: `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PORTAGENS A1 ;64,00 ; ;
17-12-2025 ;15-12-2025 ;REEMBOLSO ; ;25,00 ;
 ; ; ; ;Página 1/2 ;
`,
			wantProfile: "cartão",
			want: []statement.Line{
				{Row: 2, Date: date(2025, 12, 16), Description: "PORTAGENS A1", Amount: 6400, Direction: ledger.DirectionOut},
				{Row: 3, Date: date(2025, 12, 17), Description: "REEMBOLSO", Amount: 2500, Direction: ledger.DirectionIn},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := statement.NewParser().Parse(strings.NewReader(tt.csv))
			require.NoError(t, err)

			assert.Equal(t, tt.wantProfile, st.Profile)
			assert.Equal(t, statement.KindBank, st.Kind)
			assert.Equal(t, tt.want, st.Lines)
		})
	}
}

func TestParser_Windows1252(t *testing.T) {
	utf8CSV := "Data;Matrícula;Descrição;Litros;Valor\n02-07-2024;AA-11-BB;GASÓLEO;10,00;15,00\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	st, err := statement.NewParser().Parse(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, st.Lines, 1)

	assert.NotEqual(t, enc.CharsetUTF8, st.Charset)
	assert.Equal(t, "GASÓLEO", st.Lines[0].Description)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantErr string
		wantIs  error
	}

	tests := []testCase{
		{
			name:    "EmptyFile",
			csv:     "",
			wantErr: "no matching format",
		},
		{
			name:    "UnknownHeader",
			csv:     "Foo;Bar\n1;2\n",
			wantErr: "no matching format",
		},
		{
			name:    "MissingDescription",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n",
			wantErr: "row 2: missing description",
			wantIs:  statement.ErrMalformedRow,
		},
		{
			name:    "InvalidLiters",
			csv:     "Data;Matrícula;Descrição;Litros;Valor\n02-07-2024;AA-11-BB;GASOLEO;abc;15,00\n",
			wantErr: "invalid liters",
			wantIs:  statement.ErrMalformedRow,
		},
		{
			name:    "InvalidAmount",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;OFICINA SILVA;-588,7x\n31-01-2026;TAXA;-2,50\n",
			wantErr: `row 2: invalid amount "-588,7x"`,
			wantIs:  statement.ErrMalformedRow,
		},
		{
			name:    "InvalidDebit",
			csv:     "Data ;Data valor ;Descrição ;Débito ;Crédito ;\n16-12-2025 ;14-12-2025 ;PORTAGENS ;64.O0 ; ;\n",
			wantErr: "invalid debit",
			wantIs:  statement.ErrMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := statement.NewParser().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestParser_LargeAmountsAndFooters(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;FROTA NOVA;-1.234.567,89
00-00-0000;LIXO;-1,00
Totais;;;;
`

	st, err := statement.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, st.Lines, 1)

	assert.Equal(t, int64(123456789), st.Lines[0].Amount)
}

func TestParser_HeaderOnly(t *testing.T) {
	st, err := statement.NewParser().Parse(strings.NewReader("Data mov.;Data-valor;Descrição;Montante"))
	require.NoError(t, err)
	assert.Empty(t, st.Lines)
}
