package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fleetledger/internal/encoding"
)

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Data;Matrícula;Descrição;Valor\n02-07-2024;AA-11-BB;Gasóleo;-84,10\n"),
			want:        "Data;Matrícula;Descrição;Valor\n02-07-2024;AA-11-BB;Gasóleo;-84,10\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			// ç = 0xE7, ã = 0xE3 in Windows-1252.
			name:  "Windows1252",
			input: []byte{'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';', 'V', 'a', 'l', 'o', 'r', '\n'},
			want:  "Descrição;Valor\n",
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Descrição;Valor\n")...),
			want:        "Descrição;Valor\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'O', 0x00, 'K', 0x00},
			want:        "OK",
			wantCharset: encoding.CharsetUTF16LE,
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.CharsetUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			} else {
				assert.NotEqual(t, encoding.CharsetUTF8, charset)
			}

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	line := "02-07-2024;AA-11-BB;Gasóleo;-84,10\n"
	input := bytes.Repeat([]byte(line), 500)

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}
