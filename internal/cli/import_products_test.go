package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestParseProductsCSV(t *testing.T) {
	in := "name,code,unit,minimum_threshold,description\n" +
		"Tornillo 3/8,P-001,und,10,acero\n" +
		"Pintura,P-002,gal,\"2,5\",\n" +
		",,,,\n" +
		"Cable,P-003,m,,\n"

	rows, err := parseProductsCSV(strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "P-001", rows[0].Code)
	assert.Equal(t, "Tornillo 3/8", rows[0].Name)
	assert.Equal(t, "acero", rows[0].Description)
	assert.True(t, rows[0].MinimumThreshold.Equal(decimal.NewFromInt(10)))
	assert.True(t, rows[1].MinimumThreshold.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, rows[2].MinimumThreshold.IsZero())
}

func TestParseProductsCSV_Latin1YPuntoYComa(t *testing.T) {
	src := "code;name;unit;minimum_threshold\nP-010;Válvula de presión;und;3\n"
	var buf bytes.Buffer
	enc := transform.NewWriter(&buf, charmap.ISO8859_1.NewEncoder())
	_, err := enc.Write([]byte(src))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	rows, err := parseProductsCSV(transform.NewReader(&buf, charmap.ISO8859_1.NewDecoder()), ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Válvula de presión", rows[0].Name)
}

func TestParseProductsCSV_Errores(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"vacío", "", "archivo vacío"},
		{"falta columna", "code,name,unit\nP1,A,und\n", `falta la columna "minimum_threshold"`},
		{"sin unidad", "code,name,unit,minimum_threshold\nP1,A,,1\n", "línea 2"},
		{"código repetido", "code,name,unit,minimum_threshold\nP1,A,und,1\nP1,B,und,1\n", "repetido"},
		{"umbral inválido", "code,name,unit,minimum_threshold\nP1,A,und,x\n", "minimum_threshold"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseProductsCSV(strings.NewReader(tc.in), ',')
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseProductsCSV_UmbralNegativo(t *testing.T) {
	_, err := parseProductsCSV(strings.NewReader("code,name,unit,minimum_threshold\nP1,A,und,-1\n"), ',')
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}
