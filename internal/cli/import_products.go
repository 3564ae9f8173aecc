package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var productColumns = []string{"code", "name", "unit", "minimum_threshold"}

type importProductsCmd struct {
	latin1    bool
	dryRun    bool
	delimiter string
}

func (*importProductsCmd) Name() string     { return "import-products" }
func (*importProductsCmd) Synopsis() string { return "importa el catálogo de productos desde un CSV" }
func (*importProductsCmd) Usage() string {
	return `stockctl import-products [-latin1] [-dry-run] [-d ,] <archivo.csv>

  El CSV lleva encabezado con las columnas code,name,unit,minimum_threshold y
  opcionalmente description. Los códigos que ya existen se omiten.
`
}

func (p *importProductsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.latin1, "latin1", false, "El archivo viene en ISO-8859-1 (exportaciones de Excel).")
	f.BoolVar(&p.dryRun, "dry-run", false, "Solo valida el archivo, no escribe nada.")
	f.StringVar(&p.delimiter, "d", ",", "Separador de columnas.")
}

func (p *importProductsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("se espera exactamente un archivo CSV")
	}
	if len([]rune(p.delimiter)) != 1 {
		return usageError("separador inválido: %q", p.delimiter)
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	var r io.Reader = file
	if p.latin1 {
		r = transform.NewReader(file, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseProductsCSV(r, []rune(p.delimiter)[0])
	if err != nil {
		return fail(err)
	}
	if p.dryRun {
		fmt.Printf("%d productos válidos\n", len(rows))
		return subcommands.ExitSuccess
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	var created, skipped int
	for _, row := range rows {
		if _, err := app.ProductUC.Create(ctx, row); err != nil {
			if errors.Is(err, domain.ErrDuplicateCode) {
				skipped++
				continue
			}
			return fail(fmt.Errorf("producto %s: %w", row.Code, err))
		}
		created++
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("importación de productos terminada")
	fmt.Printf("%d creados, %d omitidos (código existente)\n", created, skipped)
	return subcommands.ExitSuccess
}

// parseProductsCSV lee el catálogo. Las columnas se ubican por el encabezado, sin importar su orden.
// El umbral acepta coma decimal ("2,5").
func parseProductsCSV(r io.Reader, comma rune) ([]dto.CreateProductRequest, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("archivo vacío")
		}
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range productColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q", col)
		}
	}
	descIdx, hasDesc := idx["description"]

	var out []dto.CreateProductRequest
	seen := make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		row := dto.CreateProductRequest{
			Code: field(idx["code"]),
			Name: field(idx["name"]),
			Unit: field(idx["unit"]),
		}
		if row.Code == "" && row.Name == "" {
			continue
		}
		if row.Code == "" || row.Name == "" || row.Unit == "" {
			return nil, fmt.Errorf("línea %d: code, name y unit son requeridos", line)
		}
		if prev, dup := seen[row.Code]; dup {
			return nil, fmt.Errorf("línea %d: código %s repetido (línea %d)", line, row.Code, prev)
		}
		seen[row.Code] = line

		threshold, err := parseDecimal(field(idx["minimum_threshold"]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: minimum_threshold: %w", line, err)
		}
		if threshold.IsNegative() {
			return nil, fmt.Errorf("línea %d: %w", line, domain.ErrInvalidThreshold)
		}
		row.MinimumThreshold = threshold
		if hasDesc {
			row.Description = field(descIdx)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
