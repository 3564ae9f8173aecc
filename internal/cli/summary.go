package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

type summaryCmd struct {
	day string
	pdf string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "resumen del día: entradas, salidas y stock bajo" }
func (*summaryCmd) Usage() string {
	return `stockctl summary [-day YYYY-MM-DD] [-pdf <archivo>]

  El día se interpreta en la zona LEDGER_TIMEZONE. Con -pdf escribe además el reporte.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.day, "day", "", "Día a resumir (por defecto hoy).")
	f.StringVar(&p.pdf, "pdf", "", "Ruta donde guardar el reporte en PDF.")
}

func (p *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	var day *time.Time
	if p.day != "" {
		d, err := domaininv.ParseDay(p.day, app.DashboardUC.Location())
		if err != nil {
			return usageError("día inválido %q: %v", p.day, err)
		}
		day = &d
	}

	s, err := app.DashboardUC.GetSummary(ctx, day)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Día:        %s (%s)\n", s.Day, s.Timezone)
	fmt.Printf("Productos:  %d\n", s.TotalProducts)
	fmt.Printf("Entradas:   %s\n", s.Entries)
	fmt.Printf("Salidas:    %s\n", s.Exits)
	fmt.Printf("Stock bajo: %d\n\n", s.LowStockCount)
	if len(s.LowStockPreview) > 0 {
		printLevels(s.LowStockPreview)
	}

	if p.pdf != "" {
		b, err := app.DashboardUC.RenderReport(ctx, day)
		if err != nil {
			return fail(err)
		}
		if err := os.WriteFile(p.pdf, b, 0o644); err != nil {
			return fail(err)
		}
		fmt.Printf("\nreporte escrito en %s\n", p.pdf)
	}
	return subcommands.ExitSuccess
}
