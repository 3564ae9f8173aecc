package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

type stockCmd struct{}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "muestra el stock actual de uno o más productos" }
func (*stockCmd) Usage() string {
	return `stockctl stock <código>...
`
}

func (*stockCmd) SetFlags(*flag.FlagSet) {}

func (*stockCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError("indique al menos un código de producto")
	}
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	levels := make([]dto.StockLevelResponse, 0, f.NArg())
	for _, code := range f.Args() {
		product, err := app.ProductUC.GetByCode(ctx, code)
		if err != nil {
			return fail(err)
		}
		if product == nil {
			return fail(fmt.Errorf("producto %s no encontrado", code))
		}
		level, err := app.StockUC.GetStockLevel(ctx, product.ID)
		if err != nil {
			return fail(err)
		}
		levels = append(levels, *level)
	}
	printLevels(levels)
	return subcommands.ExitSuccess
}

type lowStockCmd struct {
	limit int
}

func (*lowStockCmd) Name() string     { return "low-stock" }
func (*lowStockCmd) Synopsis() string { return "lista los productos en o por debajo de su mínimo" }
func (*lowStockCmd) Usage() string {
	return `stockctl low-stock [-n <límite>]

  Ordena por stock ascendente y, a igual stock, por código.
`
}

func (p *lowStockCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.limit, "n", 50, "Cantidad máxima de productos.")
}

func (p *lowStockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	levels, total, err := app.StockUC.LowStockSnapshot(ctx, p.limit)
	if err != nil {
		return fail(err)
	}
	printLevels(levels)
	fmt.Printf("\n%d productos en stock bajo\n", total)
	return subcommands.ExitSuccess
}

func printLevels(levels []dto.StockLevelResponse) {
	w := newTable(os.Stdout)
	fmt.Fprintln(w, "CÓDIGO\tNOMBRE\tSTOCK\tMÍNIMO\tUNIDAD\t")
	for _, l := range levels {
		mark := ""
		if l.LowStock {
			mark = "bajo"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", l.Code, l.Name, l.CurrentStock, l.MinimumThreshold, l.Unit, mark)
	}
	w.Flush()
}
