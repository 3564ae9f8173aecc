package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

type verifyStockCmd struct {
	product string
	repair  bool
}

func (*verifyStockCmd) Name() string { return "verify-stock" }
func (*verifyStockCmd) Synopsis() string {
	return "compara el stock materializado con la suma del diario"
}
func (*verifyStockCmd) Usage() string {
	return `stockctl verify-stock [-product <código>] [-repair]

  Sin -product revisa todo el catálogo. Con -repair recalcula desde el diario
  los productos que no coinciden. Sale con código 1 si queda alguna diferencia.
`
}

func (p *verifyStockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.product, "product", "", "Código del producto a revisar.")
	f.BoolVar(&p.repair, "repair", false, "Recalcula el stock de los productos inconsistentes.")
}

func (p *verifyStockCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	products, err := p.targets(ctx, app)
	if err != nil {
		return fail(err)
	}

	w := newTable(os.Stdout)
	fmt.Fprintln(w, "CÓDIGO\tDIARIO\tMATERIALIZADO\tESTADO\t")
	var pending int
	for _, prod := range products {
		v, err := app.StockUC.VerifyStock(ctx, prod.ID)
		if err != nil && !errors.Is(err, domain.ErrInconsistent) {
			w.Flush()
			return fail(fmt.Errorf("producto %s: %w", prod.Code, err))
		}
		state := "ok"
		if !v.Consistent {
			state = "difiere"
			if p.repair {
				rebuilt, err := app.StockUC.RebuildStock(ctx, prod.ID)
				if err != nil {
					w.Flush()
					return fail(fmt.Errorf("producto %s: %w", prod.Code, err))
				}
				state = "reparado -> " + rebuilt.String()
			} else {
				pending++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", prod.Code, v.Journal, v.Cached, state)
	}
	w.Flush()

	if pending > 0 {
		fmt.Fprintf(os.Stderr, "%d productos con diferencias\n", pending)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (p *verifyStockCmd) targets(ctx context.Context, app *bootstrap.App) ([]dto.ProductResponse, error) {
	if p.product != "" {
		prod, err := app.ProductUC.GetByCode(ctx, p.product)
		if err != nil {
			return nil, err
		}
		if prod == nil {
			return nil, fmt.Errorf("producto %s no encontrado", p.product)
		}
		return []dto.ProductResponse{*prod}, nil
	}

	var all []dto.ProductResponse
	page := dto.PageRequest{Limit: 100}
	for {
		list, err := app.ProductUC.Search(ctx, "", page)
		if err != nil {
			return nil, err
		}
		for _, it := range list.Items {
			all = append(all, it.ProductResponse)
		}
		page.Offset += len(list.Items)
		if len(list.Items) == 0 || page.Offset >= list.Page.Total {
			return all, nil
		}
	}
}
