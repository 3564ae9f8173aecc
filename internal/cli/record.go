package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

type recordCmd struct {
	product string
	kind    string
	qty     string
	key     string
	note    string
	at      string
	user    string
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "registra una entrada o salida en el diario" }
func (*recordCmd) Usage() string {
	return `stockctl record -product <código> -kind ENTRY|EXIT -qty <cantidad> [-key <llave>] [-note <nota>] [-at <RFC3339>]

  Agrega un movimiento al diario y muestra el stock resultante. Con -key el comando
  se puede repetir sin duplicar el movimiento.
`
}

func (p *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.product, "product", "", "Código del producto.")
	f.StringVar(&p.kind, "kind", "", "Tipo de movimiento: ENTRY o EXIT.")
	f.StringVar(&p.qty, "qty", "", "Cantidad (> 0).")
	f.StringVar(&p.key, "key", "", "Llave de idempotencia.")
	f.StringVar(&p.note, "note", "", "Nota libre.")
	f.StringVar(&p.at, "at", "", "Fecha del movimiento en RFC3339 (por defecto ahora).")
	f.StringVar(&p.user, "user", "stockctl", "Usuario que registra el movimiento.")
}

func (p *recordCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.product == "" || p.kind == "" || p.qty == "" {
		return usageError("-product, -kind y -qty son requeridos")
	}
	qty, err := parseDecimal(p.qty)
	if err != nil {
		return usageError("cantidad inválida %q: %v", p.qty, err)
	}
	var occurredAt *time.Time
	if p.at != "" {
		t, err := time.Parse(time.RFC3339, p.at)
		if err != nil {
			return usageError("fecha inválida %q: %v", p.at, err)
		}
		occurredAt = &t
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	product, err := app.ProductUC.GetByCode(ctx, p.product)
	if err != nil {
		return fail(err)
	}
	if product == nil {
		return fail(fmt.Errorf("producto %s no encontrado", p.product))
	}

	out, err := app.RecordUC.RecordMovement(ctx, inventory.RecordMovementInput{
		UserID:         p.user,
		ProductID:      product.ID,
		Kind:           p.kind,
		Quantity:       qty,
		OccurredAt:     occurredAt,
		Note:           p.note,
		IdempotencyKey: p.key,
	})
	if err != nil {
		return fail(err)
	}
	status := "registrado"
	if out.Replayed {
		status = "ya registrado"
	}
	fmt.Printf("%s %s: stock %s %s", status, out.ID, out.CurrentStock, product.Unit)
	if out.LowStock {
		fmt.Print(" (stock bajo)")
	}
	fmt.Println()
	return subcommands.ExitSuccess
}
