// Package cli contiene los subcomandos de stockctl, la herramienta de operación del diario.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Register registra los subcomandos agrupados por tema.
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "store")
	c.Register(&verifyStockCmd{}, "store")

	c.Register(&importProductsCmd{}, "catalog")

	c.Register(&recordCmd{}, "ledger")
	c.Register(&stockCmd{}, "ledger")
	c.Register(&lowStockCmd{}, "ledger")
	c.Register(&summaryCmd{}, "ledger")
}

// openApp carga la configuración, inicializa el logger y conecta las dependencias.
// Con el driver memory aplica igual las migraciones (no-op) para que los comandos no dependan del orden.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := app.Migrate(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
