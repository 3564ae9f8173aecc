// stockctl herramienta de operación del diario de stock: migraciones, importación del catálogo,
// registro manual de movimientos y verificación del stock materializado.
//
// Uso: go run ./cmd/stockctl <comando> [flags]
// Lee la misma configuración que la API (.env o variables de entorno).
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/jhoicas/stock-ledger/internal/cli"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
