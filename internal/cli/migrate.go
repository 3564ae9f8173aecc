package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "aplica las migraciones pendientes del esquema" }
func (*migrateCmd) Usage() string {
	return `stockctl migrate

  Aplica las migraciones embebidas sobre la base configurada (DATABASE_URL o DB_*).
  Es idempotente: las migraciones ya registradas no se vuelven a ejecutar.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()
	fmt.Println("migraciones aplicadas")
	return subcommands.ExitSuccess
}
