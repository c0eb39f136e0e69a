package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/storage/database"
)

var (
	migrateFunc = database.Migrate // mockable

	errNoMigrations = errors.New("migrations need the postgres driver")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Database.Driver != core.DriverPostgres {
		return errNoMigrations
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}
