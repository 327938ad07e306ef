package main

import (
	"github.com/pressly/goose"
)

const migrationsDir = "storage/database/migrations"

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	return goose.Run(command, cli.db.DB, migrationsDir, args[1:]...)
}
