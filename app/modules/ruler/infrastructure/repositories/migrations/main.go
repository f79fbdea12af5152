package rulermigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema of the tables with a fixed layout. Group tables
// are created on first use and are not part of it.
var Migrations = migrate.NewMigrations()

func init() {
	// Derive each migration's ID from its file name.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
