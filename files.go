package users

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

//go:embed data/fixtures
var fixturesFS embed.FS

// GetFixturesFS returns the seed fixtures (default roles) for this package
func GetFixturesFS() embed.FS {
	return fixturesFS
}
