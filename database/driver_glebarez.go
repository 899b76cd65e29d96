//go:build sqlite_glebarez

package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// GetDialect opens the sqlite file at dsn with the pure Go driver.
func GetDialect(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}
