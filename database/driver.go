//go:build !sqlite_glebarez

package database

import (
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
)

// GetDialect opens the sqlite file at dsn. ":memory:" gives a private in-memory database.
func GetDialect(dsn string) gorm.Dialector {
	return gormlite.Open(dsn)
}
