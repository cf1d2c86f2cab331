//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// sqliteDriver is the database/sql driver name of the pure Go build.
const sqliteDriver = "sqlite"

func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqliteDriver, dataSource)
}
