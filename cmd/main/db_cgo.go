//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDriver is the database/sql driver name of the cgo build.
const sqliteDriver = "sqlite3"

func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqliteDriver, dataSource)
}
