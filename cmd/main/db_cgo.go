//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func initDB(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", cacheDSN(path, "_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"))
}
