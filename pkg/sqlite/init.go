// Package sqlite registers the "sqlite3_lumina" database/sql driver: the
// mattn/go-sqlite3 driver with connection pragmas applied on every connect.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3_lumina"

// pragmas run on each new connection. WAL lets readers proceed during a
// write; busy_timeout makes concurrent writers wait instead of failing.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, p := range pragmas {
				if _, err := conn.Exec(p, nil); err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
			}
			return nil
		},
	})
}
