package sql

import (
	"database/sql"
	"sync"

	"github.com/DawidMiftadinow/datatables-bundle/internal/pattern"
	"github.com/DawidMiftadinow/datatables-bundle/internal/textutil"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by OpenSQLite. It is the
// stock sqlite3 driver with a regexp function installed on every connection.
const DriverName = "sqlite3_datatables"

var (
	registerOnce sync.Once
	sqlPatterns  = pattern.NewCache(pattern.DefaultLimit)
)

// OpenSQLite opens a SQLite database that supports the REGEXP operator
func OpenSQLite(dsn string) (*sql.DB, error) {
	registerOnce.Do(func() {
		sql.Register(DriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", regexpMatch, true)
			},
		})
	})
	return sql.Open(DriverName, dsn)
}

// regexpMatch backs "value REGEXP expr", which SQLite calls as
// regexp(expr, value). NULL matches as the empty string.
func regexpMatch(expr string, value any) (bool, error) {
	re, err := sqlPatterns.Compile(expr)
	if err != nil {
		return false, err
	}
	return re.MatchString(textutil.ToText(value)), nil
}
