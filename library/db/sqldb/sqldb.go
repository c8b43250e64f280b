// Package sqldb opens the relational database shared by the support stores.
package sqldb

import (
	"context"
	"database/sql"
	"net"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSqlite is the mattn/go-sqlite3 driver name
	DriverSqlite = "sqlite3"
	// DriverPostgres is the pgx stdlib driver name
	DriverPostgres = "pgx"

	// DefaultSqliteDSN is used when no dsn is configured for sqlite
	DefaultSqliteDSN = "data/support.db"
)

// DialInfo postgres dial info
type DialInfo struct {
	Addr,
	DBName,
	User,
	Pwd string
}

// BuildPostgresDSN builds a PostgreSQL DSN from dial info.
//
// Addr is `host` or `host:port`, the port defaults to 5432.
func BuildPostgresDSN(dialInfo DialInfo) string {
	host, port := dialInfo.Addr, "5432"
	if h, p, err := net.SplitHostPort(dialInfo.Addr); err == nil {
		host, port = h, p
	}

	return "host=" + host + " user=" + dialInfo.User + " password=" + dialInfo.Pwd +
		" dbname=" + dialInfo.DBName + " port=" + port + " sslmode=disable TimeZone=UTC"
}

// Open opens and pings a database with the given driver.
//
// Only sqlite3 and pgx are accepted. An empty sqlite dsn falls back to DefaultSqliteDSN.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverSqlite:
		if dsn == "" {
			dsn = DefaultSqliteDSN
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
	default:
		return nil, errors.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}

	// config db
	if driver == DriverSqlite {
		// sqlite serializes writers anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(6)
		db.SetMaxOpenConns(50)
	}
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}
