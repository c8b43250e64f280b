package sqldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	dsn := BuildPostgresDSN(DialInfo{Addr: "pg", DBName: "support", User: "bot", Pwd: "secret"})
	require.Equal(t, "host=pg user=bot password=secret dbname=support port=5432 sslmode=disable TimeZone=UTC", dsn)

	dsn = BuildPostgresDSN(DialInfo{Addr: "pg.internal:6432", DBName: "support", User: "bot", Pwd: "secret"})
	require.Equal(t, "host=pg.internal user=bot password=secret dbname=support port=6432 sslmode=disable TimeZone=UTC", dsn)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite memory", func(t *testing.T) {
		db, err := Open(ctx, " SQLite3 ", "file::memory:?cache=shared")
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, db.Close()) })
		require.NoError(t, db.PingContext(ctx))
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := Open(ctx, "mysql", "root@/support")
		require.ErrorContains(t, err, "unsupported sql driver")
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		_, err := Open(ctx, DriverPostgres, "")
		require.Error(t, err)
	})
}
