package database_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/database"
)

func TestOpenSQLite(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:opentest?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := database.Open("mysql", "dsn")
	require.Error(t, err)

	_, err = database.ConnectSQLite("")
	require.Error(t, err)

	_, err = database.ConnectPostgres("")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := database.ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = database.ConnectRedis(context.Background(), "")
	require.Error(t, err)

	_, err = database.ConnectRedis(context.Background(), "not a url")
	require.Error(t, err)
}
