package database

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"dmrelay/internal/config"
)

func TestDSN_MySQL(t *testing.T) {
	cfg := config.Config{
		DBDriver:   config.DriverMySQL,
		DBUser:     "relay",
		DBPassword: "pw",
		DBHost:     "db.internal",
		DBPort:     "3307",
		DBName:     "dm",
	}

	driver, dsn := DSN(cfg)

	require.Equal(t, "mysql", driver)
	require.Equal(t, "relay:pw@tcp(db.internal:3307)/dm?parseTime=true&charset=utf8mb4", dsn)
}

func TestDSN_SQLite(t *testing.T) {
	driver, dsn := DSN(config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"})

	require.Equal(t, "sqlite3", driver)
	require.Equal(t, ":memory:?_foreign_keys=1&_busy_timeout=5000", dsn)
}

func TestInit_SQLiteCreatesSchema(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := Init(config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}, log)
	req.NoError(err)
	defer db.Close()

	for _, table := range []string{"users", "friends", "messages"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		req.NoError(err, table)
		req.Equal(table, name)
	}

	// 二回目のマイグレーションは冪等
	req.NoError(Migrate(db, config.DriverSQLite))
}

func TestMySQLSchema_BodiesHoldFullFrames(t *testing.T) {
	schema := strings.Join(mysqlSchema, "\n")

	// TEXT caps at 65,535 bytes, far below the websocket frame limit
	require.Contains(t, schema, "text_body LONGTEXT NULL")
	require.Contains(t, schema, "image_body LONGTEXT NULL")
	require.NotContains(t, schema, "text_body TEXT")
}
