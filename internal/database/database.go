package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"dmrelay/internal/config"
)

// Init opens the configured database, verifies the connection and applies the schema.
func Init(cfg config.Config, log *slog.Logger) (*sql.DB, error) {
	driver, dsn := DSN(cfg)

	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("Database connection established", "driver", driver)
	return db, nil
}

// DSN builds the driver name and data source name from the configuration.
func DSN(cfg config.Config) (driver, dsn string) {
	if cfg.DBDriver == config.DriverSQLite {
		return config.DriverSQLite, cfg.SQLitePath + "?_foreign_keys=1&_busy_timeout=5000"
	}
	return config.DriverMySQL, fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)
}

// Open opens and pings a database handle.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serialises writers; a single connection also keeps :memory: databases shared.
	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	// 接続テスト
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they do not exist yet.
func Migrate(db *sql.DB, driver string) error {
	queries := mysqlSchema
	if driver == config.DriverSQLite {
		queries = sqliteSchema
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		handle VARCHAR(64) NOT NULL UNIQUE,
		display_name VARCHAR(128) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		avatar_url TEXT NULL,
		bio TEXT NULL,
		created_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS friends (
		owner_id BIGINT NOT NULL,
		friend_id BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (owner_id, friend_id),
		FOREIGN KEY (owner_id) REFERENCES users(id),
		FOREIGN KEY (friend_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		text_body LONGTEXT NULL,
		image_body LONGTEXT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_messages_pair (sender_id, receiver_id, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	// text_body は TEXT (64KB) だと最大フレーム長のテキストを保存できない
	`ALTER TABLE messages MODIFY text_body LONGTEXT NULL`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		handle TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		avatar_url TEXT NULL,
		bio TEXT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS friends (
		owner_id INTEGER NOT NULL REFERENCES users(id),
		friend_id INTEGER NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (owner_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL,
		receiver_id INTEGER NOT NULL,
		text_body TEXT NULL,
		image_body TEXT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, id)`,
}
