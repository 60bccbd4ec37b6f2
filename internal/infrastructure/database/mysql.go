package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/recordbase/backend/internal/config"
)

// Connection wraps the MySQL connection pool
type Connection struct {
	db *sql.DB
}

var tlsOnce sync.Once // Ensure TLS config is registered only once

// BuildDSN returns the driver DSN for cfg. Sessions run with ANSI_QUOTES so double quoted
// identifiers in generated queries are valid.
func BuildDSN(cfg *config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{
		"charset":  "utf8mb4",
		"sql_mode": "CONCAT(@@sql_mode, ',ANSI_QUOTES')",
	}

	if isRemoteHost(cfg.DBHost) {
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig("recordbase", &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: cfg.DBHost,
			}); err != nil {
				log.Printf("Failed to register TLS config: %v\n", err)
			}
		})
		mc.TLSConfig = "recordbase"
	}

	return mc.FormatDSN()
}

func isRemoteHost(host string) bool {
	return host != "" && host != "127.0.0.1" && host != "localhost"
}

// Open creates the connection pool and verifies it with a ping
func Open(ctx context.Context, cfg *config.Config) (*Connection, error) {
	db, err := sql.Open("mysql", BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// MaxIdleConns matches MaxOpenConns to keep connections alive under load
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(50)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Connection{db: db}, nil
}

// DB returns the underlying *sql.DB connection
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
