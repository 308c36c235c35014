package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	// Drivers for STORE_DRIVER=postgres and STORE_DRIVER=sqlite.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ConnectSQL opens and pings a PostgreSQL or SQLite database.
func ConnectSQL(driver, dsn string) (*sqlx.DB, error) {
	var driverName string
	switch driver {
	case "postgres":
		driverName = "postgres"
	case "sqlite":
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}
	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// One connection that is never recycled keeps an in-memory database
		// alive and serialises writers.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	log.Info().Str("driver", driver).Msg("connected to SQL database")
	return conn, nil
}

// sqliteDSN turns on foreign keys through the DSN so every connection the
// driver opens gets them, not only the first.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
