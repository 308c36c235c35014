// Package sqlrepo implements the repository ports on PostgreSQL and SQLite.
// SQL is built with goqu for the configured dialect and executed through sqlx.
package sqlrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	// Dialects registered with goqu.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"salemre/backend/internal/repository"
)

// Store implements repository.Store on a SQL database.
type Store struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	driver  string

	properties *PropertyRepository
	blog       *BlogRepository
	inquiries  *InquiryRepository
	users      *UserRepository
}

var _ repository.Store = (*Store)(nil)

// New wraps an open connection. driver is "postgres" or "sqlite".
func New(db *sqlx.DB, driver string) *Store {
	dialectName := "postgres"
	if driver == "sqlite" {
		dialectName = "sqlite3"
	}
	s := &Store{
		db:      db,
		dialect: goqu.Dialect(dialectName),
		driver:  driver,
	}
	b := &base{db: db, dialect: s.dialect, returning: driver != "sqlite"}
	s.properties = &PropertyRepository{base: b}
	s.blog = &BlogRepository{base: b}
	s.inquiries = &InquiryRepository{base: b}
	s.users = &UserRepository{base: b}
	return s
}

func (s *Store) Properties() repository.PropertyRepository { return s.properties }
func (s *Store) Blog() repository.BlogRepository { return s.blog }
func (s *Store) Inquiries() repository.InquiryRepository { return s.inquiries }
func (s *Store) Users() repository.UserRepository { return s.users }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := postgresSchema
	if s.driver == "sqlite" {
		ddl = sqliteSchema
	}
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	status        TEXT NOT NULL,
	phone         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS users_role_status_idx ON users (role, status);

CREATE TABLE IF NOT EXISTS properties (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	status      TEXT NOT NULL,
	location    TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	size        DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (size >= 0),
	bedrooms    INTEGER,
	bathrooms   INTEGER,
	featured    BOOLEAN NOT NULL DEFAULT FALSE,
	images      TEXT NOT NULL DEFAULT '[]',
	views       BIGINT NOT NULL DEFAULT 0,
	owner_id    BIGINT NOT NULL REFERENCES users (id),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS properties_status_created_idx ON properties (status, created_at DESC);
CREATE INDEX IF NOT EXISTS properties_type_price_idx ON properties (type, price);

CREATE TABLE IF NOT EXISTS blog_posts (
	id           BIGSERIAL PRIMARY KEY,
	title        TEXT NOT NULL,
	slug         TEXT NOT NULL UNIQUE,
	excerpt      TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	category     TEXT NOT NULL,
	cover_image  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	featured     BOOLEAN NOT NULL DEFAULT FALSE,
	views        BIGINT NOT NULL DEFAULT 0,
	author_id    BIGINT NOT NULL REFERENCES users (id),
	published_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS blog_posts_status_created_idx ON blog_posts (status, created_at DESC);

CREATE TABLE IF NOT EXISTS blog_post_tags (
	post_id BIGINT NOT NULL REFERENCES blog_posts (id) ON DELETE CASCADE,
	tag     TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);
CREATE INDEX IF NOT EXISTS blog_post_tags_tag_idx ON blog_post_tags (tag);

CREATE TABLE IF NOT EXISTS inquiries (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	phone       TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	property_id BIGINT REFERENCES properties (id) ON DELETE SET NULL,
	user_id     BIGINT REFERENCES users (id) ON DELETE SET NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS inquiries_status_created_idx ON inquiries (status, created_at DESC)
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	status        TEXT NOT NULL,
	phone         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS users_role_status_idx ON users (role, status);

CREATE TABLE IF NOT EXISTS properties (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL,
	status      TEXT NOT NULL,
	location    TEXT NOT NULL,
	price       REAL NOT NULL CHECK (price >= 0),
	size        REAL NOT NULL DEFAULT 0 CHECK (size >= 0),
	bedrooms    INTEGER,
	bathrooms   INTEGER,
	featured    BOOLEAN NOT NULL DEFAULT 0,
	images      TEXT NOT NULL DEFAULT '[]',
	views       INTEGER NOT NULL DEFAULT 0,
	owner_id    INTEGER NOT NULL REFERENCES users (id),
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS properties_status_created_idx ON properties (status, created_at DESC);
CREATE INDEX IF NOT EXISTS properties_type_price_idx ON properties (type, price);

CREATE TABLE IF NOT EXISTS blog_posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	slug         TEXT NOT NULL UNIQUE,
	excerpt      TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	category     TEXT NOT NULL,
	cover_image  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	featured     BOOLEAN NOT NULL DEFAULT 0,
	views        INTEGER NOT NULL DEFAULT 0,
	author_id    INTEGER NOT NULL REFERENCES users (id),
	published_at DATETIME,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS blog_posts_status_created_idx ON blog_posts (status, created_at DESC);

CREATE TABLE IF NOT EXISTS blog_post_tags (
	post_id INTEGER NOT NULL REFERENCES blog_posts (id) ON DELETE CASCADE,
	tag     TEXT NOT NULL,
	PRIMARY KEY (post_id, tag)
);
CREATE INDEX IF NOT EXISTS blog_post_tags_tag_idx ON blog_post_tags (tag);

CREATE TABLE IF NOT EXISTS inquiries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	phone       TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	property_id INTEGER REFERENCES properties (id) ON DELETE SET NULL,
	user_id     INTEGER REFERENCES users (id) ON DELETE SET NULL,
	status      TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS inquiries_status_created_idx ON inquiries (status, created_at DESC)
`
