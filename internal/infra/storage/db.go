package storage

import (
	"context"
	"database/sql"
	"embed"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrUnknownDriver = errors.New("unknown database driver")
	rePgPlaceholder  = regexp.MustCompile(`\$(\d+)`)
)

// Dialect es el nombre de dialecto que entiende goose.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DB envuelve la conexión y recuerda el dialecto. Las queries se escriben
// con placeholders $N y rebind las adapta a SQLite (?N).
type DB struct {
	*sql.DB
	dialect Dialect
}

func (d *DB) Dialect() Dialect { return d.dialect }

func (d *DB) rebind(query string) string {
	if d.dialect == DialectSQLite {
		return rePgPlaceholder.ReplaceAllString(query, "?${1}")
	}
	return query
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.QueryRowContext(ctx, d.rebind(query), args...)
}

// Open abre la conexión (pgx stdlib o sqlite3) y verifica health.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch driver {
	case "postgres", "pgx":
		dialect = DialectPostgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(1 * time.Hour)
	case "sqlite3", "sqlite":
		dialect = DialectSQLite
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		// una sola conexión: SQLite serializa escrituras y ":memory:" es por conexión
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	default:
		return nil, errors.Wrap(ErrUnknownDriver, driver)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "db ping")
	}
	return &DB{DB: db, dialect: dialect}, nil
}

// Migrate aplica todas las migraciones embebidas.
func Migrate(db *DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(db.dialect)); err != nil {
		return errors.Wrap(err, "goose dialect")
	}
	return errors.Wrap(goose.Up(db.DB, "migrations"), "goose up")
}
