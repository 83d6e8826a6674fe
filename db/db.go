package db

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/tfkr-ae/raseed/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Repository provides a centralized structure for database operations, embedding the database connection.
// It implements storage.Store on the kv_store table.
type Repository struct {
	dbConn *sqlx.DB       // dbConn is the active database connection pool.
	driver storage.Driver // driver reports which SQL backend dbConn talks to.
}

// NewStoreRepo initializes a new Repository with the given sqlx.DB database connection.
// The driver is taken from the connection's driver name.
func NewStoreRepo(db *sqlx.DB) *Repository {
	driver := storage.DriverSQLite
	if db.DriverName() == "pgx" {
		driver = storage.DriverPostgres
	}
	return &Repository{
		dbConn: db,
		driver: driver,
	}
}

// Close terminates the database connection.
// It is critical to call this to free up database resources.
func (repo *Repository) Close() error {
	err := repo.dbConn.Close()
	if err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

// New establishes a new connection to a SQLite database file and applies all pending migrations.
// It enables WAL mode and a busy timeout so a second process reading the same file does not fail outright.
//
// The `name` parameter should be the file path for the SQLite database.
//
// It returns a ready-to-use sqlx.DB connection pool or an error if the connection or migrations fail.
func New(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewPostgres connects to a PostgreSQL server through the pgx driver and applies all pending migrations.
func NewPostgres(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres : %w", err)
	}

	if err := migrate(db, goose.DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB, dialect goose.Dialect) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("applying migration : %w", err)
	}
	return nil
}
