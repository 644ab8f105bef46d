package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// StudentDB is the Postgres store behind the coordination services. Every
// resource is kept as a JSON document keyed by resource name and identifier.
type StudentDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewStudentDB opens the database. An empty connection string falls back to
// the DATABASE_URL environment variable.
func NewStudentDB(connStr string, log *zerolog.Logger) (*StudentDB, error) {
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		log.Error().Msg("DATABASE_URL environment variable is not set")
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &StudentDB{
		DB:  db,
		Log: log,
	}, nil
}

func (s *StudentDB) Close() error {
	if err := s.DB.Close(); err != nil {
		return err
	}
	s.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate applies all pending goose migrations.
func (s *StudentDB) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("error setting migration dialect: %w", err)
	}

	if err := goose.Up(s.DB, "migrations"); err != nil {
		s.Log.Error().Err(err).Msg("error applying migrations")
		return fmt.Errorf("error applying migrations: %w", err)
	}

	s.Log.Info().Msg("Tables initialized successfully")
	return nil
}

// Ping is used by the readiness probe.
func (s *StudentDB) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *StudentDB) CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}
	return nil
}

func (s *StudentDB) execQuery(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) error {

	if s.DB == nil {
		return fmt.Errorf("database connection is not established")
	}

	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
