package roomstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"livedraw/internal/dbx"
	"livedraw/internal/server/migrations"
)

// PostgresRepository implements room-id persistence over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Exists reports whether the room id has been provisioned.
func (r *PostgresRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, roomID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create registers the room id. Conflicting inserts are ignored so Create
// is safe to retry.
func (r *PostgresRepository) Create(ctx context.Context, roomID string) error {
	query := `INSERT INTO rooms (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, roomID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Provision registers all the given room ids in one transaction, so a failed
// seed never leaves a partial list behind.
func Provision(ctx context.Context, db *sql.DB, roomIDs []string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewPostgresRepository(tx)
		for _, id := range roomIDs {
			if err := repo.Create(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Open connects to PostgreSQL via the pgx stdlib driver and applies pending
// goose migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
