package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/lib/pq"
)

// Backend serves blobs stored as rows in a PostgreSQL table
type Backend struct {
	db    *sql.DB
	table string // quoted identifier
}

// New connects to PostgreSQL and makes sure the blob table exists.
func New(ctx context.Context, connStr, table string) (*Backend, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	backend := &Backend{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
	if err := backend.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return backend, nil
}

func (p *Backend) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			size BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`, p.table)
	_, err := p.db.ExecContext(ctx, query)
	return err
}

// Stat reads the stored size column.
func (p *Backend) Stat(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf("SELECT size FROM %s WHERE id = $1", p.table)
	var size int64
	err := p.db.QueryRowContext(ctx, query, id).Scan(&size)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat blob: %w", err)
	}
	return size, nil
}

func (p *Backend) Get(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE id = $1", p.table)
	var data []byte
	err := p.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (p *Backend) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", p.table)
	result, err := p.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	return nil
}

func (p *Backend) Close() error {
	return p.db.Close()
}
