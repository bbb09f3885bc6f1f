package history

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS soil_classifications (
	id         UUID PRIMARY KEY,
	source     TEXT NOT NULL,
	soil       TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects to connStr and makes sure the table exists.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("can't connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("can't init history table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Record(ctx context.Context, rec Record) (Record, error) {
	rec = prepare(rec)
	const query = `
		INSERT INTO soil_classifications (id, source, soil, confidence, created_at)
		VALUES (:id, :source, :soil, :confidence, :created_at)`
	if _, err := p.db.NamedExecContext(ctx, query, rec); err != nil {
		return Record{}, fmt.Errorf("can't save classification: %w", err)
	}
	return rec, nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT id, source, soil, confidence, created_at
		FROM soil_classifications
		ORDER BY created_at DESC
		LIMIT $1`
	var records []Record
	if err := p.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("can't query classifications: %w", err)
	}
	return records, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
