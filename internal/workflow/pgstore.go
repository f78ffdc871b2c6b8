package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists workflow records as jsonb rows, one per workflow. The
// record is written whole on every transition; row-level locking makes
// Update atomic across server instances.
type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{DB: db} }

// EnsureSchema creates the workflows table if absent.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, `CREATE TABLE IF NOT EXISTS workflows(
workflow_id BIGINT PRIMARY KEY,
record JSONB NOT NULL,
updated_at TIMESTAMPTZ NOT NULL DEFAULT now())`)
	return err
}

func (s *PGStore) Get(ctx context.Context, workflowID int64) (Record, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT record FROM workflows WHERE workflow_id=$1`, workflowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PGStore) Put(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `INSERT INTO workflows(workflow_id,record)
VALUES($1,$2::jsonb)
ON CONFLICT (workflow_id) DO UPDATE SET record=$2::jsonb, updated_at=now()`, rec.WorkflowID, string(raw))
	return err
}

func (s *PGStore) Update(ctx context.Context, workflowID int64, fn func(*Record) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT record FROM workflows WHERE workflow_id=$1 FOR UPDATE`, workflowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE workflows SET record=$2::jsonb, updated_at=now() WHERE workflow_id=$1`, workflowID, string(out)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
