package submit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ledgerdesk/internal/domain"
)

// Sink receives the terminal hand-off of a submitted draft. The core makes a
// single synchronous call per submission and holds no resource afterwards.
type Sink interface {
	Record(ctx context.Context, p Payload) error
}

// DiscardSink drops payloads. Useful in tests and for dry runs.
type DiscardSink struct{}

func (DiscardSink) Record(context.Context, Payload) error { return nil }

// Journal appends submissions to the workspace database, one row per
// snapshot. It is the stock external collaborator: the draft core never reads
// these rows back, only the CLI does.
type Journal struct {
	DB  *sql.DB
	Now func() time.Time
}

// Record implements Sink.
func (j Journal) Record(ctx context.Context, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal submission payload: %w", err)
	}
	tx, err := j.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `INSERT INTO submissions(id,kind,submitted_at,payload_json) VALUES (?,?,?,?)`,
		p.ID, string(p.Kind), p.SubmittedAt, string(data)); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return tx.Commit()
}

// Entry is one journal row as stored.
type Entry struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	SubmittedAt string `json:"submitted_at" format:"date-time"`
	PayloadJSON string `json:"payload_json"`
}

// List returns the most recent submissions, newest first.
func (j Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.DB.QueryContext(ctx, `SELECT id,kind,submitted_at,payload_json FROM submissions ORDER BY submitted_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var r Entry
		if err := rows.Scan(&r.ID, &r.Kind, &r.SubmittedAt, &r.PayloadJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get fetches one submission by id.
func (j Journal) Get(ctx context.Context, id string) (Entry, error) {
	var r Entry
	err := j.DB.QueryRowContext(ctx, `SELECT id,kind,submitted_at,payload_json FROM submissions WHERE id=?`, id).
		Scan(&r.ID, &r.Kind, &r.SubmittedAt, &r.PayloadJSON)
	if err == sql.ErrNoRows {
		return r, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return r, err
}
