package repository

import (
	"context"
	"fmt"
	"time"

	"field-match/internal/database"
	"field-match/internal/domain/match"

	"github.com/google/uuid"
)

// MatchArchiveRepository is the durable tier matches move to when their job
// closes or their retention window elapses.
type MatchArchiveRepository interface {
	ArchiveMatches(ctx context.Context, matches []match.Match) error
	CountForJob(ctx context.Context, jobID uuid.UUID) (int64, error)
}

type PostgresMatchArchiveRepository struct {
	db database.DB
}

func NewPostgresMatchArchiveRepository(db database.DB) *PostgresMatchArchiveRepository {
	return &PostgresMatchArchiveRepository{db: db}
}

// EnsureSchema creates the archive table when absent. The live engine state
// is in-memory; this table is the only relation the service owns.
func EnsureSchema(ctx context.Context, db database.DB) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_archive (
			match_id            UUID PRIMARY KEY,
			job_id              UUID NOT NULL,
			engineer_id         UUID NOT NULL,
			client_id           UUID NOT NULL,
			match_score         INT NOT NULL,
			estimated_price     BIGINT NOT NULL,
			proposed_start_date TIMESTAMPTZ,
			message             TEXT,
			state               TEXT NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL,
			viewed_at           TIMESTAMPTZ,
			responded_at        TIMESTAMPTZ,
			expires_at          TIMESTAMPTZ NOT NULL,
			archived_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure match_archive schema: %w", err)
	}
	_, err = db.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_match_archive_job ON match_archive (job_id)`)
	if err != nil {
		return fmt.Errorf("ensure match_archive index: %w", err)
	}
	return nil
}

// ArchiveMatches inserts the batch in one transaction; re-archiving the same
// match is a no-op so a retried sweep cannot duplicate rows.
func (r *PostgresMatchArchiveRepository) ArchiveMatches(ctx context.Context, matches []match.Match) error {
	if r == nil || r.db == nil || len(matches) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, m := range matches {
		_, err := tx.Exec(ctx, `
			INSERT INTO match_archive (
				match_id, job_id, engineer_id, client_id, match_score,
				estimated_price, proposed_start_date, message, state,
				created_at, viewed_at, responded_at, expires_at, archived_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (match_id) DO NOTHING`,
			m.ID, m.JobID, m.EngineerID, m.ClientID, m.MatchScore,
			m.EstimatedPrice, m.ProposedStartDate, m.Message, string(m.State),
			m.CreatedAt, m.ViewedAt, m.RespondedAt, m.ExpiresAt, now,
		)
		if err != nil {
			return fmt.Errorf("archive match %s: %w", m.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresMatchArchiveRepository) CountForJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	if r == nil || r.db == nil {
		return 0, nil
	}
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM match_archive WHERE job_id = $1`, jobID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
