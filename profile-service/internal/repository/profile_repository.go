package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

const msgConcurrentUpdate = "Your data was changed by another request, please try again"

// ProfileWriteRepository is the source of truth for profiles. Each profile
// is one JSONB document guarded by a version column.
type ProfileWriteRepository struct {
	db *sql.DB
}

func NewProfileWriteRepository(db *sql.DB) *ProfileWriteRepository {
	return &ProfileWriteRepository{db: db}
}

// Get loads the current document and its version.
func (r *ProfileWriteRepository) Get(ctx context.Context, userID string) (*models.FinancialProfile, error) {
	return loadProfile(ctx, r.db, userID)
}

// Create inserts a profile that does not exist yet. Losing a race with a
// concurrent insert is reported as a conflict so the caller reloads.
func (r *ProfileWriteRepository) Create(ctx context.Context, p *models.FinancialProfile) error {
	if p.Version == 0 {
		p.Version = 1
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO financial_profiles (user_id, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`, p.UserID, doc, p.Version, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.Conflict(msgConcurrentUpdate)
	}
	return nil
}

// Save writes p if the stored version still equals p.Version, then bumps
// p.Version. A stale version yields a conflict error.
func (r *ProfileWriteRepository) Save(ctx context.Context, p *models.FinancialProfile) error {
	expected := p.Version
	p.Version = expected + 1
	doc, err := json.Marshal(p)
	if err != nil {
		p.Version = expected
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE financial_profiles
		SET document = $2, version = version + 1, updated_at = $4
		WHERE user_id = $1 AND version = $3
	`, p.UserID, doc, expected, p.UpdatedAt)
	if err != nil {
		p.Version = expected
		return fmt.Errorf("failed to save profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		p.Version = expected
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		p.Version = expected
		return apperr.Conflict(msgConcurrentUpdate)
	}
	return nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadProfile(ctx context.Context, db queryRower, userID string) (*models.FinancialProfile, error) {
	var (
		doc     []byte
		version int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT document, version
		FROM financial_profiles
		WHERE user_id = $1
	`, userID).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User data not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p models.FinancialProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", userID, err)
	}
	p.UserID = userID
	p.Version = version
	p.Normalize()
	return &p, nil
}
