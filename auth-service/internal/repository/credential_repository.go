package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/database"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

// ErrDuplicateCredential is wrapped when the username or email is taken.
var ErrDuplicateCredential = errors.New("username or email already registered")

// CredentialRepository owns the credentials table and creates the paired
// profile row at signup.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// CreateWithProfile inserts the credential and its zeroed profile in one
// transaction so neither can exist without the other.
func (r *CredentialRepository) CreateWithProfile(ctx context.Context, cred *models.Credential, profile *models.FinancialProfile) (err error) {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, cred.ID, cred.Username, cred.Email, cred.PasswordHash, cred.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateCredential, err)
		}
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO financial_profiles (user_id, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, profile.UserID, doc, profile.Version, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signup: %w", err)
	}
	return nil
}

// GetByIdentifier matches identifier against username first, then email.
func (r *CredentialRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Credential, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM credentials
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1
	`
	var cred models.Credential
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&cred.ID, &cred.Username, &cred.Email, &cred.PasswordHash, &cred.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}
