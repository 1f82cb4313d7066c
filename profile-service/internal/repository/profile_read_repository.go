package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vasusumeet/Personal-Finance-App/shared/models"
	sharedredis "github.com/vasusumeet/Personal-Finance-App/shared/redis"
)

const profileViewKeyPrefix = "profile:view:"

// ProfileReadRepository serves reads from the Redis read model and falls back
// to PostgreSQL transparently, warming the cache on every cold read.
type ProfileReadRepository struct {
	db    *sql.DB
	cache *sharedredis.ViewCache[models.FinancialProfile]
}

func NewProfileReadRepository(db *sql.DB, redisClient goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *ProfileReadRepository {
	return &ProfileReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.FinancialProfile](redisClient, profileViewKeyPrefix, ttl, logger),
	}
}

// GetProfile returns the cached view when present, otherwise the stored one.
func (r *ProfileReadRepository) GetProfile(ctx context.Context, userID string) (*models.FinancialProfile, error) {
	if p, ok := r.cache.Get(ctx, userID); ok {
		p.Normalize()
		return p, nil
	}

	p, err := loadProfile(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	r.CacheProfile(ctx, p)
	return p, nil
}

// CacheProfile refreshes the read model unless it already holds this version
// or a later one, so a slow writer or a cold read cannot put an older view
// back. If the guarded write fails the entry is dropped and the next read
// reloads from PostgreSQL.
func (r *ProfileReadRepository) CacheProfile(ctx context.Context, p *models.FinancialProfile) {
	if _, err := r.cache.SetIfNewer(ctx, p.UserID, p, p.Version); err != nil {
		r.InvalidateProfile(ctx, p.UserID)
	}
}

func (r *ProfileReadRepository) InvalidateProfile(ctx context.Context, userID string) {
	r.cache.Delete(ctx, userID)
}
