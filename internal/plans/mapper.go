package plans

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/pkg/logger"
	"github.com/luisocampo/nichesmith-backend/pkg/redis"
)

const (
	priceCacheScope = "plan_price"
	priceCacheTTL   = 15 * time.Minute
)

// Cache is the slice of the redis client the mapper needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope, id string) string
}

// Mapper resolves a provider price id to an internal plan id, with a short
// redis cache in front of the catalog table. The catalog changes only via
// migrations, so a stale hit is harmless.
type Mapper struct {
	repo  Repository
	cache Cache
	logg  *logger.Logger
}

// NewMapper builds a price mapper. cacheClient may be nil; lookups then go
// straight to the database.
func NewMapper(repo Repository, cacheClient Cache, logg *logger.Logger) (*Mapper, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Mapper{repo: repo, cache: cacheClient, logg: logg}, nil
}

// PlanIDForPrice maps a recurring price id to a plan id. The second return is
// false when no plan claims the price; callers decide what a miss means.
func (m *Mapper) PlanIDForPrice(ctx context.Context, priceID string) (string, bool, error) {
	if priceID == "" {
		return "", false, nil
	}

	if m.cache != nil {
		key := m.cache.CacheKey(priceCacheScope, priceID)
		if cached, err := m.cache.Get(ctx, key); err == nil && cached != "" {
			return cached, true, nil
		} else if err != nil && !errors.Is(err, redis.Nil) && m.logg != nil {
			m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "plan price cache read failed")
		}
	}

	plan, err := m.repo.FindByMonthlyPriceID(ctx, priceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if m.cache != nil {
		key := m.cache.CacheKey(priceCacheScope, priceID)
		if err := m.cache.Set(ctx, key, plan.ID, priceCacheTTL); err != nil && m.logg != nil {
			m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "plan price cache write failed")
		}
	}
	return plan.ID, true, nil
}
