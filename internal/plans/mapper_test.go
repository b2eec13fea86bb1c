package plans

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	"github.com/luisocampo/nichesmith-backend/pkg/redis"
)

type fakeCache struct {
	store map[string]string
	gets  int
	sets  int
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.gets++
	if val, ok := f.store[key]; ok {
		return val, nil
	}
	return "", redis.Nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.sets++
	f.store[key] = value.(string)
	return nil
}

func (f *fakeCache) CacheKey(scope, id string) string {
	return scope + ":" + id
}

func newCatalog(t *testing.T) Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Plan{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	priceID := "price_starter_monthly"
	seed := []models.Plan{
		{ID: models.FreePlanID, Name: "Free", ArticleLimit: 3},
		{ID: "starter", Name: "Starter", StripePriceIDMonthly: &priceID, ArticleLimit: 25},
	}
	if err := conn.Create(&seed).Error; err != nil {
		t.Fatalf("seed plans: %v", err)
	}
	return NewRepository(conn)
}

func TestPlanIDForPriceResolvesAndCaches(t *testing.T) {
	cache := &fakeCache{store: map[string]string{}}
	mapper, err := NewMapper(newCatalog(t), cache, nil)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	ctx := context.Background()

	planID, ok, err := mapper.PlanIDForPrice(ctx, "price_starter_monthly")
	if err != nil || !ok || planID != "starter" {
		t.Fatalf("first lookup: %q %v %v", planID, ok, err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache write, got %d", cache.sets)
	}

	planID, ok, err = mapper.PlanIDForPrice(ctx, "price_starter_monthly")
	if err != nil || !ok || planID != "starter" {
		t.Fatalf("cached lookup: %q %v %v", planID, ok, err)
	}
	if cache.sets != 1 {
		t.Fatalf("cached lookup should not rewrite, got %d sets", cache.sets)
	}
}

func TestPlanIDForPriceUnknownPrice(t *testing.T) {
	mapper, err := NewMapper(newCatalog(t), nil, nil)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}

	planID, ok, err := mapper.PlanIDForPrice(context.Background(), "price_unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || planID != "" {
		t.Fatalf("unknown price should report a miss, got %q %v", planID, ok)
	}
}

func TestPlanIDForPriceEmptyInput(t *testing.T) {
	mapper, err := NewMapper(newCatalog(t), nil, nil)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	if _, ok, err := mapper.PlanIDForPrice(context.Background(), ""); ok || err != nil {
		t.Fatalf("empty price id should be a silent miss: %v %v", ok, err)
	}
}

func TestListOrdersByPrice(t *testing.T) {
	repo := newCatalog(t)
	plans, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].ID != models.FreePlanID {
		t.Fatalf("expected free plan first, got %s", plans[0].ID)
	}
}
