package plans

import (
	"context"

	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
)

// Repository reads the plan catalog. Plans are managed by migrations, so the
// runtime surface is read-only.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	FindByMonthlyPriceID(ctx context.Context, priceID string) (*models.Plan, error)
	List(ctx context.Context) ([]models.Plan, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a plan repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindByMonthlyPriceID(ctx context.Context, priceID string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("stripe_price_id_monthly = ?", priceID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) List(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.db.WithContext(ctx).Order("price_monthly asc").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
