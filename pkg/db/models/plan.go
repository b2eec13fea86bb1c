package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan maps an internal subscription tier to its Stripe recurring price.
// Read-only at runtime; rows are managed by migrations.
type Plan struct {
	ID                   string          `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"column:name;not null" json:"name"`
	StripePriceIDMonthly *string         `gorm:"column:stripe_price_id_monthly;uniqueIndex" json:"stripe_price_id_monthly,omitempty"`
	PriceMonthly         decimal.Decimal `gorm:"column:price_monthly;type:numeric(10,2);not null;default:0" json:"price_monthly"`
	ArticleLimit         int             `gorm:"column:article_limit;not null;default:3" json:"article_limit"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

// FreePlanID is the sentinel every profile falls back to when no paid
// subscription is in effect.
const FreePlanID = "free"
