package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luisocampo/nichesmith-backend/pkg/enums"
)

// Profile is the internal source of truth for a user's billing state. Rows
// are created at signup; the webhook reconciler is the only writer of the
// subscription fields.
type Profile struct {
	ID                   uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	Email                string                   `gorm:"column:email;not null" json:"email"`
	PlanID               string                   `gorm:"column:plan_id;not null;default:'free'" json:"plan_id"`
	StripeCustomerID     *string                  `gorm:"column:stripe_customer_id;uniqueIndex" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id;uniqueIndex" json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus   enums.SubscriptionStatus `gorm:"column:subscription_status;not null;default:'none'" json:"subscription_status"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
