package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// UserProfile is the 1:1 extension of User that personalizes every signal:
// fee schedule, customs regime, forwarder costs, and delivery filters.
type UserProfile struct {
	ID uuid.UUID `gorm:"primaryKey;type:uuid"`

	Country     string  `gorm:"type:text;not null"`
	SellerLevel *string `gorm:"type:text"`

	SubscriptionTier   string         `gorm:"type:varchar(20);not null;default:'free'"`
	EngagementScore    float64        `gorm:"not null;default:0"`
	PreferredPlatforms pq.StringArray `gorm:"type:text[]"`
	CardCategories     pq.StringArray `gorm:"type:text[]"`

	MinProfitThreshold decimal.Decimal `gorm:"type:numeric(10,2);not null;default:5.00"`
	MinHeadacheTier    int             `gorm:"not null;default:3"`
	Currency           string          `gorm:"type:varchar(10);not null;default:'USD'"`

	CustomsDutyOverride *decimal.Decimal `gorm:"type:numeric(5,4)"`

	UseForwarder              bool            `gorm:"not null;default:false"`
	ForwarderReceivingFee     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:3.50"`
	ForwarderConsolidationFee decimal.Decimal `gorm:"type:numeric(10,2);not null;default:7.50"`
	InsuranceRate             decimal.Decimal `gorm:"type:numeric(5,4);not null;default:0.025"`

	TelegramChatID   *int64 `gorm:"uniqueIndex"`
	DiscordChannelID *int64

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
