package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SignalAudit is the immutable snapshot of what the scan saw when it
// emitted a signal: raw prices, the fee breakdown, and stage outputs.
// Append-only, admin-only, no tenant predicate. Rows live as long as their
// signal (FK cascade delete).
type SignalAudit struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SignalID uuid.UUID `gorm:"type:uuid;not null;index"`
	Signal   Signal    `gorm:"foreignKey:SignalID;constraint:OnDelete:CASCADE"`

	SourcePrices datatypes.JSON `gorm:"type:jsonb;not null"`
	FeeCalc      datatypes.JSON `gorm:"type:jsonb;not null"`
	SnapshotData datatypes.JSON `gorm:"type:jsonb;not null"`

	CalculationVersion string `gorm:"type:varchar(10);not null;default:'v1'"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (SignalAudit) TableName() string {
	return "signal_audit"
}
