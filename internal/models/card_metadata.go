package models

import "time"

// CardMetadata is the canonical card record. CardID uses the
// "{set_code}-{card_number}" format (e.g. "sv1-25") and is the single
// source of truth for variant identity: two records may only be joined
// when their canonical ids are byte-equal.
type CardMetadata struct {
	CardID     string `gorm:"primaryKey;type:text"`
	Name       string `gorm:"type:text;not null"`
	SetCode    string `gorm:"type:text;not null;index"`
	SetName    string `gorm:"type:text;not null"`
	CardNumber string `gorm:"type:text;not null"`

	RegulationMark   *string    `gorm:"type:varchar(4)"`
	SetReleaseDate   *time.Time `gorm:"type:date"`
	LegalityStandard *string    `gorm:"type:text"`
	ReprintRumored   bool       `gorm:"not null;default:false"`

	TCGPlayerURL  *string `gorm:"type:text"`
	CardmarketURL *string `gorm:"type:text"`
	ImageURL      *string `gorm:"type:text"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (CardMetadata) TableName() string {
	return "card_metadata"
}
