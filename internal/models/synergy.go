package models

import "time"

// SynergyCooccurrence counts how often an unordered card pair appears
// together in tournament lists. Rows are normalized so CardA < CardB;
// use NormalizePair before any read or write.
type SynergyCooccurrence struct {
	CardA string `gorm:"primaryKey;type:text"`
	CardB string `gorm:"primaryKey;type:text"`

	Count     int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SynergyCooccurrence) TableName() string {
	return "synergy_cooccurrence"
}

// NormalizePair orders an unordered pair for storage.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
