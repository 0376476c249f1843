package db

import (
	"tcgradar/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.CardMetadata{},
		&models.MarketPrice{},
		&models.PriceHistory{},
		&models.Signal{},
		&models.SignalAudit{},
		&models.SynergyCooccurrence{},
	)
}

// EnableRowLevelSecurity installs the tenant policy on signals. The
// session must set radar.tenant_id for scoped roles; superuser and table
// owner connections bypass the policy.
func EnableRowLevelSecurity(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}

	stmts := []string{
		`ALTER TABLE signals ENABLE ROW LEVEL SECURITY`,
		`DROP POLICY IF EXISTS signals_tenant_isolation ON signals`,
		`CREATE POLICY signals_tenant_isolation ON signals
			USING (tenant_id = current_setting('radar.tenant_id', true)::uuid)`,
	}
	for _, s := range stmts {
		if err := db.Gorm.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
