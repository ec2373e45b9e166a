package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-affiliate/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Affiliate{},
		&models.Click{},
		&models.Conversion{},
		&models.Commission{},
		&models.Payout{},
		&models.AffiliateSettings{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory DB persists between tests; start clean
	for _, table := range []string{
		"payouts", "commissions", "conversions", "affiliate_clicks",
		"affiliates", "users", "affiliate_settings",
	} {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

// newSettingsService persists the given settings row and returns a
// service with an empty cache
func newSettingsService(t *testing.T, db *gorm.DB, settings models.AffiliateSettings) *SettingsService {
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}
	return NewSettingsService(db)
}

func createAffiliate(t *testing.T, db *gorm.DB, userID uint, code string, referredByID *uint) *models.Affiliate {
	affiliate := models.Affiliate{
		UserID:       userID,
		ReferralCode: code,
		ReferredByID: referredByID,
		Status:       models.AffiliateStatusActive,
	}
	if err := db.Create(&affiliate).Error; err != nil {
		t.Fatalf("failed to create affiliate %s: %v", code, err)
	}
	return &affiliate
}
