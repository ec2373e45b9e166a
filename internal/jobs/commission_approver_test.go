package jobs

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-affiliate/internal/models"
	"travel-affiliate/internal/services"
)

func setupJobTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Affiliate{},
		&models.Commission{},
		&models.AffiliateSettings{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	db.Exec("DELETE FROM commissions")
	db.Exec("DELETE FROM affiliates")
	db.Exec("DELETE FROM affiliate_settings")

	return db
}

func seedCommissionCreatedAt(t *testing.T, db *gorm.DB, createdAt time.Time) models.Commission {
	t.Helper()
	commission := models.Commission{
		AffiliateID:  1,
		ConversionID: 1,
		Level:        1,
		BaseAmount:   decimal.NewFromInt(1000),
		Rate:         decimal.NewFromInt(50),
		Amount:       decimal.NewFromInt(50),
		Currency:     "USD",
		Status:       models.CommissionStatusPending,
		CreatedAt:    createdAt,
	}
	if err := db.Create(&commission).Error; err != nil {
		t.Fatalf("failed to seed commission: %v", err)
	}
	return commission
}

func TestRunOnceHonorsHoldPeriod(t *testing.T) {
	db := setupJobTestDB(t)

	settings := models.DefaultAffiliateSettings() // 30-day hold
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	now := time.Now()
	young := seedCommissionCreatedAt(t, db, now.AddDate(0, 0, -29))
	aged := seedCommissionCreatedAt(t, db, now.AddDate(0, 0, -31))

	approver := NewCommissionApprover(
		services.NewCommissionService(db),
		services.NewSettingsService(db),
		time.Hour,
	)

	approver.RunOnce(now)

	var reloadedYoung, reloadedAged models.Commission
	db.First(&reloadedYoung, young.ID)
	db.First(&reloadedAged, aged.ID)

	if reloadedYoung.Status != models.CommissionStatusPending {
		t.Errorf("commission at day 29 must stay pending, got %s", reloadedYoung.Status)
	}
	if reloadedAged.Status != models.CommissionStatusApproved {
		t.Errorf("commission at day 31 must be approved, got %s", reloadedAged.Status)
	}
	if reloadedAged.ApprovedAt == nil {
		t.Errorf("approved commission must carry approved_at")
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	db := setupJobTestDB(t)

	settings := models.DefaultAffiliateSettings()
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("failed to create settings: %v", err)
	}

	now := time.Now()
	aged := seedCommissionCreatedAt(t, db, now.AddDate(0, 0, -45))

	approver := NewCommissionApprover(
		services.NewCommissionService(db),
		services.NewSettingsService(db),
		time.Hour,
	)

	approver.RunOnce(now)

	var afterFirst models.Commission
	db.First(&afterFirst, aged.ID)
	if afterFirst.Status != models.CommissionStatusApproved {
		t.Fatalf("expected APPROVED after first run, got %s", afterFirst.Status)
	}
	firstApprovedAt := *afterFirst.ApprovedAt

	// A second run must not approve again or move the timestamp
	approver.RunOnce(now.Add(time.Minute))

	var afterSecond models.Commission
	db.First(&afterSecond, aged.ID)
	if afterSecond.Status != models.CommissionStatusApproved {
		t.Errorf("expected APPROVED after second run, got %s", afterSecond.Status)
	}
	if !afterSecond.ApprovedAt.Equal(firstApprovedAt) {
		t.Errorf("second run must not re-approve: approved_at moved from %v to %v",
			firstApprovedAt, *afterSecond.ApprovedAt)
	}

	var approvedCount int64
	db.Model(&models.Commission{}).Where("status = ?", models.CommissionStatusApproved).Count(&approvedCount)
	if approvedCount != 1 {
		t.Errorf("expected exactly one approved commission, got %d", approvedCount)
	}
}
