package services

import (
	"errors"
	"testing"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

func TestSettingsDefaultsCreatedOnFirstUse(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	settings, err := service.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !settings.BaseCommissionRate.Equal(models.DefaultAffiliateSettings().BaseCommissionRate) {
		t.Errorf("expected default base rate, got %s", settings.BaseCommissionRate)
	}

	var count int64
	db.Model(&models.AffiliateSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}

	// A second Get reuses the row instead of creating another
	if _, err := service.Get(); err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	db.Model(&models.AffiliateSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("expected settings row to be reused, got %d rows", count)
	}
}

func TestSettingsUpdateAndValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewSettingsService(db)

	rate := "15"
	holdDays := 7
	updated, err := service.Update(UpdateSettingsInput{
		BaseCommissionRate: &rate,
		CommissionHoldDays: &holdDays,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.BaseCommissionRate.String() != "15" {
		t.Errorf("expected base rate 15, got %s", updated.BaseCommissionRate)
	}
	if updated.CommissionHoldDays != 7 {
		t.Errorf("expected hold days 7, got %d", updated.CommissionHoldDays)
	}

	// The cache is invalidated, so a fresh Get sees the change
	reloaded, err := service.Get()
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if reloaded.CommissionHoldDays != 7 {
		t.Errorf("expected reloaded hold days 7, got %d", reloaded.CommissionHoldDays)
	}

	badRate := "150"
	if _, err := service.Update(UpdateSettingsInput{Level1Rate: &badRate}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for rate above 100, got %v", err)
	}
	badLevels := 5
	if _, err := service.Update(UpdateSettingsInput{MaxLevels: &badLevels}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for max_levels above 3, got %v", err)
	}
	badHold := -1
	if _, err := service.Update(UpdateSettingsInput{CommissionHoldDays: &badHold}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for negative hold days, got %v", err)
	}
}
