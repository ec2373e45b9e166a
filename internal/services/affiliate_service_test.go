package services

import (
	"errors"
	"testing"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

func TestRegisterGeneratesUniqueCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	first, err := service.Register(1, "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(first.ReferralCode) != 8 {
		t.Errorf("expected 8-character code, got %q", first.ReferralCode)
	}
	if first.Status != models.AffiliateStatusActive {
		t.Errorf("expected new affiliate to be ACTIVE, got %s", first.Status)
	}
	if first.ReferredByID != nil {
		t.Errorf("expected no referrer, got %v", *first.ReferredByID)
	}

	second, err := service.Register(2, "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if second.ReferralCode == first.ReferralCode {
		t.Errorf("referral codes must be unique, both got %q", first.ReferralCode)
	}
}

func TestRegisterWithReferrer(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	parent, err := service.Register(1, "")
	if err != nil {
		t.Fatalf("Register parent failed: %v", err)
	}

	child, err := service.Register(2, parent.ReferralCode)
	if err != nil {
		t.Fatalf("Register child failed: %v", err)
	}
	if child.ReferredByID == nil || *child.ReferredByID != parent.ID {
		t.Fatalf("expected child referred by %d, got %v", parent.ID, child.ReferredByID)
	}

	var reloaded models.Affiliate
	if err := db.First(&reloaded, parent.ID).Error; err != nil {
		t.Fatalf("failed to reload parent: %v", err)
	}
	if reloaded.TotalReferrals != 1 {
		t.Errorf("expected parent total referrals 1, got %d", reloaded.TotalReferrals)
	}
}

func TestRegisterReferrerCodeHandling(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	// Malformed code fails validation
	if _, err := service.Register(1, "no spaces!"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for malformed code, got %v", err)
	}

	// Unknown but well-formed code registers without a parent
	affiliate, err := service.Register(1, "NOSUCH01")
	if err != nil {
		t.Fatalf("Register with unknown code failed: %v", err)
	}
	if affiliate.ReferredByID != nil {
		t.Errorf("expected no referrer for unknown code, got %v", *affiliate.ReferredByID)
	}

	// Double enrollment is rejected
	if _, err := service.Register(1, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for double enrollment, got %v", err)
	}
}

func TestValidateCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	active := createAffiliate(t, db, 1, "ACTIVE01", nil)
	suspended := createAffiliate(t, db, 2, "SUSPEND1", nil)
	db.Model(suspended).Update("status", models.AffiliateStatusSuspended)

	found, err := service.ValidateCode(active.ReferralCode)
	if err != nil {
		t.Fatalf("ValidateCode failed: %v", err)
	}
	if found.ID != active.ID {
		t.Errorf("expected affiliate %d, got %d", active.ID, found.ID)
	}

	if _, err := service.ValidateCode("SUSPEND1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for suspended affiliate, got %v", err)
	}
	if _, err := service.ValidateCode("NOSUCH99"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown code, got %v", err)
	}
	if _, err := service.ValidateCode("!!"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for malformed code, got %v", err)
	}
}

func TestRecordClick(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	affiliate := createAffiliate(t, db, 1, "CLICKS01", nil)

	// Unknown code is a silent no-op
	if err := service.RecordClick("NOSUCH99", "newsletter"); err != nil {
		t.Fatalf("RecordClick with unknown code should be a no-op, got %v", err)
	}
	var count int64
	db.Model(&models.Click{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no clicks persisted for unknown code, got %d", count)
	}

	if err := service.RecordClick("CLICKS01", "newsletter"); err != nil {
		t.Fatalf("RecordClick failed: %v", err)
	}

	var click models.Click
	if err := db.Where("affiliate_id = ?", affiliate.ID).First(&click).Error; err != nil {
		t.Fatalf("failed to load click: %v", err)
	}
	if click.Source != "newsletter" || click.Converted {
		t.Errorf("unexpected click record: %+v", click)
	}

	var reloaded models.Affiliate
	db.First(&reloaded, affiliate.ID)
	if reloaded.TotalClicks != 1 {
		t.Errorf("expected total clicks 1, got %d", reloaded.TotalClicks)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewAffiliateService(db)

	affiliate := createAffiliate(t, db, 1, "STATUS01", nil)

	updated, err := service.UpdateStatus(affiliate.ID, models.AffiliateStatusBanned)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.AffiliateStatusBanned {
		t.Errorf("expected BANNED, got %s", updated.Status)
	}

	if _, err := service.UpdateStatus(affiliate.ID, "NONSENSE"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
	if _, err := service.UpdateStatus(9999, models.AffiliateStatusActive); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing affiliate, got %v", err)
	}
}
