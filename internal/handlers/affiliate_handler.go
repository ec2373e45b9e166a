package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-affiliate/internal/auth"
	"travel-affiliate/internal/services"
)

type AffiliateHandler struct {
	affiliateService  *services.AffiliateService
	commissionService *services.CommissionService
}

func NewAffiliateHandler(affiliateService *services.AffiliateService, commissionService *services.CommissionService) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateService:  affiliateService,
		commissionService: commissionService,
	}
}

// Register enrolls the current user in the referral program
func (h *AffiliateHandler) Register(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ReferredByCode string `json:"referred_by_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affiliate, err := h.affiliateService.Register(userID, req.ReferredByCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    affiliate,
	})
}

// GetMe returns the current user's affiliate account
func (h *AffiliateHandler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	affiliate, err := h.affiliateService.GetByUserID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    affiliate,
	})
}

// ValidateCode checks whether a referral code belongs to an active affiliate
func (h *AffiliateHandler) ValidateCode(c *gin.Context) {
	affiliate, err := h.affiliateService.ValidateCode(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"valid":         true,
			"referral_code": affiliate.ReferralCode,
		},
	})
}

// GetCommissions returns the current affiliate's commission ledger
func (h *AffiliateHandler) GetCommissions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	affiliate, err := h.affiliateService.GetByUserID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	commissions, err := h.commissionService.ListByAffiliate(affiliate.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commissions,
		"count":   len(commissions),
	})
}

// TrackClick records a referral link visit
func (h *AffiliateHandler) TrackClick(c *gin.Context) {
	code := c.Param("code")
	source := c.Query("source")

	if err := h.affiliateService.RecordClick(code, source); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
