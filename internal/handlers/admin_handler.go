package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travel-affiliate/internal/models"
	"travel-affiliate/internal/services"
)

type AdminHandler struct {
	commissionService *services.CommissionService
	payoutService     *services.PayoutService
	affiliateService  *services.AffiliateService
	settingsService   *services.SettingsService
}

func NewAdminHandler(
	commissionService *services.CommissionService,
	payoutService *services.PayoutService,
	affiliateService *services.AffiliateService,
	settingsService *services.SettingsService,
) *AdminHandler {
	return &AdminHandler{
		commissionService: commissionService,
		payoutService:     payoutService,
		affiliateService:  affiliateService,
		settingsService:   settingsService,
	}
}

// ApproveCommission promotes a pending commission to approved
func (h *AdminHandler) ApproveCommission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	commission, err := h.commissionService.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commission,
	})
}

// RejectCommission rejects a pending commission
func (h *AdminHandler) RejectCommission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	commission, err := h.commissionService.Reject(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    commission,
	})
}

// ApprovePayout approves a pending payout
func (h *AdminHandler) ApprovePayout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	payout, err := h.payoutService.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payout,
	})
}

// RejectPayout rejects a pending payout
func (h *AdminHandler) RejectPayout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	payout, err := h.payoutService.Reject(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payout,
	})
}

// ProcessPayout settles a payout against approved commissions
func (h *AdminHandler) ProcessPayout(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	payout, err := h.payoutService.Process(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payout,
	})
}

// UpdateAffiliateStatus changes an affiliate's lifecycle status
func (h *AdminHandler) UpdateAffiliateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affiliate, err := h.affiliateService.UpdateStatus(id, models.AffiliateStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    affiliate,
	})
}

// GetSettings returns the affiliate program settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UpdateSettings applies an affiliate program settings change
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.Update(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// parseIDParam parses the :id path parameter
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
