package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel-affiliate/internal/auth"
	"travel-affiliate/internal/models"
	"travel-affiliate/internal/services"
)

type PayoutHandler struct {
	payoutService    *services.PayoutService
	affiliateService *services.AffiliateService
}

func NewPayoutHandler(payoutService *services.PayoutService, affiliateService *services.AffiliateService) *PayoutHandler {
	return &PayoutHandler{
		payoutService:    payoutService,
		affiliateService: affiliateService,
	}
}

// GetBalance returns the current affiliate's available balance
func (h *PayoutHandler) GetBalance(c *gin.Context) {
	affiliate, ok := h.currentAffiliate(c)
	if !ok {
		return
	}

	balance, err := h.payoutService.AvailableBalance(affiliate.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"available_balance": balance,
		},
	})
}

// RequestPayout creates a payout request for the current affiliate
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	affiliate, ok := h.currentAffiliate(c)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount" binding:"required"`
		Method string `json:"method" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	payout, err := h.payoutService.Request(affiliate.ID, amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payout,
	})
}

// GetPayouts lists the current affiliate's payouts
func (h *PayoutHandler) GetPayouts(c *gin.Context) {
	affiliate, ok := h.currentAffiliate(c)
	if !ok {
		return
	}

	payouts, err := h.payoutService.ListByAffiliate(affiliate.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payouts,
		"count":   len(payouts),
	})
}

// CancelPayout cancels one of the current user's pending payouts
func (h *PayoutHandler) CancelPayout(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payoutID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payout id"})
		return
	}

	payout, err := h.payoutService.Cancel(uint(payoutID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payout,
	})
}

// currentAffiliate resolves the authenticated user's affiliate account
func (h *PayoutHandler) currentAffiliate(c *gin.Context) (*models.Affiliate, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	result, err := h.affiliateService.GetByUserID(userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result, true
}
