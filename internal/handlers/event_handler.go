package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-affiliate/internal/services"
)

// EventHandler receives events from the booking/payment pipeline
type EventHandler struct {
	conversionService *services.ConversionService
}

func NewEventHandler(conversionService *services.ConversionService) *EventHandler {
	return &EventHandler{conversionService: conversionService}
}

// BookingConfirmed records a conversion for a confirmed booking.
// Attribution is best-effort: bookings without a usable referral code
// are acknowledged without creating anything.
func (h *EventHandler) BookingConfirmed(c *gin.Context) {
	var event services.BookingConfirmed
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversion, err := h.conversionService.RecordConversion(event)
	if err != nil {
		respondError(c, err)
		return
	}

	if conversion == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"attributed": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attributed": true,
		"data":       conversion,
	})
}
