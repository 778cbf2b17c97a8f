package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/services/lead"
)

// LeadHandler handles pre-purchase customer registrations
type LeadHandler struct {
	service *lead.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(service *lead.Service) *LeadHandler {
	return &LeadHandler{service: service}
}

// Create registers a customer's interest against a promo code
func (h *LeadHandler) Create(c *gin.Context) {
	var req lead.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": created})
}

// ListByPromoCode returns all leads registered against a promo code
func (h *LeadHandler) ListByPromoCode(c *gin.Context) {
	leads, err := h.service.ListByPromoCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// ListUnconverted returns leads that have not purchased yet
func (h *LeadHandler) ListUnconverted(c *gin.Context) {
	leads, err := h.service.ListUnconverted(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}
