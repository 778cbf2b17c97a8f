package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/services/purchase"
)

// PurchaseHandler handles the purchase completion workflow
type PurchaseHandler struct {
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// Complete records a finished sale and credits the promo code's affiliates
func (h *PurchaseHandler) Complete(c *gin.Context) {
	var req purchase.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Complete(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase completed",
		"result":  result,
	})
}

// ListByPromoCode returns the purchases recorded against a promo code
func (h *PurchaseHandler) ListByPromoCode(c *gin.Context) {
	purchases, err := h.service.ListByPromoCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// Delete reverses a redemption and deducts the points it granted
func (h *PurchaseHandler) Delete(c *gin.Context) {
	promoCode := c.Param("code")
	customer := c.Param("customer")

	if err := h.service.Delete(c.Request.Context(), promoCode, customer); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted and points reversed"})
}
