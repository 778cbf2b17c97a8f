package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/services/promo"
)

// PromoHandler manages promo codes and their affiliate rosters
type PromoHandler struct {
	service *promo.Service
}

// NewPromoHandler creates a new promo handler
func NewPromoHandler(service *promo.Service) *PromoHandler {
	return &PromoHandler{service: service}
}

// CreateRequest is the request body for creating a promo code
type CreatePromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// Create registers a new promo code
func (h *PromoHandler) Create(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.service.Create(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"promo_code": code})
}

// AddAffiliateRequest is the request body for attaching an affiliate; the
// promo code comes from the path.
type AddAffiliateRequest struct {
	Email              string  `json:"email" binding:"required,email"`
	AffiliateUsername  string  `json:"affiliate_username" binding:"required"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// AddAffiliate attaches an affiliate to a promo code's roster
func (h *PromoHandler) AddAffiliate(c *gin.Context) {
	var req AddAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.service.AddAffiliate(c.Request.Context(), promo.AddAffiliateRequest{
		PromoCode:          c.Param("code"),
		Email:              req.Email,
		AffiliateUsername:  req.AffiliateUsername,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"promo_code": code})
}

// UpdateDiscountRequest changes one affiliate's discount percentage
type UpdateDiscountRequest struct {
	Email              string  `json:"email" binding:"required,email"`
	DiscountPercentage float64 `json:"discount_percentage" binding:"required"`
}

// UpdateDiscount changes an affiliate's discount on a promo code
func (h *PromoHandler) UpdateDiscount(c *gin.Context) {
	var req UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.service.UpdateDiscount(c.Request.Context(), c.Param("code"), req.Email, req.DiscountPercentage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"promo_code": code})
}

// RemoveAffiliate detaches an affiliate from a roster
func (h *PromoHandler) RemoveAffiliate(c *gin.Context) {
	removed, err := h.service.RemoveAffiliate(c.Request.Context(), c.Param("code"), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Affiliate removed", "affiliate": removed})
}

// Delete removes a promo code and its roster
func (h *PromoHandler) Delete(c *gin.Context) {
	code, err := h.service.Delete(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo code deleted", "promo_code": code.Code})
}

// List returns promo codes with their rosters, paginated
func (h *PromoHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	page, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Search matches promo codes by fragment
func (h *PromoHandler) Search(c *gin.Context) {
	codes, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"promo_codes": codes})
}
