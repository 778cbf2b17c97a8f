package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/services/leaderboard"
)

// LeaderboardHandler serves rankings and follower-count updates
type LeaderboardHandler struct {
	service *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// List returns the masked, ranked leaderboard page
func (h *LeaderboardHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	page, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Me returns the authenticated affiliate's own unmasked entry
func (h *LeaderboardHandler) Me(c *gin.Context) {
	username := c.GetString("username")

	entry, err := h.service.Get(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// PurchaseHistory returns the authenticated affiliate's attributed sales
func (h *LeaderboardHandler) PurchaseHistory(c *gin.Context) {
	username := c.GetString("username")

	purchases, err := h.service.PurchaseHistory(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// FollowersUpdateRequest carries a requested follower count
type FollowersUpdateRequest struct {
	FollowersCount int64 `json:"followers_count" binding:"min=0"`
}

// RequestFollowersUpdate emails the operator; nothing is written until verified
func (h *LeaderboardHandler) RequestFollowersUpdate(c *gin.Context) {
	var req FollowersUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := c.GetString("username")
	if err := h.service.RequestFollowersUpdate(c.Request.Context(), username, req.FollowersCount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Update request sent for review"})
}

// AdminUpdateFollowers applies a verified follower count
func (h *LeaderboardHandler) AdminUpdateFollowers(c *gin.Context) {
	var req FollowersUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.AdminUpdateFollowers(c.Request.Context(), c.Param("username"), req.FollowersCount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
