package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/config"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactHandler relays validated contact-form submissions to an external
// form collection endpoint.
type ContactHandler struct {
	cfg    config.ContactFormConfig
	client *http.Client
}

// NewContactHandler creates a new contact handler
func NewContactHandler(cfg config.ContactFormConfig) *ContactHandler {
	return &ContactHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ContactRequest is a contact-form submission
type ContactRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Query string `json:"query" binding:"required"`
}

// Submit validates a contact query and forwards it
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	query := strings.TrimSpace(req.Query)

	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !contactEmailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	words := len(strings.Fields(query))
	if words < 2 || words > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be between 2 and 500 words"})
		return
	}

	if h.cfg.EndpointURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact form not configured"})
		return
	}

	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)
	form.Set("query", query)

	resp, err := h.client.PostForm(h.cfg.EndpointURL, form)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not submit query, try again later"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not submit query, try again later"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Query submitted"})
}
