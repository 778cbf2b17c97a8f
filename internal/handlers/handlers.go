// Package handlers translates HTTP requests into service calls and service
// errors into status codes.
package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/silkloom/backend/internal/apperrors"
)

// respondError maps a service error onto its HTTP status. Unclassified
// errors are logged and surfaced as 500s without leaking detail.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == "" {
		log.Printf("unclassified error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(500, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
