// ===============================
// internal/handlers/errors.go - Error responses
// ===============================

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Randomizando3/DramaBoxV2/internal/identity"
	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to a status. Anything unknown is logged
// and answered with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	var idErr *identity.Error
	if errors.As(err, &idErr) {
		c.JSON(idErr.HTTPStatus(), gin.H{"error": idErr.Message, "code": idErr.Code})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrPremiumRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrInsufficientCoins):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrAlreadyDone):
		status = http.StatusConflict
	case errors.Is(err, services.ErrManualApproval):
		status = http.StatusConflict
	case errors.Is(err, services.ErrLedgerDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidVideo),
		errors.Is(err, services.ErrInvalidPlan),
		errors.Is(err, services.ErrUnknownCode),
		errors.Is(err, services.ErrSelfReferral):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseLimit reads ?name= in 1..max, def otherwise
func parseLimit(c *gin.Context, name string, def, max int) int {
	if l := c.Query(name); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= max {
			return parsed
		}
	}
	return def
}

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return userID, true
}

func hasExtension(filename string, allowed map[string]bool) bool {
	i := strings.LastIndex(filename, ".")
	return i >= 0 && allowed[strings.ToLower(filename[i:])]
}
