// ===============================
// internal/middleware/auth.go - Firebase Auth Middleware
// ===============================

package middleware

import (
	"net/http"
	"strings"

	"github.com/Randomizando3/DramaBoxV2/internal/services"

	"github.com/gin-gonic/gin"
)

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a WebSocket handshake, so upgrades may pass ?token= instead.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			if token := c.Query("token"); token != "" {
				return token, true
			}
		}
		return "", false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", false
	}
	return tokenParts[1], true
}

// FirebaseAuth creates a middleware that verifies Firebase tokens
func FirebaseAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("token") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		firebaseToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", firebaseToken.UID)
		c.Set("firebaseToken", firebaseToken)
		if email, ok := firebaseToken.Claims["email"].(string); ok {
			c.Set("userEmail", email)
		}
		c.Next()
	}
}

// OptionalAuth sets userID when a valid token is sent and lets anonymous
// requests through otherwise
func OptionalAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if firebaseToken, err := verifier.VerifyIDToken(c.Request.Context(), token); err == nil {
				c.Set("userID", firebaseToken.UID)
				c.Set("firebaseToken", firebaseToken)
			}
		}
		c.Next()
	}
}

// AdminOnly middleware that requires admin privileges
func AdminOnly(isAdmin func(uid string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		if !isAdmin(userID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
