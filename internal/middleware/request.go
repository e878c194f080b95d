// ===============================
// internal/middleware/request.go - Request tracing, caching and limits
// ===============================

package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID adds a unique request ID for tracing
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)
		c.Set("requestID", requestID)

		c.Next()
	}
}

// NoStore marks per-user responses (wallet, rewards, profile) as uncacheable
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

// PublicCache lets clients keep anonymous catalog reads briefly
func PublicCache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && c.GetString("userID") == "" {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}

// BodyLimit rejects uploads larger than maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request too large",
				"maxSize": fmt.Sprintf("%dMB", maxBytes>>20),
			})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// Cooldown allows one successful request per key every period. The key
// usually combines the user and the target, e.g. a share of one series.
func Cooldown(period time.Duration, key func(c *gin.Context) string) gin.HandlerFunc {
	var (
		mu   sync.Mutex
		last = make(map[string]time.Time)
	)

	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		mu.Lock()
		now := time.Now()
		if at, exists := last[k]; exists && now.Sub(at) < period {
			mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":           "Too many requests",
				"cooldownSeconds": int((period - now.Sub(at)).Seconds()),
			})
			c.Abort()
			return
		}
		// the slot is held while the handler runs and released if it fails
		last[k] = now
		for stale, t := range last {
			if now.Sub(t) >= period {
				delete(last, stale)
			}
		}
		mu.Unlock()

		c.Next()

		if c.Writer.Status() >= 400 {
			mu.Lock()
			if at, ok := last[k]; ok && at.Equal(now) {
				delete(last, k)
			}
			mu.Unlock()
		}
	}
}
