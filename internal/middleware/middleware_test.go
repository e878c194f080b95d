package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID"), "email": c.GetString("userEmail")})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", FirebaseAuth(fakeVerifier{"good": "u1"}), whoAmI)

	tests := []struct {
		name   string
		header string
		query  string
		ws     bool
		status int
	}{
		{"missing", "", "", false, http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", false, http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", false, http.StatusUnauthorized},
		{"valid", "Bearer good", "", false, http.StatusOK},
		{"query token needs upgrade", "", "?token=good", false, http.StatusUnauthorized},
		{"query token on upgrade", "", "?token=good", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.ws {
				req.Header.Set("Upgrade", "websocket")
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"userID":"u1"`)
				assert.Contains(t, w.Body.String(), `"email":"u1@example.com"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", OptionalAuth(fakeVerifier{"good": "u1"}), whoAmI)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = serve(r, req)
	assert.Contains(t, w.Body.String(), `"userID":"u1"`)
}

func TestAdminOnly(t *testing.T) {
	r := gin.New()
	isAdmin := func(uid string) bool { return uid == "boss" }
	r.GET("/admin", FirebaseAuth(fakeVerifier{"a": "boss", "b": "fan"}), AdminOnly(isAdmin), whoAmI)

	for token, status := range map[string]int{"a": http.StatusOK, "b": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, status, serve(r, req).Code, token)
	}

	bare := gin.New()
	bare.GET("/admin", AdminOnly(isAdmin), whoAmI)
	assert.Equal(t, http.StatusUnauthorized, serve(bare, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestRequestIDAndCacheHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/private", NoStore(), whoAmI)
	r.GET("/public", PublicCache(time.Minute), whoAmI)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(1<<20), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	small := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("ok"))
	assert.Equal(t, http.StatusNoContent, serve(r, small).Code)

	big := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(strings.Repeat("x", 2<<20)))
	w := serve(r, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "1MB")
}

func TestCooldown(t *testing.T) {
	r := gin.New()
	calls := 0
	r.POST("/share/:id", Cooldown(time.Hour, func(c *gin.Context) string {
		return c.Query("uid") + ":" + c.Param("id")
	}), func(c *gin.Context) {
		calls++
		if c.Param("id") == "broken" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodPost, "/share/s1?uid=a", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodPost, "/share/s1?uid=a", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodPost, "/share/s2?uid=a", nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodPost, "/share/s1?uid=b", nil)).Code)

	// failures do not start the cooldown
	serve(r, httptest.NewRequest(http.MethodPost, "/share/broken?uid=a", nil))
	assert.Equal(t, http.StatusInternalServerError, serve(r, httptest.NewRequest(http.MethodPost, "/share/broken?uid=a", nil)).Code)
	assert.Equal(t, 5, calls)
}

func TestCooldownHoldsSlotDuringRequest(t *testing.T) {
	r := gin.New()
	var calls atomic.Int32
	release := make(chan struct{})
	r.POST("/share", Cooldown(time.Hour, func(c *gin.Context) string { return "same" }), func(c *gin.Context) {
		calls.Add(1)
		<-release
		c.Status(http.StatusNoContent)
	})

	codes := make(chan int, 5)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- serve(r, httptest.NewRequest(http.MethodPost, "/share", nil)).Code
		}()
	}

	limited := 0
	for limited < 4 {
		assert.Equal(t, http.StatusTooManyRequests, <-codes)
		limited++
	}
	close(release)
	wg.Wait()
	close(codes)

	assert.Equal(t, http.StatusNoContent, <-codes)
	assert.Equal(t, int32(1), calls.Load())
}
