package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-marketplace-backend/internal/auth"
)

func TestIdempotencyValidator_MalformedKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 16}, nil))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []string{"has spaces", "emojié", "0123456789abcdef0"} // bad chars, non-ASCII, too long
	for _, key := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q = %d, want 400", key, w.Code)
		}
	}

	// absent header is a no-op
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("no header = %d, want 200", w.Code)
	}
}

func TestTokenUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolve := TokenUserID("secret")

	tok, err := auth.IssueToken("secret", "user-7", "customer", false, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer " + tok, "user-7"},
		{"no header", "", ""},
		{"garbage token", "Bearer not.a.token", ""},
		{"wrong scheme", "Basic " + tok, ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		if got := resolve(c); got != tc.want {
			t.Fatalf("%s: resolved %q, want %q", tc.name, got, tc.want)
		}
	}

	// an already-populated auth context wins over the header
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(ctxKeyUserID, "from-context")
	if got := resolve(c); got != "from-context" {
		t.Fatalf("context user = %q, want from-context", got)
	}
}

// A detected replay must be visible to handlers and must skip the rate
// limiter, even though the validator runs before the auth middleware and has
// to resolve the caller from the bearer token itself.
func TestIdempotencyValidator_ReplayBypassesRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	tok, err := auth.IssueToken("secret", "user-1", "customer", false, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	lookup := func(_ context.Context, userID, key string, _ time.Time) (bool, error) {
		return userID == "user-1" && key == "seen-before", nil
	}
	r.Use(IdempotencyValidator(IdempotencyOptions{UserID: TokenUserID("secret")}, lookup))

	// one token, effectively no refill
	rl := NewRateLimiter(0.0001, 1, KeyByUserOrIP())
	r.Use(rl.Handler())

	var lastReplay bool
	r.POST("/orders", func(c *gin.Context) {
		lastReplay = IsReplay(c)
		c.Status(http.StatusOK)
	})

	do := func(idemKey string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		if idemKey != "" {
			req.Header.Set(HeaderIdempotencyKey, idemKey)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	// drain the bucket, then confirm plain requests are limited
	if code := do(""); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := do(""); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}

	// a replayed key sails through the exhausted limiter
	if code := do("seen-before"); code != http.StatusOK {
		t.Fatalf("replayed request = %d, want 200", code)
	}
	if !lastReplay {
		t.Fatalf("handler did not observe the replay flag")
	}

	// an unseen key is not a replay and stays subject to the limit
	if code := do("fresh-key"); code != http.StatusTooManyRequests {
		t.Fatalf("fresh key = %d, want 429", code)
	}
}
