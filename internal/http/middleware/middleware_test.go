package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hahu_backend/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("middleware-test-secret", time.Hour)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInMemoryRateLimitBlocksAfterLimit(t *testing.T) {
	UseRedis(nil)
	r := gin.New()
	r.GET("/x", RedisRateLimit(3, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, w.Code)
		}
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
}

func TestJWT(t *testing.T) {
	token, err := service.GenerateJWT(42)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/me", JWT(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if w := serve(r, req); w.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, w.Code)
			}
		})
	}
}

func TestUserRateLimitPerUser(t *testing.T) {
	UseRedis(nil)
	r := gin.New()
	r.POST("/pay", JWT(), UserRateLimit("pay", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(id int64) int {
		token, err := service.GenerateJWT(id)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(r, req).Code
	}

	if got := do(1); got != http.StatusOK {
		t.Fatalf("first request: got %d", got)
	}
	if got := do(1); got != http.StatusTooManyRequests {
		t.Fatalf("second request same user: got %d", got)
	}
	if got := do(2); got != http.StatusOK {
		t.Fatalf("other user: got %d", got)
	}
}

func TestPaymentToken(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"missing header", "s3cret", "", http.StatusForbidden},
		{"wrong header", "s3cret", "nope", http.StatusForbidden},
		{"matching header", "s3cret", "s3cret", http.StatusOK},
		{"no secret configured", "", "", http.StatusServiceUnavailable},
		{"no secret configured with header", "", "anything", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/cb", PaymentToken(tt.secret), func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/cb", nil)
			if tt.header != "" {
				req.Header.Set(PaymentTokenHeader, tt.header)
			}
			if w := serve(r, req); w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	const id = "5f0c2d0e-8a43-4c64-9d3a-0d3b3b7f5a11"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, id)
	if got := serve(r, req).Header().Get(RequestIDHeader); got != id {
		t.Fatalf("expected %s got %s", id, got)
	}
}
