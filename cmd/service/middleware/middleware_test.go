package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/feynman-ai/feynman-ai/app/response"
)

func newGuardedEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(I18n(), response.NewResponse())
	e.GET("/guarded", VerifyAPISecret(secret), func(c *gin.Context) {
		response.APISuccess(c, nil)
	})
	return e
}

func TestVerifyAPISecret(t *testing.T) {
	engine := newGuardedEngine("s3cret")

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusForbidden},
		{"wrong secret", "guess", http.StatusForbidden},
		{"correct secret", "s3cret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tc.header != "" {
				req.Header.Set(API_SECRET_HEADER_KEY, tc.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}
