package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/captionboard/internal/domain"
)

func newAuthTestRouter(verifier TokenVerifier) (*gin.Engine, *domain.Session) {
	gin.SetMode(gin.TestMode)
	var seen domain.Session

	r := gin.New()
	r.GET("/protected", RequireAuth(verifier), func(c *gin.Context) {
		seen = GetSession(c)
		c.Status(http.StatusOK)
	})
	r.GET("/open", OptionalAuth(verifier), func(c *gin.Context) {
		seen = GetSession(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestRequireAuth(t *testing.T) {
	verifier := NewStaticTokenVerifier(map[string]string{"tok-alice": "alice"})

	testCases := []struct {
		name        string
		header      string
		wantStatus  int
		wantProfile string
	}{
		{name: "valid token", header: "Bearer tok-alice", wantStatus: http.StatusOK, wantProfile: "alice"},
		{name: "case-insensitive scheme", header: "bearer tok-alice", wantStatus: http.StatusOK, wantProfile: "alice"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer tok-nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic tok-alice", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, seen := newAuthTestRouter(verifier)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && seen.ProfileID != tc.wantProfile {
				t.Errorf("session profile = %q, want %q", seen.ProfileID, tc.wantProfile)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier := NewStaticTokenVerifier(map[string]string{"tok-alice": "alice"})

	t.Run("anonymous passes with empty session", func(t *testing.T) {
		router, seen := newAuthTestRouter(verifier)
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if seen.Authenticated() {
			t.Errorf("session should be anonymous, got %+v", seen)
		}
	})

	t.Run("valid token resolves session", func(t *testing.T) {
		router, seen := newAuthTestRouter(verifier)
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer tok-alice")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if seen.ProfileID != "alice" {
			t.Errorf("session profile = %q, want alice", seen.ProfileID)
		}
	})
}
