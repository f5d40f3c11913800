package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mingle/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// echoHandler records the uid the middleware put on the context.
func echoHandler(gotUID *string, gotOK *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := GetUserIDFromContext(r.Context())
		*gotUID = uid
		*gotOK = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	validToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKeyToken := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubToken := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantUID    string
	}{
		{
			name:       "valid bearer token",
			header:     "Bearer " + validToken,
			wantStatus: http.StatusOK,
			wantUID:    "uid-abc",
		},
		{
			name:       "valid cookie token",
			cookie:     validToken,
			wantStatus: http.StatusOK,
			wantUID:    "uid-abc",
		},
		{
			name:       "missing token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing key",
			header:     "Bearer " + wrongKeyToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing sub claim",
			header:     "Bearer " + noSubToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization header",
			header:     validToken,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUID string
			var gotOK bool
			handler := AuthMiddleware(testSecret)(echoHandler(&gotUID, &gotOK))

			req := httptest.NewRequest(http.MethodGet, "/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if !gotOK || gotUID != tt.wantUID {
					t.Errorf("context uid = (%q, %v), want (%q, true)", gotUID, gotOK, tt.wantUID)
				}
			}
		})
	}
}

func TestAuthMiddleware_ExpiredTokenCode(t *testing.T) {
	expiredToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	var uid string
	var ok bool
	handler := AuthMiddleware(testSecret)(echoHandler(&uid, &ok))

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+expiredToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Clients refresh on this code instead of logging the user out.
	if body := rec.Body.String(); !strings.Contains(body, model.CodeTokenExpired) {
		t.Errorf("body should carry code %s, got: %s", model.CodeTokenExpired, body)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	validToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, testSecret, jwt.MapClaims{
		"sub": "uid-abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		header  string
		wantUID string
		wantOK  bool
	}{
		{
			name:    "valid token sets uid",
			header:  "Bearer " + validToken,
			wantUID: "uid-abc",
			wantOK:  true,
		},
		{
			name:   "no token passes through anonymous",
			wantOK: false,
		},
		{
			name:   "expired token treated as anonymous",
			header: "Bearer " + expiredToken,
			wantOK: false,
		},
		{
			name:   "garbage token treated as anonymous",
			header: "Bearer nonsense",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUID string
			var gotOK bool
			handler := OptionalAuthMiddleware(testSecret)(echoHandler(&gotUID, &gotOK))

			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// Optional auth never rejects.
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if gotOK != tt.wantOK || gotUID != tt.wantUID {
				t.Errorf("context uid = (%q, %v), want (%q, %v)", gotUID, gotOK, tt.wantUID, tt.wantOK)
			}
		})
	}
}
