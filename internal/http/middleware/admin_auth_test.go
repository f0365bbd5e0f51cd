package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func adminLeadsRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "/admin/leads", nil)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp
}

func TestAdminJWTNoSecretKeepsSurfaceClosed(t *testing.T) {
	mw := AdminJWT("")
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("leads endpoint must not be reached without a configured secret")
	})).ServeHTTP(rec, adminLeadsRequest())

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Success || resp.Message == "" {
		t.Fatalf("expected error envelope, got %+v", resp)
	}
}

func TestAdminJWTMissingBearer(t *testing.T) {
	mw := AdminJWT("secret")

	for _, header := range []string{"", "Bearer ", "Basic dXNlcjpwdw=="} {
		req := adminLeadsRequest()
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status %d, got %d", header, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestAdminJWTWrongSecret(t *testing.T) {
	mw := AdminJWT("secret")
	req := adminLeadsRequest()
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "other-secret", time.Now().Add(5*time.Minute)))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Message != "invalid or expired token" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestAdminJWTExpiredToken(t *testing.T) {
	mw := AdminJWT("secret")
	req := adminLeadsRequest()
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret", time.Now().Add(-time.Minute)))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAdminJWTValidTokenExposesClaims(t *testing.T) {
	mw := AdminJWT("secret")
	req := adminLeadsRequest()
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret", time.Now().Add(5*time.Minute)))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := AdminClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("expected admin claims in context")
		}
		if claims.Subject != "site-owner" {
			t.Fatalf("expected subject site-owner, got %q", claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected leads endpoint to be reached")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func adminToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "site-owner",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
