package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"listkeep/internal/auth"
)

func newTestTokens(t *testing.T, ttl time.Duration) *auth.Tokens {
	t.Helper()
	return auth.NewTokens("test-secret", ttl)
}

func protected(t *testing.T, tokens *auth.Tokens, onAuth func(accountID int64)) http.Handler {
	t.Helper()
	return RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onAuth == nil {
			t.Fatal("should not reach handler")
		}
		onAuth(auth.AccountID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := protected(t, newTestTokens(t, time.Hour), nil)

	req := httptest.NewRequest("GET", "/auth/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	tokens := newTestTokens(t, time.Hour)
	token, err := tokens.Issue(1, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, header := range []string{
		"Bearer",
		"Basic " + token,
		"garbage",
	} {
		req := httptest.NewRequest("GET", "/auth/products", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		protected(t, tokens, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := protected(t, newTestTokens(t, time.Hour), nil)

	req := httptest.NewRequest("GET", "/auth/products", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	tokens := newTestTokens(t, -time.Minute)
	token, err := tokens.Issue(1, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(t, tokens, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens := newTestTokens(t, time.Hour)
	token, err := tokens.Issue(42, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotID int64
	handler := protected(t, tokens, func(id int64) { gotID = id })

	req := httptest.NewRequest("GET", "/auth/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != 42 {
		t.Errorf("account id = %d, want 42", gotID)
	}
}

func TestRequireAuthQueryToken(t *testing.T) {
	tokens := newTestTokens(t, time.Hour)
	token, err := tokens.Issue(7, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotID int64
	handler := protected(t, tokens, func(id int64) { gotID = id })

	req := httptest.NewRequest("GET", "/auth/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != 7 {
		t.Errorf("account id = %d, want 7", gotID)
	}
}

func TestRequireAuthQueryTokenOnlyForWebSocket(t *testing.T) {
	tokens := newTestTokens(t, time.Hour)
	token, err := tokens.Issue(7, "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, path := range []string{
		"/auth/products?token=" + token,
		"/auth/pay?token=" + token,
		"/auth/check?token=" + token,
	} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		protected(t, tokens, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
	}
}
