package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareNoop(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	var got AuthenticatedUser
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name     string
		headers  map[string]string
		wantCode int
		wantUser string
	}{
		{"bearer token", map[string]string{"Authorization": "Bearer user-42"}, http.StatusNoContent, "user-42"},
		{"lowercase scheme", map[string]string{"Authorization": "bearer user-7"}, http.StatusNoContent, "user-7"},
		{"internal header wins", map[string]string{"Authorization": "Bearer other", "X-User-ID": "svc-user"}, http.StatusNoContent, "svc-user"},
		{"missing header", nil, http.StatusUnauthorized, ""},
		{"wrong scheme", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, ""},
		{"empty token", map[string]string{"Authorization": "Bearer   "}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got = AuthenticatedUser{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if got.UserID != tc.wantUser {
				t.Fatalf("expected user %q, got %q", tc.wantUser, got.UserID)
			}
			if tc.wantCode == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"code":"unauthorized"`) {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestMiddlewareWithoutVerifierPassesThrough(t *testing.T) {
	called := false
	handler := Middleware(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestNewVerifier_Errors(t *testing.T) {
	if _, err := NewVerifier(Config{Mode: "saml"}); err == nil {
		t.Fatal("expected unsupported mode error")
	}
	if _, err := NewVerifier(Config{Mode: ModeClerk}); err == nil {
		t.Fatal("expected missing JWKS URL error")
	}
}

func TestUserFromContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("expected no user on empty context")
	}
	ctx := WithUser(context.Background(), AuthenticatedUser{UserID: "u1"})
	if user, ok := UserFromContext(ctx); !ok || user.UserID != "u1" {
		t.Fatalf("unexpected user %+v", user)
	}
}
