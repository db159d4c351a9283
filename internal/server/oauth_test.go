package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newTestHandler() *OAuthHandler {
	config := &oauth2.Config{
		ClientID:    "client",
		RedirectURL: "http://127.0.0.1:3000/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/authorize",
			TokenURL: "https://accounts.example.com/token",
		},
	}
	return NewOAuthHandler(config, "expected-state")
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Invalid State", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error result for a state mismatch")
		}
	})

	t.Run("Missing Code", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&error=access_denied&error_description=denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error result when the code is missing")
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		handler := newTestHandler()

		first := httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?state=expected-state&code=abc", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replayed callback to be rejected, got %d", rec.Code)
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := newTestHandler()
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes: %v", routes)
		}
	})
}
