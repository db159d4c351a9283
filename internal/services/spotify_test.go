package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songsnap/internal/shared"
	"golang.org/x/oauth2"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

type roundTripper struct {
	response *http.Response
	err      error
}

func (m *roundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func authedService(t *testing.T, resp *http.Response) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.httpClient = &http.Client{Transport: &roundTripper{response: resp}}

	token := &oauth2.Token{AccessToken: "test_token", Expiry: time.Now().Add(time.Hour)}
	if err := srv.OAuthenticate(context.Background(), token); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":    "test_client_id",
				"redirect_uri": "http://127.0.0.1:9999/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}

			if srv.config.RedirectURL != "http://127.0.0.1:9999/callback" {
				t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{})
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != "http://127.0.0.1:3000/callback" {
				t.Errorf("expected loopback redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if authURL == "" {
			t.Error("expected auth URL to be generated")
		}

		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
		if !strings.Contains(authURL, "code_challenge_method=S256") {
			t.Error("auth URL should carry the PKCE challenge")
		}
	})

	t.Run("ExchangeOptions", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if len(srv.ExchangeOptions()) == 0 {
			t.Error("expected PKCE verifier option for code exchange")
		}
	})

	t.Run("OAuthenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("With Token", func(t *testing.T) {
			token := &oauth2.Token{AccessToken: "test_access_token"}
			if err := srv.OAuthenticate(context.Background(), token); err != nil {
				t.Errorf("expected no error, got %v", err)
			}

			if srv.token == nil || srv.token.AccessToken != "test_access_token" {
				t.Error("expected token to be installed")
			}
		})

		t.Run("Rejects Empty Token", func(t *testing.T) {
			if err := srv.OAuthenticate(context.Background(), nil); err == nil {
				t.Error("expected error for nil token")
			}
			if err := srv.OAuthenticate(context.Background(), &oauth2.Token{}); err == nil {
				t.Error("expected error for empty access token")
			}
		})
	})

	t.Run("ValidToken", func(t *testing.T) {
		t.Run("Not Authenticated", func(t *testing.T) {
			srv, _ := NewSpotifyService(map[string]string{"client_id": "test_client_id"})

			_, err := srv.ValidToken(context.Background())
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Fresh Token Passes Through", func(t *testing.T) {
			srv, _ := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			srv.token = &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}

			token, err := srv.ValidToken(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "fresh" {
				t.Errorf("expected token 'fresh', got %s", token)
			}
		})

		t.Run("Expired Without Refresh Token", func(t *testing.T) {
			srv, _ := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			srv.token = &oauth2.Token{AccessToken: "stale", Expiry: time.Now().Add(-time.Minute)}

			_, err := srv.ValidToken(context.Background())
			if !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrNoRefreshToken, got %v", err)
			}
		})
	})

	t.Run("TopTracks", func(t *testing.T) {
		body := `{
			"items": [
				{
					"id": "track1",
					"name": "First Song",
					"preview_url": "https://p.scdn.co/mp3-preview/abc",
					"artists": [{"id": "a1", "name": "Artist One"}],
					"album": {"id": "al1", "name": "Album", "images": [{"url": "https://img/640", "height": 640, "width": 640}]}
				},
				{
					"id": "track2",
					"name": "Second Song",
					"preview_url": null,
					"artists": [{"id": "a2", "name": "Artist Two"}],
					"album": {"id": "al2", "name": "Album Two", "images": []}
				}
			],
			"total": 2, "limit": 50, "offset": 0, "next": null, "previous": null
		}`

		srv := authedService(t, jsonResponse(http.StatusOK, body))

		tracks, err := srv.TopTracks(context.Background(), 50)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}

		if tracks[0].ID != "track1" || tracks[0].Title != "First Song" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if tracks[0].Artist() != "Artist One" {
			t.Errorf("expected primary artist 'Artist One', got %s", tracks[0].Artist())
		}
		if !tracks[0].Playable() {
			t.Error("track with preview_url should be playable")
		}
		if len(tracks[0].AlbumArtURL) != 1 {
			t.Errorf("expected one album image, got %d", len(tracks[0].AlbumArtURL))
		}

		// null preview_url must be tolerated, not dropped here
		if tracks[1].Playable() {
			t.Error("track without preview_url should not be playable")
		}
	})

	t.Run("SavedTracks", func(t *testing.T) {
		body := `{
			"items": [
				{
					"added_at": "2026-01-01T00:00:00Z",
					"track": {
						"id": "saved1",
						"name": "Saved Song",
						"preview_url": "https://p.scdn.co/mp3-preview/xyz",
						"artists": [{"id": "a3", "name": "Saved Artist"}],
						"album": {"id": "al3", "name": "Saved Album", "images": []}
					}
				}
			],
			"total": 1, "limit": 50, "offset": 0, "next": null, "previous": null
		}`

		srv := authedService(t, jsonResponse(http.StatusOK, body))

		tracks, err := srv.SavedTracks(context.Background(), 50)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		if tracks[0].ID != "saved1" || tracks[0].Artist() != "Saved Artist" {
			t.Errorf("unexpected saved track %+v", tracks[0])
		}
	})

	t.Run("API Error Status", func(t *testing.T) {
		srv := authedService(t, jsonResponse(http.StatusInternalServerError, `{"error": {"status": 500}}`))

		_, err := srv.TopTracks(context.Background(), 50)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Unauthorized Without Refresh Token", func(t *testing.T) {
		srv := authedService(t, jsonResponse(http.StatusUnauthorized, `{}`))

		_, err := srv.TopTracks(context.Background(), 50)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Limit Clamping", func(t *testing.T) {
		if clampLimit(0) != 20 {
			t.Errorf("expected default limit 20, got %d", clampLimit(0))
		}
		if clampLimit(100) != 50 {
			t.Errorf("expected max limit 50, got %d", clampLimit(100))
		}
		if clampLimit(30) != 30 {
			t.Errorf("expected limit 30, got %d", clampLimit(30))
		}
	})
}
