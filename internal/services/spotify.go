// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Tokens are refreshed this long before their reported expiry.
	tokenExpiryBuffer = 5 * time.Minute
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	PreviewURL *string         `json:"preview_url"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyPaginatedTracks represents a paginated response of top tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifyTrack `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedSavedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedSavedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifyService implements [OAuthService] for Spotify API interactions.
//
// Authentication uses the authorization code flow with PKCE, so no client
// secret is required; the token is refreshed transparently shortly before
// expiry, and a 401 response triggers exactly one forced refresh-and-retry.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	verifier   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service with the given credentials.
// Requires "client_id"; "redirect_uri" defaults to the loopback callback.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-library-read",
			"user-top-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		verifier:   oauth2.GenerateVerifier(),
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login with the PKCE challenge attached.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.S256ChallengeOption(s.verifier))
}

// GetOAuthConfig exposes the OAuth2 client configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// ExchangeOptions returns the PKCE verifier option required when redeeming the auth code.
func (s *SpotifyService) ExchangeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.VerifierOption(s.verifier)}
}

// OAuthenticate installs a previously obtained OAuth token.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}
	s.token = token
	return nil
}

// ValidToken returns a currently valid bearer token, refreshing it when it is
// within the expiry buffer. Returns [shared.ErrNotAuthenticated] when no token
// has been installed.
func (s *SpotifyService) ValidToken(ctx context.Context) (string, error) {
	if s.token == nil {
		return "", shared.ErrNotAuthenticated
	}

	if s.token.Expiry.IsZero() || time.Until(s.token.Expiry) > tokenExpiryBuffer {
		return s.token.AccessToken, nil
	}

	if err := s.refresh(ctx); err != nil {
		return "", err
	}

	return s.token.AccessToken, nil
}

// Token returns the currently installed OAuth token, or nil.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// refresh redeems the refresh token for a new access token.
func (s *SpotifyService) refresh(ctx context.Context) error {
	if s.token == nil || s.token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	refreshed, err := s.config.TokenSource(ctx, s.token).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	// Spotify may omit the refresh token on refresh responses
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = s.token.RefreshToken
	}
	s.token = refreshed

	return nil
}

// doRequest performs an authenticated GET request to the Spotify API.
//
// On a 401 the token is force-refreshed and the request retried exactly once
// before the failure is surfaced.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	token, err := s.ValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.get(ctx, endpoint, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := s.refresh(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		if resp, err = s.get(ctx, endpoint, s.token.AccessToken); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (s *SpotifyService) get(ctx context.Context, endpoint, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spotifyBaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopTracks retrieves a page of the user's most-played tracks (medium term).
func (s *SpotifyService) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	limit = clampLimit(limit)

	var response SpotifyPaginatedTracks
	endpoint := fmt.Sprintf("/me/top/tracks?limit=%d&time_range=medium_term", limit)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, st := range response.Items {
		tracks = append(tracks, toTrack(st))
	}

	return tracks, nil
}

// SavedTracks retrieves a page of the user's saved (liked) tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit int) ([]models.Track, error) {
	limit = clampLimit(limit)

	var response SpotifyPaginatedSavedTracks
	endpoint := fmt.Sprintf("/me/tracks?limit=%d", limit)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, toTrack(item.Track))
	}

	return tracks, nil
}

// toTrack maps a Spotify API track record to the domain [models.Track].
func toTrack(st SpotifyTrack) models.Track {
	track := models.Track{
		ID:    st.ID,
		Title: st.Name,
	}

	for _, artist := range st.Artists {
		track.Artists = append(track.Artists, artist.Name)
	}

	// preview_url is nullable; tracks without one stay in the model but
	// are filtered out of the playable pool by the catalog
	if st.PreviewURL != nil {
		track.PreviewURL = *st.PreviewURL
	}

	for _, img := range st.Album.Images {
		track.AlbumArtURL = append(track.AlbumArtURL, img.URL)
	}

	return track
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
