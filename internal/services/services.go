// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/songsnap/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the catalog operations the game engine consumes.
// The engine only reads: it never creates or modifies anything on the service.
type Service interface {
	// TopTracks retrieves a page of the listener's most-played tracks.
	TopTracks(ctx context.Context, limit int) ([]models.Track, error)

	// SavedTracks retrieves a page of the listener's saved (liked) tracks.
	SavedTracks(ctx context.Context, limit int) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service with the OAuth2 authorization flow operations
// used by the CLI login command and the loopback callback server.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login, bound to the given CSRF state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 client configuration.
	GetOAuthConfig() *oauth2.Config

	// ExchangeOptions returns the auth code options (PKCE verifier) required to redeem an authorization code.
	ExchangeOptions() []oauth2.AuthCodeOption

	// OAuthenticate installs a previously obtained token, enabling authenticated requests.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}
