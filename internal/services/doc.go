// Package services provides the Spotify Web API client used to build the game catalog.
//
// # Service Interface
//
// The [Service] interface exposes the two read-only collection endpoints the
// game needs: the listener's top tracks and saved tracks. [OAuthService]
// extends it with the authorization operations consumed by the CLI login flow
// and the loopback callback server.
//
// # Authentication
//
// [SpotifyService] implements the authorization code flow with PKCE
// ([oauth2.GenerateVerifier] / S256 challenge), so no client secret ever
// touches disk. Tokens are refreshed transparently five minutes before their
// reported expiry, and an unexpected 401 triggers exactly one forced
// refresh-and-retry before the failure propagates.
//
// # Rate Limiting
//
// All requests pass through a token-bucket limiter ([rate.Limiter], 10 rps)
// to stay inside Spotify's API quota during catalog assembly.
package services
