// Package services defines the provider-facing interfaces used by the HTTP relay and implements them for Spotify.
//
// # Interfaces
//
// [Authenticator] builds the consent URL and trades an authorization code for a token.
// [TracksProvider] fetches the signed-in user's top tracks with a caller-supplied token.
//
// Handlers depend on these interfaces only, so tests substitute fakes without a network.
//
// # Spotify Implementation
//
// [SpotifyService] is built once from an immutable [shared.SpotifyConfig].
// The token exchange goes through [oauth2.Config] with Spotify's endpoint and HTTP Basic client credentials.
// The service never stores tokens: every [TracksProvider.TopTracks] call carries the token it was given.
//
// Top tracks are fetched with [APIService], which keeps the provider body byte-for-byte so the relay can return it untouched.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrTokenExchange] : the provider rejected the code, or returned no access token
//   - [shared.ErrServiceUnavailable] : the provider could not be reached
//   - [shared.ErrNotAuthenticated] : no access token was supplied
//   - [shared.ErrAPIRequest] : the provider answered with a non-2xx status, see [UpstreamError]
//   - [shared.ErrInvalidArgument] : a [TopTracksQuery] is out of range
package services
