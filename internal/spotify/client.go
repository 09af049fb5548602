// Package spotify provides a wrapper around the Spotify Web API for
// fetching per-track mood metadata.
package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// featuresAPI is the slice of the Spotify API the wrapper needs.
// *spotify.Client satisfies it.
type featuresAPI interface {
	GetAudioFeatures(ctx context.Context, ids ...spotify.ID) ([]*spotify.AudioFeatures, error)
}

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api featuresAPI
}

// New creates a Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// NewFromToken creates a wrapper authenticated with a bearer access token,
// for callers that did their own authorization flow.
func NewFromToken(ctx context.Context, accessToken string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	httpClient := oauth2.NewClient(ctx, src)
	return &Client{api: spotify.New(httpClient, spotify.WithRetry(true))}
}
