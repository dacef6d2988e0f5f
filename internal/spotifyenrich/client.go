package spotifyenrich

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

const maxTracksPerRequest = 100

// Client wraps the Spotify API client for catalog lookups. Only the
// client-credentials flow is needed here; no user library access.
type Client struct {
	api *spotify.Client
}

// NewClient authenticates with the client-credentials flow and returns a
// ready client.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &Client{api: spotify.New(httpClient)}, nil
}

// FindTrack searches the catalog for a song by name and artist and returns
// the best match's track ID, or "" when nothing matched.
func (c *Client) FindTrack(ctx context.Context, song, artist string) (string, error) {
	query := song
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", song, artist)
	}

	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", fmt.Errorf("searching for %q: %w", song, err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return "", nil
	}
	return result.Tracks.Tracks[0].ID.String(), nil
}

// FetchFeatures retrieves audio features for the given track IDs, keyed by
// ID. Requests are batched to the API's 100-track limit. IDs the catalog has
// no features for are absent from the result.
func (c *Client) FetchFeatures(ctx context.Context, ids []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	total := len(spotifyIDs)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := spotifyIDs[i:end]

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // track has no audio features
			}
			out[f.ID.String()] = featureMap(f)
		}
	}
	return out, nil
}

// featureMap converts API audio features to the canonical feature names the
// dataset schema uses.
func featureMap(f *spotify.AudioFeatures) map[string]float64 {
	return map[string]float64{
		"tempo":            float64(f.Tempo),
		"energy":           float64(f.Energy),
		"valence":          float64(f.Valence),
		"loudness":         float64(f.Loudness),
		"danceability":     float64(f.Danceability),
		"speechiness":      float64(f.Speechiness),
		"acousticness":     float64(f.Acousticness),
		"instrumentalness": float64(f.Instrumentalness),
		"liveness":         float64(f.Liveness),
	}
}
