// Package spotifyenrich fills missing audio features from the Spotify Web
// API. It is an optional stage of the dataset preparation pipeline: rows the
// raw export left blank can be completed before training ever sees them.
package spotifyenrich

import (
	"errors"
	"os"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not
// set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds Spotify API credentials for the client-credentials flow.
type Config struct {
	ClientID     string
	ClientSecret string
}

// LoadConfig reads Spotify credentials from environment variables.
// Returns ErrMissingCredentials if either variable is not set.
func LoadConfig() (*Config, error) {
	id := os.Getenv("SPOTIFY_ID")
	secret := os.Getenv("SPOTIFY_SECRET")
	if id == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	return &Config{ClientID: id, ClientSecret: secret}, nil
}
