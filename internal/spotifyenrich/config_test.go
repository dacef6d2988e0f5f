package spotifyenrich

import (
	"errors"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		secret  string
		wantErr error
	}{
		{
			name:    "both credentials set",
			id:      "client-id",
			secret:  "client-secret",
			wantErr: nil,
		},
		{
			name:    "missing id",
			id:      "",
			secret:  "client-secret",
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "missing secret",
			id:      "client-id",
			secret:  "",
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "both missing",
			id:      "",
			secret:  "",
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOTIFY_ID", tt.id)
			t.Setenv("SPOTIFY_SECRET", tt.secret)

			cfg, err := LoadConfig()

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil {
				if cfg == nil {
					t.Fatal("LoadConfig() returned nil config with no error")
				}
				if cfg.ClientID != tt.id || cfg.ClientSecret != tt.secret {
					t.Errorf("LoadConfig() = %+v", cfg)
				}
			} else if cfg != nil {
				t.Error("LoadConfig() returned non-nil config with error")
			}
		})
	}
}
