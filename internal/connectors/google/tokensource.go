package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// Configuration keys for stored Google credentials.
const (
	KeyClientID     = "google.client_id"
	KeyClientSecret = "google.client_secret"
	KeyRefreshToken = "google.refresh_token"
)

// Scopes requested for Drive transport and Gmail send.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/gmail.send",
}

// NewTokenSource builds an oauth2.TokenSource from credentials held in the
// config store. The refresh token is exchanged for short-lived access tokens
// as needed; the caller never sees raw tokens.
//
// Returns domain.ErrAuthRequired when any credential is missing.
func NewTokenSource(ctx context.Context, cfg driven.ConfigStore) (oauth2.TokenSource, error) {
	clientID := cfg.GetString(KeyClientID)
	clientSecret := cfg.GetString(KeyClientSecret)
	refreshToken := cfg.GetString(KeyRefreshToken)

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("%w: set %s, %s and %s in %s",
			domain.ErrAuthRequired, KeyClientID, KeyClientSecret, KeyRefreshToken, cfg.Path())
	}

	oc := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauthgoogle.Endpoint,
		Scopes:       Scopes,
	}

	// ReuseTokenSource caches the access token until expiry.
	return oauth2.ReuseTokenSource(nil,
		oc.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})), nil
}
