// Package scim provisions member accounts in a SCIM 2.0 identity provider
// authenticated with OAuth2 client credentials.
package scim

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 5 * time.Second

// tenantSchema is the extension attribute carrying the owning tenant, so one
// provider can serve every party without accounts leaking between them.
const tenantSchema = "urn:scim:schemas:extension:membership:2.0:User"

type Client struct {
	BaseURL     string
	OAuthConfig *clientcredentials.Config
	Client      *http.Client
}

// Config holds connection settings for the provider.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

func NewClient(cfg Config) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = cfg.BaseURL + "/oauth2/token"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	oauthConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       cfg.Scopes,
	}

	// The token fetch uses the same bounded transport as API calls.
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauthConfig.Client(ctx)
	httpClient.Timeout = timeout

	return &Client{
		BaseURL:     cfg.BaseURL,
		OAuthConfig: oauthConfig,
		Client:      httpClient,
	}
}
