package reddit

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/SebastianTibata/redbot/internal/domain"
)

const (
	defaultAPIBase  = "https://oauth.reddit.com"
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// Config holds the application-level OAuth credentials shared by every
// account connection. The per-account refresh token comes from the account
// store.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string

	// APIBase and TokenURL are overridable for tests; empty means the
	// public Reddit endpoints.
	APIBase  string
	TokenURL string
}

// Connector builds an authenticated Client from an account's credential.
// Construction fails with AuthenticationError when the refresh token is
// invalid or revoked.
type Connector interface {
	Connect(ctx context.Context, account *domain.Account) (Client, error)
}

type connector struct {
	cfg Config
}

// NewConnector creates a Connector with the given application credentials.
func NewConnector(cfg Config) Connector {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	return &connector{cfg: cfg}
}

func (c *connector) Connect(ctx context.Context, account *domain.Account) (Client, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: account.Token})

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = 30 * time.Second

	client := newHTTPClient(httpClient, c.cfg.APIBase, c.cfg.UserAgent)

	// The identity check exercises the refresh flow; a revoked token
	// surfaces here, before any task work happens.
	if _, err := client.Me(ctx); err != nil {
		return nil, &domain.AuthenticationError{Handle: account.Handle, Err: err}
	}
	return client, nil
}

// NewClientForTransport builds a Client on top of an already-authenticated
// http.Client. Used by tests with httptest servers.
func NewClientForTransport(hc *http.Client, apiBase, userAgent string) Client {
	return newHTTPClient(hc, apiBase, userAgent)
}
