package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/driveguard/driveguard/internal/logging"
)

// DriveScope is the OAuth scope requested for Drive access. Full drive
// access is required because the facade creates, overwrites, and deletes
// files on the user's behalf.
const DriveScope = "https://www.googleapis.com/auth/drive"

// OOBRedirectURL is the out-of-band redirect used when no redirect URL is
// configured; the user copies the authorization code from the browser.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// ErrNoToken is returned when an operation needs a stored token and none
// has been exchanged yet.
var ErrNoToken = errors.New("no stored Google OAuth token")

// Config holds the OAuth client settings. Credentials come from explicit
// configuration, never from process-wide globals.
type Config struct {
	ClientID     string
	ClientSecret string

	// RedirectURL defaults to the out-of-band flow when empty.
	RedirectURL string

	// TokenFile is where the exchanged token is cached. Defaults to
	// DefaultTokenFile() when empty.
	TokenFile string

	// Endpoint overrides the Google OAuth endpoint. Used by tests; the
	// zero value means accounts.google.com.
	Endpoint oauth2.Endpoint
}

// Authenticator performs the OAuth code exchange and produces refreshed
// token sources from the cached token. It does not schedule refreshes; the
// oauth2 token source refreshes lazily on use.
type Authenticator struct {
	conf      *oauth2.Config
	tokenFile string
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator from explicit configuration.
func NewAuthenticator(cfg Config, logger *slog.Logger) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth client id and secret are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	redirectURL := cfg.RedirectURL
	if redirectURL == "" {
		redirectURL = OOBRedirectURL
	}

	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		var err error
		tokenFile, err = DefaultTokenFile()
		if err != nil {
			return nil, err
		}
	}

	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{DriveScope},
		},
		tokenFile: tokenFile,
		logger:    logging.WithComponent(logger, "oauth"),
	}, nil
}

// DefaultTokenFile returns the default token cache path under the user
// cache directory.
func DefaultTokenFile() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "driveguard", "google.json"), nil
}

// AuthURL returns the consent URL for user authorization. Offline access is
// requested so a refresh token is issued.
func (a *Authenticator) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it to the
// token file.
func (a *Authenticator) Exchange(ctx context.Context, authCode string) (*oauth2.Token, error) {
	token, err := a.conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := a.saveToken(token); err != nil {
		return nil, err
	}

	a.logger.Info("authorization code exchanged",
		"token", logging.SanitizeToken(token.AccessToken))
	return token, nil
}

// HasToken reports whether a cached token exists.
func (a *Authenticator) HasToken() bool {
	_, err := os.Stat(a.tokenFile)
	return err == nil
}

// TokenSource returns an auto-refreshing token source from the cached
// token. It fails when no token has been stored yet.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.loadToken()
	if err != nil {
		return nil, err
	}
	return a.conf.TokenSource(ctx, token), nil
}

// HTTPClient returns an HTTP client that attaches and refreshes the cached
// OAuth token.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: authorize access first: %w", ErrNoToken, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", a.tokenFile, err)
	}
	return &token, nil
}

func (a *Authenticator) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(a.tokenFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
