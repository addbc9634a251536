package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func newTestAuthenticator(t *testing.T, endpoint oauth2.Endpoint) *Authenticator {
	t.Helper()

	auth, err := NewAuthenticator(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenFile:    filepath.Join(t.TempDir(), "google.json"),
		Endpoint:     endpoint,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create authenticator: %v", err)
	}
	return auth
}

func TestNewAuthenticator_RequiresCredentials(t *testing.T) {
	if _, err := NewAuthenticator(Config{}, nil); err == nil {
		t.Error("Expected error for missing credentials")
	}
	if _, err := NewAuthenticator(Config{ClientID: "id"}, nil); err == nil {
		t.Error("Expected error for missing client secret")
	}
}

func TestAuthURL(t *testing.T) {
	auth := newTestAuthenticator(t, oauth2.Endpoint{})

	rawURL := auth.AuthURL("state123")
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Auth URL does not parse: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("Expected client_id in URL, got %q", q.Get("client_id"))
	}
	if q.Get("state") != "state123" {
		t.Errorf("Expected state in URL, got %q", q.Get("state"))
	}
	if q.Get("access_type") != "offline" {
		t.Errorf("Expected offline access type, got %q", q.Get("access_type"))
	}
	if !strings.Contains(q.Get("scope"), "auth/drive") {
		t.Errorf("Expected drive scope, got %q", q.Get("scope"))
	}
}

func TestExchange_PersistsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse form: %v", err)
		}
		if r.FormValue("code") != "auth-code" {
			t.Errorf("Expected auth-code, got %q", r.FormValue("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	auth := newTestAuthenticator(t, oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	})

	if auth.HasToken() {
		t.Error("Expected no token before exchange")
	}

	token, err := auth.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if token.AccessToken != "at-1" || token.RefreshToken != "rt-1" {
		t.Errorf("Unexpected token: %+v", token)
	}

	if !auth.HasToken() {
		t.Error("Expected token to be persisted")
	}

	info, err := os.Stat(auth.tokenFile)
	if err != nil {
		t.Fatalf("Token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 token file, got %v", info.Mode().Perm())
	}

	// Round trip through the loader.
	loaded, err := auth.loadToken()
	if err != nil {
		t.Fatalf("Failed to load token: %v", err)
	}
	if loaded.RefreshToken != "rt-1" {
		t.Errorf("Expected refresh token to survive round trip, got %q", loaded.RefreshToken)
	}
}

func TestTokenSource_RequiresStoredToken(t *testing.T) {
	auth := newTestAuthenticator(t, oauth2.Endpoint{})

	if _, err := auth.TokenSource(context.Background()); err == nil {
		t.Error("Expected error without a stored token")
	}
	if _, err := auth.HTTPClient(context.Background()); err == nil {
		t.Error("Expected error without a stored token")
	}
}

func TestLoadToken_InvalidFile(t *testing.T) {
	auth := newTestAuthenticator(t, oauth2.Endpoint{})

	if err := os.WriteFile(auth.tokenFile, []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to write token file: %v", err)
	}
	if _, err := auth.loadToken(); err == nil {
		t.Error("Expected error for malformed token file")
	}
}
