package configuration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/qcs-runtime/errors"
)

// Configuration is the resolved profile used to reach QCS, the QVM and
// quilc. Token fields change on Refresh; all access goes through the
// accessor methods so a Configuration may be shared between goroutines.
type Configuration struct {
	AuthServer AuthServer
	// HTTPClient has no timeout by default; requests run until the service
	// answers or the caller's context is done.
	HTTPClient *http.Client
	// RPCTimeout bounds how long a QPU or quilc call waits for its reply.
	// Zero waits until the caller's context is done.
	RPCTimeout   time.Duration
	APIURL       string
	QVMURL       string
	QuilcURL     string
	ProfileName  string
	accessToken  string
	refreshToken string
	mu           sync.RWMutex
}

// Default returns a configuration with default endpoints and no credentials.
func Default() *Configuration {
	c, _ := New(DefaultSettings(), Secrets{})
	return c
}

// Load reads settings and secrets from their files, honoring the path and
// profile environment variables. A missing file falls back to defaults; an
// unreadable or malformed file, or a profile that does not exist, is a
// ConfigurationError.
func Load() (*Configuration, error) {
	settings := DefaultSettings()
	path, err := pathFromEnvOrHome(SettingsPathVar, "settings.toml")
	if err != nil {
		return nil, errors.Configuration(errors.KindNotFound, "locate settings file", err)
	}
	var fromFile Settings
	ok, err := readTOML(path, &fromFile)
	if err != nil {
		return nil, errors.Configuration(errors.KindInvalidInput, "read settings "+path, err)
	}
	if ok {
		settings = fromFile.withDefaults()
	}

	var secrets Secrets
	path, err = pathFromEnvOrHome(SecretsPathVar, "secrets.toml")
	if err != nil {
		return nil, errors.Configuration(errors.KindNotFound, "locate secrets file", err)
	}
	if _, err := readTOML(path, &secrets); err != nil {
		return nil, errors.Configuration(errors.KindInvalidInput, "read secrets "+path, err)
	}

	return New(settings, secrets)
}

// New resolves the selected profile from settings and secrets.
func New(settings Settings, secrets Secrets) (*Configuration, error) {
	settings = settings.withDefaults()

	name := settings.DefaultProfileName
	if env := os.Getenv(ProfileNameVar); env != "" {
		name = env
	}
	profile, ok := settings.Profiles[name]
	if !ok {
		return nil, errors.Configuration(errors.KindNotFound,
			fmt.Sprintf("profile %q is not in settings.profiles", name), nil)
	}
	auth, ok := settings.AuthServers[profile.AuthServerName]
	if !ok {
		return nil, errors.Configuration(errors.KindNotFound,
			fmt.Sprintf("auth server %q is not in settings.auth_servers", profile.AuthServerName), nil)
	}

	c := &Configuration{
		ProfileName: name,
		APIURL:      strings.TrimRight(profile.APIURL, "/"),
		QVMURL:      profile.Applications.Pyquil.QVMURL,
		QuilcURL:    profile.Applications.Pyquil.QuilcURL,
		AuthServer:  auth,
		HTTPClient:  &http.Client{},
	}
	if cred, ok := secrets.Credentials[profile.CredentialsName]; ok && cred.TokenPayload != nil {
		c.accessToken = cred.TokenPayload.AccessToken
		c.refreshToken = cred.TokenPayload.RefreshToken
	}
	if v := os.Getenv(QVMURLVar); v != "" {
		c.QVMURL = v
	}
	if v := os.Getenv(QuilcURLVar); v != "" {
		c.QuilcURL = v
	}
	return c, nil
}

// AccessToken returns the current bearer token, "" if none.
func (c *Configuration) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// SetTokens replaces both tokens.
func (c *Configuration) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// HasRefreshToken reports whether Refresh can be attempted.
func (c *Configuration) HasRefreshToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken != ""
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges the refresh token for a new access token at the
// profile's auth server.
func (c *Configuration) Refresh(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()
	if refresh == "" {
		return errors.Configuration(errors.KindCredentials, "no refresh token is in secrets", nil)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.AuthServer.ClientID},
		"refresh_token": {refresh},
	}
	tokenURL := strings.TrimRight(c.AuthServer.Issuer, "/") + "/v1/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Configuration(errors.KindInvalidInput, "build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client().Do(req)
	if err != nil {
		return errors.Unreachable(errors.PhaseConfigure, tokenURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Configuration(errors.KindCredentials,
			fmt.Sprintf("token refresh rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return errors.Protocol(errors.PhaseConfigure, "decode token response", err)
	}
	if tr.AccessToken == "" {
		return errors.Protocol(errors.PhaseConfigure, "token response has no access_token", nil)
	}
	if tr.RefreshToken == "" {
		tr.RefreshToken = refresh
	}
	c.SetTokens(tr.AccessToken, tr.RefreshToken)
	return nil
}

func (c *Configuration) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
