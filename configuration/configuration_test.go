package configuration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	qerrors "github.com/wippyai/qcs-runtime/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(SettingsPathVar, filepath.Join(dir, "settings.toml"))
	t.Setenv(SecretsPathVar, filepath.Join(dir, "secrets.toml"))
	t.Setenv(ProfileNameVar, "")
	t.Setenv(QVMURLVar, "")
	t.Setenv(QuilcURLVar, "")
	return dir
}

func TestLoadDefaultsWhenFilesMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QVMURL != DefaultQVMURL || cfg.QuilcURL != DefaultQuilcURL || cfg.APIURL != DefaultAPIURL {
		t.Errorf("unexpected endpoints: %s %s %s", cfg.QVMURL, cfg.QuilcURL, cfg.APIURL)
	}
	if cfg.AuthServer != DefaultAuthServer() {
		t.Errorf("AuthServer = %+v", cfg.AuthServer)
	}
	if cfg.AccessToken() != "" || cfg.HasRefreshToken() {
		t.Error("default configuration must carry no credentials")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := isolate(t)

	settings := Settings{
		DefaultProfileName: "lab",
		Profiles: map[string]Profile{
			"lab": {
				APIURL:          "https://api.example.com/",
				AuthServerName:  "corp",
				CredentialsName: "me",
				Applications: Applications{Pyquil: Pyquil{
					QVMURL:   "http://qvm:5000",
					QuilcURL: "tcp://quilc:5555",
				}},
			},
		},
		AuthServers: map[string]AuthServer{
			"corp": {ClientID: "client", Issuer: "https://auth.example.com"},
		},
	}
	secrets := Secrets{Credentials: map[string]Credential{
		"me": {TokenPayload: &TokenPayload{AccessToken: "access", RefreshToken: "refresh"}},
	}}
	if err := writeTOML(filepath.Join(dir, "settings.toml"), settings); err != nil {
		t.Fatal(err)
	}
	if err := writeTOML(filepath.Join(dir, "secrets.toml"), secrets); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfileName != "lab" {
		t.Errorf("ProfileName = %q", cfg.ProfileName)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.QVMURL != "http://qvm:5000" || cfg.QuilcURL != "tcp://quilc:5555" {
		t.Errorf("endpoints = %s %s", cfg.QVMURL, cfg.QuilcURL)
	}
	if cfg.AuthServer.ClientID != "client" {
		t.Errorf("AuthServer = %+v", cfg.AuthServer)
	}
	if cfg.AccessToken() != "access" || !cfg.HasRefreshToken() {
		t.Error("credentials not loaded")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(QVMURLVar, "http://override:5000")
	t.Setenv(QuilcURLVar, "tcp://override:5555")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QVMURL != "http://override:5000" || cfg.QuilcURL != "tcp://override:5555" {
		t.Errorf("overrides not applied: %s %s", cfg.QVMURL, cfg.QuilcURL)
	}
}

func TestMissingProfile(t *testing.T) {
	isolate(t)
	t.Setenv(ProfileNameVar, "nope")

	_, err := Load()
	if !errors.Is(err, qerrors.ErrConfiguration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestMalformedSettings(t *testing.T) {
	dir := isolate(t)
	if err := writeFile(filepath.Join(dir, "settings.toml"), "default_profile_name = [\n"); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if !errors.Is(err, qerrors.ErrConfiguration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/token" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		form = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"client_id":     r.PostForm.Get("client_id"),
			"refresh_token": r.PostForm.Get("refresh_token"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh"}`))
	}))
	defer srv.Close()

	cfg := Default()
	cfg.AuthServer = AuthServer{ClientID: "client", Issuer: srv.URL}
	cfg.SetTokens("old-access", "old-refresh")

	if err := cfg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if cfg.AccessToken() != "new-access" {
		t.Errorf("AccessToken = %q", cfg.AccessToken())
	}
	if form["grant_type"] != "refresh_token" || form["client_id"] != "client" || form["refresh_token"] != "old-refresh" {
		t.Errorf("form = %v", form)
	}
}

func TestRefreshErrors(t *testing.T) {
	t.Run("no_refresh_token", func(t *testing.T) {
		err := Default().Refresh(context.Background())
		if !errors.Is(err, qerrors.ErrConfiguration) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_grant", http.StatusBadRequest)
		}))
		defer srv.Close()

		cfg := Default()
		cfg.AuthServer.Issuer = srv.URL
		cfg.SetTokens("", "stale")
		err := cfg.Refresh(context.Background())
		if !errors.Is(err, &qerrors.Error{Class: qerrors.ClassConfiguration, Kind: qerrors.KindCredentials}) {
			t.Fatalf("expected ConfigurationError, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		cfg := Default()
		cfg.AuthServer.Issuer = url
		cfg.SetTokens("", "stale")
		err := cfg.Refresh(context.Background())
		if !errors.Is(err, qerrors.ErrTransport) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})
}
