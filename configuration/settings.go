package configuration

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	// SettingsPathVar overrides the settings file location.
	SettingsPathVar = "QCS_SETTINGS_FILE_PATH"
	// SecretsPathVar overrides the secrets file location.
	SecretsPathVar = "QCS_SECRETS_FILE_PATH"
	// ProfileNameVar selects a profile other than default_profile_name.
	ProfileNameVar = "QCS_PROFILE_NAME"
	// QVMURLVar overrides the profile's QVM URL.
	QVMURLVar = "QCS_SETTINGS_APPLICATIONS_QVM_URL"
	// QuilcURLVar overrides the profile's quilc URL.
	QuilcURLVar = "QCS_SETTINGS_APPLICATIONS_QUILC_URL"
)

const (
	DefaultProfileName = "default"
	DefaultAPIURL      = "https://api.qcs.rigetti.com"
	DefaultQVMURL      = "http://127.0.0.1:5000"
	DefaultQuilcURL    = "tcp://127.0.0.1:5555"
	DefaultClientID    = "0oa3ykoirzDKpkfzk357"
	DefaultIssuer      = "https://auth.qcs.rigetti.com/oauth2/aus8jcovzG0gW2TUG355"
)

// Settings mirrors settings.toml.
type Settings struct {
	Profiles           map[string]Profile    `toml:"profiles"`
	AuthServers        map[string]AuthServer `toml:"auth_servers"`
	DefaultProfileName string                `toml:"default_profile_name"`
}

// Profile is one named set of endpoints and credentials.
type Profile struct {
	APIURL          string       `toml:"api_url"`
	AuthServerName  string       `toml:"auth_server_name"`
	CredentialsName string       `toml:"credentials_name"`
	Applications    Applications `toml:"applications"`
}

type Applications struct {
	Pyquil Pyquil `toml:"pyquil"`
}

// Pyquil holds the simulator and compiler endpoints.
type Pyquil struct {
	QVMURL   string `toml:"qvm_url"`
	QuilcURL string `toml:"quilc_url"`
}

// AuthServer is an OAuth issuer used to refresh access tokens.
type AuthServer struct {
	ClientID string `toml:"client_id"`
	Issuer   string `toml:"issuer"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		DefaultProfileName: DefaultProfileName,
		Profiles:           map[string]Profile{DefaultProfileName: DefaultProfile()},
		AuthServers:        map[string]AuthServer{DefaultProfileName: DefaultAuthServer()},
	}
}

func DefaultProfile() Profile {
	return Profile{
		APIURL:          DefaultAPIURL,
		AuthServerName:  DefaultProfileName,
		CredentialsName: DefaultProfileName,
		Applications: Applications{Pyquil: Pyquil{
			QVMURL:   DefaultQVMURL,
			QuilcURL: DefaultQuilcURL,
		}},
	}
}

func DefaultAuthServer() AuthServer {
	return AuthServer{ClientID: DefaultClientID, Issuer: DefaultIssuer}
}

// withDefaults fills fields a file left out.
func (s Settings) withDefaults() Settings {
	if s.DefaultProfileName == "" {
		s.DefaultProfileName = DefaultProfileName
	}
	if len(s.Profiles) == 0 {
		s.Profiles = map[string]Profile{DefaultProfileName: DefaultProfile()}
	}
	for name, p := range s.Profiles {
		d := DefaultProfile()
		if p.APIURL == "" {
			p.APIURL = d.APIURL
		}
		if p.AuthServerName == "" {
			p.AuthServerName = d.AuthServerName
		}
		if p.CredentialsName == "" {
			p.CredentialsName = d.CredentialsName
		}
		if p.Applications.Pyquil.QVMURL == "" {
			p.Applications.Pyquil.QVMURL = d.Applications.Pyquil.QVMURL
		}
		if p.Applications.Pyquil.QuilcURL == "" {
			p.Applications.Pyquil.QuilcURL = d.Applications.Pyquil.QuilcURL
		}
		s.Profiles[name] = p
	}
	if s.AuthServers == nil {
		s.AuthServers = make(map[string]AuthServer)
	}
	if _, ok := s.AuthServers[DefaultProfileName]; !ok {
		s.AuthServers[DefaultProfileName] = DefaultAuthServer()
	}
	return s
}

// Secrets mirrors secrets.toml.
type Secrets struct {
	Credentials map[string]Credential `toml:"credentials"`
}

type Credential struct {
	TokenPayload *TokenPayload `toml:"token_payload"`
}

// TokenPayload is the stored OAuth token response.
type TokenPayload struct {
	RefreshToken string `toml:"refresh_token"`
	AccessToken  string `toml:"access_token"`
	Scope        string `toml:"scope,omitempty"`
	TokenType    string `toml:"token_type,omitempty"`
	IDToken      string `toml:"id_token,omitempty"`
	ExpiresIn    int    `toml:"expires_in,omitempty"`
}

// pathFromEnvOrHome resolves a file from env, or from ~/.qcs/name.
func pathFromEnvOrHome(env, name string) (string, error) {
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".qcs", name), nil
}

// readTOML decodes path into v. A missing file reports ok=false with no error.
func readTOML(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
