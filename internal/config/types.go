package config

// DefaultAPIURL is the production Codeset API base URL.
const DefaultAPIURL = "https://api.codeset.ai/api/v1"

// DefaultCallbackPort is the port for the local OAuth callback server.
const DefaultCallbackPort = 3000

// Config is the top-level configuration structure for the codeset CLI.
type Config struct {
	// APIURL is the base URL of the Codeset backend API.
	APIURL string `yaml:"api_url,omitempty"`

	// GitHubClientID is the OAuth client id of the Codeset GitHub app.
	// Login is impossible without it.
	GitHubClientID string `yaml:"github_client_id,omitempty"`

	// CallbackPort is the local port the OAuth callback server binds to.
	// It must match the redirect URI registered with the GitHub app.
	CallbackPort int `yaml:"callback_port,omitempty"`

	// TokenDir overrides the directory used for token storage.
	// Defaults to ~/.config/codeset/tokens.
	TokenDir string `yaml:"token_dir,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		APIURL:       DefaultAPIURL,
		CallbackPort: DefaultCallbackPort,
	}
}
