package llm

import (
	"fmt"
	"os"
	"strings"
)

// Provider describes one OpenAI-compatible generation endpoint.
type Provider struct {
	Name    string
	EnvVar  string // Environment variable holding the API key
	BaseURL string // Empty means the client library default
	Model   string
}

var (
	// XAI targets the xAI endpoint.
	XAI = Provider{
		Name:    "xai",
		EnvVar:  "XAI_API_KEY",
		BaseURL: "https://api.x.ai/v1",
		Model:   "grok-3-beta",
	}
	// OpenAI targets the default OpenAI endpoint.
	OpenAI = Provider{
		Name:   "openai",
		EnvVar: "OPENAI_API_KEY",
		Model:  "gpt-4o",
	}
)

// ResolveProvider maps a selector to a provider. Anything other than "xai"
// resolves to OpenAI.
func ResolveProvider(name string) Provider {
	if strings.EqualFold(strings.TrimSpace(name), XAI.Name) {
		return XAI
	}
	return OpenAI
}

// APIKey reads the provider's key from the environment.
func (p Provider) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(p.EnvVar))
	if key == "" {
		return "", &MissingKeyError{Provider: p.Name, EnvVar: p.EnvVar}
	}
	return key, nil
}

// MissingKeyError reports a provider whose credential is not configured.
type MissingKeyError struct {
	Provider string
	EnvVar   string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("API key for %s provider is not set (export %s)", strings.ToUpper(e.Provider), e.EnvVar)
}
