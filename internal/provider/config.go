package provider

import (
	"slices"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type ProviderType string

// Supported source provider types.
const (
	Local  ProviderType = "local"
	GitHub ProviderType = "github"
	GitLab ProviderType = "gitlab"
	HTTP   ProviderType = "http"
)

var supportedProviderTypes = []ProviderType{Local, GitHub, GitLab, HTTP}

// Config represents source provider configuration.
type Config struct {
	Type    ProviderType `yaml:"type" env:"PROVIDER_TYPE"`
	BaseURL string       `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token   string       `yaml:"token" env:"PROVIDER_TOKEN"`
}

func (c *Config) PrepareAndValidate() error {
	c.Type = ProviderType(lang.Check(string(c.Type), string(Local)))

	if !slices.Contains(supportedProviderTypes, c.Type) {
		return errm.New("invalid provider type: %s", c.Type)
	}
	if c.Token == "" && (c.Type == GitHub || c.Type == GitLab) {
		return errm.New("token is required for %s provider", c.Type)
	}
	return nil
}
