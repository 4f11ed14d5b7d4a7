// Package provider fetches declaration sources for CI drivers: from the
// local filesystem, from a repository at a ref, or from a raw URL.
package provider

import (
	"github.com/maxbolgarin/errm"

	"github.com/apivet/apivet/internal/provider/github"
	"github.com/apivet/apivet/internal/provider/gitlab"
	"github.com/apivet/apivet/internal/provider/httpsrc"
	"github.com/apivet/apivet/internal/provider/local"
	"github.com/apivet/apivet/model"
)

// NewProvider creates a source provider based on the configuration.
func NewProvider(cfg Config) (model.SourceProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	switch cfg.Type {
	case Local:
		return local.New(), nil
	case GitHub:
		return github.New(cfg.BaseURL, cfg.Token)
	case GitLab:
		return gitlab.New(cfg.BaseURL, cfg.Token)
	case HTTP:
		return httpsrc.New(cfg.BaseURL)
	}
	return nil, errm.Errorf("unsupported provider type: %s", cfg.Type)
}
