// Package httpsrc fetches declaration sources from raw URLs, e.g. a
// registry mirror serving published .d.ts files.
package httpsrc

import (
	"context"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet/model"
)

var _ model.SourceProvider = (*Provider)(nil)

// Provider fetches raw declaration text over HTTP.
type Provider struct {
	client *cliex.HTTP
	log    logze.Logger
}

func New(baseURL string) (*Provider, error) {
	log := logze.With("provider", "http")

	var (
		cli *cliex.HTTP
		err error
	)
	if baseURL != "" {
		cli, err = cliex.New(cliex.WithBaseURL(baseURL), cliex.WithLogger(log))
	} else {
		cli, err = cliex.New(cliex.WithLogger(log))
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to create HTTP client")
	}

	return &Provider{client: cli, log: log}, nil
}

func (p *Provider) Name() string { return "http" }

func (p *Provider) Fetch(ctx context.Context, ref model.SourceRef) (string, error) {
	url := ref.URL
	if url == "" {
		url = ref.Path
	}
	if url == "" {
		return "", errm.New("http provider requires a URL")
	}

	resp, err := p.client.Get(ctx, url)
	if err != nil {
		return "", errm.Wrap(err, "failed to fetch declaration source", "url", url)
	}

	return string(resp.Body()), nil
}
