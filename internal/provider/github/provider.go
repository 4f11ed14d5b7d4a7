// Package github fetches declaration files from a GitHub repository at a
// specific ref, which is how CI compares a candidate surface against the
// last released tag.
package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"

	"github.com/apivet/apivet/model"
)

var _ model.SourceProvider = (*Provider)(nil)

const defaultBaseURL = "https://github.com"

// Provider fetches file contents through the GitHub API.
type Provider struct {
	client *github.Client
	log    logze.Logger
}

func New(baseURL, token string) (*Provider, error) {
	if token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github")

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	// GitHub Enterprise needs explicit API URLs.
	if baseURL != "" && baseURL != defaultBaseURL {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{client: client, log: log}, nil
}

func (p *Provider) Name() string { return "github" }

// Fetch retrieves ref.Path from ref.Project ("owner/repo") at ref.Ref.
func (p *Provider) Fetch(ctx context.Context, ref model.SourceRef) (string, error) {
	parts := strings.Split(ref.Project, "/")
	if len(parts) != 2 {
		return "", errm.New("invalid GitHub project format, expected 'owner/repo'")
	}
	owner, repo := parts[0], parts[1]

	fileContent, _, resp, err := p.client.Repositories.GetContents(ctx, owner, repo, ref.Path, &github.RepositoryContentGetOptions{
		Ref: ref.Ref,
	})
	if err != nil {
		return "", errm.Wrap(err, "failed to get file content from GitHub")
	}
	if resp.StatusCode != 200 {
		return "", errm.New("GitHub API returned status %d", resp.StatusCode)
	}
	if fileContent == nil {
		return "", errm.New("file content is nil")
	}

	// GitHub returns base64 encoded content.
	content, err := fileContent.GetContent()
	if err != nil {
		return "", errm.Wrap(err, "failed to decode file content")
	}

	p.log.Debug("fetched declaration source",
		"project", ref.Project,
		"path", ref.Path,
		"ref", ref.Ref,
		"bytes", len(content),
	)
	return content, nil
}
