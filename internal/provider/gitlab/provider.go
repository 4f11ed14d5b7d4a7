// Package gitlab fetches declaration files from a GitLab repository at a
// specific ref.
package gitlab

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/apivet/apivet/model"
)

var _ model.SourceProvider = (*Provider)(nil)

// Provider fetches file contents through the GitLab API.
type Provider struct {
	client *gitlab.Client
	log    logze.Logger
}

func New(baseURL, token string) (*Provider, error) {
	if token == "" {
		return nil, errm.New("GitLab token is required")
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		log:    logze.With("provider", "gitlab"),
	}, nil
}

func (p *Provider) Name() string { return "gitlab" }

// Fetch retrieves ref.Path from project ref.Project at ref.Ref.
func (p *Provider) Fetch(ctx context.Context, ref model.SourceRef) (string, error) {
	if ref.Project == "" {
		return "", errm.New("GitLab project is required")
	}

	fileOpts := &gitlab.GetFileOptions{}
	if ref.Ref != "" {
		fileOpts.Ref = gitlab.Ptr(ref.Ref)
	}

	file, resp, err := p.client.RepositoryFiles.GetFile(ref.Project, ref.Path, fileOpts, gitlab.WithContext(ctx))
	if err != nil {
		return "", errm.Wrap(err, "failed to get file content from GitLab")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errm.New("GitLab API returned status %d", resp.StatusCode)
	}
	if file == nil {
		return "", errm.New("file content is nil")
	}

	content := file.Content
	if file.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", errm.Wrap(err, "failed to decode file content")
		}
		content = string(decoded)
	}

	p.log.Debug("fetched declaration source",
		"project", ref.Project,
		"path", ref.Path,
		"ref", ref.Ref,
		"bytes", len(content),
	)
	return content, nil
}
