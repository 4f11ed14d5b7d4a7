// Package local reads declaration sources from the filesystem. It is the
// default provider the CLI uses for file-pair invocations.
package local

import (
	"context"
	"os"

	"github.com/maxbolgarin/errm"

	"github.com/apivet/apivet/model"
)

type Provider struct{}

var _ model.SourceProvider = Provider{}

func New() Provider { return Provider{} }

func (Provider) Name() string { return "local" }

func (Provider) Fetch(_ context.Context, ref model.SourceRef) (string, error) {
	if ref.Path == "" {
		return "", errm.New("local provider requires a file path")
	}
	content, err := os.ReadFile(ref.Path)
	if err != nil {
		return "", errm.Wrap(err, "failed to read declaration file", "path", ref.Path)
	}
	return string(content), nil
}
