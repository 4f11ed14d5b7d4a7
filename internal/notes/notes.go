// Package notes turns a finished compatibility report into a short
// human-readable migration summary using Gemini. It is strictly optional
// and out of band: the deterministic diff result never depends on it.
package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"google.golang.org/genai"

	"github.com/apivet/apivet/model"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 2000
)

// Config represents release-notes generator configuration.
type Config struct {
	APIKey    string `yaml:"api_key" env:"NOTES_API_KEY"`
	Model     string `yaml:"model" env:"NOTES_MODEL"`
	MaxTokens int    `yaml:"max_tokens" env:"NOTES_MAX_TOKENS"`
}

// Enabled reports whether the generator is configured at all.
func (c Config) Enabled() bool { return c.APIKey != "" }

// Generator produces migration summaries from reports.
type Generator struct {
	client *genai.Client
	config Config
}

func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errm.New("notes API key is required")
	}
	cfg.Model = lang.Check(cfg.Model, defaultModel)
	cfg.MaxTokens = lang.Check(cfg.MaxTokens, defaultMaxTokens)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to create Gemini client")
	}

	return &Generator{client: client, config: cfg}, nil
}

const systemPrompt = `You are a release engineer. Given an API
compatibility report, write a short migration note for library consumers:
what broke, what is new, what to change. Be concrete and terse. Use
markdown bullet points.`

// Generate writes a migration summary for the report.
func (g *Generator) Generate(ctx context.Context, report *model.Report) (string, error) {
	prompt := buildPrompt(report)

	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "text/plain",
		Temperature:       &temperature,
		MaxOutputTokens:   int32(g.config.MaxTokens),
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	}

	result, err := g.client.Models.GenerateContent(ctx,
		g.config.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", errm.Wrap(err, "failed to generate release notes")
	}
	if len(result.Candidates) == 0 {
		return "", errm.New("no candidates returned from Gemini API")
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errm.New("invalid response structure from Gemini API")
	}

	return strings.TrimSpace(candidate.Content.Parts[0].Text), nil
}

func buildPrompt(report *model.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Release type: %s\n\nChanges:\n", report.ReleaseType)

	buckets := []struct {
		name    string
		changes []model.ChangeJSON
	}{
		{"forbidden", report.Changes.Forbidden},
		{"major", report.Changes.Major},
		{"minor", report.Changes.Minor},
		{"patch", report.Changes.Patch},
	}
	for _, bucket := range buckets {
		for _, change := range bucket.changes {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", bucket.name, change.Path, change.Explanation)
		}
	}
	return sb.String()
}
