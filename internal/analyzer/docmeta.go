package analyzer

import (
	"strings"

	"github.com/apivet/apivet/model"
)

var releaseTags = []string{"public", "beta", "alpha", "internal"}

// applyDoc scans a leading doc comment for the modifier tags the model
// cares about and attaches them as metadata. A @packageDocumentation
// comment documents the module, not the following declaration, and is
// ignored here.
func (b *builder) applyDoc(node *model.AnalyzableNode, comment string) {
	if !b.docs || comment == "" {
		return
	}
	text := cleanComment(comment)
	if text == "" || strings.Contains(text, "@packageDocumentation") {
		return
	}

	meta := node.Metadata
	if meta == nil {
		meta = &model.NodeMetadata{}
	}
	found := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "@deprecated"):
			meta.Deprecated = true
			meta.DeprecationMessage = strings.TrimSpace(strings.TrimPrefix(line, "@deprecated"))
			found = true
		case strings.HasPrefix(line, "@defaultValue"):
			meta.DefaultValue = strings.TrimSpace(strings.TrimPrefix(line, "@defaultValue"))
			found = true
		case strings.HasPrefix(line, "@default"):
			meta.DefaultValue = strings.TrimSpace(strings.TrimPrefix(line, "@default"))
			found = true
		default:
			for _, tag := range releaseTags {
				if line == "@"+tag || strings.HasPrefix(line, "@"+tag+" ") {
					meta.ReleaseTag = tag
					found = true
					break
				}
			}
		}
	}

	if found || node.Metadata != nil {
		node.Metadata = meta
	}
}

// cleanComment strips comment delimiters and the leading asterisk gutter
// of a JSDoc block.
func cleanComment(comment string) string {
	comment = strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(comment, "/**"):
		comment = strings.TrimPrefix(comment, "/**")
		comment = strings.TrimSuffix(comment, "*/")
	case strings.HasPrefix(comment, "/*"):
		comment = strings.TrimPrefix(comment, "/*")
		comment = strings.TrimSuffix(comment, "*/")
	case strings.HasPrefix(comment, "//"):
		comment = strings.TrimPrefix(comment, "//")
	}

	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
