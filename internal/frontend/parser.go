package frontend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	sitter "github.com/smacker/go-tree-sitter"
)

// Parser parses declaration sources into tree-sitter syntax trees. Parsed
// trees are cached by content hash because CI drivers tend to analyze the
// same "old" surface against many candidates.
type Parser struct {
	cache *abstract.SafeMap[string, *sitter.Node]
}

func NewParser() *Parser {
	return &Parser{
		cache: abstract.NewSafeMap[string, *sitter.Node](),
	}
}

// Parse returns the root node of the syntax tree for the given source.
func (p *Parser) Parse(ctx context.Context, filename, content string) (*sitter.Node, error) {
	key := cacheKey(filename, content)
	if root := p.cache.Get(key); root != nil {
		return root, nil
	}

	language, ok := languageParsers[DetectLanguage(filename)]
	if !ok {
		return nil, errm.Errorf("unsupported declaration language for %s", filename)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		return nil, errm.Wrap(err, "failed to parse declaration source", "file", filename)
	}

	root := tree.RootNode()
	p.cache.Set(key, root)
	return root, nil
}

func cacheKey(filename, content string) string {
	sum := sha256.Sum256([]byte(filename + "\x00" + content))
	return hex.EncodeToString(sum[:])
}
