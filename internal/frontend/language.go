// Package frontend wraps the tree-sitter TypeScript grammar behind the
// minimal surface the analyzer and classifier need: concrete syntax trees,
// normalized type expression strings and the TypeChecker capability.
package frontend

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DeclarationLanguage selects the grammar used for a declaration source.
type DeclarationLanguage string

const (
	LanguageTypeScript DeclarationLanguage = "typescript"
	LanguageTSX        DeclarationLanguage = "tsx"
)

var languageParsers = map[DeclarationLanguage]*sitter.Language{
	LanguageTypeScript: typescript.GetLanguage(),
	LanguageTSX:        tsx.GetLanguage(),
}

// DetectLanguage picks the grammar for a file name. Anything that is not
// explicitly TSX is treated as TypeScript declaration text.
func DetectLanguage(filename string) DeclarationLanguage {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".tsx" {
		return LanguageTSX
	}
	return LanguageTypeScript
}
