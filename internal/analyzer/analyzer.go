// Package analyzer builds the normalized module analysis from declaration
// source text. It never fails hard: malformed declarations become error
// strings on the analysis and the rest of the module is still analyzed.
package analyzer

import (
	"context"

	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet/internal/frontend"
	"github.com/apivet/apivet/model"
)

// Options control how a module is analyzed.
type Options struct {
	// Filename selects the grammar and labels parse errors.
	Filename string
	// ExtractDocMetadata enables doc-comment tag scanning.
	ExtractDocMetadata bool
}

// Analyzer turns declaration sources into ModuleAnalysis values.
type Analyzer struct {
	parser *frontend.Parser
	log    logze.Logger
}

func New() *Analyzer {
	return &Analyzer{
		parser: frontend.NewParser(),
		log:    logze.With("module", "analyzer"),
	}
}

// Analyze builds the normalized analysis of one module version.
func (a *Analyzer) Analyze(ctx context.Context, source string, opts Options) *model.ModuleAnalysis {
	filename := lang.Check(opts.Filename, "module.d.ts")

	checker := frontend.NewChecker()
	analysis := &model.ModuleAnalysis{
		Exports: model.NewNodeMap(),
		Symbols: make(map[string]model.Symbol),
		Checker: checker,
	}

	root, err := a.parser.Parse(ctx, filename, source)
	if err != nil {
		analysis.Errors = append(analysis.Errors, err.Error())
		return analysis
	}

	b := newBuilder(source, checker, opts.ExtractDocMetadata)
	b.buildModule(root, analysis)

	a.log.Debug("module analyzed",
		"file", filename,
		"exports", analysis.Exports.Len(),
		"errors", len(analysis.Errors),
	)
	return analysis
}
