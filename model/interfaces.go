package model

import "context"

// TypeHandle is an opaque resolved type owned by the front end.
type TypeHandle interface {
	// String returns the canonical rendering of the type.
	String() string
}

// TypeChecker is the minimal capability set the classifier needs from a
// host front end. Keeping it this small is what makes the core portable
// across declaration languages.
type TypeChecker interface {
	// ResolveType resolves the type attached to a node path.
	ResolveType(path string) (TypeHandle, bool)

	// Stringify renders a handle as the canonical signature string.
	Stringify(handle TypeHandle) string

	// DecomposeUnion splits a union type into its members. The second
	// result is false when the handle is not a union.
	DecomposeUnion(handle TypeHandle) ([]TypeHandle, bool)
}

// Symbol is an opaque front-end symbol attached to a node path. It is not
// part of the persisted model.
type Symbol interface{}

// ModuleAnalysis is the normalized analysis of one module version.
// Exports own the node trees; Symbols and Checker are opaque handles used
// for assignability probes.
type ModuleAnalysis struct {
	Exports *NodeMap
	Symbols map[string]Symbol
	Checker TypeChecker
	Errors  []string
}

// Policy classifies a change descriptor into a release type. Nil rule means
// the policy default applied.
type Policy interface {
	Name() string
	Classify(change *APIChange) (ReleaseType, *Rule)
	Default() ReleaseType
}

// ValidationResult is the outcome of a validator run.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// Validator checks an analysis for health problems and feeds the warning
// channel.
type Validator interface {
	Name() string
	Validate(analysis *ModuleAnalysis) ValidationResult
}

// Renderer serializes a finished report.
type Renderer interface {
	Name() string
	Render(report *Report) ([]byte, error)
}

// SourceRef addresses one version of a declaration source.
type SourceRef struct {
	// Path is a filesystem path or an in-repository file path.
	Path string
	// Ref is a VCS ref (tag, branch, SHA) for repository providers.
	Ref string
	// Project is the repository identifier ("owner/repo") for VCS providers.
	Project string
	// URL is used by the raw HTTP provider.
	URL string
}

// SourceProvider fetches declaration text for a source reference.
type SourceProvider interface {
	Name() string
	Fetch(ctx context.Context, ref SourceRef) (string, error)
}
