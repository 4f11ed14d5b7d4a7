package model

import (
	"strings"
)

// NodeKind identifies the structural kind of an analyzable node.
type NodeKind string

const (
	KindFunction           NodeKind = "function"
	KindClass              NodeKind = "class"
	KindInterface          NodeKind = "interface"
	KindTypeAlias          NodeKind = "type-alias"
	KindVariable           NodeKind = "variable"
	KindEnum               NodeKind = "enum"
	KindNamespace          NodeKind = "namespace"
	KindProperty           NodeKind = "property"
	KindMethod             NodeKind = "method"
	KindParameter          NodeKind = "parameter"
	KindTypeParameter      NodeKind = "type-parameter"
	KindEnumMember         NodeKind = "enum-member"
	KindIndexSignature     NodeKind = "index-signature"
	KindGetter             NodeKind = "getter"
	KindSetter             NodeKind = "setter"
	KindCallSignature      NodeKind = "call-signature"
	KindConstructSignature NodeKind = "construct-signature"
)

// IsPositional reports whether children of this kind are ordered by
// declaration position rather than by name.
func (k NodeKind) IsPositional() bool {
	switch k {
	case KindParameter, KindTypeParameter, KindEnumMember:
		return true
	}
	return false
}

// IsCallable reports whether the node carries a parameter list worth
// analyzing for reordering.
func (k NodeKind) IsCallable() bool {
	switch k {
	case KindFunction, KindMethod, KindCallSignature, KindConstructSignature, KindGetter, KindSetter:
		return true
	}
	return false
}

// Modifier is a declaration modifier attached to a node.
type Modifier string

const (
	ModifierReadonly  Modifier = "readonly"
	ModifierOptional  Modifier = "optional"
	ModifierStatic    Modifier = "static"
	ModifierAbstract  Modifier = "abstract"
	ModifierPublic    Modifier = "public"
	ModifierProtected Modifier = "protected"
	ModifierPrivate   Modifier = "private"
	ModifierAsync     Modifier = "async"
	ModifierGenerator Modifier = "generator"
	ModifierRest      Modifier = "rest"
	ModifierOverride  Modifier = "override"
	ModifierDeclare   Modifier = "declare"
	ModifierExport    Modifier = "export"
	ModifierDefault   Modifier = "default"
)

// ModifierSet is a set of declaration modifiers.
type ModifierSet map[Modifier]bool

func NewModifierSet(mods ...Modifier) ModifierSet {
	s := make(ModifierSet, len(mods))
	for _, m := range mods {
		s[m] = true
	}
	return s
}

func (s ModifierSet) Has(m Modifier) bool { return s[m] }

func (s ModifierSet) Add(m Modifier) { s[m] = true }

func (s ModifierSet) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s ModifierSet) Clone() ModifierSet {
	out := make(ModifierSet, len(s))
	for m := range s {
		out[m] = true
	}
	return out
}

// Jaccard returns the Jaccard similarity between two modifier sets.
// Two empty sets are considered identical.
func (s ModifierSet) Jaccard(other ModifierSet) float64 {
	if len(s) == 0 && len(other) == 0 {
		return 1
	}
	intersection := 0
	for m := range s {
		if other[m] {
			intersection++
		}
	}
	union := len(s) + len(other) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}

// Sorted returns the modifiers in deterministic order.
func (s ModifierSet) Sorted() []Modifier {
	out := make([]Modifier, 0, len(s))
	for _, m := range modifierOrder {
		if s[m] {
			out = append(out, m)
		}
	}
	return out
}

var modifierOrder = []Modifier{
	ModifierExport, ModifierDefault, ModifierDeclare,
	ModifierPublic, ModifierProtected, ModifierPrivate,
	ModifierStatic, ModifierAbstract, ModifierOverride,
	ModifierReadonly, ModifierOptional, ModifierAsync,
	ModifierGenerator, ModifierRest,
}

// SourcePosition is a position in the analyzed source text.
// Line and Column are 1-based; Column counts code points within the line.
type SourcePosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset,omitempty"`
}

// SourceRange is a half-open span of source text. Start never exceeds End.
type SourceRange struct {
	Start SourcePosition `json:"start"`
	End   SourcePosition `json:"end"`
}

// TypeParameterInfo describes a single generic type parameter.
type TypeParameterInfo struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
	Default    string `json:"default,omitempty"`
	Position   int    `json:"position"`
}

// ParameterInfo describes a single value parameter.
type ParameterInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Position int    `json:"position"`
	Optional bool   `json:"optional"`
	Rest     bool   `json:"rest"`
}

// SignatureInfo describes one call or construct signature of a type.
type SignatureInfo struct {
	Parameters []ParameterInfo     `json:"parameters,omitempty"`
	TypeParams []TypeParameterInfo `json:"typeParameters,omitempty"`
	ReturnType string              `json:"returnType,omitempty"`
}

// PropertyInfo describes a named member of a structural type.
type PropertyInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
	Readonly bool   `json:"readonly"`
}

// IndexSignatureInfo describes an index signature of a structural type.
type IndexSignatureInfo struct {
	KeyType   string `json:"keyType"`
	ValueType string `json:"valueType"`
	Readonly  bool   `json:"readonly"`
}

// TypeInfo is the normalized type description of a node. Signature is the
// canonical string the front end emits, whitespace-collapsed, and is the
// value used for equality checks.
type TypeInfo struct {
	Signature           string               `json:"signature"`
	TypeParameters      []TypeParameterInfo  `json:"typeParameters,omitempty"`
	CallSignatures      []SignatureInfo      `json:"callSignatures,omitempty"`
	ConstructSignatures []SignatureInfo      `json:"constructSignatures,omitempty"`
	Properties          []PropertyInfo       `json:"properties,omitempty"`
	IndexSignatures     []IndexSignatureInfo `json:"indexSignatures,omitempty"`
}

// NodeMetadata carries doc-comment metadata extracted by the analyzer.
type NodeMetadata struct {
	Deprecated         bool   `json:"deprecated"`
	DeprecationMessage string `json:"deprecationMessage,omitempty"`
	DefaultValue       string `json:"defaultValue,omitempty"`
	ReleaseTag         string `json:"releaseTag,omitempty"`
}

// AnalyzableNode is one node of the normalized API model. A node owns its
// children exclusively; the differ borrows trees by reference and never
// mutates them.
type AnalyzableNode struct {
	Path       string
	Name       string
	Kind       NodeKind
	Modifiers  ModifierSet
	TypeInfo   TypeInfo
	Extends    []string
	Implements []string
	Metadata   *NodeMetadata
	Location   *SourceRange

	children *NodeMap
}

// NewNode creates a node with an empty child map.
func NewNode(path, name string, kind NodeKind) *AnalyzableNode {
	return &AnalyzableNode{
		Path:      path,
		Name:      name,
		Kind:      kind,
		Modifiers: NewModifierSet(),
		children:  NewNodeMap(),
	}
}

// AddChild appends a child, preserving insertion order.
func (n *AnalyzableNode) AddChild(child *AnalyzableNode) {
	n.children.Set(child.Name, child)
}

// Child returns the named child, if any.
func (n *AnalyzableNode) Child(name string) (*AnalyzableNode, bool) {
	return n.children.Get(name)
}

// Children returns the child map. Callers must treat it as read-only.
func (n *AnalyzableNode) Children() *NodeMap { return n.children }

func (n *AnalyzableNode) ChildCount() int { return n.children.Len() }

// ChildrenOfKind returns children of the given kind in insertion order.
func (n *AnalyzableNode) ChildrenOfKind(kind NodeKind) []*AnalyzableNode {
	var out []*AnalyzableNode
	n.children.Range(func(_ string, c *AnalyzableNode) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Parameters returns the node's value parameters in declaration order.
func (n *AnalyzableNode) Parameters() []ParameterInfo {
	params := make([]ParameterInfo, 0, len(n.TypeInfo.CallSignatures))
	kids := n.ChildrenOfKind(KindParameter)
	for i, c := range kids {
		params = append(params, ParameterInfo{
			Name:     c.Name,
			Type:     c.TypeInfo.Signature,
			Position: i,
			Optional: c.Modifiers.Has(ModifierOptional),
			Rest:     c.Modifiers.Has(ModifierRest),
		})
	}
	return params
}

// IsDeprecated reports whether the node carries a deprecation mark.
func (n *AnalyzableNode) IsDeprecated() bool {
	return n.Metadata != nil && n.Metadata.Deprecated
}

// NodeMap is an insertion-ordered collection of nodes keyed by name.
type NodeMap struct {
	names []string
	index map[string]*AnalyzableNode
}

func NewNodeMap() *NodeMap {
	return &NodeMap{index: make(map[string]*AnalyzableNode)}
}

// Set inserts or replaces a node. Insertion order is kept for new names.
func (m *NodeMap) Set(name string, node *AnalyzableNode) {
	if _, ok := m.index[name]; !ok {
		m.names = append(m.names, name)
	}
	m.index[name] = node
}

func (m *NodeMap) Get(name string) (*AnalyzableNode, bool) {
	n, ok := m.index[name]
	return n, ok
}

func (m *NodeMap) Len() int { return len(m.names) }

// Names returns the keys in insertion order.
func (m *NodeMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Range iterates in insertion order until fn returns false.
func (m *NodeMap) Range(fn func(name string, node *AnalyzableNode) bool) {
	for _, name := range m.names {
		if !fn(name, m.index[name]) {
			return
		}
	}
}

// JoinPath builds a child path from a parent path and a member name.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// NormalizeSignature collapses all whitespace runs in a signature string to
// single spaces and trims the ends, so formatting differences never count
// as changes.
func NormalizeSignature(sig string) string {
	return strings.Join(strings.Fields(sig), " ")
}
