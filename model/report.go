package model

// Rule is one declarative policy rule: a conjunction of optional matchers
// over a change descriptor plus the release type to assign when all of them
// hold. Nil matcher fields are wildcards.
type Rule struct {
	Name      string        `yaml:"name" json:"name"`
	Target    *ChangeTarget `yaml:"target,omitempty" json:"target,omitempty"`
	Action    *ChangeAction `yaml:"action,omitempty" json:"action,omitempty"`
	Aspect    *ChangeAspect `yaml:"aspect,omitempty" json:"aspect,omitempty"`
	Impact    *ChangeImpact `yaml:"impact,omitempty" json:"impact,omitempty"`
	HasTag    *ChangeTag    `yaml:"has_tag,omitempty" json:"hasTag,omitempty"`
	NotTag    *ChangeTag    `yaml:"not_tag,omitempty" json:"notTag,omitempty"`
	NodeKind  *NodeKind     `yaml:"node_kind,omitempty" json:"nodeKind,omitempty"`
	Nested    *bool         `yaml:"nested,omitempty" json:"nested,omitempty"`
	Release   ReleaseType   `yaml:"release" json:"release"`
	Rationale string        `yaml:"rationale,omitempty" json:"rationale,omitempty"`
}

// PolicySpec is a policy as data: an ordered rule list plus the default
// release type applied when no rule matches.
type PolicySpec struct {
	Name    string      `yaml:"name" json:"name"`
	Rules   []Rule      `yaml:"rules" json:"rules"`
	Default ReleaseType `yaml:"default" json:"default"`
}

// Classification pairs a change with the release type a policy assigned and
// the rule that matched, if any.
type Classification struct {
	Change      *APIChange
	ReleaseType ReleaseType
	MatchedRule *Rule
}

// Stats counts classified changes per release type.
type Stats struct {
	Total     int `json:"total"`
	Forbidden int `json:"forbidden"`
	Major     int `json:"major"`
	Minor     int `json:"minor"`
	Patch     int `json:"patch"`
	None      int `json:"none"`
}

// Report is the assembled verdict: changes bucketed by release type, in
// the serialization-ready form renderers consume. A top-level change is
// bucketed by the strongest release type in its subtree.
type Report struct {
	ReleaseType    ReleaseType `json:"releaseType"`
	Stats          Stats       `json:"stats"`
	Changes        BucketsJSON `json:"changes"`
	Warnings       []string    `json:"-"`
	AnalysisErrors []string    `json:"-"`
}

// Result is what Analyze returns to library callers.
type Result struct {
	Changes         []*APIChange
	Classifications []Classification
	ReleaseType     ReleaseType
	Report          *Report
}

// RangeJSON is the serialized form of a source range: positions without
// byte offsets.
type RangeJSON struct {
	Start PositionJSON `json:"start"`
	End   PositionJSON `json:"end"`
}

type PositionJSON struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ChangeJSON is the stable serialization of one change; this schema is the
// contract consumed by downstream tools.
type ChangeJSON struct {
	Path         string       `json:"path"`
	ChangeKind   string       `json:"changeKind"`
	Target       ChangeTarget `json:"target"`
	Action       ChangeAction `json:"action"`
	Aspect       ChangeAspect `json:"aspect,omitempty"`
	Impact       ChangeImpact `json:"impact,omitempty"`
	NodeKind     NodeKind     `json:"nodeKind"`
	ReleaseType  ReleaseType  `json:"releaseType"`
	Explanation  string       `json:"explanation"`
	OldLocation  *RangeJSON   `json:"oldLocation,omitempty"`
	NewLocation  *RangeJSON   `json:"newLocation,omitempty"`
	OldSignature string       `json:"oldSignature,omitempty"`
	NewSignature string       `json:"newSignature,omitempty"`
	Nested       []ChangeJSON `json:"nestedChanges,omitempty"`
}

// BucketsJSON groups serialized changes by release type. All five buckets
// are always present in the output, empty or not; downstream tools rely on
// the shape.
type BucketsJSON struct {
	Forbidden []ChangeJSON `json:"forbidden"`
	Major     []ChangeJSON `json:"major"`
	Minor     []ChangeJSON `json:"minor"`
	Patch     []ChangeJSON `json:"patch"`
	None      []ChangeJSON `json:"none"`
}
