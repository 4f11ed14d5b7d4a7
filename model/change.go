package model

import "strings"

// ChangeTarget names the category of API surface a change applies to.
type ChangeTarget string

const (
	TargetExport         ChangeTarget = "export"
	TargetProperty       ChangeTarget = "property"
	TargetMethod         ChangeTarget = "method"
	TargetParameter      ChangeTarget = "parameter"
	TargetTypeParameter  ChangeTarget = "type-parameter"
	TargetEnumMember     ChangeTarget = "enum-member"
	TargetIndexSignature ChangeTarget = "index-signature"
	TargetAccessor       ChangeTarget = "accessor"
	TargetConstructor    ChangeTarget = "constructor"
)

// TargetForKind maps a node kind to the change target reported for it.
func TargetForKind(kind NodeKind) ChangeTarget {
	switch kind {
	case KindProperty, KindVariable:
		return TargetProperty
	case KindMethod, KindCallSignature:
		return TargetMethod
	case KindParameter:
		return TargetParameter
	case KindTypeParameter:
		return TargetTypeParameter
	case KindEnumMember:
		return TargetEnumMember
	case KindIndexSignature:
		return TargetIndexSignature
	case KindGetter, KindSetter:
		return TargetAccessor
	case KindConstructSignature:
		return TargetConstructor
	}
	return TargetExport
}

// ChangeAction is what happened to the target.
type ChangeAction string

const (
	ActionAdded     ChangeAction = "added"
	ActionRemoved   ChangeAction = "removed"
	ActionModified  ChangeAction = "modified"
	ActionRenamed   ChangeAction = "renamed"
	ActionReordered ChangeAction = "reordered"
)

// ChangeAspect is the dimension of a modification. It is meaningful only
// when the action is ActionModified.
type ChangeAspect string

const (
	AspectType             ChangeAspect = "type"
	AspectOptionality      ChangeAspect = "optionality"
	AspectReadonly         ChangeAspect = "readonly"
	AspectVisibility       ChangeAspect = "visibility"
	AspectStaticness       ChangeAspect = "staticness"
	AspectAbstractness     ChangeAspect = "abstractness"
	AspectDeprecation      ChangeAspect = "deprecation"
	AspectDefaultValue     ChangeAspect = "default-value"
	AspectDefaultType      ChangeAspect = "default-type"
	AspectConstraint       ChangeAspect = "constraint"
	AspectExtendsClause    ChangeAspect = "extends-clause"
	AspectImplementsClause ChangeAspect = "implements-clause"
	AspectEnumValue        ChangeAspect = "enum-value"
)

// ChangeImpact is the semantic direction of a modification.
type ChangeImpact string

const (
	ImpactWidening     ChangeImpact = "widening"
	ImpactNarrowing    ChangeImpact = "narrowing"
	ImpactEquivalent   ChangeImpact = "equivalent"
	ImpactUnrelated    ChangeImpact = "unrelated"
	ImpactUndetermined ChangeImpact = "undetermined"
)

// ChangeTag is an auxiliary marker attached to a descriptor.
type ChangeTag string

const (
	TagWasRequired          ChangeTag = "was-required"
	TagNowOptional          ChangeTag = "now-optional"
	TagWasOptional          ChangeTag = "was-optional"
	TagNowRequired          ChangeTag = "now-required"
	TagHadDefault           ChangeTag = "had-default"
	TagHasDefault           ChangeTag = "has-default"
	TagAffectsTypeParameter ChangeTag = "affects-type-parameter"
	TagHasNestedChanges     ChangeTag = "has-nested-changes"
	TagIsNestedChange       ChangeTag = "is-nested-change"
)

// TagSet is a set of change tags.
type TagSet map[ChangeTag]bool

func NewTagSet(tags ...ChangeTag) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = true
	}
	return s
}

func (s TagSet) Has(t ChangeTag) bool { return s[t] }

func (s TagSet) Clone() TagSet {
	out := make(TagSet, len(s))
	for t := range s {
		out[t] = true
	}
	return out
}

// Sorted returns the tags in lexicographic order for deterministic output.
func (s TagSet) Sorted() []ChangeTag {
	out := make([]ChangeTag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ChangeDescriptor is the dimensional description of one change. Aspect and
// Impact are set iff Action is ActionModified; the constructors below are
// the only intended way to build one.
type ChangeDescriptor struct {
	Target ChangeTarget
	Action ChangeAction
	Aspect ChangeAspect
	Impact ChangeImpact
	Tags   TagSet
}

func NewAddition(target ChangeTarget, tags ...ChangeTag) ChangeDescriptor {
	return ChangeDescriptor{Target: target, Action: ActionAdded, Tags: NewTagSet(tags...)}
}

func NewRemoval(target ChangeTarget, tags ...ChangeTag) ChangeDescriptor {
	return ChangeDescriptor{Target: target, Action: ActionRemoved, Tags: NewTagSet(tags...)}
}

func NewRename(target ChangeTarget, tags ...ChangeTag) ChangeDescriptor {
	return ChangeDescriptor{Target: target, Action: ActionRenamed, Tags: NewTagSet(tags...)}
}

func NewReorder(target ChangeTarget, tags ...ChangeTag) ChangeDescriptor {
	return ChangeDescriptor{Target: target, Action: ActionReordered, Tags: NewTagSet(tags...)}
}

func NewModification(target ChangeTarget, aspect ChangeAspect, impact ChangeImpact, tags ...ChangeTag) ChangeDescriptor {
	return ChangeDescriptor{
		Target: target,
		Action: ActionModified,
		Aspect: aspect,
		Impact: impact,
		Tags:   NewTagSet(tags...),
	}
}

// WithTags returns a copy of the descriptor with the tags added. The
// receiver is left untouched.
func (d ChangeDescriptor) WithTags(tags ...ChangeTag) ChangeDescriptor {
	out := d
	out.Tags = d.Tags.Clone()
	for _, t := range tags {
		out.Tags[t] = true
	}
	return out
}

// Key renders the descriptor category as "target:action" or
// "target:action:aspect" for modifications.
func (d ChangeDescriptor) Key() string {
	if d.Action == ActionModified && d.Aspect != "" {
		return string(d.Target) + ":" + string(d.Action) + ":" + string(d.Aspect)
	}
	return string(d.Target) + ":" + string(d.Action)
}

// ParseChangeKey reconstructs a descriptor category from its Key form.
func ParseChangeKey(key string) (target ChangeTarget, action ChangeAction, aspect ChangeAspect, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", false
	}
	target, action = ChangeTarget(parts[0]), ChangeAction(parts[1])
	if len(parts) == 3 {
		aspect = ChangeAspect(parts[2])
	}
	return target, action, aspect, true
}

// ChangeContext carries positional context about where a change sits in the
// node tree.
type ChangeContext struct {
	IsNested         bool
	Depth            int
	Ancestors        []string
	RenameConfidence float64
	OldType          string
	NewType          string
}

// APIChange is one fully classified change between two API versions.
type APIChange struct {
	Descriptor  ChangeDescriptor
	Path        string
	NodeKind    NodeKind
	OldLocation *SourceRange
	NewLocation *SourceRange
	OldNode     *AnalyzableNode
	NewNode     *AnalyzableNode

	NestedChanges []*APIChange
	Context       ChangeContext
	Explanation   string
}

// Flatten returns the change followed by all nested changes, depth first.
func (c *APIChange) Flatten() []*APIChange {
	out := []*APIChange{c}
	for _, nested := range c.NestedChanges {
		out = append(out, nested.Flatten()...)
	}
	return out
}
