package policy

import (
	"github.com/apivet/apivet/model"
)

// Built-in policy names.
const (
	SemverDefault = "semver-default"
	ReadOnly      = "read-only"
	WriteOnly     = "write-only"
)

func target(t model.ChangeTarget) *model.ChangeTarget { return &t }
func action(a model.ChangeAction) *model.ChangeAction { return &a }
func aspect(a model.ChangeAspect) *model.ChangeAspect { return &a }
func impact(i model.ChangeImpact) *model.ChangeImpact { return &i }
func tag(t model.ChangeTag) *model.ChangeTag          { return &t }
func kind(k model.NodeKind) *model.NodeKind           { return &k }

// semverDefaultSpec is the conservative default policy. Union widening of a
// published alias is treated as major: exhaustive switches in consumer code
// break when a new member appears.
var semverDefaultSpec = model.PolicySpec{
	Name:    SemverDefault,
	Default: model.ReleaseNone,
	Rules: []model.Rule{
		{Name: "removal", Action: action(model.ActionRemoved), Release: model.ReleaseMajor,
			Rationale: "removing API surface breaks existing consumers"},
		{Name: "rename", Action: action(model.ActionRenamed), Release: model.ReleaseMajor,
			Rationale: "renames break references to the old name"},
		{Name: "optional-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), HasTag: tag(model.TagNowOptional), Release: model.ReleaseMinor,
			Rationale: "existing call sites keep compiling"},
		{Name: "required-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), Release: model.ReleaseMajor,
			Rationale: "every existing call site must change"},
		{Name: "parameter-reordered", Target: target(model.TargetParameter), Action: action(model.ActionReordered), Release: model.ReleaseMajor,
			Rationale: "positional call sites silently change meaning"},
		{Name: "type-parameter-added", Target: target(model.TargetTypeParameter), Action: action(model.ActionAdded), Release: model.ReleaseMajor,
			Rationale: "explicit type argument lists must change"},
		{Name: "constraint-relaxed", Aspect: aspect(model.AspectConstraint), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "more type arguments are accepted than before"},
		{Name: "constraint-changed", Aspect: aspect(model.AspectConstraint), Release: model.ReleaseMajor,
			Rationale: "previously valid type arguments may be rejected"},
		{Name: "type-parameter-default-added", Aspect: aspect(model.AspectDefaultType), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "callers may now omit the type argument"},
		{Name: "type-parameter-default-changed", Aspect: aspect(model.AspectDefaultType), Release: model.ReleaseMajor,
			Rationale: "inferred types at call sites change"},
		{Name: "enum-value-changed", Aspect: aspect(model.AspectEnumValue), Release: model.ReleaseMajor,
			Rationale: "serialized enum values change meaning"},
		{Name: "type-narrowed", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "values consumers relied on are no longer produced or accepted"},
		{Name: "alias-union-widened", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactWidening), NodeKind: kind(model.KindTypeAlias), Release: model.ReleaseMajor,
			Rationale: "exhaustive handling of the published union breaks"},
		{Name: "type-widened", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "existing consumers keep working"},
		{Name: "type-equivalent", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactEquivalent), Release: model.ReleaseNone,
			Rationale: "mutually assignable spellings"},
		{Name: "type-changed", Aspect: aspect(model.AspectType), Release: model.ReleaseMajor,
			Rationale: "unrelated or undecidable type changes are assumed breaking"},
		{Name: "parameter-became-optional", Target: target(model.TargetParameter), Aspect: aspect(model.AspectOptionality), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "call sites may now omit the argument"},
		{Name: "optionality-changed", Aspect: aspect(model.AspectOptionality), Release: model.ReleaseMajor,
			Rationale: "readers must handle absence or writers must supply a value"},
		{Name: "readonly-added", Aspect: aspect(model.AspectReadonly), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "assignments to the member stop compiling"},
		{Name: "readonly-removed", Aspect: aspect(model.AspectReadonly), Release: model.ReleaseMinor,
			Rationale: "the member becomes writable"},
		{Name: "abstract-added", Aspect: aspect(model.AspectAbstractness), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "direct instantiation stops compiling"},
		{Name: "abstract-removed", Aspect: aspect(model.AspectAbstractness), Release: model.ReleaseMinor,
			Rationale: "the type becomes instantiable"},
		{Name: "staticness-changed", Aspect: aspect(model.AspectStaticness), Release: model.ReleaseMajor,
			Rationale: "member access paths change"},
		{Name: "visibility-changed", Aspect: aspect(model.AspectVisibility), Release: model.ReleaseMajor,
			Rationale: "access from consumer code may stop compiling"},
		{Name: "extends-changed", Aspect: aspect(model.AspectExtendsClause), Release: model.ReleaseMajor,
			Rationale: "inherited surface changes shape"},
		{Name: "implements-changed", Aspect: aspect(model.AspectImplementsClause), Release: model.ReleaseMajor,
			Rationale: "structural contracts of the class change"},
		{Name: "deprecation-added", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactWidening), Release: model.ReleasePatch,
			Rationale: "a documentation-only signal"},
		{Name: "deprecation-removed", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMinor,
			Rationale: "the surface is supported again"},
		{Name: "default-value-changed", Aspect: aspect(model.AspectDefaultValue), Release: model.ReleasePatch,
			Rationale: "documented behavior detail"},
		{Name: "addition", Action: action(model.ActionAdded), Release: model.ReleaseMinor,
			Rationale: "new surface, existing consumers unaffected"},
	},
}

// readOnlySpec is the covariant policy for surfaces consumers only read:
// widening what a value can be is safe to consume, narrowing is not.
var readOnlySpec = model.PolicySpec{
	Name:    ReadOnly,
	Default: model.ReleaseNone,
	Rules: []model.Rule{
		{Name: "removal", Action: action(model.ActionRemoved), Release: model.ReleaseMajor,
			Rationale: "removing API surface breaks existing consumers"},
		{Name: "rename", Action: action(model.ActionRenamed), Release: model.ReleaseMajor,
			Rationale: "renames break references to the old name"},
		{Name: "optional-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), HasTag: tag(model.TagNowOptional), Release: model.ReleaseMinor,
			Rationale: "existing call sites keep compiling"},
		{Name: "required-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), Release: model.ReleaseMajor,
			Rationale: "every existing call site must change"},
		{Name: "parameter-reordered", Target: target(model.TargetParameter), Action: action(model.ActionReordered), Release: model.ReleaseMajor,
			Rationale: "positional call sites silently change meaning"},
		{Name: "type-narrowed", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "readers matching on the old shape break"},
		{Name: "type-widened", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "reads of the wider type remain valid"},
		{Name: "type-equivalent", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactEquivalent), Release: model.ReleaseNone,
			Rationale: "mutually assignable spellings"},
		{Name: "type-changed", Aspect: aspect(model.AspectType), Release: model.ReleaseMajor,
			Rationale: "unrelated or undecidable type changes are assumed breaking"},
		{Name: "readonly-added", Aspect: aspect(model.AspectReadonly), Impact: impact(model.ImpactNarrowing), Release: model.ReleasePatch,
			Rationale: "readers never assign"},
		{Name: "readonly-removed", Aspect: aspect(model.AspectReadonly), Release: model.ReleaseMinor,
			Rationale: "the member becomes writable"},
		{Name: "became-optional", Aspect: aspect(model.AspectOptionality), Impact: impact(model.ImpactWidening), Release: model.ReleaseMajor,
			Rationale: "readers must now handle absence"},
		{Name: "became-required", Aspect: aspect(model.AspectOptionality), Release: model.ReleaseMinor,
			Rationale: "readers always receive a value"},
		{Name: "deprecation-added", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactWidening), Release: model.ReleasePatch,
			Rationale: "a documentation-only signal"},
		{Name: "deprecation-removed", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMinor,
			Rationale: "the surface is supported again"},
		{Name: "modification", Action: action(model.ActionModified), Release: model.ReleaseMajor,
			Rationale: "remaining dimensions are assumed breaking"},
		{Name: "addition", Action: action(model.ActionAdded), Release: model.ReleaseMinor,
			Rationale: "new surface, existing consumers unaffected"},
	},
}

// writeOnlySpec is the contravariant policy for surfaces consumers only
// write into (configuration inputs): widening accepted values is safe,
// narrowing rejects previously valid writes.
var writeOnlySpec = model.PolicySpec{
	Name:    WriteOnly,
	Default: model.ReleaseNone,
	Rules: []model.Rule{
		{Name: "removal", Action: action(model.ActionRemoved), Release: model.ReleaseMajor,
			Rationale: "removing API surface breaks existing consumers"},
		{Name: "rename", Action: action(model.ActionRenamed), Release: model.ReleaseMajor,
			Rationale: "renames break references to the old name"},
		{Name: "optional-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), HasTag: tag(model.TagNowOptional), Release: model.ReleaseMinor,
			Rationale: "existing call sites keep compiling"},
		{Name: "required-parameter-added", Target: target(model.TargetParameter), Action: action(model.ActionAdded), Release: model.ReleaseMajor,
			Rationale: "every existing call site must change"},
		{Name: "parameter-reordered", Target: target(model.TargetParameter), Action: action(model.ActionReordered), Release: model.ReleaseMajor,
			Rationale: "positional call sites silently change meaning"},
		{Name: "type-widened", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "every previously valid write remains valid"},
		{Name: "type-narrowed", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "previously valid writes are rejected"},
		{Name: "type-equivalent", Aspect: aspect(model.AspectType), Impact: impact(model.ImpactEquivalent), Release: model.ReleaseNone,
			Rationale: "mutually assignable spellings"},
		{Name: "type-changed", Aspect: aspect(model.AspectType), Release: model.ReleaseMajor,
			Rationale: "unrelated or undecidable type changes are assumed breaking"},
		{Name: "became-optional", Aspect: aspect(model.AspectOptionality), Impact: impact(model.ImpactWidening), Release: model.ReleaseMinor,
			Rationale: "writers may omit the member"},
		{Name: "became-required", Aspect: aspect(model.AspectOptionality), Release: model.ReleaseMajor,
			Rationale: "writers must supply a value"},
		{Name: "readonly-added", Aspect: aspect(model.AspectReadonly), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMajor,
			Rationale: "writers stop compiling"},
		{Name: "readonly-removed", Aspect: aspect(model.AspectReadonly), Release: model.ReleaseMinor,
			Rationale: "the member becomes writable"},
		{Name: "deprecation-added", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactWidening), Release: model.ReleasePatch,
			Rationale: "a documentation-only signal"},
		{Name: "deprecation-removed", Aspect: aspect(model.AspectDeprecation), Impact: impact(model.ImpactNarrowing), Release: model.ReleaseMinor,
			Rationale: "the surface is supported again"},
		{Name: "modification", Action: action(model.ActionModified), Release: model.ReleaseMajor,
			Rationale: "remaining dimensions are assumed breaking"},
		{Name: "addition", Action: action(model.ActionAdded), Release: model.ReleaseMinor,
			Rationale: "new surface, existing consumers unaffected"},
	},
}

// Builtins compiles the three shipped policies.
func Builtins() []*Compiled {
	return []*Compiled{
		mustCompile(semverDefaultSpec),
		mustCompile(readOnlySpec),
		mustCompile(writeOnlySpec),
	}
}
