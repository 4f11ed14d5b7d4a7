package differ

import (
	"fmt"
	"strings"

	"github.com/apivet/apivet/internal/params"
	"github.com/apivet/apivet/model"
)

// classification is the classifier's verdict on one matched pair. noChange
// marks the equivalent fallback: such pairs are only reported when nested
// changes exist under them.
type classification struct {
	descriptor    model.ChangeDescriptor
	explanation   string
	paramAnalysis *params.ParameterOrderAnalysis
	noChange      bool
}

// classifyPair walks the fixed evaluation order over a matched pair and
// returns the first dimension that changed.
func (d *Differ) classifyPair(pair matchedPair, oldA, newA *model.ModuleAnalysis, target model.ChangeTarget) classification {
	oldNode, newNode := pair.old, pair.new

	if c, ok := d.classifyParameterOrder(oldNode, newNode, target); ok {
		return c
	}
	if c, ok := classifyTypeParameters(oldNode, newNode, target); ok {
		return c
	}
	if c, ok := classifyEnumValue(oldNode, newNode); ok {
		return c
	}
	if c, ok := d.classifyTypeSignature(oldNode, newNode, oldA, newA, target); ok {
		return c
	}
	if c, ok := classifyModifiers(oldNode, newNode, target); ok {
		return c
	}
	if c, ok := classifyHeritage(oldNode, newNode, target); ok {
		return c
	}
	if c, ok := classifyDeprecation(oldNode, newNode, target); ok {
		return c
	}
	if c, ok := classifyDefaultValue(oldNode, newNode, target); ok {
		return c
	}

	return classification{
		descriptor:  model.NewModification(target, model.AspectType, model.ImpactEquivalent),
		explanation: fmt.Sprintf("%s is unchanged", oldNode.Path),
		noChange:    true,
	}
}

func (d *Differ) classifyParameterOrder(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	if !d.opts.DetectParameterReordering || !oldNode.Kind.IsCallable() {
		return classification{}, false
	}

	analysis := params.DetectParameterReordering(oldNode.Parameters(), newNode.Parameters())
	if !analysis.HasReordering {
		return classification{}, false
	}

	return classification{
		descriptor: model.NewReorder(model.TargetParameter),
		explanation: fmt.Sprintf("parameters of %s were reordered (%s, confidence %s)",
			oldNode.Path, analysis.Summary, analysis.Confidence),
		paramAnalysis: &analysis,
	}, true
}

func classifyTypeParameters(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	oldParams := oldNode.TypeInfo.TypeParameters
	newParams := newNode.TypeInfo.TypeParameters
	if len(oldParams) == 0 && len(newParams) == 0 {
		return classification{}, false
	}

	newByName := make(map[string]model.TypeParameterInfo, len(newParams))
	for _, p := range newParams {
		newByName[p.Name] = p
	}

	for _, oldParam := range oldParams {
		newParam, ok := newByName[oldParam.Name]
		if !ok {
			return classification{
				descriptor: model.NewRemoval(model.TargetTypeParameter, model.TagAffectsTypeParameter),
				explanation: fmt.Sprintf("type parameter %s was removed from %s",
					oldParam.Name, oldNode.Path),
			}, true
		}

		if oldParam.Constraint != newParam.Constraint {
			impact := model.ImpactUndetermined
			switch {
			case oldParam.Constraint == "":
				impact = model.ImpactNarrowing
			case newParam.Constraint == "":
				impact = model.ImpactWidening
			}
			return classification{
				descriptor: model.NewModification(model.TargetTypeParameter, model.AspectConstraint, impact, model.TagAffectsTypeParameter),
				explanation: fmt.Sprintf("constraint of type parameter %s on %s changed from %q to %q",
					oldParam.Name, oldNode.Path, oldParam.Constraint, newParam.Constraint),
			}, true
		}

		if oldParam.Default != newParam.Default {
			impact := model.ImpactUndetermined
			switch {
			case oldParam.Default == "":
				impact = model.ImpactWidening
			case newParam.Default == "":
				impact = model.ImpactNarrowing
			}
			return classification{
				descriptor: model.NewModification(model.TargetTypeParameter, model.AspectDefaultType, impact, model.TagAffectsTypeParameter),
				explanation: fmt.Sprintf("default of type parameter %s on %s changed from %q to %q",
					oldParam.Name, oldNode.Path, oldParam.Default, newParam.Default),
			}, true
		}
	}

	oldByName := make(map[string]model.TypeParameterInfo, len(oldParams))
	for _, p := range oldParams {
		oldByName[p.Name] = p
	}
	for _, newParam := range newParams {
		if _, ok := oldByName[newParam.Name]; !ok {
			return classification{
				descriptor: model.NewAddition(model.TargetTypeParameter, model.TagAffectsTypeParameter),
				explanation: fmt.Sprintf("type parameter %s was added to %s",
					newParam.Name, newNode.Path),
			}, true
		}
	}

	return classification{}, false
}

func classifyEnumValue(oldNode, newNode *model.AnalyzableNode) (classification, bool) {
	if oldNode.Kind != model.KindEnumMember {
		return classification{}, false
	}
	oldValue := model.NormalizeSignature(oldNode.TypeInfo.Signature)
	newValue := model.NormalizeSignature(newNode.TypeInfo.Signature)
	if oldValue == newValue {
		return classification{}, false
	}

	return classification{
		descriptor: model.NewModification(model.TargetEnumMember, model.AspectEnumValue, model.ImpactUnrelated),
		explanation: fmt.Sprintf("value of enum member %s changed from %s to %s",
			oldNode.Path, quoteOr(oldValue, "implicit"), quoteOr(newValue, "implicit")),
	}, true
}

func (d *Differ) classifyTypeSignature(oldNode, newNode *model.AnalyzableNode, oldA, newA *model.ModuleAnalysis, target model.ChangeTarget) (classification, bool) {
	oldSig := model.NormalizeSignature(oldNode.TypeInfo.Signature)
	newSig := model.NormalizeSignature(newNode.TypeInfo.Signature)

	// An interface rewritten as a structurally identical object type alias
	// (or back) is not a change when type relationships are resolved.
	if oldNode.Kind != newNode.Kind {
		if d.opts.ResolveTypeRelationships && structurallyEquivalent(oldNode, newNode) {
			return classification{}, false
		}
		return classification{
			descriptor: model.NewModification(target, model.AspectType, model.ImpactUndetermined),
			explanation: fmt.Sprintf("%s changed from %s to %s",
				oldNode.Path, oldNode.Kind, newNode.Kind),
		}, true
	}

	if oldSig == newSig {
		return classification{}, false
	}

	impact := d.typeChangeImpact(oldNode, newNode, oldSig, newSig, oldA, newA)
	if impact == model.ImpactEquivalent {
		// Mutually assignable spellings are no change.
		return classification{}, false
	}

	return classification{
		descriptor: model.NewModification(target, model.AspectType, impact),
		explanation: fmt.Sprintf("type of %s changed from %s to %s (%s)",
			oldNode.Path, quoteOr(oldSig, "untyped"), quoteOr(newSig, "untyped"), impact),
	}, true
}

// typeChangeImpact probes union membership through the checkers when
// available and falls back to string heuristics.
func (d *Differ) typeChangeImpact(oldNode, newNode *model.AnalyzableNode, oldSig, newSig string, oldA, newA *model.ModuleAnalysis) model.ChangeImpact {
	if d.opts.ResolveTypeRelationships && oldA != nil && newA != nil && oldA.Checker != nil && newA.Checker != nil {
		oldHandle, oldOK := oldA.Checker.ResolveType(oldNode.Path)
		newHandle, newOK := newA.Checker.ResolveType(newNode.Path)
		if oldOK && newOK {
			oldMembers, oldIsUnion := decompose(oldA.Checker, oldHandle)
			newMembers, newIsUnion := decompose(newA.Checker, newHandle)
			switch {
			case oldIsUnion && newIsUnion:
				return compareMemberSets(oldMembers, newMembers)
			case newIsUnion && containsMember(newMembers, oldA.Checker.Stringify(oldHandle)):
				return model.ImpactWidening
			case oldIsUnion && containsMember(oldMembers, newA.Checker.Stringify(newHandle)):
				return model.ImpactNarrowing
			case oldIsUnion || newIsUnion:
				return model.ImpactUnrelated
			}
			// Both resolved to non-union types the checker cannot
			// relate further; fall through to the string heuristics.
		}
	}

	return stringTypeImpact(oldSig, newSig)
}

func decompose(checker model.TypeChecker, handle model.TypeHandle) ([]string, bool) {
	handles, ok := checker.DecomposeUnion(handle)
	if !ok {
		return nil, false
	}
	members := make([]string, 0, len(handles))
	for _, h := range handles {
		members = append(members, model.NormalizeSignature(checker.Stringify(h)))
	}
	return members, true
}

// stringTypeImpact decides an impact from the signature strings alone:
// '|' membership subsets decide widening and narrowing, and unions with no
// such relation are unrelated. Two distinct known primitives are unrelated;
// any other pair of non-union types is undetermined.
func stringTypeImpact(oldSig, newSig string) model.ChangeImpact {
	oldHasUnion := strings.Contains(oldSig, "|")
	newHasUnion := strings.Contains(newSig, "|")

	switch {
	case oldHasUnion && newHasUnion:
		return compareMemberSets(splitUnion(oldSig), splitUnion(newSig))
	case newHasUnion:
		if containsMember(splitUnion(newSig), oldSig) {
			return model.ImpactWidening
		}
		return model.ImpactUnrelated
	case oldHasUnion:
		if containsMember(splitUnion(oldSig), newSig) {
			return model.ImpactNarrowing
		}
		return model.ImpactUnrelated
	}

	if knownPrimitives[oldSig] && knownPrimitives[newSig] {
		return model.ImpactUnrelated
	}
	return model.ImpactUndetermined
}

var knownPrimitives = map[string]bool{
	"string": true, "number": true, "boolean": true, "bigint": true,
	"symbol": true, "object": true, "null": true, "undefined": true,
	"void": true, "never": true,
}

func splitUnion(sig string) []string {
	parts := strings.Split(sig, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func compareMemberSets(oldMembers, newMembers []string) model.ChangeImpact {
	oldSet := toSet(oldMembers)
	newSet := toSet(newMembers)

	oldInNew := subset(oldSet, newSet)
	newInOld := subset(newSet, oldSet)
	switch {
	case oldInNew && newInOld:
		return model.ImpactEquivalent
	case oldInNew:
		return model.ImpactWidening
	case newInOld:
		return model.ImpactNarrowing
	}
	return model.ImpactUnrelated
}

func toSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[model.NormalizeSignature(m)] = true
	}
	return set
}

func subset(a, b map[string]bool) bool {
	for m := range a {
		if !b[m] {
			return false
		}
	}
	return true
}

func containsMember(members []string, candidate string) bool {
	candidate = model.NormalizeSignature(candidate)
	for _, m := range members {
		if model.NormalizeSignature(m) == candidate {
			return true
		}
	}
	return false
}

// structurallyEquivalent compares two object-shaped nodes member by member.
func structurallyEquivalent(a, b *model.AnalyzableNode) bool {
	objectLike := func(k model.NodeKind) bool {
		return k == model.KindInterface || k == model.KindTypeAlias
	}
	if !objectLike(a.Kind) || !objectLike(b.Kind) {
		return false
	}
	if a.ChildCount() != b.ChildCount() {
		return false
	}

	equal := true
	a.Children().Range(func(name string, ac *model.AnalyzableNode) bool {
		bc, ok := b.Child(name)
		if !ok || ac.Kind != bc.Kind ||
			model.NormalizeSignature(ac.TypeInfo.Signature) != model.NormalizeSignature(bc.TypeInfo.Signature) ||
			ac.Modifiers.Has(model.ModifierOptional) != bc.Modifiers.Has(model.ModifierOptional) ||
			ac.Modifiers.Has(model.ModifierReadonly) != bc.Modifiers.Has(model.ModifierReadonly) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// classifyModifiers checks the modifier dimensions in their fixed order:
// readonly, optionality, abstractness, staticness, visibility.
func classifyModifiers(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	oldMods, newMods := oldNode.Modifiers, newNode.Modifiers

	if oldMods.Has(model.ModifierReadonly) != newMods.Has(model.ModifierReadonly) {
		if newMods.Has(model.ModifierReadonly) {
			return classification{
				descriptor:  model.NewModification(target, model.AspectReadonly, model.ImpactNarrowing),
				explanation: fmt.Sprintf("%s became readonly", oldNode.Path),
			}, true
		}
		return classification{
			descriptor:  model.NewModification(target, model.AspectReadonly, model.ImpactWidening),
			explanation: fmt.Sprintf("%s is no longer readonly", oldNode.Path),
		}, true
	}

	if oldMods.Has(model.ModifierOptional) != newMods.Has(model.ModifierOptional) {
		if newMods.Has(model.ModifierOptional) {
			return classification{
				descriptor: model.NewModification(target, model.AspectOptionality, model.ImpactWidening,
					model.TagWasRequired, model.TagNowOptional),
				explanation: fmt.Sprintf("%s became optional", oldNode.Path),
			}, true
		}
		return classification{
			descriptor: model.NewModification(target, model.AspectOptionality, model.ImpactNarrowing,
				model.TagWasOptional, model.TagNowRequired),
			explanation: fmt.Sprintf("%s became required", oldNode.Path),
		}, true
	}

	if oldMods.Has(model.ModifierAbstract) != newMods.Has(model.ModifierAbstract) {
		impact := model.ImpactWidening
		verb := "is no longer abstract"
		if newMods.Has(model.ModifierAbstract) {
			impact = model.ImpactNarrowing
			verb = "became abstract"
		}
		return classification{
			descriptor:  model.NewModification(target, model.AspectAbstractness, impact),
			explanation: fmt.Sprintf("%s %s", oldNode.Path, verb),
		}, true
	}

	if oldMods.Has(model.ModifierStatic) != newMods.Has(model.ModifierStatic) {
		return classification{
			descriptor:  model.NewModification(target, model.AspectStaticness, model.ImpactUnrelated),
			explanation: fmt.Sprintf("staticness of %s changed", oldNode.Path),
		}, true
	}

	if oldVis, newVis := visibilityOf(oldMods), visibilityOf(newMods); oldVis != newVis {
		return classification{
			descriptor:  model.NewModification(target, model.AspectVisibility, model.ImpactUndetermined),
			explanation: fmt.Sprintf("visibility of %s changed from %s to %s", oldNode.Path, oldVis, newVis),
		}, true
	}

	return classification{}, false
}

func visibilityOf(mods model.ModifierSet) string {
	switch {
	case mods.Has(model.ModifierPrivate):
		return "private"
	case mods.Has(model.ModifierProtected):
		return "protected"
	}
	return "public"
}

// classifyHeritage compares the ordered extends and implements name lists.
func classifyHeritage(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	if c, ok := classifyNameList(oldNode, oldNode.Extends, newNode.Extends, model.AspectExtendsClause, target, "extends"); ok {
		return c, true
	}
	if c, ok := classifyNameList(oldNode, oldNode.Implements, newNode.Implements, model.AspectImplementsClause, target, "implements"); ok {
		return c, true
	}
	return classification{}, false
}

func classifyNameList(node *model.AnalyzableNode, oldList, newList []string, aspect model.ChangeAspect, target model.ChangeTarget, clause string) (classification, bool) {
	if equalOrdered(oldList, newList) {
		return classification{}, false
	}

	impact := model.ImpactUndetermined
	switch {
	case len(oldList) == 0:
		impact = model.ImpactNarrowing
	case len(newList) == 0:
		impact = model.ImpactWidening
	}

	return classification{
		descriptor: model.NewModification(target, aspect, impact),
		explanation: fmt.Sprintf("%s clause of %s changed from [%s] to [%s]",
			clause, node.Path, strings.Join(oldList, ", "), strings.Join(newList, ", ")),
	}, true
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// classifyDeprecation reports deprecation toggles. Becoming deprecated is
// widening: the surface still works, usage is merely discouraged.
func classifyDeprecation(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	oldDep, newDep := oldNode.IsDeprecated(), newNode.IsDeprecated()
	if oldDep == newDep {
		return classification{}, false
	}

	if newDep {
		return classification{
			descriptor:  model.NewModification(target, model.AspectDeprecation, model.ImpactWidening),
			explanation: fmt.Sprintf("%s was marked deprecated", oldNode.Path),
		}, true
	}
	return classification{
		descriptor:  model.NewModification(target, model.AspectDeprecation, model.ImpactNarrowing),
		explanation: fmt.Sprintf("deprecation of %s was removed", oldNode.Path),
	}, true
}

// classifyDefaultValue reports documented default-value changes. They
// never affect the type surface, so the impact is equivalent.
func classifyDefaultValue(oldNode, newNode *model.AnalyzableNode, target model.ChangeTarget) (classification, bool) {
	oldDefault, newDefault := defaultValueOf(oldNode), defaultValueOf(newNode)
	if oldDefault == newDefault {
		return classification{}, false
	}

	tags := make([]model.ChangeTag, 0, 2)
	if oldDefault != "" {
		tags = append(tags, model.TagHadDefault)
	}
	if newDefault != "" {
		tags = append(tags, model.TagHasDefault)
	}
	return classification{
		descriptor: model.NewModification(target, model.AspectDefaultValue, model.ImpactEquivalent, tags...),
		explanation: fmt.Sprintf("default value of %s changed from %s to %s",
			oldNode.Path, quoteOr(oldDefault, "none"), quoteOr(newDefault, "none")),
	}, true
}

func defaultValueOf(node *model.AnalyzableNode) string {
	if node.Metadata == nil {
		return ""
	}
	return node.Metadata.DefaultValue
}

func quoteOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return "'" + s + "'"
}
