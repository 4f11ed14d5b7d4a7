package differ

import (
	"fmt"

	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet/model"
)

// Options control matching, rename detection and recursion.
type Options struct {
	RenameThreshold           float64
	IncludeNestedChanges      bool
	ResolveTypeRelationships  bool
	MaxNestingDepth           int
	DetectParameterReordering bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		RenameThreshold:           0.8,
		IncludeNestedChanges:      true,
		ResolveTypeRelationships:  true,
		MaxNestingDepth:           10,
		DetectParameterReordering: true,
	}
}

func (o Options) withDefaults() Options {
	o.RenameThreshold = lang.Check(o.RenameThreshold, 0.8)
	o.MaxNestingDepth = lang.Check(o.MaxNestingDepth, 10)
	return o
}

// Differ computes the change list between two module analyses.
type Differ struct {
	opts Options
	log  logze.Logger
}

func New(opts Options) *Differ {
	return &Differ{
		opts: opts.withDefaults(),
		log:  logze.With("module", "differ"),
	}
}

// DiffModules produces the full change list. Output order is part of the
// contract: renames first, then removals in old-export order, additions in
// new-export order, and modifications in old-export order.
func (d *Differ) DiffModules(oldA, newA *model.ModuleAnalysis) []*model.APIChange {
	result := matchNodes(oldA.Exports, newA.Exports)

	renames := detectRenames(result.removed, result.added, d.opts.RenameThreshold)
	renamedOld := make(map[*model.AnalyzableNode]bool, len(renames))
	renamedNew := make(map[*model.AnalyzableNode]bool, len(renames))

	changes := make([]*model.APIChange, 0, len(result.matched))
	for _, pair := range renames {
		renamedOld[pair.old] = true
		renamedNew[pair.new] = true
		changes = append(changes, &model.APIChange{
			Descriptor:  model.NewRename(model.TargetExport),
			Path:        pair.old.Path,
			NodeKind:    pair.old.Kind,
			OldLocation: pair.old.Location,
			NewLocation: pair.new.Location,
			OldNode:     pair.old,
			NewNode:     pair.new,
			Context: model.ChangeContext{
				RenameConfidence: pair.confidence,
				OldType:          pair.old.TypeInfo.Signature,
				NewType:          pair.new.TypeInfo.Signature,
			},
			Explanation: fmt.Sprintf("export %s was renamed to %s (confidence %.2f)",
				pair.old.Name, pair.new.Name, pair.confidence),
		})
	}

	for _, node := range result.removed {
		if renamedOld[node] {
			continue
		}
		changes = append(changes, &model.APIChange{
			Descriptor:  model.NewRemoval(model.TargetExport),
			Path:        node.Path,
			NodeKind:    node.Kind,
			OldLocation: node.Location,
			OldNode:     node,
			Context:     model.ChangeContext{OldType: node.TypeInfo.Signature},
			Explanation: fmt.Sprintf("export %s was removed", node.Path),
		})
	}

	for _, node := range result.added {
		if renamedNew[node] {
			continue
		}
		changes = append(changes, &model.APIChange{
			Descriptor:  model.NewAddition(model.TargetExport),
			Path:        node.Path,
			NodeKind:    node.Kind,
			NewLocation: node.Location,
			NewNode:     node,
			Context:     model.ChangeContext{NewType: node.TypeInfo.Signature},
			Explanation: fmt.Sprintf("export %s was added", node.Path),
		})
	}

	for _, pair := range result.matched {
		if change := d.diffPair(pair, oldA, newA, 0, nil); change != nil {
			changes = append(changes, change)
		}
	}

	d.log.Debug("modules diffed",
		"matched", len(result.matched),
		"renames", len(renames),
		"changes", len(changes),
	)
	return changes
}

// diffPair classifies one matched pair and recurses into its children.
// A nil result means the pair is unchanged all the way down.
func (d *Differ) diffPair(pair matchedPair, oldA, newA *model.ModuleAnalysis, depth int, ancestors []string) *model.APIChange {
	target := model.TargetForKind(pair.old.Kind)
	if depth == 0 {
		target = model.TargetExport
	}

	c := d.classifyPair(pair, oldA, newA, target)

	var nested []*model.APIChange
	if d.opts.IncludeNestedChanges && depth < d.opts.MaxNestingDepth {
		nested = d.diffChildren(pair, oldA, newA, depth+1, append(ancestors, pair.old.Path))
	}

	if c.noChange && len(nested) == 0 {
		return nil
	}

	descriptor := c.descriptor
	if len(nested) > 0 {
		descriptor = descriptor.WithTags(model.TagHasNestedChanges)
	}
	if depth > 0 {
		descriptor = descriptor.WithTags(model.TagIsNestedChange)
	}

	change := &model.APIChange{
		Descriptor:    descriptor,
		Path:          pair.old.Path,
		NodeKind:      pair.old.Kind,
		OldLocation:   pair.old.Location,
		NewLocation:   pair.new.Location,
		OldNode:       pair.old,
		NewNode:       pair.new,
		NestedChanges: nested,
		Context: model.ChangeContext{
			IsNested:  depth > 0,
			Depth:     depth,
			Ancestors: copyStrings(ancestors),
			OldType:   pair.old.TypeInfo.Signature,
			NewType:   pair.new.TypeInfo.Signature,
		},
		Explanation: c.explanation,
	}
	if c.noChange {
		change.Explanation = fmt.Sprintf("%s has nested changes", pair.old.Path)
	}
	return change
}

// diffChildren walks the child maps of a matched pair: removals in old
// order, additions in new order, then modifications in old order.
func (d *Differ) diffChildren(pair matchedPair, oldA, newA *model.ModuleAnalysis, depth int, ancestors []string) []*model.APIChange {
	result := matchNodes(pair.old.Children(), pair.new.Children())

	var changes []*model.APIChange
	for _, node := range result.removed {
		changes = append(changes, d.childChange(node, model.ActionRemoved, depth, ancestors))
	}
	for _, node := range result.added {
		changes = append(changes, d.childChange(node, model.ActionAdded, depth, ancestors))
	}
	for _, childPair := range result.matched {
		if change := d.diffPair(childPair, oldA, newA, depth, ancestors); change != nil {
			changes = append(changes, change)
		}
	}
	return changes
}

// childChange builds the added/removed record for an unmatched child.
// Added and removed parameters carry the optionality tags the policies
// discriminate on.
func (d *Differ) childChange(node *model.AnalyzableNode, action model.ChangeAction, depth int, ancestors []string) *model.APIChange {
	target := model.TargetForKind(node.Kind)

	var descriptor model.ChangeDescriptor
	verb := "added"
	if action == model.ActionRemoved {
		descriptor = model.NewRemoval(target, model.TagIsNestedChange)
		verb = "removed"
	} else {
		descriptor = model.NewAddition(target, model.TagIsNestedChange)
	}

	if node.Kind == model.KindParameter {
		optional := node.Modifiers.Has(model.ModifierOptional) || node.Modifiers.Has(model.ModifierRest)
		if action == model.ActionAdded {
			descriptor = descriptor.WithTags(lang.If(optional, model.TagNowOptional, model.TagNowRequired))
		} else {
			descriptor = descriptor.WithTags(lang.If(optional, model.TagWasOptional, model.TagWasRequired))
		}
		if node.Metadata != nil && node.Metadata.DefaultValue != "" {
			descriptor = descriptor.WithTags(lang.If(action == model.ActionAdded, model.TagHasDefault, model.TagHadDefault))
		}
	}
	if node.Kind == model.KindTypeParameter {
		descriptor = descriptor.WithTags(model.TagAffectsTypeParameter)
	}

	change := &model.APIChange{
		Descriptor: descriptor,
		Path:       node.Path,
		NodeKind:   node.Kind,
		Context: model.ChangeContext{
			IsNested:  true,
			Depth:     depth,
			Ancestors: copyStrings(ancestors),
		},
		Explanation: fmt.Sprintf("%s %s was %s", node.Kind, node.Path, verb),
	}
	if action == model.ActionRemoved {
		change.OldLocation = node.Location
		change.OldNode = node
		change.Context.OldType = node.TypeInfo.Signature
	} else {
		change.NewLocation = node.Location
		change.NewNode = node
		change.Context.NewType = node.TypeInfo.Signature
	}
	return change
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
