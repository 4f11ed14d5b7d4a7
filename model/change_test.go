package model

import (
	"testing"
)

func TestChangeDescriptorKey(t *testing.T) {
	tests := []struct {
		name       string
		descriptor ChangeDescriptor
		expected   string
	}{
		{"addition", NewAddition(TargetExport), "export:added"},
		{"removal", NewRemoval(TargetParameter), "parameter:removed"},
		{"rename", NewRename(TargetExport), "export:renamed"},
		{"reorder", NewReorder(TargetParameter), "parameter:reordered"},
		{"modification", NewModification(TargetProperty, AspectType, ImpactNarrowing), "property:modified:type"},
		{"modification optionality", NewModification(TargetParameter, AspectOptionality, ImpactWidening), "parameter:modified:optionality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.descriptor.Key()
			if key != tt.expected {
				t.Fatalf("Key() = %q, want %q", key, tt.expected)
			}

			target, action, aspect, ok := ParseChangeKey(key)
			if !ok {
				t.Fatalf("ParseChangeKey(%q) failed", key)
			}
			if target != tt.descriptor.Target || action != tt.descriptor.Action || aspect != tt.descriptor.Aspect {
				t.Errorf("ParseChangeKey(%q) = (%s, %s, %s), want (%s, %s, %s)",
					key, target, action, aspect,
					tt.descriptor.Target, tt.descriptor.Action, tt.descriptor.Aspect)
			}
		})
	}
}

func TestParseChangeKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "export", "a:b:c:d"} {
		if _, _, _, ok := ParseChangeKey(key); ok {
			t.Errorf("ParseChangeKey(%q) = ok, want failure", key)
		}
	}
}

func TestWithTagsDoesNotMutateReceiver(t *testing.T) {
	original := NewModification(TargetProperty, AspectType, ImpactWidening)
	tagged := original.WithTags(TagHasNestedChanges)

	if original.Tags.Has(TagHasNestedChanges) {
		t.Error("WithTags mutated the original descriptor's tag set")
	}
	if !tagged.Tags.Has(TagHasNestedChanges) {
		t.Error("WithTags did not add the tag to the copy")
	}
}

func TestModifierSetJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     ModifierSet
		expected float64
	}{
		{"both empty", NewModifierSet(), NewModifierSet(), 1},
		{"identical", NewModifierSet(ModifierStatic, ModifierReadonly), NewModifierSet(ModifierStatic, ModifierReadonly), 1},
		{"disjoint", NewModifierSet(ModifierStatic), NewModifierSet(ModifierReadonly), 0},
		{"half overlap", NewModifierSet(ModifierStatic, ModifierReadonly), NewModifierSet(ModifierStatic), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Jaccard(tt.b); got != tt.expected {
				t.Errorf("Jaccard() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNodeMapOrder(t *testing.T) {
	m := NewNodeMap()
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		m.Set(name, NewNode(name, name, KindFunction))
	}

	got := m.Names()
	for i, name := range names {
		if got[i] != name {
			t.Fatalf("Names()[%d] = %q, want %q (insertion order)", i, got[i], name)
		}
	}

	// Replacing keeps the original position.
	m.Set("alpha", NewNode("alpha", "alpha", KindVariable))
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	if m.Names()[1] != "alpha" {
		t.Errorf("replacement moved alpha to %v", m.Names())
	}
}

func TestFlatten(t *testing.T) {
	child := &APIChange{Path: "A.b"}
	grandchild := &APIChange{Path: "A.b.c"}
	child.NestedChanges = []*APIChange{grandchild}
	root := &APIChange{Path: "A", NestedChanges: []*APIChange{child}}

	flat := root.Flatten()
	if len(flat) != 3 {
		t.Fatalf("Flatten() returned %d changes, want 3", len(flat))
	}
	if flat[0].Path != "A" || flat[1].Path != "A.b" || flat[2].Path != "A.b.c" {
		t.Errorf("Flatten() order = %v", []string{flat[0].Path, flat[1].Path, flat[2].Path})
	}
}

func TestNormalizeSignature(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"  string  ", "string"},
		{"{ a: string;\n\tb: number }", "{ a: string; b: number }"},
		{"\"a\" |  \"b\"", "\"a\" | \"b\""},
	}
	for _, tt := range tests {
		if got := NormalizeSignature(tt.in); got != tt.out {
			t.Errorf("NormalizeSignature(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
