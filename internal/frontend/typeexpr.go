package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apivet/apivet/model"
)

// NodeText extracts the source text of a node.
func NodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	start, end := int(node.StartByte()), int(node.EndByte())
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// TypeText returns the normalized text of a type expression node.
func TypeText(node *sitter.Node, src []byte) string {
	return model.NormalizeSignature(NodeText(node, src))
}

// AnnotatedType unwraps a type_annotation node (": T") to the type itself.
// Any other node is returned unchanged.
func AnnotatedType(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "type_annotation" && node.NamedChildCount() > 0 {
		return node.NamedChild(0)
	}
	return node
}

// IsUnionType reports whether the node is a union type expression.
func IsUnionType(node *sitter.Node) bool {
	return node != nil && node.Type() == "union_type"
}

// FlattenUnion collects the member type nodes of a (possibly nested) union
// expression in source order. A non-union node yields itself.
func FlattenUnion(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	if !IsUnionType(node) {
		return []*sitter.Node{node}
	}
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, FlattenUnion(node.NamedChild(i))...)
	}
	return out
}

// UnionMemberTexts returns the normalized member strings of a union type
// expression, or nil when the node is not a union.
func UnionMemberTexts(node *sitter.Node, src []byte) []string {
	if !IsUnionType(node) {
		return nil
	}
	members := FlattenUnion(node)
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, TypeText(m, src))
	}
	return out
}

// IsObjectType reports whether the node is a structural object type body.
// Both grammar spellings are handled because the body node was renamed
// between tree-sitter-typescript releases.
func IsObjectType(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "object_type", "interface_body":
		return true
	}
	return false
}

// IsIdentifierType reports whether the node is a bare type reference.
func IsIdentifierType(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "type_identifier", "identifier", "nested_type_identifier":
		return true
	}
	return false
}

// CollectTypeNames extracts the referenced type names of a heritage clause
// node (extends/implements) in declaration order.
func CollectTypeNames(node *sitter.Node, src []byte) []string {
	if node == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "identifier", "nested_type_identifier", "member_expression", "generic_type":
			out = append(out, model.NormalizeSignature(NodeText(child, src)))
		case "extends_clause", "implements_clause", "class_heritage", "extends_type_clause":
			out = append(out, CollectTypeNames(child, src)...)
		}
	}
	return out
}

// HasTokenChild reports whether the node has a child token of the given
// literal type ("?", "readonly", "static", ...). Tokens are unnamed nodes,
// so this scans the full child list.
func HasTokenChild(node *sitter.Node, token string) bool {
	if node == nil {
		return false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

// FindNamedChild returns the first named child whose type is one of the
// given node types.
func FindNamedChild(node *sitter.Node, types ...string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

// AccessibilityOf returns the accessibility modifier of a class member, if
// any ("public", "protected", "private").
func AccessibilityOf(node *sitter.Node, src []byte) string {
	mod := FindNamedChild(node, "accessibility_modifier")
	if mod == nil {
		return ""
	}
	return strings.TrimSpace(NodeText(mod, src))
}
