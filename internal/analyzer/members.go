package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apivet/apivet/internal/frontend"
	"github.com/apivet/apivet/model"
)

// buildParameters appends parameter children in declaration order.
func (b *builder) buildParameters(parent *model.AnalyzableNode, list *sitter.Node) {
	if list == nil {
		return
	}
	pos := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		param := list.NamedChild(i)
		switch param.Type() {
		case "required_parameter", "optional_parameter":
		default:
			continue
		}

		rest := false
		name := ""
		if pattern := param.ChildByFieldName("pattern"); pattern != nil {
			name = model.NormalizeSignature(frontend.NodeText(pattern, b.src))
			if pattern.Type() == "rest_pattern" {
				rest = true
				name = strings.TrimPrefix(name, "...")
			}
		}
		if name == "" {
			name = fmt.Sprintf("arg%d", pos)
		}

		path := model.JoinPath(parent.Path, name)
		node := model.NewNode(path, name, model.KindParameter)
		if param.Type() == "optional_parameter" || frontend.HasTokenChild(param, "?") {
			node.Modifiers.Add(model.ModifierOptional)
		}
		if rest {
			node.Modifiers.Add(model.ModifierRest)
		}

		typeNode := frontend.AnnotatedType(param.ChildByFieldName("type"))
		sig := frontend.TypeText(typeNode, b.src)
		node.TypeInfo.Signature = sig
		node.Location = b.rangeOf(param)
		if value := param.ChildByFieldName("value"); value != nil {
			b.setDefaultValue(node, frontend.TypeText(value, b.src))
		}

		b.checker.RegisterType(path, sig, frontend.UnionMemberTexts(typeNode, b.src))
		b.symbols[path] = param
		parent.AddChild(node)
		pos++
	}
}

// buildTypeParameters records generic parameters both as TypeInfo entries
// (what the classifier compares) and as children (what rename scoring and
// the walker see).
func (b *builder) buildTypeParameters(parent *model.AnalyzableNode, list *sitter.Node) {
	if list == nil {
		return
	}
	pos := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		tp := list.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}

		nameNode := tp.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = frontend.FindNamedChild(tp, "type_identifier")
		}
		name := frontend.NodeText(nameNode, b.src)
		if name == "" {
			continue
		}

		info := model.TypeParameterInfo{Name: name, Position: pos}
		if c := frontend.FindNamedChild(tp, "constraint"); c != nil && c.NamedChildCount() > 0 {
			info.Constraint = frontend.TypeText(c.NamedChild(0), b.src)
		}
		if d := frontend.FindNamedChild(tp, "default_type"); d != nil && d.NamedChildCount() > 0 {
			info.Default = frontend.TypeText(d.NamedChild(0), b.src)
		}
		parent.TypeInfo.TypeParameters = append(parent.TypeInfo.TypeParameters, info)

		path := parent.Path + "<" + name + ">"
		node := model.NewNode(path, name, model.KindTypeParameter)
		node.TypeInfo.Signature = info.Constraint
		node.Location = b.rangeOf(tp)
		b.symbols[path] = tp
		parent.AddChild(node)
		pos++
	}
}

// buildClassMembers walks a class body.
func (b *builder) buildClassMembers(parent *model.AnalyzableNode, body *sitter.Node) {
	if body == nil {
		return
	}
	var pendingDoc *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "comment" {
			pendingDoc = member
			continue
		}
		doc := b.takeDoc(pendingDoc, member)
		pendingDoc = nil

		switch member.Type() {
		case "method_definition", "method_signature", "abstract_method_signature":
			b.buildMethod(parent, member, doc)
		case "public_field_definition", "property_signature", "property_definition":
			b.buildProperty(parent, member, doc)
		case "index_signature":
			b.buildIndexSignature(parent, member)
		}
	}
}

// buildObjectMembers walks an interface or object-type body.
func (b *builder) buildObjectMembers(parent *model.AnalyzableNode, body *sitter.Node) {
	if body == nil {
		return
	}
	var pendingDoc *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "comment" {
			pendingDoc = member
			continue
		}
		doc := b.takeDoc(pendingDoc, member)
		pendingDoc = nil

		switch member.Type() {
		case "property_signature":
			b.buildProperty(parent, member, doc)
		case "method_signature":
			b.buildMethod(parent, member, doc)
		case "call_signature":
			b.buildSignatureMember(parent, member, model.KindCallSignature, "(call)")
		case "construct_signature":
			b.buildSignatureMember(parent, member, model.KindConstructSignature, "(new)")
		case "index_signature":
			b.buildIndexSignature(parent, member)
		}
	}

	// Properties are mirrored into TypeInfo so structural equivalence
	// checks can run without touching children.
	parent.Children().Range(func(_ string, c *model.AnalyzableNode) bool {
		if c.Kind == model.KindProperty {
			parent.TypeInfo.Properties = append(parent.TypeInfo.Properties, model.PropertyInfo{
				Name:     c.Name,
				Type:     c.TypeInfo.Signature,
				Optional: c.Modifiers.Has(model.ModifierOptional),
				Readonly: c.Modifiers.Has(model.ModifierReadonly),
			})
		}
		return true
	})
}

func (b *builder) buildMethod(parent *model.AnalyzableNode, member *sitter.Node, doc string) {
	name := frontend.NodeText(member.ChildByFieldName("name"), b.src)
	if name == "" {
		return
	}

	kind := model.KindMethod
	switch {
	case frontend.HasTokenChild(member, "get"):
		kind = model.KindGetter
	case frontend.HasTokenChild(member, "set"):
		kind = model.KindSetter
	case name == "constructor":
		kind = model.KindConstructSignature
	}

	path := model.JoinPath(parent.Path, name)
	node := model.NewNode(path, name, kind)
	b.applyMemberModifiers(node, member)
	if member.Type() == "abstract_method_signature" {
		node.Modifiers.Add(model.ModifierAbstract)
	}
	node.Location = b.rangeOf(member)
	b.applyDoc(node, doc)

	b.buildTypeParameters(node, member.ChildByFieldName("type_parameters"))
	b.buildParameters(node, member.ChildByFieldName("parameters"))
	b.applyReturnType(node, member)

	b.symbols[path] = member
	parent.AddChild(node)
}

func (b *builder) buildProperty(parent *model.AnalyzableNode, member *sitter.Node, doc string) {
	name := frontend.NodeText(member.ChildByFieldName("name"), b.src)
	if name == "" {
		return
	}

	path := model.JoinPath(parent.Path, name)
	node := model.NewNode(path, name, model.KindProperty)
	b.applyMemberModifiers(node, member)
	node.Location = b.rangeOf(member)
	b.applyDoc(node, doc)

	typeNode := frontend.AnnotatedType(member.ChildByFieldName("type"))
	sig := frontend.TypeText(typeNode, b.src)
	node.TypeInfo.Signature = sig
	if value := member.ChildByFieldName("value"); value != nil {
		b.setDefaultValue(node, frontend.TypeText(value, b.src))
	}

	b.checker.RegisterType(path, sig, frontend.UnionMemberTexts(typeNode, b.src))
	b.symbols[path] = member
	parent.AddChild(node)
}

// buildSignatureMember handles call and construct signatures, which have no
// declared name; a synthetic one keeps the child map addressable. Repeated
// overloads get a positional suffix.
func (b *builder) buildSignatureMember(parent *model.AnalyzableNode, member *sitter.Node, kind model.NodeKind, baseName string) {
	name := baseName
	for i := 2; ; i++ {
		if _, exists := parent.Child(name); !exists {
			break
		}
		name = fmt.Sprintf("%s#%d", baseName, i)
	}

	path := model.JoinPath(parent.Path, name)
	node := model.NewNode(path, name, kind)
	node.Location = b.rangeOf(member)

	b.buildTypeParameters(node, member.ChildByFieldName("type_parameters"))
	b.buildParameters(node, member.ChildByFieldName("parameters"))
	b.applyReturnType(node, member)

	b.symbols[path] = member
	parent.AddChild(node)
}

// buildIndexSignature names the member by its key type, "[string]" style,
// which is stable across edits to the value type.
func (b *builder) buildIndexSignature(parent *model.AnalyzableNode, member *sitter.Node) {
	var annotations []*sitter.Node
	for i := 0; i < int(member.NamedChildCount()); i++ {
		if child := member.NamedChild(i); child.Type() == "type_annotation" {
			annotations = append(annotations, child)
		}
	}

	keyType, valueType := "string", ""
	switch len(annotations) {
	case 0:
	case 1:
		valueType = frontend.TypeText(frontend.AnnotatedType(annotations[0]), b.src)
	default:
		keyType = frontend.TypeText(frontend.AnnotatedType(annotations[0]), b.src)
		valueType = frontend.TypeText(frontend.AnnotatedType(annotations[len(annotations)-1]), b.src)
	}

	name := "[" + keyType + "]"
	path := model.JoinPath(parent.Path, name)
	node := model.NewNode(path, name, model.KindIndexSignature)
	if frontend.HasTokenChild(member, "readonly") {
		node.Modifiers.Add(model.ModifierReadonly)
	}
	node.TypeInfo.Signature = valueType
	node.Location = b.rangeOf(member)

	parent.TypeInfo.IndexSignatures = append(parent.TypeInfo.IndexSignatures, model.IndexSignatureInfo{
		KeyType:   keyType,
		ValueType: valueType,
		Readonly:  node.Modifiers.Has(model.ModifierReadonly),
	})

	b.checker.RegisterType(path, valueType, nil)
	b.symbols[path] = member
	parent.AddChild(node)
}

// applyMemberModifiers collects the keyword and accessibility modifiers a
// class or object member may carry.
func (b *builder) applyMemberModifiers(node *model.AnalyzableNode, member *sitter.Node) {
	for token, mod := range memberTokenModifiers {
		if frontend.HasTokenChild(member, token) {
			node.Modifiers.Add(mod)
		}
	}
	switch frontend.AccessibilityOf(member, b.src) {
	case "public":
		node.Modifiers.Add(model.ModifierPublic)
	case "protected":
		node.Modifiers.Add(model.ModifierProtected)
	case "private":
		node.Modifiers.Add(model.ModifierPrivate)
	}
}

var memberTokenModifiers = map[string]model.Modifier{
	"static":   model.ModifierStatic,
	"abstract": model.ModifierAbstract,
	"readonly": model.ModifierReadonly,
	"async":    model.ModifierAsync,
	"override": model.ModifierOverride,
	"declare":  model.ModifierDeclare,
	"?":        model.ModifierOptional,
	"*":        model.ModifierGenerator,
}
