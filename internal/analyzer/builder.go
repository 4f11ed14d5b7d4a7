package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/maxbolgarin/erro"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apivet/apivet/internal/frontend"
	"github.com/apivet/apivet/model"
)

// declarationTypes are the node types the builder knows how to turn into
// analyzable nodes. Everything else at the top level is skipped.
var declarationTypes = []string{
	"function_declaration",
	"function_signature",
	"generator_function_declaration",
	"class_declaration",
	"abstract_class_declaration",
	"interface_declaration",
	"type_alias_declaration",
	"enum_declaration",
	"lexical_declaration",
	"variable_declaration",
	"internal_module",
	"module",
	"ambient_declaration",
}

type builder struct {
	src     []byte
	checker *frontend.Checker
	docs    bool

	symbols map[string]model.Symbol
	errors  []string
}

func newBuilder(source string, checker *frontend.Checker, extractDocs bool) *builder {
	return &builder{
		src:     []byte(source),
		checker: checker,
		docs:    extractDocs,
		symbols: make(map[string]model.Symbol),
	}
}

// buildModule walks the program's top-level statements. When the module
// contains explicit export statements, only exported declarations form the
// API surface; a plain declaration script exports everything it declares.
func (b *builder) buildModule(root *sitter.Node, analysis *model.ModuleAnalysis) {
	if root.HasError() {
		b.errors = append(b.errors, "source contains syntax errors, analysis is best-effort")
	}

	hasExports := false
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if root.NamedChild(i).Type() == "export_statement" {
			hasExports = true
			break
		}
	}

	var pendingDoc *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			pendingDoc = child
			continue
		}

		doc := b.takeDoc(pendingDoc, child)
		pendingDoc = nil

		decl, mods := b.unwrap(child)
		if decl == nil {
			continue
		}
		if hasExports && !hasModifier(mods, model.ModifierExport) {
			continue
		}

		nodes, err := b.buildDeclaration(decl, "", mods, doc)
		if err != nil {
			b.errors = append(b.errors, err.Error())
			continue
		}
		for _, n := range nodes {
			analysis.Exports.Set(n.Name, n)
		}
	}

	analysis.Errors = append(analysis.Errors, b.errors...)
	for path, sym := range b.symbols {
		analysis.Symbols[path] = sym
	}
}

// unwrap strips export and ambient wrappers, collecting the modifiers they
// imply, and returns the wrapped declaration.
func (b *builder) unwrap(node *sitter.Node) (*sitter.Node, []model.Modifier) {
	var mods []model.Modifier
	for {
		switch node.Type() {
		case "export_statement":
			mods = append(mods, model.ModifierExport)
			if frontend.HasTokenChild(node, "default") {
				mods = append(mods, model.ModifierDefault)
			}
			inner := node.ChildByFieldName("declaration")
			if inner == nil {
				inner = frontend.FindNamedChild(node, declarationTypes...)
			}
			if inner == nil {
				return nil, mods
			}
			node = inner
		case "ambient_declaration":
			mods = append(mods, model.ModifierDeclare)
			inner := frontend.FindNamedChild(node, declarationTypes...)
			if inner == nil {
				return nil, mods
			}
			node = inner
		default:
			return node, mods
		}
	}
}

// buildDeclaration dispatches one declaration node. Variable declarations
// may introduce several exports, hence the slice result.
func (b *builder) buildDeclaration(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) ([]*model.AnalyzableNode, error) {
	switch decl.Type() {
	case "function_declaration", "function_signature", "generator_function_declaration":
		n, err := b.buildFunction(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "class_declaration", "abstract_class_declaration":
		n, err := b.buildClass(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "interface_declaration":
		n, err := b.buildInterface(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "type_alias_declaration":
		n, err := b.buildTypeAlias(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "enum_declaration":
		n, err := b.buildEnum(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "lexical_declaration", "variable_declaration":
		return b.buildVariables(decl, parentPath, mods, doc)
	case "internal_module", "module":
		n, err := b.buildNamespace(decl, parentPath, mods, doc)
		return wrapNode(n, err)
	case "ERROR":
		return nil, erro.New("malformed declaration: %s", firstLine(frontend.NodeText(decl, b.src)))
	}
	return nil, nil
}

func wrapNode(n *model.AnalyzableNode, err error) ([]*model.AnalyzableNode, error) {
	if err != nil || n == nil {
		return nil, err
	}
	return []*model.AnalyzableNode{n}, nil
}

func (b *builder) buildFunction(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := b.declName(decl)
	if name == "" {
		return nil, erro.New("function declaration without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}
	if decl.HasError() {
		return nil, erro.New("malformed function declaration %q", name)
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindFunction)
	b.applyModifiers(node, mods)
	if frontend.HasTokenChild(decl, "async") {
		node.Modifiers.Add(model.ModifierAsync)
	}
	if decl.Type() == "generator_function_declaration" || frontend.HasTokenChild(decl, "*") {
		node.Modifiers.Add(model.ModifierGenerator)
	}
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)

	b.buildTypeParameters(node, decl.ChildByFieldName("type_parameters"))
	b.buildParameters(node, decl.ChildByFieldName("parameters"))
	b.applyReturnType(node, decl)

	b.symbols[path] = decl
	return node, nil
}

func (b *builder) buildClass(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := b.declName(decl)
	if name == "" {
		return nil, erro.New("class declaration without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindClass)
	b.applyModifiers(node, mods)
	if decl.Type() == "abstract_class_declaration" || frontend.HasTokenChild(decl, "abstract") {
		node.Modifiers.Add(model.ModifierAbstract)
	}
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)
	b.buildTypeParameters(node, decl.ChildByFieldName("type_parameters"))

	heritage := decl
	if h := frontend.FindNamedChild(decl, "class_heritage"); h != nil {
		heritage = h
	}
	node.Extends = frontend.CollectTypeNames(frontend.FindNamedChild(heritage, "extends_clause"), b.src)
	node.Implements = frontend.CollectTypeNames(frontend.FindNamedChild(heritage, "implements_clause"), b.src)

	node.TypeInfo.Signature = headerSignature("class", name)
	b.buildClassMembers(node, frontend.FindNamedChild(decl, "class_body"))

	b.symbols[path] = decl
	return node, nil
}

func (b *builder) buildInterface(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := b.declName(decl)
	if name == "" {
		return nil, erro.New("interface declaration without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindInterface)
	b.applyModifiers(node, mods)
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)
	b.buildTypeParameters(node, decl.ChildByFieldName("type_parameters"))

	node.Extends = frontend.CollectTypeNames(
		frontend.FindNamedChild(decl, "extends_type_clause", "extends_clause"), b.src)
	node.TypeInfo.Signature = headerSignature("interface", name)

	body := frontend.FindNamedChild(decl, "interface_body", "object_type")
	b.buildObjectMembers(node, body)

	b.symbols[path] = decl
	return node, nil
}

func (b *builder) buildTypeAlias(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := b.declName(decl)
	if name == "" {
		return nil, erro.New("type alias without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindTypeAlias)
	b.applyModifiers(node, mods)
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)
	b.buildTypeParameters(node, decl.ChildByFieldName("type_parameters"))

	value := decl.ChildByFieldName("value")
	if frontend.IsObjectType(value) {
		// Object-shaped aliases are analyzed structurally, like
		// interfaces: members become children, changes nest.
		node.TypeInfo.Signature = headerSignature("type", name)
		b.buildObjectMembers(node, value)
		b.checker.RegisterType(path, node.TypeInfo.Signature, nil)
	} else {
		sig := frontend.TypeText(value, b.src)
		members := frontend.UnionMemberTexts(value, b.src)
		node.TypeInfo.Signature = sig
		b.checker.RegisterType(path, sig, members)
		if len(members) > 0 {
			b.checker.RegisterAliasUnion(name, members)
		}
	}

	b.symbols[path] = decl
	return node, nil
}

func (b *builder) buildEnum(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := b.declName(decl)
	if name == "" {
		return nil, erro.New("enum declaration without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindEnum)
	b.applyModifiers(node, mods)
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)
	node.TypeInfo.Signature = headerSignature("enum", name)

	body := frontend.FindNamedChild(decl, "enum_body")
	if body != nil {
		var pendingDoc *sitter.Node
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() == "comment" {
				pendingDoc = member
				continue
			}
			doc := b.takeDoc(pendingDoc, member)
			pendingDoc = nil
			b.buildEnumMember(node, member, doc)
		}
	}

	b.symbols[path] = decl
	return node, nil
}

func (b *builder) buildEnumMember(parent *model.AnalyzableNode, member *sitter.Node, doc string) {
	var name, value string
	switch member.Type() {
	case "enum_assignment":
		name = strings.Trim(frontend.NodeText(member.ChildByFieldName("name"), b.src), `"'`)
		value = frontend.TypeText(member.ChildByFieldName("value"), b.src)
	case "property_identifier", "identifier", "string":
		name = strings.Trim(frontend.NodeText(member, b.src), `"'`)
	default:
		return
	}
	if name == "" {
		return
	}

	path := model.JoinPath(parent.Path, name)
	node := model.NewNode(path, name, model.KindEnumMember)
	node.TypeInfo.Signature = value
	node.Location = b.rangeOf(member)
	b.applyDoc(node, doc)
	b.checker.RegisterType(path, value, nil)
	b.symbols[path] = member
	parent.AddChild(node)
}

func (b *builder) buildVariables(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) ([]*model.AnalyzableNode, error) {
	isConst := frontend.HasTokenChild(decl, "const")

	var out []*model.AnalyzableNode
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		name := frontend.NodeText(declarator.ChildByFieldName("name"), b.src)
		if name == "" {
			continue
		}

		path := model.JoinPath(parentPath, name)
		node := model.NewNode(path, name, model.KindVariable)
		b.applyModifiers(node, mods)
		if isConst {
			node.Modifiers.Add(model.ModifierReadonly)
		}
		node.Location = b.rangeOf(declarator)
		b.applyDoc(node, doc)

		typeNode := frontend.AnnotatedType(declarator.ChildByFieldName("type"))
		sig := frontend.TypeText(typeNode, b.src)
		node.TypeInfo.Signature = sig
		b.checker.RegisterType(path, sig, frontend.UnionMemberTexts(typeNode, b.src))

		if value := declarator.ChildByFieldName("value"); value != nil {
			b.setDefaultValue(node, frontend.TypeText(value, b.src))
		}

		b.symbols[path] = declarator
		out = append(out, node)
	}
	return out, nil
}

func (b *builder) buildNamespace(decl *sitter.Node, parentPath string, mods []model.Modifier, doc string) (*model.AnalyzableNode, error) {
	name := strings.Trim(frontend.NodeText(decl.ChildByFieldName("name"), b.src), `"'`)
	if name == "" {
		return nil, erro.New("namespace without a name: %s", firstLine(frontend.NodeText(decl, b.src)))
	}

	path := model.JoinPath(parentPath, name)
	node := model.NewNode(path, name, model.KindNamespace)
	b.applyModifiers(node, mods)
	node.Location = b.rangeOf(decl)
	b.applyDoc(node, doc)
	node.TypeInfo.Signature = headerSignature("namespace", name)

	body := decl.ChildByFieldName("body")
	if body == nil {
		body = frontend.FindNamedChild(decl, "statement_block")
	}
	if body != nil {
		var pendingDoc *sitter.Node
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			if child.Type() == "comment" {
				pendingDoc = child
				continue
			}
			memberDoc := b.takeDoc(pendingDoc, child)
			pendingDoc = nil

			inner, innerMods := b.unwrap(child)
			if inner == nil {
				continue
			}
			members, err := b.buildDeclaration(inner, path, innerMods, memberDoc)
			if err != nil {
				b.errors = append(b.errors, err.Error())
				continue
			}
			for _, m := range members {
				node.AddChild(m)
			}
		}
	}

	b.symbols[path] = decl
	return node, nil
}

// declName extracts the declared name of a node.
func (b *builder) declName(decl *sitter.Node) string {
	return frontend.NodeText(decl.ChildByFieldName("name"), b.src)
}

// applyReturnType sets the node's canonical signature to its return type
// and registers it with the checker. Parameter changes are reported through
// parameter children, so the callable's own signature is its return type.
func (b *builder) applyReturnType(node *model.AnalyzableNode, decl *sitter.Node) {
	ret := frontend.AnnotatedType(decl.ChildByFieldName("return_type"))
	sig := frontend.TypeText(ret, b.src)
	node.TypeInfo.Signature = sig
	b.checker.RegisterType(node.Path, sig, frontend.UnionMemberTexts(ret, b.src))
}

func (b *builder) applyModifiers(node *model.AnalyzableNode, mods []model.Modifier) {
	for _, m := range mods {
		node.Modifiers.Add(m)
	}
}

func (b *builder) setDefaultValue(node *model.AnalyzableNode, value string) {
	if value == "" {
		return
	}
	if node.Metadata == nil {
		node.Metadata = &model.NodeMetadata{}
	}
	if node.Metadata.DefaultValue == "" {
		node.Metadata.DefaultValue = value
	}
}

// takeDoc decides whether a trailing comment belongs to the declaration
// that follows it: it must end on the line directly above (or the same
// line as) the declaration start.
func (b *builder) takeDoc(comment, decl *sitter.Node) string {
	if comment == nil || decl == nil {
		return ""
	}
	gap := int(decl.StartPoint().Row) - int(comment.EndPoint().Row)
	if gap < 0 || gap > 1 {
		return ""
	}
	return frontend.NodeText(comment, b.src)
}

// rangeOf converts a node span to a 1-based source range with code-point
// columns.
func (b *builder) rangeOf(node *sitter.Node) *model.SourceRange {
	return &model.SourceRange{
		Start: b.position(int(node.StartByte()), int(node.StartPoint().Row)),
		End:   b.position(int(node.EndByte()), int(node.EndPoint().Row)),
	}
}

func (b *builder) position(offset, row int) model.SourcePosition {
	if offset > len(b.src) {
		offset = len(b.src)
	}
	lineStart := 0
	if idx := strings.LastIndexByte(string(b.src[:offset]), '\n'); idx >= 0 {
		lineStart = idx + 1
	}
	return model.SourcePosition{
		Line:   row + 1,
		Column: utf8.RuneCount(b.src[lineStart:offset]) + 1,
		Offset: offset,
	}
}

// headerSignature builds the canonical declaration-header string for
// container kinds. Members and heritage are deliberately excluded: member
// changes surface as nested changes and heritage changes through their own
// dimension, never as a header type change.
func headerSignature(keyword, name string) string {
	return keyword + " " + name
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func hasModifier(mods []model.Modifier, want model.Modifier) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}
	return false
}
