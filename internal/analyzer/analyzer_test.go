package analyzer

import (
	"context"
	"testing"

	"github.com/apivet/apivet/model"
)

func analyze(t *testing.T, source string) *model.ModuleAnalysis {
	t.Helper()
	return New().Analyze(context.Background(), source, Options{ExtractDocMetadata: true})
}

func mustExport(t *testing.T, analysis *model.ModuleAnalysis, name string) *model.AnalyzableNode {
	t.Helper()
	node, ok := analysis.Exports.Get(name)
	if !ok {
		t.Fatalf("export %q not found; have %v (errors: %v)", name, analysis.Exports.Names(), analysis.Errors)
	}
	return node
}

func TestAnalyzeFunction(t *testing.T) {
	analysis := analyze(t, `function greet(name: string, prefix?: string): string;`)

	fn := mustExport(t, analysis, "greet")
	if fn.Kind != model.KindFunction {
		t.Errorf("Kind = %s, want function", fn.Kind)
	}
	if fn.Path != "greet" {
		t.Errorf("Path = %q, want greet", fn.Path)
	}
	if fn.TypeInfo.Signature != "string" {
		t.Errorf("Signature = %q, want string (return type)", fn.TypeInfo.Signature)
	}

	params := fn.Parameters()
	if len(params) != 2 {
		t.Fatalf("parameters = %d, want 2", len(params))
	}
	if params[0].Name != "name" || params[0].Type != "string" || params[0].Optional {
		t.Errorf("params[0] = %+v", params[0])
	}
	if params[1].Name != "prefix" || !params[1].Optional {
		t.Errorf("params[1] = %+v, want optional prefix", params[1])
	}

	name, ok := fn.Child("name")
	if !ok {
		t.Fatal("parameter child name missing")
	}
	if name.Path != "greet.name" || name.Kind != model.KindParameter {
		t.Errorf("child = %+v", name)
	}
}

func TestAnalyzeDeclareFunction(t *testing.T) {
	analysis := analyze(t, `declare function f(x: number): void;`)

	fn := mustExport(t, analysis, "f")
	if !fn.Modifiers.Has(model.ModifierDeclare) {
		t.Error("declare modifier missing")
	}
	if fn.TypeInfo.Signature != "void" {
		t.Errorf("Signature = %q, want void", fn.TypeInfo.Signature)
	}
}

func TestAnalyzeRestParameter(t *testing.T) {
	analysis := analyze(t, `function log(...args: string[]): void;`)

	fn := mustExport(t, analysis, "log")
	params := fn.Parameters()
	if len(params) != 1 {
		t.Fatalf("parameters = %d, want 1", len(params))
	}
	if params[0].Name != "args" || !params[0].Rest {
		t.Errorf("params[0] = %+v, want rest args", params[0])
	}
}

func TestAnalyzeInterface(t *testing.T) {
	analysis := analyze(t, `
interface Config {
  timeout: number;
  readonly name: string;
  retries?: number;
  run(limit: number): boolean;
}
`)

	iface := mustExport(t, analysis, "Config")
	if iface.Kind != model.KindInterface {
		t.Fatalf("Kind = %s, want interface", iface.Kind)
	}
	if iface.ChildCount() != 4 {
		t.Fatalf("children = %d, want 4 (%v)", iface.ChildCount(), iface.Children().Names())
	}

	timeout, _ := iface.Child("timeout")
	if timeout == nil || timeout.TypeInfo.Signature != "number" || timeout.Kind != model.KindProperty {
		t.Errorf("timeout = %+v", timeout)
	}
	if timeout.Path != "Config.timeout" {
		t.Errorf("timeout.Path = %q", timeout.Path)
	}

	name, _ := iface.Child("name")
	if name == nil || !name.Modifiers.Has(model.ModifierReadonly) {
		t.Error("readonly modifier missing on name")
	}

	retries, _ := iface.Child("retries")
	if retries == nil || !retries.Modifiers.Has(model.ModifierOptional) {
		t.Error("optional modifier missing on retries")
	}

	run, _ := iface.Child("run")
	if run == nil || run.Kind != model.KindMethod {
		t.Errorf("run = %+v, want method", run)
	}
	if run != nil && run.TypeInfo.Signature != "boolean" {
		t.Errorf("run return = %q, want boolean", run.TypeInfo.Signature)
	}
}

func TestAnalyzeInterfaceExtends(t *testing.T) {
	analysis := analyze(t, `interface Derived extends Base { x: number; }`)

	iface := mustExport(t, analysis, "Derived")
	if len(iface.Extends) != 1 || iface.Extends[0] != "Base" {
		t.Errorf("Extends = %v, want [Base]", iface.Extends)
	}
}

func TestAnalyzeTypeAliasUnion(t *testing.T) {
	analysis := analyze(t, `type Status = "active" | "inactive";`)

	alias := mustExport(t, analysis, "Status")
	if alias.Kind != model.KindTypeAlias {
		t.Fatalf("Kind = %s, want type-alias", alias.Kind)
	}
	if alias.TypeInfo.Signature != `"active" | "inactive"` {
		t.Errorf("Signature = %q", alias.TypeInfo.Signature)
	}

	handle, ok := analysis.Checker.ResolveType("Status")
	if !ok {
		t.Fatal("checker cannot resolve Status")
	}
	members, isUnion := analysis.Checker.DecomposeUnion(handle)
	if !isUnion || len(members) != 2 {
		t.Fatalf("DecomposeUnion = %v, %v; want two members", members, isUnion)
	}
	if analysis.Checker.Stringify(members[0]) != `"active"` {
		t.Errorf("member[0] = %q", analysis.Checker.Stringify(members[0]))
	}
}

func TestAnalyzeAliasResolutionThroughChecker(t *testing.T) {
	analysis := analyze(t, `
type Status = "a" | "b";
interface Box { status: Status; }
`)

	handle, ok := analysis.Checker.ResolveType("Box.status")
	if !ok {
		t.Fatal("checker cannot resolve Box.status")
	}
	members, isUnion := analysis.Checker.DecomposeUnion(handle)
	if !isUnion || len(members) != 2 {
		t.Errorf("alias-typed property did not decompose: %v, %v", members, isUnion)
	}
}

func TestAnalyzeObjectTypeAlias(t *testing.T) {
	analysis := analyze(t, `type Point = { x: number; y: number };`)

	alias := mustExport(t, analysis, "Point")
	if alias.ChildCount() != 2 {
		t.Fatalf("children = %d, want 2", alias.ChildCount())
	}
	x, _ := alias.Child("x")
	if x == nil || x.Kind != model.KindProperty || x.TypeInfo.Signature != "number" {
		t.Errorf("x = %+v", x)
	}
	if len(alias.TypeInfo.Properties) != 2 {
		t.Errorf("TypeInfo.Properties = %d, want 2", len(alias.TypeInfo.Properties))
	}
}

func TestAnalyzeEnum(t *testing.T) {
	analysis := analyze(t, `
enum Color {
  Red = 1,
  Green = 2,
}
`)

	enum := mustExport(t, analysis, "Color")
	if enum.Kind != model.KindEnum {
		t.Fatalf("Kind = %s, want enum", enum.Kind)
	}
	if enum.ChildCount() != 2 {
		t.Fatalf("members = %d, want 2 (%v)", enum.ChildCount(), enum.Children().Names())
	}

	red, _ := enum.Child("Red")
	if red == nil || red.Kind != model.KindEnumMember {
		t.Fatalf("Red = %+v", red)
	}
	if red.Path != "Color.Red" {
		t.Errorf("Red.Path = %q", red.Path)
	}
	if red.TypeInfo.Signature != "1" {
		t.Errorf("Red value = %q, want 1", red.TypeInfo.Signature)
	}
}

func TestAnalyzeEnumPlainMembers(t *testing.T) {
	analysis := analyze(t, `enum Direction { Up, Down }`)

	enum := mustExport(t, analysis, "Direction")
	if enum.ChildCount() != 2 {
		t.Fatalf("members = %d, want 2 (%v)", enum.ChildCount(), enum.Children().Names())
	}
	up, _ := enum.Child("Up")
	if up == nil || up.TypeInfo.Signature != "" {
		t.Errorf("Up = %+v, want implicit value", up)
	}
}

func TestAnalyzeClass(t *testing.T) {
	analysis := analyze(t, `
declare class Point {
  x: number;
  readonly tag: string;
  static origin: Point;
  move(dx: number, dy: number): void;
}
`)

	class := mustExport(t, analysis, "Point")
	if class.Kind != model.KindClass {
		t.Fatalf("Kind = %s, want class", class.Kind)
	}

	x, _ := class.Child("x")
	if x == nil || x.Kind != model.KindProperty || x.TypeInfo.Signature != "number" {
		t.Errorf("x = %+v", x)
	}
	tag, _ := class.Child("tag")
	if tag == nil || !tag.Modifiers.Has(model.ModifierReadonly) {
		t.Error("readonly modifier missing on tag")
	}
	origin, _ := class.Child("origin")
	if origin == nil || !origin.Modifiers.Has(model.ModifierStatic) {
		t.Error("static modifier missing on origin")
	}
	move, _ := class.Child("move")
	if move == nil || move.Kind != model.KindMethod {
		t.Errorf("move = %+v, want method", move)
	}
	if move != nil && len(move.Parameters()) != 2 {
		t.Errorf("move parameters = %d, want 2", len(move.Parameters()))
	}
}

func TestAnalyzeAbstractClass(t *testing.T) {
	analysis := analyze(t, `declare abstract class Shape { abstract area(): number; }`)

	class := mustExport(t, analysis, "Shape")
	if !class.Modifiers.Has(model.ModifierAbstract) {
		t.Error("abstract modifier missing on class")
	}
}

func TestAnalyzeVariable(t *testing.T) {
	analysis := analyze(t, `declare const VERSION: string;`)

	v := mustExport(t, analysis, "VERSION")
	if v.Kind != model.KindVariable {
		t.Fatalf("Kind = %s, want variable", v.Kind)
	}
	if v.TypeInfo.Signature != "string" {
		t.Errorf("Signature = %q, want string", v.TypeInfo.Signature)
	}
	if !v.Modifiers.Has(model.ModifierReadonly) {
		t.Error("const should carry readonly")
	}
}

func TestAnalyzeNamespace(t *testing.T) {
	analysis := analyze(t, `
declare namespace utils {
  function clamp(value: number): number;
}
`)

	ns := mustExport(t, analysis, "utils")
	if ns.Kind != model.KindNamespace {
		t.Fatalf("Kind = %s, want namespace", ns.Kind)
	}
	clamp, ok := ns.Child("clamp")
	if !ok {
		t.Fatalf("namespace member clamp missing (%v)", ns.Children().Names())
	}
	if clamp.Path != "utils.clamp" {
		t.Errorf("clamp.Path = %q", clamp.Path)
	}
}

func TestAnalyzeGenerics(t *testing.T) {
	analysis := analyze(t, `function identity<T extends object = Error>(value: T): T;`)

	fn := mustExport(t, analysis, "identity")
	tps := fn.TypeInfo.TypeParameters
	if len(tps) != 1 {
		t.Fatalf("type parameters = %d, want 1", len(tps))
	}
	if tps[0].Name != "T" || tps[0].Constraint != "object" || tps[0].Default != "Error" {
		t.Errorf("type parameter = %+v", tps[0])
	}

	tp, ok := fn.Child("T")
	if !ok {
		t.Fatal("type parameter child missing")
	}
	if tp.Path != "identity<T>" {
		t.Errorf("tp.Path = %q, want identity<T>", tp.Path)
	}
}

func TestAnalyzeDocMetadata(t *testing.T) {
	analysis := analyze(t, `
/** @deprecated use g instead */
function f(): void;

/**
 * Does things.
 * @beta
 */
function g(): void;
`)

	f := mustExport(t, analysis, "f")
	if !f.IsDeprecated() {
		t.Fatal("f should be deprecated")
	}
	if f.Metadata.DeprecationMessage != "use g instead" {
		t.Errorf("DeprecationMessage = %q", f.Metadata.DeprecationMessage)
	}

	g := mustExport(t, analysis, "g")
	if g.Metadata == nil || g.Metadata.ReleaseTag != "beta" {
		t.Errorf("g metadata = %+v, want beta release tag", g.Metadata)
	}
}

func TestAnalyzeDocMetadataDisabled(t *testing.T) {
	analysis := New().Analyze(context.Background(), `
/** @deprecated */
function f(): void;
`, Options{ExtractDocMetadata: false})

	f := mustExport(t, analysis, "f")
	if f.IsDeprecated() {
		t.Error("doc metadata extracted despite being disabled")
	}
}

func TestAnalyzeExportFiltering(t *testing.T) {
	analysis := analyze(t, `
export function visible(): void;
declare function hidden(): void;
`)

	mustExport(t, analysis, "visible")
	if _, ok := analysis.Exports.Get("hidden"); ok {
		t.Error("unexported declaration leaked into exports")
	}

	visible, _ := analysis.Exports.Get("visible")
	if !visible.Modifiers.Has(model.ModifierExport) {
		t.Error("export modifier missing")
	}
}

func TestAnalyzeScriptModeExportsEverything(t *testing.T) {
	analysis := analyze(t, `
function a(): void;
function b(): void;
`)
	if analysis.Exports.Len() != 2 {
		t.Errorf("exports = %d, want 2 in script mode", analysis.Exports.Len())
	}
}

func TestAnalyzeLocations(t *testing.T) {
	analysis := analyze(t, `function located(): void;`)

	fn := mustExport(t, analysis, "located")
	if fn.Location == nil {
		t.Fatal("location missing")
	}
	if fn.Location.Start.Line != 1 || fn.Location.Start.Column != 1 {
		t.Errorf("Start = %+v, want 1:1", fn.Location.Start)
	}
	if fn.Location.End.Offset <= fn.Location.Start.Offset {
		t.Errorf("range = %+v, want start < end", fn.Location)
	}
}

func TestAnalyzeBestEffortOnErrors(t *testing.T) {
	analysis := analyze(t, `
function good(): void;
function ((((
`)

	if _, ok := analysis.Exports.Get("good"); !ok {
		t.Error("well-formed declaration lost because of a malformed neighbor")
	}
	if len(analysis.Errors) == 0 {
		t.Error("malformed source produced no analysis errors")
	}
}

func TestAnalyzeOrderPreserved(t *testing.T) {
	analysis := analyze(t, `
function zeta(): void;
function alpha(): void;
interface Mid { x: number; }
`)

	names := analysis.Exports.Names()
	want := []string{"zeta", "alpha", "Mid"}
	if len(names) != len(want) {
		t.Fatalf("exports = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("exports[%d] = %q, want %q (declaration order)", i, names[i], want[i])
		}
	}
}
