// Package typesys implements type-text parsing, equality, compatibility,
// and alias re-resolution over the graph package's Types family, per §4.2.
// Grounded on the teacher's inspector/golang inspector, which derives type
// text from go/ast/go/printer rather than hand-rolled string scanning — this
// package does the structural-scan equivalent the spec calls for, since the
// three frontends here are tree-sitter based rather than go/ast based and so
// have no printer to delegate to.
package typesys

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cpgkit/cpg/graph"
)

// Wrapper tags one postfix modifier in source order: pointer, reference, or
// fixed/unknown-length array.
type WrapperKind int

const (
	WrapPointer WrapperKind = iota
	WrapReference
	WrapArray
)

// Wrapper is one entry in the modifier stack built while parsing type text.
type Wrapper struct {
	Kind   WrapperKind
	Length int // array length, or -1 if unknown/unspecified
}

// ParsedType is the syntactic result of parsing a type-text fragment: a
// canonicalized qualifier set, a base identifier, and an ordered wrapper
// stack recording `*`, `&`, and `[N]` modifiers in source order.
type ParsedType struct {
	Qualifiers []string // sorted, e.g. ["const", "volatile"]
	Base       string
	Wrappers   []Wrapper
	Variadic   bool // `...` marker, per S2

	// FunctionSignature is set when the text matched the `(*name)(args)`
	// function-pointer shape; Base then holds the inner function's declared
	// name (possibly empty for an anonymous function-pointer type).
	FunctionSignature *FunctionShape

	// Node is the graph node this ParsedType resolves to: an ObjectType
	// (possibly later carrying a Record edge via Refresh), a chain of
	// PointerType/ReferenceType/ArrayType wrapping it, or an UnknownType if
	// the text was not parseable at all.
	Node *graph.Node
}

// FunctionShape captures a structurally recognized function-pointer type.
type FunctionShape struct {
	ReturnText string
	ParamTexts []string
}

var qualifierWords = map[string]bool{
	"const": true, "volatile": true, "static": true, "extern": true,
}

// Parse parses typeText syntactically: qualifiers are collected, the base
// identifier is extracted, and postfix modifiers produce the wrapper stack.
// If resolveAlias is true and base names a known alias (via the resolve
// callback), the alias's own parse result is merged underneath the
// wrappers collected here. g is the graph to allocate the resulting Type
// nodes in.
func Parse(g *graph.Graph, typeText string, resolveAlias bool, resolve func(name string) (string, bool)) *ParsedType {
	text := strings.TrimSpace(typeText)
	if text == "" {
		pt := &ParsedType{Node: g.NewUnknownType(typeText).Node}
		return pt
	}

	if shape, ok := parseFunctionPointer(text); ok {
		pt := &ParsedType{Base: shape.name, FunctionSignature: &FunctionShape{ReturnText: shape.ret, ParamTexts: shape.params}}
		pt.Node = buildFunctionTypeNode(g, pt)
		return pt
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		pt := &ParsedType{Node: g.NewUnknownType(typeText).Node}
		return pt
	}

	var quals []string
	i := 0
	for ; i < len(tokens); i++ {
		if qualifierWords[tokens[i]] {
			quals = append(quals, tokens[i])
			continue
		}
		break
	}
	if i >= len(tokens) {
		pt := &ParsedType{Qualifiers: sortedUnique(quals), Node: g.NewUnknownType(typeText).Node}
		return pt
	}

	base := tokens[i]
	i++

	var wrappers []Wrapper
	variadic := false
	rest := strings.Join(tokens[i:], "")
	for idx := 0; idx < len(rest); idx++ {
		switch rest[idx] {
		case '*':
			wrappers = append(wrappers, Wrapper{Kind: WrapPointer})
		case '&':
			wrappers = append(wrappers, Wrapper{Kind: WrapReference})
		case '[':
			end := strings.IndexByte(rest[idx:], ']')
			length := -1
			if end > 1 {
				if n, err := strconv.Atoi(strings.TrimSpace(rest[idx+1 : idx+end])); err == nil {
					length = n
				}
			}
			wrappers = append(wrappers, Wrapper{Kind: WrapArray, Length: length})
			if end > 0 {
				idx += end
			}
		}
	}
	if strings.Contains(text, "...") {
		variadic = true
	}

	pt := &ParsedType{
		Qualifiers: sortedUnique(quals),
		Base:       base,
		Wrappers:   wrappers,
		Variadic:   variadic,
	}

	if resolveAlias && resolve != nil {
		if aliasText, ok := resolve(base); ok && aliasText != base {
			aliased := Parse(g, aliasText, false, nil)
			pt.Wrappers = append(append([]Wrapper{}, aliased.Wrappers...), pt.Wrappers...)
			pt.Base = aliased.Base
		}
	}

	pt.Node = buildObjectTypeNode(g, pt)
	return pt
}

func buildObjectTypeNode(g *graph.Graph, pt *ParsedType) *graph.Node {
	ot := g.NewObjectType(pt.Base)
	ot.Qualifiers = pt.Qualifiers
	var n *graph.Node = ot.Node
	for _, w := range pt.Wrappers {
		switch w.Kind {
		case WrapPointer:
			n = g.NewPointerType(n).Node
		case WrapReference:
			n = g.NewReferenceType(n).Node
		case WrapArray:
			n = g.NewArrayType(n, w.Length).Node
		}
	}
	return n
}

func buildFunctionTypeNode(g *graph.Graph, pt *ParsedType) *graph.Node {
	var ret *graph.Node
	if pt.FunctionSignature.ReturnText != "" {
		ret = Parse(g, pt.FunctionSignature.ReturnText, false, nil).Node
	}
	ft := g.NewFunctionType(ret)
	ft.Name = pt.Base
	for _, p := range pt.FunctionSignature.ParamTexts {
		ft.AddParameter(Parse(g, p, false, nil).Node)
	}
	return ft.Node
}

func tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t':
			flush()
		case r == '*' || r == '&' || r == '[' || r == ']':
			flush()
			cur.WriteRune(r)
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	// Re-merge a lone '[' 'N' ']' sequence back to a single rest stream is
	// handled by the caller's rest-string scan; here we only split off
	// qualifiers and the base identifier cleanly.
	return tokens
}

type funcPointerShape struct {
	ret    string
	name   string
	params []string
}

// parseFunctionPointer structurally recognizes `ReturnType (*name)(params)`.
func parseFunctionPointer(text string) (funcPointerShape, bool) {
	openParen := strings.Index(text, "(*")
	if openParen < 0 {
		return funcPointerShape{}, false
	}
	closeNamedParen := strings.Index(text[openParen:], ")")
	if closeNamedParen < 0 {
		return funcPointerShape{}, false
	}
	closeNamedParen += openParen
	name := strings.TrimSpace(text[openParen+2 : closeNamedParen])

	argStart := strings.Index(text[closeNamedParen:], "(")
	if argStart < 0 {
		return funcPointerShape{}, false
	}
	argStart += closeNamedParen
	argEnd := strings.LastIndex(text, ")")
	if argEnd <= argStart {
		return funcPointerShape{}, false
	}

	ret := strings.TrimSpace(text[:openParen])
	argsText := strings.TrimSpace(text[argStart+1 : argEnd])
	var params []string
	if argsText != "" {
		for _, p := range strings.Split(argsText, ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}
	return funcPointerShape{ret: ret, name: name, params: params}, true
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// String renders pt back to canonical type text: qualifiers, base, then
// postfix wrappers in source order — used by the round-trip property test.
func (pt *ParsedType) String() string {
	var b strings.Builder
	for _, q := range pt.Qualifiers {
		b.WriteString(q)
		b.WriteString(" ")
	}
	if pt.FunctionSignature != nil {
		b.WriteString(pt.FunctionSignature.ReturnText)
		b.WriteString(" (*")
		b.WriteString(pt.Base)
		b.WriteString(")(")
		b.WriteString(strings.Join(pt.FunctionSignature.ParamTexts, ", "))
		b.WriteString(")")
		return b.String()
	}
	b.WriteString(pt.Base)
	for _, w := range pt.Wrappers {
		switch w.Kind {
		case WrapPointer:
			b.WriteString("*")
		case WrapReference:
			b.WriteString("&")
		case WrapArray:
			if w.Length >= 0 {
				b.WriteString("[" + strconv.Itoa(w.Length) + "]")
			} else {
				b.WriteString("[]")
			}
		}
	}
	if pt.Variadic {
		b.WriteString("...")
	}
	return b.String()
}

// IsVariadic reports the `...` marker, for S2/printf-style detection.
func (pt *ParsedType) IsVariadic() bool { return pt.Variadic }

// Equals compares the canonicalized qualifier set and the wrapper stack,
// per §4.2.
func Equals(a, b *ParsedType) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Base != b.Base || len(a.Wrappers) != len(b.Wrappers) {
		return false
	}
	for i := range a.Wrappers {
		if a.Wrappers[i] != b.Wrappers[i] {
			return false
		}
	}
	return stringSetEquals(a.Qualifiers, b.Qualifiers)
}

func stringSetEquals(a, b []string) bool {
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

var numericBuiltins = map[string]int{
	"char": 1, "short": 2, "int": 3, "long": 4, "float": 5, "double": 6,
}

// IsCompatible permits widening among numeric builtins, derived-to-base
// conversion once the inheritance pass has populated super-class edges, and
// pointer-to-void universality, per §4.2. superClassesOf looks up a record's
// known (possibly still-text) super-class names.
func IsCompatible(from, to *ParsedType, superClassesOf func(recordName string) []string) bool {
	if Equals(from, to) {
		return true
	}
	if len(from.Wrappers) == 1 && from.Wrappers[0].Kind == WrapPointer &&
		len(to.Wrappers) == 1 && to.Wrappers[0].Kind == WrapPointer {
		if to.Base == "void" || from.Base == "void" {
			return true
		}
	}
	if len(from.Wrappers) == 0 && len(to.Wrappers) == 0 {
		fr, frOK := numericBuiltins[from.Base]
		tr, trOK := numericBuiltins[to.Base]
		if frOK && trOK {
			return fr <= tr
		}
	}
	if superClassesOf != nil && len(from.Wrappers) == len(to.Wrappers) {
		for _, super := range superClassesOf(from.Base) {
			if super == to.Base {
				return true
			}
		}
	}
	return false
}

// Refresh re-parses pt's base against an up-to-date alias/record resolver,
// once more declarations are known than were at initial parse time (e.g.
// after TypeResolver's first iteration). Returns a new ParsedType; callers
// replace their stored one and re-point any Node references.
func Refresh(g *graph.Graph, pt *ParsedType, originalText string, resolve func(name string) (string, bool)) *ParsedType {
	return Parse(g, originalText, true, resolve)
}
