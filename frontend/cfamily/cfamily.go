// Package cfamily is the C/C++ frontend: it drives tree-sitter's cpp/c
// grammars over a translation unit and builds the corresponding CPG
// subtree, applying the reparenting rule for records (field/method/
// constructor promotion) as it goes. Grounded on
// other_examples/…hargabyte-cortex__internal-extract-callgraph_cpp.go.go and
// …callgraph_c.go.go for the C-family tree-sitter node-kind vocabulary
// (function_definition, struct_specifier/class_specifier, field_declaration,
// call_expression, field_expression), and on the teacher's
// inspector/golang/inspector_tree_sitter.go for the overall "walk named
// children, dispatch on Type(), extract via ChildByFieldName" shape.
package cfamily

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/afs"

	"github.com/cpgkit/cpg/cpgerr"
	"github.com/cpgkit/cpg/frontend"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/nativeparser"
	"github.com/cpgkit/cpg/scope"
	"github.com/cpgkit/cpg/typesys"
)

// Frontend implements frontend.Frontend for C and C++ sources.
type Frontend struct {
	scopes       *scope.Manager
	comments     frontend.CommentAttacher
	recordByName map[string]*graph.RecordDeclaration

	fs       afs.Service
	rootDir  string
	included map[string]bool // resolved include paths already inlined, guards cycles/double-inclusion
}

// New creates a C/C++ frontend. A fresh Frontend (and therefore a fresh
// ScopeManager) is used per parse call by the translation manager, per §5's
// "no shared mutable state across concurrent frontends." rootDir is the
// include search root (§6's "root directory used to compute include search
// roots"); fs reads included files the same way the translation manager
// reads the top-level input files (viant/afs, a direct teacher dependency).
func New(rootDir string, fs afs.Service) *Frontend {
	if fs == nil {
		fs = afs.New()
	}
	return &Frontend{
		scopes:       scope.NewManager(),
		recordByName: map[string]*graph.RecordDeclaration{},
		fs:           fs,
		rootDir:      rootDir,
		included:     map[string]bool{},
	}
}

func (f *Frontend) NamespaceDelimiter() string { return "::" }

// Parse reads src as C/C++, producing a TranslationUnitDeclaration rooted
// at the global scope.
func (f *Frontend) Parse(ctx context.Context, g *graph.Graph, path string, src []byte) (*graph.TranslationUnitDeclaration, error) {
	ext := extOf(path)
	tree, err := nativeparser.ParseString(ctx, nativeparser.CFamily, ext, src)
	if err != nil {
		return nil, &cpgerr.ParseFailure{File: path, Cause: err}
	}
	defer tree.FreeTree()

	tu := g.NewTranslationUnit(path)
	tu.Scope = f.scopes.GlobalScope()

	f.included[absPath(path)] = true

	root := tree.RootNode()
	for _, child := range nativeparser.ChildrenOf(root) {
		decls, err := f.handleTopLevel(ctx, g, tree, path, child)
		if err != nil {
			return nil, &cpgerr.TranslationException{File: path, Cause: err}
		}
		for _, decl := range decls {
			if decl != nil {
				tu.AddDeclaration(decl)
			}
		}
	}
	return tu, nil
}

func extOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}

func (f *Frontend) loc(tree *nativeparser.Tree, path string, n *sitter.Node) graph.Location {
	sl, sc, el, ec := tree.RangeOf(n)
	return graph.Location{FileURI: path, Region: graph.Region{StartLine: sl, StartColumn: sc, EndLine: el, EndColumn: ec}}
}

// handleTopLevel dispatches a translation-unit-level raw node to its
// declaration handler, per the frontend protocol's Handler dispatch map.
// Most handlers produce exactly one declaration; preproc_include produces
// however many top-level declarations the included file contributes (zero
// if it couldn't be resolved), so every case returns a slice.
func (f *Frontend) handleTopLevel(ctx context.Context, g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) ([]*graph.Node, error) {
	switch nativeparser.KindOf(n) {
	case "preproc_include":
		return f.handleInclude(ctx, g, tree, path, n)
	case "struct_specifier", "class_specifier":
		return one(f.handleRecord(g, tree, path, n).Node), nil
	case "function_definition":
		return one(f.handleFunctionDefinition(g, tree, path, n)), nil
	case "declaration":
		return one(f.handleDeclaration(g, tree, path, n)), nil
	case "namespace_definition":
		return one(f.handleNamespace(ctx, g, tree, path, n).Node), nil
	default:
		return one(g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))), nil
	}
}

// one wraps a possibly-nil single declaration into the []*graph.Node shape
// handleTopLevel's callers expect, dropping it if nil (a completed stub
// returns nil from handleFunctionDefinition, for instance).
func one(n *graph.Node) []*graph.Node {
	if n == nil {
		return nil
	}
	return []*graph.Node{n}
}

// absPath normalizes path for use as an include-guard key so the same file
// reached via two different relative spellings is still recognized as
// already included.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// handleInclude resolves a #include directive by reading the referenced
// file and walking it through the same handleTopLevel dispatch used for the
// including file's own top-level nodes, so a record declared in a header
// lands in this Frontend's shared recordByName/scope state exactly as if it
// had been declared directly in the including file (the merge step S1
// requires: an out-of-class `SomeClass::DoSomething() {}` in the source
// file can then find the `SomeClass` record the header declared). System
// headers and anything outside rootDir that can't be read are left as a
// no-op, matching the "a file that fails to parse is skipped" tolerance.
func (f *Frontend) handleInclude(ctx context.Context, g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) ([]*graph.Node, error) {
	raw := fieldText(tree, n, "path")
	name := strings.Trim(raw, `"<>`)
	if name == "" {
		return nil, nil
	}

	quoted := strings.HasPrefix(raw, `"`)
	candidates := make([]string, 0, 2)
	if quoted {
		candidates = append(candidates, filepath.Join(filepath.Dir(path), name))
	}
	if f.rootDir != "" {
		candidates = append(candidates, filepath.Join(f.rootDir, name))
	}

	for _, candidate := range candidates {
		resolved := absPath(candidate)
		if f.included[resolved] {
			return nil, nil // already inlined (include guard / diamond include)
		}
		src, err := f.fs.DownloadWithURL(ctx, candidate)
		if err != nil || len(src) == 0 {
			continue
		}
		f.included[resolved] = true

		// A .h header takes the including file's grammar, so a header pulled
		// in by a C++ source is parsed as C++.
		incExt := extOf(candidate)
		if incExt == ".h" {
			incExt = extOf(path)
		}
		incTree, err := nativeparser.ParseString(ctx, nativeparser.CFamily, incExt, src)
		if err != nil {
			return nil, err
		}
		defer incTree.FreeTree()

		var out []*graph.Node
		for _, child := range nativeparser.ChildrenOf(incTree.RootNode()) {
			decls, err := f.handleTopLevel(ctx, g, incTree, candidate, child)
			if err != nil {
				return nil, err
			}
			out = append(out, decls...)
		}
		return out, nil
	}
	return nil, nil // unresolved (system header, or outside rootDir) — tolerated
}

// handleNamespace builds a NamespaceDeclaration and recurses into its body
// with handleTopLevel, so records/functions declared inside get the
// namespace's scope as their enclosing container (ImportResolver/
// NamespaceResolver later merges same-named namespaces across units).
func (f *Frontend) handleNamespace(ctx context.Context, g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.NamespaceDeclaration {
	name := fieldText(tree, n, "name")
	ns := g.NewNamespace(name)
	ns.Code = tree.TextOf(n)
	ns.Location = f.loc(tree, path, n)
	nsScope := f.scopes.EnterNamedScope(scope.Namespace, name)
	ns.Scope = nsScope
	f.scopes.AddDeclaration(name, ns.Node, "")

	if body := nativeparser.FieldChild(n, "body"); body != nil {
		for _, member := range nativeparser.ChildrenOf(body) {
			decls, err := f.handleTopLevel(ctx, g, tree, path, member)
			if err == nil {
				for _, decl := range decls {
					if decl != nil {
						ns.AddMember(decl)
					}
				}
			}
		}
	}
	f.scopes.LeaveScope(nsScope)
	return ns
}

func fieldText(tree *nativeparser.Tree, n *sitter.Node, field string) string {
	child := nativeparser.FieldChild(n, field)
	if child == nil {
		return ""
	}
	return tree.TextOf(child)
}

// handleRecord builds a RecordDeclaration, running the reparenting rule
// over its member list: a parsed FunctionDeclaration becomes a Method, a
// Method named after the record becomes a Constructor, and a variable
// becomes a Field. Synthesizes a default constructor if none was found
// (S3).
func (f *Frontend) handleRecord(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.RecordDeclaration {
	name := fieldText(tree, n, "name")
	kind := "struct"
	if nativeparser.KindOf(n) == "class_specifier" {
		kind = "class"
	}
	rec := g.NewRecord(name, kind)
	rec.Code = tree.TextOf(n)
	rec.Location = f.loc(tree, path, n)
	if base := nativeparser.FieldChild(n, "base_class_clause"); base != nil {
		for _, b := range nativeparser.ChildrenOf(base) {
			if nativeparser.KindOf(b) == "access_specifier" {
				continue
			}
			baseName := tree.TextOf(b)
			baseName = strings.TrimPrefix(baseName, "public ")
			baseName = strings.TrimPrefix(baseName, "private ")
			baseName = strings.TrimPrefix(baseName, "protected ")
			rec.Implements = append(rec.Implements, strings.TrimSpace(baseName))
		}
	}
	recScope := f.scopes.EnterNamedScope(scope.Record, name)
	rec.Scope = recScope
	f.scopes.AddDeclaration(name, rec.Node, "")
	f.recordByName[name] = rec

	body := nativeparser.FieldChild(n, "body")
	sawConstructor := false
	if body != nil {
		for _, member := range nativeparser.ChildrenOf(body) {
			switch nativeparser.KindOf(member) {
			case "field_declaration", "declaration":
				f.handleFieldDeclaration(g, tree, path, member, rec)
			case "function_definition":
				fn := f.functionFromDefinition(g, tree, path, member)
				method := frontend.PromoteToMethod(g, fn, rec)
				if method.Name == rec.Name {
					frontend.PromoteToConstructor(g, method)
					sawConstructor = true
				}
			default:
				g.NewUnimplemented(nativeparser.KindOf(member), tree.TextOf(member))
			}
		}
	}
	if !sawConstructor && len(rec.Constructors) == 0 {
		frontend.SynthesizeDefaultConstructor(g, rec)
	}
	f.scopes.LeaveScope(recScope)
	return rec
}

// handleFieldDeclaration handles one member declaration inside a record
// body: either a data field (possibly a function-pointer field, S5) or an
// in-class method signature (`SomeClass();` — a declaration-only function
// prototype, which the record processor treats as a Method/Constructor
// stub to be completed by a later out-of-class function_definition).
func (f *Frontend) handleFieldDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, rec *graph.RecordDeclaration) {
	declarator := nativeparser.FieldChild(n, "declarator")
	typeText := fieldText(tree, n, "type")

	if declarator != nil && nativeparser.KindOf(declarator) == "function_declarator" {
		// A member function prototype, e.g. "SomeClass();" or "int DoSomething();".
		nameNode := nativeparser.FieldChild(declarator, "declarator")
		name := ""
		if nameNode != nil {
			name = tree.TextOf(nameNode)
		}
		method := g.NewMethod(name, rec)
		method.Code = tree.TextOf(n)
		method.Location = f.loc(tree, path, n)
		rec.Scope.Declare(name, method.Node)
		f.scopes.AddDeclaration(name, method.Node, "")
		if name == rec.Name {
			ctor := g.NewConstructor(rec)
			ctor.Code = method.Code
			ctor.Location = method.Location
			rec.AddConstructor(ctor.Node)
		} else {
			rec.AddMethod(method.Node)
		}
		return
	}

	name, ptName := memberNameAndType(tree, declarator, typeText)
	field := g.NewField(name)
	field.Code = tree.TextOf(n)
	field.Location = f.loc(tree, path, n)
	pt := typesys.Parse(g, ptName, false, nil)
	field.Type = pt.Node
	rec.AddField(field.Node)
	rec.Scope.Declare(name, field.Node)
	f.scopes.AddDeclaration(name, field.Node, "")
}

// memberNameAndType extracts a field's name and reconstructed type text,
// handling the plain-variable case and the function-pointer-field case
// (`int (*fp)(int);`, S5) where the declarator is a
// function_declarator wrapping a parenthesized pointer_declarator.
func memberNameAndType(tree *nativeparser.Tree, declarator *sitter.Node, baseType string) (name, typeText string) {
	if declarator == nil {
		return "", baseType
	}
	switch nativeparser.KindOf(declarator) {
	case "pointer_declarator":
		inner := nativeparser.FieldChild(declarator, "declarator")
		n, _ := memberNameAndType(tree, inner, baseType)
		return n, baseType + "*"
	case "function_declarator":
		// `(*fp)(int)` shape: declarator field is a parenthesized
		// pointer_declarator around the name; parameters field is the arg list.
		inner := nativeparser.FieldChild(declarator, "declarator")
		innerName, _ := memberNameAndType(tree, inner, baseType)
		params := nativeparser.FieldChild(declarator, "parameters")
		paramText := ""
		if params != nil {
			paramText = tree.TextOf(params)
		}
		return innerName, fmt.Sprintf("%s (*%s)%s", baseType, innerName, paramText)
	default:
		return tree.TextOf(declarator), baseType
	}
}

// handleFunctionDefinition builds a top-level FunctionDeclaration, or, if
// the declarator names a qualified identifier (`SomeClass::DoSomething`),
// attaches the body to the matching in-class Method/Constructor stub
// created by handleFieldDeclaration instead of creating a new top-level
// declaration.
func (f *Frontend) handleFunctionDefinition(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	fn := f.functionFromDefinition(g, tree, path, n)

	declarator := nativeparser.FieldChild(n, "declarator")
	inner := nativeparser.FieldChild(declarator, "declarator")
	if inner != nil && nativeparser.KindOf(inner) == "qualified_identifier" {
		scopeText := fieldText(tree, inner, "scope")
		if rec, ok := f.recordByName[scopeText]; ok {
			if existing := findStubByName(rec, fn.Name); existing != nil {
				completeStub(g, existing, fn)
				return nil
			}
			method := frontend.PromoteToMethod(g, fn, rec)
			if method.Name == rec.Name {
				frontend.PromoteToConstructor(g, method)
			}
			return nil
		}
	}
	f.scopes.AddDeclaration(fn.Name, fn.Node, "")
	return fn.Node
}

func findStubByName(rec *graph.RecordDeclaration, name string) *graph.Node {
	for _, m := range rec.Methods {
		if m.Name == name {
			return m
		}
	}
	for _, c := range rec.Constructors {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// completeStub fills a previously synthesized method/constructor stub
// (declared in-class, defined out-of-class) with the real body/parameters.
func completeStub(g *graph.Graph, stub *graph.Node, fn *graph.FunctionDeclaration) {
	if fn.Body != nil {
		stub.AddEdge(graph.EdgeAST, fn.Body, -1, nil)
	}
	for i, p := range fn.Parameters {
		stub.AddEdge(graph.EdgeAST, p, i, nil)
	}
	stub.Location = fn.Location
	stub.Code = fn.Code
}

func (f *Frontend) functionFromDefinition(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.FunctionDeclaration {
	declarator := nativeparser.FieldChild(n, "declarator")
	nameNode := nativeparser.FieldChild(declarator, "declarator")
	name := ""
	if nameNode != nil {
		name = tree.TextOf(nameNode)
		if idx := strings.LastIndex(name, "::"); idx >= 0 {
			name = name[idx+2:]
		}
	}

	fn := g.NewFunction(name)
	fn.Code = tree.TextOf(n)
	fn.Location = f.loc(tree, path, n)
	fnScope := f.scopes.EnterScope(scope.Function, name)
	fn.Scope = fnScope

	params := nativeparser.FieldChild(declarator, "parameters")
	if params != nil {
		for _, p := range nativeparser.ChildrenOf(params) {
			switch nativeparser.KindOf(p) {
			case "variadic_parameter":
				fn.IsVariadic = true
			case "parameter_declaration":
				f.addParameter(g, tree, path, p, fn)
			}
		}
	}

	retText := fieldText(tree, n, "type")
	if retText != "" {
		fn.SetReturnType(typesys.Parse(g, retText, false, nil).Node)
	}

	body := nativeparser.FieldChild(n, "body")
	if body != nil {
		fn.SetBody(f.handleCompoundStatement(g, tree, path, body))
	}
	f.scopes.LeaveScope(fnScope)
	return fn
}

func (f *Frontend) addParameter(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, fn *graph.FunctionDeclaration) {
	declarator := nativeparser.FieldChild(n, "declarator")
	typeText := fieldText(tree, n, "type")
	name, fullType := memberNameAndType(tree, declarator, typeText)
	param := g.NewParameter(name)
	param.Location = f.loc(tree, path, n)
	param.SetType(typesys.Parse(g, fullType, false, nil).Node)
	fn.AddParameter(param.Node)
	f.scopes.AddDeclaration(name, param.Node, scope.Function)
}

func (f *Frontend) handleDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	declarator := nativeparser.FieldChild(n, "declarator")
	typeText := fieldText(tree, n, "type")
	name, fullType := memberNameAndType(tree, declarator, typeText)
	v := g.NewVariable(name)
	v.Code = tree.TextOf(n)
	v.Location = f.loc(tree, path, n)
	v.SetType(typesys.Parse(g, fullType, false, nil).Node)
	f.scopes.AddDeclaration(name, v.Node, "")
	return v.Node
}

// handleCompoundStatement handles `{ ... }`, recursively dispatching each
// statement, per the Block variant's ordered statement list.
func (f *Frontend) handleCompoundStatement(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	block := g.NewBlock()
	blockScope := f.scopes.EnterScope(scope.Block, "")
	block.Scope = blockScope
	for _, stmt := range nativeparser.ChildrenOf(n) {
		if s := f.handleStatement(g, tree, path, stmt); s != nil {
			block.AddStatement(s)
		}
	}
	f.scopes.LeaveScope(blockScope)
	return block.Node
}

func (f *Frontend) handleStatement(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	switch nativeparser.KindOf(n) {
	case "compound_statement":
		return f.handleCompoundStatement(g, tree, path, n)
	case "return_statement":
		var value *graph.Node
		children := nativeparser.ChildrenOf(n)
		if len(children) > 0 {
			value = f.handleExpression(g, tree, path, children[0])
		}
		return g.NewReturn(value).Node
	case "if_statement":
		cond := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "condition"))
		then := f.handleStatement(g, tree, path, nativeparser.FieldChild(n, "consequence"))
		var els *graph.Node
		if alt := nativeparser.FieldChild(n, "alternative"); alt != nil {
			els = f.handleStatement(g, tree, path, alt)
		}
		return g.NewIf(cond, then, els).Node
	case "while_statement":
		cond := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "condition"))
		body := f.handleStatement(g, tree, path, nativeparser.FieldChild(n, "body"))
		return g.NewWhile(cond, body).Node
	case "declaration":
		return f.handleDeclaration(g, tree, path, n)
	case "expression_statement":
		children := nativeparser.ChildrenOf(n)
		if len(children) == 0 {
			return nil
		}
		expr := f.handleExpression(g, tree, path, children[0])
		return g.NewExpressionStmt(expr).Node
	case "break_statement":
		return g.NewBreak().Node
	case "continue_statement":
		return g.NewContinue().Node
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}

func (f *Frontend) handleExpression(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	if n == nil {
		return g.NewUnimplemented("", "").Node
	}
	switch nativeparser.KindOf(n) {
	case "identifier", "field_identifier":
		return g.NewDeclaredReference(tree.TextOf(n)).Node
	case "number_literal", "string_literal", "char_literal", "true", "false":
		return g.NewLiteral(tree.TextOf(n)).Node
	case "field_expression":
		base := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "argument"))
		member := fieldText(tree, n, "field")
		return g.NewMemberExpression(base, member).Node
	case "call_expression":
		fnNode := nativeparser.FieldChild(n, "function")
		args := nativeparser.FieldChild(n, "arguments")
		if fnNode != nil && nativeparser.KindOf(fnNode) == "field_expression" {
			base := f.handleExpression(g, tree, path, nativeparser.FieldChild(fnNode, "argument"))
			method := fieldText(tree, fnNode, "field")
			mc := g.NewMemberCall(base, method)
			if args != nil {
				for _, a := range nativeparser.ChildrenOf(args) {
					mc.AddArgument(f.handleExpression(g, tree, path, a))
				}
			}
			return mc.Node
		}
		callee := ""
		if fnNode != nil {
			callee = tree.TextOf(fnNode)
		}
		call := g.NewCallExpression(callee)
		if args != nil {
			for _, a := range nativeparser.ChildrenOf(args) {
				call.AddArgument(f.handleExpression(g, tree, path, a))
			}
		}
		return call.Node
	case "binary_expression":
		op := fieldText(tree, n, "operator")
		left := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "left"))
		right := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "right"))
		return g.NewBinaryOperator(op, left, right).Node
	case "unary_expression":
		op := fieldText(tree, n, "operator")
		operand := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "argument"))
		return g.NewUnaryOperator(op, operand, false).Node
	case "subscript_expression":
		base := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "argument"))
		index := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "index"))
		return g.NewArraySubscript(base, index).Node
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}
