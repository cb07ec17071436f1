// Package golike is the frontend for the Go-like language: it drives
// tree-sitter's golang grammar and builds the corresponding CPG subtree.
// Grounded directly on the teacher's own
// inspector/golang/inspector_tree_sitter.go (same grammar, same
// ChildByFieldName-driven extraction of package/import/type/func/const/var
// declarations), generalized from a flat graph.File/Type/Function model
// into the shared Node/Record/Function CPG algebra, and using
// golang.org/x/mod/modfile for root/module detection the way
// inspector/repository/detector.go does.
package golike

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/mod/modfile"

	"github.com/cpgkit/cpg/cpgerr"
	"github.com/cpgkit/cpg/frontend"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/nativeparser"
	"github.com/cpgkit/cpg/scope"
	"github.com/cpgkit/cpg/typesys"
)

// Frontend implements frontend.Frontend for the Go-like language.
type Frontend struct {
	scopes       *scope.Manager
	recordByName map[string]*graph.RecordDeclaration
	moduleRoot   string
}

func New() *Frontend {
	return &Frontend{
		scopes:       scope.NewManager(),
		recordByName: map[string]*graph.RecordDeclaration{},
	}
}

func (f *Frontend) NamespaceDelimiter() string { return "." }

// detectModuleRoot walks up from path looking for go.mod, mirroring
// inspector/repository/detector.go's marker-file walk, using modfile only
// to validate the file actually parses as a Go module (the root itself is
// all this frontend needs; the frontend does not resolve cross-module
// imports, left to ImportResolver).
func detectModuleRoot(path string) string {
	dir := filepath.Dir(path)
	for {
		candidate := filepath.Join(dir, "go.mod")
		if data, err := os.ReadFile(candidate); err == nil {
			if _, err := modfile.Parse(candidate, data, nil); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (f *Frontend) Parse(ctx context.Context, g *graph.Graph, path string, src []byte) (*graph.TranslationUnitDeclaration, error) {
	if f.moduleRoot == "" {
		f.moduleRoot = detectModuleRoot(path)
	}

	tree, err := nativeparser.ParseString(ctx, nativeparser.GoLike, ".go", src)
	if err != nil {
		return nil, &cpgerr.ParseFailure{File: path, Cause: err}
	}
	defer tree.FreeTree()

	tu := g.NewTranslationUnit(path)
	tu.Scope = f.scopes.GlobalScope()

	root := tree.RootNode()
	for _, child := range nativeparser.ChildrenOf(root) {
		decl, err := f.handleTopLevel(g, tree, path, child)
		if err != nil {
			return nil, &cpgerr.TranslationException{File: path, Cause: err}
		}
		if decl != nil {
			tu.AddDeclaration(decl)
		}
	}
	return tu, nil
}

func (f *Frontend) loc(tree *nativeparser.Tree, path string, n *sitter.Node) graph.Location {
	sl, sc, el, ec := tree.RangeOf(n)
	return graph.Location{FileURI: path, Region: graph.Region{StartLine: sl, StartColumn: sc, EndLine: el, EndColumn: ec}}
}

func fieldText(tree *nativeparser.Tree, n *sitter.Node, field string) string {
	child := nativeparser.FieldChild(n, field)
	if child == nil {
		return ""
	}
	return tree.TextOf(child)
}

func (f *Frontend) handleTopLevel(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) (*graph.Node, error) {
	switch nativeparser.KindOf(n) {
	case "package_clause", "import_declaration":
		return nil, nil // namespace/import wiring is ImportResolver/NamespaceResolver's job
	case "type_declaration":
		return f.handleTypeDeclaration(g, tree, path, n), nil
	case "function_declaration":
		return f.handleFunctionDeclaration(g, tree, path, n).Node, nil
	case "method_declaration":
		f.handleMethodDeclaration(g, tree, path, n)
		return nil, nil
	case "const_declaration", "var_declaration":
		return f.handleVarOrConstDeclaration(g, tree, path, n), nil
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n)), nil
	}
}

// handleTypeDeclaration handles `type Name struct { ... }` / interface /
// alias. Struct fields become FieldDeclarations directly (no reparenting
// needed: the frontend already knows it's building a record).
func (f *Frontend) handleTypeDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	var result *graph.Node
	for _, spec := range nativeparser.ChildrenOf(n) {
		if nativeparser.KindOf(spec) != "type_spec" {
			continue
		}
		name := fieldText(tree, spec, "name")
		typeValue := nativeparser.FieldChild(spec, "type")

		rec := g.NewRecord(name, "struct")
		rec.Code = tree.TextOf(spec)
		rec.Location = f.loc(tree, path, spec)
		recScope := f.scopes.EnterNamedScope(scope.Record, name)
		rec.Scope = recScope
		f.scopes.AddDeclaration(name, rec.Node, "")
		f.recordByName[name] = rec

		if typeValue != nil && nativeparser.KindOf(typeValue) == "struct_type" {
			f.handleStructFields(g, tree, path, typeValue, rec)
		}
		if len(rec.Constructors) == 0 {
			frontend.SynthesizeDefaultConstructor(g, rec)
		}
		f.scopes.LeaveScope(recScope)
		result = rec.Node
	}
	return result
}

func (f *Frontend) handleStructFields(g *graph.Graph, tree *nativeparser.Tree, path string, structNode *sitter.Node, rec *graph.RecordDeclaration) {
	fieldList := nativeparser.FieldChild(structNode, "body")
	if fieldList == nil {
		return
	}
	for _, fd := range nativeparser.ChildrenOf(fieldList) {
		if nativeparser.KindOf(fd) != "field_declaration" {
			continue
		}
		name := fieldText(tree, fd, "name")
		typeText := fieldText(tree, fd, "type")
		if name == "" {
			// Anonymous (embedded) field: `type Outer struct { Inner }`. Go has
			// no explicit superclass declaration, so embedding is the closest
			// analog to the inheritance pass's super-class edges: the embedded
			// type's fields and methods become reachable as if promoted.
			name = strings.TrimPrefix(typeText, "*")
			rec.Implements = append(rec.Implements, name)
		}
		field := g.NewField(name)
		field.Code = tree.TextOf(fd)
		field.Location = f.loc(tree, path, fd)
		field.SetType(typesys.Parse(g, typeText, false, nil).Node)
		rec.AddField(field.Node)
		rec.Scope.Declare(name, field.Node)
		f.scopes.AddDeclaration(name, field.Node, "")
	}
}

func (f *Frontend) handleFunctionDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.FunctionDeclaration {
	name := fieldText(tree, n, "name")
	fn := g.NewFunction(name)
	fn.Code = tree.TextOf(n)
	fn.Location = f.loc(tree, path, n)
	fnScope := f.scopes.EnterScope(scope.Function, name)
	fn.Scope = fnScope

	if params := nativeparser.FieldChild(n, "parameters"); params != nil {
		f.addParameters(g, tree, path, params, fn)
	}
	if result := nativeparser.FieldChild(n, "result"); result != nil {
		fn.SetReturnType(typesys.Parse(g, tree.TextOf(result), false, nil).Node)
	}
	if body := nativeparser.FieldChild(n, "body"); body != nil {
		fn.SetBody(f.handleBlock(g, tree, path, body))
	} else {
		// astutil-style synthesized body for a declared-but-bodyless
		// function (an external/assembly stub): give it an empty block so
		// downstream passes always find a Body to traverse.
		fn.SetBody(synthesizeEmptyBody(g))
	}
	f.scopes.LeaveScope(fnScope)
	f.scopes.AddDeclaration(name, fn.Node, "")
	return fn
}

// synthesizeEmptyBody gives a declared-but-bodyless function (an external or
// assembly stub) an empty block so downstream passes always find a Body to
// traverse.
func synthesizeEmptyBody(g *graph.Graph) *graph.Node {
	return g.NewBlock().Node
}

func (f *Frontend) handleMethodDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) {
	receiver := nativeparser.FieldChild(n, "receiver")
	recvType := ""
	if receiver != nil {
		for _, p := range nativeparser.ChildrenOf(receiver) {
			if nativeparser.KindOf(p) == "parameter_declaration" {
				recvType = fieldText(tree, p, "type")
			}
		}
	}
	recvType = stripPointer(recvType)

	fn := f.handleFunctionDeclaration(g, tree, path, n)
	rec, ok := f.recordByName[recvType]
	if !ok {
		rec = g.NewRecord(recvType, "struct")
		f.recordByName[recvType] = rec
	}
	frontend.PromoteToMethod(g, fn, rec)
}

func stripPointer(s string) string {
	if len(s) > 0 && s[0] == '*' {
		return s[1:]
	}
	return s
}

func (f *Frontend) addParameters(g *graph.Graph, tree *nativeparser.Tree, path string, params *sitter.Node, fn *graph.FunctionDeclaration) {
	for _, p := range nativeparser.ChildrenOf(params) {
		if nativeparser.KindOf(p) != "parameter_declaration" {
			continue
		}
		name := fieldText(tree, p, "name")
		typeText := fieldText(tree, p, "type")
		param := g.NewParameter(name)
		param.Location = f.loc(tree, path, p)
		param.SetType(typesys.Parse(g, typeText, false, nil).Node)
		if nativeparser.KindOf(nativeparser.FieldChild(p, "type")) == "variadic_argument_list" {
			param.Variadic = true
			fn.IsVariadic = true
		}
		fn.AddParameter(param.Node)
		f.scopes.AddDeclaration(name, param.Node, scope.Function)
	}
}

func (f *Frontend) handleVarOrConstDeclaration(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	var first *graph.Node
	specKind := "var_spec"
	if nativeparser.KindOf(n) == "const_declaration" {
		specKind = "const_spec"
	}
	for _, spec := range nativeparser.ChildrenOf(n) {
		if nativeparser.KindOf(spec) != specKind {
			continue
		}
		name := fieldText(tree, spec, "name")
		typeText := fieldText(tree, spec, "type")
		v := g.NewVariable(name)
		v.Code = tree.TextOf(spec)
		v.Location = f.loc(tree, path, spec)
		v.SetType(typesys.Parse(g, typeText, false, nil).Node)
		f.scopes.AddDeclaration(name, v.Node, "")
		if first == nil {
			first = v.Node
		}
	}
	return first
}

func (f *Frontend) handleBlock(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
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
	case "block":
		return f.handleBlock(g, tree, path, n)
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
	case "for_statement":
		body := f.handleStatement(g, tree, path, nativeparser.FieldChild(n, "body"))
		return g.NewWhile(nil, body).Node
	case "short_var_declaration", "var_declaration":
		return f.handleDeclarationStatement(g, tree, path, n)
	case "expression_statement":
		children := nativeparser.ChildrenOf(n)
		if len(children) == 0 {
			return nil
		}
		return g.NewExpressionStmt(f.handleExpression(g, tree, path, children[0])).Node
	case "break_statement":
		return g.NewBreak().Node
	case "continue_statement":
		return g.NewContinue().Node
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}

func (f *Frontend) handleDeclarationStatement(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	stmt := g.NewDeclarationStmt()
	left := nativeparser.FieldChild(n, "left")
	right := nativeparser.FieldChild(n, "right")
	names := []string{}
	if left != nil {
		for _, id := range nativeparser.ChildrenOf(left) {
			names = append(names, tree.TextOf(id))
		}
	}
	var inits []*sitter.Node
	if right != nil {
		inits = nativeparser.ChildrenOf(right)
	}
	for i, name := range names {
		v := g.NewVariable(name)
		v.Location = f.loc(tree, path, n)
		if i < len(inits) {
			v.SetInitial(f.handleExpression(g, tree, path, inits[i]))
		}
		f.scopes.AddDeclaration(name, v.Node, "")
		stmt.AddDeclaration(v.Node)
	}
	return stmt.Node
}

func (f *Frontend) handleExpression(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	if n == nil {
		return g.NewUnimplemented("", "").Node
	}
	switch nativeparser.KindOf(n) {
	case "identifier":
		return g.NewDeclaredReference(tree.TextOf(n)).Node
	case "int_literal", "float_literal", "interpreted_string_literal", "raw_string_literal", "true", "false", "nil":
		return g.NewLiteral(tree.TextOf(n)).Node
	case "selector_expression":
		base := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "operand"))
		member := fieldText(tree, n, "field")
		return g.NewMemberExpression(base, member).Node
	case "call_expression":
		fnNode := nativeparser.FieldChild(n, "function")
		args := nativeparser.FieldChild(n, "arguments")
		if fnNode != nil && nativeparser.KindOf(fnNode) == "selector_expression" {
			base := f.handleExpression(g, tree, path, nativeparser.FieldChild(fnNode, "operand"))
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
		operand := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "operand"))
		return g.NewUnaryOperator(op, operand, false).Node
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}

