// Package pylike is the frontend for the Python-like language: it drives
// tree-sitter's python grammar. Grounded on the same
// inspector/golang/inspector_tree_sitter.go dispatch shape as the other two
// frontends, and on other_examples/…imyousuf-CodeEagle__internal-parser-
// python-parser.go.go for the python tree-sitter node-kind vocabulary
// (class_definition, function_definition, parameters, call, attribute).
package pylike

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cpgkit/cpg/cpgerr"
	"github.com/cpgkit/cpg/frontend"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/nativeparser"
	"github.com/cpgkit/cpg/scope"
	"github.com/cpgkit/cpg/typesys"
)

// Frontend implements frontend.Frontend for the Python-like language.
type Frontend struct {
	scopes *scope.Manager
}

func New() *Frontend {
	return &Frontend{scopes: scope.NewManager()}
}

func (f *Frontend) NamespaceDelimiter() string { return "." }

func (f *Frontend) Parse(ctx context.Context, g *graph.Graph, path string, src []byte) (*graph.TranslationUnitDeclaration, error) {
	tree, err := nativeparser.ParseString(ctx, nativeparser.PyLike, ".py", src)
	if err != nil {
		return nil, &cpgerr.ParseFailure{File: path, Cause: err}
	}
	defer tree.FreeTree()

	tu := g.NewTranslationUnit(path)
	tu.Scope = f.scopes.GlobalScope()

	root := tree.RootNode()
	for _, child := range nativeparser.ChildrenOf(root) {
		if decl := f.handleTopLevel(g, tree, path, child); decl != nil {
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

func (f *Frontend) handleTopLevel(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	switch nativeparser.KindOf(n) {
	case "import_statement", "import_from_statement":
		return nil
	case "class_definition":
		return f.handleClass(g, tree, path, n).Node
	case "function_definition":
		return f.handleFunction(g, tree, path, n, nil).Node
	case "expression_statement":
		return nil // module-level bare expressions (docstrings) carry no declarations
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}

func (f *Frontend) handleClass(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.RecordDeclaration {
	name := fieldText(tree, n, "name")
	rec := g.NewRecord(name, "class")
	rec.Code = tree.TextOf(n)
	rec.Location = f.loc(tree, path, n)
	if superclasses := nativeparser.FieldChild(n, "superclasses"); superclasses != nil {
		for _, s := range nativeparser.ChildrenOf(superclasses) {
			rec.Implements = append(rec.Implements, tree.TextOf(s))
		}
	}
	recScope := f.scopes.EnterNamedScope(scope.Record, name)
	rec.Scope = recScope
	f.scopes.AddDeclaration(name, rec.Node, "")

	body := nativeparser.FieldChild(n, "body")
	if body != nil {
		for _, member := range nativeparser.ChildrenOf(body) {
			switch nativeparser.KindOf(member) {
			case "function_definition":
				fn := f.handleFunction(g, tree, path, member, rec)
				method := frontend.PromoteToMethod(g, fn, rec)
				if method.Name == "__init__" {
					ctor := frontend.PromoteToConstructor(g, method)
					ctor.Name = rec.Name
				}
			case "expression_statement":
				// assignment statements at class scope become fields;
				// anything else (docstrings) is skipped.
				if assign := soleAssignment(tree, member); assign != nil {
					f.handleClassAssignment(g, tree, path, assign, rec)
				}
			default:
				g.NewUnimplemented(nativeparser.KindOf(member), tree.TextOf(member))
			}
		}
	}
	if len(rec.Constructors) == 0 {
		frontend.SynthesizeDefaultConstructor(g, rec)
	}
	f.scopes.LeaveScope(recScope)
	return rec
}

func soleAssignment(tree *nativeparser.Tree, stmt *sitter.Node) *sitter.Node {
	children := nativeparser.ChildrenOf(stmt)
	if len(children) == 1 && nativeparser.KindOf(children[0]) == "assignment" {
		return children[0]
	}
	return nil
}

func (f *Frontend) handleClassAssignment(g *graph.Graph, tree *nativeparser.Tree, path string, assign *sitter.Node, rec *graph.RecordDeclaration) {
	left := nativeparser.FieldChild(assign, "left")
	if left == nil || nativeparser.KindOf(left) != "identifier" {
		return
	}
	name := tree.TextOf(left)
	field := g.NewField(name)
	field.Location = f.loc(tree, path, assign)
	if typeNode := nativeparser.FieldChild(assign, "type"); typeNode != nil {
		field.SetType(typesys.Parse(g, tree.TextOf(typeNode), false, nil).Node)
	}
	rec.AddField(field.Node)
	rec.Scope.Declare(name, field.Node)
	f.scopes.AddDeclaration(name, field.Node, "")
}

func (f *Frontend) handleFunction(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, owner *graph.RecordDeclaration) *graph.FunctionDeclaration {
	name := fieldText(tree, n, "name")
	fn := g.NewFunction(name)
	fn.Code = tree.TextOf(n)
	fn.Location = f.loc(tree, path, n)
	fnScope := f.scopes.EnterScope(scope.Function, name)
	fn.Scope = fnScope

	if params := nativeparser.FieldChild(n, "parameters"); params != nil {
		for i, p := range nativeparser.ChildrenOf(params) {
			switch nativeparser.KindOf(p) {
			case "identifier":
				if i == 0 && owner != nil {
					continue // `self`/`cls` is implicit; not modeled as a Parameter
				}
				f.addSimpleParameter(g, tree, path, p, fn, tree.TextOf(p))
			case "typed_parameter":
				f.addTypedParameter(g, tree, path, p, fn)
			case "default_parameter":
				f.addDefaultParameter(g, tree, path, p, fn)
			case "list_splat_pattern":
				fn.IsVariadic = true
			}
		}
	}
	if ret := nativeparser.FieldChild(n, "return_type"); ret != nil {
		fn.SetReturnType(typesys.Parse(g, tree.TextOf(ret), false, nil).Node)
	}
	if body := nativeparser.FieldChild(n, "body"); body != nil {
		fn.SetBody(f.handleBlock(g, tree, path, body))
	}
	f.scopes.LeaveScope(fnScope)
	if owner == nil {
		f.scopes.AddDeclaration(name, fn.Node, "")
	}
	return fn
}

func (f *Frontend) addSimpleParameter(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, fn *graph.FunctionDeclaration, name string) {
	param := g.NewParameter(name)
	param.Location = f.loc(tree, path, n)
	fn.AddParameter(param.Node)
	f.scopes.AddDeclaration(name, param.Node, scope.Function)
}

func (f *Frontend) addTypedParameter(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, fn *graph.FunctionDeclaration) {
	children := nativeparser.ChildrenOf(n)
	if len(children) == 0 {
		return
	}
	name := tree.TextOf(children[0])
	param := g.NewParameter(name)
	param.Location = f.loc(tree, path, n)
	if typeNode := nativeparser.FieldChild(n, "type"); typeNode != nil {
		param.SetType(typesys.Parse(g, tree.TextOf(typeNode), false, nil).Node)
	}
	fn.AddParameter(param.Node)
	f.scopes.AddDeclaration(name, param.Node, scope.Function)
}

func (f *Frontend) addDefaultParameter(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node, fn *graph.FunctionDeclaration) {
	nameNode := nativeparser.FieldChild(n, "name")
	if nameNode == nil {
		return
	}
	name := tree.TextOf(nameNode)
	param := g.NewParameter(name)
	param.Location = f.loc(tree, path, n)
	fn.AddParameter(param.Node)
	f.scopes.AddDeclaration(name, param.Node, scope.Function)
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
	case "while_statement":
		cond := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "condition"))
		body := f.handleStatement(g, tree, path, nativeparser.FieldChild(n, "body"))
		return g.NewWhile(cond, body).Node
	case "for_statement":
		variable := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "left"))
		iterable := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "right"))
		body := f.handleStatement(g, tree, path, nativeparser.FieldChild(n, "body"))
		return g.NewForEach(variable, iterable, body).Node
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

func (f *Frontend) handleExpression(g *graph.Graph, tree *nativeparser.Tree, path string, n *sitter.Node) *graph.Node {
	if n == nil {
		return g.NewUnimplemented("", "").Node
	}
	switch nativeparser.KindOf(n) {
	case "identifier":
		return g.NewDeclaredReference(tree.TextOf(n)).Node
	case "integer", "float", "string", "true", "false", "none":
		return g.NewLiteral(tree.TextOf(n)).Node
	case "attribute":
		base := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "object"))
		member := fieldText(tree, n, "attribute")
		return g.NewMemberExpression(base, member).Node
	case "call":
		fnNode := nativeparser.FieldChild(n, "function")
		args := nativeparser.FieldChild(n, "arguments")
		if fnNode != nil && nativeparser.KindOf(fnNode) == "attribute" {
			base := f.handleExpression(g, tree, path, nativeparser.FieldChild(fnNode, "object"))
			method := fieldText(tree, fnNode, "attribute")
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
	case "binary_operator":
		op := fieldText(tree, n, "operator")
		left := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "left"))
		right := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "right"))
		return g.NewBinaryOperator(op, left, right).Node
	case "boolean_operator":
		op := fieldText(tree, n, "operator")
		left := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "left"))
		right := f.handleExpression(g, tree, path, nativeparser.FieldChild(n, "right"))
		return g.NewBinaryOperator(op, left, right).Node
	default:
		return g.NewUnimplemented(nativeparser.KindOf(n), tree.TextOf(n))
	}
}
