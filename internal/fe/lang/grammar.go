// Package lang defines the source language: its token rules, its LR(1)
// grammar with semantic builders producing the AST, and the front-end
// artifacts (lexer DFA, parse table) built from them.
package lang

import (
	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/parser"
)

// GrammarName keys the source language's cached artifacts.
const GrammarName = "gizzard"

func ident(v any) ast.Ident {
	t := v.(parser.Token)
	return ast.Ident{Value: t.Lexeme, Row: t.Row, Col: t.Col}
}

func posOf(v any) ast.Position {
	switch x := v.(type) {
	case parser.Token:
		return ast.Position{Row: x.Row, Col: x.Col}
	case ast.Node:
		r, c := x.Pos()
		return ast.Position{Row: r, Col: c}
	default:
		return ast.Position{}
	}
}

func node(v any) ast.Node { return v.(ast.Node) }

func nodeList(v any) []ast.Node {
	if v == nil {
		return nil
	}
	return v.([]ast.Node)
}

func paramList(v any) []ast.Parameter {
	if v == nil {
		return nil
	}
	return v.([]ast.Parameter)
}

func pass(children []any) any { return children[0] }

// arrayRest distinguishes the two bracketed-literal continuations after the
// first element expression.
type arrayRest struct {
	implicit bool
	items    []ast.Node
	item     ast.Ident
	iterable ast.Node
}

func arith(children []any) any {
	return ast.ArithmeticBinary{
		Position: posOf(children[0]),
		Op:       children[1].(parser.Token).Lexeme,
		Left:     node(children[0]),
		Right:    node(children[2]),
	}
}

func boolean(children []any) any {
	return ast.BooleanBinary{
		Position: posOf(children[0]),
		Op:       children[1].(parser.Token).Lexeme,
		Left:     node(children[0]),
		Right:    node(children[2]),
	}
}

func str(children []any) any {
	return ast.StringBinary{
		Position: posOf(children[0]),
		Op:       children[1].(parser.Token).Lexeme,
		Left:     node(children[0]),
		Right:    node(children[2]),
	}
}

// Grammar returns the source language's grammar. Expressions are stratified
// by precedence, loosest first: let/if/while/for span the whole expression,
// then assignment, is/as, |, &, equality, comparison, concatenation,
// additive, multiplicative, unary, power (right-associative), postfix.
func Grammar() *grammar.Grammar {
	g := grammar.New()

	for _, kw := range keywords {
		g.AddTerminal(kw)
	}
	for _, s := range symbols {
		g.AddTerminal(s.Name)
	}
	for _, t := range []string{"id", "num", "str", "bool"} {
		g.AddTerminal(t)
	}

	// program and declarations

	g.AddProduction("Program", []string{"Decls", "Expr", "OptSemi"}, func(c []any) any {
		var firstIs, secondIs []ast.Node
		for _, d := range nodeList(c[0]) {
			if _, isFn := d.(ast.FunctionDeclaration); isFn {
				firstIs = append(firstIs, d)
			} else {
				secondIs = append(secondIs, d)
			}
		}
		return ast.Program{
			Position:   ast.Position{Row: 1, Col: 1},
			FirstIs:    firstIs,
			SecondIs:   secondIs,
			Expression: node(c[1]),
		}
	})

	g.AddProduction("Decls", []string{"Decls", "Decl"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[1]))
	})
	g.AddProduction("Decls", nil, func(c []any) any { return []ast.Node(nil) })

	g.AddProduction("Decl", []string{"FuncDecl"}, pass)
	g.AddProduction("Decl", []string{"TypeDecl"}, pass)
	g.AddProduction("Decl", []string{"ProtoDecl"}, pass)

	g.AddProduction("OptSemi", []string{";"}, func(c []any) any { return nil })
	g.AddProduction("OptSemi", nil, func(c []any) any { return nil })

	g.AddProduction("FuncDecl", []string{"function", "id", "(", "Params", ")", "OptType", "FuncBody"}, func(c []any) any {
		return ast.FunctionDeclaration{
			Position:   posOf(c[0]),
			Name:       ident(c[1]),
			Parameters: paramList(c[3]),
			ReturnType: node(c[5]),
			Body:       node(c[6]),
		}
	})

	g.AddProduction("FuncBody", []string{"=>", "Expr", ";"}, func(c []any) any { return c[1] })
	g.AddProduction("FuncBody", []string{"Block"}, pass)

	g.AddProduction("Block", []string{"{", "Stmts", "}"}, func(c []any) any {
		return ast.ExpressionBlock{Position: posOf(c[0]), Instructions: nodeList(c[1])}
	})
	g.AddProduction("Stmts", []string{"Stmts", "Expr", ";"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[1]))
	})
	g.AddProduction("Stmts", []string{"Expr", ";"}, func(c []any) any {
		return []ast.Node{node(c[0])}
	})

	g.AddProduction("OptType", []string{":", "TypeRef"}, func(c []any) any { return c[1] })
	g.AddProduction("OptType", nil, func(c []any) any { return ast.Node(ast.EOFType{}) })

	g.AddProduction("TypeRef", []string{"id"}, func(c []any) any {
		return ast.Node(ast.Type{Position: posOf(c[0]), Name: ident(c[0])})
	})
	g.AddProduction("TypeRef", []string{"[", "id", "]"}, func(c []any) any {
		return ast.Node(ast.VectorType{Position: posOf(c[0]), Name: ident(c[1])})
	})

	g.AddProduction("Params", []string{"ParamList"}, pass)
	g.AddProduction("Params", nil, func(c []any) any { return []ast.Parameter(nil) })
	g.AddProduction("ParamList", []string{"ParamList", ",", "Param"}, func(c []any) any {
		return append(paramList(c[0]), c[2].(ast.Parameter))
	})
	g.AddProduction("ParamList", []string{"Param"}, func(c []any) any {
		return []ast.Parameter{c[0].(ast.Parameter)}
	})
	g.AddProduction("Param", []string{"id", "OptType"}, func(c []any) any {
		return ast.Parameter{Name: ident(c[0]), Type: node(c[1])}
	})

	g.AddProduction("TypeDecl", []string{"type", "ClassHead", "OptInherit", "{", "Members", "}"}, func(c []any) any {
		return ast.ClassDeclaration{
			Position:    posOf(c[0]),
			ClassType:   node(c[1]),
			Inheritance: node(c[2]),
			Body:        nodeList(c[4]),
		}
	})
	g.AddProduction("ClassHead", []string{"id"}, func(c []any) any {
		return ast.Node(ast.ClassType{Position: posOf(c[0]), Name: ident(c[0])})
	})
	g.AddProduction("ClassHead", []string{"id", "(", "Params", ")"}, func(c []any) any {
		return ast.Node(ast.ClassTypeParameter{Position: posOf(c[0]), Name: ident(c[0]), Parameters: paramList(c[2])})
	})
	g.AddProduction("OptInherit", []string{"inherits", "id"}, func(c []any) any {
		return ast.Node(ast.Inheritance{Position: posOf(c[0]), Name: ident(c[1])})
	})
	g.AddProduction("OptInherit", []string{"inherits", "id", "(", "Args", ")"}, func(c []any) any {
		return ast.Node(ast.InheritanceParameter{Position: posOf(c[0]), Name: ident(c[1]), Parameters: nodeList(c[3])})
	})
	g.AddProduction("OptInherit", nil, func(c []any) any { return ast.Node(ast.EOFInherits{}) })

	g.AddProduction("Members", []string{"Members", "Member"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[1]))
	})
	g.AddProduction("Members", nil, func(c []any) any { return []ast.Node(nil) })

	g.AddProduction("Member", []string{"id", ":", "TypeRef", ";"}, func(c []any) any {
		return ast.ClassProperty{Position: posOf(c[0]), Name: ident(c[0]), Type: node(c[2])}
	})
	g.AddProduction("Member", []string{"id", ":", "TypeRef", "=", "Expr", ";"}, func(c []any) any {
		return ast.ClassProperty{Position: posOf(c[0]), Name: ident(c[0]), Type: node(c[2]), Expression: node(c[4])}
	})
	g.AddProduction("Member", []string{"id", "=", "Expr", ";"}, func(c []any) any {
		return ast.ClassProperty{Position: posOf(c[0]), Name: ident(c[0]), Type: ast.EOFType{}, Expression: node(c[2])}
	})
	g.AddProduction("Member", []string{"id", "(", "Params", ")", "OptType", "FuncBody"}, func(c []any) any {
		return ast.ClassFunction{
			Position:   posOf(c[0]),
			Name:       ident(c[0]),
			Parameters: paramList(c[2]),
			Type:       node(c[4]),
			Body:       node(c[5]),
		}
	})

	g.AddProduction("ProtoDecl", []string{"protocol", "id", "OptExtends", "{", "ProtoMembers", "}"}, func(c []any) any {
		return ast.ProtocolDeclaration{
			Position:     posOf(c[0]),
			ProtocolType: ast.ProtocolType{Position: posOf(c[1]), Name: ident(c[1])},
			Extension:    node(c[2]),
			Body:         nodeList(c[4]),
		}
	})
	g.AddProduction("OptExtends", []string{"extends", "id"}, func(c []any) any {
		return ast.Node(ast.Extension{Position: posOf(c[0]), Name: ident(c[1])})
	})
	g.AddProduction("OptExtends", nil, func(c []any) any { return ast.Node(ast.EOFExtension{}) })

	g.AddProduction("ProtoMembers", []string{"ProtoMembers", "ProtoMember"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[1]))
	})
	g.AddProduction("ProtoMembers", nil, func(c []any) any { return []ast.Node(nil) })
	g.AddProduction("ProtoMember", []string{"id", "(", "Params", ")", ":", "TypeRef", ";"}, func(c []any) any {
		return ast.ProtocolFunction{
			Position:   posOf(c[0]),
			Name:       ident(c[0]),
			Parameters: paramList(c[2]),
			Type:       node(c[5]),
		}
	})

	// expressions

	g.AddProduction("Expr", []string{"let", "Bindings", "in", "Expr"}, func(c []any) any {
		return ast.Let{Position: posOf(c[0]), Assignments: nodeList(c[1]), Body: node(c[3])}
	})
	g.AddProduction("Expr", []string{"if", "(", "Expr", ")", "Expr", "Elifs", "else", "Expr"}, func(c []any) any {
		return ast.If{
			Position:  posOf(c[0]),
			Condition: node(c[2]),
			Body:      node(c[4]),
			Elifs:     nodeList(c[5]),
			Else:      node(c[7]),
		}
	})
	g.AddProduction("Expr", []string{"while", "(", "Expr", ")", "Expr"}, func(c []any) any {
		return ast.While{Position: posOf(c[0]), Condition: node(c[2]), Body: node(c[4])}
	})
	g.AddProduction("Expr", []string{"for", "(", "id", "in", "Expr", ")", "Expr"}, func(c []any) any {
		return ast.For{Position: posOf(c[0]), Variable: ident(c[2]), Iterable: node(c[4]), Body: node(c[6])}
	})
	g.AddProduction("Expr", []string{"Test", ":=", "Expr"}, func(c []any) any {
		left := node(c[0])
		val := node(c[2])
		switch lv := left.(type) {
		case ast.Atomic:
			return ast.Assignment{Position: lv.Position, Name: lv.Name, Value: val}
		case ast.InstanceProperty:
			return ast.AssignmentProperty{Position: lv.Position, Expression: lv.Expression, Property: lv.Property, Value: val}
		case ast.ArrayCall:
			return ast.AssignmentArray{Position: lv.Position, ArrayCall: lv, Value: val}
		default:
			return ast.InvalidAssignment{Position: posOf(left), Target: left, Value: val}
		}
	})
	g.AddProduction("Expr", []string{"Test"}, pass)

	g.AddProduction("Bindings", []string{"Bindings", ",", "Binding"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[2]))
	})
	g.AddProduction("Bindings", []string{"Binding"}, func(c []any) any {
		return []ast.Node{node(c[0])}
	})
	g.AddProduction("Binding", []string{"id", ":", "TypeRef", "=", "Expr"}, func(c []any) any {
		return ast.Declaration{Position: posOf(c[0]), Name: ident(c[0]), Type: node(c[2]), Value: node(c[4])}
	})
	g.AddProduction("Binding", []string{"id", "=", "Expr"}, func(c []any) any {
		return ast.Declaration{Position: posOf(c[0]), Name: ident(c[0]), Type: ast.EOFType{}, Value: node(c[2])}
	})

	g.AddProduction("Elifs", []string{"Elifs", "Elif"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[1]))
	})
	g.AddProduction("Elifs", nil, func(c []any) any { return []ast.Node(nil) })
	g.AddProduction("Elif", []string{"elif", "(", "Expr", ")", "Expr"}, func(c []any) any {
		return ast.Elif{Position: posOf(c[0]), Condition: node(c[2]), Body: node(c[4])}
	})

	g.AddProduction("Test", []string{"Test", "is", "TypeRef"}, func(c []any) any {
		return ast.Is{Position: posOf(c[0]), Expression: node(c[0]), TypeName: node(c[2])}
	})
	g.AddProduction("Test", []string{"Test", "as", "TypeRef"}, func(c []any) any {
		return ast.As{Position: posOf(c[0]), Expression: node(c[0]), TypeName: node(c[2])}
	})
	g.AddProduction("Test", []string{"Or"}, pass)

	g.AddProduction("Or", []string{"Or", "|", "And"}, boolean)
	g.AddProduction("Or", []string{"And"}, pass)

	g.AddProduction("And", []string{"And", "&", "Eq"}, boolean)
	g.AddProduction("And", []string{"Eq"}, pass)

	g.AddProduction("Eq", []string{"Eq", "==", "Rel"}, boolean)
	g.AddProduction("Eq", []string{"Eq", "!=", "Rel"}, boolean)
	g.AddProduction("Eq", []string{"Rel"}, pass)

	g.AddProduction("Rel", []string{"Rel", "<", "Concat"}, boolean)
	g.AddProduction("Rel", []string{"Rel", "<=", "Concat"}, boolean)
	g.AddProduction("Rel", []string{"Rel", ">", "Concat"}, boolean)
	g.AddProduction("Rel", []string{"Rel", ">=", "Concat"}, boolean)
	g.AddProduction("Rel", []string{"Concat"}, pass)

	g.AddProduction("Concat", []string{"Concat", "@", "Add"}, str)
	g.AddProduction("Concat", []string{"Concat", "@@", "Add"}, str)
	g.AddProduction("Concat", []string{"Add"}, pass)

	g.AddProduction("Add", []string{"Add", "+", "Mul"}, arith)
	g.AddProduction("Add", []string{"Add", "-", "Mul"}, arith)
	g.AddProduction("Add", []string{"Mul"}, pass)

	g.AddProduction("Mul", []string{"Mul", "*", "Unary"}, arith)
	g.AddProduction("Mul", []string{"Mul", "/", "Unary"}, arith)
	g.AddProduction("Mul", []string{"Mul", "%", "Unary"}, arith)
	g.AddProduction("Mul", []string{"Unary"}, pass)

	g.AddProduction("Unary", []string{"!", "Unary"}, func(c []any) any {
		return ast.BooleanUnary{Position: posOf(c[0]), Op: "!", Child: node(c[1])}
	})
	g.AddProduction("Unary", []string{"-", "Unary"}, func(c []any) any {
		return ast.ArithmeticUnary{Position: posOf(c[0]), Op: "-", Child: node(c[1])}
	})
	g.AddProduction("Unary", []string{"Pow"}, pass)

	g.AddProduction("Pow", []string{"Post", "^", "Unary"}, arith)
	g.AddProduction("Pow", []string{"Post"}, pass)

	g.AddProduction("Post", []string{"Post", ".", "id"}, func(c []any) any {
		return ast.InstanceProperty{Position: posOf(c[0]), Expression: node(c[0]), Property: ident(c[2])}
	})
	g.AddProduction("Post", []string{"Post", ".", "id", "(", "Args", ")"}, func(c []any) any {
		return ast.InstanceFunction{Position: posOf(c[0]), Expression: node(c[0]), Name: ident(c[2]), Parameters: nodeList(c[4])}
	})
	g.AddProduction("Post", []string{"Post", "[", "Expr", "]"}, func(c []any) any {
		return ast.ArrayCall{Position: posOf(c[0]), Expression: node(c[0]), Indexer: node(c[2])}
	})
	g.AddProduction("Post", []string{"Atom"}, pass)

	g.AddProduction("Atom", []string{"num"}, func(c []any) any {
		return ast.Constant{Position: posOf(c[0]), Kind: ast.ConstantNumber, Value: c[0].(parser.Token).Lexeme}
	})
	g.AddProduction("Atom", []string{"str"}, func(c []any) any {
		return ast.Constant{Position: posOf(c[0]), Kind: ast.ConstantString, Value: c[0].(parser.Token).Lexeme}
	})
	g.AddProduction("Atom", []string{"bool"}, func(c []any) any {
		return ast.Constant{Position: posOf(c[0]), Kind: ast.ConstantBoolean, Value: c[0].(parser.Token).Lexeme}
	})
	g.AddProduction("Atom", []string{"id"}, func(c []any) any {
		return ast.Atomic{Position: posOf(c[0]), Name: ident(c[0])}
	})
	g.AddProduction("Atom", []string{"id", "(", "Args", ")"}, func(c []any) any {
		return ast.ExpressionCall{Position: posOf(c[0]), Name: ident(c[0]), Parameters: nodeList(c[2])}
	})
	g.AddProduction("Atom", []string{"new", "id", "(", "Args", ")"}, func(c []any) any {
		return ast.New{Position: posOf(c[0]), Name: ident(c[1]), Arguments: nodeList(c[3])}
	})
	g.AddProduction("Atom", []string{"(", "Expr", ")"}, func(c []any) any { return c[1] })
	g.AddProduction("Atom", []string{"Block"}, pass)
	g.AddProduction("Atom", []string{"[", "]"}, func(c []any) any {
		return ast.ExplicitArrayDeclaration{Position: posOf(c[0])}
	})
	g.AddProduction("Atom", []string{"[", "Expr", "ArrayRest"}, func(c []any) any {
		first := node(c[1])
		rest := c[2].(arrayRest)
		if rest.implicit {
			return ast.ImplicitArrayDeclaration{
				Position:   posOf(c[0]),
				Item:       rest.item,
				Iterable:   rest.iterable,
				Expression: first,
			}
		}
		return ast.ExplicitArrayDeclaration{
			Position: posOf(c[0]),
			Values:   append([]ast.Node{first}, rest.items...),
		}
	})

	g.AddProduction("ArrayRest", []string{"]"}, func(c []any) any { return arrayRest{} })
	g.AddProduction("ArrayRest", []string{",", "ArgList", "]"}, func(c []any) any {
		return arrayRest{items: nodeList(c[1])}
	})
	g.AddProduction("ArrayRest", []string{"||", "id", "in", "Expr", "]"}, func(c []any) any {
		return arrayRest{implicit: true, item: ident(c[1]), iterable: node(c[3])}
	})

	g.AddProduction("Args", []string{"ArgList"}, pass)
	g.AddProduction("Args", nil, func(c []any) any { return []ast.Node(nil) })
	g.AddProduction("ArgList", []string{"ArgList", ",", "Expr"}, func(c []any) any {
		return append(nodeList(c[0]), node(c[2]))
	})
	g.AddProduction("ArgList", []string{"Expr"}, func(c []any) any {
		return []ast.Node{node(c[0])}
	})

	g.SetStart("Program")
	return g
}
