package sema

import (
	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/faults"
)

// Pass 3 — semantic check and type inference. Walks every expression,
// building the semantic graph, then solves it. Every visit returns a graph
// node; a failed visit appends its fault and substitutes a fresh unknown
// node so the walk can continue.

type checker struct {
	ctx   *Context
	graph *Graph
	errs  *[]error
}

func check(ctx *Context, prog ast.Program, scope *Scope, errs *[]error) *Graph {
	c := &checker{ctx: ctx, graph: NewGraph(ctx), errs: errs}
	c.program(prog, scope)
	return c.graph
}

func (c *checker) fault(err error) *GraphNode {
	*c.errs = append(*c.errs, err)
	return c.graph.AddNode(nil)
}

func (c *checker) typeNamed(name string) *Type {
	t, _ := c.ctx.GetTypeNamed(name)
	return t
}

func (c *checker) program(prog ast.Program, scope *Scope) {
	number := c.typeNamed("Number")
	scope.DefineVariable(ast.Ident{Value: "PI"}, c.graph.AddNode(number))
	scope.DefineVariable(ast.Ident{Value: "E"}, c.graph.AddNode(number))

	c.addContextTypes(scope)
	c.addContextFunctions(scope)

	for _, st := range prog.FirstIs {
		if fd, ok := st.(ast.FunctionDeclaration); ok {
			c.functionDeclaration(fd, scope)
		}
	}
	for _, st := range prog.SecondIs {
		if cd, ok := st.(ast.ClassDeclaration); ok {
			c.classDeclaration(cd, scope)
		}
	}

	programNode := c.graph.AddNode(nil)
	c.graph.AddPath(programNode, c.expr(prog.Expression, scope))

	if len(*c.errs) > 0 {
		return
	}
	if err := c.graph.TypeInference(); err != nil {
		c.fault(err)
		return
	}
	if err := scope.MethodTypeInference(c.ctx); err != nil {
		c.fault(err)
		return
	}
	for _, name := range c.ctx.TypeNames() {
		if t := c.ctx.Types[name]; !t.IsVector() {
			c.checkOverriding(t)
		}
	}
}

// addContextTypes seeds the root scope with a view per context type: graph
// nodes for every attribute, parameter, and return slot.
func (c *checker) addContextTypes(scope *Scope) {
	getFunctions := func(methods []*Method) []*Function {
		var functions []*Function
		for _, m := range methods {
			args := make([]*GraphNode, len(m.Arguments))
			for i, a := range m.Arguments {
				args[i] = c.graph.AddNode(a.Type)
			}
			functions = append(functions, &Function{Name: m.Name, Node: c.graph.AddNode(m.Return), Args: args})
		}
		return functions
	}

	for _, name := range c.ctx.TypeNames() {
		t := c.ctx.Types[name]
		var attrs []*Variable
		for _, a := range t.Attributes {
			attrs = append(attrs, &Variable{Name: a.Name, Node: c.graph.AddNode(a.Type)})
		}
		scope.DefineType(t.Name, getFunctions(t.Methods), attrs)
	}
	for _, name := range c.ctx.ProtocolNames() {
		p := c.ctx.Protocols[name]
		scope.DefineType(p.Name, getFunctions(p.Methods), nil)
	}

	link := func(t *Type) {
		if t.Parent == nil {
			return
		}
		view, err := scope.GetDefinedType(t.Name)
		if err != nil {
			return
		}
		parentView, err := scope.GetDefinedType(t.Parent.Name)
		if err != nil {
			return
		}
		view.Parent = parentView
	}
	for _, name := range c.ctx.TypeNames() {
		link(c.ctx.Types[name])
	}
	for _, name := range c.ctx.ProtocolNames() {
		link(c.ctx.Protocols[name])
	}
}

func (c *checker) addContextFunctions(scope *Scope) {
	for _, name := range c.ctx.MethodNames() {
		m := c.ctx.Methods[name]
		args := make([]*GraphNode, len(m.Arguments))
		for i, a := range m.Arguments {
			args[i] = c.graph.AddNode(a.Type)
		}
		scope.DefineFunction(m.Name, c.graph.AddNode(m.Return), args)
	}
}

func (c *checker) functionDeclaration(fd ast.FunctionDeclaration, scope *Scope) {
	f, err := scope.GetDefinedFunction(fd.Name)
	if err != nil {
		c.fault(err)
		return
	}
	child := scope.CreateChild()
	for i := range f.Args {
		if i < len(fd.Parameters) {
			child.DefineVariable(fd.Parameters[i].Name, f.Args[i])
		}
	}
	c.graph.AddPath(f.Node, c.expr(fd.Body, child))
}

func (c *checker) classDeclaration(cd ast.ClassDeclaration, scope *Scope) {
	name := classHeadName(cd.ClassType)
	classType, err := c.ctx.GetType(name)
	if err != nil {
		c.fault(err)
		return
	}

	scope = scope.CreateChild()
	initScope := scope.CreateChild()

	scope.DefineVariable(ast.Ident{Value: "self"}, c.graph.AddNode(classType))

	view, err := scope.GetDefinedType(classType.Name)
	if err != nil {
		c.fault(err)
		return
	}
	initF, err := view.GetFunction("init")
	if err != nil {
		c.fault(err)
		return
	}

	if head, ok := cd.ClassType.(ast.ClassTypeParameter); ok {
		for i, p := range head.Parameters {
			if i < len(initF.Args) {
				initScope.DefineVariable(p.Name, initF.Args[i])
			}
		}
	}

	c.checkInheritanceArgs(cd.Inheritance, scope, initScope)

	for _, s := range cd.Body {
		switch m := s.(type) {
		case ast.ClassFunction:
			c.classFunction(m, view, classType, scope)
		case ast.ClassProperty:
			attr, err := view.GetAttribute(m.Name.Value)
			if err != nil {
				c.fault(err)
				continue
			}
			var et *GraphNode
			if m.Expression != nil {
				et = c.expr(m.Expression, initScope)
			} else {
				et = c.defaultValueNode(m, attr)
				if et == nil {
					continue
				}
			}
			c.graph.AddPath(attr.Node, et)
		}
	}
}

// checkInheritanceArgs verifies constructor arguments passed up to the
// parent and edges each into the parent constructor's parameter node.
func (c *checker) checkInheritanceArgs(inh ast.Node, scope, initScope *Scope) {
	var name ast.Ident
	var args []ast.Node
	switch i := inh.(type) {
	case ast.Inheritance:
		name = i.Name
	case ast.InheritanceParameter:
		name = i.Name
		args = i.Parameters
	default:
		return
	}

	parentView, err := scope.GetDefinedType(name.Value)
	if err != nil {
		c.fault(err)
		return
	}
	pInit, err := parentView.GetFunction("init")
	if err != nil {
		c.fault(err)
		return
	}
	if err := pInit.CheckValidParams(name, len(args)); err != nil {
		c.fault(err)
		return
	}
	for i, a := range args {
		c.graph.AddPath(pInit.Args[i], c.expr(a, initScope))
	}
}

// defaultValueNode supplies the implicit initializer of a property with
// none: the zero value of its declared type, where one exists.
func (c *checker) defaultValueNode(m ast.ClassProperty, attr *Variable) *GraphNode {
	t := attr.Node.Type
	if t != nil {
		switch t.Name {
		case "Number", "String", "Boolean":
			return c.graph.AddNode(t)
		}
	}
	c.fault(faults.New(faults.UnresolvedName, m.Name.Row, m.Name.Col,
		"Property %q has no initializer and no default value exists for its type.", m.Name.Value))
	return nil
}

func (c *checker) classFunction(m ast.ClassFunction, view *TypeSemantic, classType *Type, scope *Scope) {
	f, err := view.GetFunction(m.Name.Value)
	if err != nil {
		c.fault(err)
		return
	}

	child := scope.CreateChild()
	if baseType := classType.AncestorWithMethod(m.Name.Value); baseType != nil {
		if baseView, err := scope.GetDefinedType(baseType.Name); err == nil {
			if baseF, err := baseView.GetFunction(m.Name.Value); err == nil {
				child.DefineFunction("base", baseF.Node, baseF.Args)
			}
		}
	}

	for i := range f.Args {
		if i < len(m.Parameters) {
			child.DefineVariable(m.Parameters[i].Name, f.Args[i])
		}
	}
	c.graph.AddPath(f.Node, c.expr(m.Body, child))
}

// receiverType locally infers the type of a receiver node.
func (c *checker) receiverType(n *GraphNode, row, col int) (*Type, error) {
	t, err := c.graph.LocalInference(n)
	if err != nil {
		return nil, faults.New(faults.InconsistentInference, row, col, "Incorrect type declaration.")
	}
	return t, nil
}

// resolveTypeName resolves the operand of is/as, requiring vector types to
// be already materialized.
func (c *checker) resolveTypeName(n ast.Node) (*Type, error) {
	switch t := n.(type) {
	case ast.VectorType:
		if v, ok := c.ctx.GetTypeNamed("[" + t.Name.Value + "]"); ok {
			return v, nil
		}
		return nil, faults.New(faults.UnresolvedName, t.Name.Row, t.Name.Col,
			"Type %q is not defined.", "["+t.Name.Value+"]")
	case ast.Type:
		return c.ctx.GetType(t.Name)
	default:
		return nil, faults.New(faults.UnresolvedName, 0, 0, "Type is not defined.")
	}
}

func (c *checker) expr(n ast.Node, scope *Scope) *GraphNode {
	number := c.typeNamed("Number")
	boolean := c.typeNamed("Boolean")

	switch v := n.(type) {
	case ast.Atomic:
		variable, err := scope.GetDefinedVariable(v.Name)
		if err != nil {
			return c.fault(err)
		}
		return variable.Node

	case ast.Constant:
		switch v.Kind {
		case ast.ConstantString:
			return c.graph.AddNode(c.typeNamed("String"))
		case ast.ConstantBoolean:
			return c.graph.AddNode(boolean)
		default:
			return c.graph.AddNode(number)
		}

	case ast.ExpressionCall:
		f, err := scope.CheckValidParams(v.Name, len(v.Parameters))
		if err != nil {
			return c.fault(err)
		}
		callNode := c.graph.AddNode(nil)
		c.graph.AddPath(callNode, f.Node)
		for i, arg := range v.Parameters {
			c.graph.AddPath(f.Args[i], c.expr(arg, scope.CreateChild()))
		}
		return callNode

	case ast.ExpressionBlock:
		blockNode := c.graph.AddNode(nil)
		if len(v.Instructions) == 0 {
			return blockNode
		}
		for _, in := range v.Instructions[:len(v.Instructions)-1] {
			c.expr(in, scope)
		}
		last := c.expr(v.Instructions[len(v.Instructions)-1], scope)
		return c.graph.AddPath(blockNode, last)

	case ast.If:
		ifNode := c.graph.AddNode(nil)
		c.graph.AddPath(c.expr(v.Condition, scope), c.graph.AddNode(boolean))
		thenNode := c.graph.AddNode(nil)
		c.graph.AddPath(ifNode, c.graph.AddPath(thenNode, c.expr(v.Body, scope)))
		for _, e := range v.Elifs {
			c.graph.AddPath(ifNode, c.expr(e, scope))
		}
		elseNode := c.graph.AddNode(nil)
		return c.graph.AddPath(ifNode, c.graph.AddPath(elseNode, c.expr(v.Else, scope)))

	case ast.Elif:
		elifNode := c.graph.AddNode(nil)
		c.graph.AddPath(c.expr(v.Condition, scope), c.graph.AddNode(boolean))
		return c.graph.AddPath(elifNode, c.expr(v.Body, scope))

	case ast.While:
		whileNode := c.graph.AddNode(nil)
		c.graph.AddPath(c.expr(v.Condition, scope), c.graph.AddNode(boolean))
		return c.graph.AddPath(whileNode, c.expr(v.Body, scope))

	case ast.For:
		forNode := c.graph.AddNode(nil)
		iterNode := c.expr(v.Iterable, scope)
		itType, err := c.receiverType(iterNode, v.Row, v.Col)
		if err != nil {
			return c.fault(err)
		}
		current, ok := itType.GetMethod("current")
		if !ok {
			return c.fault(faults.New(faults.UnresolvedName, v.Row, v.Col,
				"Method %q is not defined in %s.", "current", itType.Name))
		}
		child := scope.CreateChild()
		child.DefineVariable(v.Variable, c.graph.AddNode(current.Return))
		return c.graph.AddPath(forNode, c.expr(v.Body, child))

	case ast.Let:
		letNode := c.graph.AddNode(nil)
		ns := scope.CreateChild()
		for _, a := range v.Assignments {
			c.expr(a, ns)
			ns = ns.CreateChild()
		}
		return c.graph.AddPath(letNode, c.expr(v.Body, ns))

	case ast.Declaration:
		valueNode := c.expr(v.Value, scope)
		varType, err := resolveTypeRef(c.ctx, v.Type)
		if err != nil {
			c.fault(err)
		}
		varNode := c.graph.AddNode(varType)
		scope.DefineVariable(v.Name, varNode)
		c.graph.AddPath(varNode, valueNode)
		return varNode

	case ast.Assignment:
		variable, err := scope.GetDefinedVariable(v.Name)
		if err != nil {
			return c.fault(err)
		}
		valueNode := c.expr(v.Value, scope)
		c.graph.AddPath(variable.Node, valueNode)
		return valueNode

	case ast.BooleanUnary:
		child := c.expr(v.Child, scope)
		c.graph.AddPath(child, c.graph.AddNode(boolean))
		return child

	case ast.ArithmeticUnary:
		child := c.expr(v.Child, scope)
		c.graph.AddPath(child, c.graph.AddNode(number))
		return child

	case ast.BooleanBinary:
		boolNode := c.graph.AddNode(boolean)
		operandType := number
		if v.Op == "&" || v.Op == "|" {
			operandType = boolean
		}
		c.graph.AddPath(c.expr(v.Left, scope), c.graph.AddNode(operandType))
		c.graph.AddPath(c.expr(v.Right, scope), c.graph.AddNode(operandType))
		return boolNode

	case ast.ArithmeticBinary:
		numberNode := c.graph.AddNode(number)
		c.graph.AddPath(c.expr(v.Left, scope), c.graph.AddNode(number))
		c.graph.AddPath(c.expr(v.Right, scope), c.graph.AddNode(number))
		return numberNode

	case ast.StringBinary:
		stringNode := c.graph.AddNode(c.typeNamed("String"))
		obj := c.graph.AddNode(c.ctx.Object())
		c.graph.AddPath(obj, c.expr(v.Left, scope))
		c.graph.AddPath(obj, c.expr(v.Right, scope))
		return stringNode

	case ast.New:
		view, err := scope.GetDefinedType(v.Name.Value)
		if err != nil {
			return c.fault(faults.New(faults.UnresolvedName, v.Name.Row, v.Name.Col,
				"Type %s is not defined.", v.Name.Value))
		}
		init, err := view.GetFunction("init")
		if err != nil {
			return c.fault(err)
		}
		if err := init.CheckValidParams(v.Name, len(v.Arguments)); err != nil {
			return c.fault(err)
		}
		for i, a := range v.Arguments {
			c.graph.AddPath(init.Args[i], c.expr(a, scope))
		}
		return c.graph.AddNode(init.Node.Type)

	case ast.Is:
		booleanNode := c.graph.AddNode(boolean)
		if _, err := c.resolveTypeName(v.TypeName); err != nil {
			c.fault(err)
		}
		c.expr(v.Expression, scope)
		return booleanNode

	case ast.As:
		t, err := c.resolveTypeName(v.TypeName)
		if err != nil {
			return c.fault(err)
		}
		exp := c.expr(v.Expression, scope)
		if _, err := c.graph.LocalInference(exp); err != nil {
			return c.fault(err)
		}
		exp.Type = t
		return c.graph.AddNode(t)

	case ast.ExplicitArrayDeclaration:
		vectorNode := c.graph.AddNode(c.graph.Vector)
		for _, el := range v.Values {
			c.graph.AddPath(vectorNode, c.expr(el, scope))
		}
		if _, err := c.graph.LocalInference(vectorNode); err != nil {
			return c.fault(err)
		}
		return vectorNode

	case ast.ImplicitArrayDeclaration:
		vectorNode := c.graph.AddNode(c.graph.Vector)
		iterNode := c.expr(v.Iterable, scope)
		itType, err := c.receiverType(iterNode, v.Row, v.Col)
		if err != nil {
			return c.fault(err)
		}
		current, ok := itType.GetMethod("current")
		if !ok {
			return c.fault(faults.New(faults.UnresolvedName, v.Row, v.Col,
				"Method %q is not defined in %s.", "current", itType.Name))
		}
		child := scope.CreateChild()
		child.DefineVariable(v.Item, c.graph.AddNode(current.Return))
		exprNode := c.expr(v.Expression, child)
		if _, err := c.graph.LocalInference(exprNode); err != nil {
			return c.fault(err)
		}
		return c.graph.AddPath(vectorNode, exprNode)

	case ast.ArrayCall:
		indexNode := c.graph.AddNode(number)
		c.graph.AddPath(c.expr(v.Indexer, scope), indexNode)
		recv := c.expr(v.Expression, scope)
		rType, err := c.receiverType(recv, v.Row, v.Col)
		if err != nil {
			return c.fault(err)
		}
		get, ok := rType.GetMethod("get")
		if !ok {
			return c.fault(faults.New(faults.UnresolvedName, v.Row, v.Col,
				"Method %q is not defined in %s.", "get", rType.Name))
		}
		return c.graph.AddNode(get.Return)

	case ast.AssignmentArray:
		indexExpr := c.expr(v.ArrayCall.Indexer, scope)
		indexExpr.Type = number
		recv := c.expr(v.ArrayCall.Expression, scope)
		valueNode := c.expr(v.Value, scope)
		rType, err := c.receiverType(recv, v.Row, v.Col)
		if err != nil {
			return c.fault(err)
		}
		set, ok := rType.GetMethod("set")
		if !ok || len(set.Arguments) < 2 {
			return c.fault(faults.New(faults.UnresolvedName, v.Row, v.Col,
				"Method %q is not defined in %s.", "set", rType.Name))
		}
		setNode := c.graph.AddNode(set.Arguments[1].Type)
		return c.graph.AddPath(setNode, valueNode)

	case ast.InstanceProperty:
		recv := c.expr(v.Expression, scope)
		pType, err := c.receiverType(recv, v.Property.Row, v.Property.Col)
		if err != nil {
			return c.fault(err)
		}
		view, err := scope.GetDefinedType(pType.Name)
		if err != nil {
			return c.fault(err)
		}
		attr, err := view.GetAttribute(v.Property.Value)
		if err != nil {
			return c.fault(faults.New(faults.UnresolvedName, v.Property.Row, v.Property.Col,
				"Attribute %q is not defined in %s.", v.Property.Value, pType.Name))
		}
		return attr.Node

	case ast.AssignmentProperty:
		recv := c.expr(v.Expression, scope)
		pType, err := c.receiverType(recv, v.Property.Row, v.Property.Col)
		if err != nil {
			return c.fault(err)
		}
		view, err := scope.GetDefinedType(pType.Name)
		if err != nil {
			return c.fault(err)
		}
		attr, err := view.GetAttribute(v.Property.Value)
		if err != nil {
			return c.fault(faults.New(faults.UnresolvedName, v.Property.Row, v.Property.Col,
				"Attribute %q is not defined in %s.", v.Property.Value, pType.Name))
		}
		valueNode := c.expr(v.Value, scope)
		c.graph.AddPath(attr.Node, valueNode)
		return valueNode

	case ast.InstanceFunction:
		recv := c.expr(v.Expression, scope)
		eType, err := c.receiverType(recv, v.Name.Row, v.Name.Col)
		if err != nil {
			return c.fault(err)
		}
		view, err := scope.GetDefinedType(eType.Name)
		if err != nil {
			return c.fault(err)
		}
		f, err := view.GetFunction(v.Name.Value)
		if err != nil {
			return c.fault(faults.New(faults.UnresolvedName, v.Name.Row, v.Name.Col,
				"Method %q is not defined in %s.", v.Name.Value, eType.Name))
		}
		if err := f.CheckValidParams(v.Name, len(v.Parameters)); err != nil {
			return c.fault(err)
		}
		for i, arg := range v.Parameters {
			c.graph.AddPath(f.Args[i], c.expr(arg, scope))
		}
		return f.Node

	case ast.InvalidAssignment:
		r, col := v.Pos()
		return c.fault(faults.New(faults.UnresolvedName, r, col,
			"Cannot assign to this expression."))

	default:
		r, col := n.Pos()
		return c.fault(faults.New(faults.UnresolvedName, r, col,
			"Expression cannot be checked."))
	}
}

// checkOverriding verifies, after inference, that every overriding method
// keeps its base's arity and parameter types and returns something
// conforming to the base's return type.
func (c *checker) checkOverriding(t *Type) {
	if t.Parent == nil {
		return
	}
	for _, m := range t.Methods {
		if m.Name == "init" {
			continue
		}
		base, ok := t.Parent.GetMethod(m.Name)
		if !ok {
			continue
		}
		if len(m.Arguments) != len(base.Arguments) {
			c.fault(faults.New(faults.OverrideMismatch, 0, 0,
				"Incorrect overriding of method %q in %s.", m.Name, t.Name))
			continue
		}
		bad := false
		for i := range m.Arguments {
			mt, bt := m.Arguments[i].Type, base.Arguments[i].Type
			if mt == nil || bt == nil || mt.Name != bt.Name {
				bad = true
				break
			}
		}
		if !bad && m.Return != nil && base.Return != nil && !m.Return.ConformsTo(base.Return) {
			bad = true
		}
		if bad {
			c.fault(faults.New(faults.OverrideMismatch, 0, 0,
				"Incorrect overriding of method %q in %s.", m.Name, t.Name))
		}
	}
}
