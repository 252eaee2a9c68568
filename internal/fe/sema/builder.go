package sema

import (
	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/faults"
)

// Pass 2 — type building. Resolves inheritance and extension targets,
// attaches method and property signatures to their owners, then runs the
// hierarchy checks, assigns implemented protocols, and materializes vector
// types.

type builder struct {
	ctx  *Context
	errs *[]error
}

func build(ctx *Context, prog ast.Program, errs *[]error) {
	b := &builder{ctx: ctx, errs: errs}

	for _, st := range prog.FirstIs {
		if fd, ok := st.(ast.FunctionDeclaration); ok {
			b.functionDeclaration(fd)
		}
	}
	for _, st := range prog.SecondIs {
		switch d := st.(type) {
		case ast.ClassDeclaration:
			b.classDeclaration(d)
		case ast.ProtocolDeclaration:
			b.protocolDeclaration(d)
		}
	}

	if b.checkCircularInheritance() {
		b.checkExtends()
		b.implementProtocols()
		b.collectVectors()
	}
}

func (b *builder) fault(err error) {
	*b.errs = append(*b.errs, err)
}

// resolveTypeRef resolves a type annotation to its context type. EOFType
// (no annotation) resolves to nil, meaning "to be inferred".
func resolveTypeRef(ctx *Context, n ast.Node) (*Type, error) {
	switch t := n.(type) {
	case ast.Type:
		return ctx.GetType(t.Name)
	case ast.VectorType:
		el, err := ctx.GetType(t.Name)
		if err != nil {
			return nil, err
		}
		return ctx.VectorOf(el), nil
	default:
		return nil, nil
	}
}

func (b *builder) buildParams(params []ast.Parameter) []Attribute {
	out := make([]Attribute, len(params))
	for i, p := range params {
		pType, err := resolveTypeRef(b.ctx, p.Type)
		if err != nil {
			b.fault(err)
		}
		out[i] = Attribute{Name: p.Name.Value, Type: pType}
	}
	return out
}

func (b *builder) functionDeclaration(fd ast.FunctionDeclaration) {
	params := b.buildParams(fd.Parameters)
	ret, err := resolveTypeRef(b.ctx, fd.ReturnType)
	if err != nil {
		b.fault(err)
	}
	if _, err := b.ctx.CreateMethod(fd.Name, params, ret); err != nil {
		b.fault(err)
	}
}

func (b *builder) classDeclaration(d ast.ClassDeclaration) {
	name := classHeadName(d.ClassType)
	class, err := b.ctx.GetType(name)
	if err != nil {
		b.fault(err)
		return
	}

	switch head := d.ClassType.(type) {
	case ast.ClassType:
		class.AddMethod(&Method{Name: "init", Return: class})
	case ast.ClassTypeParameter:
		params := b.buildParams(head.Parameters)
		class.Params = params
		class.AddMethod(&Method{Name: "init", Return: class, Arguments: params})
	}

	class.Parent = b.resolveInheritance(d.Inheritance)

	for _, s := range d.Body {
		switch m := s.(type) {
		case ast.ClassProperty:
			attrType, err := resolveTypeRef(b.ctx, m.Type)
			if err != nil {
				b.fault(err)
			}
			if err := class.DefineAttribute(m.Name.Value, attrType); err != nil {
				b.fault(faults.Wrap(err, faults.DuplicateDeclaration, m.Name.Row, m.Name.Col, "%s", err.Error()))
			}
		case ast.ClassFunction:
			params := b.buildParams(m.Parameters)
			ret, err := resolveTypeRef(b.ctx, m.Type)
			if err != nil {
				b.fault(err)
			}
			if err := class.DefineMethod(m.Name.Value, ret, params); err != nil {
				b.fault(faults.Wrap(err, faults.DuplicateDeclaration, m.Name.Row, m.Name.Col, "%s", err.Error()))
			}
		}
	}
}

// resolveInheritance resolves the inherits clause; a class with none
// inherits Object. Inheriting from Number, String, or Boolean is forbidden.
func (b *builder) resolveInheritance(inh ast.Node) *Type {
	var name ast.Ident
	switch i := inh.(type) {
	case ast.Inheritance:
		name = i.Name
	case ast.InheritanceParameter:
		name = i.Name
	default:
		return b.ctx.Object()
	}

	parent, err := b.ctx.GetType(name)
	if err != nil {
		b.fault(err)
		return b.ctx.Object()
	}
	switch parent.Name {
	case "Number", "String", "Boolean":
		b.fault(faults.New(faults.ForbiddenInheritance, name.Row, name.Col,
			"You cant inherit from %s.", parent.Name))
		return b.ctx.Object()
	}
	return parent
}

func (b *builder) protocolDeclaration(d ast.ProtocolDeclaration) {
	pt := d.ProtocolType.(ast.ProtocolType)
	proto, err := b.ctx.GetProtocol(pt.Name)
	if err != nil {
		b.fault(err)
		return
	}

	if ext, ok := d.Extension.(ast.Extension); ok {
		parent, err := b.ctx.GetProtocol(ext.Name)
		if err != nil {
			b.fault(err)
		} else {
			proto.Parent = parent
		}
	}

	for _, s := range d.Body {
		if m, ok := s.(ast.ProtocolFunction); ok {
			params := b.buildParams(m.Parameters)
			ret, err := resolveTypeRef(b.ctx, m.Type)
			if err != nil {
				b.fault(err)
			}
			if err := proto.DefineMethod(m.Name.Value, ret, params); err != nil {
				b.fault(faults.Wrap(err, faults.DuplicateDeclaration, m.Name.Row, m.Name.Col, "%s", err.Error()))
			}
		}
	}
}

// checkCircularInheritance walks every class's and protocol's parent chain
// with visited marking; a cycle is detected when a walk returns to its
// starting name. Both hierarchies must be acyclic for pass 2 to continue.
func (b *builder) checkCircularInheritance() bool {
	check := true

	walk := func(names []string, lookup map[string]*Type, kind string) {
		visited := map[string]bool{}
		for _, name := range names {
			start := lookup[name]
			cur := start
			for cur != nil && !visited[cur.Name] {
				visited[cur.Name] = true
				cur = cur.Parent
				if cur != nil && cur.Name == start.Name {
					b.fault(faults.New(faults.CircularInheritance, 0, 0,
						"Circular inheritance detected in %s %s.", kind, cur.Name))
					check = false
					break
				}
			}
		}
	}

	walk(b.ctx.TypeNames(), b.ctx.Types, "class")
	walk(b.ctx.ProtocolNames(), b.ctx.Protocols, "protocol")

	return check
}

// checkExtends verifies no protocol redeclares a method already present in
// its parent chain.
func (b *builder) checkExtends() bool {
	check := true
	for _, name := range b.ctx.ProtocolNames() {
		p := b.ctx.Protocols[name]
		if p.Parent == nil {
			continue
		}
		for _, m := range p.Methods {
			if _, redeclared := p.Parent.GetMethod(m.Name); redeclared {
				b.fault(faults.New(faults.ProtocolRedeclaration, 0, 0,
					"Incorrect extends in protocol %s.", p.Name))
				check = false
				break
			}
		}
	}
	return check
}

// implementProtocols registers every class as implementing every protocol
// its method set structurally satisfies.
func (b *builder) implementProtocols() {
	for _, tn := range b.ctx.TypeNames() {
		t := b.ctx.Types[tn]
		for _, pn := range b.ctx.ProtocolNames() {
			p := b.ctx.Protocols[pn]
			if t.ImplementsProtocol(p) {
				t.Implements = append(t.Implements, p)
			}
		}
	}
}

// collectVectors materializes the derived vector type of every resolved
// class and protocol.
func (b *builder) collectVectors() {
	for _, tn := range b.ctx.TypeNames() {
		b.ctx.VectorOf(b.ctx.Types[tn])
	}
	for _, pn := range b.ctx.ProtocolNames() {
		b.ctx.VectorOf(b.ctx.Protocols[pn])
	}
}
