package sema

import (
	"sort"
	"strings"

	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/faults"
)

// Context is the semantic context: type name to class, protocol name to
// protocol, and free-function name to method signature.
type Context struct {
	Types     map[string]*Type
	Protocols map[string]*Type
	Methods   map[string]*Method
}

// CreateType registers a fresh class under id's name. Redeclaration is a
// duplicate-declaration fault.
func (c *Context) CreateType(id ast.Ident) (*Type, error) {
	if _, ok := c.Types[id.Value]; ok {
		return nil, faults.New(faults.DuplicateDeclaration, id.Row, id.Col,
			"Type with the same name (%s) already in context.", id.Value)
	}
	t := &Type{Name: id.Value}
	c.Types[id.Value] = t
	return t, nil
}

// CreateProtocol registers a fresh protocol under id's name.
func (c *Context) CreateProtocol(id ast.Ident) (*Type, error) {
	if _, ok := c.Protocols[id.Value]; ok {
		return nil, faults.New(faults.DuplicateDeclaration, id.Row, id.Col,
			"Protocol with the same name (%s) already in context.", id.Value)
	}
	p := &Type{Name: id.Value, IsProtocol: true}
	c.Protocols[id.Value] = p
	return p, nil
}

// CreateMethod registers a free function under id's name.
func (c *Context) CreateMethod(id ast.Ident, params []Attribute, ret *Type) (*Method, error) {
	if _, ok := c.Methods[id.Value]; ok {
		return nil, faults.New(faults.DuplicateDeclaration, id.Row, id.Col,
			"Method with the same name (%s) already in context.", id.Value)
	}
	m := &Method{Name: id.Value, Return: ret, Arguments: params}
	c.Methods[id.Value] = m
	return m, nil
}

// AddType inserts (or replaces) t under its own name.
func (c *Context) AddType(t *Type) *Type {
	c.Types[t.Name] = t
	return t
}

// AddProtocol inserts (or replaces) p under its own name.
func (c *Context) AddProtocol(p *Type) *Type {
	c.Protocols[p.Name] = p
	return p
}

// AddMethod inserts (or replaces) m under its own name.
func (c *Context) AddMethod(m *Method) *Method {
	c.Methods[m.Name] = m
	return m
}

// GetType looks id up among classes, then protocols.
func (c *Context) GetType(id ast.Ident) (*Type, error) {
	if t, ok := c.Types[id.Value]; ok {
		return t, nil
	}
	if p, ok := c.Protocols[id.Value]; ok {
		return p, nil
	}
	return nil, faults.New(faults.UnresolvedName, id.Row, id.Col,
		"Type %q is not defined.", id.Value)
}

// GetTypeNamed is GetType for internal lookups that have no originating
// token.
func (c *Context) GetTypeNamed(name string) (*Type, bool) {
	if t, ok := c.Types[name]; ok {
		return t, true
	}
	p, ok := c.Protocols[name]
	return p, ok
}

// GetProtocol looks id up among protocols only.
func (c *Context) GetProtocol(id ast.Ident) (*Type, error) {
	if p, ok := c.Protocols[id.Value]; ok {
		return p, nil
	}
	return nil, faults.New(faults.UnresolvedName, id.Row, id.Col,
		"Protocol %q is not defined.", id.Value)
}

// GetMethod looks id up among free functions.
func (c *Context) GetMethod(id ast.Ident) (*Method, error) {
	if m, ok := c.Methods[id.Value]; ok {
		return m, nil
	}
	return nil, faults.New(faults.UnresolvedName, id.Row, id.Col,
		"Method %q is not defined.", id.Value)
}

// Object returns the root class.
func (c *Context) Object() *Type {
	return c.Types["Object"]
}

// VectorOf materializes (or returns the already materialized) derived
// vector type "[T]" for element type t, with the built-in current, next,
// get, set, and size methods.
func (c *Context) VectorOf(t *Type) *Type {
	name := "[" + t.Name + "]"
	if v, ok := c.Types[name]; ok {
		return v
	}
	number := c.Types["Number"]
	boolean := c.Types["Boolean"]
	v := &Type{
		Name:   name,
		Parent: c.Object(),
		Methods: []*Method{
			{Name: "current", Return: t},
			{Name: "next", Return: boolean},
			{Name: "get", Return: t, Arguments: []Attribute{{Name: "index", Type: number}}},
			{Name: "set", Return: t, Arguments: []Attribute{{Name: "index", Type: number}, {Name: "value", Type: t}}},
			{Name: "size", Return: number},
		},
	}
	c.Types[name] = v
	return v
}

// TypeNames returns every registered class name in sorted order; the
// deterministic iteration every pass that walks the whole context uses.
func (c *Context) TypeNames() []string {
	names := make([]string, 0, len(c.Types))
	for n := range c.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ProtocolNames returns every registered protocol name in sorted order.
func (c *Context) ProtocolNames() []string {
	names := make([]string, 0, len(c.Protocols))
	for n := range c.Protocols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MethodNames returns every registered free-function name in sorted order.
func (c *Context) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for n := range c.Methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *Context) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, n := range c.TypeNames() {
		t := c.Types[n]
		if t.Parent != nil {
			sb.WriteString("\t" + t.Name + " inherits " + t.Parent.Name + "\n")
		} else {
			sb.WriteString("\t" + t.Name + "\n")
		}
	}
	for _, n := range c.ProtocolNames() {
		sb.WriteString("\tprotocol " + n + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}
