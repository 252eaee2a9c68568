// Package sema is the semantic analyzer: three ordered passes (type
// collection, type building, checking with graph-based inference) that turn
// a parsed program into a typed context and an error list.
package sema

import (
	"fmt"
	"strings"
)

// Type is a class or protocol in the semantic context. Protocols carry no
// attributes or constructor parameters; classes may implement protocols.
// Vector types are ordinary classes whose name is bracketed ("[T]").
type Type struct {
	Name       string
	Parent     *Type
	IsProtocol bool

	Attributes []Attribute
	Methods    []*Method
	Params     []Attribute
	Implements []*Type
}

// Attribute is a named, typed slot: a class property, a constructor
// parameter, or a method parameter. Type is nil while not yet inferred.
type Attribute struct {
	Name string
	Type *Type
}

// Method is a callable signature: free function, class method, or protocol
// requirement.
type Method struct {
	Name      string
	Return    *Type
	Arguments []Attribute
}

// IsVector reports whether t is a materialized vector type.
func (t *Type) IsVector() bool {
	return strings.HasPrefix(t.Name, "[")
}

// GetMethod finds a method by name on t or any ancestor.
func (t *Type) GetMethod(name string) (*Method, bool) {
	for c := t; c != nil; c = c.Parent {
		for _, m := range c.Methods {
			if m.Name == name {
				return m, true
			}
		}
	}
	return nil, false
}

// ownsMethod reports whether t itself (not an ancestor) declares name.
func (t *Type) ownsMethod(name string) bool {
	for _, m := range t.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

// AddMethod appends a method signature to t, replacing any prior one of the
// same name declared directly on t.
func (t *Type) AddMethod(m *Method) {
	for i, existing := range t.Methods {
		if existing.Name == m.Name {
			t.Methods[i] = m
			return
		}
	}
	t.Methods = append(t.Methods, m)
}

// DefineMethod registers a method declared directly on t; declaring the
// same name twice on one type is an error.
func (t *Type) DefineMethod(name string, ret *Type, args []Attribute) error {
	if t.ownsMethod(name) {
		return fmt.Errorf("method %q is already defined in %s", name, t.Name)
	}
	t.Methods = append(t.Methods, &Method{Name: name, Return: ret, Arguments: args})
	return nil
}

// DefineAttribute registers a property declared directly on t.
func (t *Type) DefineAttribute(name string, attrType *Type) error {
	for _, a := range t.Attributes {
		if a.Name == name {
			return fmt.Errorf("attribute %q is already defined in %s", name, t.Name)
		}
	}
	t.Attributes = append(t.Attributes, Attribute{Name: name, Type: attrType})
	return nil
}

// GetAttribute finds an attribute by name on t or any ancestor.
func (t *Type) GetAttribute(name string) (Attribute, bool) {
	for c := t; c != nil; c = c.Parent {
		for _, a := range c.Attributes {
			if a.Name == name {
				return a, true
			}
		}
	}
	return Attribute{}, false
}

// ConformsTo reports whether t conforms to u: t equals u, t's parent chain
// reaches u, or u is a protocol t (or an ancestor of t) implements,
// directly or through the protocol's own extension chain.
func (t *Type) ConformsTo(u *Type) bool {
	if t == nil || u == nil {
		return false
	}
	for c := t; c != nil; c = c.Parent {
		if c.Name == u.Name {
			return true
		}
		if u.IsProtocol {
			for _, p := range c.Implements {
				for q := p; q != nil; q = q.Parent {
					if q.Name == u.Name {
						return true
					}
				}
			}
		}
	}
	return false
}

// ImplementsProtocol reports whether t's method set (including inherited
// methods) structurally satisfies p's (including p's extension chain): same
// names, same arities, argument types at least as permissive, return types
// conforming.
func (t *Type) ImplementsProtocol(p *Type) bool {
	for _, pm := range p.allMethods() {
		m, ok := t.GetMethod(pm.Name)
		if !ok || len(m.Arguments) != len(pm.Arguments) {
			return false
		}
		if m.Return == nil || pm.Return == nil || !m.Return.ConformsTo(pm.Return) {
			return false
		}
		for i := range pm.Arguments {
			pa, ma := pm.Arguments[i].Type, m.Arguments[i].Type
			if pa == nil || ma == nil || !pa.ConformsTo(ma) {
				return false
			}
		}
	}
	return true
}

// allMethods returns t's methods together with every inherited one not
// overridden below.
func (t *Type) allMethods() []*Method {
	var out []*Method
	seen := map[string]bool{}
	for c := t; c != nil; c = c.Parent {
		for _, m := range c.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// AncestorWithMethod returns the most distant ancestor of t (t included)
// that declares name; it is how base-method references resolve.
func (t *Type) AncestorWithMethod(name string) *Type {
	var found *Type
	for c := t; c != nil; c = c.Parent {
		if c.ownsMethod(name) {
			found = c
		}
	}
	return found
}
