package sema

import (
	"fmt"

	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/faults"
)

// Variable binds a name to its graph node.
type Variable struct {
	Name string
	Node *GraphNode
}

// Function binds a callable name to its return-value node and one node per
// parameter.
type Function struct {
	Name string
	Node *GraphNode
	Args []*GraphNode
}

// CheckValidParams verifies the number of arguments supplied at a call
// site against the function's parameter nodes.
func (f *Function) CheckValidParams(id ast.Ident, given int) error {
	if len(f.Args) != given {
		return faults.New(faults.ArityMismatch, id.Row, id.Col,
			"Invalid amount of arguments while calling function %q.", id.Value)
	}
	return nil
}

// TypeSemantic is the scope-level view of a type: its functions and
// attributes as graph-node bindings, plus the parent view.
type TypeSemantic struct {
	Name       string
	Functions  []*Function
	Attributes []*Variable
	Parent     *TypeSemantic
}

// GetFunction finds a function by name on the view or any ancestor view.
func (t *TypeSemantic) GetFunction(name string) (*Function, error) {
	for v := t; v != nil; v = v.Parent {
		for _, f := range v.Functions {
			if f.Name == name {
				return f, nil
			}
		}
	}
	return nil, faults.New(faults.UnresolvedName, 0, 0,
		"Method %q is not defined in %s.", name, t.Name)
}

// GetAttribute finds an attribute binding by name on the view or any
// ancestor view.
func (t *TypeSemantic) GetAttribute(name string) (*Variable, error) {
	for v := t; v != nil; v = v.Parent {
		for _, a := range v.Attributes {
			if a.Name == name {
				return a, nil
			}
		}
	}
	return nil, faults.New(faults.UnresolvedName, 0, 0,
		"Attribute %q is not defined in %s.", name, t.Name)
}

// Scope is one node of the scope tree. Lookup walks parents; definitions
// are local.
type Scope struct {
	parent    *Scope
	variables []*Variable
	functions []*Function
	types     []*TypeSemantic
}

// NewScope returns an empty root scope.
func NewScope() *Scope { return &Scope{} }

// CreateChild returns a fresh scope whose lookups fall back to s.
func (s *Scope) CreateChild() *Scope { return &Scope{parent: s} }

// DefineVariable binds id to node in this scope.
func (s *Scope) DefineVariable(id ast.Ident, node *GraphNode) *GraphNode {
	s.variables = append(s.variables, &Variable{Name: id.Value, Node: node})
	return node
}

// GetDefinedVariable resolves id against this scope and its ancestors.
func (s *Scope) GetDefinedVariable(id ast.Ident) (*Variable, error) {
	for sc := s; sc != nil; sc = sc.parent {
		for _, v := range sc.variables {
			if v.Name == id.Value {
				return v, nil
			}
		}
	}
	return nil, faults.New(faults.UnresolvedName, id.Row, id.Col,
		"Variable %s is not defined.", id.Value)
}

// DefineFunction binds a callable in this scope.
func (s *Scope) DefineFunction(name string, node *GraphNode, args []*GraphNode) *GraphNode {
	s.functions = append(s.functions, &Function{Name: name, Node: node, Args: args})
	return node
}

// GetDefinedFunction resolves id against this scope and its ancestors.
func (s *Scope) GetDefinedFunction(id ast.Ident) (*Function, error) {
	for sc := s; sc != nil; sc = sc.parent {
		for _, f := range sc.functions {
			if f.Name == id.Value {
				return f, nil
			}
		}
	}
	return nil, faults.New(faults.UnresolvedName, id.Row, id.Col,
		"Function %s is not defined.", id.Value)
}

// CheckValidParams resolves id as a function and verifies the argument
// count in one step.
func (s *Scope) CheckValidParams(id ast.Ident, given int) (*Function, error) {
	f, err := s.GetDefinedFunction(id)
	if err != nil {
		return nil, err
	}
	if err := f.CheckValidParams(id, given); err != nil {
		return nil, err
	}
	return f, nil
}

// DefineType registers a type view in this scope.
func (s *Scope) DefineType(name string, functions []*Function, attributes []*Variable) *TypeSemantic {
	view := &TypeSemantic{Name: name, Functions: functions, Attributes: attributes}
	s.types = append(s.types, view)
	return view
}

// GetDefinedType resolves a type view by name against this scope and its
// ancestors.
func (s *Scope) GetDefinedType(name string) (*TypeSemantic, error) {
	for sc := s; sc != nil; sc = sc.parent {
		for _, t := range sc.types {
			if t.Name == name {
				return t, nil
			}
		}
	}
	return nil, faults.New(faults.UnresolvedName, 0, 0, "Type %s is not defined.", name)
}

// MethodTypeInference rewrites every non-vector class method's stored
// signature to the types inference assigned its parameter and body nodes.
func (s *Scope) MethodTypeInference(ctx *Context) error {
	for _, name := range ctx.TypeNames() {
		t := ctx.Types[name]
		if t.IsVector() {
			continue
		}
		view, err := s.GetDefinedType(t.Name)
		if err != nil {
			return err
		}
		newMethods := make([]*Method, 0, len(t.Methods))
		for _, method := range t.Methods {
			f, err := view.GetFunction(method.Name)
			if err != nil {
				return err
			}
			args := make([]Attribute, len(f.Args))
			for i, a := range f.Args {
				args[i] = Attribute{Name: fmt.Sprintf("%s_%d", f.Name, i), Type: a.Type}
			}
			newMethods = append(newMethods, &Method{Name: f.Name, Return: f.Node.Type, Arguments: args})
		}
		t.Methods = newMethods
	}
	return nil
}
