package sema

// This file is the immutable bootstrap snapshot: the predefined classes,
// protocols, and free functions loaded into a fresh context before type
// collection starts.

// NewContext returns a context seeded with the predefined types and
// methods of the language.
func NewContext() *Context {
	c := &Context{
		Types:     map[string]*Type{},
		Protocols: map[string]*Type{},
		Methods:   map[string]*Method{},
	}

	object := &Type{Name: "Object"}
	number := &Type{Name: "Number", Parent: object}
	stringT := &Type{Name: "String", Parent: object}
	boolean := &Type{Name: "Boolean", Parent: object}

	object.Methods = []*Method{
		{Name: "toString", Return: stringT},
	}

	c.AddType(object)
	c.AddType(number)
	c.AddType(stringT)
	c.AddType(boolean)

	iterable := &Type{
		Name:       "Iterable",
		IsProtocol: true,
		Methods: []*Method{
			{Name: "current", Return: object},
			{Name: "next", Return: boolean},
		},
	}
	c.AddProtocol(iterable)

	unaryNum := func(name string) *Method {
		return &Method{Name: name, Return: number, Arguments: []Attribute{{Name: "value", Type: number}}}
	}
	c.AddMethod(&Method{Name: "print", Return: object, Arguments: []Attribute{{Name: "value", Type: object}}})
	c.AddMethod(unaryNum("sqrt"))
	c.AddMethod(unaryNum("sin"))
	c.AddMethod(unaryNum("cos"))
	c.AddMethod(unaryNum("exp"))
	c.AddMethod(&Method{Name: "log", Return: number, Arguments: []Attribute{
		{Name: "base", Type: number}, {Name: "value", Type: number},
	}})
	c.AddMethod(&Method{Name: "rand", Return: number})
	c.AddMethod(&Method{Name: "range", Return: c.VectorOf(number), Arguments: []Attribute{
		{Name: "start", Type: number}, {Name: "end", Type: number},
	}})

	return c
}
