package ast

import (
	"fmt"
	"strings"
)

// The Print renderings parenthesize every compound expression, so printing
// and reparsing yields a structurally equivalent tree regardless of the
// precedence the original source relied on.

func printList(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.Print()
	}
	return strings.Join(parts, sep)
}

func printParams(params []Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if _, untyped := p.Type.(EOFType); untyped {
			parts[i] = p.Name.Value
		} else {
			parts[i] = fmt.Sprintf("%s : %s", p.Name.Value, p.Type.Print())
		}
	}
	return strings.Join(parts, ", ")
}

func (n Program) Print() string {
	var sb strings.Builder
	for _, d := range n.FirstIs {
		sb.WriteString(d.Print())
		sb.WriteString("\n")
	}
	for _, d := range n.SecondIs {
		sb.WriteString(d.Print())
		sb.WriteString("\n")
	}
	sb.WriteString(n.Expression.Print())
	sb.WriteString(";")
	return sb.String()
}

func (n FunctionDeclaration) Print() string {
	ret := ""
	if _, untyped := n.ReturnType.(EOFType); !untyped {
		ret = " : " + n.ReturnType.Print()
	}
	if blk, ok := n.Body.(ExpressionBlock); ok {
		return fmt.Sprintf("function %s(%s)%s %s", n.Name.Value, printParams(n.Parameters), ret, blk.Print())
	}
	return fmt.Sprintf("function %s(%s)%s => %s;", n.Name.Value, printParams(n.Parameters), ret, n.Body.Print())
}

func (n ClassDeclaration) Print() string {
	var sb strings.Builder
	sb.WriteString("type ")
	sb.WriteString(n.ClassType.Print())
	if _, none := n.Inheritance.(EOFInherits); !none {
		sb.WriteString(" ")
		sb.WriteString(n.Inheritance.Print())
	}
	sb.WriteString(" {\n")
	for _, m := range n.Body {
		sb.WriteString("\t")
		sb.WriteString(m.Print())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (n ClassType) Print() string { return n.Name.Value }

func (n ClassTypeParameter) Print() string {
	return fmt.Sprintf("%s(%s)", n.Name.Value, printParams(n.Parameters))
}

func (n Inheritance) Print() string { return "inherits " + n.Name.Value }

func (n InheritanceParameter) Print() string {
	return fmt.Sprintf("inherits %s(%s)", n.Name.Value, printList(n.Parameters, ", "))
}

func (n ClassProperty) Print() string {
	var sb strings.Builder
	sb.WriteString(n.Name.Value)
	if _, untyped := n.Type.(EOFType); !untyped {
		sb.WriteString(" : ")
		sb.WriteString(n.Type.Print())
	}
	if n.Expression != nil {
		sb.WriteString(" = ")
		sb.WriteString(n.Expression.Print())
	}
	sb.WriteString(";")
	return sb.String()
}

func (n ClassFunction) Print() string {
	ret := ""
	if _, untyped := n.Type.(EOFType); !untyped {
		ret = " : " + n.Type.Print()
	}
	if blk, ok := n.Body.(ExpressionBlock); ok {
		return fmt.Sprintf("%s(%s)%s %s", n.Name.Value, printParams(n.Parameters), ret, blk.Print())
	}
	return fmt.Sprintf("%s(%s)%s => %s;", n.Name.Value, printParams(n.Parameters), ret, n.Body.Print())
}

func (n ProtocolDeclaration) Print() string {
	var sb strings.Builder
	sb.WriteString("protocol ")
	sb.WriteString(n.ProtocolType.Print())
	if _, none := n.Extension.(EOFExtension); !none {
		sb.WriteString(" ")
		sb.WriteString(n.Extension.Print())
	}
	sb.WriteString(" {\n")
	for _, m := range n.Body {
		sb.WriteString("\t")
		sb.WriteString(m.Print())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (n ProtocolType) Print() string { return n.Name.Value }
func (n Extension) Print() string    { return "extends " + n.Name.Value }

func (n ProtocolFunction) Print() string {
	return fmt.Sprintf("%s(%s) : %s;", n.Name.Value, printParams(n.Parameters), n.Type.Print())
}

func (n Atomic) Print() string { return n.Name.Value }

func (n Constant) Print() string { return n.Value }

func (n ExpressionBlock) Print() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, in := range n.Instructions {
		sb.WriteString("\t")
		sb.WriteString(in.Print())
		sb.WriteString(";\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (n If) Print() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "(if (%s) %s", n.Condition.Print(), n.Body.Print())
	for _, e := range n.Elifs {
		sb.WriteString(" ")
		sb.WriteString(e.Print())
	}
	fmt.Fprintf(&sb, " else %s)", n.Else.Print())
	return sb.String()
}

func (n Elif) Print() string {
	return fmt.Sprintf("elif (%s) %s", n.Condition.Print(), n.Body.Print())
}

func (n While) Print() string {
	return fmt.Sprintf("(while (%s) %s)", n.Condition.Print(), n.Body.Print())
}

func (n For) Print() string {
	return fmt.Sprintf("(for (%s in %s) %s)", n.Variable.Value, n.Iterable.Print(), n.Body.Print())
}

func (n Let) Print() string {
	binds := make([]string, len(n.Assignments))
	for i, a := range n.Assignments {
		d := a.(Declaration)
		if _, untyped := d.Type.(EOFType); untyped {
			binds[i] = fmt.Sprintf("%s = %s", d.Name.Value, d.Value.Print())
		} else {
			binds[i] = fmt.Sprintf("%s : %s = %s", d.Name.Value, d.Type.Print(), d.Value.Print())
		}
	}
	return fmt.Sprintf("(let %s in %s)", strings.Join(binds, ", "), n.Body.Print())
}

func (n Declaration) Print() string {
	if _, untyped := n.Type.(EOFType); untyped {
		return fmt.Sprintf("%s = %s", n.Name.Value, n.Value.Print())
	}
	return fmt.Sprintf("%s : %s = %s", n.Name.Value, n.Type.Print(), n.Value.Print())
}

func (n Assignment) Print() string {
	return fmt.Sprintf("(%s := %s)", n.Name.Value, n.Value.Print())
}

func (n ArithmeticBinary) Print() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.Print(), n.Op, n.Right.Print())
}

func (n ArithmeticUnary) Print() string {
	return fmt.Sprintf("(%s%s)", n.Op, n.Child.Print())
}

func (n BooleanBinary) Print() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.Print(), n.Op, n.Right.Print())
}

func (n BooleanUnary) Print() string {
	return fmt.Sprintf("(%s%s)", n.Op, n.Child.Print())
}

func (n StringBinary) Print() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.Print(), n.Op, n.Right.Print())
}

func (n New) Print() string {
	return fmt.Sprintf("(new %s(%s))", n.Name.Value, printList(n.Arguments, ", "))
}

func (n Is) Print() string {
	return fmt.Sprintf("(%s is %s)", n.Expression.Print(), n.TypeName.Print())
}

func (n As) Print() string {
	return fmt.Sprintf("(%s as %s)", n.Expression.Print(), n.TypeName.Print())
}

func (n ExpressionCall) Print() string {
	return fmt.Sprintf("%s(%s)", n.Name.Value, printList(n.Parameters, ", "))
}

func (n InstanceProperty) Print() string {
	return fmt.Sprintf("%s.%s", n.Expression.Print(), n.Property.Value)
}

func (n AssignmentProperty) Print() string {
	return fmt.Sprintf("(%s.%s := %s)", n.Expression.Print(), n.Property.Value, n.Value.Print())
}

func (n InstanceFunction) Print() string {
	return fmt.Sprintf("%s.%s(%s)", n.Expression.Print(), n.Name.Value, printList(n.Parameters, ", "))
}

func (n ExplicitArrayDeclaration) Print() string {
	return fmt.Sprintf("[%s]", printList(n.Values, ", "))
}

func (n ImplicitArrayDeclaration) Print() string {
	return fmt.Sprintf("[%s || %s in %s]", n.Expression.Print(), n.Item.Value, n.Iterable.Print())
}

func (n ArrayCall) Print() string {
	return fmt.Sprintf("%s[%s]", n.Expression.Print(), n.Indexer.Print())
}

func (n AssignmentArray) Print() string {
	return fmt.Sprintf("(%s := %s)", n.ArrayCall.Print(), n.Value.Print())
}

func (n InvalidAssignment) Print() string {
	return fmt.Sprintf("(%s := %s)", n.Target.Print(), n.Value.Print())
}

func (n Type) Print() string       { return n.Name.Value }
func (n VectorType) Print() string { return "[" + n.Name.Value + "]" }

func (EOFType) Print() string      { return "" }
func (EOFInherits) Print() string  { return "" }
func (EOFExtension) Print() string { return "" }
