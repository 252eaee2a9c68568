package sema

import (
	"github.com/dekarrin/gizzard/internal/fe/ast"
)

// Pass 1 — type collection. Walks the top-level declarations and registers
// class and protocol names in the context, without yet attaching parents,
// attributes, or methods. The context arrives pre-seeded with the
// predefined types (NewContext).

func collect(ctx *Context, prog ast.Program, errs *[]error) {
	for _, st := range prog.SecondIs {
		switch d := st.(type) {
		case ast.ClassDeclaration:
			if _, err := ctx.CreateType(classHeadName(d.ClassType)); err != nil {
				*errs = append(*errs, err)
			}
		case ast.ProtocolDeclaration:
			pt := d.ProtocolType.(ast.ProtocolType)
			if _, err := ctx.CreateProtocol(pt.Name); err != nil {
				*errs = append(*errs, err)
			}
		}
	}
}

func classHeadName(head ast.Node) ast.Ident {
	switch h := head.(type) {
	case ast.ClassType:
		return h.Name
	case ast.ClassTypeParameter:
		return h.Name
	default:
		return ast.Ident{}
	}
}
