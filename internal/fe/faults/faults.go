// Package faults defines the categorized errors the compiler front-end
// accumulates. Every stage reports problems as one of a fixed set of
// categories, and every user-visible fault carries the row and column of the
// token that caused it.
package faults

import (
	"errors"
	"fmt"
)

// Category is the kind of fault that occurred.
type Category int

const (
	// Uncategorized is the zero Category; it is never produced by the
	// constructors in this package.
	Uncategorized Category = iota

	// Lexical faults come from the lexer: no token rule matched any prefix
	// of the input at the reported position.
	Lexical

	// Syntactic faults come from the parser: the offending token could not
	// be shifted or reduced in the current state.
	Syntactic

	// DuplicateDeclaration faults come from the type collector: a class,
	// protocol, or method name was declared more than once.
	DuplicateDeclaration

	// UnresolvedName faults come from any pass that fails to look up a
	// variable, function, type, or protocol by name.
	UnresolvedName

	// CircularInheritance faults come from the type builder's parent walk.
	CircularInheritance

	// ProtocolRedeclaration faults come from the type builder: a protocol
	// redeclared a method already present in its parent.
	ProtocolRedeclaration

	// ForbiddenInheritance faults come from the type builder: a class tried
	// to inherit from Number, String, or Boolean.
	ForbiddenInheritance

	// InconsistentInference faults come from the semantic graph: a node's
	// resolved type conflicted with a constraint on it.
	InconsistentInference

	// OverrideMismatch faults come from the post-inference override check.
	OverrideMismatch

	// ArityMismatch faults come from the checker: a call site supplied the
	// wrong number of arguments.
	ArityMismatch
)

func (c Category) String() string {
	switch c {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntactic"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case UnresolvedName:
		return "unresolved name"
	case CircularInheritance:
		return "circular inheritance"
	case ProtocolRedeclaration:
		return "protocol redeclaration"
	case ForbiddenInheritance:
		return "forbidden inheritance"
	case InconsistentInference:
		return "inconsistent inference"
	case OverrideMismatch:
		return "override mismatch"
	case ArityMismatch:
		return "arity mismatch"
	default:
		return "uncategorized"
	}
}

// fault is the concrete error type behind every constructor here. It is
// unexported; callers work with the error interface and the package-level
// inspection helpers.
type fault struct {
	cat  Category
	msg  string
	row  int
	col  int
	wrap error
}

func (f *fault) Error() string {
	if f.row > 0 || f.col > 0 {
		return fmt.Sprintf("%s Error at %d:%d", f.msg, f.row, f.col)
	}
	return f.msg
}

// Unwrap gives the error the fault wraps, if it wraps one.
func (f *fault) Unwrap() error {
	return f.wrap
}

// New creates a fault of the given category at the given position. Row and
// col may both be zero for faults with no single originating token.
func New(cat Category, row, col int, format string, a ...interface{}) error {
	return &fault{
		cat: cat,
		msg: fmt.Sprintf(format, a...),
		row: row,
		col: col,
	}
}

// Wrap creates a fault of the given category that wraps an underlying error.
func Wrap(wrapped error, cat Category, row, col int, format string, a ...interface{}) error {
	return &fault{
		cat:  cat,
		msg:  fmt.Sprintf(format, a...),
		row:  row,
		col:  col,
		wrap: wrapped,
	}
}

// CategoryOf returns the category of err if it is (or wraps) a fault from
// this package, else Uncategorized.
func CategoryOf(err error) Category {
	var f *fault
	if errors.As(err, &f) {
		return f.cat
	}
	return Uncategorized
}

// PositionOf returns the row and column of err if it is (or wraps) a fault
// from this package; both are 0 otherwise.
func PositionOf(err error) (row, col int) {
	var f *fault
	if errors.As(err, &f) {
		return f.row, f.col
	}
	return 0, 0
}

// Message gets the message to display for the given error: the fault's
// position-suffixed message when it is one of this package's categories,
// err.Error() otherwise.
func Message(err error) string {
	var f *fault
	if errors.As(err, &f) {
		return f.Error()
	}
	return err.Error()
}
