package lang

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
)

var (
	artOnce  sync.Once
	testLx   *lex.Lexer
	testTbl  *lr.Table
	artError error
)

func artifacts(t *testing.T) (*lex.Lexer, *lr.Table) {
	t.Helper()
	artOnce.Do(func() {
		testLx, artError = BuildLexer()
		if artError != nil {
			return
		}
		testTbl, artError = BuildTable()
	})
	require.NoError(t, artError)
	return testLx, testTbl
}

func Test_BuildTable_NoConflicts(t *testing.T) {
	_, tbl := artifacts(t)
	assert.Equal(t, GrammarName, tbl.GrammarName)
	assert.Greater(t, tbl.NumStates, 1)
}

func Test_Tokenize_Expression(t *testing.T) {
	lx, _ := artifacts(t)

	toks, err := Tokenize(lx, "print(2 + 3 * 4);")
	require.NoError(t, err)

	var kinds []lex.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []lex.Kind{
		lex.KindIdentifier, "(", lex.KindNumber, "+", lex.KindNumber, "*",
		lex.KindNumber, ")", ";", lex.KindEOF,
	}, kinds)
}

func Test_Tokenize_KeywordsAndComments(t *testing.T) {
	lx, _ := artifacts(t)

	toks, err := Tokenize(lx, "let x = true // trailing note\nin x")
	require.NoError(t, err)

	var kinds []lex.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []lex.Kind{
		"let", lex.KindIdentifier, "=", lex.KindBoolean, "in",
		lex.KindIdentifier, lex.KindEOF,
	}, kinds)
}

func Test_Parse_ArithmeticPrecedence(t *testing.T) {
	lx, tbl := artifacts(t)

	prog, err := Parse(lx, tbl, "2 + 3 * 4;")
	require.NoError(t, err)

	add, ok := prog.Expression.(ast.ArithmeticBinary)
	require.True(t, ok, "expected ArithmeticBinary at top, got %T", prog.Expression)
	assert.Equal(t, "+", add.Op)

	mul, ok := add.Right.(ast.ArithmeticBinary)
	require.True(t, ok, "expected * to bind tighter, got %T", add.Right)
	assert.Equal(t, "*", mul.Op)
}

func Test_Parse_CallAndPostfix(t *testing.T) {
	lx, tbl := artifacts(t)

	prog, err := Parse(lx, tbl, "print(new B().x);")
	require.NoError(t, err)

	call, ok := prog.Expression.(ast.ExpressionCall)
	require.True(t, ok)
	require.Len(t, call.Parameters, 1)

	propRead, ok := call.Parameters[0].(ast.InstanceProperty)
	require.True(t, ok, "got %T", call.Parameters[0])
	assert.Equal(t, "x", propRead.Property.Value)
	assert.IsType(t, ast.New{}, propRead.Expression)
}

func Test_Parse_Declarations(t *testing.T) {
	lx, tbl := artifacts(t)

	src := `
function double(x : Number) : Number => x * 2;
type A { x : Number = 1; }
protocol Hashable { hash() : Number; }
double(new A().x);
`
	prog, err := Parse(lx, tbl, src)
	require.NoError(t, err)

	require.Len(t, prog.FirstIs, 1)
	require.Len(t, prog.SecondIs, 2)
	assert.IsType(t, ast.FunctionDeclaration{}, prog.FirstIs[0])
	assert.IsType(t, ast.ClassDeclaration{}, prog.SecondIs[0])
	assert.IsType(t, ast.ProtocolDeclaration{}, prog.SecondIs[1])
}

func Test_Parse_LetIfWhileFor(t *testing.T) {
	lx, tbl := artifacts(t)

	prog, err := Parse(lx, tbl, "let v = [1, 2, 3] in for (x in v) if (x < 2) x elif (x < 3) 0 else 1;")
	require.NoError(t, err)

	let, ok := prog.Expression.(ast.Let)
	require.True(t, ok)
	require.Len(t, let.Assignments, 1)

	decl := let.Assignments[0].(ast.Declaration)
	assert.Equal(t, "v", decl.Name.Value)
	assert.IsType(t, ast.ExplicitArrayDeclaration{}, decl.Value)

	forExpr, ok := let.Body.(ast.For)
	require.True(t, ok)

	ifExpr, ok := forExpr.Body.(ast.If)
	require.True(t, ok)
	assert.Len(t, ifExpr.Elifs, 1)
}

func Test_Parse_AssignmentTargets(t *testing.T) {
	lx, tbl := artifacts(t)

	prog, err := Parse(lx, tbl, "let a = 1 in a := 2;")
	require.NoError(t, err)
	let := prog.Expression.(ast.Let)
	assert.IsType(t, ast.Assignment{}, let.Body)

	prog, err = Parse(lx, tbl, "let a = new P() in a.x := 2;")
	require.NoError(t, err)
	let = prog.Expression.(ast.Let)
	assert.IsType(t, ast.AssignmentProperty{}, let.Body)

	prog, err = Parse(lx, tbl, "let a = [1] in a[0] := 2;")
	require.NoError(t, err)
	let = prog.Expression.(ast.Let)
	assert.IsType(t, ast.AssignmentArray{}, let.Body)

	prog, err = Parse(lx, tbl, "1 + 1 := 2;")
	require.NoError(t, err)
	assert.IsType(t, ast.InvalidAssignment{}, prog.Expression)
}

func Test_Parse_ImplicitArrayAndIsAs(t *testing.T) {
	lx, tbl := artifacts(t)

	prog, err := Parse(lx, tbl, "let v = [x * x || x in range(1, 10)] in v is [Number];")
	require.NoError(t, err)

	let := prog.Expression.(ast.Let)
	decl := let.Assignments[0].(ast.Declaration)
	assert.IsType(t, ast.ImplicitArrayDeclaration{}, decl.Value)

	isExpr, ok := let.Body.(ast.Is)
	require.True(t, ok)
	assert.IsType(t, ast.VectorType{}, isExpr.TypeName)
}

func Test_Parse_SyntaxErrorHasPosition(t *testing.T) {
	lx, tbl := artifacts(t)

	_, err := Parse(lx, tbl, "print(2 + );")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error at 1:11")
}

func Test_Parse_Reparse_Idempotent(t *testing.T) {
	lx, tbl := artifacts(t)

	src := `
function double(x : Number) : Number => x * 2;
type B inherits A { y : Number = 2; scale(k) => self.y * k; }
type A { x : Number = 1; }
let v = [1, 2, 3] in if (v.size() > 2) double(v.get(0)) else 0;
`
	prog, err := Parse(lx, tbl, src)
	require.NoError(t, err)

	printed := prog.Print()
	reparsed, err := Parse(lx, tbl, printed)
	require.NoError(t, err, "printed source did not reparse:\n%s", printed)

	assert.Equal(t, printed, reparsed.Print())
}
