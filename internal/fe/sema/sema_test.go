package sema

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gizzard/internal/fe/faults"
	"github.com/dekarrin/gizzard/internal/fe/lang"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
)

var (
	artOnce sync.Once
	testLx  *lex.Lexer
	testTbl *lr.Table
	artErr  error
)

func analyzeSource(t *testing.T, src string) Result {
	t.Helper()
	artOnce.Do(func() {
		testLx, artErr = lang.BuildLexer()
		if artErr != nil {
			return
		}
		testTbl, artErr = lang.BuildTable()
	})
	require.NoError(t, artErr)

	prog, err := lang.Parse(testLx, testTbl, src)
	require.NoError(t, err)
	return Analyze(prog)
}

func errorsText(res Result) string {
	var parts []string
	for _, e := range res.Errors {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

func Test_Analyze_ArithmeticExpression(t *testing.T) {
	res := analyzeSource(t, "print(2 + 3 * 4);")
	assert.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Analyze_ClassWithInheritance(t *testing.T) {
	res := analyzeSource(t, `
type A { x : Number = 1; }
type B inherits A { y : Number = 2; }
new B().x + new B().y;
`)
	require.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))

	a := res.Context.Types["A"]
	b := res.Context.Types["B"]
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, "A", b.Parent.Name)

	x, ok := a.GetAttribute("x")
	require.True(t, ok)
	assert.Equal(t, "Number", x.Type.Name)

	y, ok := b.GetAttribute("y")
	require.True(t, ok)
	assert.Equal(t, "Number", y.Type.Name)
}

func Test_Analyze_ProtocolImplementation(t *testing.T) {
	res := analyzeSource(t, `
type A { hash() : Number => 1; }
protocol Hashable { hash() : Number; }
new A().hash();
`)
	require.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))

	a := res.Context.Types["A"]
	require.NotNil(t, a)

	implemented := false
	for _, p := range a.Implements {
		if p.Name == "Hashable" {
			implemented = true
		}
	}
	assert.True(t, implemented, "A should implement Hashable")

	hashable := res.Context.Protocols["Hashable"]
	require.NotNil(t, hashable)
	assert.True(t, a.ConformsTo(hashable))
}

func Test_Analyze_CircularInheritanceRejected(t *testing.T) {
	res := analyzeSource(t, `
type A inherits B { }
type B inherits A { }
1;
`)
	require.False(t, res.OK)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), "Circular inheritance")
	assert.Equal(t, faults.CircularInheritance, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_ForbiddenInheritance(t *testing.T) {
	res := analyzeSource(t, `
type A inherits Number { }
1;
`)
	require.False(t, res.OK)
	assert.Equal(t, faults.ForbiddenInheritance, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_DuplicateTypeDeclaration(t *testing.T) {
	res := analyzeSource(t, `
type A { }
type A { }
1;
`)
	require.False(t, res.OK)
	assert.Equal(t, faults.DuplicateDeclaration, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_ProtocolRedeclarationRejected(t *testing.T) {
	res := analyzeSource(t, `
protocol P { hash() : Number; }
protocol Q extends P { hash() : Number; }
1;
`)
	require.False(t, res.OK)
	assert.Equal(t, faults.ProtocolRedeclaration, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_UnresolvedVariable(t *testing.T) {
	res := analyzeSource(t, "print(missing);")
	require.False(t, res.OK)
	assert.Equal(t, faults.UnresolvedName, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_ArityMismatch(t *testing.T) {
	res := analyzeSource(t, "print(1, 2);")
	require.False(t, res.OK)
	assert.Equal(t, faults.ArityMismatch, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_VectorLetBinding(t *testing.T) {
	res := analyzeSource(t, "let v = [1, 2, 3] in v.size();")
	assert.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Analyze_MixedVectorAgainstNumberVectorFails(t *testing.T) {
	res := analyzeSource(t, `let v : [Number] = [1, "x"] in v;`)
	require.False(t, res.OK)
	assert.Equal(t, faults.InconsistentInference, faults.CategoryOf(res.Errors[0]))
}

func Test_Analyze_BooleanConditionRequired(t *testing.T) {
	res := analyzeSource(t, `if ("nope") 1 else 2;`)
	assert.False(t, res.OK)
}

func Test_Analyze_MethodSignatureMaterialization(t *testing.T) {
	res := analyzeSource(t, `
type A { twice(k) => k * 2; }
new A().twice(4);
`)
	require.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))

	a := res.Context.Types["A"]
	m, ok := a.GetMethod("twice")
	require.True(t, ok)
	require.Len(t, m.Arguments, 1)
	assert.Equal(t, "Number", m.Arguments[0].Type.Name)
	assert.Equal(t, "Number", m.Return.Name)
}

func Test_Analyze_OverrideMismatchRejected(t *testing.T) {
	res := analyzeSource(t, `
type A { f(x : Number) : Number => x; }
type B inherits A { f(x : String) : Number => 1; }
1;
`)
	require.False(t, res.OK)

	found := false
	for _, e := range res.Errors {
		if faults.CategoryOf(e) == faults.OverrideMismatch {
			found = true
		}
	}
	assert.True(t, found, "expected an override-mismatch fault, got:\n%s", errorsText(res))
}

func Test_Analyze_FunctionReturnInference(t *testing.T) {
	res := analyzeSource(t, `
function double(x : Number) => x * 2;
double(21) + 1;
`)
	require.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Graph_VectorLubOfNumbers(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)
	number := ctx.Types["Number"]

	vec := g.AddNode(g.Vector)
	for i := 0; i < 3; i++ {
		g.AddPath(vec, g.AddNode(number))
	}

	typ, err := g.LocalInference(vec)
	require.NoError(t, err)
	assert.Equal(t, "[Number]", typ.Name)
}

func Test_Graph_VectorLubOfMixedIsObject(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)

	vec := g.AddNode(g.Vector)
	g.AddPath(vec, g.AddNode(ctx.Types["Number"]))
	g.AddPath(vec, g.AddNode(ctx.Types["String"]))

	typ, err := g.LocalInference(vec)
	require.NoError(t, err)
	assert.Equal(t, "[Object]", typ.Name)
}

func Test_Graph_EmptyVectorLeafIsObjectVector(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)

	vec := g.AddNode(g.Vector)
	require.NoError(t, g.TypeInference())
	assert.Equal(t, "[Object]", vec.Type.Name)
}

func Test_Graph_NestedVectorIsError(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)

	inner := g.AddNode(ctx.VectorOf(ctx.Types["Number"]))
	vec := g.AddNode(g.Vector)
	g.AddPath(vec, inner)

	_, err := g.LocalInference(vec)
	assert.Error(t, err)
}

func Test_Graph_SCCWithConflictingTypesIsError(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)

	a := g.AddNode(ctx.Types["Number"])
	b := g.AddNode(ctx.Types["String"])
	g.AddPath(a, b)
	g.AddPath(b, a)

	err := g.TypeInference()
	require.Error(t, err)
	assert.Equal(t, faults.InconsistentInference, faults.CategoryOf(err))
}

func Test_Graph_SCCWithAgreeingTypesIsFine(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)
	number := ctx.Types["Number"]

	a := g.AddNode(number)
	b := g.AddNode(number)
	g.AddPath(a, b)
	g.AddPath(b, a)

	assert.NoError(t, g.TypeInference())
}

func Test_Graph_MonotonicUnderSatisfiedEdge(t *testing.T) {
	ctx := NewContext()
	number := ctx.Types["Number"]

	infer := func(extraEdge bool) *Type {
		g := NewGraph(ctx)
		parent := g.AddNode(nil)
		child := g.AddNode(number)
		g.AddPath(parent, child)
		if extraEdge {
			// an already-satisfied conformance edge: Number conforms to
			// Object.
			obj := g.AddNode(ctx.Object())
			g.AddPath(obj, child)
		}
		if err := g.TypeInference(); err != nil {
			t.Fatalf("inference failed: %v", err)
		}
		return parent.Type
	}

	assert.Equal(t, infer(false).Name, infer(true).Name)
}

func Test_LCA_ClassHierarchy(t *testing.T) {
	ctx := NewContext()
	g := NewGraph(ctx)

	object := ctx.Object()
	a := ctx.AddType(&Type{Name: "A", Parent: object})
	b := ctx.AddType(&Type{Name: "B", Parent: a})
	c := ctx.AddType(&Type{Name: "C", Parent: a})

	assert.Equal(t, "A", g.lub(b, c).Name)
	assert.Equal(t, "A", g.lub(a, b).Name)
	assert.Equal(t, "Object", g.lub(b, ctx.Types["Number"]).Name)
	assert.Equal(t, "Error", g.lub(g.Error, b).Name)
}

func Test_Conformance(t *testing.T) {
	ctx := NewContext()

	object := ctx.Object()
	number := ctx.Types["Number"]
	a := &Type{Name: "A", Parent: object}

	assert.True(t, number.ConformsTo(object))
	assert.True(t, a.ConformsTo(object))
	assert.True(t, a.ConformsTo(a))
	assert.False(t, object.ConformsTo(number))
	assert.False(t, a.ConformsTo(number))
}

func Test_Program_ExpressionRequiredInference(t *testing.T) {
	// the program expression node collects the final value; a block's value
	// is its last instruction's.
	res := analyzeSource(t, `{ print(1); print("two"); };`)
	assert.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Analyze_SelfAndBase(t *testing.T) {
	res := analyzeSource(t, `
type A { x : Number = 1; id() : Number => self.x; }
type B inherits A { id() : Number => base() + 1; }
new B().id();
`)
	assert.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Analyze_PropertyDefaultValue(t *testing.T) {
	res := analyzeSource(t, `
type A { x : Number; s : String; b : Boolean; }
new A().x;
`)
	assert.True(t, res.OK, "unexpected errors:\n%s", errorsText(res))
}

func Test_Analyze_PropertyWithoutDefaultRejected(t *testing.T) {
	res := analyzeSource(t, `
type B { }
type A { other : B; }
new A().other;
`)
	require.False(t, res.OK)
	assert.Equal(t, faults.UnresolvedName, faults.CategoryOf(res.Errors[0]))
}
