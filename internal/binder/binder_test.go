package binder

import (
	"testing"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
)

// fixture builds:
//
//	function outer() {
//	    var x = 1;
//	    if (x) {
//	        var y = 2;
//	    } else {
//	        y = 3;
//	    }
//	    return y;
//	}
//	var x = 2; // duplicate identifier
//
// `y` is declared inside the if-block but, being `var`, must be visible at
// both the else-branch assignment and the trailing return — exercising the
// hoisting pre-pass across a block boundary. The second top-level `var x`
// triggers a duplicate-identifier diagnostic against the first one.
func buildFixture(t *testing.T) (*ast.Builder, ast.FileID) {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{}, nil)
	file := ast.FileID(1)

	xName := b.Intern("x")
	yName := b.Intern("y")
	outerName := b.Intern("outer")

	one := b.NewNode(ast.Node{Kind: ast.KindNumericLiteral, Value: 1})
	two := b.NewNode(ast.Node{Kind: ast.KindNumericLiteral, Value: 2})
	three := b.NewNode(ast.Node{Kind: ast.KindNumericLiteral, Value: 3})

	innerVarY := b.NewVarDecl(ast.VarKindVar, yName, ast.NoNodeIndex, two, 0, source.Span{})
	thenBlock := b.NewBlock([]ast.NodeIndex{innerVarY}, source.Span{})

	yIdentTarget := b.NewIdentifier(yName, source.Span{})
	assignY := b.NewNode(ast.Node{Kind: ast.KindAssignmentExpr, Left: yIdentTarget, Right: three})
	assignYStmt := b.NewNode(ast.Node{Kind: ast.KindExpressionStmt, Left: assignY})
	elseBlock := b.NewBlock([]ast.NodeIndex{assignYStmt}, source.Span{})

	xIdentCond := b.NewIdentifier(xName, source.Span{})
	ifStmt := b.NewNode(ast.Node{
		Kind:     ast.KindIfStmt,
		Left:     xIdentCond,
		Right:    thenBlock,
		Children: []ast.NodeIndex{elseBlock},
	})

	yIdentReturn := b.NewIdentifier(yName, source.Span{})
	returnStmt := b.NewNode(ast.Node{Kind: ast.KindReturnStmt, Left: yIdentReturn})

	outerVarX := b.NewVarDecl(ast.VarKindVar, xName, ast.NoNodeIndex, one, 0, source.Span{})
	funcBody := b.NewBlock([]ast.NodeIndex{outerVarX, ifStmt, returnStmt}, source.Span{})

	funcDecl := b.NewFunctionDecl(outerName, ast.FuncInfo{Body: funcBody}, 0, source.Span{})

	topVarX1 := b.NewVarDecl(ast.VarKindVar, xName, ast.NoNodeIndex, one, 0, source.Span{File: source.FileID(file), Start: 50, End: 51})
	topVarX2 := b.NewVarDecl(ast.VarKindVar, xName, ast.NoNodeIndex, two, 0, source.Span{File: source.FileID(file), Start: 100, End: 101})

	b.NewSourceFile(file, source.Span{}, []ast.NodeIndex{funcDecl, topVarX1, topVarX2})
	return b, file
}

func TestBindHoistsFunctionDeclarationIntoFileScope(t *testing.T) {
	builder, file := buildFixture(t)
	bag := diag.NewBag(16)
	res, err := Bind(builder, file, Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	funcDecl, ok := builder.FileRoot(file)
	if !ok {
		t.Fatalf("no file root recorded")
	}
	stmts, ok := builder.GetSourceFile(funcDecl)
	if !ok || len(stmts) != 3 {
		t.Fatalf("expected 3 top-level statements, got %v", stmts)
	}

	fScope := res.Scopes.Get(res.FileScope)
	if fScope == nil {
		t.Fatalf("file scope missing")
	}
	outerName := builder.Intern("outer")
	if _, ok := fScope.Table.Get(outerName); !ok {
		t.Fatalf("function declaration outer was not hoisted into the file scope")
	}
}

func TestBindReportsDuplicateVarDeclaration(t *testing.T) {
	builder, file := buildFixture(t)
	bag := diag.NewBag(16)
	_, err := Bind(builder, file, Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SemaDuplicateIdentifier {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a duplicate-identifier diagnostic for the second top-level 'x', got %+v", bag.Items())
	}
}

func TestBindConstructsFlowGraphForIfElse(t *testing.T) {
	builder, file := buildFixture(t)
	res, err := Bind(builder, file, Options{})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if res.Flow.Len() <= 1 {
		t.Fatalf("expected the if/else to add flow nodes beyond the Start node, got %d", res.Flow.Len())
	}
}

func TestBindResolvesVarHoistedFromNestedBlock(t *testing.T) {
	builder, file := buildFixture(t)
	bag := diag.NewBag(16)
	res, err := Bind(builder, file, Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	for _, d := range bag.Items() {
		if d.Code == diag.SemaCannotFind {
			t.Fatalf("unexpected unresolved-name diagnostic: %s", d.Message)
		}
	}

	if res.Features.HasAsync || res.Features.HasGenerator {
		t.Fatalf("fixture uses neither async nor generator syntax")
	}
}
