// Completion: 100% - concurrency hoisting tests
package loom

import "testing"

func TestSpawnBlocksAreNumberedInDiscoveryOrder(t *testing.T) {
	file := &SourceFile{Items: []Item{
		&StmtItem{Stmt: &ExprStmt{X: &SpawnExpr{
			Span: Span{Start: 10},
			Body: &Block{Stmts: []Statement{&ExprStmt{X: &IntLit{Value: 1}}}},
		}}},
		&StmtItem{Stmt: &ExprStmt{X: &SpawnExpr{
			Span: Span{Start: 50},
			Body: &Block{Stmts: []Statement{&ExprStmt{X: &IntLit{Value: 2}}}},
		}}},
	}}

	h := hoistConcurrency(file)
	if got := h.spawn[10]; got != "__spawn_block_0" {
		t.Errorf("first spawn = %q, want __spawn_block_0", got)
	}
	if got := h.spawn[50]; got != "__spawn_block_1" {
		t.Errorf("second spawn = %q, want __spawn_block_1", got)
	}
	if len(h.funcs) != 2 {
		t.Errorf("hoisted %d functions, want 2", len(h.funcs))
	}
}

func TestAsyncHoistsOneFunctionPerStatement(t *testing.T) {
	file := &SourceFile{Items: []Item{
		&StmtItem{Stmt: &ExprStmt{X: &AsyncExpr{
			Span: Span{Start: 7},
			Body: &Block{Stmts: []Statement{
				&ExprStmt{X: &IntLit{Value: 1}},
				&ExprStmt{X: &IntLit{Value: 2}},
				&ExprStmt{X: &IntLit{Value: 3}},
			}},
		}}},
	}}

	h := hoistConcurrency(file)
	names := h.async[7]
	want := []string{"__async_block_0_0", "__async_block_0_1", "__async_block_0_2"}
	if len(names) != len(want) {
		t.Fatalf("got %d async functions, want %d", len(names), len(want))
	}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("async[%d] = %q, want %q", i, n, want[i])
		}
	}
	// Each hoisted entry carries a single statement, not a block.
	for _, hf := range h.funcs {
		if hf.Stmt == nil || hf.Body != nil {
			t.Errorf("async function %s should carry one statement", hf.Name)
		}
	}
}

func TestHoistFindsBlocksInsideFunctionBodies(t *testing.T) {
	file := &SourceFile{Items: []Item{
		&FuncDecl{Name: "worker", Body: &Block{Stmts: []Statement{
			&IfStmt{
				Cond: &IntLit{Value: 1},
				Then: &Block{Stmts: []Statement{
					&ExprStmt{X: &SpawnExpr{
						Span: Span{Start: 33},
						Body: &Block{},
					}},
				}},
			},
		}}},
	}}

	h := hoistConcurrency(file)
	if _, ok := h.spawn[33]; !ok {
		t.Error("spawn nested under if was not hoisted")
	}
}

func TestNestedSpawnInsideSpawnBody(t *testing.T) {
	inner := &SpawnExpr{Span: Span{Start: 20}, Body: &Block{}}
	outer := &SpawnExpr{
		Span: Span{Start: 5},
		Body: &Block{Stmts: []Statement{&ExprStmt{X: inner}}},
	}
	file := &SourceFile{Items: []Item{&StmtItem{Stmt: &ExprStmt{X: outer}}}}

	h := hoistConcurrency(file)
	if len(h.spawn) != 2 {
		t.Fatalf("hoisted %d spawns, want 2", len(h.spawn))
	}
	if h.spawn[5] != "__spawn_block_0" || h.spawn[20] != "__spawn_block_1" {
		t.Errorf("nested spawn names = %q, %q", h.spawn[5], h.spawn[20])
	}
}
