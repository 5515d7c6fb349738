// Completion: 100% - spawn/async block hoisting
package loom

import "fmt"

// Spawn and async blocks run on other threads, so their bodies cannot
// stay inline; each becomes a synthetic zero-parameter function
// declared before any body is compiled. The hoisting pass walks the
// whole program, assigns names, and keys the results by the span
// start of the originating expression so the expression compiler can
// find its synthetic function later.

// hoistedFunc is one synthetic function produced by hoisting.
type hoistedFunc struct {
	Name string
	Body *Block    // whole block for spawn
	Stmt Statement // single statement for async
}

// hoistSet is the result of the hoisting pass.
type hoistSet struct {
	// spawn maps a spawn expression's span start to its synthetic
	// function name.
	spawn map[uint32]string
	// async maps an async expression's span start to the names of the
	// per-statement synthetic functions, in statement order.
	async map[uint32][]string
	// all synthetic functions in discovery order, for declaration and
	// body compilation.
	funcs []hoistedFunc

	nspawn int
	nasync int
}

// hoistConcurrency walks file and extracts every spawn and async
// block into the returned set.
func hoistConcurrency(file *SourceFile) *hoistSet {
	h := &hoistSet{
		spawn: make(map[uint32]string),
		async: make(map[uint32][]string),
	}
	for _, item := range file.Items {
		switch it := item.(type) {
		case *FuncDecl:
			h.walkBlock(it.Body)
		case *MethodDecl:
			h.walkBlock(it.Body)
		case *StmtItem:
			h.walkStmt(it.Stmt)
		}
	}
	return h
}

func (h *hoistSet) walkBlock(blk *Block) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		h.walkStmt(s)
	}
}

func (h *hoistSet) walkStmt(s Statement) {
	switch st := s.(type) {
	case *ExprStmt:
		h.walkExpr(st.X)
	case *AssignStmt:
		h.walkExpr(st.Value)
		for _, t := range st.Targets {
			h.walkTarget(t)
		}
	case *ReturnStmt:
		h.walkExpr(st.Value)
	case *IfStmt:
		h.walkExpr(st.Cond)
		h.walkBlock(st.Then)
		h.walkBlock(st.Else)
	case *WhileStmt:
		h.walkExpr(st.Cond)
		h.walkBlock(st.Body)
	case *ForStmt:
		h.walkExpr(st.Iter)
		h.walkBlock(st.Body)
	case *TryStmt:
		h.walkBlock(st.Body)
		h.walkBlock(st.Catch)
	}
}

func (h *hoistSet) walkTarget(t AssignTarget) {
	switch tt := t.(type) {
	case *FieldTarget:
		h.walkTarget(tt.Object)
	case *IndexTarget:
		h.walkTarget(tt.Object)
		h.walkExpr(tt.Index)
	}
}

func (h *hoistSet) walkExpr(e Expression) {
	switch ex := e.(type) {
	case nil:
		return
	case *SpawnExpr:
		name := h.addSpawn(ex)
		h.spawn[ex.Span.Start] = name
		// Nested spawns inside the body hoist too.
		h.walkBlock(ex.Body)
	case *AsyncExpr:
		names := h.addAsync(ex)
		h.async[ex.Span.Start] = names
		h.walkBlock(ex.Body)
	case *InterpLit:
		for _, p := range ex.Parts {
			h.walkExpr(p.Expr)
		}
	case *BinaryExpr:
		h.walkExpr(ex.X)
		h.walkExpr(ex.Y)
	case *UnaryExpr:
		h.walkExpr(ex.X)
	case *CallExpr:
		h.walkExpr(ex.Callee)
		for _, a := range ex.Args {
			h.walkExpr(a)
		}
	case *MethodCallExpr:
		h.walkExpr(ex.Recv)
		for _, a := range ex.Args {
			h.walkExpr(a)
		}
	case *IfExpr:
		h.walkExpr(ex.Cond)
		h.walkBlock(ex.Then)
		h.walkBlock(ex.Else)
	case *BlockExpr:
		h.walkBlock(ex.Block)
	case *MatchExpr:
		h.walkExpr(ex.Subject)
		for _, arm := range ex.Arms {
			h.walkBlock(arm.Body)
		}
	case *PropagateExpr:
		h.walkExpr(ex.X)
	case *StructLit:
		for _, f := range ex.Fields {
			h.walkExpr(f.Value)
		}
	case *FieldExpr:
		h.walkExpr(ex.X)
	case *IndexExpr:
		h.walkExpr(ex.X)
		h.walkExpr(ex.Index)
	case *ListLit:
		for _, el := range ex.Elems {
			h.walkExpr(el)
		}
	case *RangeExpr:
		h.walkExpr(ex.Start)
		h.walkExpr(ex.End)
	case *SomeExpr:
		h.walkExpr(ex.X)
	case *PipeExpr:
		h.walkExpr(ex.X)
		h.walkExpr(ex.Fn)
	}
}

func (h *hoistSet) addSpawn(ex *SpawnExpr) string {
	name := spawnBlockName(h.nspawn)
	h.nspawn++
	h.funcs = append(h.funcs, hoistedFunc{Name: name, Body: ex.Body})
	return name
}

func (h *hoistSet) addAsync(ex *AsyncExpr) []string {
	idx := h.nasync
	h.nasync++
	var names []string
	for i, stmt := range ex.Body.Stmts {
		name := asyncBlockName(idx, i)
		names = append(names, name)
		h.funcs = append(h.funcs, hoistedFunc{Name: name, Stmt: stmt})
	}
	return names
}

func spawnBlockName(n int) string {
	return fmt.Sprintf("__spawn_block_%d", n)
}

func asyncBlockName(n, i int) string {
	return fmt.Sprintf("__async_block_%d_%d", n, i)
}
