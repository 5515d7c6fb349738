// Completion: 100% - SSA builder tests
package loom

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

func testFunc(name string) *ir.Func {
	m := ir.NewModule()
	return m.NewFunc(name, types.I64)
}

func phisOf(blk *SSABlock) []*ir.InstPhi {
	var phis []*ir.InstPhi
	for _, inst := range blk.bb.Insts {
		if phi, ok := inst.(*ir.InstPhi); ok {
			phis = append(phis, phi)
		}
	}
	return phis
}

func TestDiamondInsertsPhiAtMerge(t *testing.T) {
	b := NewBuilder(testFunc("diamond"))
	v := b.DeclareVar(types.I64)
	b.DefVar(v, constant.NewInt(types.I64, 1))

	thenB := b.NewBlock("then")
	elseB := b.NewBlock("else")
	merge := b.NewBlock("merge")
	b.CondBr(constant.NewInt(types.I64, 1), thenB, elseB, nil, nil)
	b.Seal(thenB)
	b.Seal(elseB)

	b.SwitchTo(thenB)
	b.DefVar(v, constant.NewInt(types.I64, 10))
	b.Jump(merge)

	b.SwitchTo(elseB)
	b.DefVar(v, constant.NewInt(types.I64, 20))
	b.Jump(merge)

	b.Seal(merge)
	b.SwitchTo(merge)
	got := b.UseVar(v)

	phi, ok := got.(*ir.InstPhi)
	if !ok {
		t.Fatalf("read at merge = %T, want phi", got)
	}
	if len(phi.Incs) != 2 {
		t.Errorf("phi has %d incomings, want 2", len(phi.Incs))
	}
}

func TestSinglePredecessorReadNeedsNoPhi(t *testing.T) {
	b := NewBuilder(testFunc("chain"))
	v := b.DeclareVar(types.I64)
	want := constant.NewInt(types.I64, 7)
	b.DefVar(v, want)

	next := b.NewBlock("next")
	b.Jump(next)
	b.Seal(next)
	b.SwitchTo(next)

	if got := b.UseVar(v); got != want {
		t.Errorf("read through single predecessor = %v, want the original value", got)
	}
	if n := len(phisOf(next)); n != 0 {
		t.Errorf("single-predecessor block got %d phis, want 0", n)
	}
}

func TestUnsealedReadCompletedAtSeal(t *testing.T) {
	// Loop shape: a read in the unsealed header leaves a placeholder
	// phi that only gets operands once the back edge exists.
	b := NewBuilder(testFunc("loop"))
	v := b.DeclareVar(types.I64)
	b.DefVar(v, constant.NewInt(types.I64, 0))

	header := b.NewBlock("header")
	body := b.NewBlock("body")
	exit := b.NewBlock("exit")
	b.Jump(header)

	b.SwitchTo(header)
	cur := b.UseVar(v)
	phi, ok := cur.(*ir.InstPhi)
	if !ok {
		t.Fatalf("read in unsealed header = %T, want placeholder phi", cur)
	}
	if len(phi.Incs) != 0 {
		t.Fatalf("placeholder phi already has %d incomings", len(phi.Incs))
	}
	b.CondBr(cur, body, exit, nil, nil)
	b.Seal(body)

	b.SwitchTo(body)
	b.DefVar(v, b.Ins().NewAdd(b.UseVar(v), constant.NewInt(types.I64, 1)))
	b.Jump(header)

	b.Seal(header)
	b.Seal(exit)

	if len(phi.Incs) != 2 {
		t.Errorf("sealed header phi has %d incomings, want 2", len(phi.Incs))
	}
}

func TestUndefinedReadYieldsZero(t *testing.T) {
	b := NewBuilder(testFunc("undef"))
	v := b.DeclareVar(types.I64)
	got := b.UseVar(v)
	c, ok := got.(*constant.Int)
	if !ok || c.X.Int64() != 0 {
		t.Errorf("undefined read = %v, want i64 0", got)
	}
}

func TestBlockParamsReceiveBranchArgs(t *testing.T) {
	b := NewBuilder(testFunc("params"))
	header := b.NewBlock("header")
	p := b.AppendBlockParam(header, types.I64)
	b.Jump(header, constant.NewInt(types.I64, 5))
	b.Seal(header)
	b.SwitchTo(header)

	phi, ok := p.(*ir.InstPhi)
	if !ok {
		t.Fatalf("block param is %T, want phi", p)
	}
	if len(phi.Incs) != 1 {
		t.Fatalf("param has %d incomings, want 1", len(phi.Incs))
	}
	if c, ok := phi.Incs[0].X.(*constant.Int); !ok || c.X.Int64() != 5 {
		t.Errorf("param incoming = %v, want 5", phi.Incs[0].X)
	}
}

func TestRetSwitchesToUnreachableBlock(t *testing.T) {
	b := NewBuilder(testFunc("ret"))
	b.Ret(constant.NewInt(types.I64, 3))
	if !b.IsUnreachable() {
		t.Error("builder should be in an unreachable block after Ret")
	}
	// Code after the return still has a home.
	b.Ins().NewAdd(constant.NewInt(types.I64, 1), constant.NewInt(types.I64, 2))
	b.Finalize()
	for _, blk := range b.blocks {
		if blk.bb.Term == nil {
			t.Errorf("block %s left unterminated", blk.bb.Name())
		}
	}
}
