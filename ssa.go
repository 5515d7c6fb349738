// Completion: 100% - SSA construction with block sealing and block parameters
package loom

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Variable is a handle for a mutable source-level variable tracked by
// the Builder. Reads and writes go through UseVar and DefVar; the
// Builder turns them into SSA values and phi nodes on demand.
type Variable struct {
	id int
}

// SSABlock wraps an IR basic block with the bookkeeping needed for
// incremental SSA construction: its predecessor list, its sealed
// flag, the per-variable definitions visible in it, and any phis
// created before all predecessors were known.
type SSABlock struct {
	bb         *ir.Block
	preds      []*SSABlock
	sealed     bool
	noReturn   bool // block exists only to absorb code after a return
	defs       map[int]value.Value
	incomplete map[int]*ir.InstPhi
	params     []*ir.InstPhi
}

// Builder constructs SSA form for one function. A block is "sealed"
// once no further predecessors will be added to it; variable reads in
// unsealed blocks produce placeholder phis that are completed when
// Seal is called. Loop headers therefore stay unsealed until the back
// edge has been emitted.
type Builder struct {
	fn       *ir.Func
	cur      *SSABlock
	blocks   []*SSABlock
	varTypes []types.Type
	nblocks  int
}

// NewBuilder starts SSA construction for fn. The entry block is
// created, sealed (it can have no predecessors) and made current.
func NewBuilder(fn *ir.Func) *Builder {
	b := &Builder{fn: fn}
	entry := b.NewBlock("entry")
	entry.sealed = true
	b.cur = entry
	return b
}

// Func returns the function under construction.
func (b *Builder) Func() *ir.Func {
	return b.fn
}

// NewBlock creates a new unsealed block. The name gets a unique
// numeric suffix.
func (b *Builder) NewBlock(name string) *SSABlock {
	b.nblocks++
	blk := &SSABlock{
		bb:         b.fn.NewBlock(fmt.Sprintf("%s.%d", name, b.nblocks)),
		defs:       make(map[int]value.Value),
		incomplete: make(map[int]*ir.InstPhi),
	}
	b.blocks = append(b.blocks, blk)
	return blk
}

// SwitchTo makes blk the insertion point for subsequent instructions.
func (b *Builder) SwitchTo(blk *SSABlock) {
	b.cur = blk
}

// Ins returns the IR block instructions are currently appended to.
func (b *Builder) Ins() *ir.Block {
	return b.cur.bb
}

// Current returns the current SSA block.
func (b *Builder) Current() *SSABlock {
	return b.cur
}

// IsUnreachable reports whether the current block can never execute.
// It becomes true after Ret and is used to suppress trailing code.
func (b *Builder) IsUnreachable() bool {
	return b.cur.noReturn
}

// Seal declares that blk has received all of its predecessors.
// Placeholder phis created by reads in the unsealed block are now
// given their operands.
func (b *Builder) Seal(blk *SSABlock) {
	if blk.sealed {
		return
	}
	blk.sealed = true
	for id, phi := range blk.incomplete {
		b.addPhiOperands(id, phi, blk)
	}
	blk.incomplete = nil
}

// DeclareVar registers a new tracked variable of the given IR type
// (i64 or double).
func (b *Builder) DeclareVar(typ types.Type) Variable {
	id := len(b.varTypes)
	b.varTypes = append(b.varTypes, typ)
	return Variable{id: id}
}

// DefVar records val as the value of v in the current block.
func (b *Builder) DefVar(v Variable, val value.Value) {
	b.cur.defs[v.id] = val
}

// UseVar returns the value of v at the current point, inserting phi
// nodes at join points as needed. A read of a variable with no
// reaching definition yields the typed zero value.
func (b *Builder) UseVar(v Variable) value.Value {
	return b.readVar(v.id, b.cur)
}

// VarType returns the declared IR type of v.
func (b *Builder) VarType(v Variable) types.Type {
	return b.varTypes[v.id]
}

func (b *Builder) readVar(id int, blk *SSABlock) value.Value {
	if val, ok := blk.defs[id]; ok {
		return val
	}
	return b.readVarRecursive(id, blk)
}

func (b *Builder) readVarRecursive(id int, blk *SSABlock) value.Value {
	var val value.Value
	switch {
	case !blk.sealed:
		// Predecessors still unknown; leave a placeholder phi to be
		// completed by Seal.
		phi := b.newPhi(blk, b.varTypes[id])
		blk.incomplete[id] = phi
		val = phi
	case len(blk.preds) == 0:
		val = zeroValue(b.varTypes[id])
	case len(blk.preds) == 1:
		val = b.readVar(id, blk.preds[0])
	default:
		// Break potential cycles before recursing into predecessors.
		phi := b.newPhi(blk, b.varTypes[id])
		blk.defs[id] = phi
		b.addPhiOperands(id, phi, blk)
		val = phi
	}
	blk.defs[id] = val
	return val
}

func (b *Builder) addPhiOperands(id int, phi *ir.InstPhi, blk *SSABlock) {
	for _, pred := range blk.preds {
		phi.Incs = append(phi.Incs, ir.NewIncoming(b.readVar(id, pred), pred.bb))
	}
}

// newPhi inserts an operandless phi at the head of blk.
func (b *Builder) newPhi(blk *SSABlock, typ types.Type) *ir.InstPhi {
	phi := &ir.InstPhi{Typ: typ}
	blk.bb.Insts = append([]ir.Instruction{phi}, blk.bb.Insts...)
	return phi
}

// AppendBlockParam adds an explicit parameter to blk, realized as a
// phi whose incomings are supplied by branch arguments. Loop headers
// use these to thread values around the back edge.
func (b *Builder) AppendBlockParam(blk *SSABlock, typ types.Type) value.Value {
	phi := &ir.InstPhi{Typ: typ}
	blk.bb.Insts = append([]ir.Instruction{phi}, blk.bb.Insts...)
	blk.params = append(blk.params, phi)
	return phi
}

// BlockParams returns the explicit parameters of blk in declaration
// order.
func (b *Builder) BlockParams(blk *SSABlock) []value.Value {
	out := make([]value.Value, len(blk.params))
	for i, p := range blk.params {
		out[i] = p
	}
	return out
}

// Jump terminates the current block with an unconditional branch,
// passing args for the target's block parameters.
func (b *Builder) Jump(target *SSABlock, args ...value.Value) {
	b.cur.bb.NewBr(target.bb)
	b.addEdge(b.cur, target, args)
}

// CondBr terminates the current block with a conditional branch. A
// cond of any integer width is accepted; nonzero means taken.
func (b *Builder) CondBr(cond value.Value, then, els *SSABlock, thenArgs, elseArgs []value.Value) {
	c := cond
	if it, ok := cond.Type().(*types.IntType); ok && it.BitSize != 1 {
		c = b.cur.bb.NewICmp(enum.IPredNE, cond, constant.NewInt(it, 0))
	}
	b.cur.bb.NewCondBr(c, then.bb, els.bb)
	b.addEdge(b.cur, then, thenArgs)
	b.addEdge(b.cur, els, elseArgs)
}

func (b *Builder) addEdge(from, to *SSABlock, args []value.Value) {
	if to.sealed && len(to.incomplete) > 0 {
		panic("ssa: branch to sealed block with pending phis")
	}
	to.preds = append(to.preds, from)
	if len(args) != len(to.params) {
		panic(fmt.Sprintf("ssa: branch passes %d args, block %s expects %d",
			len(args), to.bb.Name(), len(to.params)))
	}
	for i, a := range args {
		to.params[i].Incs = append(to.params[i].Incs, ir.NewIncoming(a, from.bb))
	}
}

// Ret terminates the current block with a return and switches to a
// fresh, already sealed block that no edge will ever reach. Code
// generated after a return lands there and is dropped by the
// optimizer; IsUnreachable lets callers skip emitting it at all.
func (b *Builder) Ret(v value.Value) {
	b.cur.bb.NewRet(v)
	dead := b.NewBlock("postret")
	dead.sealed = true
	dead.noReturn = true
	b.cur = dead
}

// Finalize terminates any block left open. Blocks that fall off the
// end of a function body get an unreachable marker; the driver emits
// the function's real return before calling this.
func (b *Builder) Finalize() {
	for _, blk := range b.blocks {
		if blk.bb.Term == nil {
			blk.bb.NewUnreachable()
		}
	}
}

// zeroValue returns the zero constant of typ. Reads of undefined
// variables resolve to this rather than failing.
func zeroValue(typ types.Type) constant.Constant {
	switch t := typ.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	default:
		panic(fmt.Sprintf("ssa: no zero value for type %v", typ))
	}
}
