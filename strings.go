// Completion: 100% - string values and interpolation
package loom

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Strings at runtime are a heap header of three words: data pointer,
// length, capacity. The handle passed around programs is the header
// address. Literal bytes live in private module globals and are
// shared by content.

// internString returns the module global holding the bytes of s.
func (c *Compiler) internString(s string) *ir.Global {
	if g, ok := c.strs[s]; ok {
		return g
	}
	g := c.m.NewGlobalDef(fmt.Sprintf(".str.%d", c.nstr), constant.NewCharArrayFromString(s))
	g.Linkage = enum.LinkagePrivate
	g.Immutable = true
	c.nstr++
	c.strs[s] = g
	return g
}

// literalPtrLen yields the (pointer, length) pair for a literal.
func (fc *funcCompiler) literalPtrLen(s string) (value.Value, value.Value) {
	g := fc.c.internString(s)
	elemTy := g.Type().(*types.PointerType).ElemType
	zero := constant.NewInt(types.I32, 0)
	p := fc.b.Ins().NewGetElementPtr(elemTy, g, zero, zero)
	return p, fc.iconst(int64(len(s)))
}

// makeStringValue builds a heap string header for a literal and
// returns its handle.
func (fc *funcCompiler) makeStringValue(s string) value.Value {
	p, l := fc.literalPtrLen(s)
	hdr := fc.b.Ins().NewCall(fc.rt("string_from_static"), p, l)
	return fc.b.Ins().NewPtrToInt(hdr, types.I64)
}

// stringHeaderPtrLen loads the data pointer and length out of a
// string header handle.
func (fc *funcCompiler) stringHeaderPtrLen(handle value.Value) (value.Value, value.Value) {
	ins := fc.b.Ins()
	dp := ins.NewIntToPtr(handle, types.NewPointer(ptrT))
	data := ins.NewLoad(ptrT, dp)
	length := fc.loadWord(ins.NewAdd(handle, fc.iconst(8)))
	return data, length
}

// stringPtrLen produces the (pointer, length) pair for any string
// expression. Literals avoid the heap; everything else evaluates to a
// header handle first.
func (fc *funcCompiler) stringPtrLen(e Expression) (value.Value, value.Value, error) {
	if lit, ok := e.(*StringLit); ok {
		p, l := fc.literalPtrLen(lit.Value)
		return p, l, nil
	}
	v, err := fc.compileExpr(e)
	if err != nil {
		return nil, nil, err
	}
	p, l := fc.stringHeaderPtrLen(v)
	return p, l, nil
}

// compileInterp lowers an interpolated string by converting each
// embedded value to a string and concatenating pairwise, left to
// right. Integer and bool embeds go through int_to_string, floats
// through float_to_string; anything held as a pointer is assumed to
// already be a string.
func (fc *funcCompiler) compileInterp(ex *InterpLit) (value.Value, error) {
	type piece struct {
		ptr value.Value
		len value.Value
	}
	var pieces []piece
	for _, part := range ex.Parts {
		if part.Expr == nil {
			if part.Lit == "" {
				continue
			}
			p, l := fc.literalPtrLen(part.Lit)
			pieces = append(pieces, piece{p, l})
			continue
		}
		tv, err := fc.compileExprTyped(part.Expr)
		if err != nil {
			return nil, err
		}
		var handle value.Value
		switch tv.kind {
		case kindFloat:
			res, _ := fc.emitCall(fc.rt("float_to_string"), nil, tv.v)
			handle = res.v
		case kindPtr:
			handle = fc.word(tv.v)
		default:
			// Structs and ints alike render through int_to_string;
			// a struct embed shows its handle value.
			res, _ := fc.emitCall(fc.rt("int_to_string"), nil, fc.word(tv.v))
			handle = res.v
		}
		p, l := fc.stringHeaderPtrLen(handle)
		pieces = append(pieces, piece{p, l})
	}

	if len(pieces) == 0 {
		return fc.makeStringValue(""), nil
	}
	if len(pieces) == 1 {
		// A single piece still becomes a fresh header so the result
		// is a normal string handle.
		hdr := fc.b.Ins().NewCall(fc.rt("string_from_static"), fc.toPtr(pieces[0].ptr), pieces[0].len)
		return fc.b.Ins().NewPtrToInt(hdr, types.I64), nil
	}

	acc := pieces[0]
	var handle value.Value
	for _, next := range pieces[1:] {
		res := fc.b.Ins().NewCall(fc.rt("string_concat"),
			fc.toPtr(acc.ptr), acc.len, fc.toPtr(next.ptr), next.len)
		handle = fc.b.Ins().NewPtrToInt(res, types.I64)
		p, l := fc.stringHeaderPtrLen(handle)
		acc = piece{p, l}
	}
	return handle, nil
}
