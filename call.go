// Completion: 100% - call lowering, builtins and method dispatch
package loom

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// compileCall lowers a call expression. A handful of names are
// builtins handled here before the function table is consulted, so a
// user function cannot shadow print or spawn.
func (fc *funcCompiler) compileCall(ex *CallExpr) (typedValue, error) {
	id, ok := ex.Callee.(*Ident)
	if !ok {
		return typedValue{}, errUnsupported("calling a computed function value")
	}

	switch id.Name {
	case "print", "println":
		return fc.compilePrintCall(ex.Args, id.Name == "println", false)
	case "eprint", "eprintln":
		return fc.compilePrintCall(ex.Args, id.Name == "eprintln", true)
	case "err":
		return fc.compileErrCall(ex.Args)
	case "channel":
		return fc.compileChannelCall(ex.Args)
	case "spawn_fn":
		return fc.compileSpawnFnCall(ex.Args)
	}

	f, ok := fc.c.funcs[id.Name]
	if !ok {
		return typedValue{}, errUndefinedFunction(id.Name)
	}
	return fc.callWithArgs(f, id.Name, ex.Args)
}

// callWithArgs compiles argument expressions against the callee's
// declared signature. When the signature has more parameters than
// there are arguments the surplus comes from string expansion: a
// string argument fills an adjacent (pointer, length) parameter pair.
func (fc *funcCompiler) callWithArgs(f *ir.Func, name string, args []Expression) (typedValue, error) {
	params := f.Sig.Params
	expansions := len(params) - len(args)

	vals := make([]value.Value, 0, len(params))
	pi := 0
	for _, arg := range args {
		if expansions > 0 && pi+1 < len(params) &&
			params[pi].Equal(ptrT) && params[pi+1].Equal(types.I64) {
			p, l, err := fc.stringPtrLen(arg)
			if err != nil {
				return typedValue{}, err
			}
			vals = append(vals, p, l)
			pi += 2
			expansions--
			continue
		}
		if pi >= len(params) {
			break
		}
		tv, err := fc.compileExprTyped(arg)
		if err != nil {
			return typedValue{}, err
		}
		vals = append(vals, fc.coerceTo(tv.v, params[pi]))
		pi++
	}
	if pi != len(params) || expansions != 0 {
		return typedValue{}, errCodegen("function '%s' expects %d arguments, got %d",
			name, len(params), len(args))
	}
	return fc.emitCall(f, nil, vals...)
}

// emitCall emits the call and classifies the result by the callee's
// return type. Pre-typed argument values can be passed via argTVs
// instead of vals.
func (fc *funcCompiler) emitCall(f *ir.Func, argTVs []typedValue, vals ...value.Value) (typedValue, error) {
	params := f.Sig.Params
	if argTVs != nil {
		if len(argTVs) != len(params) {
			return typedValue{}, errCodegen("function '%s' expects %d arguments, got %d",
				f.Name(), len(params), len(argTVs))
		}
		vals = make([]value.Value, len(argTVs))
		for i, tv := range argTVs {
			vals[i] = fc.coerceTo(tv.v, params[i])
		}
	}
	res := fc.b.Ins().NewCall(f, vals...)
	switch rt := f.Sig.RetType.(type) {
	case *types.VoidType:
		return typedValue{v: fc.iconst(0), kind: kindInt}, nil
	case *types.FloatType:
		return typedValue{v: res, kind: kindFloat}, nil
	case *types.PointerType:
		return typedValue{v: fc.b.Ins().NewPtrToInt(res, types.I64), kind: kindPtr}, nil
	case *types.IntType:
		if rt.BitSize != 64 {
			return typedValue{v: fc.b.Ins().NewZExt(res, types.I64), kind: kindInt}, nil
		}
		return typedValue{v: res, kind: kindInt}, nil
	default:
		return typedValue{v: res, kind: kindInt}, nil
	}
}

// compileMethodCall resolves Type_method against the receiver's
// static type when known, otherwise against every registered type in
// registration order.
func (fc *funcCompiler) compileMethodCall(ex *MethodCallExpr) (typedValue, error) {
	recv, err := fc.compileExprTyped(ex.Recv)
	if err != nil {
		return typedValue{}, err
	}

	var f *ir.Func
	if recv.kind == kindStruct {
		f = fc.c.funcs[methodSymbol(recv.str, ex.Method)]
	}
	if f == nil {
		for _, tn := range fc.c.structs.order {
			if cand, ok := fc.c.funcs[methodSymbol(tn, ex.Method)]; ok {
				f = cand
				break
			}
		}
	}
	if f == nil {
		return typedValue{}, errUnknownMethod(ex.Method)
	}

	vals := []value.Value{fc.word(recv.v)}
	for i, arg := range ex.Args {
		if i+1 >= len(f.Sig.Params) {
			break
		}
		tv, err := fc.compileExprTyped(arg)
		if err != nil {
			return typedValue{}, err
		}
		vals = append(vals, fc.coerceTo(tv.v, f.Sig.Params[i+1]))
	}
	if len(vals) != len(f.Sig.Params) {
		return typedValue{}, errCodegen("method '%s' expects %d arguments, got %d",
			ex.Method, len(f.Sig.Params)-1, len(ex.Args))
	}
	return fc.emitCall(f, nil, vals...)
}

// compileErrCall raises the thread's error flag. The error value is
// the single argument, or 1 when called bare, and is also the call's
// result so `return err(...)` works.
func (fc *funcCompiler) compileErrCall(args []Expression) (typedValue, error) {
	val := value.Value(fc.iconst(1))
	if len(args) > 0 {
		v, err := fc.compileExpr(args[0])
		if err != nil {
			return typedValue{}, err
		}
		val = v
	}
	fc.b.Ins().NewCall(fc.rt("error_raise"), val)
	return typedValue{v: val, kind: kindInt}, nil
}

// compileChannelCall creates a channel. The capacity is the single
// argument, defaulting to 1.
func (fc *funcCompiler) compileChannelCall(args []Expression) (typedValue, error) {
	cap := value.Value(fc.iconst(1))
	if len(args) > 0 {
		v, err := fc.compileExpr(args[0])
		if err != nil {
			return typedValue{}, err
		}
		cap = v
	}
	return fc.emitCall(fc.rt("channel_new"), nil, cap)
}

// compileSpawnFnCall handles spawn_fn(f): run a named zero-argument
// function on a fire-and-forget thread.
func (fc *funcCompiler) compileSpawnFnCall(args []Expression) (typedValue, error) {
	if len(args) != 1 {
		return typedValue{}, errCodegen("spawn_fn expects a single function name")
	}
	id, ok := args[0].(*Ident)
	if !ok {
		return typedValue{}, errUnsupported("spawning a computed function value")
	}
	f, ok := fc.c.funcs[id.Name]
	if !ok {
		return typedValue{}, errUndefinedFunction(id.Name)
	}
	fp := fc.b.Ins().NewBitCast(f, ptrT)
	res := fc.b.Ins().NewCall(fc.rt("spawn_raw"), fp)
	return typedValue{v: res, kind: kindInt}, nil
}

// compilePrintCall prints each argument by its kind. println and
// eprintln append a newline after the last argument.
func (fc *funcCompiler) compilePrintCall(args []Expression, newline, stderr bool) (typedValue, error) {
	prefix := ""
	if stderr {
		prefix = "e"
	}
	ins := fc.b.Ins
	for _, arg := range args {
		// String literals and interpolations print without building
		// a heap value first.
		switch a := arg.(type) {
		case *StringLit:
			p, l := fc.literalPtrLen(a.Value)
			ins().NewCall(fc.rt(prefix+"print_str"), p, l)
			continue
		case *BoolLit:
			v := int64(0)
			if a.Value {
				v = 1
			}
			ins().NewCall(fc.rt(prefix+"print_bool"), fc.iconst(v))
			continue
		}

		tv, err := fc.compileExprTyped(arg)
		if err != nil {
			return typedValue{}, err
		}
		switch tv.kind {
		case kindFloat:
			ins().NewCall(fc.rt(prefix+"print_float"), tv.v)
		case kindPtr:
			p, l := fc.stringHeaderPtrLen(fc.word(tv.v))
			ins().NewCall(fc.rt(prefix+"print_str"), p, l)
		case kindStruct:
			if err := fc.printStruct(tv, prefix); err != nil {
				return typedValue{}, err
			}
		default:
			ins().NewCall(fc.rt(prefix+"print_int"), fc.word(tv.v))
		}
	}
	if newline {
		ins().NewCall(fc.rt(prefix + "print_newline"))
	}
	return typedValue{v: fc.iconst(0), kind: kindInt}, nil
}

// printStruct prints a struct instance as Name { field: value, ... },
// recursing into struct-typed fields.
func (fc *funcCompiler) printStruct(tv typedValue, prefix string) error {
	layout, ok := fc.c.structs.Lookup(tv.str)
	if !ok {
		return errUnknownType(tv.str)
	}
	ins := fc.b.Ins
	emitText := func(s string) {
		p, l := fc.literalPtrLen(s)
		ins().NewCall(fc.rt(prefix+"print_str"), p, l)
	}

	emitText(layout.Name + " { ")
	for i, f := range layout.Fields {
		if i > 0 {
			emitText(", ")
		}
		emitText(f.Name + ": ")
		addr := ins().NewAdd(fc.word(tv.v), fc.iconst(f.Offset))
		switch f.Kind {
		case fieldFloat:
			ins().NewCall(fc.rt(prefix+"print_float"), fc.loadFloat(addr))
		case fieldPtr:
			p, l := fc.stringHeaderPtrLen(fc.loadWord(addr))
			ins().NewCall(fc.rt(prefix+"print_str"), p, l)
		case fieldStruct:
			inner := typedValue{v: fc.loadWord(addr), kind: kindStruct, str: f.StructName}
			if err := fc.printStruct(inner, prefix); err != nil {
				return err
			}
		default:
			ins().NewCall(fc.rt(prefix+"print_int"), fc.loadWord(addr))
		}
	}
	emitText(" }")
	return nil
}
