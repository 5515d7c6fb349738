// Completion: 100% - compilation driver
package loom

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Compiler lowers a SourceFile into an LLVM IR module. The module is
// then assembled and linked against the native runtime by the link
// stage.
type Compiler struct {
	m       *ir.Module
	funcs   map[string]*ir.Func
	structs *structRegistry
	hoisted *hoistSet
	strs    map[string]*ir.Global
	nstr    int
	opts    Options
}

// NewCompiler creates a compiler with every runtime primitive
// declared up front.
func NewCompiler(opts Options) *Compiler {
	m := ir.NewModule()
	m.TargetTriple = opts.Target.Triple()
	return &Compiler{
		m:       m,
		funcs:   declareRuntime(m),
		structs: newStructRegistry(),
		strs:    make(map[string]*ir.Global),
		opts:    opts,
	}
}

// Module exposes the IR module under construction, mainly for tests.
func (c *Compiler) Module() *ir.Module {
	return c.m
}

// IR returns the textual LLVM IR for the compiled program.
func (c *Compiler) IR() string {
	return c.m.String()
}

// Compile lowers the whole program. Declarations happen before any
// body is compiled so forward references and mutual recursion work
// without forward declarations in the source.
func (c *Compiler) Compile(file *SourceFile) error {
	// Struct layouts first; instance allocation and field access
	// need the sizes and offsets.
	for _, item := range file.Items {
		if td, ok := item.(*TypeDecl); ok {
			c.structs.Register(td)
		}
	}

	// Pull spawn and async bodies out into synthetic functions.
	c.hoisted = hoistConcurrency(file)

	// Declare user functions and methods. A user definition shadows
	// a runtime primitive with the same call name.
	for _, item := range file.Items {
		switch it := item.(type) {
		case *FuncDecl:
			c.funcs[it.Name] = c.declareWordFunc(userFuncSymbol(it.Name), len(it.Params))
		case *MethodDecl:
			name := methodSymbol(it.TypeName, it.Name)
			c.funcs[name] = c.declareWordFunc(name, 1+len(it.Params))
		}
	}

	// Synthetic thread entry points take no parameters and return a
	// word for join.
	for _, hf := range c.hoisted.funcs {
		c.funcs[hf.Name] = c.declareWordFunc(hf.Name, 0)
	}

	// Bodies.
	for _, item := range file.Items {
		switch it := item.(type) {
		case *FuncDecl:
			if err := c.compileFunction(c.funcs[it.Name], paramNames(it.Params), it.Body); err != nil {
				return err
			}
		case *MethodDecl:
			name := methodSymbol(it.TypeName, it.Name)
			names := append([]string{"self"}, paramNames(it.Params)...)
			if err := c.compileFunction(c.funcs[name], names, it.Body); err != nil {
				return err
			}
		}
	}

	for _, hf := range c.hoisted.funcs {
		if err := c.compileHoisted(hf); err != nil {
			return err
		}
	}

	return c.compileMain(file)
}

// declareWordFunc declares a function whose parameters and result are
// all 64-bit words.
func (c *Compiler) declareWordFunc(symbol string, nparams int) *ir.Func {
	params := make([]*ir.Param, nparams)
	for i := range params {
		params[i] = ir.NewParam("", types.I64)
	}
	return c.m.NewFunc(symbol, types.I64, params...)
}

// userFuncSymbol maps a source function name to a symbol. "main" is
// renamed so it cannot collide with the synthesized entry point.
func userFuncSymbol(name string) string {
	if name == "main" {
		return "__user_main"
	}
	return name
}

func methodSymbol(typeName, method string) string {
	return typeName + "_" + method
}

func paramNames(params []Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// compileFunction lowers one function body. Parameters are bound as
// word variables; if control reaches the end of the body, the value
// of the final statement (or zero) is returned.
func (c *Compiler) compileFunction(f *ir.Func, params []string, body *Block) error {
	fc := newFuncCompiler(c, f)
	for i, name := range params {
		v := fc.b.DeclareVar(types.I64)
		fc.b.DefVar(v, f.Params[i])
		fc.scope.declare(name, v, kindInt, "")
	}
	val, err := fc.compileBlock(body)
	if err != nil {
		return err
	}
	if !fc.b.IsUnreachable() {
		if val == nil {
			val = constant.NewInt(types.I64, 0)
		}
		fc.b.Ret(fc.word(val))
	}
	fc.b.Finalize()
	return nil
}

// compileHoisted lowers one synthetic spawn or async function.
func (c *Compiler) compileHoisted(hf hoistedFunc) error {
	f := c.funcs[hf.Name]
	fc := newFuncCompiler(c, f)
	var val value.Value
	var err error
	if hf.Body != nil {
		val, err = fc.compileBlock(hf.Body)
	} else {
		val, err = fc.compileStmt(hf.Stmt)
	}
	if err != nil {
		return err
	}
	if !fc.b.IsUnreachable() {
		if val == nil {
			val = constant.NewInt(types.I64, 0)
		}
		fc.b.Ret(fc.word(val))
	}
	fc.b.Finalize()
	return nil
}

// compileMain synthesizes the process entry point from the program's
// top-level statements. A user function named main, if present, runs
// after them.
func (c *Compiler) compileMain(file *SourceFile) error {
	f := c.m.NewFunc("main", types.I32)
	fc := newFuncCompiler(c, f)
	for _, item := range file.Items {
		it, ok := item.(*StmtItem)
		if !ok {
			continue
		}
		if fc.b.IsUnreachable() {
			break
		}
		if _, err := fc.compileStmt(it.Stmt); err != nil {
			return err
		}
	}
	if userMain, ok := c.funcs["main"]; ok && !fc.b.IsUnreachable() {
		fc.b.Ins().NewCall(userMain)
	}
	if !fc.b.IsUnreachable() {
		fc.b.Ins().NewRet(constant.NewInt(types.I32, 0))
	}
	fc.b.Finalize()
	return nil
}

// funcCompiler carries the per-function state: the SSA builder and
// the variable scope.
type funcCompiler struct {
	c     *Compiler
	b     *Builder
	scope *scope
}

func newFuncCompiler(c *Compiler, f *ir.Func) *funcCompiler {
	return &funcCompiler{c: c, b: NewBuilder(f), scope: newScope()}
}

// varInfo pairs an SSA variable with the value kind it was declared
// with.
type varInfo struct {
	v    Variable
	kind valueKind
	str  string // struct type name when kind is kindStruct
}

// scope maps source names to variables. Insertion order is retained
// so loop header threading is deterministic.
type scope struct {
	vars  map[string]varInfo
	order []string
}

func newScope() *scope {
	return &scope{vars: make(map[string]varInfo)}
}

func (s *scope) declare(name string, v Variable, kind valueKind, structName string) {
	if _, seen := s.vars[name]; !seen {
		s.order = append(s.order, name)
	}
	s.vars[name] = varInfo{v: v, kind: kind, str: structName}
}

func (s *scope) lookup(name string) (varInfo, bool) {
	vi, ok := s.vars[name]
	return vi, ok
}

// setKind updates the recorded kind after a reassignment.
func (s *scope) setKind(name string, kind valueKind, structName string) {
	vi := s.vars[name]
	vi.kind = kind
	vi.str = structName
	s.vars[name] = vi
}

// names returns the declared names in insertion order.
func (s *scope) names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
