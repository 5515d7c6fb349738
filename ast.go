// Completion: 100% - program tree consumed by the code generator
package loom

// Span marks a half-open byte range in the original source text.
// Spawn and async blocks are keyed by their span start, so the front
// end must hand over stable spans for those nodes.
type Span struct {
	Start uint32
	End   uint32
}

// SourceFile is the root of a parsed program.
type SourceFile struct {
	Items []Item
}

// Item is a top-level declaration or statement.
type Item interface {
	itemNode()
}

// FuncDecl declares a free function. All parameters and the return
// value are 64-bit words.
type FuncDecl struct {
	Name   string
	Params []Param
	Body   *Block
}

// MethodDecl declares a method on a named struct type. The receiver
// is passed as an implicit first parameter.
type MethodDecl struct {
	TypeName string
	Name     string
	Params   []Param
	Body     *Block
}

// TypeDecl declares a struct type with named fields.
type TypeDecl struct {
	Name   string
	Fields []FieldDef
}

// FieldDef is a single struct field. TypeName is the declared type
// name ("int", "float", "string", "list" or a struct name); anything
// unrecognized is treated as a word-sized value.
type FieldDef struct {
	Name     string
	TypeName string
}

// StmtItem wraps a top-level statement. Top-level statements form the
// body of the synthesized main function.
type StmtItem struct {
	Stmt Statement
}

func (*FuncDecl) itemNode()   {}
func (*MethodDecl) itemNode() {}
func (*TypeDecl) itemNode()   {}
func (*StmtItem) itemNode()   {}

// Param is a function parameter.
type Param struct {
	Name string
}

// Block is a brace-delimited statement sequence. As an expression its
// value is the value of the final statement.
type Block struct {
	Stmts []Statement
}

// Statement is any statement node.
type Statement interface {
	statementNode()
}

// ExprStmt evaluates an expression for its side effects (or, in value
// position, for its value).
type ExprStmt struct {
	X Expression
}

// AssignStmt assigns one value per target. With multiple targets the
// value expression must be a ListLit of matching length.
type AssignStmt struct {
	Targets []AssignTarget
	Value   Expression
}

// ReturnStmt returns zero or one values from the enclosing function.
type ReturnStmt struct {
	Value Expression // nil for a bare return
}

// IfStmt is a two-way conditional. Else may be nil. Chained else-if
// arms are represented by nesting an IfStmt inside Else.
type IfStmt struct {
	Cond Expression
	Then *Block
	Else *Block
}

// WhileStmt loops while the condition is nonzero.
type WhileStmt struct {
	Cond Expression
	Body *Block
}

// ForStmt iterates a range expression, binding Var to each element.
type ForStmt struct {
	Var  string
	Iter Expression
	Body *Block
}

// TryStmt runs Body and, if the runtime error flag is raised, clears
// it and runs Catch with ErrName bound to the error value.
type TryStmt struct {
	Body    *Block
	ErrName string
	Catch   *Block
}

// BreakStmt and ContinueStmt are accepted but currently ignored by
// the generator.
type BreakStmt struct{}
type ContinueStmt struct{}

func (*ExprStmt) statementNode()     {}
func (*AssignStmt) statementNode()   {}
func (*ReturnStmt) statementNode()   {}
func (*IfStmt) statementNode()       {}
func (*WhileStmt) statementNode()    {}
func (*ForStmt) statementNode()      {}
func (*TryStmt) statementNode()      {}
func (*BreakStmt) statementNode()    {}
func (*ContinueStmt) statementNode() {}

// AssignTarget is the left-hand side of an assignment: a variable, a
// field path or an indexed element.
type AssignTarget interface {
	assignTargetNode()
}

type IdentTarget struct {
	Name string
}

type FieldTarget struct {
	Object AssignTarget
	Field  string
}

type IndexTarget struct {
	Object AssignTarget
	Index  Expression
}

func (*IdentTarget) assignTargetNode() {}
func (*FieldTarget) assignTargetNode() {}
func (*IndexTarget) assignTargetNode() {}

// Expression is any expression node.
type Expression interface {
	expressionNode()
}

type IntLit struct {
	Value int64
}

type FloatLit struct {
	Value float64
}

type BoolLit struct {
	Value bool
}

type StringLit struct {
	Value string
}

// InterpLit is an interpolated string; parts alternate between text
// and embedded expressions in source order.
type InterpLit struct {
	Parts []StringPart
}

// StringPart is either literal text (Expr nil) or an embedded
// expression (Expr non-nil, Lit ignored).
type StringPart struct {
	Lit  string
	Expr Expression
}

type Ident struct {
	Name string
}

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

// UnOp enumerates unary operators.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

type BinaryExpr struct {
	Op BinOp
	X  Expression
	Y  Expression
}

type UnaryExpr struct {
	Op UnOp
	X  Expression
}

// CallExpr calls a named function. The callee must be an Ident; calls
// through computed values are not supported.
type CallExpr struct {
	Callee Expression
	Args   []Expression
}

// MethodCallExpr calls a method on a receiver value. The method name
// is resolved against every registered struct type in turn.
type MethodCallExpr struct {
	Recv   Expression
	Method string
	Args   []Expression
}

// IfExpr is an if/else in value position; both arms yield a value and
// the result flows through the merge point.
type IfExpr struct {
	Cond Expression
	Then *Block
	Else *Block
}

// BlockExpr is a block in value position.
type BlockExpr struct {
	Block *Block
}

// MatchExpr tests a subject against a list of arms, first match wins.
type MatchExpr struct {
	Subject Expression
	Arms    []MatchArm
}

// MatchArm pairs a pattern with a body block.
type MatchArm struct {
	Pattern Pattern
	Body    *Block
}

// Pattern is a match arm pattern.
type Pattern interface {
	patternNode()
}

// WildcardPat matches anything and binds nothing.
type WildcardPat struct{}

// IdentPat matches anything and binds the subject to Name.
type IdentPat struct {
	Name string
}

// LiteralPat matches a literal value by equality.
type LiteralPat struct {
	Lit Expression
}

// ConstructorPat matches an option or named constructor. "Some" with
// one binding unwraps the payload; "None" matches the zero handle;
// any other constructor name matches unconditionally.
type ConstructorPat struct {
	Name     string
	Bindings []string
}

func (*WildcardPat) patternNode()    {}
func (*IdentPat) patternNode()       {}
func (*LiteralPat) patternNode()     {}
func (*ConstructorPat) patternNode() {}

// PropagateExpr is the `?` operator: if the runtime error flag is set
// after evaluating X, the enclosing function returns zero early.
type PropagateExpr struct {
	X Expression
}

// StructLit constructs a struct instance on the heap.
type StructLit struct {
	TypeName string
	Fields   []StructLitField
}

type StructLitField struct {
	Name  string
	Value Expression
}

// FieldExpr reads a field from a struct value.
type FieldExpr struct {
	X     Expression
	Field string
}

// IndexExpr reads an element of a list.
type IndexExpr struct {
	X     Expression
	Index Expression
}

// ListLit builds a length-prefixed heap list.
type ListLit struct {
	Elems []Expression
}

// RangeExpr is start..end or start..=end, valid only as a for-loop
// iterator.
type RangeExpr struct {
	Start     Expression
	End       Expression
	Inclusive bool
}

// SomeExpr wraps a value into an option handle; NoneExpr is the empty
// option.
type SomeExpr struct {
	X Expression
}

type NoneExpr struct{}

// SpawnExpr runs its body on a fire-and-forget thread.
type SpawnExpr struct {
	Body *Block
	Span Span
}

// AsyncExpr runs each top-level statement of its body on its own
// joinable thread, then joins them all before continuing.
type AsyncExpr struct {
	Body *Block
	Span Span
}

// PipeExpr feeds X as the sole argument to the named function Fn.
type PipeExpr struct {
	X  Expression
	Fn Expression
}

// LambdaExpr and SelectExpr are recognized but rejected with an
// unsupported-construct error.
type LambdaExpr struct {
	Params []Param
	Body   *Block
}

type SelectExpr struct{}

func (*IntLit) expressionNode()         {}
func (*FloatLit) expressionNode()       {}
func (*BoolLit) expressionNode()        {}
func (*StringLit) expressionNode()      {}
func (*InterpLit) expressionNode()      {}
func (*Ident) expressionNode()          {}
func (*BinaryExpr) expressionNode()     {}
func (*UnaryExpr) expressionNode()      {}
func (*CallExpr) expressionNode()       {}
func (*MethodCallExpr) expressionNode() {}
func (*IfExpr) expressionNode()         {}
func (*BlockExpr) expressionNode()      {}
func (*MatchExpr) expressionNode()      {}
func (*PropagateExpr) expressionNode()  {}
func (*StructLit) expressionNode()      {}
func (*FieldExpr) expressionNode()      {}
func (*IndexExpr) expressionNode()      {}
func (*ListLit) expressionNode()        {}
func (*RangeExpr) expressionNode()      {}
func (*SomeExpr) expressionNode()       {}
func (*NoneExpr) expressionNode()       {}
func (*SpawnExpr) expressionNode()      {}
func (*AsyncExpr) expressionNode()      {}
func (*PipeExpr) expressionNode()       {}
func (*LambdaExpr) expressionNode()     {}
func (*SelectExpr) expressionNode()     {}
