package tmpl

// Expr is a C++-level expression or type expression appearing inside
// generated template code.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	Kind() Kind
	expr()
}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
}

func (*BoolLiteral) expr()      {}
func (*BoolLiteral) Kind() Kind { return KindBool }

// Int64Literal is an int64_t constant.
type Int64Literal struct {
	Value int64
}

func (*Int64Literal) expr()      {}
func (*Int64Literal) Kind() Kind { return KindInt64 }

// Name references a template parameter, a local member or a top-level
// template by its C++ identifier.
type Name struct {
	Cpp      string
	NameKind Kind
}

func (*Name) expr()        {}
func (n *Name) Kind() Kind { return n.NameKind }

// TypeText is raw C++ type text, identifier splicing already done.
type TypeText struct {
	Cpp string
}

func (*TypeText) expr()      {}
func (*TypeText) Kind() Kind { return KindType }

// PatternText is the C++ text of one specialization pattern, produced
// by splicing parameter spellings into an obfuscated source pattern.
type PatternText struct {
	Cpp string
}

func (*PatternText) expr()      {}
func (*PatternText) Kind() Kind { return KindType }

// UnaryOp applies a C++ prefix operator.
type UnaryOp struct {
	Op         string
	Operand    Expr
	ResultKind Kind
}

func (*UnaryOp) expr()        {}
func (u *UnaryOp) Kind() Kind { return u.ResultKind }

// BinaryOp applies a C++ infix operator.
type BinaryOp struct {
	Op         string
	LHS        Expr
	RHS        Expr
	ResultKind Kind
}

func (*BinaryOp) expr()        {}
func (b *BinaryOp) Kind() Kind { return b.ResultKind }

// Instantiation is `Template<Args...>`. The result is a class type;
// read members with MemberAccess. MightTriggerStaticAsserts marks
// instantiations of user functions, whose asserts must stay anchored.
type Instantiation struct {
	Template                  Expr
	Args                      []Expr
	MightTriggerStaticAsserts bool
}

func (*Instantiation) expr()      {}
func (*Instantiation) Kind() Kind { return KindType }

// MemberAccess reads a member of a class type. The emitter prefixes
// `typename` when MemberKind is KindType and the class expression is
// dependent, and inserts `template` for KindTemplate members.
type MemberAccess struct {
	Class      Expr
	MemberName string
	MemberKind Kind
}

func (*MemberAccess) expr()        {}
func (m *MemberAccess) Kind() Kind { return m.MemberKind }

// Param declares one template parameter. For KindTemplate parameters,
// Args gives the parameter's own signature (names unused there, only
// kinds matter for the declaration).
type Param struct {
	Name string
	Kind Kind
	Args []Param
}

// BodyElement is one declaration inside a template body or at module
// scope.
//
// This is a sealed interface - only types in this package implement it.
type BodyElement interface {
	bodyElement()
}

// StaticAssert is `static_assert(cond, "message");`.
type StaticAssert struct {
	Cond    Expr
	Message string
}

func (*StaticAssert) bodyElement() {}

// ConstantDef is `static constexpr bool|int64_t Name = Expr;`.
type ConstantDef struct {
	Name string
	Expr Expr
}

func (*ConstantDef) bodyElement() {}

// Typedef is `using Name = Expr;`.
type Typedef struct {
	Name string
	Expr Expr
}

func (*Typedef) bodyElement() {}

// AliasTemplate is `template <Params...> using Name = Target;`.
type AliasTemplate struct {
	Name   string
	Params []Param
	Target Expr
}

func (*AliasTemplate) bodyElement() {}

func (*TemplateDefn) bodyElement() {}

// Specialization is one definition of a template: the main definition
// when Patterns is nil, a partial specialization otherwise. Patterns,
// when present, are matched positionally against the primary
// template's parameters.
type Specialization struct {
	Params   []Param
	Patterns []Expr
	Body     []BodyElement
}

// TemplateDefn is a class template with an optional main definition
// and any number of partial specializations. Templates whose primary
// definition would be unreachable (every use matches a specialization)
// carry a nil Main and are emitted as a declaration only.
type TemplateDefn struct {
	Name            string
	Description     string
	Params          []Param
	Main            *Specialization
	Specializations []*Specialization
}

// Module is the generated program: top-level body elements (template
// definitions, namespace-scope constants and aliases, bare static
// asserts) in emission order.
type Module struct {
	Body []BodyElement
}
