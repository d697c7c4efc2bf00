package cabs

import "fmt"

// Expr is an integer constant expression as it appears in array bounds and
// enumerator initializers
type Expr interface {
	implCabsExpr()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "&", "|", "^", "<<", ">>"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents unary operators
type UnaryOp int

const (
	OpNeg    UnaryOp = iota // -
	OpNot                   // !
	OpBitNot                // ~
	OpPlus                  // +
)

func (op UnaryOp) String() string {
	names := []string{"-", "!", "~", "+"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Constant represents an integer constant
type Constant struct {
	Value int64
}

// Variable represents an identifier, normally an earlier enumerator
type Variable struct {
	Name string
}

// Unary represents a unary expression
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

// Binary represents a binary expression
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Paren represents a parenthesized expression
type Paren struct {
	Expr Expr
}

// Conditional represents the ternary operator: cond ? then : else
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (Constant) implCabsExpr()    {}
func (Variable) implCabsExpr()    {}
func (Unary) implCabsExpr()       {}
func (Binary) implCabsExpr()      {}
func (Paren) implCabsExpr()       {}
func (Conditional) implCabsExpr() {}

// Eval folds a constant expression. Identifiers are looked up in env.
func Eval(e Expr, env map[string]int64) (int64, error) {
	switch e := e.(type) {
	case Constant:
		return e.Value, nil
	case Variable:
		v, ok := env[e.Name]
		if !ok {
			return 0, fmt.Errorf("%s is not an integer constant", e.Name)
		}
		return v, nil
	case Paren:
		return Eval(e.Expr, env)
	case Unary:
		v, err := Eval(e.Expr, env)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case OpNeg:
			return -v, nil
		case OpNot:
			return boolInt(v == 0), nil
		case OpBitNot:
			return ^v, nil
		case OpPlus:
			return v, nil
		}
	case Conditional:
		c, err := Eval(e.Cond, env)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return Eval(e.Then, env)
		}
		return Eval(e.Else, env)
	case Binary:
		l, err := Eval(e.Left, env)
		if err != nil {
			return 0, err
		}
		r, err := Eval(e.Right, env)
		if err != nil {
			return 0, err
		}
		return evalBinary(e.Op, l, r)
	}
	return 0, fmt.Errorf("unsupported constant expression %T", e)
}

func evalBinary(op BinaryOp, l, r int64) (int64, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv, OpMod:
		if r == 0 {
			return 0, fmt.Errorf("division by zero in constant expression")
		}
		if op == OpDiv {
			return l / r, nil
		}
		return l % r, nil
	case OpLt:
		return boolInt(l < r), nil
	case OpLe:
		return boolInt(l <= r), nil
	case OpGt:
		return boolInt(l > r), nil
	case OpGe:
		return boolInt(l >= r), nil
	case OpEq:
		return boolInt(l == r), nil
	case OpNe:
		return boolInt(l != r), nil
	case OpAnd:
		return boolInt(l != 0 && r != 0), nil
	case OpOr:
		return boolInt(l != 0 || r != 0), nil
	case OpBitAnd:
		return l & r, nil
	case OpBitOr:
		return l | r, nil
	case OpBitXor:
		return l ^ r, nil
	case OpShl:
		if r < 0 || r > 63 {
			return 0, fmt.Errorf("shift count %d out of range", r)
		}
		return l << uint(r), nil
	case OpShr:
		if r < 0 || r > 63 {
			return 0, fmt.Errorf("shift count %d out of range", r)
		}
		return l >> uint(r), nil
	}
	return 0, fmt.Errorf("unsupported operator %s", op)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
