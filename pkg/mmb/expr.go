package mmb

import (
	"fmt"
	"strings"
)

// Expr is a term expression built on the verifier stack: a binder
// variable or a term application.
type Expr interface {
	Ty() Type
	exprEq(other Expr) bool
	format(sb *strings.Builder, names *NameIndex)
}

// EVar is a reference to a binder or dummy variable by heap position.
type EVar struct {
	Idx  int
	Type Type
}

// EApp is a term constructor applied to arguments.
type EApp struct {
	Term TermID
	Args []Expr
	Type Type
}

var _ Expr = &EVar{}
var _ Expr = &EApp{}

func (e *EVar) Ty() Type { return e.Type }
func (e *EApp) Ty() Type { return e.Type }

func (e *EVar) exprEq(other Expr) bool {
	o, ok := other.(*EVar)
	return ok && o.Idx == e.Idx
}

func (e *EApp) exprEq(other Expr) bool {
	o, ok := other.(*EApp)
	if !ok || o.Term != e.Term || len(o.Args) != len(e.Args) {
		return false
	}
	for i, arg := range e.Args {
		if !arg.exprEq(o.Args[i]) {
			return false
		}
	}
	return true
}

func (e *EVar) format(sb *strings.Builder, names *NameIndex) {
	fmt.Fprintf(sb, "v%d", e.Idx)
}

func (e *EApp) format(sb *strings.Builder, names *NameIndex) {
	name := fmt.Sprintf("t%d", e.Term)
	if names != nil {
		if n, err := names.TermName(e.Term); err == nil {
			name = n
		}
	}
	if len(e.Args) == 0 {
		sb.WriteString(name)
		return
	}
	sb.WriteString("(")
	sb.WriteString(name)
	for _, arg := range e.Args {
		sb.WriteString(" ")
		arg.format(sb, names)
	}
	sb.WriteString(")")
}

// FormatExpr renders an expression as an s-expression, using index names
// for terms when available.
func FormatExpr(e Expr, names *NameIndex) string {
	var sb strings.Builder
	e.format(&sb, names)
	return sb.String()
}

// item is a verifier stack slot: an expression, a proof of an expression,
// a proven convertibility, or a convertibility obligation.
type item interface {
	itemString(names *NameIndex) string
}

type exprItem struct{ e Expr }
type proofItem struct{ e Expr }
type convItem struct{ lhs, rhs Expr }   // e1 = e2, proven
type coConvItem struct{ lhs, rhs Expr } // e1 =?= e2, an obligation

func (it exprItem) itemString(names *NameIndex) string {
	return FormatExpr(it.e, names)
}

func (it proofItem) itemString(names *NameIndex) string {
	return "|- " + FormatExpr(it.e, names)
}

func (it convItem) itemString(names *NameIndex) string {
	return FormatExpr(it.lhs, names) + " = " + FormatExpr(it.rhs, names)
}

func (it coConvItem) itemString(names *NameIndex) string {
	return FormatExpr(it.lhs, names) + " =?= " + FormatExpr(it.rhs, names)
}
