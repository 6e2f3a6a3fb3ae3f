package mm0

import (
	"strings"

	"github.com/pkg/errors"
)

// Fmla is a parsed math-string formula: a variable or a term application.
type Fmla struct {
	Var  string
	Term string
	Args []*Fmla
}

func (f *Fmla) String() string {
	if f.Var != "" {
		return f.Var
	}
	if len(f.Args) == 0 {
		return f.Term
	}
	parts := make([]string, 0, len(f.Args)+1)
	parts = append(parts, f.Term)
	for _, arg := range f.Args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type notationKind int

const (
	notationPrefix notationKind = iota
	notationInfixL
	notationInfixR
)

type notation struct {
	kind notationKind
	term string
	prec int
}

// maxPrec is the precedence of juxtaposed term application.
const maxPrec = 1 << 20

// tokenizeMath splits a math string on whitespace and on the declared
// delimiter characters, which form one-character tokens.
func tokenizeMath(math string, delims map[rune]bool) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range math {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case delims[r]:
			flush()
			toks = append(toks, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// fmlaParser is a precedence-climbing parser over math-string tokens,
// driven by the spec's notation table.
type fmlaParser struct {
	spec *Spec
	toks []string
	pos  int
}

func (p *fmlaParser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *fmlaParser) next() (string, error) {
	tok, ok := p.peek()
	if !ok {
		return "", errors.New("unexpected end of formula")
	}
	p.pos++
	return tok, nil
}

func (p *fmlaParser) parse(minPrec int) (*Fmla, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok == ")" {
			return lhs, nil
		}
		n, ok := p.spec.infixes[tok]
		if !ok || n.prec < minPrec {
			return lhs, nil
		}
		p.pos++
		nextMin := n.prec
		if n.kind == notationInfixL {
			nextMin = n.prec + 1
		}
		rhs, err := p.parse(nextMin)
		if err != nil {
			return nil, err
		}
		lhs = &Fmla{Term: n.term, Args: []*Fmla{lhs, rhs}}
	}
}

func (p *fmlaParser) parsePrimary() (*Fmla, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok == ")" {
		return nil, errors.New("unexpected ) in formula")
	}
	if tok == "(" {
		inner, err := p.parse(0)
		if err != nil {
			return nil, err
		}
		closing, err := p.next()
		if err != nil {
			return nil, err
		}
		if closing != ")" {
			return nil, errors.Errorf("expected ); got %q", closing)
		}
		return inner, nil
	}
	if n, ok := p.spec.prefixes[tok]; ok {
		arg, err := p.parse(n.prec)
		if err != nil {
			return nil, err
		}
		return &Fmla{Term: n.term, Args: []*Fmla{arg}}, nil
	}
	if _, ok := p.spec.infixes[tok]; ok {
		return nil, errors.Errorf("misplaced infix %q", tok)
	}
	// A bare identifier: a variable, or a term applied by juxtaposition.
	if sig, ok := p.spec.Term(tok); ok {
		args := make([]*Fmla, len(sig.ArgSorts))
		for i := range args {
			arg, err := p.parse(maxPrec)
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d of %s", i, tok)
			}
			args[i] = arg
		}
		return &Fmla{Term: tok, Args: args}, nil
	}
	return &Fmla{Var: tok}, nil
}

// parseFmla parses the contents of one math string against the spec's
// notation table.
func (s *Spec) parseFmla(math string) (*Fmla, error) {
	toks := tokenizeMath(math, s.delims)
	if len(toks) == 0 {
		return nil, errors.New("empty formula")
	}
	p := &fmlaParser{spec: s, toks: toks}
	f, err := p.parse(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, errors.Errorf("trailing tokens in formula: %q", strings.Join(p.toks[p.pos:], " "))
	}
	return f, nil
}
