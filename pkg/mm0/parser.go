package mm0

import (
	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
	"github.com/pkg/errors"
)

var (
	mm0Lexer = lexer.Must(lexer.Regexp(`(\s+|--[^\n]*)` +
		`|(?P<Math>\$[^$]*\$)` +
		`|(?P<Number>\d+)` +
		`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*)` +
		`|(?P<Punct>[():;>])`,
	))
	mm0Parser = participle.MustBuild(&SpecFile{}, participle.Lexer(mm0Lexer))
)

// SpecFile is the AST of an .mm0 declaration file.
type SpecFile struct {
	Decls []*Decl `{ @@ }`
}

type Decl struct {
	Delimiter *DelimiterDecl `  @@`
	Sort      *SortDecl      `| @@`
	Var       *VarDecl       `| @@`
	Term      *TermDecl      `| @@`
	Notation  *NotationDecl  `| @@`
	Assert    *AssertDecl    `| @@`
}

// DelimiterDecl registers single-character tokens for math strings.
type DelimiterDecl struct {
	Math string `"delimiter" @Math ";"`
}

type SortDecl struct {
	Mods []string `{ @("pure" | "strict" | "provable" | "free") }`
	Name string   `"sort" @Ident ";"`
}

// VarDecl declares ambient variables usable in any later formula.
type VarDecl struct {
	Names []string `"var" @Ident { @Ident }`
	Sort  string   `":" @Ident ";"`
}

type TermDecl struct {
	Name    string         `"term" @Ident`
	Binders []*BinderGroup `{ "(" @@ ")" }`
	// Arrow form chains argument sorts before the return sort.
	Sorts []string `":" @Ident { ">" @Ident } ";"`
}

type BinderGroup struct {
	Names []string `@Ident { @Ident }`
	Sort  string   `":" @Ident`
}

type NotationDecl struct {
	Kind string `@("prefix" | "infixl" | "infixr")`
	Term string `@Ident ":"`
	Tok  string `@Math`
	Prec int    `"prec" @Number ";"`
}

// AssertDecl is an axiom or theorem statement. Hypotheses chain with `>`
// before the conclusion. Theorem proofs live in the .mmb file, not here.
type AssertDecl struct {
	Kind    string         `@("axiom" | "theorem")`
	Name    string         `@Ident`
	Binders []*BinderGroup `{ "(" @@ ")" }`
	Fmlas   []string       `":" @Math { ">" @Math } ";"`
}

// ParseSpecFile parses .mm0 source into its declaration AST.
func ParseSpecFile(src string) (*SpecFile, error) {
	file := &SpecFile{}
	if err := mm0Parser.ParseString(src, file); err != nil {
		return nil, errors.Wrap(err, "parsing mm0")
	}
	return file, nil
}
