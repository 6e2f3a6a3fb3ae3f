package parse

import (
	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

var (
	stmtLexer = lexer.Must(lexer.Regexp(`(\s+)` +
		`|(?P<Keyword>(?i)CHECK|SPEC|GET|AXIOMS|LIST|DROP|WATCH|LIVE)` +
		`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_.-]*)` +
		`|(?P<String>'[^']*'|"[^"]*")`,
	))
	stmtParser = participle.MustBuild(
		&Statement{},
		participle.Lexer(stmtLexer),
		participle.Upper("Keyword"),
		participle.Unquote("String"),
	)
)

type Statement struct {
	Check  *Check  `  @@`
	Get    *Get    `| @@`
	Axioms *Axioms `| @@`
	List   *List   `| @@`
	Drop   *Drop   `| @@`
	Watch  *Watch  `| @@`
}

// Check carries a base64-encoded proof file, and optionally a
// base64-encoded declaration file to match it against.
type Check struct {
	Name  string  `"CHECK" @Ident`
	Proof string  `@String`
	Spec  *string `[ "SPEC" @String ]`
}

type Get struct {
	Name string `"GET" @Ident`
	Live bool   `[ @"LIVE" ]`
}

type Axioms struct {
	Name string `"AXIOMS" @Ident`
}

type List struct {
	List bool `@"LIST"`
}

type Drop struct {
	Name string `"DROP" @Ident`
}

type Watch struct {
	Watch bool    `@"WATCH"`
	Name  *string `[ @Ident ]`
}

// Parse parses a database statement.
func Parse(stmt string) (*Statement, error) {
	result := &Statement{}
	err := stmtParser.ParseString(stmt, result)
	return result, err
}
