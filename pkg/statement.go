package mmcheck

import "mmcheck/pkg/parse"

// Statement types come from the parse package; aliased here so database
// code doesn't have to qualify them.
type (
	Statement = parse.Statement
	Check     = parse.Check
	Get       = parse.Get
	Axioms    = parse.Axioms
	List      = parse.List
	Drop      = parse.Drop
	Watch     = parse.Watch
)

// Parse parses a database statement.
func Parse(statement string) (*Statement, error) {
	return parse.Parse(statement)
}
