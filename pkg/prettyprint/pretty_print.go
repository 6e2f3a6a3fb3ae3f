package prettyprint

import (
	"fmt"
	"strings"
)

// Simple document combinators after Wadler's prettier printer, used for
// rendering environment listings and formulas.

type Doc interface {
	// String returns the pretty-printed representation.
	String() string
}

// Text

type text struct {
	str string
}

func Text(s string) Doc {
	return &text{str: s}
}

func Textf(format string, args ...interface{}) Doc {
	return Text(fmt.Sprintf(format, args...))
}

func (s *text) String() string {
	return s.str
}

// Indent

type indentDoc struct {
	doc      Doc
	indentBy int
}

func Indent(by int, d Doc) Doc {
	return &indentDoc{
		doc:      d,
		indentBy: by,
	}
}

func (n *indentDoc) String() string {
	indent := strings.Repeat(" ", n.indentBy)
	lines := strings.Split(n.doc.String(), "\n")
	sb := strings.Builder{}
	for idx, line := range lines {
		if idx > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent)
		sb.WriteString(line)
	}
	return sb.String()
}

// Empty

type empty struct{}

var Empty Doc = &empty{}

func (*empty) String() string {
	return ""
}

// Seq

type concat struct {
	docs []Doc
}

func Seq(docs []Doc) Doc {
	return &concat{docs: docs}
}

func (c *concat) String() string {
	sb := strings.Builder{}
	for _, doc := range c.docs {
		sb.WriteString(doc.String())
	}
	return sb.String()
}

// Newline

type newline struct{}

var Newline Doc = &newline{}

func (*newline) String() string {
	return "\n"
}

// Combinators

func Join(docs []Doc, sep Doc) Doc {
	out := make([]Doc, 0, len(docs)*2)
	for idx, doc := range docs {
		if idx > 0 {
			out = append(out, sep)
		}
		out = append(out, doc)
	}
	return Seq(out)
}

var Comma = Text(",")

var CommaNewline = Seq([]Doc{Comma, Newline})
