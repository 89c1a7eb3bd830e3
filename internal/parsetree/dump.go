package parsetree

import (
	"fmt"
	"strings"
)

// Dump renders the tree as an indented outline, one node per line. The
// format is stable and used for golden files and the explain command.
func Dump(s *Start) string {
	var b strings.Builder
	b.WriteString("start\n")
	if s != nil {
		dumpElements(&b, s.Elements, 1)
	}
	return b.String()
}

func dumpElements(b *strings.Builder, elems []Element, depth int) {
	for _, e := range elems {
		indent(b, depth)
		switch el := e.(type) {
		case Operator:
			fmt.Fprintf(b, "operator %s\n", el)
		case *Clause:
			b.WriteString("clause")
			if el.Modifier != NoModifier {
				fmt.Fprintf(b, " modifier=%s", el.Modifier)
			}
			b.WriteByte('\n')
			dumpBody(b, el.Body, depth+1)
		}
	}
}

func dumpBody(b *strings.Builder, body Body, depth int) {
	switch bd := body.(type) {
	case *Group:
		indent(b, depth)
		b.WriteString("group\n")
		dumpElements(b, bd.Elements, depth+1)
	case *Query:
		indent(b, depth)
		b.WriteString("query\n")
		indent(b, depth+1)
		switch t := bd.Term.(type) {
		case Word:
			fmt.Fprintf(b, "word %q\n", t.Text)
		case Phrase:
			fmt.Fprintf(b, "phrase %q style=%s\n", t.Text, t.Style)
		case ForbiddenMarker:
			fmt.Fprintf(b, "forbidden %q\n", t.Text)
		}
	}
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}
