package statemachine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToDOT renders the rule table in the Graphviz DOT language. Only reachable rules are
// drawn: a transition shadowed by an earlier declaration is omitted. When current is
// given, that state is highlighted.
func (d *Definition[E, S]) ToDOT(current ...S) string {
	title := cases.Title(language.English)
	label := func(s S) string {
		return title.String(strings.ReplaceAll(s.Name(), "_", " "))
	}

	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", d.name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	outgoing := make(map[S]bool)
	for _, r := range d.rules.rules {
		for _, f := range r.from {
			outgoing[f] = true
		}
	}

	for _, s := range d.enum.states {
		attrs := []string{fmt.Sprintf("label=%q", label(s))}
		switch {
		case len(current) > 0 && current[0] == s:
			attrs = append(attrs, "fillcolor=\"#90ee90\"", "shape=doublecircle")
		case !outgoing[s]:
			attrs = append(attrs, "fillcolor=\"#d3d3d3\"", "shape=doublecircle")
		}
		fmt.Fprintf(&b, "  %q [%s];\n", s.Value(), strings.Join(attrs, ", "))
	}

	b.WriteByte('\n')

	for i, r := range d.rules.rules {
		for _, k := range r.Keys() {
			if first, _ := d.rules.lookup(k.From, k.To); first != i {
				continue
			}

			var edge []string
			switch {
			case d.guards[i] != nil && d.handlers[i] != nil:
				edge = append(edge, "label=\" guarded, handled \"", "style=dashed", "color=purple", "arrowhead=odiamond")
			case d.guards[i] != nil:
				edge = append(edge, "label=\" guarded \"", "style=dashed", "color=red", "arrowhead=odiamond")
			case d.handlers[i] != nil:
				edge = append(edge, "label=\" handled \"", "style=bold", "color=blue")
			}

			fmt.Fprintf(&b, "  %q -> %q", k.From.Value(), k.To.Value())
			if len(edge) > 0 {
				fmt.Fprintf(&b, " [%s]", strings.Join(edge, ", "))
			}
			b.WriteString(";\n")
		}
	}

	b.WriteString("}\n")
	return b.String()
}
