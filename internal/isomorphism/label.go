package isomorphism

import "github.com/casegraph/argfac/internal/argmodel"

// label abstracts a node down to the coarse category VF2 matches on:
// every AtomNode carries the same label regardless of text, and every
// SchemeNode carries a label derived from its kind and (optionally) its
// taxonomy value, per §4.6's "Alternative algorithm" paragraph.
func label(n argmodel.Node) string {
	switch v := n.(type) {
	case *argmodel.AtomNode:
		return "atom"
	case *argmodel.SchemeNode:
		if v.Scheme == nil {
			return "scheme"
		}
		l := "scheme:" + v.Scheme.Kind.String()
		if v.Scheme.Taxonomy != "" {
			l += ":" + v.Scheme.Taxonomy
		}
		return l
	default:
		return "unknown"
	}
}
