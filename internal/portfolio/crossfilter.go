package portfolio

// SelectionSet holds the current selection per facet. Absent facets count as
// empty selections.
type SelectionSet map[Facet]Selection

// Clone copies the set so engine snapshots stay isolated from later
// transitions.
func (s SelectionSet) Clone() SelectionSet {
	out := make(SelectionSet, len(s))
	for facet, sel := range s {
		out[facet] = sel
	}
	return out
}

// ForeignFiltered returns the records a facet actually groups and displays:
// the globally-filtered input passed through the selections of every facet
// except the facet's own. A table therefore never hides its own rows because
// of its current drill while still reacting to drills in sibling tables.
func ForeignFiltered(facet Facet, records []Record, selections SelectionSet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesForeign(facet, r, selections) {
			out = append(out, r)
		}
	}
	return out
}

func matchesForeign(facet Facet, r Record, selections SelectionSet) bool {
	for _, other := range Facets {
		if other == facet {
			continue
		}
		if !selections[other].Matches(other.Schema(), r) {
			return false
		}
	}
	return true
}

// FullyFiltered applies all three facets' selections conjunctively. This is
// the record set behind the KPI totals and bulk export.
func FullyFiltered(records []Record, selections SelectionSet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		keep := true
		for _, facet := range Facets {
			if !selections[facet].Matches(facet.Schema(), r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}
