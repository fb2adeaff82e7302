package portfolio

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameCollator orders counterparty and motive labels with Spanish collation
// so accented names land where operators expect them.
var nameCollator = collate.New(language.Spanish)

// keyTuple is a facet group key: the schema field values in order, padded
// with empty strings. A fixed-size array keeps the key comparable without
// delimiter-joining fragility.
type keyTuple [maxSchemaLen]string

// AggregateRow is one rendered group: key values, summed measures, derived
// ratios and the merge-cell presentation flags.
type AggregateRow struct {
	Values           map[Field]string
	Count            int
	AmountLocal      float64
	AmountFunctional float64
	AmountAlternate  float64
	AmountOriginal   float64
	AmountPending    float64
	Participation    float64
	PendingPct       float64
	// ShowLevel aligns with the facet schema: ShowLevel[i] is true when the
	// row's key prefix up to field i differs from the previous row's.
	ShowLevel    []bool
	FirstInGroup bool
	GroupSize    int
}

// Totals sums the measures over a facet's foreign-filtered input.
type Totals struct {
	Count            int
	AmountLocal      float64
	AmountFunctional float64
	AmountAlternate  float64
	AmountOriginal   float64
	AmountPending    float64
}

// FacetView is the fully ordered aggregate output for one facet.
type FacetView struct {
	Facet  Facet
	Rows   []AggregateRow
	Totals Totals
}

type group struct {
	key           keyTuple
	first         Record
	count         int
	local         float64
	functional    float64
	alternate     float64
	original      float64
	pending       float64
	participation float64
}

// Aggregate groups a facet-filtered array by the facet's key tuple, sums the
// monetary measures, derives participation and pending ratios, applies the
// facet ordering and computes merge-cell flags. Pure; recomputed in full on
// every input change.
func Aggregate(facet Facet, records []Record) FacetView {
	schema := facet.Schema()
	groups := make(map[keyTuple]*group)
	ordered := make([]*group, 0)
	var totals Totals

	for _, r := range records {
		var key keyTuple
		for i, field := range schema {
			key[i] = r.FieldValue(field)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, first: r}
			groups[key] = g
			ordered = append(ordered, g)
		}
		g.count++
		g.local += r.AmountLocal
		g.functional += r.AmountFunctional
		g.alternate += r.AmountAlternate
		g.original += r.AmountOriginal
		g.pending += r.PendingAmount()

		totals.Count++
		totals.AmountLocal += r.AmountLocal
		totals.AmountFunctional += r.AmountFunctional
		totals.AmountAlternate += r.AmountAlternate
		totals.AmountOriginal += r.AmountOriginal
		totals.AmountPending += r.PendingAmount()
	}

	for _, g := range ordered {
		g.participation = safeRatio(g.functional, totals.AmountFunctional)
	}

	sortGroups(facet, schema, ordered)

	rows := make([]AggregateRow, len(ordered))
	for i, g := range ordered {
		values := make(map[Field]string, len(schema))
		for j, field := range schema {
			values[field] = g.key[j]
		}
		rows[i] = AggregateRow{
			Values:           values,
			Count:            g.count,
			AmountLocal:      g.local,
			AmountFunctional: g.functional,
			AmountAlternate:  g.alternate,
			AmountOriginal:   g.original,
			AmountPending:    g.pending,
			Participation:    g.participation,
			PendingPct:       safeRatio(g.pending, g.original),
			ShowLevel:        mergeFlags(ordered, i, len(schema)),
		}
	}
	markGroups(ordered, rows)

	return FacetView{Facet: facet, Rows: rows, Totals: totals}
}

func sortGroups(facet Facet, schema []Field, groups []*group) {
	switch facet {
	case FacetCounterparty:
		sortCounterparty(groups)
	case FacetMotive:
		sortMotive(groups)
	case FacetDetail:
		sortDetail(groups)
	default:
		sort.SliceStable(groups, func(i, j int) bool {
			return lessTuple(groups[i].key, groups[j].key, len(schema))
		})
	}
}

// sortCounterparty orders counterparties by their dominant row's
// participation, then rows within a counterparty by participation. Name and
// currency tie-breaks keep the order total and re-runs byte-identical.
func sortCounterparty(groups []*group) {
	maxPart := make(map[string]float64)
	for _, g := range groups {
		if p, ok := maxPart[g.key[0]]; !ok || g.participation > p {
			maxPart[g.key[0]] = g.participation
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if maxPart[a.key[0]] != maxPart[b.key[0]] {
			return maxPart[a.key[0]] > maxPart[b.key[0]]
		}
		if a.key[0] != b.key[0] {
			return nameCollator.CompareString(a.key[0], b.key[0]) < 0
		}
		if a.participation != b.participation {
			return a.participation > b.participation
		}
		return a.key[1] < b.key[1]
	})
}

// sortMotive nests three descending-total levels (series, responsible,
// service) above the currency rows, which order by functional amount with a
// currency-code tie-break.
func sortMotive(groups []*group) {
	prefixTotals := [3]map[keyTuple]float64{}
	for depth := 1; depth <= 3; depth++ {
		prefixTotals[depth-1] = make(map[keyTuple]float64)
	}
	for _, g := range groups {
		for depth := 1; depth <= 3; depth++ {
			prefixTotals[depth-1][prefixKey(g.key, depth)] += g.functional
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		for depth := 1; depth <= 3; depth++ {
			ta := prefixTotals[depth-1][prefixKey(a.key, depth)]
			tb := prefixTotals[depth-1][prefixKey(b.key, depth)]
			if ta != tb {
				return ta > tb
			}
			if a.key[depth-1] != b.key[depth-1] {
				return nameCollator.CompareString(a.key[depth-1], b.key[depth-1]) < 0
			}
		}
		if a.functional != b.functional {
			return a.functional > b.functional
		}
		return a.key[3] < b.key[3]
	})
}

// sortDetail orders documents ascending over the detail chain, comparing
// dates and the exchange rate by value rather than their string renderings.
func sortDetail(groups []*group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].first, groups[j].first
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.IssueDate.Equal(b.IssueDate) {
			return a.IssueDate.Before(b.IssueDate)
		}
		for _, pair := range [][2]string{
			{a.FieldValue(FieldCounterpartyCode), b.FieldValue(FieldCounterpartyCode)},
			{a.FieldValue(FieldCounterparty), b.FieldValue(FieldCounterparty)},
			{a.FieldValue(FieldSeries), b.FieldValue(FieldSeries)},
			{a.FieldValue(FieldNumber), b.FieldValue(FieldNumber)},
			{a.FieldValue(FieldDocType), b.FieldValue(FieldDocType)},
			{a.FieldValue(FieldDescription), b.FieldValue(FieldDescription)},
		} {
			if pair[0] != pair[1] {
				return pair[0] < pair[1]
			}
		}
		return a.ExchangeRate < b.ExchangeRate
	})
}

func prefixKey(key keyTuple, depth int) keyTuple {
	var p keyTuple
	copy(p[:depth], key[:depth])
	return p
}

func lessTuple(a, b keyTuple, depth int) bool {
	for i := 0; i < depth; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// mergeFlags computes the per-level "show this label" flags from the final
// sort order.
func mergeFlags(groups []*group, index, depth int) []bool {
	show := make([]bool, depth)
	if index == 0 {
		for i := range show {
			show[i] = true
		}
		return show
	}
	prev := groups[index-1]
	cur := groups[index]
	changed := false
	for level := 0; level < depth; level++ {
		if cur.key[level] != prev.key[level] {
			changed = true
		}
		show[level] = changed
	}
	return show
}

// markGroups fills FirstInGroup and GroupSize over runs sharing the leading
// key field.
func markGroups(groups []*group, rows []AggregateRow) {
	for start := 0; start < len(groups); {
		end := start + 1
		for end < len(groups) && groups[end].key[0] == groups[start].key[0] {
			end++
		}
		for i := start; i < end; i++ {
			rows[i].FirstInGroup = i == start
			rows[i].GroupSize = end - start
		}
		start = end
	}
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
