package portfolio

// Facet identifies one of the three independent drill tables over the same
// record set.
type Facet string

const (
	// FacetMotive drills by sales motive: series, responsible, service, currency.
	FacetMotive Facet = "motive"
	// FacetCounterparty drills by counterparty and currency.
	FacetCounterparty Facet = "counterparty"
	// FacetDetail lists individual documents.
	FacetDetail Facet = "detail"
)

// Facets enumerates all facets in presentation order.
var Facets = []Facet{FacetMotive, FacetCounterparty, FacetDetail}

// maxSchemaLen is the longest facet schema (detail).
const maxSchemaLen = 9

var facetSchemas = map[Facet][]Field{
	FacetMotive:       {FieldSeries, FieldResponsible, FieldService, FieldCurrency},
	FacetCounterparty: {FieldCounterparty, FieldCurrency},
	FacetDetail: {
		FieldDueDate,
		FieldIssueDate,
		FieldCounterpartyCode,
		FieldCounterparty,
		FieldSeries,
		FieldNumber,
		FieldDocType,
		FieldDescription,
		FieldExchangeRate,
	},
}

// Schema returns the facet's ordered key fields. A selection at depth k
// implies concrete values for fields 0..k-1.
func (f Facet) Schema() []Field {
	return facetSchemas[f]
}

// Valid reports whether f names a known facet.
func (f Facet) Valid() bool {
	_, ok := facetSchemas[f]
	return ok
}
