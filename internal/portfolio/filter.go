package portfolio

import (
	"sort"
	"strings"
)

// GlobalFilterFields lists the attributes the global allow-list filter may
// constrain.
var GlobalFilterFields = []Field{
	FieldCompany,
	FieldResponsible,
	FieldAccountType,
	FieldCounterparty,
	FieldDescription,
	FieldSeries,
	FieldCurrency,
}

// GlobalFilter maps a field to its set of allowed values. A field with an
// empty (or absent) set imposes no restriction.
type GlobalFilter map[Field]map[string]struct{}

// DefaultGlobalFilter returns the documented reset state: only receivable
// documents.
func DefaultGlobalFilter() GlobalFilter {
	return GlobalFilter{
		FieldAccountType: {string(AccountReceivable): {}},
	}
}

// FilterableField reports whether f participates in global filtering.
func FilterableField(f Field) bool {
	for _, candidate := range GlobalFilterFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// Clone copies the filter so transitions never mutate a shared map.
func (g GlobalFilter) Clone() GlobalFilter {
	out := make(GlobalFilter, len(g))
	for field, values := range g {
		set := make(map[string]struct{}, len(values))
		for v := range values {
			set[v] = struct{}{}
		}
		out[field] = set
	}
	return out
}

// With returns a copy of the filter with the field's allow-list replaced.
// Passing no values removes the restriction on that field.
func (g GlobalFilter) With(field Field, values ...string) GlobalFilter {
	out := g.Clone()
	if len(values) == 0 {
		delete(out, field)
		return out
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	out[field] = set
	return out
}

// Matches reports whether the record passes every non-empty allow-list.
func (g GlobalFilter) Matches(r Record) bool {
	for field, allowed := range g {
		if len(allowed) == 0 {
			continue
		}
		if _, ok := allowed[r.FieldValue(field)]; !ok {
			return false
		}
	}
	return true
}

// Values returns the sorted allow-list for a field, nil when unrestricted.
func (g GlobalFilter) Values(field Field) []string {
	set, ok := g[field]
	if !ok || len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ApplyGlobalFilter returns the subset of records passing the filter. Pure
// and deterministic; input order is preserved.
func ApplyGlobalFilter(records []Record, filter GlobalFilter) []Record {
	if len(filter) == 0 {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
