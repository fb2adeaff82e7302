package portfolio

import "fmt"

// ColumnSummary marks a click on a row's aggregate cell: the selection pins
// every key field the row carries, making it the deepest possible filter for
// the facet.
const ColumnSummary Field = "summary"

// Selection is a partial assignment of a facet's key fields plus the column
// the user clicked. The zero value is the empty selection and filters
// nothing.
type Selection struct {
	Values map[Field]string
	Column Field
}

// Empty reports whether the selection filters nothing.
func (s Selection) Empty() bool {
	return s.Column == ""
}

// Equal compares selections structurally, including the clicked column.
func (s Selection) Equal(o Selection) bool {
	if s.Column != o.Column {
		return false
	}
	if len(s.Values) != len(o.Values) {
		return false
	}
	for field, value := range s.Values {
		if other, ok := o.Values[field]; !ok || other != value {
			return false
		}
	}
	return true
}

// Apply implements the toggle transition: a candidate structurally equal to
// the current selection clears it, anything else replaces it wholesale.
func (s Selection) Apply(candidate Selection) Selection {
	if s.Equal(candidate) {
		return Selection{}
	}
	return candidate
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Matches reports whether the record agrees with every pinned field up to and
// including the clicked column. An empty selection vacuously matches.
func (s Selection) Matches(schema []Field, r Record) bool {
	if s.Empty() {
		return true
	}
	for _, field := range schema {
		if value, ok := s.Values[field]; ok && r.FieldValue(field) != value {
			return false
		}
		if field == s.Column {
			break
		}
	}
	return true
}

// NewSelection builds a selection from a clicked cell. The pinned values are
// the row's ancestor chain down to the clicked column; deeper fields are
// discarded so a new click always starts a fresh partial key.
func NewSelection(facet Facet, column Field, row map[Field]string) (Selection, error) {
	schema := facet.Schema()
	if schema == nil {
		return Selection{}, fmt.Errorf("portfolio: unknown facet %q", facet)
	}
	values := make(map[Field]string)
	if column == ColumnSummary {
		for _, field := range schema {
			if v, ok := row[field]; ok {
				values[field] = v
			}
		}
		return Selection{Values: values, Column: ColumnSummary}, nil
	}
	found := false
	for _, field := range schema {
		if v, ok := row[field]; ok {
			values[field] = v
		}
		if field == column {
			found = true
			break
		}
	}
	if !found {
		return Selection{}, fmt.Errorf("portfolio: column %q not in facet %q", column, facet)
	}
	return Selection{Values: values, Column: column}, nil
}
