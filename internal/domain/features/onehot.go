package features

// OneHotTable maps every value of a closed enumeration to a fixed-size
// indicator sequence. Tables are built once at package load and never change.
type OneHotTable struct {
	field      string
	prefix     string
	categories []string
	index      map[string]int
}

func newOneHotTable(field, prefix string, categories ...string) OneHotTable {
	t := OneHotTable{
		field:      field,
		prefix:     prefix,
		categories: categories,
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if _, dup := t.index[c]; dup {
			panic("features: duplicate category " + c + " in " + field)
		}
		t.index[c] = i
	}
	return t
}

// Len returns the width of the indicator sequence.
func (t OneHotTable) Len() int { return len(t.categories) }

// Categories returns the enumeration in indicator order.
func (t OneHotTable) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// FieldNames returns the model-facing column names, e.g. "Airline_IndiGo".
func (t OneHotTable) FieldNames() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = t.prefix + c
	}
	return out
}

// Contains reports whether value is a member of the enumeration.
func (t OneHotTable) Contains(value string) bool {
	_, ok := t.index[value]
	return ok
}

// Encode writes the indicator sequence for value into dst, which must be
// exactly Len() long. Values are matched literally.
func (t OneHotTable) Encode(value string, dst []float64) error {
	pos, ok := t.index[value]
	if !ok {
		return &CategoryError{Field: t.field, Value: value}
	}
	for i := range dst {
		dst[i] = 0
	}
	dst[pos] = 1
	return nil
}
