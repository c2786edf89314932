package models

// EmptyHeaderKey is the key prefix given to columns whose header cell is blank.
const EmptyHeaderKey = "__EMPTY"

// RawRow is one physical spreadsheet row keyed by the sheet's first row.
type RawRow struct {
	// Row is the physical row index (1-based).
	Row int `json:"r"`
	// Keys holds the column headers in column order.
	Keys []string `json:"keys"`
	// Values holds one value per key, in the same order.
	Values []Value `json:"values"`
}

// Get returns the value stored under key and whether the key exists.
func (r RawRow) Get(key string) (Value, bool) {
	for i, k := range r.Keys {
		if k == key && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return NullValue(), false
}

// At returns the value in the given 0-based column, or null when out of range.
func (r RawRow) At(col int) Value {
	if col < 0 || col >= len(r.Values) {
		return NullValue()
	}
	return r.Values[col]
}

// IsBlank reports whether every value in the row is empty.
func (r RawRow) IsBlank() bool {
	for _, v := range r.Values {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}
