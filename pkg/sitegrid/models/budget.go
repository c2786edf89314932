package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetPlaceholder replaces empty budget cells for display.
const BudgetPlaceholder = "--"

// BudgetIDKey is the JSON key reserved for the synthetic record id.
const BudgetIDKey = "id"

// BudgetRecord is a normalized budget row whose columns mirror the uploaded
// sheet's header row.
type BudgetRecord struct {
	// ID is "b-{index}", unique within one upload only.
	ID string
	// Columns lists the header names in sheet order.
	Columns []string
	// Fields maps each header name to its cell value.
	Fields map[string]Value
}

// Get returns the value for a column, or null when the column is unknown.
func (b BudgetRecord) Get(column string) Value {
	if v, ok := b.Fields[column]; ok {
		return v
	}
	return NullValue()
}

// MarshalJSON encodes the record as a flat object, id first, columns in order.
func (b BudgetRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	key, _ := json.Marshal(BudgetIDKey)
	id, _ := json.Marshal(b.ID)
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(id)
	for _, col := range b.Columns {
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := b.Get(col).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object and keeps the key order as Columns.
func (b *BudgetRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("budget record must be a JSON object")
	}

	rec := BudgetRecord{Fields: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in budget record", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("budget field %q: %w", key, err)
		}
		if key == BudgetIDKey {
			rec.ID = v.String()
			continue
		}
		if _, seen := rec.Fields[key]; !seen {
			rec.Columns = append(rec.Columns, key)
		}
		rec.Fields[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*b = rec
	return nil
}

// BudgetGroup is the amount total for one label.
type BudgetGroup struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BudgetSummary aggregates the amount column of a budget upload.
type BudgetSummary struct {
	// AmountColumn is the header used for amounts ("" when none matched).
	AmountColumn string `json:"amount_column"`
	// LabelColumn is the header used to group amounts.
	LabelColumn string `json:"label_column"`
	// Total is the sum of every parseable amount.
	Total decimal.Decimal `json:"total"`
	// Groups holds per-label totals in first-seen order.
	Groups []BudgetGroup `json:"groups"`
	// Skipped counts rows whose amount could not be parsed.
	Skipped int `json:"skipped"`
}
