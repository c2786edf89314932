package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

// NormalizeBudget turns decoded rows into budget records.
//
// The header row is located with DetectHeaderRow; every row after it becomes
// one record. Values are picked by the header cell's column index, so a sheet
// whose data rows are shifted relative to the header (merged cells, stray
// leading columns) maps values to the wrong names. That limitation is known
// and left as is. Empty, null and "null" cells become "--".
func NormalizeBudget(rows []models.RawRow, anchor string) []models.BudgetRecord {
	headerIdx, _ := DetectHeaderRow(rows, anchor)
	columns := HeaderColumns(rows, headerIdx)

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}

	var records []models.BudgetRecord
	for _, row := range rows[headerIdx+1:] {
		rec := models.BudgetRecord{
			ID:      fmt.Sprintf("b-%d", len(records)),
			Columns: names,
			Fields:  make(map[string]models.Value, len(columns)),
		}
		for _, col := range columns {
			v := row.At(col.Index)
			if v.IsEmpty() {
				v = models.StringValue(models.BudgetPlaceholder)
			}
			rec.Fields[col.Name] = v
		}
		records = append(records, rec)
	}
	return records
}

// AmountColumn returns the first header whose name contains "amount"
// (case-insensitive).
func AmountColumn(headers []string) (string, bool) {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), "amount") {
			return h, true
		}
	}
	return "", false
}

// SummarizeBudget totals the amount column of records, grouped by the first
// header column. Rows without a parseable amount are counted in Skipped.
func SummarizeBudget(records []models.BudgetRecord) models.BudgetSummary {
	summary := models.BudgetSummary{Total: decimal.Zero}
	if len(records) == 0 {
		return summary
	}

	headers := records[0].Columns
	amountCol, ok := AmountColumn(headers)
	if !ok {
		return summary
	}
	summary.AmountColumn = amountCol
	for _, h := range headers {
		if h != amountCol {
			summary.LabelColumn = h
			break
		}
	}

	index := make(map[string]int)
	for _, rec := range records {
		amount, ok := parseAmount(rec.Get(amountCol))
		if !ok {
			summary.Skipped++
			continue
		}
		summary.Total = summary.Total.Add(amount)

		label := models.BudgetPlaceholder
		if summary.LabelColumn != "" {
			label = strings.TrimSpace(rec.Get(summary.LabelColumn).String())
		}
		i, seen := index[label]
		if !seen {
			i = len(summary.Groups)
			index[label] = i
			summary.Groups = append(summary.Groups, models.BudgetGroup{Label: label, Total: decimal.Zero})
		}
		summary.Groups[i].Total = summary.Groups[i].Total.Add(amount)
		summary.Groups[i].Count++
	}
	return summary
}

// parseAmount reads a money cell. Currency symbols, spaces and thousands
// separators are ignored; "(1,200)" is negative.
func parseAmount(v models.Value) (decimal.Decimal, bool) {
	if f, ok := v.Number(); ok {
		return decimal.NewFromFloat(f), true
	}
	if v.IsEmpty() {
		return decimal.Zero, false
	}
	s := strings.TrimSpace(v.String())
	if s == models.BudgetPlaceholder {
		return decimal.Zero, false
	}

	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
