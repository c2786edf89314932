// Package parser decodes uploaded spreadsheets and normalizes their rows.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidFormat indicates the input is not a readable xlsx/xls workbook.
var ErrInvalidFormat = errors.New("invalid spreadsheet format")

// ReadError reports a failure to decode an uploaded workbook.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Grid is the first worksheet of a workbook as a string matrix.
type Grid struct {
	// Sheet is the worksheet name.
	Sheet string
	// Cells holds one slice per physical row; rows may be ragged.
	Cells [][]string
}

// Container signatures.
var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ReadGrid decodes the first worksheet of r. The container is picked from the
// leading bytes: a zip archive is read as OOXML and an OLE2 compound file as
// legacy BIFF. The filename extension decides only when neither signature
// matches. An empty stream yields an empty grid.
func ReadGrid(r io.Reader, filename string) (Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Grid{}, &ReadError{Filename: filename, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Grid{}, nil
	}

	var grid Grid
	if isLegacyWorkbook(data, filename) {
		grid, err = readXLS(data)
	} else {
		grid, err = readXLSX(data)
	}
	if err != nil {
		return Grid{}, &ReadError{Filename: filename, Err: err}
	}
	return grid, nil
}

func isLegacyWorkbook(data []byte, filename string) bool {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return false
	case bytes.HasPrefix(data, oleMagic):
		return true
	default:
		return strings.EqualFold(filepath.Ext(filename), ".xls")
	}
}

func readXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return Grid{}, nil
	}

	// Raw values keep dates as serial numbers and amounts unformatted.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return Grid{}, fmt.Errorf("%w: sheet %q: %v", ErrInvalidFormat, sheetName, err)
	}
	return Grid{Sheet: sheetName, Cells: rows}, nil
}

func readXLS(data []byte) (grid Grid, err error) {
	// The BIFF reader panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			grid = Grid{}
			err = fmt.Errorf("%w: %v", ErrInvalidFormat, rec)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if wb == nil {
		// An OLE2 file without a Workbook stream, e.g. an encrypted xlsx.
		return Grid{}, fmt.Errorf("%w: no workbook stream", ErrInvalidFormat)
	}
	if wb.NumSheets() == 0 {
		return Grid{}, nil
	}
	normalizeXLSDates(wb)

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Grid{}, nil
	}

	grid.Sheet = sheet.Name
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			grid.Cells = append(grid.Cells, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid.Cells = append(grid.Cells, cells)
	}
	return grid, nil
}

// xlsDateFormat is a format index the BIFF reader renders as RFC 3339. Any
// registered custom index (>= 164) gets that treatment.
const xlsDateFormat = 0xFFFF

// normalizeXLSDates points styles that use a built-in date format at
// xlsDateFormat. The reader would otherwise print those cells as "2006.01"
// and drop the day.
func normalizeXLSDates(wb *xls.WorkBook) {
	remapped := false
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			if isBuiltinDateFormat(x.Format) {
				x.Format = xlsDateFormat
				remapped = true
			}
		case *xls.Xf5:
			if isBuiltinDateFormat(x.Format) {
				x.Format = xlsDateFormat
				remapped = true
			}
		}
	}
	if remapped {
		wb.Formats[xlsDateFormat] = &xls.Format{}
	}
}

// isBuiltinDateFormat matches the BIFF built-in date format indexes,
// including the East Asian ones.
func isBuiltinDateFormat(n uint16) bool {
	return 14 <= n && n <= 17 || n == 22 || 27 <= n && n <= 36 || 50 <= n && n <= 58
}

// xlsRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row and panics.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// ReadFirstSheet decodes the first worksheet of r into rows keyed by the
// sheet's first non-blank row. It returns no rows for an empty workbook.
func ReadFirstSheet(r io.Reader, filename string) ([]models.RawRow, error) {
	grid, err := ReadGrid(r, filename)
	if err != nil {
		return nil, err
	}
	return RowsFromGrid(grid.Cells), nil
}

// ReadFirstSheetFile is ReadFirstSheet for a file on disk.
func ReadFirstSheetFile(path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFirstSheet(f, filepath.Base(path))
}

// RowsFromGrid converts a string grid into RawRows. The first non-blank row
// supplies the keys; blank rows are skipped; every row is padded to the key
// width so values stay aligned by column.
func RowsFromGrid(cells [][]string) []models.RawRow {
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}

	var keys []string
	var result []models.RawRow
	for rowIdx, row := range cells {
		if isBlankRow(row) {
			continue
		}
		if keys == nil {
			keys = headerKeys(row, width)
			continue
		}

		values := make([]models.Value, width)
		for colIdx, cellValue := range row {
			values[colIdx] = parseValue(cellValue)
		}
		result = append(result, models.RawRow{
			Row:    rowIdx + 1, // 1-based row index
			Keys:   keys,
			Values: values,
		})
	}

	return result
}

// headerKeys builds unique, trimmed keys for a header row. Blank cells become
// "__EMPTY", "__EMPTY_1", ...; repeated names get "_1", "_2" suffixes.
func headerKeys(row []string, width int) []string {
	keys := make([]string, width)
	seen := make(map[string]int)
	for colIdx := 0; colIdx < width; colIdx++ {
		name := ""
		if colIdx < len(row) {
			name = strings.TrimSpace(row[colIdx])
		}
		if name == "" {
			name = models.EmptyHeaderKey
		}
		keys[colIdx] = uniqueName(name, seen)
	}
	return keys
}

func uniqueName(name string, seen map[string]int) string {
	n, ok := seen[name]
	seen[name] = n + 1
	if !ok {
		return name
	}
	for {
		candidate := name + "_" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		n++
		seen[name] = n + 1
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseValue converts a raw cell string into a Value.
// Integers and decimals become numbers, blanks become null, anything else is text.
func parseValue(s string) models.Value {
	if strings.TrimSpace(s) == "" {
		return models.NullValue()
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.NumberValue(float64(i))
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return models.NumberValue(f)
	}
	// Return as string
	return models.StringValue(s)
}
