package sitegrid

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
)

// Inspect decodes the first worksheet of r and reports the raw rows, the
// budget header row located by the anchor token and the data range.
func Inspect(r io.Reader, filename string, opts Options) (*models.SheetData, error) {
	grid, err := parser.ReadGrid(r, filename)
	if err != nil {
		return nil, err
	}

	rows := parser.RowsFromGrid(grid.Cells)
	header, found := parser.DetectHeaderRow(rows, opts.Anchor())

	return &models.SheetData{
		Name:        grid.Sheet,
		Rows:        rows,
		HeaderRow:   header,
		HeaderFound: found,
		TableRange:  parser.DetectTableRange(grid.Cells, parser.DefaultTableParams()),
	}, nil
}

// InspectFile is Inspect for a file on disk.
func InspectFile(path string, opts Options) (*models.SheetData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Inspect(f, filepath.Base(path), opts)
}
