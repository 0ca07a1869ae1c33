// Package feed reads the tabular catalog source. Columns are resolved
// by header name using the feed's native header set, so column order in
// the file does not matter.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.CatalogSource = (*CSVSource)(nil)

// Header names as they appear in the exported feed.
const (
	colID        = "ID"
	colName      = "Имя"
	colShortDesc = "Краткое описание"
	colLongDesc  = "Описание"
	colPrice     = "Базовая цена"
	colAltPrice  = "Regular price"
	colImages    = "Изображения"
	colCategory  = "Категории"
	colStock     = "Наличие"
	colSKU       = "Артикул"
)

// A CSVSource reads catalog records from a CSV file on disk.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) CSVSource {
	return CSVSource{path}
}

// Fetch reads the whole file into raw records. A missing or unreadable
// file is an error for the caller to degrade on; individual cells are
// never validated here.
func (s CSVSource) Fetch(ctx context.Context) ([]domain.FeedRecord, error) {
	const op = "CSVSource.Fetch"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	return s.parse(f, op)
}

func (s CSVSource) parse(r io.Reader, op string) ([]domain.FeedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", op, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.FeedRecord
	for idx := 0; ; idx++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row: %w", op, err)
		}
		records = append(records, domain.FeedRecord{
			ID:        cell(row, colID),
			Name:      cell(row, colName),
			ShortDesc: cell(row, colShortDesc),
			LongDesc:  cell(row, colLongDesc),
			Price:     cell(row, colPrice),
			AltPrice:  cell(row, colAltPrice),
			Images:    cell(row, colImages),
			Category:  cell(row, colCategory),
			StockFlag: cell(row, colStock),
			SKU:       cell(row, colSKU),
			RowIndex:  idx,
		})
	}
	return records, nil
}
