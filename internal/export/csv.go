package export

import (
	"io"

	"github.com/gocarina/gocsv"

	"catalogview/internal/model"
)

// WriteCSV writes products with a header row using the csv tags of model.Product.
func WriteCSV(w io.Writer, products []model.Product) error {
	rows := make([]*model.Product, len(products))
	for i := range products {
		rows[i] = &products[i]
	}
	return gocsv.Marshal(rows, w)
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.Product, error) {
	var rows []*model.Product
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	out := make([]model.Product, len(rows))
	for i, p := range rows {
		out[i] = *p
	}
	return out, nil
}
