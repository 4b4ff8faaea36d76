package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyData means the sheet has no data row below the header.
	ErrEmptyData = errors.New("catalog: sheet must have a header row and at least one product row")
	// ErrNoValidRecords means every data row was rejected.
	ErrNoValidRecords = errors.New("catalog: no valid products found, make sure ProductCode is provided for each product")
)

// NetworkError wraps any failure to obtain the sheet values.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog: fetch products: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MissingColumnError names the first required header absent from the sheet.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("catalog: required column %q not found in sheet headers", e.Column)
}

// resultLabel maps a load outcome to its metrics label.
func resultLabel(err error) string {
	var netErr *NetworkError
	var colErr *MissingColumnError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &netErr):
		return "network"
	case errors.Is(err, ErrEmptyData):
		return "empty"
	case errors.As(err, &colErr):
		return "missing_column"
	case errors.Is(err, ErrNoValidRecords):
		return "no_valid_records"
	default:
		return "error"
	}
}
