package sheets

import (
	"fmt"
	"strconv"
)

// ValueRange is the body of a spreadsheets.values.get answer. Only the
// grid is used; row 0 holds the headers.
type ValueRange struct {
	Range          string          `json:"range"`
	MajorDimension string          `json:"majorDimension"`
	Values         [][]interface{} `json:"values"`
}

func (v ValueRange) Strings() [][]string {
	return toStrings(v.Values)
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		out[i] = cells
	}
	return out
}

// cellString renders a JSON cell the way a spreadsheet displays it.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
