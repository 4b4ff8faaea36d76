package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogview/internal/model"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []model.Product{
		{Name: "Phone, X", PriceMin: "10", PriceMax: "20", Category: "Phones", BuyLink: "#", BuyOn: "Store", ImageURL: "img", CreatedTime: "2024-06-01", Description: "d", ProductCode: "A1"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,price_min,price_max,category,buy_link,buy_on,image_url,created_time,description,product_code", lines[0])
	assert.Equal(t, `"Phone, X",10,20,Phones,#,Store,img,2024-06-01,d,A1`, lines[1])
}

func TestReadCSVReadsWhatWriteCSVWrote(t *testing.T) {
	in := []model.Product{
		{Name: "Phone X", Category: "Phones", ProductCode: "A1"},
		{Name: "Laptop", Category: "Laptops", ProductCode: "B2", Description: "line one\nline two"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "name,price_min"))
}
