package model

// Product is one catalog row after loading. Prices stay as display strings.
type Product struct {
	Name        string `json:"name" csv:"name"`
	PriceMin    string `json:"priceMin" csv:"price_min"`
	PriceMax    string `json:"priceMax" csv:"price_max"`
	Category    string `json:"category" csv:"category"`
	BuyLink     string `json:"buyLink" csv:"buy_link"`
	BuyOn       string `json:"buyOn" csv:"buy_on"`
	ImageURL    string `json:"imageURL" csv:"image_url"`
	CreatedTime string `json:"createdTime" csv:"created_time"`
	Description string `json:"description" csv:"description"`
	ProductCode string `json:"productCode" csv:"product_code"`
}

// Sheet column names, in the order they are checked.
const (
	ColName        = "Name"
	ColPriceMin    = "PriceMin"
	ColPriceMax    = "PriceMax"
	ColCategory    = "Category"
	ColBuyLink     = "BuyLink"
	ColBuyOn       = "BuyOn"
	ColImageURL    = "ImageURL"
	ColCreatedTime = "CreatedTime"
	ColDescription = "Description"
	ColProductCode = "ProductCode"
)

// RequiredColumns lists every header a sheet must carry.
var RequiredColumns = []string{
	ColName,
	ColPriceMin,
	ColPriceMax,
	ColCategory,
	ColBuyLink,
	ColBuyOn,
	ColImageURL,
	ColCreatedTime,
	ColDescription,
	ColProductCode,
}

// Defaults holds the value used for an empty cell. CreatedTime and
// ProductCode are absent: the first defaults to the load time, the second
// is required.
var Defaults = map[string]string{
	ColName:        "Unknown Product",
	ColPriceMin:    "0",
	ColPriceMax:    "0",
	ColCategory:    "Uncategorized",
	ColBuyLink:     "#",
	ColBuyOn:       "Store",
	ColImageURL:    "https://via.placeholder.com/300",
	ColDescription: "No description available",
}

// Set assigns v to the field backing column col. Unknown columns are ignored.
func (p *Product) Set(col, v string) {
	switch col {
	case ColName:
		p.Name = v
	case ColPriceMin:
		p.PriceMin = v
	case ColPriceMax:
		p.PriceMax = v
	case ColCategory:
		p.Category = v
	case ColBuyLink:
		p.BuyLink = v
	case ColBuyOn:
		p.BuyOn = v
	case ColImageURL:
		p.ImageURL = v
	case ColCreatedTime:
		p.CreatedTime = v
	case ColDescription:
		p.Description = v
	case ColProductCode:
		p.ProductCode = v
	}
}
