package products

import "github.com/ariefcatur/go-storefront-records.git/internal/records"

const Table = "product_c"

const (
	fieldName        = "name_c"
	fieldCategory    = "category_c"
	fieldSubcategory = "subcategory_c"
	fieldDescription = "description_c"
	fieldPrice       = "price_c"
	fieldStock       = "stock_c"
	fieldFeatured    = "featured_c"
	fieldImages      = "images_c"
	fieldSizes       = "sizes_c"
	fieldColors      = "colors_c"
)

const (
	listLimit          = 100
	featuredLimit      = 10
	categoryLimit      = 50
	DefaultRelatedSize = 4
	MsgProductNotFound = "Product not found"
)

// Sort keys accepted by Filters.SortBy.
const (
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

type Product struct {
	ID          int      `json:"Id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Featured    bool     `json:"featured"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
}

// Filters narrows List. Category, Search and SortBy go to the store;
// Sizes, Colors and the price bounds are applied to the fetched page.
type Filters struct {
	Category string   `json:"category"`
	Search   string   `json:"search"`
	SortBy   string   `json:"sortBy"`
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

var productFields = records.Fields(
	records.FieldName,
	fieldName,
	fieldCategory,
	fieldDescription,
	fieldPrice,
	fieldStock,
	fieldFeatured,
	fieldImages,
	fieldSizes,
	fieldColors,
	fieldSubcategory,
)

func productFromRecord(r records.Record) Product {
	return Product{
		ID:          r.ID(),
		Name:        r.StringOr(fieldName, records.FieldName),
		Category:    r.String(fieldCategory),
		Subcategory: r.String(fieldSubcategory),
		Description: r.String(fieldDescription),
		Price:       r.Float(fieldPrice),
		Stock:       r.Int(fieldStock),
		Featured:    r.Bool(fieldFeatured),
		Images:      r.Lines(fieldImages),
		Sizes:       r.Lines(fieldSizes),
		Colors:      r.Lines(fieldColors),
	}
}

func productsFromRecords(rows []records.Record) []Product {
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, productFromRecord(r))
	}
	return out
}
