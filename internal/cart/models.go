package cart

import "github.com/ariefcatur/go-storefront-records.git/internal/records"

const Table = "cart_item_c"

const (
	fieldProductID     = "product_id_c"
	fieldProductName   = "product_name_c"
	fieldPrice         = "price_c"
	fieldQuantity      = "quantity_c"
	fieldSelectedSize  = "selected_size_c"
	fieldSelectedColor = "selected_color_c"
)

// listLimit caps a single cart read.
const listLimit = 100

type Item struct {
	ID            int     `json:"id"`
	ProductID     int     `json:"productId"`
	ProductName   string  `json:"productName"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize"`
	SelectedColor string  `json:"selectedColor"`
}

// AddInput is a line to put in the cart. Lines with the same
// (ProductID, SelectedSize, SelectedColor) are merged.
type AddInput struct {
	ProductID     int     `json:"productId"`
	ProductName   string  `json:"productName"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize"`
	SelectedColor string  `json:"selectedColor"`
}

func itemFromRecord(r records.Record) Item {
	return Item{
		ID:            r.ID(),
		ProductID:     r.Int(fieldProductID),
		ProductName:   r.String(fieldProductName),
		Price:         r.Float(fieldPrice),
		Quantity:      r.IntOr(fieldQuantity, 1),
		SelectedSize:  r.String(fieldSelectedSize),
		SelectedColor: r.String(fieldSelectedColor),
	}
}

func (in AddInput) record() records.Record {
	return records.Record{
		records.FieldName:  "Cart Item - " + in.ProductName,
		fieldProductID:     in.ProductID,
		fieldProductName:   in.ProductName,
		fieldPrice:         in.Price,
		fieldQuantity:      in.Quantity,
		fieldSelectedSize:  in.SelectedSize,
		fieldSelectedColor: in.SelectedColor,
	}
}

var itemFields = records.Fields(
	records.FieldName,
	fieldProductID,
	fieldProductName,
	fieldPrice,
	fieldQuantity,
	fieldSelectedSize,
	fieldSelectedColor,
)
