package orders

import (
	"errors"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront-records.git/internal/records"
)

const Table = "order_c"

const (
	fieldOrderNumber     = "order_number_c"
	fieldOrderDate       = "order_date_c"
	fieldStatus          = "status_c"
	fieldTotal           = "total_c"
	fieldItems           = "items_c"
	fieldShippingAddress = "shipping_address_c"
	fieldTracking        = "tracking_c"
)

const listLimit = 50

var errOrderNotFound = errors.New(MsgOrderNotFound)

// Tracking defaults for new orders.
const (
	DefaultCarrier        = "FedEx"
	PlacedEventStatus     = "Order placed"
	PlacedEventLocation   = "Online"
	UpdateEventLocation   = "Warehouse"
	MsgOrderNotFound      = "Order not found"
	MsgTrackingUnreadable = "Order tracking is unreadable"
	orderNumberPrefix     = "VT"
	trackingNumberPrefix  = "TRK"
)

// Item and Address are stored as JSON text and passed through untouched.
type (
	Item    map[string]any
	Address map[string]any
)

// OrderDate is passed through as stored; new orders get isoTime(now).
type Order struct {
	ID              int      `json:"Id"`
	OrderNumber     string   `json:"orderNumber"`
	OrderDate       string   `json:"orderDate"`
	Status          Status   `json:"status"`
	Total           float64  `json:"total"`
	Items           []Item   `json:"items"`
	ShippingAddress Address  `json:"shippingAddress"`
	Tracking        Tracking `json:"tracking"`
}

type CreateInput struct {
	OrderNumber     string  `json:"orderNumber"`
	TotalAmount     float64 `json:"totalAmount"`
	Items           []Item  `json:"items"`
	ShippingAddress Address `json:"shippingAddress"`
}

type Filters struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

var orderFields = records.Fields(
	records.FieldName,
	fieldOrderNumber,
	fieldOrderDate,
	fieldStatus,
	fieldTotal,
	fieldItems,
	fieldShippingAddress,
	fieldTracking,
)

// orderFromRecord reshapes a stored row for reading. Malformed JSON text
// degrades to empty values instead of failing the read.
func orderFromRecord(r records.Record) Order {
	o := Order{
		ID:          r.ID(),
		OrderNumber: r.String(fieldOrderNumber),
		OrderDate:   r.String(fieldOrderDate),
		Status:      Status(r.String(fieldStatus)),
		Total:       r.Float(fieldTotal),
	}

	if err := r.DecodeJSON(fieldItems, &o.Items); err != nil {
		log.Printf("orders: order %d: %v", o.ID, err)
		o.Items = nil
	}
	if err := r.DecodeJSON(fieldShippingAddress, &o.ShippingAddress); err != nil {
		log.Printf("orders: order %d: %v", o.ID, err)
		o.ShippingAddress = nil
	}
	tracking, err := trackingFromRecord(r)
	if err != nil {
		log.Printf("orders: order %d: %v", o.ID, err)
	}
	o.Tracking = tracking

	if o.Items == nil {
		o.Items = []Item{}
	}
	if o.ShippingAddress == nil {
		o.ShippingAddress = Address{}
	}
	if o.Tracking.Events == nil {
		o.Tracking.Events = []TrackingEvent{}
	}
	return o
}

// isoTime formats t the way order dates are stored: UTC, millisecond precision.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
