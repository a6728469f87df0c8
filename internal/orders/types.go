package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the checkout payload posted by the storefront. Every field is optional and
// tolerant of loosely typed input; see Text, Number and Timestamp.
type Order struct {
	ID             Text           `json:"id"`
	CreatedAt      Timestamp      `json:"createdAt"`
	Customer       Customer       `json:"customer"`
	Items          Items          `json:"items"`
	Pricing        Pricing        `json:"pricing"`
	ShippingMethod ShippingMethod `json:"shippingMethod"`
	Payment        Payment        `json:"payment"`
	Note           Text           `json:"note"`
}

type Customer struct {
	FirstName Text `json:"firstName"`
	LastName  Text `json:"lastName"`
	Phone     Text `json:"phone"`
	Email     Text `json:"email"`
	Address   Text `json:"address"`
	City      Text `json:"city"`
}

// Item is a single order line.
type Item struct {
	Name     Text   `json:"name"`
	Image    Text   `json:"image"`    // bare filename, /images/... path or absolute URL
	Quantity Number `json:"quantity"` // defaults to 1
	Price    Number `json:"price"`    // unit price, defaults to 0
}

// Items is the ordered line item sequence. Anything that is not a JSON array decodes as empty.
type Items []Item

type Pricing struct {
	Subtotal Number `json:"subtotal"`
	Shipping Number `json:"shipping"`
	Total    Number `json:"total"`
}

type ShippingMethod struct {
	Name Text `json:"name"`
}

// Payment holds M-Pesa references. Display only.
type Payment struct {
	PochiNumber Text `json:"pochiNumber"`
	MpesaCode   Text `json:"mpesaCode"`
}

// NormalizedOrder is the per-request view handed to the notification dispatcher.
// All defaults are applied and image references are absolute URLs.
type NormalizedOrder struct {
	ID             string
	CreatedAt      time.Time
	Customer       CustomerView
	Items          []LineItem
	Pricing        PricingView
	ShippingMethod string
	PochiNumber    string
	MpesaCode      string
	Note           string
}

type CustomerView struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	City      string
}

type LineItem struct {
	Name     string
	ImageURL string // empty when the item has no image
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

type PricingView struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}
