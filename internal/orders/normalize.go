package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var defaultQuantity = decimal.NewFromInt(1)

// Normalizer builds the dispatch view of an order.
type Normalizer struct {
	nowFunc func() time.Time
}

// NewNormalizer returns a Normalizer using the wall clock for missing timestamps.
func NewNormalizer() *Normalizer {
	return &Normalizer{nowFunc: time.Now}
}

// Normalize applies field defaults and resolves image URLs against hostURL.
// The input order is not modified.
func (n *Normalizer) Normalize(o *Order, hostURL string) (*NormalizedOrder, error) {
	if o == nil {
		return nil, &ValidationError{Field: "order", Err: ErrMissingOrder}
	}

	createdAt := n.nowFunc()
	if o.CreatedAt.Set {
		createdAt = o.CreatedAt.Time
	}

	items := make([]LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItem{
			Name:     it.Name.String(),
			ImageURL: ResolveImageURL(it.Image.String(), hostURL),
			Quantity: it.Quantity.Or(defaultQuantity),
			Price:    it.Price.Or(decimal.Zero),
		})
	}

	return &NormalizedOrder{
		ID:        strings.TrimSpace(o.ID.String()),
		CreatedAt: createdAt,
		Customer: CustomerView{
			FirstName: o.Customer.FirstName.String(),
			LastName:  o.Customer.LastName.String(),
			Phone:     o.Customer.Phone.String(),
			Email:     strings.TrimSpace(o.Customer.Email.String()),
			Address:   o.Customer.Address.String(),
			City:      o.Customer.City.String(),
		},
		Items: items,
		Pricing: PricingView{
			Subtotal: o.Pricing.Subtotal.Or(decimal.Zero),
			Shipping: o.Pricing.Shipping.Or(decimal.Zero),
			Total:    o.Pricing.Total.Or(decimal.Zero),
		},
		ShippingMethod: o.ShippingMethod.Name.String(),
		PochiNumber:    o.Payment.PochiNumber.String(),
		MpesaCode:      o.Payment.MpesaCode.String(),
		Note:           strings.TrimSpace(o.Note.String()),
	}, nil
}

// Normalize is a convenience wrapper around a wall-clock Normalizer.
func Normalize(o *Order, hostURL string) (*NormalizedOrder, error) {
	return NewNormalizer().Normalize(o, hostURL)
}
