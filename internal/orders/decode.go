package orders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decode turns the raw "order" member of a request body into an Order.
// Absent, null and falsy values fail with ErrMissingOrder; anything else that is not
// a JSON object fails with ErrMalformedOrder.
func Decode(raw json.RawMessage) (*Order, error) {
	data := bytes.TrimSpace(raw)
	if isFalsy(data) {
		return nil, &ValidationError{Field: "order", Err: ErrMissingOrder}
	}
	if !isObject(data) {
		return nil, &ValidationError{Field: "order", Err: ErrMalformedOrder}
	}
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, &ValidationError{Field: "order", Err: fmt.Errorf("%w: %v", ErrMalformedOrder, err)}
	}
	return &o, nil
}

func isFalsy(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	switch string(data) {
	case "null", "false", `""`:
		return true
	}
	if d, err := decimal.NewFromString(string(data)); err == nil {
		return d.IsZero()
	}
	return false
}
