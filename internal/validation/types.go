package validation

import "encoding/json"

// SendOrderEmailRequest is the payload for POST /send-order-email and its async variant.
// Order stays raw so that absent, null and falsy values can be told apart from malformed ones.
type SendOrderEmailRequest struct {
	Order json.RawMessage `json:"order"`
}

// RecordURI addresses a collection, or a single record when ID is set.
type RecordURI struct {
	Collection string `uri:"collection" validate:"required,collection"`
	ID         string `uri:"id" validate:"omitempty,max=128"`
}
