package orders

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Text is a display string that accepts JSON strings and numbers.
// null, booleans, objects and arrays decode as "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(textFromJSON(data))
	return nil
}

func (t Text) String() string { return string(t) }

func textFromJSON(data []byte) string {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 'n', 't', 'f', '{', '[':
		return ""
	}
	if d, err := decimal.NewFromString(string(raw)); err == nil {
		return d.String()
	}
	return string(raw)
}

// Number is a numeric field that never fails to decode. Set is false only when the
// field is absent or null, so callers can tell "missing" from "zero". Anything that
// cannot be read as a number decodes as 0.
type Number struct {
	Value decimal.Decimal
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = numberFromJSON(data)
	return nil
}

// Or returns the decoded value, or def when the field was absent.
func (n Number) Or(def decimal.Decimal) decimal.Decimal {
	if !n.Set {
		return def
	}
	return n.Value
}

func numberFromJSON(data []byte) Number {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Number{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Number{Set: true}
		}
		return Number{Value: parseDecimal(s), Set: true}
	case 't':
		return Number{Value: decimal.NewFromInt(1), Set: true}
	case 'f', '{', '[':
		return Number{Set: true}
	}
	return Number{Value: parseDecimal(string(raw)), Set: true}
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Timestamp accepts an RFC 3339 style string or epoch milliseconds.
// Unparseable values leave Set false.
type Timestamp struct {
	Time time.Time
	Set  bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				*ts = Timestamp{Time: t, Set: true}
				return nil
			}
		}
		return nil
	}
	if d, err := decimal.NewFromString(string(raw)); err == nil {
		*ts = Timestamp{Time: time.UnixMilli(d.IntPart()), Set: true}
	}
	return nil
}

func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	return decodeLenient(data, (*plain)(c))
}

func (p *Pricing) UnmarshalJSON(data []byte) error {
	type plain Pricing
	return decodeLenient(data, (*plain)(p))
}

func (s *ShippingMethod) UnmarshalJSON(data []byte) error {
	type plain ShippingMethod
	return decodeLenient(data, (*plain)(s))
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	type plain Payment
	return decodeLenient(data, (*plain)(p))
}

// UnmarshalJSON keeps only the object entries of a JSON array.
func (it *Items) UnmarshalJSON(data []byte) error {
	*it = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	items := make(Items, 0, len(raw))
	for _, r := range raw {
		if !isObject(r) {
			continue
		}
		var item Item
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	*it = items
	return nil
}

// decodeLenient resets out and fills it only when data is a JSON object.
func decodeLenient[T any](data []byte, out *T) error {
	var zero T
	*out = zero
	if !isObject(data) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		*out = zero
	}
	return nil
}

func isObject(data []byte) bool {
	raw := bytes.TrimSpace(data)
	return len(raw) > 0 && raw[0] == '{'
}
