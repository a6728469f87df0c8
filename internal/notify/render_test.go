package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-order-notify/internal/orders"
)

func renderOrder() *orders.NormalizedOrder {
	return &orders.NormalizedOrder{
		ID:        "7",
		CreatedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		Customer: orders.CustomerView{
			FirstName: "<b>Jane</b>",
			LastName:  "Doe",
			Email:     "jane@example.com",
		},
		Items: []orders.LineItem{
			{Name: "Scarf", ImageURL: "http://shop/images/s.png", Quantity: decimal.NewFromInt(3), Price: decimal.RequireFromString("12.50")},
		},
		Pricing: orders.PricingView{
			Subtotal: decimal.RequireFromString("37.5"),
			Shipping: decimal.NewFromInt(200),
			Total:    decimal.RequireFromString("237.5"),
		},
		ShippingMethod: "Courier",
		PochiNumber:    "0711",
		MpesaCode:      "QX12",
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer("Ksh", "Yarnly Chic", time.UTC)
	out, err := r.Render(renderOrder())
	require.NoError(t, err)

	assert.Equal(t, "New Order #7", out.OwnerSubject)
	assert.Equal(t, "Your Order Confirmation #7", out.CustomerSubject)
	assert.Equal(t, TextFallback, out.Text)

	for _, html := range []string{out.OwnerHTML, out.CustomerHTML} {
		assert.Contains(t, html, `src="http://shop/images/s.png"`)
		assert.Contains(t, html, "Ksh 12.5")
		assert.Contains(t, html, "Ksh 237.5")
		assert.NotContains(t, html, "<b>Jane</b>")
	}
	assert.Contains(t, out.OwnerHTML, "3/5/2024, 2:07:09 PM")
	assert.Contains(t, out.OwnerHTML, "QX12")
	assert.Contains(t, out.OwnerHTML, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.Contains(t, out.CustomerHTML, "Yarnly Chic Team")
}

func TestRender_Note(t *testing.T) {
	r := NewRenderer("Ksh", "Yarnly Chic", time.UTC)

	o := renderOrder()
	out, err := r.Render(o)
	require.NoError(t, err)
	assert.NotContains(t, out.OwnerHTML, "Note")

	o.Note = "Gift wrap please"
	out, err = r.Render(o)
	require.NoError(t, err)
	assert.Contains(t, out.OwnerHTML, "Gift wrap please")
	assert.False(t, strings.Contains(out.CustomerHTML, "Gift wrap please"))
}

func TestRender_Timezone(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	out, err := NewRenderer("Ksh", "Yarnly Chic", loc).Render(renderOrder())
	require.NoError(t, err)
	assert.Contains(t, out.OwnerHTML, "3/5/2024, 5:07:09 PM")
}
