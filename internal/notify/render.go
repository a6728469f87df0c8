package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/imrishuroy/go-order-notify/internal/orders"
)

// TextFallback is the plain-text part sent alongside both HTML documents.
const TextFallback = "Please view this email in HTML format."

const displayDateLayout = "1/2/2006, 3:04:05 PM"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Rendered is the pair of documents produced for one order.
type Rendered struct {
	OwnerSubject    string
	OwnerHTML       string
	CustomerSubject string
	CustomerHTML    string
	Text            string
}

// Renderer turns a normalized order into the merchant and customer documents.
type Renderer struct {
	currency  string
	storeName string
	loc       *time.Location
}

// NewRenderer returns a Renderer. A nil loc renders dates in process local time.
func NewRenderer(currency, storeName string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{currency: currency, storeName: storeName, loc: loc}
}

type pageData struct {
	orders.NormalizedOrder
	Date      string
	Currency  string
	StoreName string
}

// Render executes both templates. Either both documents are returned or an error.
func (r *Renderer) Render(o *orders.NormalizedOrder) (*Rendered, error) {
	data := pageData{
		NormalizedOrder: *o,
		Date:            o.CreatedAt.In(r.loc).Format(displayDateLayout),
		Currency:        r.currency,
		StoreName:       r.storeName,
	}

	ownerHTML, err := execute("owner.html", data)
	if err != nil {
		return nil, err
	}
	customerHTML, err := execute("customer.html", data)
	if err != nil {
		return nil, err
	}

	return &Rendered{
		OwnerSubject:    withOrderRef("New Order", o.ID),
		OwnerHTML:       ownerHTML,
		CustomerSubject: withOrderRef("Your Order Confirmation", o.ID),
		CustomerHTML:    customerHTML,
		Text:            TextFallback,
	}, nil
}

func execute(name string, data pageData) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}

// withOrderRef appends " #id" when the order has an id.
func withOrderRef(subject, id string) string {
	if id == "" {
		return subject
	}
	return subject + " #" + id
}
