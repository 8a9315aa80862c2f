// Package content holds the per-site content document: its shape, codec,
// readiness rules and starter data.
package content

import "encoding/json"

// Style keys recognised by the storefront templates. Other keys are kept as-is.
const (
	StylePrimaryColor   = "primary_color"
	StyleSecondaryColor = "secondary_color"
	StyleTextColor      = "text_color"
	StyleBgColor        = "bg_color"
	StyleFontFamily     = "font_family"
)

// Style is the free-form presentation block of a document
type Style map[string]any

// Product is one catalogue entry of a store
type Product struct {
	ID          int      `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Price       Price    `json:"price,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
	InStock     bool     `json:"in_stock"`
	Features    []string `json:"features,omitempty"`

	// Extra holds keys the storefront does not model and values whose
	// type did not match. They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`

	problems FieldErrors
}

// Document is the content stored for a site. Known keys are typed; any
// other key is carried in Extra so storage stays lossless.
// The zero value is the empty document.
type Document struct {
	StoreName        string            `json:"store_name,omitempty"`
	HeroTitle        string            `json:"hero_title,omitempty"`
	HeroSubtitle     string            `json:"hero_subtitle,omitempty"`
	AboutTitle       string            `json:"about_title,omitempty"`
	AboutDescription string            `json:"about_description,omitempty"`
	ContactEmail     string            `json:"contact_email,omitempty"`
	ContactPhone     string            `json:"contact_phone,omitempty"`
	ContactAddress   string            `json:"contact_address,omitempty"`
	Products         []Product         `json:"products,omitempty"`
	Style            Style             `json:"style,omitempty"`
	PaymentMethods   []string          `json:"payment_methods,omitempty"`
	ShippingInfo     string            `json:"shipping_info,omitempty"`
	ReturnPolicy     string            `json:"return_policy,omitempty"`
	Meta             map[string]any    `json:"meta,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`

	problems FieldErrors
}

// Clone returns a deep copy; the result shares no slices or maps with d.
func (d Document) Clone() Document {
	out := d
	if d.Products != nil {
		out.Products = make([]Product, len(d.Products))
		for i, p := range d.Products {
			out.Products[i] = p.clone()
		}
	}
	if d.Style != nil {
		out.Style = Style(cloneObject(d.Style))
	}
	if d.PaymentMethods != nil {
		out.PaymentMethods = append([]string(nil), d.PaymentMethods...)
	}
	if d.Meta != nil {
		out.Meta = cloneObject(d.Meta)
	}
	out.Extra = cloneRaw(d.Extra)
	if d.problems != nil {
		out.problems = append(FieldErrors(nil), d.problems...)
	}
	return out
}

// Product looks up a product by its id
func (d Document) Product(id int) (Product, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// MaxProductID returns the highest product id, or 0 for an empty catalogue
func (d Document) MaxProductID() int {
	max := 0
	for _, p := range d.Products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func (p Product) clone() Product {
	out := p
	if p.Price != nil {
		out.Price = append(Price(nil), p.Price...)
	}
	if p.Features != nil {
		out.Features = append([]string(nil), p.Features...)
	}
	out.Extra = cloneRaw(p.Extra)
	if p.problems != nil {
		out.problems = append(FieldErrors(nil), p.problems...)
	}
	return out
}

func cloneObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
