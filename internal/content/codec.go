package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse decodes stored content. It never fails: absent or malformed
// content yields the empty document so a broken row still renders. A
// value of the wrong type only drops that field; the raw value is kept in
// Extra.
func Parse(raw string) Document {
	var doc Document
	if strings.TrimSpace(raw) == "" {
		return doc
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}
	}
	return doc
}

// Serialize encodes a document for storage. Output is deterministic for
// equal documents (struct field order, sorted map keys).
func Serialize(doc Document) string {
	b, err := json.Marshal(doc)
	if err != nil {
		// only reachable with hand-built raw values holding invalid JSON
		return "{}"
	}
	return string(b)
}

type field struct {
	target any
	want   string
}

type documentJSON Document

func (d *Document) fields() map[string]field {
	return map[string]field{
		"store_name":        {&d.StoreName, "a string"},
		"hero_title":        {&d.HeroTitle, "a string"},
		"hero_subtitle":     {&d.HeroSubtitle, "a string"},
		"about_title":       {&d.AboutTitle, "a string"},
		"about_description": {&d.AboutDescription, "a string"},
		"contact_email":     {&d.ContactEmail, "a string"},
		"contact_phone":     {&d.ContactPhone, "a string"},
		"contact_address":   {&d.ContactAddress, "a string"},
		"style":             {&d.Style, "an object"},
		"payment_methods":   {&d.PaymentMethods, "a list of strings"},
		"shipping_info":     {&d.ShippingInfo, "a string"},
		"return_policy":     {&d.ReturnPolicy, "a string"},
		"meta":              {&d.Meta, "an object"},
	}
}

// UnmarshalJSON decodes key by key. Only input that is not a JSON object
// is an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document{}

	known := d.fields()
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		if key == "products" {
			d.decodeProducts(value)
			continue
		}
		f, ok := known[key]
		if !ok {
			d.Extra = keepRaw(d.Extra, key, value)
			continue
		}
		if !decodeField(value, f.target) {
			d.Extra = keepRaw(d.Extra, key, value)
			d.problems = append(d.problems, FieldError{Field: key, Message: "must be " + f.want})
		}
	}
	return nil
}

func (d *Document) decodeProducts(value json.RawMessage) {
	var items []json.RawMessage
	if !decodeField(value, &items) {
		d.Extra = keepRaw(d.Extra, "products", value)
		d.problems = append(d.problems, FieldError{Field: "products", Message: "must be a list of products"})
		return
	}
	if items == nil {
		return
	}
	d.Products = make([]Product, 0, len(items))
	for i, item := range items {
		var p Product
		if err := json.Unmarshal(item, &p); err != nil {
			d.problems = append(d.problems, FieldError{Field: fmt.Sprintf("products[%d]", i), Message: "must be an object"})
			continue
		}
		d.Products = append(d.Products, p)
	}
}

// MarshalJSON writes the known fields followed by Extra keys they did
// not produce.
func (d Document) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(documentJSON(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, d.Extra)
}

type productJSON Product

func (p *Product) fields() map[string]field {
	return map[string]field{
		"name":        {&p.Name, "a string"},
		"price":       {&p.Price, "a value"},
		"description": {&p.Description, "a string"},
		"image":       {&p.Image, "a string"},
		"category":    {&p.Category, "a string"},
		"in_stock":    {&p.InStock, "a boolean"},
		"features":    {&p.Features, "a list of strings"},
	}
}

// UnmarshalJSON decodes key by key. A numeric string id is accepted.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{}

	known := p.fields()
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		if key == "id" {
			id, ok := productID(value)
			if !ok {
				p.Extra = keepRaw(p.Extra, key, value)
				p.problems = append(p.problems, FieldError{Field: key, Message: "must be an integer"})
				continue
			}
			p.ID = id
			continue
		}
		f, ok := known[key]
		if !ok {
			p.Extra = keepRaw(p.Extra, key, value)
			continue
		}
		if !decodeField(value, f.target) {
			p.Extra = keepRaw(p.Extra, key, value)
			p.problems = append(p.problems, FieldError{Field: key, Message: "must be " + f.want})
		}
	}
	return nil
}

// MarshalJSON writes the known fields followed by Extra keys they did
// not produce.
func (p Product) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(productJSON(p))
	if err != nil {
		return nil, err
	}
	return mergeExtra(known, p.Extra)
}

func productID(value json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(value, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// decodeField leaves target untouched when value has the wrong type
func decodeField(value json.RawMessage, target any) bool {
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return true
	}
	dec := json.NewDecoder(bytes.NewReader(value))
	switch t := target.(type) {
	case *string:
		var v string
		if err := dec.Decode(&v); err != nil {
			return false
		}
		*t = v
	case *bool:
		var v bool
		if err := dec.Decode(&v); err != nil {
			return false
		}
		*t = v
	case *[]string:
		var v []string
		if err := dec.Decode(&v); err != nil {
			return false
		}
		*t = v
	case *Style:
		var v Style
		if err := dec.Decode(&v); err != nil {
			return false
		}
		*t = v
	case *map[string]any:
		var v map[string]any
		if err := dec.Decode(&v); err != nil {
			return false
		}
		*t = v
	default:
		return dec.Decode(target) == nil
	}
	return true
}

func keepRaw(m map[string]json.RawMessage, key string, value json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		m = make(map[string]json.RawMessage)
	}
	m[key] = append(json.RawMessage(nil), value...)
	return m
}

func mergeExtra(known []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
