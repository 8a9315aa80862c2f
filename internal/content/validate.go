package content

import (
	"fmt"
	"strings"
)

// Labels shown to site owners in readiness reports
const (
	LabelStoreName    = "Nom de la boutique"
	LabelHeroTitle    = "Titre principal"
	LabelHeroSubtitle = "Sous-titre"
	LabelContactEmail = "Email de contact"
	LabelNoProducts   = "Aucun produit ajouté"
)

// ValidationReport explains why a document is or is not ready to publish
type ValidationReport struct {
	IsReady       bool     `json:"is_ready"`
	MissingFields []string `json:"missing_fields"`
	ProductErrors []string `json:"product_errors"`
}

// FieldError is one strict-validation failure keyed by field path
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the result of StrictValidate; nil means valid
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Map flattens the errors for API responses
func (fe FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(fe))
	for _, e := range fe {
		out[e.Field] = e.Message
	}
	return out
}

type requiredField struct {
	key   string
	label string
	get   func(Document) string
}

var requiredFields = []requiredField{
	{"store_name", LabelStoreName, func(d Document) string { return d.StoreName }},
	{"hero_title", LabelHeroTitle, func(d Document) string { return d.HeroTitle }},
	{"hero_subtitle", LabelHeroSubtitle, func(d Document) string { return d.HeroSubtitle }},
	{"contact_email", LabelContactEmail, func(d Document) string { return d.ContactEmail }},
}

// IsPublishReady reports whether the document can go live
func IsPublishReady(doc Document) bool {
	for _, f := range requiredFields {
		if f.get(doc) == "" {
			return false
		}
	}
	if len(doc.Products) == 0 {
		return false
	}
	for _, p := range doc.Products {
		if p.Name == "" || p.Description == "" || !p.Price.Present() {
			return false
		}
	}
	return true
}

// Report itemizes every readiness failure. Products are numbered from 1.
func Report(doc Document) ValidationReport {
	r := ValidationReport{
		IsReady:       IsPublishReady(doc),
		MissingFields: []string{},
		ProductErrors: []string{},
	}
	if r.IsReady {
		return r
	}

	for _, f := range requiredFields {
		if f.get(doc) == "" {
			r.MissingFields = append(r.MissingFields, f.label)
		}
	}

	if len(doc.Products) == 0 {
		r.ProductErrors = append(r.ProductErrors, LabelNoProducts)
		return r
	}
	for i, p := range doc.Products {
		var problems []string
		if p.Name == "" {
			problems = append(problems, "nom manquant")
		}
		if !p.Price.Present() {
			problems = append(problems, "prix manquant")
		}
		if p.Description == "" {
			problems = append(problems, "description manquante")
		}
		if len(problems) > 0 {
			r.ProductErrors = append(r.ProductErrors, fmt.Sprintf("Produit %d: %s", i+1, strings.Join(problems, ", ")))
		}
	}
	return r
}

// StrictValidate is the gate for content writes. Beyond readiness it
// requires every price to parse as a positive number and every known key
// to have its expected type.
func StrictValidate(doc Document) FieldErrors {
	errs := append(FieldErrors(nil), doc.problems...)
	mistyped := make(map[string]bool, len(doc.problems))
	for _, p := range doc.problems {
		mistyped[p.Field] = true
	}

	for _, f := range requiredFields {
		if strings.TrimSpace(f.get(doc)) == "" && !mistyped[f.key] {
			errs = append(errs, FieldError{Field: f.key, Message: "required"})
		}
	}

	if len(doc.Products) == 0 {
		if !mistyped["products"] {
			errs = append(errs, FieldError{Field: "products", Message: "at least one product is required"})
		}
		return errs
	}

	for i, p := range doc.Products {
		prefix := fmt.Sprintf("products[%d]", i)
		bad := make(map[string]bool, len(p.problems))
		for _, pe := range p.problems {
			bad[pe.Field] = true
			errs = append(errs, FieldError{Field: prefix + "." + pe.Field, Message: pe.Message})
		}
		if strings.TrimSpace(p.Name) == "" && !bad["name"] {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "required"})
		}
		if strings.TrimSpace(p.Description) == "" && !bad["description"] {
			errs = append(errs, FieldError{Field: prefix + ".description", Message: "required"})
		}
		switch v, ok := p.Price.Float(); {
		case !p.Price.Present() && !ok:
			errs = append(errs, FieldError{Field: prefix + ".price", Message: "required"})
		case !ok:
			errs = append(errs, FieldError{Field: prefix + ".price", Message: "must be a number"})
		case v <= 0:
			errs = append(errs, FieldError{Field: prefix + ".price", Message: "must be greater than 0"})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
