package content

// DefaultDocument is the starter content given to every new site
func DefaultDocument(siteName string) Document {
	return Document{
		StoreName:        siteName,
		HeroTitle:        "Bienvenue dans notre boutique",
		HeroSubtitle:     "Découvrez nos produits exceptionnels",
		AboutTitle:       "À propos de notre boutique",
		AboutDescription: "Nous nous engageons à vous offrir les meilleurs produits avec un service client exceptionnel.",
		ContactEmail:     "contact@example.com",
		ContactPhone:     "+33 1 23 45 67 89",
		ContactAddress:   "123 Rue du Commerce, 75000 Paris",
		Products: []Product{
			{
				ID:          1,
				Name:        "Produit Exemplaire",
				Price:       NewPrice(29.99),
				Description: "Description de votre produit phare",
				Image:       "/static/images/default-product.jpg",
				Category:    "Général",
				InStock:     true,
				Features:    []string{"Haute qualité", "Livraison rapide", "Garantie satisfait ou remboursé"},
			},
		},
		Style:          DefaultStyle(),
		PaymentMethods: []string{"Carte bancaire", "PayPal", "Virement"},
		ShippingInfo:   "Livraison sous 2-3 jours ouvrés",
		ReturnPolicy:   "30 jours pour changer d'avis",
	}
}

// DefaultStyle is the palette applied when a site has none
func DefaultStyle() Style {
	return Style{
		StylePrimaryColor:   "#667eea",
		StyleSecondaryColor: "#764ba2",
		StyleTextColor:      "#333333",
		StyleBgColor:        "#ffffff",
		StyleFontFamily:     "'Segoe UI', Tahoma, Geneva, Verdana, sans-serif",
	}
}

// SampleProducts returns the demo catalogue offered to new stores.
// Ids are left zero; AppendSampleProducts assigns them.
func SampleProducts() []Product {
	return []Product{
		{
			Name:        "Produit Premium",
			Price:       NewPrice(49.99),
			Description: "Un produit de haute qualité avec des fonctionnalités exceptionnelles.",
			Category:    "Premium",
			InStock:     true,
			Features:    []string{"Haute qualité", "Garantie 2 ans", "Support 24/7"},
		},
		{
			Name:        "Produit Standard",
			Price:       NewPrice(29.99),
			Description: "Un produit fiable et abordable pour tous les jours.",
			Category:    "Standard",
			InStock:     true,
			Features:    []string{"Rapport qualité-prix", "Facile à utiliser", "Livraison rapide"},
		},
		{
			Name:        "Produit Économique",
			Price:       NewPrice(14.99),
			Description: "La solution parfaite pour les petits budgets.",
			Category:    "Économique",
			InStock:     true,
			Features:    []string{"Abordable", "Essentiel", "Satisfaction garantie"},
		},
	}
}

// AppendSampleProducts returns a copy of doc with samples appended in
// order. The i-th sample (0-based) gets id max(existing ids, 0)+i+1.
func AppendSampleProducts(doc Document, samples []Product) Document {
	out := doc.Clone()
	base := doc.MaxProductID()
	for i, s := range samples {
		p := s.clone()
		p.ID = base + i + 1
		out.Products = append(out.Products, p)
	}
	return out
}
