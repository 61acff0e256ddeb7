package product

import (
	"testing"
	"time"

	"tecshop_backend/internal/models"
)

func produit(name string, price float64, opts ...func(*models.Product)) models.Product {
	p := models.Product{
		Name:     name,
		Price:    price,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func TestClampPage(t *testing.T) {
	if got := clampPage(0); got != 1 {
		t.Errorf("page 0 doit devenir 1, obtenu %d", got)
	}
	if got := clampPage(-3); got != 1 {
		t.Errorf("page négative doit devenir 1, obtenu %d", got)
	}
	if got := clampPage(42); got != 42 {
		t.Errorf("page valide ne doit pas bouger, obtenu %d", got)
	}
}

func TestClampLimit(t *testing.T) {
	if got := clampLimit(0); got != 20 {
		t.Errorf("limit 0 doit retomber sur 20, obtenu %d", got)
	}
	if got := clampLimit(500); got != 100 {
		t.Errorf("limit doit être plafonné à 100, obtenu %d", got)
	}
	if got := clampLimit(50); got != 50 {
		t.Errorf("limit valide ne doit pas bouger, obtenu %d", got)
	}
}

func TestFilterVisible(t *testing.T) {
	deleted := time.Now().Add(-time.Hour)
	products := []models.Product{
		produit("visible", 10),
		produit("inactif", 20, func(p *models.Product) { p.IsActive = false }),
		produit("supprimé", 30, func(p *models.Product) { p.DeletedAt = &deleted }),
	}

	got := filterVisible(products)
	if len(got) != 1 || got[0].Name != "visible" {
		t.Errorf("seul le produit actif non supprimé doit rester, obtenu %v", got)
	}
}

func TestFilterByVariantAttrs(t *testing.T) {
	products := []models.Product{
		produit("rouge-m", 10, func(p *models.Product) {
			p.Colors = []string{"rouge", "bleu"}
			p.Sizes = []string{"M", "L"}
		}),
		produit("vert-s", 20, func(p *models.Product) {
			p.Colors = []string{"vert"}
			p.Sizes = []string{"S"}
		}),
		produit("sans-variantes", 30),
	}

	got := filterByVariantAttrs(products, []string{"rouge"}, nil)
	if len(got) != 1 || got[0].Name != "rouge-m" {
		t.Errorf("filtre couleur: obtenu %v", got)
	}

	// Insensible à la casse
	got = filterByVariantAttrs(products, nil, []string{"m"})
	if len(got) != 1 || got[0].Name != "rouge-m" {
		t.Errorf("filtre taille insensible à la casse: obtenu %v", got)
	}

	// Plusieurs couleurs: au moins une doit matcher
	got = filterByVariantAttrs(products, []string{"rouge", "vert"}, nil)
	if len(got) != 2 {
		t.Errorf("filtre multi-couleurs: attendu 2, obtenu %d", len(got))
	}

	// Couleur ET taille doivent matcher ensemble
	got = filterByVariantAttrs(products, []string{"rouge"}, []string{"S"})
	if len(got) != 0 {
		t.Errorf("couleur et taille combinées: obtenu %v", got)
	}

	// Sans filtre: tout passe
	got = filterByVariantAttrs(products, nil, nil)
	if len(got) != 3 {
		t.Errorf("sans filtre, les 3 produits doivent rester, obtenu %d", len(got))
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("rouge, bleu ,,vert")
	if len(got) != 3 || got[0] != "rouge" || got[1] != "bleu" || got[2] != "vert" {
		t.Errorf("découpage CSV: obtenu %v", got)
	}
	if got := splitCSV(""); got != nil {
		t.Errorf("chaîne vide doit donner nil, obtenu %v", got)
	}
}

func TestFilterByQuery(t *testing.T) {
	products := []models.Product{
		produit("Clavier Mécanique", 80),
		produit("Souris", 30, func(p *models.Product) { p.Description = "souris gamer avec clavier offert" }),
		produit("Écran", 200, func(p *models.Product) { p.Tags = []string{"gaming", "4k"} }),
	}

	got := filterByQuery(products, "clavier")
	if len(got) != 2 {
		t.Errorf("recherche nom+description: attendu 2, obtenu %d", len(got))
	}

	got = filterByQuery(products, "GAMING")
	if len(got) != 1 || got[0].Name != "Écran" {
		t.Errorf("recherche dans les tags: obtenu %v", got)
	}

	got = filterByQuery(products, "")
	if len(got) != 3 {
		t.Errorf("requête vide, tout doit rester, obtenu %d", len(got))
	}
}

func TestSortProducts(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		produit("b", 20, func(p *models.Product) {
			p.CreatedAt = now.Add(-time.Hour)
			p.AverageRating = 4.5
			p.RatingCount = 10
		}),
		produit("a", 10, func(p *models.Product) {
			p.CreatedAt = now
			p.AverageRating = 4.5
			p.RatingCount = 50
		}),
		produit("c", 30, func(p *models.Product) {
			p.CreatedAt = now.Add(-2 * time.Hour)
			p.AverageRating = 3.0
			p.RatingCount = 2
		}),
	}

	sortProducts(products, "price_asc", "")
	if products[0].Name != "a" || products[2].Name != "c" {
		t.Errorf("tri prix croissant: %s %s %s", products[0].Name, products[1].Name, products[2].Name)
	}

	sortProducts(products, "price_desc", "")
	if products[0].Name != "c" || products[2].Name != "a" {
		t.Errorf("tri prix décroissant: %s %s %s", products[0].Name, products[1].Name, products[2].Name)
	}

	sortProducts(products, "newest", "")
	if products[0].Name != "a" || products[2].Name != "c" {
		t.Errorf("tri plus récent: %s %s %s", products[0].Name, products[1].Name, products[2].Name)
	}

	// À note égale, le nombre d'avis départage
	sortProducts(products, "rating", "")
	if products[0].Name != "a" || products[1].Name != "b" {
		t.Errorf("tri note: %s %s %s", products[0].Name, products[1].Name, products[2].Name)
	}
}

func TestSortProductsRelevance(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		produit("Tapis de souris", 15, func(p *models.Product) {
			p.CreatedAt = now
		}),
		produit("Souris sans fil", 40, func(p *models.Product) {
			p.CreatedAt = now.Add(-time.Hour)
		}),
		produit("Clavier", 80, func(p *models.Product) {
			p.Tags = []string{"souris", "pack"}
			p.CreatedAt = now.Add(-2 * time.Hour)
		}),
	}

	// Préfixe du nom > tag > description
	sortProducts(products, "relevance", "souris")
	if products[0].Name != "Souris sans fil" {
		t.Errorf("tri pertinence: premier %s", products[0].Name)
	}

	// Sans terme de recherche, retombe sur le plus récent
	sortProducts(products, "relevance", "")
	if products[0].Name != "Tapis de souris" {
		t.Errorf("pertinence sans terme: premier %s", products[0].Name)
	}
}

func TestPaginate(t *testing.T) {
	var products []models.Product
	for i := 0; i < 25; i++ {
		products = append(products, produit("p", float64(i)))
	}

	page1 := paginate(products, 1, 10)
	if len(page1) != 10 || page1[0].Price != 0 {
		t.Errorf("page 1: %d éléments, premier prix %.0f", len(page1), page1[0].Price)
	}

	page3 := paginate(products, 3, 10)
	if len(page3) != 5 || page3[0].Price != 20 {
		t.Errorf("page 3 partielle: %d éléments", len(page3))
	}

	// Page au-delà de la fin: liste vide, pas de panique
	page9 := paginate(products, 9, 10)
	if len(page9) != 0 {
		t.Errorf("page hors limites: attendu vide, obtenu %d", len(page9))
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 10, 10},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, attendu %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
