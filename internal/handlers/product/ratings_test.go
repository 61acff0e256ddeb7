package product

import (
	"errors"
	"testing"

	"github.com/gocql/gocql"

	"tecshop_backend/internal/models"
)

// L'épuisement des tentatives de réécriture de l'agrégat doit remonter comme
// un conflit, pas comme une erreur du driver
func TestRatingConflictErreurDistincte(t *testing.T) {
	if errRatingConflict == nil {
		t.Fatal("le conflit d'agrégat doit être une erreur définie")
	}
	if errors.Is(errRatingConflict, gocql.ErrTimeoutNoResponse) {
		t.Error("le conflit d'agrégat ne doit pas se confondre avec un timeout driver")
	}
}

func TestComputeRatingSummary(t *testing.T) {
	avg, count := computeRatingSummary(nil)
	if avg != 0 || count != 0 {
		t.Errorf("sans avis: avg=%.2f count=%d", avg, count)
	}

	ratings := []models.Rating{
		{Rating: 5},
		{Rating: 4},
		{Rating: 3},
	}
	avg, count = computeRatingSummary(ratings)
	if avg != 4.0 || count != 3 {
		t.Errorf("avg=%.2f count=%d, attendu 4.00 et 3", avg, count)
	}

	// Arrondi à 2 décimales
	ratings = []models.Rating{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	avg, _ = computeRatingSummary(ratings)
	if avg != 4.33 {
		t.Errorf("arrondi: avg=%.4f, attendu 4.33", avg)
	}
}

func TestCollectVariantAttrs(t *testing.T) {
	variants := []models.ProductVariant{
		{IsActive: true, Attributes: map[string]string{"color": "rouge", "size": "M"}},
		{IsActive: true, Attributes: map[string]string{"color": "rouge", "size": "L"}},
		{IsActive: true, Attributes: map[string]string{"color": "bleu"}},
		{IsActive: false, Attributes: map[string]string{"color": "vert", "size": "XL"}},
	}

	colors, sizes := collectVariantAttrs(variants)

	if len(colors) != 2 {
		t.Errorf("couleurs distinctes des variantes actives: %v", colors)
	}
	if len(sizes) != 2 {
		t.Errorf("tailles distinctes des variantes actives: %v", sizes)
	}
	for _, color := range colors {
		if color == "vert" {
			t.Error("les variantes inactives ne doivent pas contribuer")
		}
	}
}

// Désactiver la dernière variante d'une couleur doit retirer la couleur des
// attributs dénormalisés servis au listing public
func TestCollectVariantAttrsApresDesactivation(t *testing.T) {
	variants := []models.ProductVariant{
		{IsActive: true, Attributes: map[string]string{"color": "rouge", "size": "M"}},
		{IsActive: true, Attributes: map[string]string{"color": "bleu", "size": "M"}},
	}

	colors, _ := collectVariantAttrs(variants)
	if len(colors) != 2 {
		t.Fatalf("avant désactivation: %v", colors)
	}

	variants[0].IsActive = false
	colors, sizes := collectVariantAttrs(variants)
	if len(colors) != 1 || colors[0] != "bleu" {
		t.Errorf("après désactivation, seule bleu doit rester: %v", colors)
	}
	if len(sizes) != 1 {
		t.Errorf("la taille M reste portée par la variante active: %v", sizes)
	}
}
