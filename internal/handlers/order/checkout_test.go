package order

import (
	"testing"

	"tecshop_backend/internal/models"
)

func TestComputeOrderTotal(t *testing.T) {
	if total := computeOrderTotal(nil); total != 0 {
		t.Errorf("panier vide: %.2f", total)
	}

	items := []models.OrderItem{
		{ProductName: "Clavier", Quantity: 2, Price: 79.99},
		{ProductName: "Souris", Quantity: 1, Price: 29.90},
	}

	total := computeOrderTotal(items)
	want := 2*79.99 + 29.90
	if total != want {
		t.Errorf("total = %.2f, attendu %.2f", total, want)
	}
}

func TestCanTransition(t *testing.T) {
	valides := []struct{ from, to string }{
		{"pending", "paid"},
		{"pending", "cancelled"},
		{"paid", "shipped"},
		{"paid", "refunded"},
		{"shipped", "delivered"},
		{"delivered", "refunded"},
	}
	for _, tc := range valides {
		if !canTransition(tc.from, tc.to) {
			t.Errorf("%s → %s devrait être autorisé", tc.from, tc.to)
		}
	}

	interdites := []struct{ from, to string }{
		{"pending", "delivered"}, // on ne livre pas sans payer
		{"delivered", "pending"}, // pas de retour en arrière
		{"cancelled", "paid"},    // une commande annulée est finale
		{"refunded", "shipped"},
		{"shipped", "cancelled"},
	}
	for _, tc := range interdites {
		if canTransition(tc.from, tc.to) {
			t.Errorf("%s → %s devrait être refusé", tc.from, tc.to)
		}
	}
}
