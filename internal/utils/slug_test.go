package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Clavier Mécanique", "clavier-mecanique"},
		{"accents", "Chaussures Été 2026", "chaussures-ete-2026"},
		{"ponctuation", "T-Shirt (Édition Limitée) !", "t-shirt-edition-limitee"},
		{"espaces multiples", "  Souris   Gamer  ", "souris-gamer"},
		{"cédille et ligature", "Œuvre façon cuir", "oeuvre-facon-cuir"},
		{"chiffres", "iPhone 15 Pro", "iphone-15-pro"},
		{"vide", "", ""},
		{"que des symboles", "!!! ???", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, attendu %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugifyWithFallback(t *testing.T) {
	if got := SlugifyWithFallback("Clavier Mécanique", "produit"); got != "clavier-mecanique" {
		t.Errorf("nom translittérable: %q", got)
	}

	// Un nom entièrement en idéogrammes ne doit jamais donner un slug vide
	got := SlugifyWithFallback("月曜日", "produit")
	if !strings.HasPrefix(got, "produit-") || len(got) == len("produit-") {
		t.Errorf("nom non translittérable: %q, attendu un préfixe produit- suffixé", got)
	}

	// Deux appels ne doivent pas entrer en collision systématique
	if other := SlugifyWithFallback("月曜日", "produit"); other == got {
		t.Errorf("le suffixe doit être aléatoire, obtenu deux fois %q", got)
	}
}

func TestNextSlug(t *testing.T) {
	if got := NextSlug("mon-produit", 1); got != "mon-produit" {
		t.Errorf("premier essai = %q, attendu le slug de base", got)
	}
	if got := NextSlug("mon-produit", 2); got != "mon-produit-2" {
		t.Errorf("deuxième essai = %q, attendu mon-produit-2", got)
	}
	if got := NextSlug("mon-produit", 7); got != "mon-produit-7" {
		t.Errorf("septième essai = %q, attendu mon-produit-7", got)
	}
}
