package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("MonSuperMotDePasse123!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("format de hash inattendu: %s", hash)
	}

	ok, err := VerifyPassword("MonSuperMotDePasse123!", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("le bon mot de passe devrait être accepté")
	}

	ok, err = VerifyPassword("MauvaisMotDePasse", hash)
	if err != nil {
		t.Fatalf("VerifyPassword (mauvais): %v", err)
	}
	if ok {
		t.Error("un mauvais mot de passe ne devrait pas être accepté")
	}
}

func TestHashPasswordSaltUnique(t *testing.T) {
	h1, err := HashPassword("identique")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("identique")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("deux hashs du même mot de passe doivent différer (salt aléatoire)")
	}
}

func TestVerifyPasswordHashInvalide(t *testing.T) {
	if _, err := VerifyPassword("peu importe", "pas-un-hash"); err == nil {
		t.Error("un hash mal formé doit renvoyer une erreur")
	}
}
