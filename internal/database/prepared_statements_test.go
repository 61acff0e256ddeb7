package database

import "testing"

// Tant que l'initialisation n'a pas abouti, les accesseurs renvoient nil et
// les appelants doivent retomber sur une requête ad hoc
func TestPreparedAccessorsSansInit(t *testing.T) {
	accessors := map[string]func() bool{
		"GetUserByEmail":   func() bool { return GetPreparedGetUserByEmail() == nil },
		"GetUserByID":      func() bool { return GetPreparedGetUserByID() == nil },
		"GetShopByOwner":   func() bool { return GetPreparedGetShopByOwner() == nil },
		"GetProductBySlug": func() bool { return GetPreparedGetProductBySlug() == nil },
		"GetVariantBySKU":  func() bool { return GetPreparedGetVariantBySKU() == nil },
	}

	for name, isNil := range accessors {
		if !isNil() {
			t.Errorf("accesseur %s: attendu nil sans initialisation", name)
		}
	}
}
