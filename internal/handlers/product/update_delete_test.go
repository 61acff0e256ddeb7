package product

import (
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func boolPtr(b bool) *bool        { return &b }

func TestBuildUpdateCQLChampsPartiels(t *testing.T) {
	now := time.Now()

	setClause, values, err := buildUpdateCQL(productUpdate{
		Name:  strPtr("Nouveau nom"),
		Price: floatPtr(49.99),
	}, now)
	if err != nil {
		t.Fatalf("buildUpdateCQL: %v", err)
	}

	if !strings.Contains(setClause, "name = ?") || !strings.Contains(setClause, "price = ?") {
		t.Errorf("clause SET incomplète: %s", setClause)
	}
	if strings.Contains(setClause, "stock") || strings.Contains(setClause, "description") {
		t.Errorf("les champs absents ne doivent pas apparaître: %s", setClause)
	}
	if !strings.Contains(setClause, "updated_at = ?") {
		t.Errorf("updated_at doit toujours être mis à jour: %s", setClause)
	}

	// name, price, updated_at
	if len(values) != 3 {
		t.Errorf("attendu 3 valeurs, obtenu %d", len(values))
	}
}

func TestBuildUpdateCQLSlugJamaisModifie(t *testing.T) {
	setClause, _, err := buildUpdateCQL(productUpdate{
		Name:        strPtr("Renommé"),
		Description: strPtr("desc"),
		Stock:       intPtr(5),
		IsActive:    boolPtr(false),
	}, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(setClause, "slug") {
		t.Errorf("le slug ne doit jamais être recalculé: %s", setClause)
	}
}

func TestBuildUpdateCQLVide(t *testing.T) {
	setClause, values, err := buildUpdateCQL(productUpdate{}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if setClause != "" || values != nil {
		t.Errorf("payload vide: clause %q, valeurs %v", setClause, values)
	}
}

func TestBuildUpdateCQLUUIDInvalide(t *testing.T) {
	if _, _, err := buildUpdateCQL(productUpdate{CategoryID: strPtr("pas-un-uuid")}, time.Now()); err == nil {
		t.Error("un UUID de catégorie invalide doit renvoyer une erreur")
	}
}

func TestAppendUnique(t *testing.T) {
	list := appendUnique(nil, "rouge")
	list = appendUnique(list, "bleu")
	list = appendUnique(list, "rouge")
	if len(list) != 2 {
		t.Errorf("doublons non dédupliqués: %v", list)
	}
}
