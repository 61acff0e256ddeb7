package jobs

import (
	"testing"
	"time"
)

func TestShouldPurge(t *testing.T) {
	now := time.Now()

	if shouldPurge(nil, now) {
		t.Error("un produit non supprimé ne doit jamais être purgé")
	}

	recent := now.Add(-24 * time.Hour)
	if shouldPurge(&recent, now) {
		t.Error("un produit supprimé hier est encore restaurable")
	}

	limite := now.Add(-RetentionPeriod)
	if shouldPurge(&limite, now) {
		t.Error("exactement 30 jours: pas encore purgeable")
	}

	expire := now.Add(-RetentionPeriod - time.Minute)
	if !shouldPurge(&expire, now) {
		t.Error("au-delà de 30 jours, le produit doit être purgé")
	}
}
