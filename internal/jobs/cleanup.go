package jobs

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"

	"tecshop_backend/internal/cache"
	"tecshop_backend/internal/database"
	"tecshop_backend/internal/services"
)

const (
	// Durée de rétention des produits soft-deleted avant purge définitive
	RetentionPeriod = 30 * 24 * time.Hour

	cleanupInterval = time.Hour
)

// StartProductCleanup lance le balayage horaire qui purge définitivement les
// produits soft-deleted depuis plus de 30 jours. Un passage est fait au
// démarrage, puis toutes les heures jusqu'à l'annulation du context.
func StartProductCleanup(ctx context.Context) {
	log.Println("🧹 Balayage de rétention produits démarré (toutes les heures)")

	runCleanup()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCleanup()
		case <-ctx.Done():
			log.Println("🧹 Balayage de rétention produits arrêté")
			return
		}
	}
}

// shouldPurge indique si un produit soft-deleted a dépassé la rétention
func shouldPurge(deletedAt *time.Time, now time.Time) bool {
	if deletedAt == nil {
		return false
	}
	return now.Sub(*deletedAt) > RetentionPeriod
}

func runCleanup() {
	session, err := database.GetCatalogSession()
	if err != nil {
		log.Printf("⚠️ Balayage annulé, base indisponible: %v", err)
		return
	}

	// Pas de prédicat "deleted_at IS NOT NULL" en CQL: on balaie et on filtre
	iter := session.Query(`SELECT product_id, shop_id, slug, sku, name, deleted_at FROM products`).Iter()

	type candidate struct {
		id     gocql.UUID
		shopID gocql.UUID
		slug   string
		sku    string
		name   string
	}
	var candidates []candidate

	now := time.Now()
	var id, shopID gocql.UUID
	var slug, sku, name string
	var deletedAt *time.Time
	for iter.Scan(&id, &shopID, &slug, &sku, &name, &deletedAt) {
		if shouldPurge(deletedAt, now) {
			candidates = append(candidates, candidate{id, shopID, slug, sku, name})
		}
		deletedAt = nil
	}
	if err := iter.Close(); err != nil {
		log.Printf("⚠️ Erreur balayage produits: %v", err)
		return
	}

	if len(candidates) == 0 {
		return
	}

	purged := 0
	for _, c := range candidates {
		if err := purgeProduct(session, c.id, c.shopID, c.slug, c.sku); err != nil {
			log.Printf("⚠️ Purge échouée pour %s (%s): %v", c.name, c.id, err)
			continue
		}
		purged++
		log.Printf("🗑️ Produit purgé définitivement: %s (%s)", c.name, c.id)
	}

	log.Printf("🧹 Balayage terminé: %d produit(s) purgé(s)", purged)
}

// purgeProduct supprime définitivement un produit, ses variantes, ses avis,
// ses tables de correspondance, son document Elasticsearch et son cache
func purgeProduct(session *gocql.Session, productID, shopID gocql.UUID, slug, sku string) error {
	// Variantes et leurs SKU
	variantIter := session.Query(`
		SELECT variant_id, sku FROM product_variants WHERE product_id = ? ALLOW FILTERING
	`, productID).Iter()

	var variantID gocql.UUID
	var variantSKU string
	for variantIter.Scan(&variantID, &variantSKU) {
		if err := session.Query(`DELETE FROM product_variants WHERE variant_id = ?`, variantID).Exec(); err != nil {
			log.Printf("⚠️ Suppression variante %s: %v", variantID, err)
		}
		if err := session.Query(`DELETE FROM variants_by_sku WHERE shop_id = ? AND sku = ?`, shopID, variantSKU).Exec(); err != nil {
			log.Printf("⚠️ Suppression variants_by_sku %s: %v", variantSKU, err)
		}
	}
	if err := variantIter.Close(); err != nil {
		return err
	}

	// Avis
	if err := session.Query(`DELETE FROM ratings_by_product WHERE product_id = ?`, productID).Exec(); err != nil {
		log.Printf("⚠️ Suppression avis de %s: %v", productID, err)
	}

	// Tables de correspondance (le SKU du produit lui-même est aussi réservé)
	if err := session.Query(`DELETE FROM variants_by_sku WHERE shop_id = ? AND sku = ?`, shopID, sku).Exec(); err != nil {
		log.Printf("⚠️ Suppression variants_by_sku %s: %v", sku, err)
	}
	if err := session.Query(`DELETE FROM products_by_slug WHERE slug = ?`, slug).Exec(); err != nil {
		log.Printf("⚠️ Suppression products_by_slug %s: %v", slug, err)
	}
	if err := session.Query(`DELETE FROM products_by_shop WHERE shop_id = ? AND product_id = ?`, shopID, productID).Exec(); err != nil {
		log.Printf("⚠️ Suppression products_by_shop: %v", err)
	}

	// Ligne principale en dernier
	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).Exec(); err != nil {
		return err
	}

	// Index de recherche et caches
	services.RemoveProductFromIndex(productID.String())
	cache.DeleteCache("product:full:" + productID.String())
	if err := cache.InvalidatePattern("products:public:*"); err != nil {
		log.Printf("⚠️ Invalidation cache listes: %v", err)
	}

	return nil
}
