package product

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"tecshop_backend/internal/database"
	"tecshop_backend/internal/models"
)

// listingParams regroupe les filtres de la liste publique après parsing.
// Category et Brand acceptent un slug ou un UUID.
type listingParams struct {
	Category string
	Brand    string
	ShopID   string
	MinPrice float64
	MaxPrice float64
	Colors   []string
	Sizes    []string
	Query    string
	SortBy   string
	Page     int
	Limit    int
}

// GetPublicProducts liste les produits visibles du storefront avec filtres,
// tri et pagination.
//
// Cassandra ne sait pas combiner des prédicats arbitraires avec un tri: on
// pousse en CQL ce qui se filtre bien côté base (catégorie, marque, fourchette
// de prix, boutique) puis on termine en mémoire (visibilité, couleurs/tailles,
// recherche texte, tri, découpage de page). Toutes les requêtes passent par ce
// pipeline complet, même sans filtre mémoire: le tri impose de tout charger.
func GetPublicProducts(c *gin.Context) {
	params := parseListingParams(c)

	ctx := context.Background()
	cacheKey := listingCacheKey(params)

	// ✅ Cache Redis (30s, les listes bougent souvent)
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached gin.H
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Construction de la requête CQL avec les prédicats supportés
	query := `SELECT ` + productColumns + ` FROM products`
	var conditions []string
	var values []interface{}

	if params.Category != "" {
		id, found, err := resolveCatalogRef(session, params.Category, "categories_by_slug", "category_id")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur résolution catégorie"})
			return
		}
		if !found {
			c.JSON(http.StatusOK, emptyListing(params))
			return
		}
		conditions = append(conditions, "category_id = ?")
		values = append(values, id)
	}
	if params.Brand != "" {
		id, found, err := resolveCatalogRef(session, params.Brand, "brands_by_slug", "brand_id")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur résolution marque"})
			return
		}
		if !found {
			c.JSON(http.StatusOK, emptyListing(params))
			return
		}
		conditions = append(conditions, "brand_id = ?")
		values = append(values, id)
	}
	if params.ShopID != "" {
		id, err := gocql.ParseUUID(params.ShopID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID de boutique invalide"})
			return
		}
		conditions = append(conditions, "shop_id = ?")
		values = append(values, id)
	}
	if params.MinPrice > 0 {
		conditions = append(conditions, "price >= ?")
		values = append(values, params.MinPrice)
	}
	if params.MaxPrice > 0 {
		conditions = append(conditions, "price <= ?")
		values = append(values, params.MaxPrice)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ") + " ALLOW FILTERING"
	}

	iter := session.Query(query, values...).Iter()

	var products []models.Product
	var p models.Product
	for scanProduct(iter, &p) {
		products = append(products, p)
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur listing produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	// Post-filtrage en mémoire
	products = filterVisible(products)
	products = filterByVariantAttrs(products, params.Colors, params.Sizes)
	products = filterByQuery(products, params.Query)

	sortProducts(products, params.SortBy, params.Query)

	total := len(products)
	pageItems := paginate(products, params.Page, params.Limit)

	result := gin.H{
		"products":    pageItems,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
		"total_pages": totalPages(total, params.Limit),
	}

	if data, err := json.Marshal(result); err == nil {
		database.RedisClient.Set(ctx, cacheKey, data, 30*time.Second)
	}

	c.JSON(http.StatusOK, result)
}

// resolveCatalogRef accepte un UUID ou un slug et renvoie l'UUID correspondant
// via la table de correspondance (categories_by_slug, brands_by_slug)
func resolveCatalogRef(session *gocql.Session, ref, slugTable, idColumn string) (gocql.UUID, bool, error) {
	if id, err := gocql.ParseUUID(ref); err == nil {
		return id, true, nil
	}

	var id gocql.UUID
	q := fmt.Sprintf("SELECT %s FROM %s WHERE slug = ?", idColumn, slugTable)
	err := session.Query(q, strings.ToLower(ref)).Scan(&id)
	if err == gocql.ErrNotFound {
		return gocql.UUID{}, false, nil
	}
	if err != nil {
		return gocql.UUID{}, false, err
	}
	return id, true, nil
}

// emptyListing : réponse vide bien formée quand un slug de filtre n'existe pas
func emptyListing(params listingParams) gin.H {
	return gin.H{
		"products":    []models.Product{},
		"total":       0,
		"page":        params.Page,
		"limit":       params.Limit,
		"total_pages": 0,
	}
}

// parseListingParams lit les query params et borne la pagination. Les anciens
// noms (category_id, brand_id, color, size) restent acceptés.
func parseListingParams(c *gin.Context) listingParams {
	category := c.Query("category")
	if category == "" {
		category = c.Query("category_id")
	}
	brand := c.Query("brand")
	if brand == "" {
		brand = c.Query("brand_id")
	}

	colors := splitCSV(c.Query("colors"))
	if len(colors) == 0 && c.Query("color") != "" {
		colors = []string{c.Query("color")}
	}
	sizes := splitCSV(c.Query("sizes"))
	if len(sizes) == 0 && c.Query("size") != "" {
		sizes = []string{c.Query("size")}
	}

	params := listingParams{
		Category: category,
		Brand:    brand,
		ShopID:   c.Query("shop_id"),
		Colors:   colors,
		Sizes:    sizes,
		Query:    c.Query("q"),
		SortBy:   c.DefaultQuery("sort", "newest"),
	}

	if v, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil && v > 0 {
		params.MinPrice = v
	}
	if v, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil && v > 0 {
		params.MaxPrice = v
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params.Page = clampPage(page)
	params.Limit = clampLimit(limit)

	return params
}

// splitCSV découpe une liste "rouge,bleu" en ignorant les éléments vides
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// filterVisible garde les produits actifs et non soft-deleted
func filterVisible(products []models.Product) []models.Product {
	filtered := products[:0]
	for _, p := range products {
		if p.IsActive && p.DeletedAt == nil {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// filterByVariantAttrs filtre sur les couleurs/tailles dénormalisées du
// produit. Plusieurs couleurs (ou tailles) = au moins une doit matcher;
// les deux dimensions demandées doivent matcher ensemble.
func filterByVariantAttrs(products []models.Product, colors, sizes []string) []models.Product {
	if len(colors) == 0 && len(sizes) == 0 {
		return products
	}

	filtered := products[:0]
	for _, p := range products {
		if len(colors) > 0 && !containsAnyFold(p.Colors, colors) {
			continue
		}
		if len(sizes) > 0 && !containsAnyFold(p.Sizes, sizes) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// filterByQuery garde les produits dont le nom, la description ou un tag
// contient le terme recherché (insensible à la casse)
func filterByQuery(products []models.Product, q string) []models.Product {
	if q == "" {
		return products
	}
	q = strings.ToLower(q)

	filtered := products[:0]
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			containsSubstringFold(p.Tags, q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

func containsAnyFold(list, wanted []string) bool {
	for _, w := range wanted {
		if containsFold(list, w) {
			return true
		}
	}
	return false
}

func containsSubstringFold(list []string, q string) bool {
	for _, v := range list {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// sortProducts trie la liste en place selon le critère demandé. Le tri
// "relevance" n'a de sens qu'avec un terme de recherche, sinon on retombe
// sur le plus récent.
func sortProducts(products []models.Product, sortBy, q string) {
	switch sortBy {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case "rating":
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].AverageRating != products[j].AverageRating {
				return products[i].AverageRating > products[j].AverageRating
			}
			return products[i].RatingCount > products[j].RatingCount
		})
	case "relevance":
		if q == "" {
			sortNewest(products)
			return
		}
		term := strings.ToLower(q)
		sort.SliceStable(products, func(i, j int) bool {
			si, sj := relevanceScore(products[i], term), relevanceScore(products[j], term)
			if si != sj {
				return si > sj
			}
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default: // newest
		sortNewest(products)
	}
}

func sortNewest(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// relevanceScore pondère où le terme apparaît: nom > tag > description
func relevanceScore(p models.Product, term string) int {
	score := 0
	name := strings.ToLower(p.Name)
	if strings.HasPrefix(name, term) {
		score += 4
	} else if strings.Contains(name, term) {
		score += 3
	}
	if containsSubstringFold(p.Tags, term) {
		score += 2
	}
	if strings.Contains(strings.ToLower(p.Description), term) {
		score++
	}
	return score
}

// paginate découpe la page demandée; une page au-delà de la fin renvoie une liste vide
func paginate(products []models.Product, page, limit int) []models.Product {
	start := (page - 1) * limit
	if start >= len(products) {
		return []models.Product{}
	}
	end := start + limit
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func listingCacheKey(p listingParams) string {
	return fmt.Sprintf("products:public:%s:%s:%s:%.2f:%.2f:%s:%s:%s:%s:%d:%d",
		p.Category, p.Brand, p.ShopID, p.MinPrice, p.MaxPrice,
		strings.Join(p.Colors, "+"), strings.Join(p.Sizes, "+"),
		p.Query, p.SortBy, p.Page, p.Limit)
}
