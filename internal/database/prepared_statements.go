package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les lectures fréquentes. Les écritures
	// (création de compte, de produit) sont trop rares pour en profiter.
	stmtGetUserByEmail   *gocql.Query
	stmtGetUserByID      *gocql.Query
	stmtGetShopByOwner   *gocql.Query
	stmtGetProductBySlug *gocql.Query
	stmtGetVariantBySKU  *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (users): %v", err)
			return
		}

		// Requête pour récupérer user_id par email (chaque login passe par là)
		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Requête pour récupérer un utilisateur par ID
		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, provider_id, shop_id, created_at, updated_at
			FROM users WHERE user_id = ?`)

		// Requête pour retrouver la boutique d'un vendeur
		stmtGetShopByOwner = usersSession.Query("SELECT shop_id FROM shops_by_owner WHERE owner_id = ?")

		catalogSession, err := GetCatalogSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (catalog): %v", err)
			return
		}

		// Résolution slug → produit (page produit du storefront)
		stmtGetProductBySlug = catalogSession.Query("SELECT product_id FROM products_by_slug WHERE slug = ?")

		// Contrôle d'unicité SKU par boutique
		stmtGetVariantBySKU = catalogSession.Query("SELECT variant_id, product_id FROM variants_by_sku WHERE shop_id = ? AND sku = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

// Les accesseurs renvoient nil si l'initialisation a échoué: les appelants
// retombent alors sur une requête ad hoc.

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedGetShopByOwner() *gocql.Query {
	return stmtGetShopByOwner
}

func GetPreparedGetProductBySlug() *gocql.Query {
	return stmtGetProductBySlug
}

func GetPreparedGetVariantBySKU() *gocql.Query {
	return stmtGetVariantBySKU
}
