package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserByEmail *gocql.Query
	stmtGetUserByID    *gocql.Query
	stmtInsertUser     *gocql.Query
	stmtGetProductByID *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements users: %v", err)
			return
		}

		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, phone, role, created_at, updated_at
			FROM users WHERE user_id = ?`)

		// L'insert users_by_email n'est pas préparé ici : il passe par un
		// LWT IF NOT EXISTS qui porte la contrainte d'unicité
		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, phone, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

		productsSession, err := GetProductsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements products: %v", err)
			return
		}

		stmtGetProductByID = productsSession.Query(`SELECT product_id, name, slug, price, stock, image_urls, is_active
			FROM products WHERE product_id = ?`)

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedGetProductByID() *gocql.Query {
	return stmtGetProductByID
}
