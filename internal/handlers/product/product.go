package product

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/cache"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GET /api/v1/products
// La recherche passe par Elasticsearch ; si le cluster est hors ligne le
// catalogue reste servable depuis Scylla, sans tri ni texte libre.
func ListProducts(c *gin.Context) {
	page, limit := validation.ParsePagination(c.Query("page"), c.Query("limit"))

	query := service.SearchQuery{
		Text:     strings.TrimSpace(c.Query("q")),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	}
	if query.Category != "" && !models.IsValidCategory(query.Category) {
		utils.RespondError(c, apperrors.NewValidationError("category", "catégorie inconnue"))
		return
	}
	if query.Sort != "" && !validation.IsValidSort(query.Sort) {
		utils.RespondError(c, apperrors.NewValidationError("sort", "ordre de tri inconnu"))
		return
	}

	// Les listes sans texte libre sont mémoïsées ; les recherches texte
	// vont toujours à l'index
	type productPage struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}
	cacheKey := ""
	if query.Text == "" {
		cacheKey = fmt.Sprintf("products:list:%s:%s:%d:%d", query.Category, query.Sort, page, limit)
		if cached := cache.Get[productPage](cacheKey); cached != nil {
			utils.RespondPage(c, cached.Products, utils.NewPagination(page, limit, cached.Total))
			return
		}
	}

	products, total, err := service.SearchProducts(query)
	if err != nil {
		log.Printf("⚠️ Recherche Elastic indisponible, repli sur Scylla: %v", err)
		products, total, err = listProductsFromScylla(query)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	if cacheKey != "" {
		cache.Set(cacheKey, productPage{Products: products, Total: total}, cache.ProductCacheTTL)
	}

	utils.RespondPage(c, products, utils.NewPagination(page, limit, total))
}

// GET /api/v1/products/featured
func FeaturedProducts(c *gin.Context) {
	const cacheKey = "products:featured"

	if cached := cache.Get[[]models.Product](cacheKey); cached != nil {
		utils.RespondOK(c, http.StatusOK, *cached, "")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	iter := session.Query(`SELECT product_id, name, slug, description, price, stock, sku,
		category, material, image_urls, tags, is_active, is_featured, created_at, updated_at
		FROM products`).Iter()

	featured := []models.Product{}
	var p models.Product
	for scanProduct(iter, &p) {
		if p.IsActive && p.IsFeatured {
			featured = append(featured, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	cache.Set(cacheKey, featured, cache.FeaturedCacheTTL)
	utils.RespondOK(c, http.StatusOK, featured, "")
}

// GET /api/v1/products/:slug
func GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	cacheKey := "product:slug:" + slug
	if cached := cache.Get[models.Product](cacheKey); cached != nil {
		utils.RespondOK(c, http.StatusOK, *cached, "")
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	var productID gocql.UUID
	if err := session.Query(`SELECT product_id FROM products_by_slug WHERE slug = ?`, slug).
		Scan(&productID); err != nil {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "produit"})
		return
	}

	p, err := findProductByID(session, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !p.IsActive {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "produit"})
		return
	}

	cache.Set(cacheKey, *p, cache.ProductCacheTTL)
	utils.RespondOK(c, http.StatusOK, p, "")
}

// --- Admin ---

type productInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Slug        string   `json:"slug" validate:"required,min=2,max=200,lowercase"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	SKU         string   `json:"sku" validate:"required,min=2,max=64"`
	Category    string   `json:"category" validate:"required"`
	Material    string   `json:"material" validate:"omitempty,max=100"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,dive,url"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=40"`
	IsActive    bool     `json:"is_active"`
	IsFeatured  bool     `json:"is_featured"`
}

// POST /api/v1/admin/products
func CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}
	if !models.IsValidCategory(input.Category) {
		utils.RespondError(c, apperrors.NewValidationError("category", "catégorie inconnue"))
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	// Unicité du slug via insert conditionnel sur la table de lookup
	productID := gocql.TimeUUID()
	applied, err := session.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?) IF NOT EXISTS`,
		input.Slug, productID).MapScanCAS(map[string]interface{}{})
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}
	if !applied {
		utils.RespondError(c, apperrors.NewValidationError("slug", "slug déjà utilisé"))
		return
	}

	now := time.Now()
	p := models.Product{
		ID:          productID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		SKU:         input.SKU,
		Category:    input.Category,
		Material:    input.Material,
		ImageURLs:   input.ImageURLs,
		Tags:        input.Tags,
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = session.Query(`INSERT INTO products (product_id, name, slug, description, price, stock,
		sku, category, material, image_urls, tags, is_active, is_featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.SKU, p.Category,
		p.Material, p.ImageURLs, p.Tags, p.IsActive, p.IsFeatured, p.CreatedAt, p.UpdatedAt).Exec()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	service.IndexProduct(p)
	cache.Del("products:featured")

	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.Slug)
	utils.RespondOK(c, http.StatusCreated, p, "produit créé")
}

// PUT /api/v1/admin/products/:id
func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant produit invalide"))
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}
	if !models.IsValidCategory(input.Category) {
		utils.RespondError(c, apperrors.NewValidationError("category", "catégorie inconnue"))
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	existing, err := findProductByID(session, productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Changement de slug : réserver le nouveau avant de libérer l'ancien
	if input.Slug != existing.Slug {
		applied, err := session.Query(`INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?) IF NOT EXISTS`,
			input.Slug, productID).MapScanCAS(map[string]interface{}{})
		if err != nil {
			utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
			return
		}
		if !applied {
			utils.RespondError(c, apperrors.NewValidationError("slug", "slug déjà utilisé"))
			return
		}
		if err := session.Query(`DELETE FROM products_by_slug WHERE slug = ?`, existing.Slug).Exec(); err != nil {
			log.Printf("⚠️ Erreur libération ancien slug %s: %v", existing.Slug, err)
		}
	}

	updated := *existing
	updated.Name = input.Name
	updated.Slug = input.Slug
	updated.Description = input.Description
	updated.Price = input.Price
	updated.Stock = input.Stock
	updated.SKU = input.SKU
	updated.Category = input.Category
	updated.Material = input.Material
	updated.ImageURLs = input.ImageURLs
	updated.Tags = input.Tags
	updated.IsActive = input.IsActive
	updated.IsFeatured = input.IsFeatured
	updated.UpdatedAt = time.Now()

	err = session.Query(`UPDATE products SET name = ?, slug = ?, description = ?, price = ?,
		stock = ?, sku = ?, category = ?, material = ?, image_urls = ?, tags = ?,
		is_active = ?, is_featured = ?, updated_at = ?
		WHERE product_id = ?`,
		updated.Name, updated.Slug, updated.Description, updated.Price, updated.Stock,
		updated.SKU, updated.Category, updated.Material, updated.ImageURLs, updated.Tags,
		updated.IsActive, updated.IsFeatured, updated.UpdatedAt, productID).Exec()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	if updated.IsActive {
		service.IndexProduct(updated)
	} else {
		service.RemoveProduct(productID.String())
	}
	cache.InvalidateProduct(productID.String())
	cache.Del("product:slug:"+existing.Slug, "product:slug:"+updated.Slug, "products:featured")

	utils.RespondOK(c, http.StatusOK, updated, "produit mis à jour")
}

// --- helpers ---

func findProductByID(session *gocql.Session, productID gocql.UUID) (*models.Product, error) {
	var p models.Product
	err := session.Query(`SELECT product_id, name, slug, description, price, stock, sku,
		category, material, image_urls, tags, is_active, is_featured, created_at, updated_at
		FROM products WHERE product_id = ?`, productID).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.SKU,
			&p.Category, &p.Material, &p.ImageURLs, &p.Tags, &p.IsActive, &p.IsFeatured,
			&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, &apperrors.NotFoundError{Resource: "produit"}
	}
	return &p, nil
}

func scanProduct(iter *gocql.Iter, p *models.Product) bool {
	return iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.SKU,
		&p.Category, &p.Material, &p.ImageURLs, &p.Tags, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt)
}

// listProductsFromScylla est le repli catalogue quand Elastic est hors
// ligne : filtre catégorie en mémoire, ordre de table, pas de texte libre
func listProductsFromScylla(q service.SearchQuery) ([]models.Product, int64, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, 0, &apperrors.ServiceUnavailableError{Err: err}
	}

	iter := session.Query(`SELECT product_id, name, slug, description, price, stock, sku,
		category, material, image_urls, tags, is_active, is_featured, created_at, updated_at
		FROM products`).Iter()

	all := []models.Product{}
	var p models.Product
	for scanProduct(iter, &p) {
		if p.IsActive && (q.Category == "" || p.Category == q.Category) {
			all = append(all, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, 0, &apperrors.ServiceUnavailableError{Err: err}
	}

	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start >= len(all) {
		return []models.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
