package user

import (
	"log"
	"net/http"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/cache"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/v1/auth/register
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		Phone    string `json:"phone" validate:"omitempty,phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	now := time.Now()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  hashedPassword,
		Role:      "customer",
		CreatedAt: now,
		UpdatedAt: now,
	}

	// L'insert LWT sur users_by_email garantit l'unicité de l'email.
	// MapScanCAS car un INSERT IF NOT EXISTS refusé renvoie la ligne
	// existante entière.
	applied, err := session.Query(
		"INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS",
		user.Email, user.ID).MapScanCAS(map[string]interface{}{})
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}
	if !applied {
		utils.RespondError(c, &apperrors.ConflictError{Reason: "un compte avec cet email existe déjà"})
		return
	}

	if q := database.GetPreparedInsertUser(); q != nil {
		err = q.Bind(user.ID, user.Email, user.Password, user.Name, user.Phone, user.Role, now, now).Exec()
	} else {
		err = session.Query(`INSERT INTO users (user_id, email, password, name, phone, role, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Password, user.Name, user.Phone, user.Role, now, now).Exec()
	}
	if err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Printf("✅ Utilisateur créé: %s (%s)", user.ID, user.Email)
	utils.RespondOK(c, http.StatusCreated, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	}, "compte créé")
}

// POST /api/v1/auth/login
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := findUserByEmail(input.Email)
	if err != nil {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "email ou mot de passe incorrect"})
		return
	}

	accessToken, refreshToken, err := issueTokens(*user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	}, "")
}

// POST /api/v1/auth/refresh-token
// Le client tente exactement un rafraîchissement silencieux ; un second
// échec force la déconnexion côté client.
func RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}

	claims, err := utils.ParseToken(input.RefreshToken)
	if err != nil {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "refresh token invalide ou expiré"})
		return
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "refresh token invalide"})
		return
	}
	userID, _ := claims["user_id"].(string)

	// Le token doit correspondre à celui stocké (révocable)
	stored, err := cache.GetRefreshToken(userID)
	if err != nil || stored != input.RefreshToken {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "session expirée, reconnectez-vous"})
		return
	}

	user, err := findUserByID(userID)
	if err != nil {
		utils.RespondError(c, &apperrors.AuthenticationError{Reason: "utilisateur inconnu"})
		return
	}

	accessToken, refreshToken, err := issueTokens(*user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, http.StatusOK, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	}, "")
}

// POST /api/v1/auth/logout
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}
	utils.RespondOK(c, http.StatusOK, nil, "déconnecté")
}

// --- helpers ---

func issueTokens(user models.User) (access, refresh string, err error) {
	access, err = utils.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err = utils.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	if err := cache.StoreRefreshToken(user.ID, refresh, utils.RefreshTokenTTL); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
	}
	return access, refresh, nil
}

func findUserByEmail(email string) (*models.User, error) {
	var userID string
	if q := database.GetPreparedGetUserByEmail(); q != nil {
		if err := q.Bind(email).Scan(&userID); err != nil {
			return nil, err
		}
		return findUserByID(userID)
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(&userID); err != nil {
		return nil, err
	}
	return findUserByID(userID)
}

func findUserByID(userID string) (*models.User, error) {
	user := models.User{ID: userID}
	if q := database.GetPreparedGetUserByID(); q != nil {
		err := q.Bind(userID).
			Scan(&user.Email, &user.Password, &user.Name, &user.Phone, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return &user, nil
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}
	err = session.Query(`SELECT email, password, name, phone, role, created_at, updated_at
		FROM users WHERE user_id = ?`, userID).
		Scan(&user.Email, &user.Password, &user.Name, &user.Phone, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
