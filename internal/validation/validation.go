package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"patypatii_back_end/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Les erreurs doivent citer le nom de champ du JSON, pas celui du struct
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
}

// Numéros kényans et internationaux : +254712345678, 0712345678, etc.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// Struct valide un struct annoté de tags `validate` et retourne la liste
// structurée des violations. La requête est rejetée en bloc : aucune
// application partielle.
func Struct(s any) []apperrors.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Field: "", Message: "données invalides"}}
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return fields
}

// Check retourne directement une *apperrors.ValidationError (ou nil)
func Check(s any) error {
	if fields := Struct(s); len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "champ obligatoire"
	case "email":
		return "adresse e-mail invalide"
	case "phone":
		return "numéro de téléphone invalide"
	case "min":
		if fe.Kind() == reflect.String {
			return "au moins " + fe.Param() + " caractères"
		}
		return "doit être ≥ " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "au plus " + fe.Param() + " caractères"
		}
		return "doit être ≤ " + fe.Param()
	case "gt":
		return "doit être > " + fe.Param()
	case "gte":
		return "doit être ≥ " + fe.Param()
	case "oneof":
		return "valeur attendue parmi: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "dive":
		return "élément invalide"
	default:
		return "valeur invalide (" + fe.Tag() + ")"
	}
}

// --- Pagination ---

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePagination borne page et limit aux plages acceptées ; les valeurs
// non numériques retombent sur les défauts.
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	page = DefaultPage
	limit = DefaultLimit
	if n, err := strconv.Atoi(pageStr); err == nil && n >= 1 {
		page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n >= 1 {
		limit = n
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}
	return page, limit
}

// --- Tri des listes produits ---

var SortOrders = []string{"newest", "price_asc", "price_desc", "name"}

func IsValidSort(s string) bool {
	for _, v := range SortOrders {
		if v == s {
			return true
		}
	}
	return false
}
