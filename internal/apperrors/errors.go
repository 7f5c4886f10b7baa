package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError porte le détail d'une règle de validation violée
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError : entrée rejetée avant la logique métier (HTTP 400)
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "données invalides"
	}
	return fmt.Sprintf("données invalides: %s (%s)", e.Fields[0].Field, e.Fields[0].Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// AuthenticationError : token manquant, expiré ou invalide (HTTP 401)
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

// NotFoundError : identifiant ou slug inconnu (HTTP 404)
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " introuvable" }

// InvalidTransitionError : mouvement illégal de la machine à états ;
// l'état reste inchangé (HTTP 409)
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition invalide: %s → %s", e.From, e.To)
}

// ConflictError : la ressource existe déjà, l'insert conditionnel n'a
// pas été appliqué (HTTP 409)
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// StaleStateError : conflit de concurrence optimiste, l'enregistrement a
// changé depuis sa lecture (HTTP 409)
type StaleStateError struct {
	Resource string
}

func (e *StaleStateError) Error() string {
	return e.Resource + " modifié entre-temps, veuillez réessayer"
}

// UpstreamServiceError : passerelle de paiement ou service externe
// indisponible (HTTP 502). Le client reçoit un message générique, le
// détail est loggé côté serveur.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("service %s indisponible: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// ServiceUnavailableError : base de données injoignable, l'utilisateur doit
// voir un « réessayez plus tard » explicite (HTTP 503)
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("service temporairement indisponible: %v", e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// HTTPStatus mappe chaque catégorie d'erreur vers son statut HTTP
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ae *AuthenticationError
		ne *NotFoundError
		ce *ConflictError
		te *InvalidTransitionError
		se *StaleStateError
		ue *UpstreamServiceError
		de *ServiceUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ce), errors.As(err, &te), errors.As(err, &se):
		return http.StatusConflict
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.As(err, &de):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
