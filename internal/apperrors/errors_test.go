package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewValidationError("email", "adresse e-mail invalide"), http.StatusBadRequest},
		{&AuthenticationError{Reason: "token expiré"}, http.StatusUnauthorized},
		{&NotFoundError{Resource: "produit"}, http.StatusNotFound},
		{&ConflictError{Reason: "existe déjà"}, http.StatusConflict},
		{&InvalidTransitionError{From: "delivered", To: "cancelled"}, http.StatusConflict},
		{&StaleStateError{Resource: "commande"}, http.StatusConflict},
		{&UpstreamServiceError{Service: "stripe", Err: errors.New("timeout")}, http.StatusBadGateway},
		{&ServiceUnavailableError{Err: errors.New("no hosts")}, http.StatusServiceUnavailable},
		{errors.New("inattendue"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "erreur: %v", tc.err)
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("lecture du panier: %w", &StaleStateError{Resource: "panier"})
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}

func TestUpstreamServiceErrorUnwrap(t *testing.T) {
	cause := errors.New("connexion refusée")
	err := &UpstreamServiceError{Service: "stripe", Err: cause}
	assert.ErrorIs(t, err, cause)
}
