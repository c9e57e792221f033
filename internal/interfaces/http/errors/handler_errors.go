package errors

import (
	"net/http"

	"github.com/manorfm/saas-admin/internal/domain"
)

func getStatus(err domain.Error) int {
	switch err.GetCode() {
	case domain.ErrMalformedToken.GetCode(),
		domain.ErrSignatureInvalid.GetCode(),
		domain.ErrAlgorithmNotAllowed.GetCode(),
		domain.ErrTokenUndecodable.GetCode(),
		domain.ErrTokenExpired.GetCode(),
		domain.ErrTokenNotYetValid.GetCode(),
		domain.ErrInvalidIssuer.GetCode(),
		domain.ErrInvalidAudience.GetCode(),
		domain.ErrInvalidPurpose.GetCode(),
		domain.ErrMissingSubject.GetCode(),
		domain.ErrTokenMissing.GetCode(),
		domain.ErrUnauthorized.GetCode(),
		domain.ErrInvalidCredentials.GetCode():
		return http.StatusUnauthorized
	case domain.ErrForbidden.GetCode():
		return http.StatusForbidden
	case domain.ErrUserNotFound.GetCode():
		return http.StatusNotFound
	case domain.ErrUserAlreadyExists.GetCode():
		return http.StatusConflict
	case domain.ErrTooManyRequests.GetCode():
		return http.StatusTooManyRequests
	case domain.ErrInvalidRequest.GetCode(),
		domain.ErrInvalidField.GetCode(),
		domain.ErrPasswordTooLong.GetCode():
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// RespondWithError sends a standardized error response
func RespondWithError(w http.ResponseWriter, err domain.Error) {
	writeJSON(w, getStatus(err), ErrorResponse{
		Code:    err.GetCode(),
		Message: err.GetMessage(),
	})
}

// RespondErrorWithDetails sends a standardized error response with details
func RespondErrorWithDetails(w http.ResponseWriter, err domain.Error, details []ErrorDetail) {
	writeJSON(w, getStatus(err), ErrorResponse{
		Code:    err.GetCode(),
		Message: err.GetMessage(),
		Details: details,
	})
}

// RespondWithStatus forces the status code, for endpoints that collapse
// several failures into one response.
func RespondWithStatus(w http.ResponseWriter, status int, err domain.Error) {
	writeJSON(w, status, ErrorResponse{
		Code:    err.GetCode(),
		Message: err.GetMessage(),
	})
}

// Respond writes err using the first domain error in its chain. Anything
// else is reported as an internal error without leaking its text.
func Respond(w http.ResponseWriter, err error) {
	if de, ok := domain.AsError(err); ok {
		RespondWithError(w, de)
		return
	}
	RespondWithError(w, domain.ErrInternal)
}
