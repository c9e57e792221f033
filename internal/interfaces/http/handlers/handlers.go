package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/manorfm/saas-admin/internal/domain"
	httperrors "github.com/manorfm/saas-admin/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var validate = httperrors.NewValidator()

// validateRequest decodes the JSON body into req and runs its validate tags.
// On failure the error response is already written and false is returned.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return false
	}

	if err := validate.Struct(req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			httperrors.RespondErrorWithDetails(w, domain.ErrInvalidField, httperrors.ValidationDetails(err))
			return false
		}
		httperrors.RespondWithError(w, domain.ErrInvalidRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, body interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
