package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"causeboard/pkg/types"
)

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []types.FieldError `json:"fields,omitempty"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Validation
// failures keep their per-field detail so clients can render every
// problem at once.
func (s *Service) respondDomainError(w http.ResponseWriter, err error) {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, types.ErrCategoryNotFound),
		errors.Is(err, types.ErrCauseNotFound),
		errors.Is(err, types.ErrFieldNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, types.ErrDuplicateName),
		errors.Is(err, types.ErrFieldNameTaken),
		errors.Is(err, types.ErrFieldSetMismatch),
		errors.Is(err, types.ErrCategoryImmutable),
		errors.Is(err, types.ErrCategoryNameChanged),
		errors.Is(err, types.ErrConcurrentModification):
		s.respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, types.ErrMissingPayload),
		errors.Is(err, types.ErrUnexpectedPayload),
		errors.Is(err, types.ErrUnknownFieldType),
		errors.Is(err, types.ErrNotDynamicCategory):
		s.respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, types.ErrCategoryInactive):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
