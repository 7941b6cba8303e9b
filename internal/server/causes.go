package server

import (
	"net/http"
	"time"

	"causeboard/internal/service"
	"causeboard/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListCauses(w http.ResponseWriter, r *http.Request) {
	var filter types.CauseFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed query parameters")
		return
	}

	causes, err := s.core.ListCauses(r.Context(), filter)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, causes)
}

func (s *Service) handleGetCause(w http.ResponseWriter, r *http.Request) {
	cause, err := s.core.GetCause(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, cause)
}

type createCauseRequest struct {
	CategoryID       string                  `json:"category_id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	ShortDescription *string                 `json:"short_description"`
	Location         string                  `json:"location"`
	Latitude         *float64                `json:"latitude"`
	Longitude        *float64                `json:"longitude"`
	Priority         types.CausePriority     `json:"priority"`
	Tags             []string                `json:"tags"`
	Gallery          []string                `json:"gallery"`
	GoalCount        int                     `json:"goal_count"`
	ContactEmail     *string                 `json:"contact_email"`
	ContactPhone     *string                 `json:"contact_phone"`
	ExpiresAt        *time.Time              `json:"expires_at"`
	Payload          types.CausePayloadInput `json:"payload"`
}

func (s *Service) handleCreateCause(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createCauseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cause := &types.Cause{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		ShortDescription: req.ShortDescription,
		CauseLocation: types.CauseLocation{
			Location:  req.Location,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		},
		Priority:     req.Priority,
		Tags:         req.Tags,
		Gallery:      req.Gallery,
		GoalCount:    req.GoalCount,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		ExpiresAt:    req.ExpiresAt,
	}

	created, err := s.core.CreateCause(r.Context(), cause, req.Payload)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Service) handleUpdateCause(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	causeID := flow.Param(r.Context(), "id")

	if !s.canModifyCause(w, r, user, causeID) {
		return
	}

	var params service.UpdateCauseParams
	if !s.decodeBody(w, r, &params) {
		return
	}

	// status changes are a moderation action
	if params.Status != nil && !user.IsAdmin {
		s.respondError(w, http.StatusForbidden, "only admins can change status")
		return
	}

	updated, err := s.core.UpdateCause(r.Context(), causeID, params)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteCause(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	causeID := flow.Param(r.Context(), "id")

	if !s.canModifyCause(w, r, user, causeID) {
		return
	}

	if err := s.core.DeleteCause(r.Context(), causeID); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// canModifyCause enforces ownership: a cause belongs to the person who
// opened it, and admins can act on anything. Writes an error response
// and returns false when the caller may not proceed.
func (s *Service) canModifyCause(w http.ResponseWriter, r *http.Request, user *types.User, causeID string) bool {
	if user.IsAdmin {
		return true
	}

	cause, err := s.core.GetCause(r.Context(), causeID)
	if err != nil {
		s.respondDomainError(w, err)
		return false
	}

	if cause.UserID != user.ID {
		s.respondError(w, http.StatusForbidden, "not your cause")
		return false
	}

	return true
}
