package server

import (
	"net/http"

	"causeboard/internal/service"
	"causeboard/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handlePublicCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.core.PublicCategories(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, categories)
}

// handlePublicCategoryFields serves the field schema clients need to
// render a submission form. Built-in categories return an empty list;
// their forms are fixed.
func (s *Service) handlePublicCategoryFields(w http.ResponseWriter, r *http.Request) {
	category := flow.Param(r.Context(), "category")

	fields, err := s.core.CategoryFields(r.Context(), category)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, fields)
}

func (s *Service) handleAdminListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.core.ListCategories(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, categories)
}

type createCategoryRequest struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"display_name"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	DisplayOrder int     `json:"display_order"`
}

func (s *Service) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	category, err := s.core.CreateCategory(r.Context(), &types.Category{
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		Icon:         req.Icon,
		Color:        req.Color,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, category)
}

func (s *Service) handleAdminGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.core.GetCategory(r.Context(), flow.Param(r.Context(), "category"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, category)
}

func (s *Service) handleAdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var params service.UpdateCategoryParams
	if !s.decodeBody(w, r, &params) {
		return
	}

	category, err := s.core.UpdateCategory(r.Context(), flow.Param(r.Context(), "category"), params)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, category)
}

func (s *Service) handleAdminListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.core.CategoryFields(r.Context(), flow.Param(r.Context(), "category"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, fields)
}

type addFieldRequest struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Type         types.FieldType `json:"field_type"`
	Required     bool            `json:"required"`
	Options      []string        `json:"options"`
	Placeholder  *string         `json:"placeholder"`
	DisplayOrder int             `json:"display_order"`
}

func (s *Service) handleAdminAddField(w http.ResponseWriter, r *http.Request) {
	var req addFieldRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	field, err := s.core.AddField(r.Context(), flow.Param(r.Context(), "category"), &types.CategoryField{
		Name:         req.Name,
		Label:        req.Label,
		Type:         req.Type,
		Required:     req.Required,
		Options:      req.Options,
		Placeholder:  req.Placeholder,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, field)
}

func (s *Service) handleAdminUpdateField(w http.ResponseWriter, r *http.Request) {
	var params service.UpdateFieldParams
	if !s.decodeBody(w, r, &params) {
		return
	}

	ctx := r.Context()
	field, err := s.core.UpdateField(ctx, flow.Param(ctx, "category"), flow.Param(ctx, "fieldID"), params)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, field)
}

func (s *Service) handleAdminDeleteField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := s.core.DeleteField(ctx, flow.Param(ctx, "category"), flow.Param(ctx, "fieldID"))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

type reorderFieldsRequest struct {
	FieldIDs []string `json:"field_ids"`
}

func (s *Service) handleAdminReorderFields(w http.ResponseWriter, r *http.Request) {
	var req reorderFieldsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	err := s.core.ReorderFields(r.Context(), flow.Param(r.Context(), "category"), req.FieldIDs)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
