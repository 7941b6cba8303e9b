package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"causeboard/pkg/types"
)

// machine names are stable identifiers, not display text
var categoryNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

var builtinNames = map[string]bool{
	types.CategoryFood:      true,
	types.CategoryClothes:   true,
	types.CategoryEducation: true,
}

// ListCategories returns every category, active or not, for the admin
// surface.
func (s *Service) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return s.categories.Categories(ctx, false)
}

// PublicCategories returns only active categories, the set offered to
// people opening a new request.
func (s *Service) PublicCategories(ctx context.Context) ([]*types.Category, error) {
	return s.categories.Categories(ctx, true)
}

// GetCategory looks the category up by id first and falls back to the
// machine name, so both forms work as route parameters.
func (s *Service) GetCategory(ctx context.Context, idOrName string) (*types.Category, error) {
	category, err := s.categories.CategoryByID(ctx, idOrName)
	if err == nil {
		return category, nil
	}

	if !errors.Is(err, types.ErrCategoryNotFound) {
		return nil, err
	}

	return s.categories.CategoryByName(ctx, idOrName)
}

// CreateCategory registers a new admin-defined category. Only dynamic
// categories can be created at runtime; the built-in three ship with the
// schema.
func (s *Service) CreateCategory(ctx context.Context, category *types.Category) (*types.Category, error) {
	verr := &types.ValidationError{}

	if !categoryNamePattern.MatchString(category.Name) {
		verr.Add("name", types.ValidationCodeInvalidValue, "name must be lowercase snake_case, 2-64 characters")
	} else if builtinNames[category.Name] {
		verr.Add("name", types.ValidationCodeInvalidValue, fmt.Sprintf("%q is reserved for a built-in category", category.Name))
	}

	if category.DisplayName == "" {
		verr.Add("display_name", types.ValidationCodeMissingRequired, "display name is required")
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	category.Kind = types.CategoryKindDynamic
	category.IsActive = true

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("category created")

	return category, nil
}

// UpdateCategoryParams carries partial category updates. The machine
// name and kind are immutable once created.
type UpdateCategoryParams struct {
	Name         *string `json:"name"`
	DisplayName  *string `json:"display_name"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	IsActive     *bool   `json:"is_active"`
	DisplayOrder *int    `json:"display_order"`
}

func (s *Service) UpdateCategory(ctx context.Context, idOrName string, params UpdateCategoryParams) (*types.Category, error) {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && *params.Name != category.Name {
		return nil, types.ErrCategoryNameChanged
	}

	if params.DisplayName != nil {
		if *params.DisplayName == "" {
			verr := &types.ValidationError{}
			verr.Add("display_name", types.ValidationCodeMissingRequired, "display name is required")
			return nil, verr
		}
		category.DisplayName = *params.DisplayName
	}
	if params.Description != nil {
		category.Description = params.Description
	}
	if params.Icon != nil {
		category.Icon = params.Icon
	}
	if params.Color != nil {
		category.Color = params.Color
	}
	if params.IsActive != nil {
		category.IsActive = *params.IsActive
	}
	if params.DisplayOrder != nil {
		category.DisplayOrder = *params.DisplayOrder
	}

	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// CategoryFields lists a category's field definitions in display order.
// Built-in categories have none; their schemas are fixed tables.
func (s *Service) CategoryFields(ctx context.Context, idOrName string) ([]*types.CategoryField, error) {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if category.Kind != types.CategoryKindDynamic {
		return []*types.CategoryField{}, nil
	}

	return s.fields.FieldsByCategory(ctx, category.ID)
}

// AddField appends a field definition to a dynamic category's schema.
func (s *Service) AddField(ctx context.Context, idOrName string, field *types.CategoryField) (*types.CategoryField, error) {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if category.Kind != types.CategoryKindDynamic {
		return nil, types.ErrNotDynamicCategory
	}

	if err := s.validateFieldDefinition(field); err != nil {
		return nil, err
	}

	existing, err := s.fields.FieldsByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}

	field.CategoryID = category.ID
	if field.DisplayOrder == 0 {
		field.DisplayOrder = len(existing) + 1
	}

	if err := s.fields.AddField(ctx, field); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]any{
		"category_id": category.ID,
		"field":       field.Name,
		"type":        field.Type,
	}).Info("category field added")

	return field, nil
}

// UpdateFieldParams carries partial field-definition updates. The field
// name stays put; renaming would orphan values stored under it.
type UpdateFieldParams struct {
	Label        *string          `json:"label"`
	Type         *types.FieldType `json:"field_type"`
	Required     *bool            `json:"required"`
	Options      *[]string        `json:"options"`
	Placeholder  *string          `json:"placeholder"`
	DisplayOrder *int             `json:"display_order"`
}

func (s *Service) UpdateField(ctx context.Context, idOrName, fieldID string, params UpdateFieldParams) (*types.CategoryField, error) {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	if category.Kind != types.CategoryKindDynamic {
		return nil, types.ErrNotDynamicCategory
	}

	field, err := s.fields.FieldByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	if field.CategoryID != category.ID {
		return nil, types.ErrFieldNotFound
	}

	if params.Label != nil {
		field.Label = *params.Label
	}
	if params.Type != nil {
		field.Type = *params.Type
	}
	if params.Required != nil {
		field.Required = *params.Required
	}
	if params.Options != nil {
		field.Options = *params.Options
	}
	if params.Placeholder != nil {
		field.Placeholder = params.Placeholder
	}
	if params.DisplayOrder != nil {
		field.DisplayOrder = *params.DisplayOrder
	}

	if err := s.validateFieldDefinition(field); err != nil {
		return nil, err
	}

	if err := s.fields.UpdateField(ctx, field); err != nil {
		return nil, err
	}

	return field, nil
}

// DeleteField removes a field definition and every value stored under
// it, in one transaction. This is the only operation that discards
// submitted data, so it carries its own name instead of hiding behind
// an update.
func (s *Service) DeleteField(ctx context.Context, idOrName, fieldID string) error {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return err
	}

	if category.Kind != types.CategoryKindDynamic {
		return types.ErrNotDynamicCategory
	}

	if err := s.fields.DeleteField(ctx, category.ID, fieldID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]any{
		"category_id": category.ID,
		"field_id":    fieldID,
	}).Info("category field deleted")

	return nil
}

// ReorderFields replaces a dynamic category's display order with the
// given permutation of its field ids.
func (s *Service) ReorderFields(ctx context.Context, idOrName string, orderedFieldIDs []string) error {
	category, err := s.GetCategory(ctx, idOrName)
	if err != nil {
		return err
	}

	if category.Kind != types.CategoryKindDynamic {
		return types.ErrNotDynamicCategory
	}

	return s.fields.ReorderFields(ctx, category.ID, orderedFieldIDs)
}

func (s *Service) validateFieldDefinition(field *types.CategoryField) error {
	verr := &types.ValidationError{}

	if !categoryNamePattern.MatchString(field.Name) {
		verr.Add("name", types.ValidationCodeInvalidValue, "name must be lowercase snake_case, 2-64 characters")
	}

	if field.Label == "" {
		verr.Add("label", types.ValidationCodeMissingRequired, "label is required")
	}

	if !s.registry.Known(field.Type) {
		return types.ErrUnknownFieldType
	}

	if s.registry.RequiresOptions(field.Type) && len(field.Options) == 0 {
		verr.Add("options", types.ValidationCodeMissingRequired, fmt.Sprintf("%s fields need at least one option", field.Type))
	}

	return verr.ErrOrNil()
}
