package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"causeboard/pkg/types"

	"github.com/jackc/pgx/v5"
)

var validPriorities = map[types.CausePriority]bool{
	types.CausePriorityLow:    true,
	types.CausePriorityMedium: true,
	types.CausePriorityHigh:   true,
	types.CausePriorityUrgent: true,
}

var validStatuses = map[types.CauseStatus]bool{
	types.CauseStatusPending:   true,
	types.CauseStatusActive:    true,
	types.CauseStatusCompleted: true,
	types.CauseStatusSuspended: true,
	types.CauseStatusArchived:  true,
}

// CreateCause validates the base record and the category payload against
// the category's schema, then persists everything in one transaction. On
// any validation failure nothing is written and the caller receives the
// complete field-addressable error list.
func (s *Service) CreateCause(ctx context.Context, cause *types.Cause, payload types.CausePayloadInput) (*types.CauseWithPayload, error) {

	category, err := s.resolveActiveCategory(ctx, cause.CategoryID)
	if err != nil {
		return nil, err
	}

	// new causes always enter moderation
	cause.Status = types.CauseStatusPending
	if cause.Priority == "" {
		cause.Priority = types.CausePriorityMedium
	}

	verr := &types.ValidationError{}
	s.validateBase(ctx, cause, verr)

	apply, resolved, err := s.stagePayload(ctx, category, cause, payload, verr)
	if err != nil {
		return nil, err
	}

	if verr.HasErrors() {
		return nil, verr
	}

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.causes.CreateTx(ctx, tx, cause); err != nil {
			return err
		}
		return apply(tx)
	})
	if err != nil {
		return nil, s.mapTxError(err)
	}

	s.emitChange(ChangeEvent{
		Type:       "cause.created",
		CauseID:    cause.ID,
		CategoryID: category.ID,
		UserID:     cause.UserID,
		OccurredAt: time.Now(),
	})

	return &types.CauseWithPayload{Cause: *cause, Payload: resolved}, nil
}

// UpdateCauseParams carries partial base-field updates. Nil means "leave
// as is"; a nil Payload leaves the category payload untouched.
type UpdateCauseParams struct {
	Title            *string                  `json:"title"`
	Description      *string                  `json:"description"`
	ShortDescription *string                  `json:"short_description"`
	Location         *string                  `json:"location"`
	Latitude         *float64                 `json:"latitude"`
	Longitude        *float64                 `json:"longitude"`
	Status           *types.CauseStatus       `json:"status"`
	Priority         *types.CausePriority     `json:"priority"`
	Tags             *[]string                `json:"tags"`
	Gallery          *[]string                `json:"gallery"`
	GoalCount        *int                     `json:"goal_count"`
	ProgressCount    *int                     `json:"progress_count"`
	ContactEmail     *string                  `json:"contact_email"`
	ContactPhone     *string                  `json:"contact_phone"`
	ExpiresAt        *time.Time               `json:"expires_at"`
	CompletedAt      *time.Time               `json:"completed_at"`
	CategoryID       *string                  `json:"category_id"`
	Payload          *types.CausePayloadInput `json:"payload"`
}

// UpdateCause mirrors create, except the cause's category is immutable:
// a request naming a different category fails before any validation.
func (s *Service) UpdateCause(ctx context.Context, causeID string, params UpdateCauseParams) (*types.CauseWithPayload, error) {

	cause, err := s.causes.CauseByID(ctx, causeID)
	if err != nil {
		return nil, err
	}

	if params.CategoryID != nil && *params.CategoryID != cause.CategoryID {
		return nil, types.ErrCategoryImmutable
	}

	category, err := s.resolveActiveCategory(ctx, cause.CategoryID)
	if err != nil {
		return nil, err
	}

	mergeParams(cause, params)

	verr := &types.ValidationError{}
	s.validateBase(ctx, cause, verr)

	if params.Status != nil && !validStatuses[*params.Status] {
		verr.Add("status", types.ValidationCodeInvalidValue, fmt.Sprintf("%q is not a valid status", *params.Status))
	}

	apply := func(pgx.Tx) error { return nil }
	var resolved types.CausePayload

	if params.Payload != nil {
		apply, resolved, err = s.stagePayload(ctx, category, cause, *params.Payload, verr)
		if err != nil {
			return nil, err
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.causes.UpdateTx(ctx, tx, cause); err != nil {
			return err
		}
		return apply(tx)
	})
	if err != nil {
		return nil, s.mapTxError(err)
	}

	s.emitChange(ChangeEvent{
		Type:       "cause.updated",
		CauseID:    cause.ID,
		CategoryID: category.ID,
		UserID:     cause.UserID,
		OccurredAt: time.Now(),
	})

	if params.Payload == nil {
		return s.GetCause(ctx, cause.ID)
	}

	return &types.CauseWithPayload{Cause: *cause, Payload: resolved}, nil
}

// GetCause returns the base record plus its resolved category payload.
// The payload read is exactly one additional query against whichever
// mechanism the category's discriminator selects, never both.
func (s *Service) GetCause(ctx context.Context, causeID string) (*types.CauseWithPayload, error) {
	cause, err := s.causes.CauseByID(ctx, causeID)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.CategoryByID(ctx, cause.CategoryID)
	if err != nil {
		return nil, err
	}

	payload, err := s.resolvePayload(ctx, category, cause.ID)
	if err != nil {
		return nil, err
	}

	return &types.CauseWithPayload{Cause: *cause, Payload: payload}, nil
}

// ListCauses filters on base-cause columns only. Payloads are resolved
// per row when the filter explicitly asks for them.
func (s *Service) ListCauses(ctx context.Context, filter types.CauseFilter) ([]*types.CauseWithPayload, error) {
	causes, err := s.causes.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*types.CauseWithPayload, 0, len(causes))

	categories := make(map[string]*types.Category)
	for _, cause := range causes {
		item := &types.CauseWithPayload{Cause: *cause}

		if filter.WithPayload {
			category, ok := categories[cause.CategoryID]
			if !ok {
				category, err = s.categories.CategoryByID(ctx, cause.CategoryID)
				if err != nil {
					return nil, err
				}
				categories[cause.CategoryID] = category
			}

			item.Payload, err = s.resolvePayload(ctx, category, cause.ID)
			if err != nil {
				return nil, err
			}
		}

		out = append(out, item)
	}

	return out, nil
}

// DeleteCause removes the cause and its category payload in one
// transaction. Storage-level cascades cover the same ground if the core
// is bypassed.
func (s *Service) DeleteCause(ctx context.Context, causeID string) error {
	cause, err := s.causes.CauseByID(ctx, causeID)
	if err != nil {
		return err
	}

	category, err := s.categories.CategoryByID(ctx, cause.CategoryID)
	if err != nil {
		return err
	}

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		switch category.Kind {
		case types.CategoryKindBuiltin:
			switch category.Name {
			case types.CategoryFood:
				if err := s.food.DeleteTx(ctx, tx, causeID); err != nil {
					return err
				}
			case types.CategoryClothes:
				if err := s.clothes.DeleteTx(ctx, tx, causeID); err != nil {
					return err
				}
			case types.CategoryEducation:
				if err := s.education.DeleteTx(ctx, tx, causeID); err != nil {
					return err
				}
			}
		case types.CategoryKindDynamic:
			if err := s.values.DeleteByCauseTx(ctx, tx, causeID); err != nil {
				return err
			}
		}

		return s.causes.DeleteTx(ctx, tx, causeID)
	})
	if err != nil {
		return s.mapTxError(err)
	}

	s.emitChange(ChangeEvent{
		Type:       "cause.deleted",
		CauseID:    causeID,
		CategoryID: category.ID,
		UserID:     cause.UserID,
		OccurredAt: time.Now(),
	})

	return nil
}

func (s *Service) resolveActiveCategory(ctx context.Context, categoryID string) (*types.Category, error) {
	category, err := s.categories.CategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if !category.IsActive {
		return nil, types.ErrCategoryInactive
	}

	return category, nil
}

func (s *Service) validateBase(ctx context.Context, cause *types.Cause, verr *types.ValidationError) {
	if cause.Title == "" {
		verr.Add("title", types.ValidationCodeMissingRequired, "title is required")
	}

	if cause.Description == "" {
		verr.Add("description", types.ValidationCodeMissingRequired, "description is required")
	}

	if !validPriorities[cause.Priority] {
		verr.Add("priority", types.ValidationCodeInvalidValue, fmt.Sprintf("%q is not a valid priority", cause.Priority))
	}

	if cause.GoalCount < 0 {
		verr.Add("goal_count", types.ValidationCodeInvalidValue, "goal must not be negative")
	}

	for _, ref := range cause.Gallery {
		if ref == "" {
			verr.Add("gallery", types.ValidationCodeInvalidValue, "empty media reference")
			continue
		}

		if s.media != nil {
			if err := s.media.Verify(ctx, ref); err != nil {
				verr.Add("gallery", types.ValidationCodeInvalidValue, fmt.Sprintf("unknown media reference %q", ref))
			}
		}
	}
}

// stagePayload validates the submitted payload against whichever
// mechanism the category uses and returns the write to run inside the
// caller's transaction. Selection happens here, once, on the
// discriminator; nothing downstream type-checks payloads.
func (s *Service) stagePayload(
	ctx context.Context,
	category *types.Category,
	cause *types.Cause,
	payload types.CausePayloadInput,
	verr *types.ValidationError,
) (func(tx pgx.Tx) error, types.CausePayload, error) {

	noop := func(pgx.Tx) error { return nil }

	switch category.Kind {
	case types.CategoryKindBuiltin:
		if payload.Values != nil {
			return noop, types.CausePayload{}, types.ErrUnexpectedPayload
		}
		return s.stageBuiltinPayload(ctx, category, cause, payload, verr)

	case types.CategoryKindDynamic:
		if payload.Food != nil || payload.Clothes != nil || payload.Education != nil {
			return noop, types.CausePayload{}, types.ErrUnexpectedPayload
		}

		fields, err := s.fields.FieldsByCategory(ctx, category.ID)
		if err != nil {
			return noop, types.CausePayload{}, err
		}

		staged, resolvedValues := s.validateDynamicValues(cause.ID, category.ID, fields, payload.Values, verr)
		if verr.HasErrors() {
			return noop, types.CausePayload{}, nil
		}

		apply := func(tx pgx.Tx) error {
			// ids are assigned by CreateTx before this runs
			for _, value := range staged {
				value.CauseID = cause.ID
			}
			return s.values.ReplaceTx(ctx, tx, staged)
		}

		return apply, types.CausePayload{Values: resolvedValues}, nil
	}

	return noop, types.CausePayload{}, fmt.Errorf("category %s has unknown kind %q", category.ID, category.Kind)
}

func (s *Service) stageBuiltinPayload(
	ctx context.Context,
	category *types.Category,
	cause *types.Cause,
	payload types.CausePayloadInput,
	verr *types.ValidationError,
) (func(tx pgx.Tx) error, types.CausePayload, error) {

	noop := func(pgx.Tx) error { return nil }

	switch category.Name {
	case types.CategoryFood:
		if payload.Food == nil {
			return noop, types.CausePayload{}, types.ErrMissingPayload
		}
		if payload.Clothes != nil || payload.Education != nil {
			return noop, types.CausePayload{}, types.ErrUnexpectedPayload
		}

		details := payload.Food
		validateFoodDetails(details, verr)
		if verr.HasErrors() {
			return noop, types.CausePayload{}, nil
		}

		apply := func(tx pgx.Tx) error {
			details.CauseID = cause.ID
			return s.food.UpsertTx(ctx, tx, details)
		}
		return apply, types.CausePayload{Food: details}, nil

	case types.CategoryClothes:
		if payload.Clothes == nil {
			return noop, types.CausePayload{}, types.ErrMissingPayload
		}
		if payload.Food != nil || payload.Education != nil {
			return noop, types.CausePayload{}, types.ErrUnexpectedPayload
		}

		details := payload.Clothes
		validateClothesDetails(details, verr)
		if verr.HasErrors() {
			return noop, types.CausePayload{}, nil
		}

		apply := func(tx pgx.Tx) error {
			details.CauseID = cause.ID
			return s.clothes.UpsertTx(ctx, tx, details)
		}
		return apply, types.CausePayload{Clothes: details}, nil

	case types.CategoryEducation:
		if payload.Education == nil {
			return noop, types.CausePayload{}, types.ErrMissingPayload
		}
		if payload.Food != nil || payload.Clothes != nil {
			return noop, types.CausePayload{}, types.ErrUnexpectedPayload
		}

		details := payload.Education
		validateEducationDetails(details, verr)
		if verr.HasErrors() {
			return noop, types.CausePayload{}, nil
		}

		apply := func(tx pgx.Tx) error {
			details.CauseID = cause.ID
			return s.education.UpsertTx(ctx, tx, details)
		}
		return apply, types.CausePayload{Education: details}, nil
	}

	return noop, types.CausePayload{}, fmt.Errorf("no detail store for built-in category %q", category.Name)
}

func (s *Service) resolvePayload(ctx context.Context, category *types.Category, causeID string) (types.CausePayload, error) {
	switch category.Kind {
	case types.CategoryKindBuiltin:
		switch category.Name {
		case types.CategoryFood:
			details, err := s.food.DetailsByCause(ctx, causeID)
			return types.CausePayload{Food: details}, err
		case types.CategoryClothes:
			details, err := s.clothes.DetailsByCause(ctx, causeID)
			return types.CausePayload{Clothes: details}, err
		case types.CategoryEducation:
			details, err := s.education.DetailsByCause(ctx, causeID)
			return types.CausePayload{Education: details}, err
		}
		return types.CausePayload{}, fmt.Errorf("no detail store for built-in category %q", category.Name)

	case types.CategoryKindDynamic:
		joined, err := s.values.ResolvedByCause(ctx, causeID)
		if err != nil {
			return types.CausePayload{}, err
		}

		resolved := make([]types.ResolvedValue, 0, len(joined))
		for _, row := range joined {
			field := types.CategoryField{
				ID:      row.FieldID,
				Name:    row.Name,
				Label:   row.Label,
				Type:    row.Type,
				Options: row.Options,
			}

			typed, err := s.registry.Validate(field, row.Value)
			if err != nil {
				// stored under an older schema; surface the raw value
				s.logger.WithError(err).WithFields(map[string]any{
					"cause_id": causeID,
					"field":    row.Name,
				}).Warn("stored value no longer parses under field type")
				typed = row.Value
			}

			resolved = append(resolved, types.ResolvedValue{
				FieldID: row.FieldID,
				Name:    row.Name,
				Label:   row.Label,
				Type:    row.Type,
				Raw:     row.Value,
				Value:   typed,
			})
		}

		return types.CausePayload{Values: resolved}, nil
	}

	return types.CausePayload{}, fmt.Errorf("category %s has unknown kind %q", category.ID, category.Kind)
}

// mapTxError classifies transaction failures: constraint violations from
// concurrent schema changes become conflict errors, everything else is
// surfaced as the opaque storage failure it is.
func (s *Service) mapTxError(err error) error {
	if errors.Is(err, types.ErrFieldNotFound) || errors.Is(err, types.ErrCauseNotFound) {
		return err
	}

	if isForeignKeyViolation(err) {
		return types.ErrConcurrentModification
	}

	s.logger.WithError(err).Error("cause write transaction failed")
	return fmt.Errorf("cause write failed: %w", err)
}

func mergeParams(cause *types.Cause, params UpdateCauseParams) {
	if params.Title != nil {
		cause.Title = *params.Title
	}
	if params.Description != nil {
		cause.Description = *params.Description
	}
	if params.ShortDescription != nil {
		cause.ShortDescription = params.ShortDescription
	}
	if params.Location != nil {
		cause.Location = *params.Location
	}
	if params.Latitude != nil {
		cause.Latitude = params.Latitude
	}
	if params.Longitude != nil {
		cause.Longitude = params.Longitude
	}
	if params.Status != nil {
		cause.Status = *params.Status
	}
	if params.Priority != nil {
		cause.Priority = *params.Priority
	}
	if params.Tags != nil {
		cause.Tags = *params.Tags
	}
	if params.Gallery != nil {
		cause.Gallery = *params.Gallery
	}
	if params.GoalCount != nil {
		cause.GoalCount = *params.GoalCount
	}
	if params.ProgressCount != nil {
		cause.ProgressCount = *params.ProgressCount
	}
	if params.ContactEmail != nil {
		cause.ContactEmail = params.ContactEmail
	}
	if params.ContactPhone != nil {
		cause.ContactPhone = params.ContactPhone
	}
	if params.ExpiresAt != nil {
		cause.ExpiresAt = params.ExpiresAt
	}
	if params.CompletedAt != nil {
		cause.CompletedAt = params.CompletedAt
	}
}
