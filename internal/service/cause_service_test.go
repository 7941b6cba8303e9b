package service

import (
	"context"
	"testing"
	"time"

	"causeboard/internal/store"
	"causeboard/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrorCodes(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)

	codes := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		codes[f.Field] = f.Code
	}
	return codes
}

func TestCreateCause_BuiltinFood(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())

	cause := &types.Cause{
		UserID:     "user-1",
		CategoryID: "cat-food",
		Title:      "Canned food drive",
		Description: "Forty cans for the shelter",
		Status:     types.CauseStatusActive, // ignored, moderation decides
	}

	got, err := h.svc.CreateCause(context.Background(), cause, types.CausePayloadInput{
		Food: validFoodDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, types.CauseStatusPending, got.Status)
	assert.Equal(t, types.CausePriorityMedium, got.Priority)

	require.Len(t, h.causes.created, 1)
	require.Len(t, h.food.upserted, 1)
	assert.Equal(t, got.ID, h.food.upserted[0].CauseID)
	assert.Equal(t, 1, h.txCalls)

	require.NotNil(t, got.Payload.Food)
	assert.Nil(t, got.Payload.Values)

	select {
	case event := <-h.notifier.events:
		assert.Equal(t, "cause.created", event.Type)
		assert.Equal(t, got.ID, event.CauseID)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestCreateCause_BuiltinValidationAggregates(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())

	cause := &types.Cause{
		UserID:     "user-1",
		CategoryID: "cat-food",
		Description: "No title and a broken payload",
	}

	_, err := h.svc.CreateCause(context.Background(), cause, types.CausePayloadInput{
		Food: &types.FoodDetails{
			Quantity:    0,
			Unit:        "bathtubs",
			Temperature: "ambient",
		},
	})

	codes := fieldErrorCodes(t, err)
	assert.Equal(t, types.ValidationCodeMissingRequired, codes["title"])
	assert.Equal(t, types.ValidationCodeMissingRequired, codes["food_type"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["quantity"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["unit"])

	// nothing written, nothing announced
	assert.Zero(t, h.txCalls)
	assert.Empty(t, h.causes.created)
	assert.Empty(t, h.food.upserted)
	assert.Empty(t, h.notifier.events)
}

func TestCreateCause_DynamicCategory(t *testing.T) {
	h := newTestHarness()
	h.addCategory(dynamicBicyclesCategory())
	h.fields.fields["cat-bicycles"] = bicycleFields()

	cause := &types.Cause{
		UserID:      "user-1",
		CategoryID:  "cat-bicycles",
		Title:       "Bikes for commuters",
		Description: "Refurbished bicycles",
	}

	got, err := h.svc.CreateCause(context.Background(), cause, types.CausePayloadInput{
		Values: map[string]string{"frame_size": "M", "gears": "21"},
	})
	require.NoError(t, err)

	require.Len(t, h.values.replaced, 1)
	staged := h.values.replaced[0]
	require.Len(t, staged, 2)
	for _, value := range staged {
		assert.Equal(t, got.ID, value.CauseID)
		assert.Equal(t, "cat-bicycles", value.CategoryID)
	}

	require.Len(t, got.Payload.Values, 2)
	assert.Equal(t, "frame_size", got.Payload.Values[0].Name)
	assert.Equal(t, "M", got.Payload.Values[0].Value)
	assert.Equal(t, float64(21), got.Payload.Values[1].Value)
}

func TestCreateCause_DynamicValidationAggregates(t *testing.T) {
	h := newTestHarness()
	h.addCategory(dynamicBicyclesCategory())
	h.fields.fields["cat-bicycles"] = bicycleFields()

	cause := &types.Cause{
		UserID:      "user-1",
		CategoryID:  "cat-bicycles",
		Title:       "Bikes",
		Description: "Bikes",
	}

	// required frame_size missing, gears malformed, one unknown field
	_, err := h.svc.CreateCause(context.Background(), cause, types.CausePayloadInput{
		Values: map[string]string{"gears": "abc", "wheel_size": "26"},
	})

	codes := fieldErrorCodes(t, err)
	assert.Equal(t, types.ValidationCodeMissingRequired, codes["frame_size"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["gears"])
	assert.Equal(t, types.ValidationCodeUnknownField, codes["wheel_size"])

	assert.Zero(t, h.txCalls)
	assert.Empty(t, h.values.replaced)
}

func TestCreateCause_PayloadMechanismMismatch(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.addCategory(dynamicBicyclesCategory())
	h.fields.fields["cat-bicycles"] = bicycleFields()

	base := func(categoryID string) *types.Cause {
		return &types.Cause{
			UserID:      "user-1",
			CategoryID:  categoryID,
			Title:       "Title",
			Description: "Description",
		}
	}

	// dynamic values against a built-in category
	_, err := h.svc.CreateCause(context.Background(), base("cat-food"), types.CausePayloadInput{
		Values: map[string]string{"frame_size": "M"},
	})
	assert.ErrorIs(t, err, types.ErrUnexpectedPayload)

	// typed details against a dynamic category
	_, err = h.svc.CreateCause(context.Background(), base("cat-bicycles"), types.CausePayloadInput{
		Food: validFoodDetails(),
	})
	assert.ErrorIs(t, err, types.ErrUnexpectedPayload)

	// built-in category with no payload at all
	_, err = h.svc.CreateCause(context.Background(), base("cat-food"), types.CausePayloadInput{})
	assert.ErrorIs(t, err, types.ErrMissingPayload)

	// two typed branches at once
	_, err = h.svc.CreateCause(context.Background(), base("cat-food"), types.CausePayloadInput{
		Food:    validFoodDetails(),
		Clothes: &types.ClothesDetails{},
	})
	assert.ErrorIs(t, err, types.ErrUnexpectedPayload)
}

func TestCreateCause_InactiveCategory(t *testing.T) {
	h := newTestHarness()
	category := builtinFoodCategory()
	category.IsActive = false
	h.addCategory(category)

	_, err := h.svc.CreateCause(context.Background(), &types.Cause{
		CategoryID:  "cat-food",
		Title:       "Title",
		Description: "Description",
	}, types.CausePayloadInput{Food: validFoodDetails()})

	assert.ErrorIs(t, err, types.ErrCategoryInactive)
}

func TestCreateCause_ConcurrentFieldDeletion(t *testing.T) {
	h := newTestHarness()
	h.addCategory(dynamicBicyclesCategory())
	h.fields.fields["cat-bicycles"] = bicycleFields()
	h.values.replaceErr = types.ErrFieldNotFound

	_, err := h.svc.CreateCause(context.Background(), &types.Cause{
		CategoryID:  "cat-bicycles",
		Title:       "Bikes",
		Description: "Bikes",
	}, types.CausePayloadInput{
		Values: map[string]string{"frame_size": "M"},
	})

	assert.ErrorIs(t, err, types.ErrFieldNotFound)
	assert.Empty(t, h.notifier.events)
}

func TestUpdateCause_CategoryImmutable(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.causes.byID["cause-1"] = &types.Cause{
		ID:         "cause-1",
		CategoryID: "cat-food",
		Title:      "Drive",
		Description: "Drive",
		Priority:   types.CausePriorityMedium,
	}

	other := "cat-clothes"
	_, err := h.svc.UpdateCause(context.Background(), "cause-1", UpdateCauseParams{
		CategoryID: &other,
	})

	assert.ErrorIs(t, err, types.ErrCategoryImmutable)
	assert.Empty(t, h.causes.updated)
}

func TestUpdateCause_MergesAndRevalidates(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.food.details = validFoodDetails()
	h.causes.byID["cause-1"] = &types.Cause{
		ID:          "cause-1",
		UserID:      "user-1",
		CategoryID:  "cat-food",
		Title:       "Drive",
		Description: "Drive",
		Status:      types.CauseStatusPending,
		Priority:    types.CausePriorityMedium,
	}

	title := "Bigger drive"
	status := types.CauseStatusActive
	got, err := h.svc.UpdateCause(context.Background(), "cause-1", UpdateCauseParams{
		Title:  &title,
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bigger drive", got.Title)
	assert.Equal(t, types.CauseStatusActive, got.Status)
	assert.Equal(t, "Drive", got.Description)
	require.Len(t, h.causes.updated, 1)

	// payload untouched, so the stored details come back
	require.NotNil(t, got.Payload.Food)

	select {
	case event := <-h.notifier.events:
		assert.Equal(t, "cause.updated", event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestUpdateCause_InvalidStatus(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.causes.byID["cause-1"] = &types.Cause{
		ID:          "cause-1",
		CategoryID:  "cat-food",
		Title:       "Drive",
		Description: "Drive",
		Priority:    types.CausePriorityMedium,
	}

	bogus := types.CauseStatus("PAUSED")
	_, err := h.svc.UpdateCause(context.Background(), "cause-1", UpdateCauseParams{Status: &bogus})

	codes := fieldErrorCodes(t, err)
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["status"])
	assert.Empty(t, h.causes.updated)
}

func TestGetCause_DynamicResolvesTypes(t *testing.T) {
	h := newTestHarness()
	h.addCategory(dynamicBicyclesCategory())
	h.causes.byID["cause-1"] = &types.Cause{ID: "cause-1", CategoryID: "cat-bicycles"}
	h.values.resolved = []*store.JoinedValue{
		{FieldID: "fld-frame", Name: "frame_size", Label: "Frame size", Type: types.FieldTypeSelect, Options: []string{"S", "M", "L"}, Value: "M"},
		{FieldID: "fld-gears", Name: "gears", Label: "Gears", Type: types.FieldTypeNumber, Value: "21"},
	}

	got, err := h.svc.GetCause(context.Background(), "cause-1")
	require.NoError(t, err)

	require.Len(t, got.Payload.Values, 2)
	assert.Equal(t, "M", got.Payload.Values[0].Value)
	assert.Equal(t, float64(21), got.Payload.Values[1].Value)
	assert.Equal(t, "21", got.Payload.Values[1].Raw)
}

func TestGetCause_BuiltinReadsDetailTable(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.causes.byID["cause-1"] = &types.Cause{ID: "cause-1", CategoryID: "cat-food"}
	h.food.details = validFoodDetails()

	got, err := h.svc.GetCause(context.Background(), "cause-1")
	require.NoError(t, err)

	require.NotNil(t, got.Payload.Food)
	assert.Equal(t, "canned goods", got.Payload.Food.FoodType)
	assert.Nil(t, got.Payload.Values)
}

func TestListCauses_PayloadOnRequest(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.food.details = validFoodDetails()
	h.causes.listed = []*types.Cause{
		{ID: "cause-1", CategoryID: "cat-food"},
		{ID: "cause-2", CategoryID: "cat-food"},
	}

	// default: base records only
	got, err := h.svc.ListCauses(context.Background(), types.CauseFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Payload.Food)

	// explicit opt-in resolves per row
	got, err = h.svc.ListCauses(context.Background(), types.CauseFilter{WithPayload: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotNil(t, got[0].Payload.Food)
	assert.NotNil(t, got[1].Payload.Food)
}

func TestDeleteCause_RemovesPayload(t *testing.T) {
	h := newTestHarness()
	h.addCategory(dynamicBicyclesCategory())
	h.causes.byID["cause-1"] = &types.Cause{ID: "cause-1", UserID: "user-1", CategoryID: "cat-bicycles"}

	require.NoError(t, h.svc.DeleteCause(context.Background(), "cause-1"))

	assert.Equal(t, []string{"cause-1"}, h.values.deleted)
	assert.Equal(t, []string{"cause-1"}, h.causes.deleted)

	select {
	case event := <-h.notifier.events:
		assert.Equal(t, "cause.deleted", event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestDeleteCause_Builtin(t *testing.T) {
	h := newTestHarness()
	h.addCategory(builtinFoodCategory())
	h.causes.byID["cause-1"] = &types.Cause{ID: "cause-1", CategoryID: "cat-food"}

	require.NoError(t, h.svc.DeleteCause(context.Background(), "cause-1"))

	assert.Equal(t, []string{"cause-1"}, h.food.deleted)
	assert.Empty(t, h.values.deleted)
}

func TestNotifierFailureDoesNotSurface(t *testing.T) {
	h := newTestHarness()
	h.notifier.err = assert.AnError
	h.addCategory(builtinFoodCategory())

	_, err := h.svc.CreateCause(context.Background(), &types.Cause{
		CategoryID:  "cat-food",
		Title:       "Drive",
		Description: "Drive",
	}, types.CausePayloadInput{Food: validFoodDetails()})

	require.NoError(t, err)

	select {
	case <-h.notifier.events:
	case <-time.After(time.Second):
		t.Fatal("notifier was never invoked")
	}
}
