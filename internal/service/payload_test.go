package service

import (
	"testing"
	"time"

	"causeboard/pkg/types"

	"github.com/stretchr/testify/assert"
)

func collectCodes(verr *types.ValidationError) map[string]string {
	codes := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		codes[f.Field] = f.Code
	}
	return codes
}

func TestValidateFoodDetails(t *testing.T) {
	verr := &types.ValidationError{}
	validateFoodDetails(validFoodDetails(), verr)
	assert.False(t, verr.HasErrors())

	past := time.Now().Add(-48 * time.Hour)
	verr = &types.ValidationError{}
	validateFoodDetails(&types.FoodDetails{
		FoodType:       "bread",
		Quantity:       -1,
		Unit:           "pallets",
		Temperature:    "lukewarm",
		ExpirationDate: &past,
	}, verr)

	codes := collectCodes(verr)
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["quantity"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["unit"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["temperature"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["expiration_date"])
}

func TestValidateClothesDetails(t *testing.T) {
	verr := &types.ValidationError{}
	validateClothesDetails(&types.ClothesDetails{
		ClothesType: "jackets",
		Quantity:    12,
		Condition:   "good",
		Season:      "winter",
		AgeGroup:    "adult",
	}, verr)
	assert.False(t, verr.HasErrors())

	verr = &types.ValidationError{}
	validateClothesDetails(&types.ClothesDetails{
		Quantity:  1,
		Condition: "worn_out",
		Season:    "monsoon",
		AgeGroup:  "toddler",
	}, verr)

	codes := collectCodes(verr)
	assert.Equal(t, types.ValidationCodeMissingRequired, codes["clothes_type"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["condition"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["season"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["age_group"])
}

func TestValidateEducationDetails(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	verr := &types.ValidationError{}
	validateEducationDetails(&types.EducationDetails{
		Topics:         []string{"literacy"},
		StartDate:      &start,
		EndDate:        &end,
		DeliveryMethod: "hybrid",
		PriceCents:     0,
	}, verr)
	assert.False(t, verr.HasErrors())

	verr = &types.ValidationError{}
	badEnd := start.AddDate(0, -1, 0)
	zero := 0
	validateEducationDetails(&types.EducationDetails{
		StartDate:      &start,
		EndDate:        &badEnd,
		DeliveryMethod: "carrier_pigeon",
		PriceCents:     -100,
		MaxStudents:    &zero,
	}, verr)

	codes := collectCodes(verr)
	assert.Equal(t, types.ValidationCodeMissingRequired, codes["topics"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["end_date"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["delivery_method"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["price_cents"])
	assert.Equal(t, types.ValidationCodeInvalidValue, codes["max_students"])
}
