package service

import (
	"fmt"
	"sort"
	"time"

	"causeboard/pkg/types"
)

// Allowed value sets for the built-in detail schemas.
var (
	foodUnits        = []string{"items", "meals", "kg", "lbs", "boxes"}
	foodTemperatures = []string{"ambient", "chilled", "frozen"}

	clothesConditions = []string{"new", "like_new", "good", "fair"}
	clothesSeasons    = []string{"all", "summer", "winter", "spring", "fall"}
	clothesAgeGroups  = []string{"infant", "child", "teen", "adult", "senior"}

	educationDeliveryMethods = []string{"in_person", "online", "hybrid"}
)

func oneOf(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

func validateFoodDetails(details *types.FoodDetails, verr *types.ValidationError) {
	if details.FoodType == "" {
		verr.Add("food_type", types.ValidationCodeMissingRequired, "food type is required")
	}

	if details.Quantity <= 0 {
		verr.Add("quantity", types.ValidationCodeInvalidValue, "quantity must be greater than zero")
	}

	if !oneOf(details.Unit, foodUnits) {
		verr.Add("unit", types.ValidationCodeInvalidValue, fmt.Sprintf("unit must be one of %v", foodUnits))
	}

	if !oneOf(details.Temperature, foodTemperatures) {
		verr.Add("temperature", types.ValidationCodeInvalidValue, fmt.Sprintf("temperature must be one of %v", foodTemperatures))
	}

	if details.ExpirationDate != nil && details.ExpirationDate.Before(time.Now().Truncate(24*time.Hour)) {
		verr.Add("expiration_date", types.ValidationCodeInvalidValue, "expiration date must not be in the past")
	}
}

func validateClothesDetails(details *types.ClothesDetails, verr *types.ValidationError) {
	if details.ClothesType == "" {
		verr.Add("clothes_type", types.ValidationCodeMissingRequired, "clothes type is required")
	}

	if details.Quantity <= 0 {
		verr.Add("quantity", types.ValidationCodeInvalidValue, "quantity must be greater than zero")
	}

	if !oneOf(details.Condition, clothesConditions) {
		verr.Add("condition", types.ValidationCodeInvalidValue, fmt.Sprintf("condition must be one of %v", clothesConditions))
	}

	if !oneOf(details.Season, clothesSeasons) {
		verr.Add("season", types.ValidationCodeInvalidValue, fmt.Sprintf("season must be one of %v", clothesSeasons))
	}

	if !oneOf(details.AgeGroup, clothesAgeGroups) {
		verr.Add("age_group", types.ValidationCodeInvalidValue, fmt.Sprintf("age group must be one of %v", clothesAgeGroups))
	}
}

func validateEducationDetails(details *types.EducationDetails, verr *types.ValidationError) {
	if len(details.Topics) == 0 {
		verr.Add("topics", types.ValidationCodeMissingRequired, "at least one topic is required")
	}

	if details.StartDate != nil && details.EndDate != nil && details.EndDate.Before(*details.StartDate) {
		verr.Add("end_date", types.ValidationCodeInvalidValue, "end date must not be before start date")
	}

	if !oneOf(details.DeliveryMethod, educationDeliveryMethods) {
		verr.Add("delivery_method", types.ValidationCodeInvalidValue, fmt.Sprintf("delivery method must be one of %v", educationDeliveryMethods))
	}

	if details.PriceCents < 0 {
		verr.Add("price_cents", types.ValidationCodeInvalidValue, "price must not be negative")
	}

	if details.MaxStudents != nil && *details.MaxStudents <= 0 {
		verr.Add("max_students", types.ValidationCodeInvalidValue, "max students must be greater than zero")
	}
}

// validateDynamicValues checks a submitted field-name→raw-value set
// against the category's schema: every error is collected before
// returning so the caller sees the complete list, and nothing is staged
// unless the whole set passes.
func (s *Service) validateDynamicValues(
	causeID, categoryID string,
	fields []*types.CategoryField,
	submitted map[string]string,
	verr *types.ValidationError,
) ([]*types.CauseCategoryValue, []types.ResolvedValue) {

	byName := make(map[string]*types.CategoryField, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	// stable iteration keeps the error list deterministic
	names := make([]string, 0, len(submitted))
	for name := range submitted {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := byName[name]; !ok {
			verr.Add(name, types.ValidationCodeUnknownField, "field is not defined on this category")
		}
	}

	staged := make([]*types.CauseCategoryValue, 0, len(submitted))
	resolved := make([]types.ResolvedValue, 0, len(submitted))

	for _, field := range fields {
		raw, present := submitted[field.Name]

		if !present || raw == "" {
			if field.Required {
				verr.Add(field.Name, types.ValidationCodeMissingRequired, "field is required")
			}
			continue
		}

		typed, err := s.registry.Validate(*field, raw)
		if err != nil {
			verr.Add(field.Name, types.ValidationCodeInvalidValue, err.Error())
			continue
		}

		staged = append(staged, &types.CauseCategoryValue{
			CauseID:    causeID,
			CategoryID: categoryID,
			FieldID:    field.ID,
			Value:      raw,
		})

		resolved = append(resolved, types.ResolvedValue{
			FieldID: field.ID,
			Name:    field.Name,
			Label:   field.Label,
			Type:    field.Type,
			Raw:     raw,
			Value:   typed,
		})
	}

	if verr.HasErrors() {
		return nil, nil
	}

	return staged, resolved
}
