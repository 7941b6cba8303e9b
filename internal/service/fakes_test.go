package service

import (
	"context"
	"io"

	"causeboard/internal/fieldtype"
	"causeboard/internal/store"
	"causeboard/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// In-memory store fakes. Tx parameters are ignored; the test service's
// runTx just invokes the callback, so atomicity itself is exercised
// against a real database elsewhere and the orchestration logic here.

type fakeCategoryStore struct {
	byID    map[string]*types.Category
	created []*types.Category
	updated []*types.Category
}

func (f *fakeCategoryStore) Categories(_ context.Context, activeOnly bool) ([]*types.Category, error) {
	var out []*types.Category
	for _, c := range f.byID {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryStore) CategoryByID(_ context.Context, id string) (*types.Category, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, types.ErrCategoryNotFound
}

func (f *fakeCategoryStore) CategoryByName(_ context.Context, name string) (*types.Category, error) {
	for _, c := range f.byID {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, types.ErrCategoryNotFound
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, category *types.Category) error {
	for _, c := range f.byID {
		if c.Name == category.Name {
			return types.ErrDuplicateName
		}
	}
	if category.ID == "" {
		category.ID = "cat-" + category.Name
	}
	if f.byID == nil {
		f.byID = map[string]*types.Category{}
	}
	f.byID[category.ID] = category
	f.created = append(f.created, category)
	return nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, category *types.Category) error {
	if _, ok := f.byID[category.ID]; !ok {
		return types.ErrCategoryNotFound
	}
	f.byID[category.ID] = category
	f.updated = append(f.updated, category)
	return nil
}

type fakeFieldStore struct {
	fields    map[string][]*types.CategoryField // keyed by category id
	reordered [][]string
	deleted   []string
}

func (f *fakeFieldStore) FieldsByCategory(_ context.Context, categoryID string) ([]*types.CategoryField, error) {
	return f.fields[categoryID], nil
}

func (f *fakeFieldStore) FieldByID(_ context.Context, fieldID string) (*types.CategoryField, error) {
	for _, list := range f.fields {
		for _, field := range list {
			if field.ID == fieldID {
				return field, nil
			}
		}
	}
	return nil, types.ErrFieldNotFound
}

func (f *fakeFieldStore) AddField(_ context.Context, field *types.CategoryField) error {
	for _, existing := range f.fields[field.CategoryID] {
		if existing.Name == field.Name {
			return types.ErrFieldNameTaken
		}
	}
	if field.ID == "" {
		field.ID = "fld-" + field.Name
	}
	if f.fields == nil {
		f.fields = map[string][]*types.CategoryField{}
	}
	f.fields[field.CategoryID] = append(f.fields[field.CategoryID], field)
	return nil
}

func (f *fakeFieldStore) UpdateField(_ context.Context, field *types.CategoryField) error {
	list := f.fields[field.CategoryID]
	for i, existing := range list {
		if existing.ID == field.ID {
			list[i] = field
			return nil
		}
	}
	return types.ErrFieldNotFound
}

func (f *fakeFieldStore) DeleteField(_ context.Context, categoryID, fieldID string) error {
	list := f.fields[categoryID]
	for i, existing := range list {
		if existing.ID == fieldID {
			f.fields[categoryID] = append(list[:i], list[i+1:]...)
			f.deleted = append(f.deleted, fieldID)
			return nil
		}
	}
	return types.ErrFieldNotFound
}

func (f *fakeFieldStore) ReorderFields(_ context.Context, categoryID string, orderedFieldIDs []string) error {
	if len(orderedFieldIDs) != len(f.fields[categoryID]) {
		return types.ErrFieldSetMismatch
	}
	f.reordered = append(f.reordered, orderedFieldIDs)
	return nil
}

type fakeCauseStore struct {
	byID    map[string]*types.Cause
	created []*types.Cause
	updated []*types.Cause
	deleted []string
	listed  []*types.Cause
}

func (f *fakeCauseStore) CauseByID(_ context.Context, causeID string) (*types.Cause, error) {
	if c, ok := f.byID[causeID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, types.ErrCauseNotFound
}

func (f *fakeCauseStore) List(_ context.Context, _ types.CauseFilter) ([]*types.Cause, error) {
	return f.listed, nil
}

func (f *fakeCauseStore) CreateTx(_ context.Context, _ store.Querier, cause *types.Cause) error {
	if cause.ID == "" {
		cause.ID = "cause-1"
	}
	if f.byID == nil {
		f.byID = map[string]*types.Cause{}
	}
	f.byID[cause.ID] = cause
	f.created = append(f.created, cause)
	return nil
}

func (f *fakeCauseStore) UpdateTx(_ context.Context, _ store.Querier, cause *types.Cause) error {
	if _, ok := f.byID[cause.ID]; !ok {
		return types.ErrCauseNotFound
	}
	f.byID[cause.ID] = cause
	f.updated = append(f.updated, cause)
	return nil
}

func (f *fakeCauseStore) DeleteTx(_ context.Context, _ store.Querier, causeID string) error {
	delete(f.byID, causeID)
	f.deleted = append(f.deleted, causeID)
	return nil
}

type fakeValueStore struct {
	resolved  []*store.JoinedValue
	replaced  [][]*types.CauseCategoryValue
	deleted   []string
	replaceErr error
}

func (f *fakeValueStore) ResolvedByCause(_ context.Context, _ string) ([]*store.JoinedValue, error) {
	return f.resolved, nil
}

func (f *fakeValueStore) ReplaceTx(_ context.Context, _ pgx.Tx, values []*types.CauseCategoryValue) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, values)
	return nil
}

func (f *fakeValueStore) DeleteByCauseTx(_ context.Context, _ pgx.Tx, causeID string) error {
	f.deleted = append(f.deleted, causeID)
	return nil
}

type fakeFoodStore struct {
	details  *types.FoodDetails
	upserted []*types.FoodDetails
	deleted  []string
}

func (f *fakeFoodStore) DetailsByCause(_ context.Context, _ string) (*types.FoodDetails, error) {
	return f.details, nil
}

func (f *fakeFoodStore) UpsertTx(_ context.Context, _ store.Querier, details *types.FoodDetails) error {
	f.upserted = append(f.upserted, details)
	f.details = details
	return nil
}

func (f *fakeFoodStore) DeleteTx(_ context.Context, _ store.Querier, causeID string) error {
	f.deleted = append(f.deleted, causeID)
	return nil
}

type fakeClothesStore struct {
	details  *types.ClothesDetails
	upserted []*types.ClothesDetails
	deleted  []string
}

func (f *fakeClothesStore) DetailsByCause(_ context.Context, _ string) (*types.ClothesDetails, error) {
	return f.details, nil
}

func (f *fakeClothesStore) UpsertTx(_ context.Context, _ store.Querier, details *types.ClothesDetails) error {
	f.upserted = append(f.upserted, details)
	f.details = details
	return nil
}

func (f *fakeClothesStore) DeleteTx(_ context.Context, _ store.Querier, causeID string) error {
	f.deleted = append(f.deleted, causeID)
	return nil
}

type fakeEducationStore struct {
	details  *types.EducationDetails
	upserted []*types.EducationDetails
	deleted  []string
}

func (f *fakeEducationStore) DetailsByCause(_ context.Context, _ string) (*types.EducationDetails, error) {
	return f.details, nil
}

func (f *fakeEducationStore) UpsertTx(_ context.Context, _ store.Querier, details *types.EducationDetails) error {
	f.upserted = append(f.upserted, details)
	f.details = details
	return nil
}

func (f *fakeEducationStore) DeleteTx(_ context.Context, _ store.Querier, causeID string) error {
	f.deleted = append(f.deleted, causeID)
	return nil
}

type fakeNotifier struct {
	events chan ChangeEvent
	err    error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan ChangeEvent, 8)}
}

func (f *fakeNotifier) CauseChanged(_ context.Context, event ChangeEvent) error {
	f.events <- event
	return f.err
}

// testHarness bundles a service wired against fakes. runTx invokes the
// callback directly; txCalls counts how many transactions ran.
type testHarness struct {
	svc        *Service
	categories *fakeCategoryStore
	fields     *fakeFieldStore
	causes     *fakeCauseStore
	values     *fakeValueStore
	food       *fakeFoodStore
	clothes    *fakeClothesStore
	education  *fakeEducationStore
	notifier   *fakeNotifier
	txCalls    int
}

func newTestHarness() *testHarness {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &testHarness{
		categories: &fakeCategoryStore{byID: map[string]*types.Category{}},
		fields:     &fakeFieldStore{fields: map[string][]*types.CategoryField{}},
		causes:     &fakeCauseStore{byID: map[string]*types.Cause{}},
		values:     &fakeValueStore{},
		food:       &fakeFoodStore{},
		clothes:    &fakeClothesStore{},
		education:  &fakeEducationStore{},
		notifier:   newFakeNotifier(),
	}

	h.svc = &Service{
		logger:     logger,
		registry:   fieldtype.NewRegistry(),
		categories: h.categories,
		fields:     h.fields,
		causes:     h.causes,
		values:     h.values,
		food:       h.food,
		clothes:    h.clothes,
		education:  h.education,
		notifier:   h.notifier,
	}
	h.svc.runTx = func(_ context.Context, fn func(tx pgx.Tx) error) error {
		h.txCalls++
		return fn(nil)
	}

	return h
}

func (h *testHarness) addCategory(category *types.Category) *types.Category {
	h.categories.byID[category.ID] = category
	return category
}

func builtinFoodCategory() *types.Category {
	return &types.Category{
		ID:       "cat-food",
		Name:     types.CategoryFood,
		Kind:     types.CategoryKindBuiltin,
		IsActive: true,
	}
}

func dynamicBicyclesCategory() *types.Category {
	return &types.Category{
		ID:       "cat-bicycles",
		Name:     "bicycles",
		Kind:     types.CategoryKindDynamic,
		IsActive: true,
	}
}

func bicycleFields() []*types.CategoryField {
	return []*types.CategoryField{
		{
			ID:           "fld-frame",
			CategoryID:   "cat-bicycles",
			Name:         "frame_size",
			Label:        "Frame size",
			Type:         types.FieldTypeSelect,
			Required:     true,
			Options:      []string{"S", "M", "L"},
			DisplayOrder: 1,
		},
		{
			ID:           "fld-gears",
			CategoryID:   "cat-bicycles",
			Name:         "gears",
			Label:        "Gears",
			Type:         types.FieldTypeNumber,
			DisplayOrder: 2,
		},
	}
}

func validFoodDetails() *types.FoodDetails {
	return &types.FoodDetails{
		FoodType:    "canned goods",
		Quantity:    40,
		Unit:        "items",
		Temperature: "ambient",
	}
}
