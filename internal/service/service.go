package service

import (
	"context"
	"time"

	"causeboard/internal/fieldtype"
	"causeboard/internal/store"
	"causeboard/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Store contracts consumed by the orchestrator. The pgx repositories in
// internal/store satisfy them; tests substitute in-memory fakes.

type CategoryStore interface {
	Categories(ctx context.Context, activeOnly bool) ([]*types.Category, error)
	CategoryByID(ctx context.Context, id string) (*types.Category, error)
	CategoryByName(ctx context.Context, name string) (*types.Category, error)
	CreateCategory(ctx context.Context, category *types.Category) error
	UpdateCategory(ctx context.Context, category *types.Category) error
}

type FieldStore interface {
	FieldsByCategory(ctx context.Context, categoryID string) ([]*types.CategoryField, error)
	FieldByID(ctx context.Context, fieldID string) (*types.CategoryField, error)
	AddField(ctx context.Context, field *types.CategoryField) error
	UpdateField(ctx context.Context, field *types.CategoryField) error
	DeleteField(ctx context.Context, categoryID, fieldID string) error
	ReorderFields(ctx context.Context, categoryID string, orderedFieldIDs []string) error
}

type CauseStore interface {
	CauseByID(ctx context.Context, causeID string) (*types.Cause, error)
	List(ctx context.Context, filter types.CauseFilter) ([]*types.Cause, error)
	CreateTx(ctx context.Context, db store.Querier, cause *types.Cause) error
	UpdateTx(ctx context.Context, db store.Querier, cause *types.Cause) error
	DeleteTx(ctx context.Context, db store.Querier, causeID string) error
}

type ValueStore interface {
	ResolvedByCause(ctx context.Context, causeID string) ([]*store.JoinedValue, error)
	ReplaceTx(ctx context.Context, tx pgx.Tx, values []*types.CauseCategoryValue) error
	DeleteByCauseTx(ctx context.Context, tx pgx.Tx, causeID string) error
}

type FoodStore interface {
	DetailsByCause(ctx context.Context, causeID string) (*types.FoodDetails, error)
	UpsertTx(ctx context.Context, db store.Querier, details *types.FoodDetails) error
	DeleteTx(ctx context.Context, db store.Querier, causeID string) error
}

type ClothesStore interface {
	DetailsByCause(ctx context.Context, causeID string) (*types.ClothesDetails, error)
	UpsertTx(ctx context.Context, db store.Querier, details *types.ClothesDetails) error
	DeleteTx(ctx context.Context, db store.Querier, causeID string) error
}

type EducationStore interface {
	DetailsByCause(ctx context.Context, causeID string) (*types.EducationDetails, error)
	UpsertTx(ctx context.Context, db store.Querier, details *types.EducationDetails) error
	DeleteTx(ctx context.Context, db store.Querier, causeID string) error
}

// ChangeEvent describes a committed cause write for the external
// change-log/notification collaborator.
type ChangeEvent struct {
	Type       string    `json:"type"` // cause.created, cause.updated, cause.deleted
	CauseID    string    `json:"cause_id"`
	CategoryID string    `json:"category_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	CauseChanged(ctx context.Context, event ChangeEvent) error
}

// MediaVerifier confirms a gallery reference points at stored media.
// A nil verifier skips the check.
type MediaVerifier interface {
	Verify(ctx context.Context, key string) error
}

// TxFunc runs fn inside a single storage transaction.
type TxFunc func(ctx context.Context, fn func(tx pgx.Tx) error) error

type Service struct {
	logger   *logrus.Logger
	registry *fieldtype.Registry
	runTx    TxFunc

	categories CategoryStore
	fields     FieldStore
	causes     CauseStore
	values     ValueStore
	food       FoodStore
	clothes    ClothesStore
	education  EducationStore

	media    MediaVerifier
	notifier Notifier
}

func New(
	logger *logrus.Logger,
	pool *pgxpool.Pool,
	registry *fieldtype.Registry,
	categories CategoryStore,
	fields FieldStore,
	causes CauseStore,
	values ValueStore,
	food FoodStore,
	clothes ClothesStore,
	education EducationStore,
	media MediaVerifier,
	notifier Notifier,
) *Service {
	runTx := func(ctx context.Context, fn func(tx pgx.Tx) error) error {
		return store.WithTx(ctx, pool, fn)
	}

	return &Service{
		logger:     logger,
		registry:   registry,
		runTx:      runTx,
		categories: categories,
		fields:     fields,
		causes:     causes,
		values:     values,
		food:       food,
		clothes:    clothes,
		education:  education,
		media:      media,
		notifier:   notifier,
	}
}

func isForeignKeyViolation(err error) bool {
	return store.IsForeignKeyViolation(err)
}

// emitChange notifies the external collaborator off the request path.
// Failures are logged and never surfaced so they cannot mask a
// successful, already-committed write.
func (s *Service) emitChange(event ChangeEvent) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithField("panic", rec).Error("change notifier panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.CauseChanged(ctx, event); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"cause_id": event.CauseID,
				"type":     event.Type,
			}).Warn("change notification failed")
		}
	}()
}
