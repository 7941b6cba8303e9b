package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"causeboard/internal/utils"
	"causeboard/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const causeTableName = "causeboard.causes"

var causeColumns = utils.StructTagValues(types.Cause{})

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// columns the list endpoint may sort on
var causeSortColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"title":          true,
	"priority":       true,
	"goal_count":     true,
	"progress_count": true,
}

type CauseRepository struct {
	pool *pgxpool.Pool
}

func NewCauseRepository(pool *pgxpool.Pool) *CauseRepository {
	return &CauseRepository{pool: pool}
}

func (r *CauseRepository) CauseByID(ctx context.Context, causeID string) (*types.Cause, error) {
	query, args, err := psql().
		Select(causeColumns...).
		From(causeTableName).
		Where(sq.Eq{"id": causeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cause query: %w", err)
	}

	var cause types.Cause
	err = pgxscan.Get(ctx, r.pool, &cause, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCauseNotFound
		}
		return nil, fmt.Errorf("failed to fetch cause: %w", err)
	}

	return &cause, nil
}

func (r *CauseRepository) List(ctx context.Context, filter types.CauseFilter) ([]*types.Cause, error) {
	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate list query: %w", err)
	}

	var causes = make([]*types.Cause, 0)
	err = pgxscan.Select(ctx, r.pool, &causes, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch causes: %w", err)
	}

	return causes, nil
}

// buildListQuery translates the recognized filter options into SQL over
// base-cause columns only. Payload resolution never happens here.
func buildListQuery(filter types.CauseFilter) (string, []any, error) {
	builder := psql().
		Select(causeColumns...).
		From(causeTableName)

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category_id": filter.Category})
	}

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	if filter.Priority != "" {
		builder = builder.Where(sq.Eq{"priority": filter.Priority})
	}

	if filter.Location != "" {
		builder = builder.Where(sq.ILike{"location": "%" + filter.Location + "%"})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	if filter.Tag != "" {
		tagJSON, err := json.Marshal([]string{filter.Tag})
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode tag filter: %w", err)
		}
		builder = builder.Where(sq.Expr("tags @> ?::jsonb", string(tagJSON)))
	}

	sortColumn := "created_at"
	if causeSortColumns[filter.Sort] {
		sortColumn = filter.Sort
	}

	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	return builder.
		OrderBy(fmt.Sprintf("%s %s", sortColumn, direction)).
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
}

func (r *CauseRepository) CreateTx(ctx context.Context, db Querier, cause *types.Cause) error {
	now := time.Now()
	if cause.ID == "" {
		cause.ID = utils.NanoID()
	}
	cause.CreatedAt = now
	cause.UpdatedAt = now

	causeMap := utils.StructToMap(cause)

	query, args, err := psql().Insert(causeTableName).SetMap(causeMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert cause query: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create cause")
}

func (r *CauseRepository) UpdateTx(ctx context.Context, db Querier, cause *types.Cause) error {
	cause.UpdatedAt = time.Now()

	causeMap := utils.StructToMapExcluding(cause, "id", "user_id", "category_id", "created_at")

	query, args, err := psql().
		Update(causeTableName).
		SetMap(causeMap).
		Where(sq.Eq{"id": cause.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update cause query for cause %s: %w", cause.ID, err)
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update cause: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCauseNotFound
	}

	return nil
}

// DeleteTx removes the base row; payload rows go with it through the
// storage-level cascades.
func (r *CauseRepository) DeleteTx(ctx context.Context, db Querier, causeID string) error {
	query, args, err := psql().
		Delete(causeTableName).
		Where(sq.Eq{"id": causeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete cause query for cause %s: %w", causeID, err)
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete cause: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCauseNotFound
	}

	return nil
}
