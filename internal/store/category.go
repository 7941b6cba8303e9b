package store

import (
	"context"
	"fmt"
	"time"

	"causeboard/internal/utils"
	"causeboard/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryTableName = "causeboard.categories"

var categoryColumns = utils.StructTagValues(types.Category{})

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Categories(ctx context.Context, activeOnly bool) ([]*types.Category, error) {
	builder := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		OrderBy("display_order ASC", "name ASC")

	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	var categories []*types.Category
	err = pgxscan.Select(ctx, r.pool, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) CategoryByID(ctx context.Context, id string) (*types.Category, error) {
	return r.categoryBy(ctx, sq.Eq{"id": id})
}

func (r *CategoryRepository) CategoryByName(ctx context.Context, name string) (*types.Category, error) {
	return r.categoryBy(ctx, sq.Eq{"name": name})
}

func (r *CategoryRepository) categoryBy(ctx context.Context, pred sq.Eq) (*types.Category, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category query: %w", err)
	}

	var category types.Category
	err = pgxscan.Get(ctx, r.pool, &category, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch category: %w", err)
	}

	return &category, nil
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, category *types.Category) error {
	now := time.Now()
	if category.ID == "" {
		category.ID = utils.NanoID()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	query, args, err := psql().
		Insert(categoryTableName).
		SetMap(utils.StructToMap(category)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return types.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// UpdateCategory updates display attributes only. The internal name and
// kind are immutable once causes may reference the category.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category *types.Category) error {
	category.UpdatedAt = time.Now()

	updateMap := utils.StructToMapExcluding(category, "id", "name", "kind", "created_at")

	query, args, err := psql().
		Update(categoryTableName).
		SetMap(updateMap).
		Where(sq.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCategoryNotFound
	}

	return nil
}

// UpsertCategory is used by the seeder to sync the built-in category set.
func (r *CategoryRepository) UpsertCategory(ctx context.Context, category *types.Category) error {
	now := time.Now()
	category.UpdatedAt = now
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}

	categoryMap := utils.StructToMap(category)

	updateMap := utils.StructToMapExcluding(category, "id", "name", "kind", "created_at")

	query, args, err := psql().
		Insert(categoryTableName).
		SetMap(categoryMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(updateMap)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(categoryTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}
