package store

import (
	"context"
	"fmt"
	"time"

	"causeboard/internal/utils"
	"causeboard/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fieldTableName = "causeboard.category_fields"

var fieldColumns = utils.StructTagValues(types.CategoryField{})

type FieldRepository struct {
	pool *pgxpool.Pool
}

func NewFieldRepository(pool *pgxpool.Pool) *FieldRepository {
	return &FieldRepository{pool: pool}
}

// FieldsByCategory returns a dynamic category's field definitions in
// display order, ties broken by insertion id.
func (r *FieldRepository) FieldsByCategory(ctx context.Context, categoryID string) ([]*types.CategoryField, error) {
	return r.fieldsByCategory(ctx, r.pool, categoryID)
}

// FieldsByCategoryTx is the transaction-scoped variant used by writes
// that must see the field set the transaction will act on.
func (r *FieldRepository) FieldsByCategoryTx(ctx context.Context, tx pgx.Tx, categoryID string) ([]*types.CategoryField, error) {
	return r.fieldsByCategory(ctx, tx, categoryID)
}

func (r *FieldRepository) fieldsByCategory(ctx context.Context, db Querier, categoryID string) ([]*types.CategoryField, error) {
	query, args, err := psql().
		Select(fieldColumns...).
		From(fieldTableName).
		Where(sq.Eq{"category_id": categoryID}).
		OrderBy("display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate fields query: %w", err)
	}

	var fields []*types.CategoryField
	err = pgxscan.Select(ctx, db, &fields, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fields: %w", err)
	}

	return fields, nil
}

func (r *FieldRepository) FieldByID(ctx context.Context, fieldID string) (*types.CategoryField, error) {
	query, args, err := psql().
		Select(fieldColumns...).
		From(fieldTableName).
		Where(sq.Eq{"id": fieldID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate field query: %w", err)
	}

	var field types.CategoryField
	err = pgxscan.Get(ctx, r.pool, &field, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFieldNotFound
		}
		return nil, fmt.Errorf("failed to fetch field: %w", err)
	}

	return &field, nil
}

func (r *FieldRepository) AddField(ctx context.Context, field *types.CategoryField) error {
	now := time.Now()
	if field.ID == "" {
		field.ID = utils.NanoID()
	}
	field.CreatedAt = now

	query, args, err := psql().
		Insert(fieldTableName).
		SetMap(utils.StructToMap(field)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert field query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return types.ErrFieldNameTaken
		}
		return fmt.Errorf("failed to insert field: %w", err)
	}

	return nil
}

// UpsertField is used by the seeder to sync sample field definitions.
func (r *FieldRepository) UpsertField(ctx context.Context, field *types.CategoryField) error {
	if field.CreatedAt.IsZero() {
		field.CreatedAt = time.Now()
	}

	fieldMap := utils.StructToMap(field)
	updateMap := utils.StructToMapExcluding(field, "id", "category_id", "name", "created_at")

	query, args, err := psql().
		Insert(fieldTableName).
		SetMap(fieldMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(updateMap)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert field query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert field: %w", err)
	}

	return nil
}

func (r *FieldRepository) UpdateField(ctx context.Context, field *types.CategoryField) error {
	updateMap := utils.StructToMapExcluding(field, "id", "category_id", "created_at")

	query, args, err := psql().
		Update(fieldTableName).
		SetMap(updateMap).
		Where(sq.Eq{"id": field.ID, "category_id": field.CategoryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update field query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return types.ErrFieldNameTaken
		}
		return fmt.Errorf("failed to update field: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrFieldNotFound
	}

	return nil
}

// DeleteField removes a field definition and every stored value for it in
// one transaction. Value history for the field is gone afterwards; a
// soft-delete variant would replace only this method.
func (r *FieldRepository) DeleteField(ctx context.Context, categoryID, fieldID string) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		deleteValues, deleteValuesArgs, err := psql().
			Delete(valueTableName).
			Where(sq.Eq{"field_id": fieldID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete values query: %w", err)
		}

		if _, err := tx.Exec(ctx, deleteValues, deleteValuesArgs...); err != nil {
			return fmt.Errorf("failed to delete field values: %w", err)
		}

		deleteField, deleteFieldArgs, err := psql().
			Delete(fieldTableName).
			Where(sq.Eq{"id": fieldID, "category_id": categoryID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete field query: %w", err)
		}

		tag, err := tx.Exec(ctx, deleteField, deleteFieldArgs...)
		if err != nil {
			return fmt.Errorf("failed to delete field: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return types.ErrFieldNotFound
		}

		return nil
	})
}

// ReorderFields applies a new display order. The submitted ids must be
// exactly the category's current field set, otherwise nothing changes and
// ErrFieldSetMismatch is returned.
func (r *FieldRepository) ReorderFields(ctx context.Context, categoryID string, orderedFieldIDs []string) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		lockQuery, lockArgs, err := psql().
			Select("id").
			From(fieldTableName).
			Where(sq.Eq{"category_id": categoryID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate field lock query: %w", err)
		}

		var currentIDs []string
		if err := pgxscan.Select(ctx, tx, &currentIDs, lockQuery, lockArgs...); err != nil {
			return fmt.Errorf("failed to lock fields for reorder: %w", err)
		}

		if !sameIDSet(currentIDs, orderedFieldIDs) {
			return types.ErrFieldSetMismatch
		}

		for position, fieldID := range orderedFieldIDs {
			updateQuery, updateArgs, err := psql().
				Update(fieldTableName).
				Set("display_order", position+1).
				Where(sq.Eq{"id": fieldID, "category_id": categoryID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to generate reorder update query: %w", err)
			}

			if _, err := tx.Exec(ctx, updateQuery, updateArgs...); err != nil {
				return fmt.Errorf("failed to reorder field %s: %w", fieldID, err)
			}
		}

		return nil
	})
}

func sameIDSet(current, submitted []string) bool {
	if len(current) != len(submitted) {
		return false
	}

	seen := make(map[string]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}

	for _, id := range submitted {
		if !seen[id] {
			return false
		}
		// reject duplicates in the submitted order
		delete(seen, id)
	}

	return len(seen) == 0
}
