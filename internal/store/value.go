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

const valueTableName = "causeboard.cause_category_values"

var valueColumns = utils.StructTagValues(types.CauseCategoryValue{})

type ValueRepository struct {
	pool *pgxpool.Pool
}

func NewValueRepository(pool *pgxpool.Pool) *ValueRepository {
	return &ValueRepository{pool: pool}
}

func (r *ValueRepository) ValuesByCause(ctx context.Context, causeID string) ([]*types.CauseCategoryValue, error) {
	query, args, err := psql().
		Select(valueColumns...).
		From(valueTableName).
		Where(sq.Eq{"cause_id": causeID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate values query: %w", err)
	}

	var values []*types.CauseCategoryValue
	err = pgxscan.Select(ctx, r.pool, &values, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch values: %w", err)
	}

	return values, nil
}

// JoinedValue is a stored value joined with its field definition, the
// shape the single-query dynamic payload read produces.
type JoinedValue struct {
	FieldID      string          `db:"field_id"`
	Name         string          `db:"name"`
	Label        string          `db:"label"`
	Type         types.FieldType `db:"field_type"`
	Required     bool            `db:"required"`
	Options      []string        `db:"options"`
	DisplayOrder int             `db:"display_order"`
	Value        string          `db:"value"`
}

// ResolvedByCause fetches a cause's dynamic values with their field
// definitions in one query, ordered like the category's form.
func (r *ValueRepository) ResolvedByCause(ctx context.Context, causeID string) ([]*JoinedValue, error) {
	query, args, err := psql().
		Select(
			"f.id AS field_id",
			"f.name",
			"f.label",
			"f.field_type",
			"f.required",
			"f.options",
			"f.display_order",
			"v.value",
		).
		From(valueTableName + " v").
		Join(fieldTableName + " f ON f.id = v.field_id").
		Where(sq.Eq{"v.cause_id": causeID}).
		OrderBy("f.display_order ASC", "f.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate resolved values query: %w", err)
	}

	var values []*JoinedValue
	err = pgxscan.Select(ctx, r.pool, &values, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resolved values: %w", err)
	}

	return values, nil
}

// ReplaceTx upserts the submitted value set inside the caller's
// transaction. Each field's existence is re-checked under a share lock so
// a concurrent field deletion fails this write with ErrFieldNotFound
// instead of leaving an orphaned row behind.
func (r *ValueRepository) ReplaceTx(ctx context.Context, tx pgx.Tx, values []*types.CauseCategoryValue) error {
	now := time.Now()

	for _, value := range values {
		lockQuery, lockArgs, err := psql().
			Select("id").
			From(fieldTableName).
			Where(sq.Eq{"id": value.FieldID}).
			Suffix("FOR KEY SHARE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate field check query: %w", err)
		}

		var fieldID string
		if err := pgxscan.Get(ctx, tx, &fieldID, lockQuery, lockArgs...); err != nil {
			if pgxscan.NotFound(err) {
				return types.ErrFieldNotFound
			}
			return fmt.Errorf("failed to check field %s: %w", value.FieldID, err)
		}

		value.CreatedAt = now
		value.UpdatedAt = now

		insertQuery, insertArgs, err := psql().
			Insert(valueTableName).
			SetMap(utils.StructToMap(value)).
			Suffix("ON CONFLICT (cause_id, field_id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate value upsert query: %w", err)
		}

		if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
			if IsForeignKeyViolation(err) {
				return types.ErrFieldNotFound
			}
			return fmt.Errorf("failed to upsert value for field %s: %w", value.FieldID, err)
		}
	}

	return nil
}

func (r *ValueRepository) DeleteByCauseTx(ctx context.Context, tx pgx.Tx, causeID string) error {
	query, args, err := psql().
		Delete(valueTableName).
		Where(sq.Eq{"cause_id": causeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete values query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete cause values")
}
