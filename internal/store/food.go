package store

import (
	"context"
	"fmt"

	"causeboard/internal/utils"
	"causeboard/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foodTableName = "causeboard.food_details"

var foodColumns = utils.StructTagValues(types.FoodDetails{})

type FoodDetailsRepository struct {
	pool *pgxpool.Pool
}

func NewFoodDetailsRepository(pool *pgxpool.Pool) *FoodDetailsRepository {
	return &FoodDetailsRepository{pool: pool}
}

func (r *FoodDetailsRepository) DetailsByCause(ctx context.Context, causeID string) (*types.FoodDetails, error) {
	query, args, err := psql().
		Select(foodColumns...).
		From(foodTableName).
		Where(sq.Eq{"cause_id": causeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate food details query: %w", err)
	}

	var details types.FoodDetails
	err = pgxscan.Get(ctx, r.pool, &details, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch food details: %w", err)
	}

	return &details, nil
}

// UpsertTx writes the detail record keyed by the cause id, replacing any
// existing record for that cause.
func (r *FoodDetailsRepository) UpsertTx(ctx context.Context, db Querier, details *types.FoodDetails) error {
	detailsMap := utils.StructToMap(details)

	query, args, err := psql().
		Insert(foodTableName).
		SetMap(detailsMap).
		Suffix("ON CONFLICT (cause_id) DO UPDATE SET " + buildUpdateClause(utils.StructToMapExcluding(details, "cause_id"))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate food details upsert: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert food details")
}

func (r *FoodDetailsRepository) DeleteTx(ctx context.Context, db Querier, causeID string) error {
	query, args, err := psql().
		Delete(foodTableName).
		Where(sq.Eq{"cause_id": causeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate food details delete: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete food details")
}
