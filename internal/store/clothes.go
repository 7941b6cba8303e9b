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

const clothesTableName = "causeboard.clothes_details"

var clothesColumns = utils.StructTagValues(types.ClothesDetails{})

type ClothesDetailsRepository struct {
	pool *pgxpool.Pool
}

func NewClothesDetailsRepository(pool *pgxpool.Pool) *ClothesDetailsRepository {
	return &ClothesDetailsRepository{pool: pool}
}

func (r *ClothesDetailsRepository) DetailsByCause(ctx context.Context, causeID string) (*types.ClothesDetails, error) {
	query, args, err := psql().
		Select(clothesColumns...).
		From(clothesTableName).
		Where(sq.Eq{"cause_id": causeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate clothes details query: %w", err)
	}

	var details types.ClothesDetails
	err = pgxscan.Get(ctx, r.pool, &details, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch clothes details: %w", err)
	}

	return &details, nil
}

func (r *ClothesDetailsRepository) UpsertTx(ctx context.Context, db Querier, details *types.ClothesDetails) error {
	detailsMap := utils.StructToMap(details)

	query, args, err := psql().
		Insert(clothesTableName).
		SetMap(detailsMap).
		Suffix("ON CONFLICT (cause_id) DO UPDATE SET " + buildUpdateClause(utils.StructToMapExcluding(details, "cause_id"))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clothes details upsert: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert clothes details")
}

func (r *ClothesDetailsRepository) DeleteTx(ctx context.Context, db Querier, causeID string) error {
	query, args, err := psql().
		Delete(clothesTableName).
		Where(sq.Eq{"cause_id": causeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clothes details delete: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete clothes details")
}
