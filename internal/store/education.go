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

const educationTableName = "causeboard.education_details"

var educationColumns = utils.StructTagValues(types.EducationDetails{})

type EducationDetailsRepository struct {
	pool *pgxpool.Pool
}

func NewEducationDetailsRepository(pool *pgxpool.Pool) *EducationDetailsRepository {
	return &EducationDetailsRepository{pool: pool}
}

func (r *EducationDetailsRepository) DetailsByCause(ctx context.Context, causeID string) (*types.EducationDetails, error) {
	query, args, err := psql().
		Select(educationColumns...).
		From(educationTableName).
		Where(sq.Eq{"cause_id": causeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate education details query: %w", err)
	}

	var details types.EducationDetails
	err = pgxscan.Get(ctx, r.pool, &details, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch education details: %w", err)
	}

	return &details, nil
}

func (r *EducationDetailsRepository) UpsertTx(ctx context.Context, db Querier, details *types.EducationDetails) error {
	detailsMap := utils.StructToMap(details)

	query, args, err := psql().
		Insert(educationTableName).
		SetMap(detailsMap).
		Suffix("ON CONFLICT (cause_id) DO UPDATE SET " + buildUpdateClause(utils.StructToMapExcluding(details, "cause_id"))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate education details upsert: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert education details")
}

func (r *EducationDetailsRepository) DeleteTx(ctx context.Context, db Querier, causeID string) error {
	query, args, err := psql().
		Delete(educationTableName).
		Where(sq.Eq{"cause_id": causeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate education details delete: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete education details")
}
