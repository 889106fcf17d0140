// Package reports provides the PostgreSQL-backed store of moderation reports.
package reports

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores the report. The target is recorded as given and is not
// checked for existence.
func (r *PostgresRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	query :=
		`INSERT INTO reports (reporter_id, target_type, target_id, reason)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, report.ReporterID, report.TargetType, report.TargetID, report.Reason).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("reporter %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return report, nil
}
