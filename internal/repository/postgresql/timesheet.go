package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) finalization.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

// MarkFinalized implements finalization.TimesheetRepository. Only submissions
// whose whole range lies inside the finalized period are stamped.
func (r *timesheetRepositoryImpl) MarkFinalized(ctx context.Context, companyID string, employeeIDs []string, periodStart, periodEnd time.Time, finalizationID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheet_submissions
		SET status = $1, finalization_id = $2, synced_at = NOW(), updated_at = NOW()
		WHERE company_id = $3
		  AND employee_id = ANY($4)
		  AND period_start >= $5
		  AND period_end <= $6
	`

	tag, err := q.Exec(ctx, query, finalization.TimesheetStatusFinalized, finalizationID, companyID, employeeIDs, periodStart, periodEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to mark timesheets finalized: %w", err)
	}
	return tag.RowsAffected(), nil
}
