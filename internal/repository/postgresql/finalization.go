package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type finalizationRepositoryImpl struct {
	db *database.DB
}

func NewFinalizationRepository(db *database.DB) finalization.FinalizationRepository {
	return &finalizationRepositoryImpl{db: db}
}

const finalizationColumns = `
	id, company_id, period_start, period_end, department_id, employee_ids, employee_count,
	total_regular_hours, total_overtime_hours, absences_excused, absences_unexcused,
	leave_transactions_created, status, sync_status, sync_errors, finalized_by, finalized_at,
	created_at, updated_at
`

func scanFinalization(row pgx.Row) (finalization.FinalizationRecord, error) {
	var rec finalization.FinalizationRecord
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.PeriodStart, &rec.PeriodEnd, &rec.DepartmentID, &rec.EmployeeIDs, &rec.EmployeeCount,
		&rec.TotalRegularHours, &rec.TotalOvertimeHours, &rec.AbsencesExcused, &rec.AbsencesUnexcused,
		&rec.LeaveTransactionsCreated, &rec.Status, &rec.SyncStatus, &rec.SyncErrors, &rec.FinalizedBy, &rec.FinalizedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Upsert implements finalization.FinalizationRepository.
// The unique constraint is declared NULLS NOT DISTINCT so company-wide
// finalizations (no department) conflict with each other as well.
func (r *finalizationRepositoryImpl) Upsert(ctx context.Context, record finalization.FinalizationRecord) (finalization.FinalizationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_period_finalizations (
			id, company_id, period_start, period_end, department_id, employee_ids, employee_count,
			total_regular_hours, total_overtime_hours, absences_excused, absences_unexcused,
			leave_transactions_created, status, sync_status, sync_errors, finalized_by, finalized_at,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			NOW(), NOW()
		)
		ON CONFLICT (company_id, period_start, period_end, department_id) DO UPDATE SET
			employee_ids = EXCLUDED.employee_ids,
			employee_count = EXCLUDED.employee_count,
			total_regular_hours = EXCLUDED.total_regular_hours,
			total_overtime_hours = EXCLUDED.total_overtime_hours,
			absences_excused = EXCLUDED.absences_excused,
			absences_unexcused = EXCLUDED.absences_unexcused,
			leave_transactions_created = EXCLUDED.leave_transactions_created,
			status = EXCLUDED.status,
			sync_status = EXCLUDED.sync_status,
			sync_errors = EXCLUDED.sync_errors,
			finalized_by = EXCLUDED.finalized_by,
			finalized_at = EXCLUDED.finalized_at,
			updated_at = NOW()
		RETURNING ` + finalizationColumns

	syncErrors := record.SyncErrors
	if syncErrors == nil {
		syncErrors = []string{}
	}

	saved, err := scanFinalization(q.QueryRow(ctx, query,
		record.CompanyID, record.PeriodStart, record.PeriodEnd, record.DepartmentID, record.EmployeeIDs, record.EmployeeCount,
		record.TotalRegularHours, record.TotalOvertimeHours, record.AbsencesExcused, record.AbsencesUnexcused,
		record.LeaveTransactionsCreated, record.Status, record.SyncStatus, syncErrors, record.FinalizedBy, record.FinalizedAt,
	))
	if err != nil {
		return finalization.FinalizationRecord{}, fmt.Errorf("failed to upsert finalization: %w", err)
	}
	return saved, nil
}

// UpdateSyncStatus implements finalization.FinalizationRepository.
func (r *finalizationRepositoryImpl) UpdateSyncStatus(ctx context.Context, id string, status finalization.SyncStatus, syncErrors []string, leaveTransactionsCreated int) error {
	q := GetQuerier(ctx, r.db)

	if syncErrors == nil {
		syncErrors = []string{}
	}

	query := `
		UPDATE time_period_finalizations
		SET sync_status = $2, sync_errors = $3, leave_transactions_created = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, status, syncErrors, leaveTransactionsCreated)
	if err != nil {
		return fmt.Errorf("failed to update finalization sync status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return finalization.ErrFinalizationNotFound
	}
	return nil
}

// GetByID implements finalization.FinalizationRepository.
func (r *finalizationRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (finalization.FinalizationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + finalizationColumns + ` FROM time_period_finalizations WHERE id = $1 AND company_id = $2`

	rec, err := scanFinalization(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return finalization.FinalizationRecord{}, finalization.ErrFinalizationNotFound
		}
		return finalization.FinalizationRecord{}, fmt.Errorf("failed to get finalization: %w", err)
	}
	return rec, nil
}

// List implements finalization.FinalizationRepository.
func (r *finalizationRepositoryImpl) List(ctx context.Context, companyID string, filter finalization.FinalizationFilter) ([]finalization.FinalizationRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM time_period_finalizations
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodStart != nil {
		start, _ := time.Parse(finalization.DateLayout, *filter.PeriodStart)
		baseQuery += fmt.Sprintf(" AND period_start >= $%d", argIdx)
		args = append(args, start)
		argIdx++
	}
	if filter.PeriodEnd != nil {
		end, _ := time.Parse(finalization.DateLayout, *filter.PeriodEnd)
		baseQuery += fmt.Sprintf(" AND period_end <= $%d", argIdx)
		args = append(args, end)
		argIdx++
	}
	if filter.DepartmentID != nil {
		baseQuery += fmt.Sprintf(" AND department_id = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.SyncStatus != nil {
		baseQuery += fmt.Sprintf(" AND sync_status = $%d", argIdx)
		args = append(args, *filter.SyncStatus)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count finalizations: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY period_start DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, finalizationColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list finalizations: %w", err)
	}
	defer rows.Close()

	records := []finalization.FinalizationRecord{}
	for rows.Next() {
		rec, err := scanFinalization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan finalization: %w", err)
		}
		records = append(records, rec)
	}
	return records, totalCount, rows.Err()
}

// ListIncomplete implements finalization.FinalizationRepository.
func (r *finalizationRepositoryImpl) ListIncomplete(ctx context.Context, limit int) ([]finalization.FinalizationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + finalizationColumns + `
		FROM time_period_finalizations
		WHERE sync_status = $1
		ORDER BY updated_at
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, finalization.SyncStatusIncomplete, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete finalizations: %w", err)
	}
	defer rows.Close()

	var records []finalization.FinalizationRecord
	for rows.Next() {
		rec, err := scanFinalization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finalization: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
