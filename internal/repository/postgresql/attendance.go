package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
)

// ========== TIME ENTRIES ==========

type timeEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) finalization.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

// ListByEmployees implements finalization.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListByEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]finalization.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, clock_in, clock_out, admin_clock_in, admin_clock_out,
			   regular_hours, overtime_hours, payable_regular_hours, payable_overtime_hours, total_hours
		FROM time_entries
		WHERE employee_id = ANY($1) AND clock_in >= $2 AND clock_in <= $3
		ORDER BY employee_id, clock_in
	`

	rows, err := q.Query(ctx, query, employeeIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []finalization.TimeEntry
	for rows.Next() {
		var te finalization.TimeEntry
		if err := rows.Scan(
			&te.ID, &te.EmployeeID, &te.ClockIn, &te.ClockOut, &te.AdminClockIn, &te.AdminClockOut,
			&te.RegularHours, &te.OvertimeHours, &te.PayableRegularHours, &te.PayableOvertimeHours, &te.TotalHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, te)
	}
	return entries, rows.Err()
}

// ========== ATTENDANCE EXCEPTIONS ==========

type attendanceExceptionRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceExceptionRepository(db *database.DB) finalization.AttendanceExceptionRepository {
	return &attendanceExceptionRepositoryImpl{db: db}
}

// ListByEmployees implements finalization.AttendanceExceptionRepository.
func (r *attendanceExceptionRepositoryImpl) ListByEmployees(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]finalization.AttendanceException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, exception_date, exception_type, status, payroll_processed
		FROM attendance_exceptions
		WHERE employee_id = ANY($1) AND exception_date BETWEEN $2 AND $3
		ORDER BY employee_id, exception_date
	`

	rows, err := q.Query(ctx, query, employeeIDs, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []finalization.AttendanceException
	for rows.Next() {
		var ex finalization.AttendanceException
		if err := rows.Scan(&ex.ID, &ex.EmployeeID, &ex.ExceptionDate, &ex.ExceptionType, &ex.Status, &ex.PayrollProcessed); err != nil {
			return nil, fmt.Errorf("failed to scan attendance exception: %w", err)
		}
		exceptions = append(exceptions, ex)
	}
	return exceptions, rows.Err()
}

// MarkPayrollProcessed implements finalization.AttendanceExceptionRepository.
func (r *attendanceExceptionRepositoryImpl) MarkPayrollProcessed(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_exceptions
		SET payroll_processed = TRUE, payroll_processed_at = NOW(), updated_at = NOW()
		WHERE employee_id = ANY($1) AND exception_date BETWEEN $2 AND $3
	`

	tag, err := q.Exec(ctx, query, employeeIDs, periodStart, periodEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to mark attendance exceptions processed: %w", err)
	}
	return tag.RowsAffected(), nil
}
