package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-finalization-go/internal/repository/postgresql"
	finalizationsvc "github.com/cmlabs-hris/hris-finalization-go/internal/service/finalization"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seededPeriod struct {
	companyID    string
	timekeeperID string
	employeeID   string
}

func date(s string) time.Time {
	d, err := time.Parse(finalization.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedPeriod inserts one employee with 70 regular hours, 5 overtime hours,
// a 60000 annual salary and a three-day unpaid leave in January 2024.
func seedPeriod(t *testing.T, ctx context.Context, db *database.DB) seededPeriod {
	t.Helper()
	p := seededPeriod{
		companyID:    uuid.NewString(),
		timekeeperID: uuid.NewString(),
	}

	err := db.QueryRow(ctx, `
		INSERT INTO employees (company_id, full_name) VALUES ($1, 'Alice') RETURNING id
	`, p.companyID).Scan(&p.employeeID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO timekeeper_assignments (timekeeper_id, employee_id) VALUES ($1, $2)`, p.timekeeperID, p.employeeID)
	require.NoError(t, err)

	for i, d := range []string{"2024-01-01", "2024-01-02", "2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12"} {
		overtime := 0.0
		if i == 0 {
			overtime = 5
		}
		_, err = db.Exec(ctx, `
			INSERT INTO time_entries (employee_id, clock_in, regular_hours, overtime_hours)
			VALUES ($1, $2, 10, $3)
		`, p.employeeID, date(d).Add(8*time.Hour), overtime)
		require.NoError(t, err)
	}

	var leaveTypeID string
	err = db.QueryRow(ctx, `
		INSERT INTO leave_types (company_id, name, is_paid, payment_method)
		VALUES ($1, 'Unpaid Leave', FALSE, 'unpaid') RETURNING id
	`, p.companyID).Scan(&leaveTypeID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO leave_requests (employee_id, leave_type_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, 'approved')
	`, p.employeeID, leaveTypeID, date("2024-01-03"), date("2024-01-05"))
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO salary_records (employee_id, base_salary, currency, pay_frequency, effective_date)
		VALUES ($1, 60000, 'USD', 'annual', $2)
	`, p.employeeID, date("2023-01-01"))
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO attendance_exceptions (employee_id, exception_date, exception_type, status)
		VALUES ($1, $2, 'excused_absence', 'approved')
	`, p.employeeID, date("2024-01-03"))
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO timesheet_submissions (company_id, employee_id, period_start, period_end)
		VALUES ($1, $2, $3, $4)
	`, p.companyID, p.employeeID, date("2024-01-01"), date("2024-01-07"))
	require.NoError(t, err)

	return p
}

func newPostgresService(db *database.DB) finalization.FinalizationService {
	return finalizationsvc.NewFinalizationService(
		postgresql.NewUnitOfWork(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewTimeEntryRepository(db),
		postgresql.NewAttendanceExceptionRepository(db),
		postgresql.NewLeaveRequestRepository(db),
		postgresql.NewSalaryRepository(db),
		postgresql.NewFinalizationRepository(db),
		postgresql.NewTimesheetRepository(db),
		postgresql.NewLeaveTransactionRepository(db),
	)
}

func countRows(t *testing.T, ctx context.Context, db *database.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(ctx, query, args...).Scan(&n))
	return n
}

// ===== FINALIZATION REPOSITORY TESTS =====

func TestFinalization_CommitAndRecommit(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	p := seedPeriod(t, ctx, setup.DB)
	svc := newPostgresService(setup.DB)

	req := finalization.FinalizeRequest{
		CompanyID:    p.companyID,
		PeriodStart:  "2024-01-01",
		PeriodEnd:    "2024-01-14",
		TimekeeperID: p.timekeeperID,
	}

	first, err := svc.Finalize(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, finalization.SyncStatusComplete, first.SyncStatus)
	assert.Equal(t, 70.0, first.Summary.TotalRegularHours)
	assert.Equal(t, 5.0, first.Summary.TotalOvertimeHours)
	require.Len(t, first.Summary.LeaveTransactions, 1)
	assert.Equal(t, "692.31", first.Summary.LeaveTransactions[0].DeductionAmount.StringFixed(2))

	second, err := svc.Finalize(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.FinalizationID, second.FinalizationID)

	assert.Equal(t, 1, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM time_period_finalizations WHERE company_id = $1`, p.companyID))
	assert.Equal(t, 1, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM payroll_leave_transactions WHERE finalization_id = $1`, first.FinalizationID))
	assert.Equal(t, 1, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM timesheet_submissions WHERE finalization_id = $1 AND status = 'finalized'`, first.FinalizationID))
	assert.Equal(t, 0, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM attendance_exceptions WHERE employee_id = $1 AND NOT payroll_processed`, p.employeeID))

	resp, err := svc.GetFinalization(ctx, p.companyID, first.FinalizationID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LeaveTransactionsCreated)
	assert.Equal(t, "complete", resp.SyncStatus)
	require.Len(t, resp.LeaveTransactions, 1)
	assert.Equal(t, "Alice", resp.LeaveTransactions[0].EmployeeName)
}

func TestFinalization_PreviewWritesNothing(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	p := seedPeriod(t, ctx, setup.DB)
	svc := newPostgresService(setup.DB)

	result, err := svc.Finalize(ctx, finalization.FinalizeRequest{
		CompanyID:    p.companyID,
		PeriodStart:  "2024-01-01",
		PeriodEnd:    "2024-01-14",
		TimekeeperID: p.timekeeperID,
		PreviewOnly:  true,
	})

	require.NoError(t, err)
	assert.True(t, result.Preview)
	assert.Equal(t, 0, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM time_period_finalizations`))
	assert.Equal(t, 0, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM payroll_leave_transactions`))
}

func TestFinalizationRepository_UpsertTreatsNullDepartmentsAsEqual(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewFinalizationRepository(setup.DB)

	record := finalization.FinalizationRecord{
		CompanyID:   uuid.NewString(),
		PeriodStart: date("2024-01-01"),
		PeriodEnd:   date("2024-01-14"),
		EmployeeIDs: []string{uuid.NewString()},
		Status:      finalization.FinalizationStatusFinalized,
		SyncStatus:  finalization.SyncStatusComplete,
		FinalizedBy: uuid.NewString(),
		FinalizedAt: time.Now(),
	}

	first, err := repo.Upsert(ctx, record)
	require.NoError(t, err)
	record.EmployeeCount = 3
	second, err := repo.Upsert(ctx, record)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.EmployeeCount)
	assert.Nil(t, second.DepartmentID)
}

func TestUnitOfWork_NestedFailureRollsBackOnlyInner(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	uow := postgresql.NewUnitOfWork(setup.DB)
	companyID := uuid.NewString()

	err := uow.Do(ctx, func(ctx context.Context) error {
		q := postgresql.GetQuerier(ctx, setup.DB)
		if _, err := q.Exec(ctx, `INSERT INTO employees (company_id, full_name) VALUES ($1, 'Outer')`, companyID); err != nil {
			return err
		}

		inner := uow.Do(ctx, func(ctx context.Context) error {
			q := postgresql.GetQuerier(ctx, setup.DB)
			if _, err := q.Exec(ctx, `INSERT INTO employees (company_id, full_name) VALUES ($1, 'Inner')`, companyID); err != nil {
				return err
			}
			return errors.New("inner failure")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM employees WHERE company_id = $1`, companyID))
	assert.Equal(t, 0, countRows(t, ctx, setup.DB, `SELECT COUNT(*) FROM employees WHERE company_id = $1 AND full_name = 'Inner'`, companyID))
}
