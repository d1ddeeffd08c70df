package finalization

import (
	"context"
	"time"
)

// EmployeeDirectory resolves the employees a finalization applies to.
type EmployeeDirectory interface {
	GetByIDs(ctx context.Context, companyID string, ids []string) ([]Employee, error)
	ListByDepartment(ctx context.Context, companyID string, departmentID string) ([]Employee, error)
	ListByTimekeeper(ctx context.Context, companyID string, timekeeperID string) ([]Employee, error)
}

// TimeEntryRepository - read-only, filtered on clock-in within [from, to]
type TimeEntryRepository interface {
	ListByEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]TimeEntry, error)
}

// AttendanceExceptionRepository - read at collection, stamped at commit
type AttendanceExceptionRepository interface {
	ListByEmployees(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]AttendanceException, error)
	MarkPayrollProcessed(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) (int64, error)
}

// LeaveRequestRepository - approved requests overlapping a period, joined with leave type
type LeaveRequestRepository interface {
	ListApprovedOverlapping(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]LeaveRequest, error)
}

// SalaryRepository - active (end_date IS NULL) salary records
type SalaryRepository interface {
	ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]SalaryRecord, error)
}

// FinalizationRepository stores finalization records.
// Upsert is keyed on (company_id, period_start, period_end, department_id) and
// replaces the previous row for the same key, keeping its ID.
type FinalizationRepository interface {
	Upsert(ctx context.Context, record FinalizationRecord) (FinalizationRecord, error)
	UpdateSyncStatus(ctx context.Context, id string, status SyncStatus, syncErrors []string, leaveTransactionsCreated int) error
	GetByID(ctx context.Context, id string, companyID string) (FinalizationRecord, error)
	List(ctx context.Context, companyID string, filter FinalizationFilter) ([]FinalizationRecord, int64, error)
	ListIncomplete(ctx context.Context, limit int) ([]FinalizationRecord, error)
}

// TimesheetRepository marks timesheet submissions inside a finalized period.
type TimesheetRepository interface {
	MarkFinalized(ctx context.Context, companyID string, employeeIDs []string, periodStart, periodEnd time.Time, finalizationID string) (int64, error)
}

// LeaveTransactionRepository persists derived leave payroll transactions.
type LeaveTransactionRepository interface {
	// ReplaceForFinalization deletes the rows of a previous commit of the same
	// finalization and inserts txs. Returns the number of rows inserted.
	ReplaceForFinalization(ctx context.Context, finalizationID string, txs []LeaveTransaction) (int, error)
	ListByFinalization(ctx context.Context, finalizationID string) ([]LeaveTransaction, error)
}

// UnitOfWork runs fn atomically. Nested calls run as a savepoint of the
// enclosing unit: an error rolls back only the nested part.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
