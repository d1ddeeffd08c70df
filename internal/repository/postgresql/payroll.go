package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ========== SALARY RECORDS ==========

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) finalization.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

// ListActiveByEmployees implements finalization.SalaryRepository.
func (r *salaryRepositoryImpl) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]finalization.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, base_salary, currency, pay_frequency, effective_date, end_date
		FROM salary_records
		WHERE employee_id = ANY($1) AND end_date IS NULL
		ORDER BY employee_id, effective_date DESC
	`

	rows, err := q.Query(ctx, query, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list active salaries: %w", err)
	}
	defer rows.Close()

	var salaries []finalization.SalaryRecord
	for rows.Next() {
		var s finalization.SalaryRecord
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.BaseSalary, &s.Currency, &s.PayFrequency, &s.EffectiveDate, &s.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		salaries = append(salaries, s)
	}
	return salaries, rows.Err()
}

// ========== LEAVE TRANSACTIONS ==========

type leaveTransactionRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTransactionRepository(db *database.DB) finalization.LeaveTransactionRepository {
	return &leaveTransactionRepositoryImpl{db: db}
}

// ReplaceForFinalization implements finalization.LeaveTransactionRepository.
func (r *leaveTransactionRepositoryImpl) ReplaceForFinalization(ctx context.Context, finalizationID string, txs []finalization.LeaveTransaction) (int, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_leave_transactions WHERE finalization_id = $1`, finalizationID); err != nil {
		return 0, fmt.Errorf("failed to delete previous leave transactions: %w", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO payroll_leave_transactions (
			id, finalization_id, employee_id, employee_name, leave_request_id,
			leave_type_id, leave_type_name, days_in_period, daily_rate, payment_percentage,
			gross_amount, net_amount, deduction_amount, transaction_type, currency, created_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, NOW()
		)
	`

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(query,
			finalizationID, tx.EmployeeID, tx.EmployeeName, tx.LeaveRequestID,
			tx.LeaveTypeID, tx.LeaveTypeName, tx.DaysInPeriod, tx.DailyRate, tx.PaymentPercentage,
			tx.GrossAmount, tx.NetAmount, tx.DeductionAmount, tx.TransactionType, tx.Currency,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range txs {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to insert leave transaction: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// ListByFinalization implements finalization.LeaveTransactionRepository.
func (r *leaveTransactionRepositoryImpl) ListByFinalization(ctx context.Context, finalizationID string) ([]finalization.LeaveTransaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, finalization_id, employee_id, employee_name, leave_request_id,
			   leave_type_id, leave_type_name, days_in_period, daily_rate, payment_percentage,
			   gross_amount, net_amount, deduction_amount, transaction_type, currency
		FROM payroll_leave_transactions
		WHERE finalization_id = $1
		ORDER BY employee_name, leave_request_id
	`

	rows, err := q.Query(ctx, query, finalizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave transactions: %w", err)
	}
	defer rows.Close()

	txs := []finalization.LeaveTransaction{}
	for rows.Next() {
		var tx finalization.LeaveTransaction
		if err := rows.Scan(
			&tx.ID, &tx.FinalizationID, &tx.EmployeeID, &tx.EmployeeName, &tx.LeaveRequestID,
			&tx.LeaveTypeID, &tx.LeaveTypeName, &tx.DaysInPeriod, &tx.DailyRate, &tx.PaymentPercentage,
			&tx.GrossAmount, &tx.NetAmount, &tx.DeductionAmount, &tx.TransactionType, &tx.Currency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
