package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) finalization.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

// ListApprovedOverlapping implements finalization.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]finalization.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, lr.leave_type_id, lr.start_date, lr.end_date, lr.status,
			   lt.id, lt.name, lt.code, lt.is_paid, lt.payment_method
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lr.leave_type_id = lt.id
		WHERE lr.employee_id = ANY($1)
		  AND lr.status = $2
		  AND lr.start_date <= $4
		  AND lr.end_date >= $3
		ORDER BY lr.employee_id, lr.start_date
	`

	rows, err := q.Query(ctx, query, employeeIDs, finalization.LeaveRequestStatusApproved, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}
	defer rows.Close()

	var requests []finalization.LeaveRequest
	for rows.Next() {
		var lr finalization.LeaveRequest
		if err := rows.Scan(
			&lr.ID, &lr.EmployeeID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate, &lr.Status,
			&lr.LeaveType.ID, &lr.LeaveType.Name, &lr.LeaveType.Code, &lr.LeaveType.IsPaid, &lr.LeaveType.PaymentMethod,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
