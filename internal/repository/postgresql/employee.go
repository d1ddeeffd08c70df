package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) finalization.EmployeeDirectory {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `e.id, e.company_id, e.department_id, e.full_name`

func (e *employeeRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]finalization.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []finalization.Employee
	for rows.Next() {
		var emp finalization.Employee
		if err := rows.Scan(&emp.ID, &emp.CompanyID, &emp.DepartmentID, &emp.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetByIDs implements finalization.EmployeeDirectory.
func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, companyID string, ids []string) ([]finalization.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.company_id = $1 AND e.id = ANY($2) AND e.deleted_at IS NULL
	`
	employees, err := e.list(ctx, query, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees by ids: %w", err)
	}
	return employees, nil
}

// ListByDepartment implements finalization.EmployeeDirectory.
func (e *employeeRepositoryImpl) ListByDepartment(ctx context.Context, companyID string, departmentID string) ([]finalization.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.company_id = $1 AND e.department_id = $2
		  AND e.employment_status = 'active' AND e.deleted_at IS NULL
		ORDER BY e.full_name, e.id
	`
	employees, err := e.list(ctx, query, companyID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by department: %w", err)
	}
	return employees, nil
}

// ListByTimekeeper implements finalization.EmployeeDirectory.
func (e *employeeRepositoryImpl) ListByTimekeeper(ctx context.Context, companyID string, timekeeperID string) ([]finalization.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		INNER JOIN timekeeper_assignments ta ON ta.employee_id = e.id
		WHERE e.company_id = $1 AND ta.timekeeper_id = $2
		  AND e.employment_status = 'active' AND e.deleted_at IS NULL
		ORDER BY e.full_name, e.id
	`
	employees, err := e.list(ctx, query, companyID, timekeeperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by timekeeper: %w", err)
	}
	return employees, nil
}
