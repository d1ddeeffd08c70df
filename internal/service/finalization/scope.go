package finalization

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
)

// resolveScope picks the employees to finalize. Precedence: explicit ids,
// then department, then everyone managed by the timekeeper. Explicit ids that
// are not employees of req.CompanyID come back in rejected and never reach
// the readers or writers.
func (s *FinalizationServiceImpl) resolveScope(ctx context.Context, req finalization.FinalizeRequest, departmentID *string) (employees []finalization.Employee, rejected []string, err error) {
	switch {
	case len(req.EmployeeIDs) > 0:
		employees, rejected, err = s.explicitEmployees(ctx, req.CompanyID, req.EmployeeIDs)
	case departmentID != nil:
		employees, err = s.directory.ListByDepartment(ctx, req.CompanyID, *departmentID)
	default:
		employees, err = s.directory.ListByTimekeeper(ctx, req.CompanyID, req.TimekeeperID)
	}
	if err != nil {
		return nil, nil, &finalization.CollectionError{Source: "employees", Err: err}
	}

	if len(employees) == 0 {
		return nil, nil, finalization.ErrScopeEmpty
	}
	return employees, rejected, nil
}

// explicitEmployees keeps the caller's order and drops duplicate ids. Only
// employees the directory returns for companyID are kept; the other ids are
// returned as rejected.
func (s *FinalizationServiceImpl) explicitEmployees(ctx context.Context, companyID string, ids []string) ([]finalization.Employee, []string, error) {
	found, err := s.directory.GetByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]finalization.Employee, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}

	var rejected []string
	seen := make(map[string]bool, len(ids))
	employees := make([]finalization.Employee, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		emp, ok := byID[id]
		if !ok || emp.CompanyID != companyID {
			rejected = append(rejected, id)
			continue
		}
		employees = append(employees, emp)
	}
	return employees, rejected, nil
}

func rejectedScopeErrors(ids []string) []string {
	msgs := make([]string, len(ids))
	for i, id := range ids {
		msgs[i] = fmt.Sprintf("%s: not an employee of this company", id)
	}
	return msgs
}

func employeeIDs(employees []finalization.Employee) []string {
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	return ids
}
