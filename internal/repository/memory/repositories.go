package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/google/uuid"
)

// ========== EMPLOYEE DIRECTORY ==========

type employeeDirectory struct{ *Store }

func (s *Store) Employees() finalization.EmployeeDirectory { return employeeDirectory{s} }

func (r employeeDirectory) GetByIDs(ctx context.Context, companyID string, ids []string) ([]finalization.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListEmployees); err != nil {
		return nil, err
	}

	var out []finalization.Employee
	for _, id := range ids {
		if e, ok := r.employees[id]; ok && e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r employeeDirectory) ListByDepartment(ctx context.Context, companyID string, departmentID string) ([]finalization.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListEmployees); err != nil {
		return nil, err
	}

	var out []finalization.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID && e.DepartmentID != nil && *e.DepartmentID == departmentID {
			out = append(out, e)
		}
	}
	sortEmployees(out)
	return out, nil
}

func (r employeeDirectory) ListByTimekeeper(ctx context.Context, companyID string, timekeeperID string) ([]finalization.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListEmployees); err != nil {
		return nil, err
	}

	var out []finalization.Employee
	for _, id := range r.timekeepers[timekeeperID] {
		if e, ok := r.employees[id]; ok && e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	sortEmployees(out)
	return out, nil
}

func sortEmployees(employees []finalization.Employee) {
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].FullName != employees[j].FullName {
			return employees[i].FullName < employees[j].FullName
		}
		return employees[i].ID < employees[j].ID
	})
}

// ========== TIME ENTRIES ==========

type timeEntryRepository struct{ *Store }

func (s *Store) TimeEntries() finalization.TimeEntryRepository { return timeEntryRepository{s} }

func (r timeEntryRepository) ListByEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]finalization.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListTimeEntries); err != nil {
		return nil, err
	}

	ids := idSet(employeeIDs)
	var out []finalization.TimeEntry
	for _, e := range r.timeEntries {
		if ids[e.EmployeeID] && !e.ClockIn.Before(from) && !e.ClockIn.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ========== ATTENDANCE EXCEPTIONS ==========

type exceptionRepository struct{ *Store }

func (s *Store) AttendanceExceptions() finalization.AttendanceExceptionRepository {
	return exceptionRepository{s}
}

func inPeriod(d, start, end time.Time) bool {
	d = dateOnly(d)
	return !d.Before(dateOnly(start)) && !d.After(dateOnly(end))
}

func (r exceptionRepository) ListByEmployees(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]finalization.AttendanceException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListExceptions); err != nil {
		return nil, err
	}

	ids := idSet(employeeIDs)
	var out []finalization.AttendanceException
	for _, e := range r.exceptions {
		if ids[e.EmployeeID] && inPeriod(e.ExceptionDate, periodStart, periodEnd) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r exceptionRepository) MarkPayrollProcessed(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpMarkExceptions); err != nil {
		return 0, err
	}

	ids := idSet(employeeIDs)
	var n int64
	for i, e := range r.exceptions {
		if ids[e.EmployeeID] && inPeriod(e.ExceptionDate, periodStart, periodEnd) {
			r.exceptions[i].PayrollProcessed = true
			n++
		}
	}
	return n, nil
}

// ========== LEAVE REQUESTS ==========

type leaveRequestRepository struct{ *Store }

func (s *Store) LeaveRequests() finalization.LeaveRequestRepository { return leaveRequestRepository{s} }

func (r leaveRequestRepository) ListApprovedOverlapping(ctx context.Context, employeeIDs []string, periodStart, periodEnd time.Time) ([]finalization.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListLeaveRequests); err != nil {
		return nil, err
	}

	ids := idSet(employeeIDs)
	start, end := dateOnly(periodStart), dateOnly(periodEnd)
	var out []finalization.LeaveRequest
	for _, l := range r.leaveRequests {
		if !ids[l.EmployeeID] || l.Status != finalization.LeaveRequestStatusApproved {
			continue
		}
		if dateOnly(l.StartDate).After(end) || dateOnly(l.EndDate).Before(start) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ========== SALARIES ==========

type salaryRepository struct{ *Store }

func (s *Store) Salaries() finalization.SalaryRepository { return salaryRepository{s} }

func (r salaryRepository) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]finalization.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListSalaries); err != nil {
		return nil, err
	}

	ids := idSet(employeeIDs)
	var out []finalization.SalaryRecord
	for _, sal := range r.salaries {
		if ids[sal.EmployeeID] && sal.EndDate == nil {
			out = append(out, sal)
		}
	}
	return out, nil
}

// ========== FINALIZATIONS ==========

type finalizationRepository struct{ *Store }

func (s *Store) FinalizationRecords() finalization.FinalizationRepository {
	return finalizationRepository{s}
}

func (r finalizationRepository) Upsert(ctx context.Context, record finalization.FinalizationRecord) (finalization.FinalizationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpUpsertFinalization); err != nil {
		return finalization.FinalizationRecord{}, err
	}

	now := r.now()
	for id, existing := range r.finalizations {
		if existing.CompanyID == record.CompanyID &&
			dateOnly(existing.PeriodStart).Equal(dateOnly(record.PeriodStart)) &&
			dateOnly(existing.PeriodEnd).Equal(dateOnly(record.PeriodEnd)) &&
			sameDepartment(existing.DepartmentID, record.DepartmentID) {
			record.ID = id
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = now
			r.finalizations[id] = record
			return record, nil
		}
	}

	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.finalizations[record.ID] = record
	return record, nil
}

func (r finalizationRepository) UpdateSyncStatus(ctx context.Context, id string, status finalization.SyncStatus, syncErrors []string, leaveTransactionsCreated int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpUpdateSyncStatus); err != nil {
		return err
	}

	record, ok := r.finalizations[id]
	if !ok {
		return finalization.ErrFinalizationNotFound
	}
	record.SyncStatus = status
	record.SyncErrors = append([]string(nil), syncErrors...)
	record.LeaveTransactionsCreated = leaveTransactionsCreated
	record.UpdatedAt = r.now()
	r.finalizations[id] = record
	return nil
}

func (r finalizationRepository) GetByID(ctx context.Context, id string, companyID string) (finalization.FinalizationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpGetFinalization); err != nil {
		return finalization.FinalizationRecord{}, err
	}

	record, ok := r.finalizations[id]
	if !ok || record.CompanyID != companyID {
		return finalization.FinalizationRecord{}, finalization.ErrFinalizationNotFound
	}
	return record, nil
}

func (r finalizationRepository) List(ctx context.Context, companyID string, filter finalization.FinalizationFilter) ([]finalization.FinalizationRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListFinalizations); err != nil {
		return nil, 0, err
	}

	var matched []finalization.FinalizationRecord
	for _, rec := range r.finalizations {
		if rec.CompanyID != companyID {
			continue
		}
		if filter.PeriodStart != nil && rec.PeriodStart.Format(finalization.DateLayout) < *filter.PeriodStart {
			continue
		}
		if filter.PeriodEnd != nil && rec.PeriodEnd.Format(finalization.DateLayout) > *filter.PeriodEnd {
			continue
		}
		if filter.DepartmentID != nil && (rec.DepartmentID == nil || *rec.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.SyncStatus != nil && string(rec.SyncStatus) != *filter.SyncStatus {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PeriodStart.Equal(matched[j].PeriodStart) {
			return matched[i].PeriodStart.After(matched[j].PeriodStart)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []finalization.FinalizationRecord{}, total, nil
	}
	end := offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r finalizationRepository) ListIncomplete(ctx context.Context, limit int) ([]finalization.FinalizationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListIncompleteFinalize); err != nil {
		return nil, err
	}

	var out []finalization.FinalizationRecord
	for _, rec := range r.finalizations {
		if rec.SyncStatus == finalization.SyncStatusIncomplete {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ========== TIMESHEETS ==========

type timesheetRepository struct{ *Store }

func (s *Store) TimesheetSubmissions() finalization.TimesheetRepository { return timesheetRepository{s} }

func (r timesheetRepository) MarkFinalized(ctx context.Context, companyID string, employeeIDs []string, periodStart, periodEnd time.Time, finalizationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpMarkTimesheets); err != nil {
		return 0, err
	}

	ids := idSet(employeeIDs)
	now := r.now()
	var n int64
	for i, t := range r.timesheets {
		if t.CompanyID != companyID || !ids[t.EmployeeID] {
			continue
		}
		if !inPeriod(t.PeriodStart, periodStart, periodEnd) || !inPeriod(t.PeriodEnd, periodStart, periodEnd) {
			continue
		}
		fid := finalizationID
		synced := now
		r.timesheets[i].Status = finalization.TimesheetStatusFinalized
		r.timesheets[i].FinalizationID = &fid
		r.timesheets[i].SyncedAt = &synced
		n++
	}
	return n, nil
}

// ========== LEAVE TRANSACTIONS ==========

type leaveTransactionRepository struct{ *Store }

func (s *Store) LeaveTransactionRecords() finalization.LeaveTransactionRepository {
	return leaveTransactionRepository{s}
}

func (r leaveTransactionRepository) ReplaceForFinalization(ctx context.Context, finalizationID string, txs []finalization.LeaveTransaction) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpReplaceLeaveTxs); err != nil {
		return 0, err
	}

	kept := r.leaveTxs[:0:0]
	for _, tx := range r.leaveTxs {
		if tx.FinalizationID != finalizationID {
			kept = append(kept, tx)
		}
	}
	for _, tx := range txs {
		tx.ID = uuid.NewString()
		tx.FinalizationID = finalizationID
		kept = append(kept, tx)
	}
	r.leaveTxs = kept
	return len(txs), nil
}

func (r leaveTransactionRepository) ListByFinalization(ctx context.Context, finalizationID string) ([]finalization.LeaveTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(OpListLeaveTxs); err != nil {
		return nil, err
	}

	out := []finalization.LeaveTransaction{}
	for _, tx := range r.leaveTxs {
		if tx.FinalizationID == finalizationID {
			out = append(out, tx)
		}
	}
	return out, nil
}
