// Package memory is an in-process implementation of the finalization
// collaborators. It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
)

// Operation names accepted by FailOn.
const (
	OpListEmployees          = "employees.list"
	OpListTimeEntries        = "time_entries.list"
	OpListExceptions         = "attendance_exceptions.list"
	OpMarkExceptions         = "attendance_exceptions.mark_processed"
	OpListLeaveRequests      = "leave_requests.list"
	OpListSalaries           = "salaries.list"
	OpUpsertFinalization     = "finalizations.upsert"
	OpUpdateSyncStatus       = "finalizations.update_sync_status"
	OpMarkTimesheets         = "timesheets.mark_finalized"
	OpReplaceLeaveTxs        = "leave_transactions.replace"
	OpListLeaveTxs           = "leave_transactions.list"
	OpGetFinalization        = "finalizations.get"
	OpListFinalizations      = "finalizations.list"
	OpListIncompleteFinalize = "finalizations.list_incomplete"
)

// Store holds every table in memory. Units of work snapshot the mutable
// tables and restore them when fn fails; they are not isolated from other
// goroutines writing at the same time.
type Store struct {
	mu sync.Mutex

	employees     map[string]finalization.Employee
	timekeepers   map[string][]string
	timeEntries   []finalization.TimeEntry
	exceptions    []finalization.AttendanceException
	leaveRequests []finalization.LeaveRequest
	salaries      []finalization.SalaryRecord
	timesheets    []finalization.TimesheetSubmission
	finalizations map[string]finalization.FinalizationRecord
	leaveTxs      []finalization.LeaveTransaction
	failures      map[string]error
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		employees:     make(map[string]finalization.Employee),
		timekeepers:   make(map[string][]string),
		finalizations: make(map[string]finalization.FinalizationRecord),
		failures:      make(map[string]error),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// FailOn makes every later call of op return err. A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// fail must be called with mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

// ========== SEEDING ==========

func (s *Store) AddEmployees(employees ...finalization.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range employees {
		s.employees[e.ID] = e
	}
}

// AssignTimekeeper puts employeeIDs under the supervision of timekeeperID.
func (s *Store) AssignTimekeeper(timekeeperID string, employeeIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timekeepers[timekeeperID] = append(s.timekeepers[timekeeperID], employeeIDs...)
}

func (s *Store) AddTimeEntries(entries ...finalization.TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeEntries = append(s.timeEntries, entries...)
}

func (s *Store) AddExceptions(exceptions ...finalization.AttendanceException) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exceptions = append(s.exceptions, exceptions...)
}

func (s *Store) AddLeaveRequests(requests ...finalization.LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveRequests = append(s.leaveRequests, requests...)
}

func (s *Store) AddSalaries(salaries ...finalization.SalaryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salaries = append(s.salaries, salaries...)
}

func (s *Store) AddTimesheets(timesheets ...finalization.TimesheetSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timesheets = append(s.timesheets, timesheets...)
}

// ========== INSPECTION ==========

func (s *Store) Finalizations() []finalization.FinalizationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]finalization.FinalizationRecord, 0, len(s.finalizations))
	for _, r := range s.finalizations {
		out = append(out, r)
	}
	return out
}

func (s *Store) LeaveTransactions() []finalization.LeaveTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]finalization.LeaveTransaction(nil), s.leaveTxs...)
}

func (s *Store) Timesheets() []finalization.TimesheetSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]finalization.TimesheetSubmission(nil), s.timesheets...)
}

func (s *Store) Exceptions() []finalization.AttendanceException {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]finalization.AttendanceException(nil), s.exceptions...)
}

// ========== UNIT OF WORK ==========

type snapshot struct {
	exceptions    []finalization.AttendanceException
	timesheets    []finalization.TimesheetSubmission
	finalizations map[string]finalization.FinalizationRecord
	leaveTxs      []finalization.LeaveTransaction
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	finalizations := make(map[string]finalization.FinalizationRecord, len(s.finalizations))
	for k, v := range s.finalizations {
		finalizations[k] = v
	}
	return snapshot{
		exceptions:    append([]finalization.AttendanceException(nil), s.exceptions...),
		timesheets:    append([]finalization.TimesheetSubmission(nil), s.timesheets...),
		finalizations: finalizations,
		leaveTxs:      append([]finalization.LeaveTransaction(nil), s.leaveTxs...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exceptions = snap.exceptions
	s.timesheets = snap.timesheets
	s.finalizations = snap.finalizations
	s.leaveTxs = snap.leaveTxs
}

type unitOfWork struct {
	store *Store
}

func (s *Store) UnitOfWork() finalization.UnitOfWork {
	return &unitOfWork{store: s}
}

// Do restores the tables to their state at entry when fn fails. Nesting
// works like savepoints: an inner failure undoes only the inner changes.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := u.store.takeSnapshot()
	if err := fn(ctx); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

// ========== HELPERS ==========

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sameDepartment(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
