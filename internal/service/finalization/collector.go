package finalization

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"golang.org/x/sync/errgroup"
)

// collectedData holds the period's raw inputs grouped by employee id.
type collectedData struct {
	timeEntries   map[string][]finalization.TimeEntry
	exceptions    map[string][]finalization.AttendanceException
	leaveRequests map[string][]finalization.LeaveRequest
	salaries      map[string]finalization.SalaryRecord
}

// endOfDay is the last representable instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	return dateOnly(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// collect reads the four sources in parallel. Any failure aborts the run.
func (s *FinalizationServiceImpl) collect(ctx context.Context, ids []string, periodStart, periodEnd time.Time) (collectedData, error) {
	data := collectedData{
		timeEntries:   make(map[string][]finalization.TimeEntry),
		exceptions:    make(map[string][]finalization.AttendanceException),
		leaveRequests: make(map[string][]finalization.LeaveRequest),
		salaries:      make(map[string]finalization.SalaryRecord),
	}

	var (
		entries    []finalization.TimeEntry
		exceptions []finalization.AttendanceException
		leaves     []finalization.LeaveRequest
		salaries   []finalization.SalaryRecord
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Time entries by clock-in across the whole last day
	g.Go(func() error {
		var err error
		entries, err = s.timeEntryRepo.ListByEmployees(gCtx, ids, dateOnly(periodStart), endOfDay(periodEnd))
		if err != nil {
			return &finalization.CollectionError{Source: "time entries", Err: err}
		}
		return nil
	})

	// 2. Attendance exceptions dated inside the period
	g.Go(func() error {
		var err error
		exceptions, err = s.exceptionRepo.ListByEmployees(gCtx, ids, periodStart, periodEnd)
		if err != nil {
			return &finalization.CollectionError{Source: "attendance exceptions", Err: err}
		}
		return nil
	})

	// 3. Approved leave overlapping the period
	g.Go(func() error {
		var err error
		leaves, err = s.leaveRequestRepo.ListApprovedOverlapping(gCtx, ids, periodStart, periodEnd)
		if err != nil {
			return &finalization.CollectionError{Source: "leave requests", Err: err}
		}
		return nil
	})

	// 4. Active salaries
	g.Go(func() error {
		var err error
		salaries, err = s.salaryRepo.ListActiveByEmployees(gCtx, ids)
		if err != nil {
			return &finalization.CollectionError{Source: "salary records", Err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return collectedData{}, err
	}

	for _, e := range entries {
		data.timeEntries[e.EmployeeID] = append(data.timeEntries[e.EmployeeID], e)
	}
	for _, e := range exceptions {
		data.exceptions[e.EmployeeID] = append(data.exceptions[e.EmployeeID], e)
	}
	for _, l := range leaves {
		data.leaveRequests[l.EmployeeID] = append(data.leaveRequests[l.EmployeeID], l)
	}
	for _, sal := range salaries {
		current, ok := data.salaries[sal.EmployeeID]
		if !ok || sal.EffectiveDate.After(current.EffectiveDate) {
			data.salaries[sal.EmployeeID] = sal
		}
	}

	return data, nil
}
