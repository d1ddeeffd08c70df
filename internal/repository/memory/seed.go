package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/shopspring/decimal"
)

// Seed is the JSON document LoadSeed accepts. Dates are YYYY-MM-DD, clock-in
// times RFC 3339.
type Seed struct {
	Employees []struct {
		ID           string  `json:"id"`
		CompanyID    string  `json:"companyId"`
		DepartmentID *string `json:"departmentId"`
		FullName     string  `json:"fullName"`
	} `json:"employees"`

	// timekeeper id -> employee ids
	Timekeepers map[string][]string `json:"timekeepers"`

	TimeEntries []struct {
		ID                   string    `json:"id"`
		EmployeeID           string    `json:"employeeId"`
		ClockIn              time.Time `json:"clockIn"`
		RegularHours         *float64  `json:"regularHours"`
		OvertimeHours        *float64  `json:"overtimeHours"`
		PayableRegularHours  *float64  `json:"payableRegularHours"`
		PayableOvertimeHours *float64  `json:"payableOvertimeHours"`
	} `json:"timeEntries"`

	Exceptions []struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employeeId"`
		Date       string `json:"date"`
		Type       string `json:"type"`
		Status     string `json:"status"`
	} `json:"exceptions"`

	LeaveRequests []struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employeeId"`
		StartDate  string `json:"startDate"`
		EndDate    string `json:"endDate"`
		Status     string `json:"status"`
		LeaveType  struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			IsPaid        bool   `json:"isPaid"`
			PaymentMethod string `json:"paymentMethod"`
		} `json:"leaveType"`
	} `json:"leaveRequests"`

	Salaries []struct {
		ID            string          `json:"id"`
		EmployeeID    string          `json:"employeeId"`
		BaseSalary    decimal.Decimal `json:"baseSalary"`
		Currency      string          `json:"currency"`
		PayFrequency  string          `json:"payFrequency"`
		EffectiveDate string          `json:"effectiveDate"`
	} `json:"salaries"`

	Timesheets []struct {
		ID          string `json:"id"`
		CompanyID   string `json:"companyId"`
		EmployeeID  string `json:"employeeId"`
		PeriodStart string `json:"periodStart"`
		PeriodEnd   string `json:"periodEnd"`
	} `json:"timesheets"`
}

// LoadSeedFile reads a Seed document from path into the store.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}

// LoadSeed decodes a Seed document and adds its rows to the store. Nothing is
// added when any row is invalid.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}

	var firstErr error
	date := func(field, v string) time.Time {
		d, err := time.Parse(finalization.DateLayout, v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalid %s %q: %w", field, v, err)
		}
		return d
	}

	employees := make([]finalization.Employee, 0, len(seed.Employees))
	for _, e := range seed.Employees {
		employees = append(employees, finalization.Employee{ID: e.ID, CompanyID: e.CompanyID, DepartmentID: e.DepartmentID, FullName: e.FullName})
	}

	entries := make([]finalization.TimeEntry, 0, len(seed.TimeEntries))
	for _, e := range seed.TimeEntries {
		entries = append(entries, finalization.TimeEntry{
			ID:                   e.ID,
			EmployeeID:           e.EmployeeID,
			ClockIn:              e.ClockIn,
			RegularHours:         e.RegularHours,
			OvertimeHours:        e.OvertimeHours,
			PayableRegularHours:  e.PayableRegularHours,
			PayableOvertimeHours: e.PayableOvertimeHours,
		})
	}

	exceptions := make([]finalization.AttendanceException, 0, len(seed.Exceptions))
	for _, e := range seed.Exceptions {
		exceptions = append(exceptions, finalization.AttendanceException{
			ID:            e.ID,
			EmployeeID:    e.EmployeeID,
			ExceptionDate: date("exception date", e.Date),
			ExceptionType: finalization.ExceptionType(e.Type),
			Status:        finalization.ExceptionStatus(e.Status),
		})
	}

	requests := make([]finalization.LeaveRequest, 0, len(seed.LeaveRequests))
	for _, l := range seed.LeaveRequests {
		requests = append(requests, finalization.LeaveRequest{
			ID:          l.ID,
			EmployeeID:  l.EmployeeID,
			LeaveTypeID: l.LeaveType.ID,
			StartDate:   date("leave start date", l.StartDate),
			EndDate:     date("leave end date", l.EndDate),
			Status:      l.Status,
			LeaveType: finalization.LeaveType{
				ID:            l.LeaveType.ID,
				Name:          l.LeaveType.Name,
				IsPaid:        l.LeaveType.IsPaid,
				PaymentMethod: finalization.PaymentMethod(l.LeaveType.PaymentMethod),
			},
		})
	}

	salaries := make([]finalization.SalaryRecord, 0, len(seed.Salaries))
	for _, sal := range seed.Salaries {
		salaries = append(salaries, finalization.SalaryRecord{
			ID:            sal.ID,
			EmployeeID:    sal.EmployeeID,
			BaseSalary:    sal.BaseSalary,
			Currency:      sal.Currency,
			PayFrequency:  finalization.PayFrequency(sal.PayFrequency),
			EffectiveDate: date("salary effective date", sal.EffectiveDate),
		})
	}

	timesheets := make([]finalization.TimesheetSubmission, 0, len(seed.Timesheets))
	for _, ts := range seed.Timesheets {
		timesheets = append(timesheets, finalization.TimesheetSubmission{
			ID:          ts.ID,
			CompanyID:   ts.CompanyID,
			EmployeeID:  ts.EmployeeID,
			PeriodStart: date("timesheet period start", ts.PeriodStart),
			PeriodEnd:   date("timesheet period end", ts.PeriodEnd),
			Status:      finalization.TimesheetStatusSubmitted,
		})
	}

	if firstErr != nil {
		return firstErr
	}

	s.AddEmployees(employees...)
	for timekeeperID, ids := range seed.Timekeepers {
		s.AssignTimekeeper(timekeeperID, ids...)
	}
	s.AddTimeEntries(entries...)
	s.AddExceptions(exceptions...)
	s.AddLeaveRequests(requests...)
	s.AddSalaries(salaries...)
	s.AddTimesheets(timesheets...)
	return nil
}
