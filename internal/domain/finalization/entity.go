package finalization

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the directory view the engine needs: identity and display name.
type Employee struct {
	ID           string
	CompanyID    string
	DepartmentID *string
	FullName     string
}

// TimeEntry - punch-derived shift record, computed upstream by the time clock
type TimeEntry struct {
	ID            string
	EmployeeID    string
	ClockIn       time.Time
	ClockOut      *time.Time
	AdminClockIn  *time.Time
	AdminClockOut *time.Time

	RegularHours         *float64
	OvertimeHours        *float64
	PayableRegularHours  *float64
	PayableOvertimeHours *float64
	TotalHours           *float64
}

// ExceptionStatus enum
type ExceptionStatus string

const (
	ExceptionStatusPending  ExceptionStatus = "pending"
	ExceptionStatusApproved ExceptionStatus = "approved"
	ExceptionStatusRejected ExceptionStatus = "rejected"
)

// ExceptionType enum
type ExceptionType string

const (
	ExceptionTypeExcusedAbsence   ExceptionType = "excused_absence"
	ExceptionTypeUnexcusedAbsence ExceptionType = "unexcused_absence"
	ExceptionTypeAbsent           ExceptionType = "absent"
	ExceptionTypeLate             ExceptionType = "late"
	ExceptionTypeEarlyOut         ExceptionType = "early_out"
)

// AttendanceException - flagged anomaly for an employee on a date
type AttendanceException struct {
	ID               string
	EmployeeID       string
	ExceptionDate    time.Time
	ExceptionType    ExceptionType
	Status           ExceptionStatus
	PayrollProcessed bool
}

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodFullPay    PaymentMethod = "full_pay"
	PaymentMethodUnpaid     PaymentMethod = "unpaid"
	PaymentMethodReducedPay PaymentMethod = "reduced_pay"
	PaymentMethodStatutory  PaymentMethod = "statutory"
)

// LeaveType - payment policy attached to a leave request
type LeaveType struct {
	ID            string
	Name          string
	Code          *string
	IsPaid        bool
	PaymentMethod PaymentMethod
}

const LeaveRequestStatusApproved = "approved"

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Status      string

	// Joined fields
	LeaveType LeaveType
}

// PayFrequency enum
type PayFrequency string

const (
	PayFrequencyHourly      PayFrequency = "hourly"
	PayFrequencyDaily       PayFrequency = "daily"
	PayFrequencyWeekly      PayFrequency = "weekly"
	PayFrequencyBiWeekly    PayFrequency = "bi-weekly"
	PayFrequencySemiMonthly PayFrequency = "semi-monthly"
	PayFrequencyMonthly     PayFrequency = "monthly"
	PayFrequencyAnnual      PayFrequency = "annual"
)

// SalaryRecord - active (no end date) base salary of an employee
type SalaryRecord struct {
	ID            string
	EmployeeID    string
	BaseSalary    decimal.Decimal
	Currency      string
	PayFrequency  PayFrequency
	EffectiveDate time.Time
	EndDate       *time.Time
}

// TransactionType enum
type TransactionType string

const (
	TransactionTypePaidLeave          TransactionType = "paid_leave"
	TransactionTypeUnpaidDeduction    TransactionType = "unpaid_deduction"
	TransactionTypeSickLeaveStatutory TransactionType = "sick_leave_statutory"
)

// LeaveTransaction - derived pay impact of one leave request in one period
type LeaveTransaction struct {
	ID                string          `json:"id,omitempty"`
	FinalizationID    string          `json:"finalizationId,omitempty"`
	EmployeeID        string          `json:"employeeId"`
	EmployeeName      string          `json:"employeeName"`
	LeaveRequestID    string          `json:"leaveRequestId"`
	LeaveTypeID       string          `json:"leaveTypeId"`
	LeaveTypeName     string          `json:"leaveTypeName"`
	DaysInPeriod      int             `json:"daysInPeriod"`
	DailyRate         decimal.Decimal `json:"dailyRate"`
	PaymentPercentage int             `json:"paymentPercentage"`
	GrossAmount       decimal.Decimal `json:"grossAmount"`
	NetAmount         decimal.Decimal `json:"netAmount"`
	DeductionAmount   decimal.Decimal `json:"deductionAmount"`
	TransactionType   TransactionType `json:"transactionType"`
	Currency          string          `json:"currency,omitempty"`
}

// TimesheetStatus enum
type TimesheetStatus string

const (
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusFinalized TimesheetStatus = "finalized"
)

// TimesheetSubmission - an employee's submitted timesheet for a date range.
// Submissions lying inside a finalized period are stamped with its id.
type TimesheetSubmission struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	Status         TimesheetStatus
	FinalizationID *string
	SyncedAt       *time.Time
}

// FinalizationStatus enum
type FinalizationStatus string

const FinalizationStatusFinalized FinalizationStatus = "finalized"

// SyncStatus tracks whether the dependent writes of a commit all landed.
type SyncStatus string

const (
	SyncStatusComplete   SyncStatus = "complete"
	SyncStatusIncomplete SyncStatus = "incomplete"
)

// FinalizationRecord - unit of idempotent commit, unique per
// (company, period start, period end, department)
type FinalizationRecord struct {
	ID                       string
	CompanyID                string
	PeriodStart              time.Time
	PeriodEnd                time.Time
	DepartmentID             *string
	EmployeeIDs              []string
	EmployeeCount            int
	TotalRegularHours        float64
	TotalOvertimeHours       float64
	AbsencesExcused          int
	AbsencesUnexcused        int
	LeaveTransactionsCreated int
	Status                   FinalizationStatus
	SyncStatus               SyncStatus
	SyncErrors               []string
	FinalizedBy              string
	FinalizedAt              time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
