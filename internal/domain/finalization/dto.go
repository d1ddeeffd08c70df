package finalization

import (
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// ========== INVOCATION ==========

type FinalizeRequest struct {
	CompanyID    string   `json:"companyId" validate:"required"`
	PeriodStart  string   `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd    string   `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	DepartmentID *string  `json:"departmentId,omitempty"`
	EmployeeIDs  []string `json:"employeeIds,omitempty" validate:"omitempty,dive,required"`
	TimekeeperID string   `json:"timekeeperId" validate:"required"`
	PreviewOnly  bool     `json:"previewOnly,omitempty"`
}

func (r *FinalizeRequest) Validate() error {
	errs := validator.Struct(r)

	start, startOK := validator.IsValidDate(r.PeriodStart)
	end, endOK := validator.IsValidDate(r.PeriodEnd)
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "periodEnd", Message: "must not be before periodStart"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the parsed, inclusive date bounds. Call after Validate.
func (r *FinalizeRequest) Period() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, r.PeriodStart)
	end, _ := time.Parse(DateLayout, r.PeriodEnd)
	return start, end
}

// Department returns nil for an absent or blank department id.
func (r *FinalizeRequest) Department() *string {
	if r.DepartmentID == nil || validator.IsEmpty(*r.DepartmentID) {
		return nil
	}
	return r.DepartmentID
}

// ========== SUMMARY ==========

type EmployeeSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	HasAbsences   bool    `json:"hasAbsences"`
}

type FinalizationSummary struct {
	PeriodStart         string             `json:"periodStart"`
	PeriodEnd           string             `json:"periodEnd"`
	DepartmentID        *string            `json:"departmentId,omitempty"`
	EmployeeCount       int                `json:"employeeCount"`
	TotalRegularHours   float64            `json:"totalRegularHours"`
	TotalOvertimeHours  float64            `json:"totalOvertimeHours"`
	AbsencesExcused     int                `json:"absencesExcused"`
	AbsencesUnexcused   int                `json:"absencesUnexcused"`
	Employees           []EmployeeSummary  `json:"employees"`
	LeaveTransactions   []LeaveTransaction `json:"leaveTransactions"`
	TotalLeaveGross     decimal.Decimal    `json:"totalLeaveGross"`
	TotalLeaveNet       decimal.Decimal    `json:"totalLeaveNet"`
	TotalLeaveDeduction decimal.Decimal    `json:"totalLeaveDeduction"`
	ValidationErrors    []string           `json:"validationErrors"`
}

// FinalizeResult is what a Finalize call produces. FinalizationID and Message
// are empty unless the run committed.
type FinalizeResult struct {
	Preview        bool
	FinalizationID string
	SyncStatus     SyncStatus
	Summary        FinalizationSummary
	Message        string
}

// ========== RESPONSES ==========

type PreviewResponse struct {
	Success bool                `json:"success"`
	Preview bool                `json:"preview"`
	Summary FinalizationSummary `json:"summary"`
}

type ValidationFailedResponse struct {
	Success          bool                `json:"success"`
	Error            string              `json:"error"`
	ValidationErrors []string            `json:"validationErrors"`
	Summary          FinalizationSummary `json:"summary"`
}

type CommitResponse struct {
	Success        bool                `json:"success"`
	FinalizationID string              `json:"finalizationId"`
	Summary        FinalizationSummary `json:"summary"`
	Message        string              `json:"message"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// ========== READ API ==========

type FinalizationResponse struct {
	ID                       string             `json:"id"`
	CompanyID                string             `json:"company_id"`
	PeriodStart              string             `json:"period_start"`
	PeriodEnd                string             `json:"period_end"`
	DepartmentID             *string            `json:"department_id,omitempty"`
	EmployeeCount            int                `json:"employee_count"`
	TotalRegularHours        float64            `json:"total_regular_hours"`
	TotalOvertimeHours       float64            `json:"total_overtime_hours"`
	AbsencesExcused          int                `json:"absences_excused"`
	AbsencesUnexcused        int                `json:"absences_unexcused"`
	LeaveTransactionsCreated int                `json:"leave_transactions_created"`
	Status                   string             `json:"status"`
	SyncStatus               string             `json:"sync_status"`
	SyncErrors               []string           `json:"sync_errors,omitempty"`
	FinalizedBy              string             `json:"finalized_by"`
	FinalizedAt              string             `json:"finalized_at"`
	LeaveTransactions        []LeaveTransaction `json:"leave_transactions,omitempty"`
}

type FinalizationFilter struct {
	PeriodStart  *string `json:"period_start,omitempty"`
	PeriodEnd    *string `json:"period_end,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	SyncStatus   *string `json:"sync_status,omitempty"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
}

func (f *FinalizationFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodStart != nil {
		if _, ok := validator.IsValidDate(*f.PeriodStart); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a date in YYYY-MM-DD format"})
		}
	}
	if f.PeriodEnd != nil {
		if _, ok := validator.IsValidDate(*f.PeriodEnd); !ok {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a date in YYYY-MM-DD format"})
		}
	}
	if f.SyncStatus != nil && !validator.IsInSlice(*f.SyncStatus, []string{string(SyncStatusComplete), string(SyncStatusIncomplete)}) {
		errs = append(errs, validator.ValidationError{Field: "sync_status", Message: "must be 'complete' or 'incomplete'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListFinalizationResponse struct {
	Data       []FinalizationResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
}
