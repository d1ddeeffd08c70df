package finalization

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/shopspring/decimal"
)

// SumHours adds up payable hours, falling back to the raw computed hours when
// no admin-adjusted value exists.
func SumHours(entries []finalization.TimeEntry) (regular, overtime float64) {
	for _, e := range entries {
		regular += firstOf(e.PayableRegularHours, e.RegularHours)
		overtime += firstOf(e.PayableOvertimeHours, e.OvertimeHours)
	}
	return regular, overtime
}

func firstOf(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// ClassifyExceptions counts excused, unexcused and pending exceptions. The
// buckets are independent: an absent/pending exception is unexcused and pending.
func ClassifyExceptions(exceptions []finalization.AttendanceException) (excused, unexcused, pending int) {
	for _, e := range exceptions {
		if e.ExceptionType == finalization.ExceptionTypeExcusedAbsence || e.Status == finalization.ExceptionStatusApproved {
			excused++
		}
		if e.ExceptionType == finalization.ExceptionTypeUnexcusedAbsence ||
			(e.ExceptionType == finalization.ExceptionTypeAbsent && e.Status == finalization.ExceptionStatusPending) {
			unexcused++
		}
		if e.Status == finalization.ExceptionStatusPending {
			pending++
		}
	}
	return excused, unexcused, pending
}

// computeSummary reduces the collected data of every employee in scope into
// a FinalizationSummary, including the leave transactions and validation errors.
func computeSummary(
	employees []finalization.Employee,
	data collectedData,
	periodStart, periodEnd time.Time,
	departmentID *string,
) finalization.FinalizationSummary {
	summary := finalization.FinalizationSummary{
		PeriodStart:         periodStart.Format(finalization.DateLayout),
		PeriodEnd:           periodEnd.Format(finalization.DateLayout),
		DepartmentID:        departmentID,
		EmployeeCount:       len(employees),
		Employees:           make([]finalization.EmployeeSummary, 0, len(employees)),
		LeaveTransactions:   []finalization.LeaveTransaction{},
		TotalLeaveGross:     decimal.Zero,
		TotalLeaveNet:       decimal.Zero,
		TotalLeaveDeduction: decimal.Zero,
		ValidationErrors:    []string{},
	}

	for _, emp := range employees {
		name := displayName(emp)
		entries := data.timeEntries[emp.ID]

		regular, overtime := SumHours(entries)
		excused, unexcused, pending := ClassifyExceptions(data.exceptions[emp.ID])

		summary.TotalRegularHours += regular
		summary.TotalOvertimeHours += overtime
		summary.AbsencesExcused += excused
		summary.AbsencesUnexcused += unexcused
		summary.Employees = append(summary.Employees, finalization.EmployeeSummary{
			ID:            emp.ID,
			Name:          name,
			RegularHours:  regular,
			OvertimeHours: overtime,
			HasAbsences:   excused+unexcused > 0,
		})

		if len(entries) == 0 && regular == 0 {
			summary.ValidationErrors = append(summary.ValidationErrors, fmt.Sprintf("%s: No time entries for period", name))
		}
		if pending > 0 {
			summary.ValidationErrors = append(summary.ValidationErrors, fmt.Sprintf("%s: %d unresolved exceptions", name, pending))
		}

		var salary *finalization.SalaryRecord
		if rec, ok := data.salaries[emp.ID]; ok {
			salary = &rec
		}

		for _, leave := range data.leaveRequests[emp.ID] {
			tx, ok := CalculateLeaveTransaction(leave, emp, salary, periodStart, periodEnd)
			if !ok {
				continue
			}
			summary.LeaveTransactions = append(summary.LeaveTransactions, tx)
			summary.TotalLeaveGross = summary.TotalLeaveGross.Add(tx.GrossAmount)
			summary.TotalLeaveNet = summary.TotalLeaveNet.Add(tx.NetAmount)
			summary.TotalLeaveDeduction = summary.TotalLeaveDeduction.Add(tx.DeductionAmount)
		}
	}

	return summary
}
