package finalization

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/shopspring/decimal"
)

// WorkingDaysPerYear is the fixed divisor used to turn an annual salary into a
// daily rate, regardless of the period length or leap years.
const WorkingDaysPerYear = 260

var annualMultipliers = map[finalization.PayFrequency]int64{
	finalization.PayFrequencyHourly:      2080,
	finalization.PayFrequencyDaily:       260,
	finalization.PayFrequencyWeekly:      52,
	finalization.PayFrequencyBiWeekly:    26,
	finalization.PayFrequencySemiMonthly: 24,
	finalization.PayFrequencyMonthly:     12,
	finalization.PayFrequencyAnnual:      1,
}

var hundred = decimal.NewFromInt(100)

// normalizeFrequency accepts "Bi_Weekly", "bi-weekly" and "bi weekly" alike.
func normalizeFrequency(f finalization.PayFrequency) finalization.PayFrequency {
	s := strings.ToLower(strings.TrimSpace(string(f)))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	return finalization.PayFrequency(s)
}

// AnnualMultiplier returns how many pay periods of frequency f make a year.
// Unknown frequencies are treated as monthly.
func AnnualMultiplier(f finalization.PayFrequency) int64 {
	if m, ok := annualMultipliers[normalizeFrequency(f)]; ok {
		return m
	}
	return annualMultipliers[finalization.PayFrequencyMonthly]
}

// AnnualSalary converts the base salary of rec to a yearly figure.
func AnnualSalary(rec finalization.SalaryRecord) decimal.Decimal {
	return rec.BaseSalary.Mul(decimal.NewFromInt(AnnualMultiplier(rec.PayFrequency)))
}

// DailyRate is the annual salary over WorkingDaysPerYear, zero without a salary.
func DailyRate(rec *finalization.SalaryRecord) decimal.Decimal {
	if rec == nil {
		return decimal.Zero
	}
	return AnnualSalary(*rec).Div(decimal.NewFromInt(WorkingDaysPerYear))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BusinessDays counts Monday to Friday days in [start, end], both inclusive.
func BusinessDays(start, end time.Time) int {
	days := 0
	current := dateOnly(start)
	last := dateOnly(end)
	for !current.After(last) {
		if current.Weekday() != time.Saturday && current.Weekday() != time.Sunday {
			days++
		}
		current = current.AddDate(0, 0, 1)
	}
	return days
}

// OverlapInterval clips [leaveStart, leaveEnd] to [periodStart, periodEnd].
func OverlapInterval(leaveStart, leaveEnd, periodStart, periodEnd time.Time) (time.Time, time.Time) {
	start := dateOnly(leaveStart)
	if ps := dateOnly(periodStart); ps.After(start) {
		start = ps
	}
	end := dateOnly(leaveEnd)
	if pe := dateOnly(periodEnd); pe.Before(end) {
		end = pe
	}
	return start, end
}

// PaymentPolicy maps a leave type to the share of pay kept while on leave.
func PaymentPolicy(lt finalization.LeaveType) (int, finalization.TransactionType) {
	switch {
	case !lt.IsPaid || lt.PaymentMethod == finalization.PaymentMethodUnpaid:
		return 0, finalization.TransactionTypeUnpaidDeduction
	case lt.PaymentMethod == finalization.PaymentMethodReducedPay:
		return 50, finalization.TransactionTypePaidLeave
	case lt.PaymentMethod == finalization.PaymentMethodStatutory:
		return 66, finalization.TransactionTypeSickLeaveStatutory
	default:
		return 100, finalization.TransactionTypePaidLeave
	}
}

// CalculateLeaveTransaction prices the part of req that falls inside the
// period. ok is false when the overlap has no business days.
//
// Amounts are rounded to cents: gross first, then net from the rounded gross;
// deduction is the exact remainder so gross == net + deduction always holds.
func CalculateLeaveTransaction(
	req finalization.LeaveRequest,
	emp finalization.Employee,
	salary *finalization.SalaryRecord,
	periodStart, periodEnd time.Time,
) (tx finalization.LeaveTransaction, ok bool) {
	effectiveStart, effectiveEnd := OverlapInterval(req.StartDate, req.EndDate, periodStart, periodEnd)
	days := BusinessDays(effectiveStart, effectiveEnd)
	if days == 0 {
		return finalization.LeaveTransaction{}, false
	}

	dailyRate := DailyRate(salary)
	percentage, txType := PaymentPolicy(req.LeaveType)

	gross := dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
	net := gross.Mul(decimal.NewFromInt(int64(percentage))).Div(hundred).Round(2)
	deduction := gross.Sub(net)

	currency := ""
	if salary != nil {
		currency = salary.Currency
	}

	leaveTypeName := req.LeaveType.Name
	leaveTypeID := req.LeaveTypeID
	if leaveTypeID == "" {
		leaveTypeID = req.LeaveType.ID
	}

	return finalization.LeaveTransaction{
		EmployeeID:        emp.ID,
		EmployeeName:      displayName(emp),
		LeaveRequestID:    req.ID,
		LeaveTypeID:       leaveTypeID,
		LeaveTypeName:     leaveTypeName,
		DaysInPeriod:      days,
		DailyRate:         dailyRate.Round(2),
		PaymentPercentage: percentage,
		GrossAmount:       gross,
		NetAmount:         net,
		DeductionAmount:   deduction,
		TransactionType:   txType,
		Currency:          currency,
	}, true
}

func displayName(emp finalization.Employee) string {
	if emp.FullName != "" {
		return emp.FullName
	}
	return emp.ID
}
