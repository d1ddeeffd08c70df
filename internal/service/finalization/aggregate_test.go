package finalization

import (
	"testing"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/stretchr/testify/assert"
)

func hours(v float64) *float64 { return &v }

func TestSumHours_PrefersPayableHours(t *testing.T) {
	entries := []finalization.TimeEntry{
		{RegularHours: hours(8), OvertimeHours: hours(1), PayableRegularHours: hours(7.5)},
		{RegularHours: hours(8), PayableOvertimeHours: hours(2)},
		{},
	}

	regular, overtime := SumHours(entries)

	assert.Equal(t, 15.5, regular)
	assert.Equal(t, 3.0, overtime)
}

func TestClassifyExceptions(t *testing.T) {
	exceptions := []finalization.AttendanceException{
		{ExceptionType: finalization.ExceptionTypeExcusedAbsence, Status: finalization.ExceptionStatusPending},
		{ExceptionType: finalization.ExceptionTypeUnexcusedAbsence, Status: finalization.ExceptionStatusRejected},
		{ExceptionType: finalization.ExceptionTypeAbsent, Status: finalization.ExceptionStatusPending},
		{ExceptionType: finalization.ExceptionTypeLate, Status: finalization.ExceptionStatusApproved},
		{ExceptionType: finalization.ExceptionTypeUnexcusedAbsence, Status: finalization.ExceptionStatusApproved},
	}

	excused, unexcused, pending := ClassifyExceptions(exceptions)

	// the approved unexcused absence lands in both buckets
	assert.Equal(t, 3, excused)
	assert.Equal(t, 3, unexcused)
	assert.Equal(t, 2, pending)
}
