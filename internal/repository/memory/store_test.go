package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(finalization.DateLayout, s)
	require.NoError(t, err)
	return d
}

func sampleRecord(t *testing.T, department *string) finalization.FinalizationRecord {
	return finalization.FinalizationRecord{
		CompanyID:    "company-1",
		PeriodStart:  day(t, "2024-01-01"),
		PeriodEnd:    day(t, "2024-01-14"),
		DepartmentID: department,
		Status:       finalization.FinalizationStatusFinalized,
		SyncStatus:   finalization.SyncStatusComplete,
	}
}

func TestFinalizationRepository_UpsertKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.FinalizationRecords()
	dept := "dept-1"

	first, err := repo.Upsert(ctx, sampleRecord(t, nil))
	require.NoError(t, err)
	again, err := repo.Upsert(ctx, sampleRecord(t, nil))
	require.NoError(t, err)
	scoped, err := repo.Upsert(ctx, sampleRecord(t, &dept))
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, first.ID, scoped.ID)
	assert.Len(t, store.Finalizations(), 2)
}

func TestUnitOfWork_NestedFailureRollsBackOnlyInner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := store.UnitOfWork()
	repo := store.FinalizationRecords()
	dept := "dept-1"

	err := uow.Do(ctx, func(ctx context.Context) error {
		if _, err := repo.Upsert(ctx, sampleRecord(t, nil)); err != nil {
			return err
		}
		inner := uow.Do(ctx, func(ctx context.Context) error {
			if _, err := repo.Upsert(ctx, sampleRecord(t, &dept)); err != nil {
				return err
			}
			return errors.New("inner failure")
		})
		assert.Error(t, inner)
		return nil
	})

	require.NoError(t, err)
	records := store.Finalizations()
	require.Len(t, records, 1)
	assert.Nil(t, records[0].DepartmentID)
}

func TestUnitOfWork_OuterFailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := store.UnitOfWork()

	err := uow.Do(ctx, func(ctx context.Context) error {
		if _, err := store.FinalizationRecords().Upsert(ctx, sampleRecord(t, nil)); err != nil {
			return err
		}
		return errors.New("outer failure")
	})

	assert.EqualError(t, err, "outer failure")
	assert.Empty(t, store.Finalizations())
}

func TestStore_FailOn(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("boom")

	store.FailOn(OpUpsertFinalization, boom)
	_, err := store.FinalizationRecords().Upsert(ctx, sampleRecord(t, nil))
	assert.ErrorIs(t, err, boom)

	store.FailOn(OpUpsertFinalization, nil)
	_, err = store.FinalizationRecords().Upsert(ctx, sampleRecord(t, nil))
	assert.NoError(t, err)
}

func TestTimesheetRepository_MarkFinalizedOnlyContained(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.AddTimesheets(
		finalization.TimesheetSubmission{ID: "inside", CompanyID: "company-1", EmployeeID: "emp-1", PeriodStart: day(t, "2024-01-01"), PeriodEnd: day(t, "2024-01-07"), Status: finalization.TimesheetStatusSubmitted},
		finalization.TimesheetSubmission{ID: "straddling", CompanyID: "company-1", EmployeeID: "emp-1", PeriodStart: day(t, "2024-01-08"), PeriodEnd: day(t, "2024-01-21"), Status: finalization.TimesheetStatusSubmitted},
		finalization.TimesheetSubmission{ID: "other-employee", CompanyID: "company-1", EmployeeID: "emp-2", PeriodStart: day(t, "2024-01-01"), PeriodEnd: day(t, "2024-01-07"), Status: finalization.TimesheetStatusSubmitted},
	)

	n, err := store.TimesheetSubmissions().MarkFinalized(ctx, "company-1", []string{"emp-1"}, day(t, "2024-01-01"), day(t, "2024-01-14"), "fin-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	for _, ts := range store.Timesheets() {
		if ts.ID == "inside" {
			assert.Equal(t, finalization.TimesheetStatusFinalized, ts.Status)
			require.NotNil(t, ts.FinalizationID)
			assert.Equal(t, "fin-1", *ts.FinalizationID)
			continue
		}
		assert.Equal(t, finalization.TimesheetStatusSubmitted, ts.Status)
	}
}

func TestLeaveTransactionRepository_ReplaceForFinalization(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.LeaveTransactionRecords()

	n, err := repo.ReplaceForFinalization(ctx, "fin-1", []finalization.LeaveTransaction{{EmployeeID: "emp-1"}, {EmployeeID: "emp-2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.ReplaceForFinalization(ctx, "fin-1", []finalization.LeaveTransaction{{EmployeeID: "emp-1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs, err := repo.ListByFinalization(ctx, "fin-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "fin-1", txs[0].FinalizationID)
	assert.NotEmpty(t, txs[0].ID)
}
