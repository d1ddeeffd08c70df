package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDocument = `{
	"employees": [{"id": "emp-1", "companyId": "company-1", "fullName": "Alice"}],
	"timekeepers": {"tk-1": ["emp-1"]},
	"timeEntries": [{"id": "te-1", "employeeId": "emp-1", "clockIn": "2024-01-02T08:00:00Z", "regularHours": 8}],
	"exceptions": [{"id": "exc-1", "employeeId": "emp-1", "date": "2024-01-03", "type": "late", "status": "approved"}],
	"leaveRequests": [{
		"id": "leave-1", "employeeId": "emp-1", "startDate": "2024-01-04", "endDate": "2024-01-05", "status": "approved",
		"leaveType": {"id": "lt-1", "name": "Unpaid Leave", "isPaid": false, "paymentMethod": "unpaid"}
	}],
	"salaries": [{"id": "sal-1", "employeeId": "emp-1", "baseSalary": "60000", "currency": "USD", "payFrequency": "annual", "effectiveDate": "2023-01-01"}],
	"timesheets": [{"id": "ts-1", "companyId": "company-1", "employeeId": "emp-1", "periodStart": "2024-01-01", "periodEnd": "2024-01-07"}]
}`

func TestStore_LoadSeed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.LoadSeed(strings.NewReader(seedDocument)))

	employees, err := store.Employees().ListByTimekeeper(ctx, "company-1", "tk-1")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Alice", employees[0].FullName)

	salaries, err := store.Salaries().ListActiveByEmployees(ctx, []string{"emp-1"})
	require.NoError(t, err)
	require.Len(t, salaries, 1)
	assert.Equal(t, "60000", salaries[0].BaseSalary.String())

	requests, err := store.LeaveRequests().ListApprovedOverlapping(ctx, []string{"emp-1"}, day(t, "2024-01-01"), day(t, "2024-01-14"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "lt-1", requests[0].LeaveTypeID)

	assert.Len(t, store.Exceptions(), 1)
	assert.Len(t, store.Timesheets(), 1)
}

func TestStore_LoadSeedRejectsBadDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad date", `{"employees": [{"id": "emp-1", "companyId": "c"}], "exceptions": [{"id": "x", "employeeId": "emp-1", "date": "03/01/2024"}]}`},
		{"unknown field", `{"staff": []}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()

			err := store.LoadSeed(strings.NewReader(tt.doc))

			assert.Error(t, err)
			employees, _ := store.Employees().GetByIDs(context.Background(), "c", []string{"emp-1"})
			assert.Empty(t, employees)
		})
	}
}

func TestStore_LoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedDocument), 0o600))

	store := NewStore()
	require.NoError(t, store.LoadSeedFile(path))
	assert.Len(t, store.Timesheets(), 1)

	assert.Error(t, NewStore().LoadSeedFile(filepath.Join(t.TempDir(), "missing.json")))
}
