package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31", "2024-02-29"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", "2023-02-29", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		assert.True(t, ok, "IsValidDate(%q)", s)
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		assert.False(t, ok, "IsValidDate(%q)", s)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	assert.True(t, IsInSlice("a", slice))
	assert.False(t, IsInSlice("d", slice))
}

type structUnderTest struct {
	CompanyID   string   `json:"companyId" validate:"required"`
	PeriodStart string   `json:"periodStart" validate:"required,datetime=2006-01-02"`
	EmployeeIDs []string `json:"employeeIds,omitempty" validate:"omitempty,dive,required"`
}

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(&structUnderTest{CompanyID: "c1", PeriodStart: "2024-01-01"}))

	errs := Struct(&structUnderTest{PeriodStart: "01/01/2024", EmployeeIDs: []string{"e1", ""}})
	require.Len(t, errs, 3)

	fields := errs.ToMap()
	assert.Equal(t, "is required", fields["companyId"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["periodStart"])
	assert.Equal(t, "is required", fields["employeeIds[1]"])
	assert.Contains(t, errs.Error(), "companyId: is required")
}
