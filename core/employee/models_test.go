package employee_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
)

func TestEmployee_YearsOfService(t *testing.T) {
	tests := []struct {
		name   string
		joined string
		asOf   string
		want   int
	}{
		{name: "not joined yet", joined: "2024-09-01", asOf: "2024-08-31", want: 0},
		{name: "first day", joined: "2024-09-01", asOf: "2024-09-01", want: 0},
		{name: "day before anniversary", joined: "2019-09-01", asOf: "2024-08-31", want: 4},
		{name: "anniversary", joined: "2019-09-01", asOf: "2024-09-01", want: 5},
		{name: "earlier month", joined: "2019-09-01", asOf: "2025-03-15", want: 5},
		{name: "leap day", joined: "2020-02-29", asOf: "2021-02-28", want: 0},
		{name: "leap day next march", joined: "2020-02-29", asOf: "2021-03-01", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emp := employee.Employee{DateOfJoining: core.MustParseDate(tt.joined)}
			assert.Equal(t, tt.want, emp.YearsOfService(core.MustParseDate(tt.asOf)))
		})
	}

	t.Run("unknown joining date", func(t *testing.T) {
		assert.Zero(t, employee.Employee{}.YearsOfService(core.MustParseDate("2024-01-01")))
	})
}
