package loyalty_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/loyalty"
	"github.com/trezcool/hrms/testutil"
)

func TestService_Eligible(t *testing.T) {
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := env.Deps.LoyaltySvc

	joined := func(s string) testutil.EmployeeOpts {
		return testutil.EmployeeOpts{DateOfJoining: core.MustParseDate(s)}
	}
	veteran := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", joined("2003-06-01"))
	senior := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kofi", "Boateng", joined("2014-01-05"))
	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-003", "Yaw", "Owusu", joined("2021-01-06")) // one day short of 5
	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-004", "Esi", "Appiah", testutil.EmployeeOpts{
		DateOfJoining: core.MustParseDate("2000-01-01"),
		Status:        employee.StatusInactive,
	})
	asOf := core.MustParseDate("2026-01-05")

	type got struct {
		code            string
		years, milestone int
	}
	eligible := func() []got {
		list, err := svc.Eligible(ctx, asOf)
		require.NoError(t, err)
		res := make([]got, 0, len(list))
		for _, e := range list {
			res = append(res, got{e.Employee.EmployeeCode, e.YearsOfService, e.MilestoneYears})
		}
		return res
	}

	assert.Equal(t, []got{{"EMP-001", 22, 20}, {"EMP-002", 12, 10}}, eligible())

	award := func(emp employee.Employee, years int) {
		_, err := svc.Create(ctx, loyalty.NewAward{EmployeeID: emp.ID, Title: "Long service", MilestoneYears: years}, "")
		require.NoError(t, err)
	}
	award(veteran, 20)
	award(senior, 5)
	assert.Equal(t, []got{{"EMP-001", 22, 15}, {"EMP-002", 12, 10}}, eligible(), "next unawarded milestone")

	award(senior, 10)
	for _, m := range []int{15, 10, 5} {
		award(veteran, m)
	}
	assert.Empty(t, eligible())
}

func TestService_Create(t *testing.T) {
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := env.Deps.LoyaltySvc

	emp := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})
	na := loyalty.NewAward{EmployeeID: emp.ID, Title: " Long service ", MilestoneYears: 5, AwardedOn: "2020-01-10"}

	a, err := svc.Create(ctx, na, "")
	require.NoError(t, err)
	assert.Equal(t, "Long service", a.Title)
	assert.Equal(t, "2020-01-10", a.AwardedOn.String())
	assert.Nil(t, a.AwardedBy)

	_, err = svc.Create(ctx, na, "")
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok, "%v", err)
	assert.Equal(t, "milestone_years", verr.Fields[0].Field)

	t.Run("unknown employee", func(t *testing.T) {
		_, err := svc.Create(ctx, loyalty.NewAward{EmployeeID: "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", Title: "x", MilestoneYears: 5}, "")
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "%v", err)
		assert.Equal(t, "employee_id", verr.Fields[0].Field)
	})
}
