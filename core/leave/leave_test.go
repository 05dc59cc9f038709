package leave_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/holiday"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/setting"
	"github.com/trezcool/hrms/testutil"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to leave.Status
		want     bool
	}{
		{leave.StatusPending, leave.StatusDepartmentApproved, true},
		{leave.StatusPending, leave.StatusDepartmentRejected, true},
		{leave.StatusPending, leave.StatusCancelled, true},
		{leave.StatusPending, leave.StatusApproved, false},
		{leave.StatusPending, leave.StatusRejected, false},
		{leave.StatusDepartmentApproved, leave.StatusApproved, true},
		{leave.StatusDepartmentApproved, leave.StatusRejected, true},
		{leave.StatusDepartmentApproved, leave.StatusCancelled, true},
		{leave.StatusDepartmentApproved, leave.StatusDepartmentRejected, false},
		{leave.StatusDepartmentRejected, leave.StatusCancelled, false},
		{leave.StatusApproved, leave.StatusCancelled, false},
		{leave.StatusRejected, leave.StatusApproved, false},
		{leave.StatusCancelled, leave.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, leave.CanTransition(tt.from, tt.to))
		})
	}
}

func TestService_WorkingDays(t *testing.T) {
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := env.Deps.LeaveSvc

	_, err = env.Deps.HolidaySvc.Create(ctx, holiday.NewHoliday{Name: "Independence Day", Date: "2024-03-06"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{name: "single day", start: "2024-03-04", end: "2024-03-04", want: 1},
		{name: "week with a holiday", start: "2024-03-04", end: "2024-03-08", want: 4},
		{name: "weekend", start: "2024-03-09", end: "2024-03-10", want: 0},
		{name: "two weeks", start: "2024-03-04", end: "2024-03-15", want: 9},
		{name: "holiday only", start: "2024-03-06", end: "2024-03-06", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.WorkingDays(ctx, core.MustParseDate(tt.start), core.MustParseDate(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("custom weekend", func(t *testing.T) {
		_, err := env.Deps.SettingSvc.Update(ctx, map[string]string{setting.WeekendDays: "friday,saturday"})
		require.NoError(t, err)
		got, err := svc.WorkingDays(ctx, core.MustParseDate("2024-03-04"), core.MustParseDate("2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, 4, got, "mon, tue, thu and sun")
	})
}

func TestService_review(t *testing.T) {
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := env.Deps.LeaveSvc

	mathHead := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Efua", "Asante", testutil.EmployeeOpts{})
	math := testutil.CreateDepartment(t, env.Repos.Departments, "Mathematics", "MATH", &mathHead.ID)
	artHead := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kojo", "Antwi", testutil.EmployeeOpts{})
	testutil.CreateDepartment(t, env.Repos.Departments, "Arts", "ART", &artHead.ID)
	member := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-003", "Ama", "Mensah", testutil.EmployeeOpts{DepartmentID: &math.ID})
	loner := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-004", "Yaw", "Owusu", testutil.EmployeeOpts{})

	staff := leave.Actor{UserID: "staff-user", Staff: true}
	submit := func(emp string, start, end string) leave.LeaveRequest {
		lr, err := svc.Submit(ctx, leave.NewLeaveRequest{LeaveType: "annual", StartDate: start, EndDate: end},
			leave.Actor{UserID: "u-" + emp, EmployeeID: emp})
		require.NoError(t, err)
		return lr
	}

	lr := submit(member.ID, "2024-03-04", "2024-03-05")
	orphan := submit(loner.ID, "2024-03-04", "2024-03-05")

	tests := []struct {
		name  string
		lr    leave.LeaveRequest
		actor leave.Actor
		want  bool
	}{
		{name: "own department head", lr: lr, actor: leave.Actor{UserID: "u1", EmployeeID: mathHead.ID}, want: true},
		{name: "other department head", lr: lr, actor: leave.Actor{UserID: "u2", EmployeeID: artHead.ID}},
		{name: "colleague", lr: lr, actor: leave.Actor{UserID: "u3", EmployeeID: loner.ID}},
		{name: "staff", lr: lr, actor: staff, want: true},
		{name: "self, even as staff", lr: lr, actor: leave.Actor{UserID: "u4", EmployeeID: member.ID, Staff: true}},
		{name: "no department, head", lr: orphan, actor: leave.Actor{UserID: "u1", EmployeeID: mathHead.ID}},
		{name: "no department, staff", lr: orphan, actor: staff, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanReviewDepartment(ctx, tt.lr, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("other head is forbidden", func(t *testing.T) {
		_, err := svc.DepartmentDecision(ctx, lr, leave.Actor{UserID: "u2", EmployeeID: artHead.ID}, leave.Decision{Action: "approve"})
		require.Error(t, err)
		forbidden, ok := errors.Cause(err).(*core.ForbiddenError)
		require.True(t, ok, err.Error())
		assert.Equal(t, leave.ErrNotDepartmentHead, forbidden.Err)
	})

	t.Run("approval flow", func(t *testing.T) {
		got, err := svc.DepartmentDecision(ctx, lr, leave.Actor{UserID: "u1", EmployeeID: mathHead.ID}, leave.Decision{Action: "Approve", Comment: " fine "})
		require.NoError(t, err)
		assert.Equal(t, leave.StatusDepartmentApproved, got.Status)
		assert.Equal(t, "fine", got.DepartmentComment)

		// a stale copy cannot skip the stored state
		_, err = svc.DepartmentDecision(ctx, lr, staff, leave.Decision{Action: "reject"})
		assert.True(t, core.IsConflict(err))

		got, err = svc.FinalDecision(ctx, got, staff, leave.Decision{Action: "approve"})
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, got.Status)
		require.NotNil(t, got.ReviewedAt)

		onLeave, err := svc.EmployeesOnLeave(ctx, core.MustParseDate("2024-03-05"))
		require.NoError(t, err)
		assert.Equal(t, []string{member.ID}, onLeave, "pending requests do not count")
	})
}

func TestService_Balance(t *testing.T) {
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := env.Deps.LeaveSvc

	emp := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})
	actor := leave.Actor{UserID: "u1", EmployeeID: emp.ID}
	staff := leave.Actor{UserID: "staff-user", Staff: true}
	submit := func(lt, start, end string) leave.LeaveRequest {
		lr, err := svc.Submit(ctx, leave.NewLeaveRequest{LeaveType: lt, StartDate: start, EndDate: end}, actor)
		require.NoError(t, err)
		return lr
	}

	approved := submit("sick", "2024-02-05", "2024-02-07")
	approved, err = svc.DepartmentDecision(ctx, approved, staff, leave.Decision{Action: "approve"})
	require.NoError(t, err)
	_, err = svc.FinalDecision(ctx, approved, staff, leave.Decision{Action: "approve"})
	require.NoError(t, err)

	submit("sick", "2024-03-04", "2024-03-04")
	cancelled := submit("sick", "2024-04-01", "2024-04-05")
	_, err = svc.Cancel(ctx, cancelled, actor)
	require.NoError(t, err)
	submit("unpaid", "2024-05-06", "2024-05-31")
	submit("sick", "2025-01-06", "2025-01-06")

	balances, err := svc.Balance(ctx, emp.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, []leave.Balance{
		{LeaveType: leave.Annual, Allowance: 20, Remaining: 20},
		{LeaveType: leave.Sick, Allowance: 10, Used: 3, Pending: 1, Remaining: 6},
		{LeaveType: leave.Casual, Allowance: 5, Remaining: 5},
		{LeaveType: leave.Maternity, Allowance: -1, Remaining: -1},
		{LeaveType: leave.Paternity, Allowance: -1, Remaining: -1},
		{LeaveType: leave.Unpaid, Allowance: -1, Pending: 20, Remaining: -1},
	}, balances)

	t.Run("allowance counts held days", func(t *testing.T) {
		_, err := svc.Submit(ctx, leave.NewLeaveRequest{LeaveType: "sick", StartDate: "2024-06-03", EndDate: "2024-06-11"}, actor)
		require.Error(t, err)
		verr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, err.Error())
		assert.Equal(t, []core.FieldError{{Field: "leave_type", Error: "leave allowance exceeded: 6 of 10 sick day(s) left in 2024"}}, verr.Fields)

		submit("sick", "2024-06-03", "2024-06-10")
	})
}
