package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

type leaveFixture struct {
	staff                  staffFixture
	head, member, outsider employee.Employee
	headToken              string
	memberToken            string
	outsiderToken          string
}

// createLeaveFixture sets up a department headed by head, with member in it and outsider elsewhere.
func createLeaveFixture(t *testing.T) leaveFixture {
	staff := createStaff(t)

	headUsr := testutil.CreateUser(t, env.Repos.Users, "Efua", "efua", "efua@school.test", "", []string{user.RoleEmployee}, true)
	head := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Efua", "Asante", testutil.EmployeeOpts{UserID: &headUsr.ID})
	dept := testutil.CreateDepartment(t, env.Repos.Departments, "Mathematics", "MATH", &head.ID)

	memberUsr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	member := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Ama", "Mensah", testutil.EmployeeOpts{UserID: &memberUsr.ID, DepartmentID: &dept.ID})

	outsiderUsr := testutil.CreateUser(t, env.Repos.Users, "Yaw", "yaw", "yaw@school.test", "", []string{user.RoleEmployee}, true)
	outsider := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-003", "Yaw", "Owusu", testutil.EmployeeOpts{UserID: &outsiderUsr.ID})

	return leaveFixture{
		staff:         staff,
		head:          head,
		member:        member,
		outsider:      outsider,
		headToken:     getToken(t, headUsr),
		memberToken:   getToken(t, memberUsr),
		outsiderToken: getToken(t, outsiderUsr),
	}
}

func leaveBody(t *testing.T, lt, start, end string) []byte {
	return marchallObj(t, leave.NewLeaveRequest{LeaveType: lt, StartDate: start, EndDate: end, Reason: "family"})
}

func submitLeave(t *testing.T, token string, body []byte) leave.LeaveRequest {
	rec := serve(httpTest{method: http.MethodPost, path: "/v1/leaves", token: token, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lr leave.LeaveRequest
	unmarshal(t, rec, &lr)
	return lr
}

func Test_leaveApi_submit(t *testing.T) {
	env.Reset()
	fx := createLeaveFixture(t)

	// Mon 4 to Fri 8 March 2024
	lr := submitLeave(t, fx.memberToken, leaveBody(t, "annual", "2024-03-04", "2024-03-08"))
	assert.Equal(t, fx.member.ID, lr.EmployeeID)
	assert.Equal(t, leave.StatusPending, lr.Status)
	assert.Equal(t, 5, lr.Days)

	forOutsider := marchallObj(t, leave.NewLeaveRequest{EmployeeID: fx.outsider.ID, LeaveType: "sick", StartDate: "2024-05-06", EndDate: "2024-05-06"})

	tests := []httpTest{
		{name: "auth required", body: leaveBody(t, "annual", "2024-03-11", "2024-03-12"), wantCode: http.StatusUnauthorized},
		{name: "missing fields", body: []byte(`{}`), token: fx.memberToken, wantCode: http.StatusBadRequest},
		{
			name: "end before start", body: leaveBody(t, "annual", "2024-03-12", "2024-03-11"), token: fx.memberToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"end_date": "end date cannot be before the start date"}`),
		},
		{
			name: "weekend only", body: leaveBody(t, "annual", "2024-03-09", "2024-03-10"), token: fx.memberToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"end_date": leave.ErrNoWorkingDays.Error()}),
		},
		{
			name: "overlap", body: leaveBody(t, "sick", "2024-03-08", "2024-03-11"), token: fx.memberToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"start_date": leave.ErrOverlap.Error()}),
		},
		{
			name: "allowance exceeded", body: leaveBody(t, "casual", "2024-04-01", "2024-04-08"), token: fx.memberToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"leave_type": "leave allowance exceeded: 5 of 5 casual day(s) left in 2024"}`),
		},
		{name: "for another employee", body: forOutsider, token: fx.memberToken, wantCode: http.StatusForbidden},
		{
			name: "staff without record", body: leaveBody(t, "annual", "2024-03-11", "2024-03-12"), token: fx.staff.hrToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"employee_id": leave.ErrEmployeeRequired.Error()}),
		},
		{name: "staff for another employee", body: forOutsider, token: fx.staff.hrToken, wantCode: http.StatusCreated},
		{name: "spanning a weekend", body: leaveBody(t, "casual", "2024-03-15", "2024-03-18"), token: fx.memberToken, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/leaves"
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(tt))
		})
	}
}

func Test_leaveApi_workflow(t *testing.T) {
	env.Reset()
	fx := createLeaveFixture(t)

	lr := submitLeave(t, fx.memberToken, leaveBody(t, "annual", "2024-03-04", "2024-03-08"))
	path := "/v1/leaves/" + lr.ID
	approve := []byte(`{"action": "approve", "comment": "ok"}`)

	runHTTPTests(t, []httpTest{
		{name: "owner sees it", path: path, token: fx.memberToken},
		{name: "head sees it", path: path, token: fx.headToken},
		{name: "outsider does not", path: path, token: fx.outsiderToken, wantCode: http.StatusNotFound},
		{name: "bad action", method: http.MethodPost, path: path + "/department-decision", token: fx.headToken, body: []byte(`{"action": "maybe"}`), wantCode: http.StatusBadRequest},
		{
			name: "no self review", method: http.MethodPost, path: path + "/department-decision", token: fx.memberToken, body: approve,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: leave.ErrSelfReview.Error()}),
		},
		{name: "final before department", method: http.MethodPost, path: path + "/final-decision", token: fx.staff.hrToken, body: approve, wantCode: http.StatusConflict},
		{name: "head approves", method: http.MethodPost, path: path + "/department-decision", token: fx.headToken, body: approve},
		{name: "department stage is over", method: http.MethodPost, path: path + "/department-decision", token: fx.headToken, body: approve, wantCode: http.StatusConflict},
		{name: "final needs staff", method: http.MethodPost, path: path + "/final-decision", token: fx.headToken, body: approve, wantCode: http.StatusForbidden},
		{name: "staff approves", method: http.MethodPost, path: path + "/final-decision", token: fx.staff.hrToken, body: approve},
		{name: "approved cannot be cancelled", method: http.MethodPost, path: path + "/cancel", token: fx.memberToken, wantCode: http.StatusConflict},
	})

	rec := serve(httpTest{path: path, token: fx.staff.hrToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var got leave.LeaveRequest
	unmarshal(t, rec, &got)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.Equal(t, "ok", got.DepartmentComment)
	require.NotNil(t, got.DepartmentReviewerID)
	require.NotNil(t, got.ReviewerID)
	assert.Equal(t, fx.staff.hr.ID, *got.ReviewerID)

	t.Run("balance", func(t *testing.T) {
		submitLeave(t, fx.memberToken, leaveBody(t, "annual", "2024-06-03", "2024-06-04"))

		rec := serve(httpTest{path: "/v1/leaves/balance?year=2024", token: fx.memberToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var balances []leave.Balance
		unmarshal(t, rec, &balances)
		require.Len(t, balances, len(leave.Types))
		assert.Equal(t, leave.Balance{LeaveType: leave.Annual, Allowance: 20, Used: 5, Pending: 2, Remaining: 13}, balances[0])
		for _, bal := range balances {
			if bal.LeaveType == leave.Unpaid {
				assert.Equal(t, -1, bal.Allowance)
			}
		}

		rec = serve(httpTest{path: "/v1/leaves/balance?employee_id=" + fx.member.ID, token: fx.outsiderToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = serve(httpTest{path: "/v1/leaves/balance", token: fx.staff.noEmployeeToken})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = serve(httpTest{path: "/v1/leaves/balance?year=lol", token: fx.memberToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_leaveApi_rejectAndCancel(t *testing.T) {
	env.Reset()
	fx := createLeaveFixture(t)

	rejected := submitLeave(t, fx.memberToken, leaveBody(t, "sick", "2024-03-04", "2024-03-04"))
	cancelled := submitLeave(t, fx.memberToken, leaveBody(t, "sick", "2024-03-05", "2024-03-05"))

	runHTTPTests(t, []httpTest{
		{
			name: "head rejects", method: http.MethodPost, path: "/v1/leaves/" + rejected.ID + "/department-decision", token: fx.headToken,
			body: []byte(`{"action": "reject", "comment": "exams week"}`),
		},
		{name: "rejected is final", method: http.MethodPost, path: "/v1/leaves/" + rejected.ID + "/cancel", token: fx.memberToken, wantCode: http.StatusConflict},
		{
			name: "only the owner cancels", method: http.MethodPost, path: "/v1/leaves/" + cancelled.ID + "/cancel", token: fx.staff.hrToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: leave.ErrNotOwner.Error()}),
		},
		{name: "owner cancels", method: http.MethodPost, path: "/v1/leaves/" + cancelled.ID + "/cancel", token: fx.memberToken},
		{name: "cancel twice", method: http.MethodPost, path: "/v1/leaves/" + cancelled.ID + "/cancel", token: fx.memberToken, wantCode: http.StatusConflict},
		{name: "freed days can be requested again", method: http.MethodPost, path: "/v1/leaves", token: fx.memberToken, body: leaveBody(t, "sick", "2024-03-05", "2024-03-05"), wantCode: http.StatusCreated},
	})

	t.Run("list filters", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/leaves?status=department_rejected", token: fx.headToken})
		require.Equal(t, http.StatusOK, rec.Code)
		var rows []leave.LeaveRequest
		unmarshal(t, rec, &rows)
		require.Len(t, rows, 1)
		assert.Equal(t, rejected.ID, rows[0].ID)
		assert.Equal(t, "exams week", rows[0].DepartmentComment)

		rec = serve(httpTest{path: "/v1/leaves", token: fx.outsiderToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("export", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/leaves/export", token: fx.staff.hrToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "EMP-002")
	})
}
