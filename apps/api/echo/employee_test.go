package echoapi_test

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/hrms/apps/api/echo"
	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

func Test_employeeApi_create(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	dept := testutil.CreateDepartment(t, env.Repos.Departments, "Science", "SCI", nil)
	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})

	valid := employee.NewEmployee{
		EmployeeCode:   "EMP-002",
		FirstName:      "Kofi",
		LastName:       "Boateng",
		Email:          "Kofi.Boateng@school.test",
		Gender:         "male",
		DateOfBirth:    "1988-02-10",
		DepartmentID:   dept.ID,
		EmploymentType: "full_time",
		DateOfJoining:  "2019-09-02",
	}
	dupCode := valid
	dupCode.Email = "other@school.test"
	dupCode.EmployeeCode = "EMP-001"
	bornLate := valid
	bornLate.EmployeeCode, bornLate.Email = "EMP-003", "late@school.test"
	bornLate.DateOfBirth = "2020-01-01"
	badDept := valid
	badDept.EmployeeCode, badDept.Email = "EMP-004", "dept@school.test"
	badDept.DepartmentID = "0b0c3c8e-8a4d-4f55-a2a4-64b0b3f1d111"

	tests := []httpTest{
		{name: "staff required", body: marchallObj(t, valid), token: staff.noEmployeeToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "missing fields", body: marchallObj(t, employee.NewEmployee{}), token: staff.hrToken, wantCode: http.StatusBadRequest},
		{name: "born after joining", body: marchallObj(t, bornLate), token: staff.hrToken, wantCode: http.StatusBadRequest},
		{
			name: "unknown department", body: marchallObj(t, badDept), token: staff.hrToken, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"department_id": "department not found"}`),
		},
		{name: "create", body: marchallObj(t, valid), token: staff.hrToken, wantCode: http.StatusCreated},
		{
			name: "duplicate code", body: marchallObj(t, dupCode), token: staff.hrToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"employee_code": employee.ErrCodeExists.Error()}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/employees"
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(tt))
		})
	}

	emps, err := env.Repos.Employees.FilterEmployees(context.Background(), employee.QueryFilter{Search: "kofi"}, core.ListOptions{})
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "kofi.boateng@school.test", emps[0].Email)
	assert.Equal(t, employee.StatusActive, emps[0].Status)
	assert.NotEmpty(t, emps[0].QRSecret)
}

func Test_employeeApi_detail(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	own := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{UserID: &usr.ID})
	other := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kofi", "Boateng", testutil.EmployeeOpts{})
	token := getToken(t, usr)

	runHTTPTests(t, []httpTest{
		{name: "me", path: "/v1/employees/me", token: token, wantData: marchallObj(t, own)},
		{name: "me without record", path: "/v1/employees/me", token: staff.noEmployeeToken, wantCode: http.StatusNotFound},
		{name: "own record", path: "/v1/employees/" + own.ID, token: token, wantData: marchallObj(t, own)},
		{name: "other's record", path: "/v1/employees/" + other.ID, token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "staff", path: "/v1/employees/" + other.ID, token: staff.hrToken, wantData: marchallObj(t, other)},
		{name: "list needs staff", path: "/v1/employees", token: token, wantCode: http.StatusForbidden},
		{name: "list", path: "/v1/employees", token: staff.hrToken, wantData: marchallList(t, own, other)},
		{name: "HR cannot delete", method: http.MethodDelete, path: "/v1/employees/" + other.ID, token: staff.hrToken, wantCode: http.StatusForbidden},
		{name: "admin deletes", method: http.MethodDelete, path: "/v1/employees/" + other.ID, token: staff.adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/employees/" + other.ID, token: staff.adminToken, wantCode: http.StatusNotFound},
	})
}

func Test_employeeApi_qr(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	emp := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{UserID: &usr.ID})
	inactive := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kofi", "Boateng", testutil.EmployeeOpts{Status: employee.StatusInactive})
	token := getToken(t, usr)

	t.Run("json", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/" + emp.ID + "/qr", token: token})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp echoapi.QRResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, emp.ID, resp.EmployeeID)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int(env.Conf.Attendance.QRTokenTTL.Seconds()), resp.ExpiresIn)
	})

	t.Run("png", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/" + emp.ID + "/qr?format=png", token: token})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})

	t.Run("inactive", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/" + inactive.ID + "/qr", token: staff.hrToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rotate invalidates tokens", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/" + emp.ID + "/qr", token: token})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.QRResponse
		unmarshal(t, rec, &resp)

		rec = serve(httpTest{method: http.MethodPost, path: "/v1/employees/" + emp.ID + "/qr/rotate", token: token})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = serve(httpTest{method: http.MethodPost, path: "/v1/employees/" + emp.ID + "/qr/rotate", token: staff.hrToken})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = serve(httpTest{method: http.MethodPost, path: "/v1/attendance/scan", token: staff.hrToken, body: marchallObj(t, map[string]string{"token": resp.Token})})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error": "invalid QR code"}`, rec.Body.String())
	})
}

func Test_employeeApi_export(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})

	t.Run("csv", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/export?format=csv", token: staff.hrToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, rec.Body.String(), "EMP-001")
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/export?format=xlsx", token: staff.hrToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := serve(httpTest{path: "/v1/employees/export?format=pdf", token: staff.hrToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
