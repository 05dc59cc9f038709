package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/designation"
	"github.com/trezcool/hrms/testutil"
)

const unknownID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

func Test_departmentApi(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	rec := serve(httpTest{
		method: http.MethodPost, path: "/v1/departments", token: staff.hrToken,
		body: []byte(`{"name": " Mathematics ", "code": "math"}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var math department.Department
	unmarshal(t, rec, &math)
	assert.Equal(t, "Mathematics", math.Name)
	assert.Equal(t, "MATH", math.Code)
	assert.Nil(t, math.HeadID)

	head := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Efua", "Asante", testutil.EmployeeOpts{})
	path := "/v1/departments/" + math.ID

	runHTTPTests(t, []httpTest{
		{name: "auth required", path: "/v1/departments", wantCode: http.StatusUnauthorized},
		{name: "anyone lists", path: "/v1/departments", token: staff.noEmployeeToken},
		{
			name: "staff only", method: http.MethodPost, path: "/v1/departments", token: staff.noEmployeeToken,
			body: []byte(`{"name": "Arts", "code": "ART"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "name taken", method: http.MethodPost, path: "/v1/departments", token: staff.hrToken,
			body:     []byte(`{"name": "Mathematics", "code": "MATH2"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": department.ErrNameExists.Error()}),
		},
		{
			name: "code taken", method: http.MethodPost, path: "/v1/departments", token: staff.hrToken,
			body:     []byte(`{"name": "Maths", "code": "Math"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": department.ErrCodeExists.Error()}),
		},
		{
			name: "unknown head", method: http.MethodPost, path: "/v1/departments", token: staff.hrToken,
			body:     []byte(`{"name": "Arts", "code": "ART", "head_id": "` + unknownID + `"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"head_id": department.ErrHeadNotFound.Error()}),
		},
		{
			name: "assign head", method: http.MethodPut, path: path, token: staff.hrToken,
			body: []byte(`{"name": "Mathematics", "code": "MATH", "head_id": "` + head.ID + `"}`),
		},
		{name: "retrieve", path: path, token: staff.noEmployeeToken},
		{name: "not found", path: "/v1/departments/" + unknownID, token: staff.hrToken, wantCode: http.StatusNotFound},
	})

	rec = serve(httpTest{path: path, token: staff.hrToken})
	var got department.Department
	unmarshal(t, rec, &got)
	require.NotNil(t, got.HeadID)
	assert.Equal(t, head.ID, *got.HeadID)
}

func Test_designationApi(t *testing.T) {
	env.Reset()
	staff := createStaff(t)
	math := testutil.CreateDepartment(t, env.Repos.Departments, "Mathematics", "MATH", nil)
	arts := testutil.CreateDepartment(t, env.Repos.Departments, "Arts", "ART", nil)

	create := func(body string) designation.Designation {
		rec := serve(httpTest{method: http.MethodPost, path: "/v1/designations", token: staff.hrToken, body: []byte(body)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var d designation.Designation
		unmarshal(t, rec, &d)
		return d
	}
	lecturer := create(`{"title": "Lecturer", "department_id": "` + math.ID + `"}`)
	artLecturer := create(`{"title": "Lecturer", "department_id": "` + arts.ID + `"}`)
	bursar := create(`{"title": "Bursar"}`)

	runHTTPTests(t, []httpTest{
		{
			name: "title taken in department", method: http.MethodPost, path: "/v1/designations", token: staff.hrToken,
			body:     []byte(`{"title": "Lecturer", "department_id": "` + math.ID + `"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": designation.ErrTitleExists.Error()}),
		},
		{
			name: "unknown department", method: http.MethodPost, path: "/v1/designations", token: staff.hrToken,
			body:     []byte(`{"title": "Clerk", "department_id": "` + unknownID + `"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"department_id": department.ErrNotFound.Error()}),
		},
		{name: "filter by department", path: "/v1/designations?department_id=" + math.ID, token: staff.noEmployeeToken, wantData: marchallList(t, lecturer)},
		{name: "all", path: "/v1/designations", token: staff.noEmployeeToken, wantData: marchallList(t, lecturer, artLecturer, bursar)},
		{name: "department in use", method: http.MethodDelete, path: "/v1/departments/" + math.ID, token: staff.hrToken, wantCode: http.StatusConflict},
		{name: "staff only delete", method: http.MethodDelete, path: "/v1/designations/" + lecturer.ID, token: staff.noEmployeeToken, wantCode: http.StatusForbidden},
		{name: "delete designation", method: http.MethodDelete, path: "/v1/designations/" + lecturer.ID, token: staff.hrToken, wantCode: http.StatusNoContent},
		{name: "department freed", method: http.MethodDelete, path: "/v1/departments/" + math.ID, token: staff.hrToken, wantCode: http.StatusNoContent},
		{name: "department gone", path: "/v1/departments/" + math.ID, token: staff.hrToken, wantCode: http.StatusNotFound},
	})

	t.Run("designation held by an employee", func(t *testing.T) {
		emp := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})
		emp.DesignationID = &bursar.ID
		_, err := env.Repos.Employees.UpdateEmployee(context.Background(), emp)
		require.NoError(t, err)

		rec := serve(httpTest{method: http.MethodDelete, path: "/v1/designations/" + bursar.ID, token: staff.hrToken})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
