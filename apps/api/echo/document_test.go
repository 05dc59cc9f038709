package echoapi_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core/document"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// uploadRequest posts fields and, if filename is set, a file part to /v1/documents.
func uploadRequest(t *testing.T, token string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func Test_documentApi_upload(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	own := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{UserID: &usr.ID})
	other := testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kofi", "Boateng", testutil.EmployeeOpts{})
	token := getToken(t, usr)

	fields := func(empID string) map[string]string {
		f := map[string]string{"title": "Employment contract", "category": "contract"}
		if empID != "" {
			f["employee_id"] = empID
		}
		return f
	}

	tests := []struct {
		name     string
		token    string
		fields   map[string]string
		filename string
		content  []byte
		wantCode int
		wantData string
	}{
		{name: "auth required", fields: fields(""), filename: "c.pdf", content: pdfContent, wantCode: http.StatusUnauthorized},
		{name: "no file", token: token, fields: fields(""), wantCode: http.StatusBadRequest, wantData: `{"file": "a file is required"}`},
		{name: "empty file", token: token, fields: fields(""), filename: "c.pdf", wantCode: http.StatusBadRequest, wantData: `{"file": "a file is required"}`},
		{
			name: "refused type", token: token, fields: fields(""), filename: "setup.exe", content: []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff"),
			wantCode: http.StatusBadRequest, wantData: `{"file": "file type is not allowed"}`,
		},
		{name: "for someone else", token: token, fields: fields(other.ID), filename: "c.pdf", content: pdfContent, wantCode: http.StatusForbidden},
		{name: "staff without employee", token: staff.hrToken, fields: fields(""), filename: "c.pdf", content: pdfContent, wantCode: http.StatusBadRequest},
		{name: "no record", token: staff.noEmployeeToken, fields: fields(""), filename: "c.pdf", content: pdfContent, wantCode: http.StatusForbidden},
		{name: "own", token: token, fields: fields(""), filename: "contract.pdf", content: pdfContent, wantCode: http.StatusCreated},
		{name: "staff for anyone", token: staff.hrToken, fields: fields(other.ID), filename: "notes.txt", content: []byte("plain notes"), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := uploadRequest(t, tt.token, tt.fields, tt.filename, tt.content)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var doc document.Document
				unmarshal(t, rec, &doc)
				assert.Equal(t, tt.filename, doc.FileName)
				assert.Equal(t, int64(len(tt.content)), doc.Size)
				assert.Equal(t, document.CategoryContract, doc.Category)
				if tt.fields["employee_id"] == "" {
					assert.Equal(t, own.ID, doc.EmployeeID)
				}
			}
		})
	}
}

func Test_documentApi_detail(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{UserID: &usr.ID})
	otherUsr := testutil.CreateUser(t, env.Repos.Users, "Kofi", "kofi", "kofi@school.test", "", []string{user.RoleEmployee}, true)
	testutil.CreateEmployee(t, env.Repos.Employees, "EMP-002", "Kofi", "Boateng", testutil.EmployeeOpts{UserID: &otherUsr.ID})
	token, otherToken := getToken(t, usr), getToken(t, otherUsr)

	rec := uploadRequest(t, token, map[string]string{"title": "Contract", "category": "contract"}, "contract.pdf", pdfContent)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc document.Document
	unmarshal(t, rec, &doc)
	path := "/v1/documents/" + doc.ID

	t.Run("download", func(t *testing.T) {
		rec := serve(httpTest{path: path + "/download", token: token})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=contract.pdf`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, pdfContent, rec.Body.Bytes())
	})

	runHTTPTests(t, []httpTest{
		{name: "own", path: path, token: token, wantData: marchallObj(t, doc)},
		{name: "other employee", path: path, token: otherToken, wantCode: http.StatusNotFound},
		{name: "other employee download", path: path + "/download", token: otherToken, wantCode: http.StatusNotFound},
		{name: "staff", path: path, token: staff.hrToken, wantData: marchallObj(t, doc)},
		{name: "listed for owner", path: "/v1/documents", token: token, wantData: marchallList(t, doc)},
		{name: "not listed for others", path: "/v1/documents", token: otherToken, wantData: marchallList(t)},
		{name: "owner cannot delete", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusForbidden},
		{name: "staff deletes", method: http.MethodDelete, path: path, token: staff.hrToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: path, token: staff.hrToken, wantCode: http.StatusNotFound},
	})
}
