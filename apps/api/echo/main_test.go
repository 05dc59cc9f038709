package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/hrms/apps/api/echo"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

var (
	env *testutil.Env
	app *echoapi.Server

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	uploadDir, err := os.MkdirTemp("", "hrms-api-test")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}

	// set up DB, services & server
	env, err = testutil.NewEnv(uploadDir)
	if err != nil {
		fmt.Printf("testutil.NewEnv(): %v", err)
		os.Exit(1)
	}
	app = echoapi.NewServer(env.Deps)

	// run tests
	code := m.Run()

	// clean up
	if err = os.RemoveAll(uploadDir); err != nil {
		fmt.Printf("os.RemoveAll(): %v", err)
		os.Exit(1)
	}
	os.Exit(code)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// serve runs tt against the app and returns the recorder.
func serve(tt httpTest) *httptest.ResponseRecorder {
	if tt.method == "" {
		tt.method = http.MethodGet
	}
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(tt))
		})
	}
}

// fixtures

type staffFixture struct {
	admin, hr, plain user.User
	adminToken       string
	hrToken          string
	noEmployeeToken  string
}

func createStaff(t *testing.T) staffFixture {
	admin := testutil.CreateUser(t, env.Repos.Users, "Admin", "admin", "admin@school.test", "p4ss", []string{user.RoleAdminOwner, user.RoleAdmin}, true)
	hr := testutil.CreateUser(t, env.Repos.Users, "HR", "hrmanager", "hr@school.test", "p4ss", []string{user.RoleHRManager, user.RoleHR}, true)
	plain := testutil.CreateUser(t, env.Repos.Users, "Plain", "plain", "plain@school.test", "p4ss", []string{user.RoleEmployee}, true)
	return staffFixture{
		admin:           admin,
		hr:              hr,
		plain:           plain,
		adminToken:      getToken(t, admin),
		hrToken:         getToken(t, hr),
		noEmployeeToken: getToken(t, plain),
	}
}
