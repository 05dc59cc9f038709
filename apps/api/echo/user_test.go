package echoapi_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/hrms/apps/api/echo"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

func Test_userApi_login(t *testing.T) {
	env.Reset()

	testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "s3cr3t", []string{user.RoleEmployee}, true)
	testutil.CreateUser(t, env.Repos.Users, "Gone", "gone", "gone@school.test", "s3cr3t", nil, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Username: uname, Password: pwd})
	}
	tests := []httpTest{
		{name: "missing fields", body: body("", ""), wantCode: http.StatusBadRequest},
		{name: "unknown user", body: body("nobody", "s3cr3t"), wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "wrong password", body: body("ama", "lol"), wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "deactivated", body: body("gone", "s3cr3t"), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "username", body: body("AMA ", "s3cr3t"), wantCode: http.StatusOK},
		{name: "email", body: body("ama@school.test", "s3cr3t"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				unmarshal(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}

	usr, err := env.Repos.Users.GetUserByUsernameOrEmail(context.Background(), "ama")
	require.NoError(t, err)
	assert.NotNil(t, usr.LastLogin)
}

func Test_userApi_passwordReset(t *testing.T) {
	env.Reset()

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "s3cr3t", []string{user.RoleEmployee}, true)
	testutil.CreateUser(t, env.Repos.Users, "Gone", "gone", "gone@school.test", "s3cr3t", nil, false)

	sent := marchallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
	request := func(email string) []byte { return marchallObj(t, echoapi.PasswordResetRequest{Email: email}) }

	t.Run("request", func(t *testing.T) {
		tests := []httpTest{
			{name: "missing email", body: request(""), wantCode: http.StatusBadRequest},
			{name: "unknown email", body: request("nobody@school.test"), wantData: sent},
			{name: "deactivated", body: request("gone@school.test"), wantData: sent},
			{name: "known email", body: request("ama@school.test"), wantData: sent},
		}
		for i := range tests {
			tests[i].method = http.MethodPost
			tests[i].path = "/v1/users/password-reset"
		}
		runHTTPTests(t, tests)

		msgs := env.Mail.Sent()
		require.Len(t, msgs, 1)
		assert.Equal(t, "ama@school.test", msgs[0].To[0].Address)
		assert.Equal(t, user.EncodeUID(usr), msgs[0].TemplateData.(map[string]interface{})["UID"])
	})

	usr, err := env.Repos.Users.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	token, err := user.MakeToken(usr)
	require.NoError(t, err)

	newPwd := "N3w-Str0ng-pass!"
	confirm := func(uid, token string) []byte {
		return marchallObj(t, user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd})
	}
	invalid := marchallObj(t, httpErr{Error: "invalid token"})

	t.Run("confirm", func(t *testing.T) {
		tests := []httpTest{
			{name: "missing fields", body: marchallObj(t, user.ResetUserPassword{}), wantCode: http.StatusBadRequest},
			{name: "malformed uid", body: confirm("not base64!", token), wantCode: http.StatusBadRequest, wantData: invalid},
			{name: "unknown uid", body: confirm(user.EncodeUID(user.User{ID: unknownID}), token), wantCode: http.StatusBadRequest, wantData: invalid},
			{name: "tampered token", body: confirm(user.EncodeUID(usr), token+"x"), wantCode: http.StatusBadRequest, wantData: invalid},
			{
				name: "valid", body: confirm(user.EncodeUID(usr), token),
				wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
			},
			{name: "token already used", body: confirm(user.EncodeUID(usr), token), wantCode: http.StatusBadRequest, wantData: invalid},
		}
		for i := range tests {
			tests[i].method = http.MethodPost
			tests[i].path = "/v1/users/password-reset-confirm"
		}
		runHTTPTests(t, tests)
	})

	login := func(pwd string) []byte { return marchallObj(t, echoapi.LoginRequest{Username: "ama", Password: pwd}) }
	runHTTPTests(t, []httpTest{
		{name: "old password", method: http.MethodPost, path: "/v1/users/login", body: login("s3cr3t"), wantCode: http.StatusBadRequest},
		{name: "new password", method: http.MethodPost, path: "/v1/users/login", body: login(newPwd)},
	})
}

func Test_userApi_me(t *testing.T) {
	env.Reset()

	usr := testutil.CreateUser(t, env.Repos.Users, "Ama", "ama", "ama@school.test", "", []string{user.RoleEmployee}, true)
	ghost := user.User{ID: "2d1c4a52-5f7e-4b7a-9b55-0d7c0e3f6a11", Username: "ghost"}

	runHTTPTests(t, []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "unknown user", path: "/v1/users/me", token: getToken(t, ghost), wantCode: http.StatusUnauthorized},
		{name: "me", path: "/v1/users/me", token: getToken(t, usr), wantData: marchallObj(t, usr)},
	})
}

func Test_userApi_query(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	kiosk := testutil.CreateUser(t, env.Repos.Users, "Gate Kiosk", "kiosk01", "kiosk@school.test", "", []string{user.RoleKiosk}, true)
	emp := testutil.CreateUser(t, env.Repos.Users, "Kofi", "kofi", "kofi@school.test", "", []string{user.RoleEmployee}, true)
	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	runHTTPTests(t, []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", path: "/v1/users", token: staff.hrToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "get all", path: "/v1/users", token: staff.adminToken, wantData: marchallList(t, staff.admin, kiosk, staff.hr, emp, staff.plain)},
		{name: "search", path: path("KO"), token: staff.adminToken, wantData: marchallList(t, emp)},
		{name: "search email", path: path("kiosk@"), token: staff.adminToken, wantData: marchallList(t, kiosk)},
		{name: "role=kiosk:", path: path("", user.RoleKiosk), token: staff.adminToken, wantData: marchallList(t, kiosk)},
		{name: "role=hr:,admin:", path: path("", user.RoleHR, user.RoleAdmin), token: staff.adminToken, wantData: marchallList(t, staff.admin, staff.hr)},
		{name: "unknown role", path: path("", "lol:"), token: staff.adminToken, wantData: marchallList(t)},
	})
}

func Test_userApi_create(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	body := func(nu user.NewUser) []byte { return marchallObj(t, nu) }
	valid := user.NewUser{Name: "Esi", Username: "esiappiah", Email: "esi@school.test", Password: "Str0ng-pass!", PasswordConfirm: "Str0ng-pass!", Roles: []string{user.RoleEmployee}}
	tooPowerful := valid
	tooPowerful.Username, tooPowerful.Email = "boss", "boss@school.test"
	tooPowerful.Roles = []string{user.RoleAdminOwner}
	dup := valid
	dup.Username = "esiappiah2"

	tests := []httpTest{
		{name: "admin required", body: body(valid), token: staff.hrToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "missing fields", body: body(user.NewUser{}), token: staff.adminToken, wantCode: http.StatusBadRequest},
		{name: "create", body: body(valid), token: staff.adminToken, wantCode: http.StatusCreated},
		{name: "email taken", body: body(dup), token: staff.adminToken, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(tt))
		})
	}

	created, err := env.Repos.Users.GetUserByUsernameOrEmail(context.Background(), "esiappiah")
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleEmployee}, created.Roles)
	assert.NoError(t, created.CheckPassword("Str0ng-pass!"))

	// an admin cannot grant roles above their own
	lowAdmin := testutil.CreateUser(t, env.Repos.Users, "Low Admin", "lowadmin", "low@school.test", "", []string{user.RoleAdmin}, true)
	rec := serve(httpTest{method: http.MethodPost, path: "/v1/users/register", token: getToken(t, lowAdmin), body: body(tooPowerful)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"roles": "not enough rights to set these roles"}`, rec.Body.String())
}

func Test_userApi_detail(t *testing.T) {
	env.Reset()
	staff := createStaff(t)

	emp := testutil.CreateUser(t, env.Repos.Users, "Kofi", "kofi", "kofi@school.test", "", []string{user.RoleEmployee}, true)
	other := testutil.CreateUser(t, env.Repos.Users, "Yaw", "yaw", "yaw@school.test", "", []string{user.RoleEmployee}, true)
	empToken := getToken(t, emp)

	runHTTPTests(t, []httpTest{
		{name: "own", path: "/v1/users/" + emp.ID, token: empToken, wantData: marchallObj(t, emp)},
		{name: "other's", path: "/v1/users/" + other.ID, token: empToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "admin sees all", path: "/v1/users/" + other.ID, token: staff.adminToken, wantData: marchallObj(t, other)},
		{
			name: "non admin cannot change roles", method: http.MethodPut, path: "/v1/users/" + emp.ID, token: empToken,
			body: []byte(`{"roles": ["admin:"]}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "cannot delete self", method: http.MethodDelete, path: "/v1/users/" + staff.admin.ID, token: staff.adminToken, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/v1/users/" + other.ID, token: staff.adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/users/" + other.ID, token: staff.adminToken, wantCode: http.StatusNotFound},
	})
}
