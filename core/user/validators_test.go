package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	LoadCommonPasswords(nopLogger{})
	return validate
}

func TestNewUserValidation(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name    string
		data    NewUser
		wantTag string
	}{
		{
			name:    "username or email required",
			data:    NewUser{Name: "Jane", Password: "Sup3r$ecret", PasswordConfirm: "Sup3r$ecret"},
			wantTag: usernameOrEmailTag,
		},
		{
			name:    "too short",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "Ab1$", PasswordConfirm: "Ab1$"},
			wantTag: pwdMinLenTag,
		},
		{
			name:    "whitespace",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "Ab1$ 5678", PasswordConfirm: "Ab1$ 5678"},
			wantTag: pwdNoSpaceTag,
		},
		{
			name:    "all numeric",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "2938475610", PasswordConfirm: "2938475610"},
			wantTag: pwdNotAllNumTag,
		},
		{
			name:    "common",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd"},
			wantTag: pwdNoCommonTag,
		},
		{
			name:    "not complex",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "abcdefgh1", PasswordConfirm: "abcdefgh1"},
			wantTag: pwdComplexityTag,
		},
		{
			name:    "similar to username",
			data:    NewUser{Name: "Jane", Username: "margaretha", Password: "Margaretha1!", PasswordConfirm: "Margaretha1!"},
			wantTag: pwdAttrSimTag,
		},
		{
			name:    "unknown role",
			data:    NewUser{Name: "Jane", Username: "jane", Password: "Sup3r$ecret", PasswordConfirm: "Sup3r$ecret", Roles: []string{"janitor:"}},
			wantTag: allRolesTag,
		},
		{
			name: "valid",
			data: NewUser{Name: "Jane", Username: "jane", Password: "Sup3r$ecret", PasswordConfirm: "Sup3r$ecret", Roles: []string{RoleHR}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			var tags []string
			for _, vErr := range vErrs {
				tags = append(tags, vErr.Tag())
			}
			assert.Contains(t, tags, tt.wantTag)
		})
	}
}

func TestMaxRolePriority(t *testing.T) {
	assert.Equal(t, 0, MaxRolePriority(nil))
	assert.Equal(t, 1, MaxRolePriority([]string{RoleEmployee}))
	assert.Equal(t, 20, MaxRolePriority([]string{RoleEmployee, RoleHRManager, RoleDepartmentHead}))
	assert.Equal(t, 30, MaxRolePriority(AllRoles))
}

func TestUserRoles(t *testing.T) {
	hr := User{Roles: []string{RoleHR, RoleEmployee}}
	assert.True(t, hr.IsStaff())
	assert.True(t, hr.IsHR())
	assert.False(t, hr.IsAdmin())

	head := User{Roles: []string{RoleDepartmentHead, RoleEmployee}}
	assert.False(t, head.IsStaff())
	assert.True(t, head.IsDepartmentHead())

	owner := User{Roles: []string{RoleAdminOwner}}
	assert.True(t, owner.IsAdmin())
	assert.True(t, owner.IsStaff())
}
