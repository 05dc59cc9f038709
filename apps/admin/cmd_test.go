package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/apps/api/di"
	"github.com/trezcool/hrms/core/user"
	"github.com/trezcool/hrms/testutil"
)

var repos di.Repositories

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	// set up DB & services
	env, err := testutil.NewEnv(t.TempDir())
	require.NoError(t, err)
	repos = env.Repos

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		usrSvc: env.Deps.UserSvc,
		attSvc: env.Deps.AttendanceSvc,
		out:    out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ context.Context, db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "payroll", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)

	usr := testutil.CreateUser(t, repos.Users, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			refreshedUsr, err := repos.Users.GetUserByID(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshedUsr.CheckPassword(tt.extra.(extra).pwd))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)

	existing := testutil.CreateUser(t, repos.Users, "Jane", "jane", "jane@test.cd", "old-pwd", nil, false)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("n3w-p4ss"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "bob"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-username", "Bob", "-email", "BOB@test.cd"}, extra: "bob"},
		{name: "create admin", args: []string{"adduser", "-username", "root", "-email", "root@test.cd", "-admin"}, extra: "root"},
		{name: "update existing", args: []string{"adduser", "-username", "jane", "-email", "jane@test.cd", "-admin"}, extra: "jane"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			usr, err := repos.Users.GetUserByUsernameOrEmail(context.Background(), tt.extra.(string))
			require.NoError(t, err)
			assert.True(t, usr.IsActive)
			assert.NoError(t, usr.CheckPassword("n3w-p4ss"))
			if usr.Username == "bob" {
				assert.Equal(t, "bob@test.cd", usr.Email)
				assert.False(t, usr.IsStaff())
			} else {
				assert.True(t, usr.IsAdmin())
			}
		})
	}

	usr, err := repos.Users.GetUserByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.True(t, usr.IsActive, "adduser should update, not duplicate")
}

func Test_commandLine_sweep(t *testing.T) {
	cli, out := setup(t)

	testutil.CreateEmployee(t, repos.Employees, "EMP-001", "Ama", "Mensah", testutil.EmployeeOpts{})
	testutil.CreateEmployee(t, repos.Employees, "EMP-002", "Kofi", "Boateng", testutil.EmployeeOpts{})

	tests := []cliTest{
		{name: "bad date", args: []string{"sweep", "-date", "03/04/2024"}, wantErrStr: `parsing time "03/04/2024" as "2006-01-02": cannot parse "03/04/2024" as "2006"`},
		{name: "weekday", args: []string{"sweep", "-date", "2024-03-04"}, extra: "2024-03-04: absent=2 on_leave=0\n"},
		{name: "weekday again", args: []string{"sweep", "-date", "2024-03-04"}, extra: "2024-03-04: absent=0 on_leave=0\n"},
		{name: "weekend", args: []string{"sweep", "-date", "2024-03-09"}, extra: "2024-03-09: skipped (weekend)\n"},
		{name: "future", args: []string{"sweep", "-date", "2999-01-01"}, extra: "2999-01-01: skipped (future)\n"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkErr(t, tt, cli.run(args))
			if want, ok := tt.extra.(string); ok {
				assert.Equal(t, want, out.String())
			}
		})
	}
}
