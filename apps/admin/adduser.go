package main

import (
	"context"
	"fmt"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	var roles []string
	if isAdmin {
		roles = user.AllRoles
	}

	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err == user.ErrNotFound {
		usr, err = cli.usrSvc.GetByEmail(ctx, email)
	}
	switch err {
	case nil:
		active := true
		usr, err = cli.usrSvc.Update(ctx, usr, user.UpdateUser{
			Name:     usr.Name,
			Username: uname,
			Email:    email,
			IsActive: &active,
			Roles:    roles,
			Password: pwd,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.writer(), "updated user %s (%s)\n", usr.Username, usr.ID)
	case user.ErrNotFound:
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:     uname,
			Username: uname,
			Email:    email,
			Password: pwd,
			Roles:    roles,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.writer(), "created user %s (%s)\n", usr.Username, usr.ID)
	default:
		return err
	}
	return nil
}
