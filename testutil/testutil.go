// Package testutil creates fixtures straight through the repositories.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/user"
)

func CreateUser(
	t testing.TB,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateDepartment(t testing.TB, repo department.Repository, name, code string, headID *string) department.Department {
	t.Helper()
	now := time.Now().UTC()
	dept, err := repo.CreateDepartment(context.Background(), department.Department{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		HeadID:    headID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createDepartment() failed: %v", err)
	}
	return dept
}

// EmployeeOpts holds the optional fields of CreateEmployee.
type EmployeeOpts struct {
	DepartmentID  *string
	UserID        *string
	Status        employee.Status
	DateOfJoining core.Date
}

func CreateEmployee(t testing.TB, repo employee.Repository, code, first, last string, opts EmployeeOpts) employee.Employee {
	t.Helper()
	secret, err := employee.NewQRSecret()
	if err != nil {
		t.Fatalf("createEmployee() failed: %v", err)
	}
	if opts.Status == "" {
		opts.Status = employee.StatusActive
	}
	if opts.DateOfJoining.IsZero() {
		opts.DateOfJoining = core.MustParseDate("2015-01-05")
	}
	now := time.Now().UTC()
	emp, err := repo.CreateEmployee(context.Background(), employee.Employee{
		ID:             uuid.NewString(),
		EmployeeCode:   code,
		FirstName:      first,
		LastName:       last,
		Email:          core.CleanString(first+"."+last, true /* lower */) + "@school.test",
		Gender:         employee.Other,
		DateOfBirth:    core.MustParseDate("1990-06-15"),
		DepartmentID:   opts.DepartmentID,
		UserID:         opts.UserID,
		EmploymentType: employee.FullTime,
		Status:         opts.Status,
		DateOfJoining:  opts.DateOfJoining,
		QRSecret:       secret,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("createEmployee() failed: %v", err)
	}
	return emp
}
