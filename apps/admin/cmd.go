package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sql.DB
	usrSvc *user.Service
	attSvc *attendance.Service
	out    io.Writer
}

func (cli *commandLine) writer() io.Writer {
	if cli.out == nil {
		return os.Stdout
	}
	return cli.out
}

func (cli *commandLine) printUsage() {
	w := cli.writer()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  resetpassword -username USERNAME|EMAIL           - reset user's password")
	fmt.Fprintln(w, "  adduser -username USERNAME -email EMAIL [-admin] - create or update a user")
	fmt.Fprintln(w, "  migrate COMMAND [ARGS...]                        - run a goose migration command")
	fmt.Fprintln(w, "  sweep [-date YYYY-MM-DD]                         - mark absentees (all due days by default)")
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.writer(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.writer())
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every role to the user.")

	sweepCmd := flag.NewFlagSet("sweep", flag.ContinueOnError)
	sweepDate := sweepCmd.String("date", "", "The day to sweep (YYYY-MM-DD). Sweeps every due day when empty.")

	switch args[1] {
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "sweep":
		if err := sweepCmd.Parse(args[2:]); err != nil {
			return err
		}
		var date core.Date
		if *sweepDate != "" {
			var err error
			if date, err = core.ParseDate(*sweepDate); err != nil {
				return err
			}
		}
		return cli.sweep(date)

	default:
		cli.printUsage()
		return errHelp
	}
}
