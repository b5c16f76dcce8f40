package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/report"
	"github.com/sarvodaya/feedesk/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPermissionDenied = errors.New("permission denied: log in as admin first")
)

type commandLine struct {
	app *apps.App
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME - log in; the password is prompted next")
	fmt.Fprintln(cli.out, "  logout - log out")
	fmt.Fprintln(cli.out, "  whoami - print the logged in user")
	fmt.Fprintln(cli.out, "  passwd - change the password of the logged in user")
	fmt.Fprintln(cli.out, "  import -file FILE - import students from a CSV file")
	fmt.Fprintln(cli.out, "  sample [-out FILE] - write the student import template")
	fmt.Fprintln(cli.out, "  export students|payments [-class N] [-out FILE] - export data as CSV")
	fmt.Fprintln(cli.out, "  report class-wise|bus-stop|monthly [-month YYYY-MM] [-out FILE] - print a report as CSV")
	fmt.Fprintln(cli.out, "  reset students|payments|all - delete data; all also restores the default fees")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The username. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The CSV file to import, see `sample`.")

	sampleCmd := flag.NewFlagSet("sample", flag.ExitOnError)
	sampleOut := sampleCmd.String("out", "", "The output file. Defaults to "+report.SampleFileName+".")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportClass := exportCmd.String("class", "", "Only export the students of this class.")
	exportOut := exportCmd.String("out", "", "The output file. Defaults to a dated file name.")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportMonth := reportCmd.String("month", "", "The month of the monthly report (YYYY-MM). Defaults to the current month.")
	reportOut := reportCmd.String("out", "", "The output file. Defaults to the standard output.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginUname, pwd)
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "passwd":
		oldPwd, err := cli.promptPassword("Enter current password:")
		if err != nil {
			return err
		}
		newPwd, err := cli.promptPassword("Enter new password:")
		if err != nil {
			return err
		}
		return cli.changePassword(oldPwd, newPwd)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile)
	case "sample":
		if err := sampleCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.writeSample(*sampleOut)
	case "export":
		if len(args) < 3 {
			exportCmd.Usage()
			return errHelp
		}
		if err := exportCmd.Parse(args[3:]); err != nil {
			return err
		}
		return cli.export(args[2], *exportClass, *exportOut)
	case "report":
		if len(args) < 3 {
			reportCmd.Usage()
			return errHelp
		}
		if err := reportCmd.Parse(args[3:]); err != nil {
			return err
		}
		return cli.report(args[2], *reportMonth, *reportOut)
	case "reset":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.reset(args[2])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// requireAdmin returns the logged in user if they are an admin.
func (cli *commandLine) requireAdmin() (user.User, error) {
	usr, ok := cli.app.Users.Current()
	if !ok || !usr.IsAdmin() {
		return user.User{}, errPermissionDenied
	}
	return usr, nil
}
