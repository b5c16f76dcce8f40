package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core/report"
	"github.com/sarvodaya/feedesk/core/student"
)

// Export kinds
const (
	exportStudents = "students"
	exportPayments = "payments"
)

func (cli *commandLine) importStudents(file string) error {
	if _, err := cli.requireAdmin(); err != nil {
		return err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, "reading import file")
	}
	students, err := cli.app.ImportStudentsCSV(string(content))
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Imported %d students\n", len(students))
	return nil
}

func (cli *commandLine) writeSample(out string) error {
	if out == "" {
		out = report.SampleFileName
	}
	return cli.writeFile(out, report.SampleCSV())
}

func (cli *commandLine) export(what, class, out string) error {
	if _, err := cli.requireAdmin(); err != nil {
		return err
	}
	now := cli.app.Now()
	class = strings.TrimSpace(class)

	var fileName, content string
	switch what {
	case exportStudents:
		fileName = report.AllStudentsFileName(now)
		if class != "" {
			fileName = report.ClassStudentsFileName(class, now)
		}
		content = report.StudentsCSV(cli.app.Students.Filter(student.QueryFilter{Class: class}))
	case exportPayments:
		fileName = report.AllPaymentsFileName(now)
		content = report.PaymentsCSV(cli.app.Payments.All(), cli.app.Conf.Location)
	default:
		return apps.NewArgumentError("export must be one of: students, payments")
	}

	if out == "" {
		out = fileName
	}
	return cli.writeFile(out, content)
}

// report prints the CSV report to cli.out, or writes it to `out` if set.
func (cli *commandLine) report(name, month, out string) error {
	if _, err := cli.requireAdmin(); err != nil {
		return err
	}

	var content string
	switch name {
	case report.ClassWiseReport:
		content = report.ClassDivisionCSV(report.ByClassDivision(cli.app.Students.All(), cli.app.Payments.All()))
	case report.BusStopReport:
		content = report.BusStopCSV(report.ByBusStop(cli.app.Students.All()))
	case report.MonthlyReport:
		if month == "" {
			month = cli.app.Now().Format("2006-01")
		}
		rep, err := report.ByMonth(cli.app.Payments.All(), month, cli.app.Conf.Location)
		if err != nil {
			return err
		}
		content = report.MonthlyCSV(rep)
	default:
		return apps.NewArgumentError("report must be one of: class-wise, bus-stop, monthly")
	}

	if out == "" {
		fmt.Fprintln(cli.out, content)
		return nil
	}
	return cli.writeFile(out, content)
}

func (cli *commandLine) reset(what string) error {
	if _, err := cli.requireAdmin(); err != nil {
		return err
	}
	if err := cli.app.Reset(what); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Reset %s\n", what)
	return nil
}

func (cli *commandLine) writeFile(name, content string) error {
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	fmt.Fprintf(cli.out, "Wrote %s\n", name)
	return nil
}
