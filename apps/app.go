package apps

import (
	"time"

	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/core/fee"
	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/report"
	"github.com/sarvodaya/feedesk/core/student"
	"github.com/sarvodaya/feedesk/core/user"
)

// Data reset targets
const (
	ResetStudents = "students"
	ResetPayments = "payments"
	ResetAll      = "all"
)

// App holds the services of one school, all mirrored to the same BlobStore.
type App struct {
	Conf     *core.Config
	Blobs    core.BlobStore
	Logger   core.Logger
	Users    *user.Service
	Fees     *fee.Store
	Students *student.Directory
	Payments *payment.Ledger
}

// New loads every collection from blobs; missing ones start empty (or with the default fees).
func New(conf *core.Config, blobs core.BlobStore, notifier core.Notifier, logger core.Logger) (*App, error) {
	users, err := user.NewService(blobs, conf.DefaultPassword)
	if err != nil {
		return nil, errors.Wrap(err, "loading users")
	}
	fees, err := fee.NewStore(blobs)
	if err != nil {
		return nil, errors.Wrap(err, "loading fees")
	}
	students, err := student.NewDirectory(blobs)
	if err != nil {
		return nil, errors.Wrap(err, "loading students")
	}
	payments, err := payment.NewLedger(blobs, students, notifier, payment.Options{
		SchoolName: conf.SchoolName,
		Location:   conf.Location,
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading payments")
	}
	return &App{
		Conf:     conf,
		Blobs:    blobs,
		Logger:   logger,
		Users:    users,
		Fees:     fees,
		Students: students,
		Payments: payments,
	}, nil
}

func (a *App) Close() error {
	return a.Blobs.Close()
}

// Now returns the current time in the school's time zone.
func (a *App) Now() time.Time {
	return payment.NowFunc().In(a.Conf.Location)
}

// Reset clears students, payments or everything (students, payments & fees; the default fees are reinstalled).
func (a *App) Reset(what string) error {
	switch what {
	case ResetStudents:
		return a.Students.Clear()
	case ResetPayments:
		return a.Payments.Clear()
	case ResetAll:
		if err := a.Students.Clear(); err != nil {
			return err
		}
		if err := a.Payments.Clear(); err != nil {
			return err
		}
		return a.Fees.Reset()
	default:
		return NewArgumentError("reset target must be one of: students, payments, all")
	}
}

// ImportStudentsCSV imports the students of a CSV import file.
func (a *App) ImportStudentsCSV(content string) ([]student.Student, error) {
	return a.Students.Import(report.ParseStudents(content))
}

// VisibleStudents returns the students usr may see.
func (a *App) VisibleStudents(usr user.User, qf student.QueryFilter) []student.Student {
	if !usr.IsAdmin() {
		qf.Class, qf.Division = usr.Class, usr.Division
	}
	if !usr.IsAdmin() && !usr.IsTeacher() {
		return make([]student.Student, 0)
	}
	return a.Students.Filter(qf)
}

// VisiblePayments returns the payments usr may see.
func (a *App) VisiblePayments(usr user.User, qf payment.QueryFilter) []payment.Payment {
	if !usr.IsAdmin() {
		qf.Class, qf.Division = usr.Class, usr.Division
	}
	if !usr.IsAdmin() && !usr.IsTeacher() {
		return make([]payment.Payment, 0)
	}
	return a.Payments.Filter(qf)
}

// Dashboard returns the dashboard figures of usr: the whole school for admins, their class-division for teachers.
func (a *App) Dashboard(usr user.User) report.Dashboard {
	return report.NewDashboard(
		a.VisibleStudents(usr, student.QueryFilter{}),
		a.VisiblePayments(usr, payment.QueryFilter{}),
		a.Now(),
	)
}

// SuggestFees returns the development & bus fees of a student, as configured.
func (a *App) SuggestFees(studentID string) (devFee, busFee int, err error) {
	stu, err := a.Students.Get(studentID)
	if err != nil {
		return 0, 0, err
	}
	devFee, busFee = a.Fees.Suggest(stu.Class, stu.BusStop)
	return devFee, busFee, nil
}
