package testutil

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/sarvodaya/feedesk/apps"
	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/student"
	"github.com/sarvodaya/feedesk/services/logger"
	"github.com/sarvodaya/feedesk/services/notify"
	"github.com/sarvodaya/feedesk/storage/blobstore/inmem"
)

// Now is the frozen clock of NewApp.
var Now = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

// NewApp returns an App on an in-memory store, with a frozen clock and the synchronous notifier mock.
func NewApp(t *testing.T) *apps.App {
	t.Helper()
	return NewAppWithStore(t, inmemblob.Open())
}

func NewAppWithStore(t *testing.T, blobs core.BlobStore) *apps.App {
	t.Helper()
	SetNow(t, Now)
	notifysvc.ResetSentMessages()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	app, err := apps.New(conf, blobs, notifysvc.NewConsoleServiceMock(), logger)
	if err != nil {
		t.Fatalf("apps.New() failed: %v", err)
	}
	return app
}

// SetNow freezes payment.NowFunc for the duration of the test.
func SetNow(t *testing.T, now time.Time) {
	payment.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { payment.NowFunc = time.Now })
}

func CreateStudent(t *testing.T, app *apps.App, admNo, name, class, division string, busStop ...string) student.Student {
	t.Helper()
	ns := student.NewStudent{
		AdmissionNo: admNo,
		Name:        name,
		Mobile:      "98765" + admNo,
		Class:       class,
		Division:    division,
		BusNumber:   "1",
		TripNumber:  "1",
	}
	if len(busStop) > 0 {
		ns.BusStop = busStop[0]
	}
	stu, err := app.Students.Add(ns)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreatePayment(t *testing.T, app *apps.App, stu student.Student, devFee, busFee int, addedBy string) payment.Payment {
	t.Helper()
	pmt, err := app.Payments.Add(payment.NewPayment{
		StudentID:      stu.ID,
		DevelopmentFee: devFee,
		BusFee:         busFee,
		AddedBy:        addedBy,
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return pmt
}
