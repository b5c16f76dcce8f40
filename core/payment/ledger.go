package payment

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/core/student"
)

var (
	ErrNotFound = errors.New("payment not found")

	// NowFunc is mocked in tests.
	NowFunc = time.Now
)

// StudentFinder finds the student a payment is recorded for.
type StudentFinder interface {
	Get(id string) (student.Student, error)
}

type Options struct {
	// SchoolName signs the payment notifications.
	SchoolName string
	// Location is the time zone of notification dates. Defaults to time.Local.
	Location *time.Location
}

// Ledger is the write-through payment collection.
type Ledger struct {
	mu       sync.RWMutex
	blobs    core.BlobStore
	payments []Payment
	students StudentFinder
	notifier core.Notifier
	opts     Options
}

func NewLedger(blobs core.BlobStore, students StudentFinder, notifier core.Notifier, opts Options) (*Ledger, error) {
	payments := make([]Payment, 0)
	if _, err := core.LoadJSON(blobs, core.KeyPayments, &payments); err != nil {
		return nil, pkgerrors.Wrap(err, "loading payments")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Ledger{
		blobs:    blobs,
		payments: payments,
		students: students,
		notifier: notifier,
		opts:     opts,
	}, nil
}

// save persists payments and, on success only, makes them the current collection.
// The caller must hold l.mu.
func (l *Ledger) save(payments []Payment) error {
	if err := core.SaveJSON(l.blobs, core.KeyPayments, payments); err != nil {
		return pkgerrors.Wrap(err, "saving payments")
	}
	l.payments = payments
	return nil
}

func (l *Ledger) copyPayments(extra int) []Payment {
	payments := make([]Payment, len(l.payments), len(l.payments)+extra)
	copy(payments, l.payments)
	return payments
}

func (l *Ledger) newID() string {
	for {
		id := uuid.NewString()
		taken := false
		for _, p := range l.payments {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Add records a payment and notifies the student's parent.
// The total is computed by the ledger; an explicit total must agree with it.
func (l *Ledger) Add(np NewPayment) (Payment, error) {
	if err := np.Validate(); err != nil {
		return Payment{}, err
	}

	stu, err := l.students.Get(np.StudentID)
	found := err == nil
	if err != nil && !errors.Is(err, student.ErrNotFound) {
		return Payment{}, pkgerrors.Wrap(err, "finding student")
	}
	if found {
		// denormalized copy, never re-synced
		if np.StudentName == "" {
			np.StudentName = stu.Name
		}
		if np.AdmissionNo == "" {
			np.AdmissionNo = stu.AdmissionNo
		}
		if np.Class == "" {
			np.Class = stu.Class
		}
		if np.Division == "" {
			np.Division = stu.Division
		}
	}

	l.mu.Lock()
	pmt := Payment{
		ID:             l.newID(),
		StudentID:      np.StudentID,
		StudentName:    np.StudentName,
		AdmissionNo:    np.AdmissionNo,
		DevelopmentFee: np.DevelopmentFee,
		BusFee:         np.BusFee,
		SpecialFee:     np.SpecialFee,
		SpecialFeeType: np.SpecialFeeType,
		TotalAmount:    np.Total(),
		PaymentDate:    NowFunc(),
		AddedBy:        np.AddedBy,
		Class:          np.Class,
		Division:       np.Division,
	}
	err = l.save(append(l.copyPayments(1), pmt))
	l.mu.Unlock()
	if err != nil {
		return Payment{}, err
	}

	if found {
		// the parent gets the directory's name & admission number, not the caller's copy
		receipt := pmt
		receipt.StudentName, receipt.AdmissionNo = stu.Name, stu.AdmissionNo
		l.notifier.SendNotification(stu.Mobile, l.Receipt(receipt))
	}
	return pmt, nil
}

// Receipt returns the notification text sent to the parent for a payment.
func (l *Ledger) Receipt(p Payment) string {
	return fmt.Sprintf(
		"Dear Parent, Payment of ₹%d received for %s (%s). Date: %s. Thank you! - %s",
		p.TotalAmount, p.StudentName, p.AdmissionNo, FormatDate(p.PaymentDate.In(l.opts.Location)), l.opts.SchoolName,
	)
}

// FormatDate formats t as M/D/YYYY.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Month(), t.Day(), t.Year())
}

// Update replaces the supplied fields of the payment; unknown ids are ignored.
// The id, student id and payment date never change.
func (l *Ledger) Update(id string, up UpdatePayment) error {
	if err := up.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payments := l.copyPayments(0)
	for i := range payments {
		if payments[i].ID != id {
			continue
		}
		updated, err := up.apply(payments[i])
		if err != nil {
			return err
		}
		payments[i] = updated
	}
	return l.save(payments)
}

// Delete removes the payment; unknown ids are ignored. The notification already sent is not reverted.
func (l *Ledger) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	payments := make([]Payment, 0, len(l.payments))
	for _, p := range l.payments {
		if p.ID != id {
			payments = append(payments, p)
		}
	}
	return l.save(payments)
}

// Clear removes every payment.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.blobs.Delete(core.KeyPayments); err != nil {
		return pkgerrors.Wrap(err, "deleting payments")
	}
	l.payments = make([]Payment, 0)
	return nil
}

// All returns the payments in recording order.
func (l *Ledger) All() []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyPayments(0)
}

func (l *Ledger) Get(id string) (Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

// Filter applies AND operation on available QueryFilter fields.
func (l *Ledger) Filter(qf QueryFilter) []Payment {
	qf.Clean()

	l.mu.RLock()
	defer l.mu.RUnlock()

	payments := make([]Payment, 0)
	for _, p := range l.payments {
		if qf.match(p) {
			payments = append(payments, p)
		}
	}
	return payments
}

// Recent returns at most n payments, newest first.
func Recent(payments []Payment, n int) []Payment {
	sorted := make([]Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PaymentDate.After(sorted[j].PaymentDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Recent returns the n latest payments matching qf, newest first.
func (l *Ledger) Recent(qf QueryFilter, n int) []Payment {
	return Recent(l.Filter(qf), n)
}
