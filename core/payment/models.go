package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/sarvodaya/feedesk/core"
)

type Payment struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName"`
	AdmissionNo    string    `json:"admissionNo"`
	DevelopmentFee int       `json:"developmentFee"`
	BusFee         int       `json:"busFee"`
	SpecialFee     int       `json:"specialFee"`
	SpecialFeeType string    `json:"specialFeeType"`
	TotalAmount    int       `json:"totalAmount"`
	PaymentDate    time.Time `json:"paymentDate"`
	AddedBy        string    `json:"addedBy"`
	Class          string    `json:"class"`
	Division       string    `json:"division"`
}

// NewPayment contains information needed to record a Payment.
// TotalAmount is optional: the ledger computes it, a non-zero value must agree.
type NewPayment struct {
	StudentID      string `json:"studentId" validate:"notblank"`
	StudentName    string `json:"studentName"`
	AdmissionNo    string `json:"admissionNo"`
	DevelopmentFee int    `json:"developmentFee" validate:"min=0"`
	BusFee         int    `json:"busFee" validate:"min=0"`
	SpecialFee     int    `json:"specialFee" validate:"min=0"`
	SpecialFeeType string `json:"specialFeeType"`
	TotalAmount    int    `json:"totalAmount"`
	AddedBy        string `json:"addedBy"`
	Class          string `json:"class" validate:"omitempty,class"`
	Division       string `json:"division" validate:"omitempty,division"`
}

// MaxFee bounds each fee component, keeping their sum far from int overflow.
const MaxFee = 10_000_000

const (
	totalMismatchText    = "total amount does not match the sum of the fees"
	totalNotPositiveText = "total amount must be greater than 0"
)

var feeTooLargeText = fmt.Sprintf("fee must be %d or less", MaxFee)

func checkAmounts(dev, bus, special int, specialType string, total int) error {
	for _, fee := range []struct {
		field  string
		amount int
	}{{"developmentFee", dev}, {"busFee", bus}, {"specialFee", special}} {
		if fee.amount > MaxFee {
			return core.NewValidationError(nil, core.FieldError{Field: fee.field, Error: feeTooLargeText})
		}
	}
	if special > 0 && specialType == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "specialFeeType", Error: "this field is required"})
	}
	sum := dev + bus + special
	if total != sum {
		return core.NewValidationError(nil, core.FieldError{Field: "totalAmount", Error: totalMismatchText})
	}
	if sum <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "totalAmount", Error: totalNotPositiveText})
	}
	return nil
}

// Total is the sum of the three fee components.
func (np NewPayment) Total() int {
	return np.DevelopmentFee + np.BusFee + np.SpecialFee
}

func (np *NewPayment) Validate() error {
	np.StudentID = core.CleanString(np.StudentID)
	np.StudentName = core.CleanString(np.StudentName)
	np.AdmissionNo = core.CleanString(np.AdmissionNo)
	np.SpecialFeeType = core.CleanString(np.SpecialFeeType)
	np.AddedBy = core.CleanString(np.AddedBy)
	np.Class = core.CleanString(np.Class)
	np.Division = strings.ToUpper(core.CleanString(np.Division))

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	total := np.TotalAmount
	if total == 0 {
		total = np.Total()
	}
	return checkAmounts(np.DevelopmentFee, np.BusFee, np.SpecialFee, np.SpecialFeeType, total)
}

// UpdatePayment defines what information may be provided to modify an existing Payment.
// Nil fields are left unchanged; the total is recomputed from the resulting fees.
type UpdatePayment struct {
	StudentName    *string `json:"studentName"`
	AdmissionNo    *string `json:"admissionNo"`
	DevelopmentFee *int    `json:"developmentFee" validate:"omitempty,min=0"`
	BusFee         *int    `json:"busFee" validate:"omitempty,min=0"`
	SpecialFee     *int    `json:"specialFee" validate:"omitempty,min=0"`
	SpecialFeeType *string `json:"specialFeeType"`
	TotalAmount    *int    `json:"totalAmount"`
	AddedBy        *string `json:"addedBy"`
	Class          *string `json:"class" validate:"omitempty,class"`
	Division       *string `json:"division" validate:"omitempty,division"`
}

func (up *UpdatePayment) Validate() error {
	for _, s := range []*string{up.StudentName, up.AdmissionNo, up.SpecialFeeType, up.AddedBy, up.Class} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if up.Division != nil {
		*up.Division = strings.ToUpper(core.CleanString(*up.Division))
	}
	return core.Validate.Struct(up)
}

// apply returns p updated with the supplied fields.
func (up UpdatePayment) apply(p Payment) (Payment, error) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&p.StudentName, up.StudentName)
	setStr(&p.AdmissionNo, up.AdmissionNo)
	setInt(&p.DevelopmentFee, up.DevelopmentFee)
	setInt(&p.BusFee, up.BusFee)
	setInt(&p.SpecialFee, up.SpecialFee)
	setStr(&p.SpecialFeeType, up.SpecialFeeType)
	setStr(&p.AddedBy, up.AddedBy)
	setStr(&p.Class, up.Class)
	setStr(&p.Division, up.Division)

	total := p.DevelopmentFee + p.BusFee + p.SpecialFee
	if up.TotalAmount != nil {
		total = *up.TotalAmount
	}
	if err := checkAmounts(p.DevelopmentFee, p.BusFee, p.SpecialFee, p.SpecialFeeType, total); err != nil {
		return Payment{}, err
	}
	p.TotalAmount = total
	return p, nil
}

type QueryFilter struct {
	Class     string `query:"class"`
	Division  string `query:"division"`
	StudentID string `query:"student_id"`
	// Search does a case-insensitive match on Payment.StudentName or Payment.AdmissionNo.
	Search string    `query:"search"`
	From   time.Time `query:"from"`
	To     time.Time `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.Class = core.CleanString(qf.Class)
	qf.Division = strings.ToUpper(core.CleanString(qf.Division))
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

func (qf QueryFilter) match(p Payment) bool {
	if qf.Class != "" && p.Class != qf.Class {
		return false
	}
	if qf.Division != "" && p.Division != qf.Division {
		return false
	}
	if qf.StudentID != "" && p.StudentID != qf.StudentID {
		return false
	}
	if !qf.From.IsZero() && p.PaymentDate.Before(qf.From) {
		return false
	}
	if !qf.To.IsZero() && p.PaymentDate.After(qf.To) {
		return false
	}
	if qf.Search != "" &&
		!strings.Contains(strings.ToLower(p.StudentName), qf.Search) &&
		!strings.Contains(strings.ToLower(p.AdmissionNo), qf.Search) {
		return false
	}
	return true
}
