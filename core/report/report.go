package report

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/student"
)

// RecentPaymentsLimit is the number of payments listed on dashboards.
const RecentPaymentsLimit = 5

type (
	ClassDivision struct {
		Class           string `json:"class"`
		Division        string `json:"division"`
		TotalStudents   int    `json:"totalStudents"`
		TotalPayments   int    `json:"totalPayments"`
		DevelopmentFees int    `json:"developmentFees"`
		BusFees         int    `json:"busFees"`
		SpecialFees     int    `json:"specialFees"`
		TotalCollection int    `json:"totalCollection"`
	}

	BusStop struct {
		BusStop       string            `json:"busStop"`
		TotalStudents int               `json:"totalStudents"`
		Students      []student.Student `json:"students"`
		// distinct values, first-seen order
		BusNumbers  []string `json:"busNumbers"`
		TripNumbers []string `json:"tripNumbers"`
	}

	DailyAmount struct {
		Date   time.Time `json:"date"`
		Amount int       `json:"amount"`
	}

	Monthly struct {
		Month           string        `json:"month"` // YYYY-MM
		TotalPayments   int           `json:"totalPayments"`
		DevelopmentFees int           `json:"developmentFees"`
		BusFees         int           `json:"busFees"`
		SpecialFees     int           `json:"specialFees"`
		TotalCollection int           `json:"totalCollection"`
		Daily           []DailyAmount `json:"dailyBreakdown"`
	}

	Dashboard struct {
		TotalStudents   int               `json:"totalStudents"`
		TotalPayments   int               `json:"totalPayments"`
		TotalCollection int               `json:"totalCollection"`
		TodayCollection int               `json:"todayCollection"`
		RecentPayments  []payment.Payment `json:"recentPayments"`
	}
)

// Label returns the report key of the group, eg. 4-B.
func (cd ClassDivision) Label() string {
	return cd.Class + "-" + cd.Division
}

// Total returns the sum of the payments' totals.
func Total(payments []payment.Payment) int {
	var total int
	for _, p := range payments {
		total += p.TotalAmount
	}
	return total
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Today returns the payments recorded on the calendar day of now, in now's location.
func Today(payments []payment.Payment, now time.Time) []payment.Payment {
	today := make([]payment.Payment, 0)
	for _, p := range payments {
		if sameDay(p.PaymentDate.In(now.Location()), now) {
			today = append(today, p)
		}
	}
	return today
}

// ByClassDivision groups students and payments by class-division, from 1-A to 12-E.
// Groups without students are left out, even if they have payments.
func ByClassDivision(students []student.Student, payments []payment.Payment) []ClassDivision {
	type key struct{ class, division string }

	studentCount := make(map[key]int)
	for _, s := range students {
		studentCount[key{s.Class, s.Division}]++
	}
	byGroup := make(map[key][]payment.Payment)
	for _, p := range payments {
		k := key{p.Class, p.Division}
		byGroup[k] = append(byGroup[k], p)
	}

	report := make([]ClassDivision, 0)
	for _, class := range core.Classes() {
		for _, div := range core.Divisions {
			k := key{class, div}
			if studentCount[k] == 0 {
				continue
			}
			cd := ClassDivision{Class: class, Division: div, TotalStudents: studentCount[k]}
			for _, p := range byGroup[k] {
				cd.TotalPayments++
				cd.DevelopmentFees += p.DevelopmentFee
				cd.BusFees += p.BusFee
				cd.SpecialFees += p.SpecialFee
				cd.TotalCollection += p.TotalAmount
			}
			report = append(report, cd)
		}
	}
	return report
}

func appendDistinct(values []string, v string) []string {
	for _, x := range values {
		if x == v {
			return values
		}
	}
	return append(values, v)
}

// ByBusStop groups students by bus stop, in first-seen order.
func ByBusStop(students []student.Student) []BusStop {
	report := make([]BusStop, 0)
	index := make(map[string]int)
	for _, s := range students {
		i, ok := index[s.BusStop]
		if !ok {
			i = len(report)
			index[s.BusStop] = i
			report = append(report, BusStop{
				BusStop:     s.BusStop,
				Students:    make([]student.Student, 0),
				BusNumbers:  make([]string, 0),
				TripNumbers: make([]string, 0),
			})
		}
		bs := &report[i]
		bs.TotalStudents++
		bs.Students = append(bs.Students, s)
		bs.BusNumbers = appendDistinct(bs.BusNumbers, s.BusNumber)
		bs.TripNumbers = appendDistinct(bs.TripNumbers, s.TripNumber)
	}
	return report
}

// ParseMonth parses a YYYY-MM month in loc.
func ParseMonth(month string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(
			errors.Wrap(err, "parsing month"),
			core.FieldError{Field: "month", Error: "month must be formatted as YYYY-MM"},
		)
	}
	return t, nil
}

// ByMonth aggregates the payments recorded during `month` (YYYY-MM, in loc), with a per-day breakdown in day order.
func ByMonth(payments []payment.Payment, month string, loc *time.Location) (Monthly, error) {
	start, err := ParseMonth(month, loc)
	if err != nil {
		return Monthly{}, err
	}
	end := start.AddDate(0, 1, 0)

	report := Monthly{Month: month, Daily: make([]DailyAmount, 0)}
	daily := make(map[time.Time]int)
	for _, p := range payments {
		d := p.PaymentDate.In(loc)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		report.TotalPayments++
		report.DevelopmentFees += p.DevelopmentFee
		report.BusFees += p.BusFee
		report.SpecialFees += p.SpecialFee
		report.TotalCollection += p.TotalAmount

		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		daily[day] += p.TotalAmount
	}
	for day, amount := range daily {
		report.Daily = append(report.Daily, DailyAmount{Date: day, Amount: amount})
	}
	sort.Slice(report.Daily, func(i, j int) bool { return report.Daily[i].Date.Before(report.Daily[j].Date) })
	return report, nil
}

// NewDashboard returns the headline figures of the given students and payments.
// Pass a teacher's class-division subset to get their dashboard.
func NewDashboard(students []student.Student, payments []payment.Payment, now time.Time) Dashboard {
	return Dashboard{
		TotalStudents:   len(students),
		TotalPayments:   len(payments),
		TotalCollection: Total(payments),
		TodayCollection: Total(Today(payments, now)),
		RecentPayments:  payment.Recent(payments, RecentPaymentsLimit),
	}
}
