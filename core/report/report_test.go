package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/student"
)

var (
	ist = time.FixedZone("IST", 5*3600+1800)
	now = time.Date(2024, time.March, 5, 9, 0, 0, 0, ist)
)

func stu(id, class, div, stop, bus, trip string) student.Student {
	return student.Student{
		ID:          id,
		AdmissionNo: "ADM" + id,
		Name:        "Student " + id,
		Mobile:      "98765" + id,
		Class:       class,
		Division:    div,
		BusStop:     stop,
		BusNumber:   bus,
		TripNumber:  trip,
	}
}

func pmt(id, class, div string, dev, bus, special int, at time.Time) payment.Payment {
	return payment.Payment{
		ID:             id,
		StudentID:      "s" + id,
		StudentName:    "Student " + id,
		AdmissionNo:    "ADM" + id,
		DevelopmentFee: dev,
		BusFee:         bus,
		SpecialFee:     special,
		TotalAmount:    dev + bus + special,
		PaymentDate:    at,
		AddedBy:        "admin",
		Class:          class,
		Division:       div,
	}
}

func TestTotalAndToday(t *testing.T) {
	payments := []payment.Payment{
		pmt("1", "1", "A", 500, 800, 0, now.Add(-time.Hour)),
		// 23:30 IST the day before
		pmt("2", "1", "A", 500, 0, 0, time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)),
		pmt("3", "2", "B", 600, 0, 100, now.Add(10*time.Hour)),
	}

	if got := Total(payments); got != 2500 {
		t.Errorf("Total() = %d, want 2500", got)
	}
	if got := Total(nil); got != 0 {
		t.Errorf("Total(nil) = %d, want 0", got)
	}

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"today", now, []string{"1", "3"}},
		{"tomorrow", now.AddDate(0, 0, 1), []string{}},
		{"yesterday", now.AddDate(0, 0, -1), []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, p := range Today(payments, tt.now) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByClassDivision(t *testing.T) {
	students := []student.Student{
		stu("1", "10", "C", "", "", ""),
		stu("2", "1", "A", "", "", ""),
		stu("3", "1", "A", "", "", ""),
		stu("4", "1", "B", "", "", ""),
	}
	payments := []payment.Payment{
		pmt("1", "1", "A", 500, 800, 0, now),
		pmt("2", "1", "A", 500, 0, 50, now),
		pmt("3", "10", "C", 1400, 0, 0, now),
		pmt("4", "7", "D", 1100, 0, 0, now), // no students in 7-D
	}

	want := []ClassDivision{
		{Class: "1", Division: "A", TotalStudents: 2, TotalPayments: 2, DevelopmentFees: 1000, BusFees: 800, SpecialFees: 50, TotalCollection: 1850},
		{Class: "1", Division: "B", TotalStudents: 1},
		{Class: "10", Division: "C", TotalStudents: 1, TotalPayments: 1, DevelopmentFees: 1400, TotalCollection: 1400},
	}
	assert.Equal(t, want, ByClassDivision(students, payments))
	assert.Equal(t, []ClassDivision{}, ByClassDivision(nil, payments))
}

func TestByBusStop(t *testing.T) {
	s1 := stu("1", "1", "A", "Market Square", "2", "1")
	s2 := stu("2", "1", "A", "Main Gate", "1", "1")
	s3 := stu("3", "2", "B", "Market Square", "3", "2")
	s4 := stu("4", "3", "C", "Market Square", "2", "1")

	want := []BusStop{
		{BusStop: "Market Square", TotalStudents: 3, Students: []student.Student{s1, s3, s4}, BusNumbers: []string{"2", "3"}, TripNumbers: []string{"1", "2"}},
		{BusStop: "Main Gate", TotalStudents: 1, Students: []student.Student{s2}, BusNumbers: []string{"1"}, TripNumbers: []string{"1"}},
	}
	assert.Equal(t, want, ByBusStop([]student.Student{s1, s2, s3, s4}))
}

func TestByMonth(t *testing.T) {
	payments := []payment.Payment{
		pmt("1", "1", "A", 500, 800, 0, time.Date(2024, time.March, 5, 9, 0, 0, 0, ist)),
		pmt("2", "1", "A", 500, 0, 0, time.Date(2024, time.March, 1, 0, 15, 0, 0, ist)),
		pmt("3", "1", "A", 600, 0, 0, time.Date(2024, time.March, 5, 18, 0, 0, 0, ist)),
		// 29 Feb 23:00 IST
		pmt("4", "1", "A", 700, 0, 0, time.Date(2024, time.February, 29, 17, 30, 0, 0, time.UTC)),
		// 1 Apr 00:30 IST
		pmt("5", "1", "A", 800, 0, 0, time.Date(2024, time.March, 31, 19, 0, 0, 0, time.UTC)),
	}

	got, err := ByMonth(payments, "2024-03", ist)
	if err != nil {
		t.Fatalf("ByMonth() error = %v", err)
	}
	want := Monthly{
		Month:           "2024-03",
		TotalPayments:   3,
		DevelopmentFees: 1600,
		BusFees:         800,
		TotalCollection: 2400,
		Daily: []DailyAmount{
			{Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, ist), Amount: 500},
			{Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, ist), Amount: 1900},
		},
	}
	assert.Equal(t, want, got)

	empty, err := ByMonth(payments, "2023-12", ist)
	if err != nil {
		t.Fatalf("ByMonth() error = %v", err)
	}
	if empty.TotalPayments != 0 || len(empty.Daily) != 0 {
		t.Errorf("ByMonth(2023-12) = %+v, want nothing", empty)
	}

	for _, bad := range []string{"", "2024-3", "March", "2024-13"} {
		if _, err := ByMonth(payments, bad, ist); err == nil {
			t.Errorf("ByMonth(%q) error = nil, want a validation error", bad)
		}
	}
}

func TestNewDashboard(t *testing.T) {
	students := []student.Student{stu("1", "1", "A", "", "", ""), stu("2", "1", "A", "", "", "")}
	var payments []payment.Payment
	for i := 0; i < 7; i++ {
		payments = append(payments, pmt(string(rune('a'+i)), "1", "A", 100, 0, 0, now.AddDate(0, 0, -i)))
	}

	got := NewDashboard(students, payments, now)
	if got.TotalStudents != 2 || got.TotalPayments != 7 || got.TotalCollection != 700 || got.TodayCollection != 100 {
		t.Errorf("NewDashboard() = %+v", got)
	}
	if len(got.RecentPayments) != RecentPaymentsLimit {
		t.Fatalf("RecentPayments = %d, want %d", len(got.RecentPayments), RecentPaymentsLimit)
	}
	for i, p := range got.RecentPayments {
		if want := string(rune('a' + i)); p.ID != want {
			t.Errorf("RecentPayments[%d] = %s, want %s", i, p.ID, want)
		}
	}
}
