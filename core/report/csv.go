package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sarvodaya/feedesk/core/payment"
	"github.com/sarvodaya/feedesk/core/student"
)

// The CSV files are plain comma-joined lines without quoting: a comma inside a value shifts the columns.
// Files exported by earlier versions must stay readable, so the format is kept as is.

var (
	StudentsHeader = []string{"Admission No", "Name", "Mobile", "Class", "Division", "Bus Stop", "Bus Number", "Trip Number"}
	PaymentsHeader = []string{
		"Payment ID", "Student Name", "Admission No", "Class", "Division",
		"Development Fee", "Bus Fee", "Special Fee", "Special Fee Type",
		"Total Amount", "Payment Date", "Added By",
	}
	ClassDivisionHeader = []string{"Class", "Total Students", "Total Payments", "Development Fees", "Bus Fees", "Special Fees", "Total Collection"}
	BusStopHeader       = []string{"Bus Stop", "Total Students", "Bus Numbers", "Trip Numbers"}
	MonthlyHeader       = []string{"Date", "Amount"}
	ImportHeader        = []string{"admissionNo", "name", "mobile", "class", "division", "busStop", "busNumber", "tripNumber"}
)

// Report names, used in file names.
const (
	ClassWiseReport = "class-wise"
	BusStopReport   = "bus-stop"
	MonthlyReport   = "monthly"
)

// SampleFileName is the name of the import template.
const SampleFileName = "student_sample.csv"

func joinCSV(header []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

func studentRow(s student.Student) []string {
	return []string{s.AdmissionNo, s.Name, s.Mobile, s.Class, s.Division, s.BusStop, s.BusNumber, s.TripNumber}
}

func StudentsCSV(students []student.Student) string {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, studentRow(s))
	}
	return joinCSV(StudentsHeader, rows)
}

// PaymentsCSV exports payments; dates are M/D/YYYY in loc.
func PaymentsCSV(payments []payment.Payment, loc *time.Location) string {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.ID,
			p.StudentName,
			p.AdmissionNo,
			p.Class,
			p.Division,
			strconv.Itoa(p.DevelopmentFee),
			strconv.Itoa(p.BusFee),
			strconv.Itoa(p.SpecialFee),
			p.SpecialFeeType,
			strconv.Itoa(p.TotalAmount),
			payment.FormatDate(p.PaymentDate.In(loc)),
			p.AddedBy,
		})
	}
	return joinCSV(PaymentsHeader, rows)
}

func ClassDivisionCSV(report []ClassDivision) string {
	rows := make([][]string, 0, len(report))
	for _, cd := range report {
		rows = append(rows, []string{
			cd.Label(),
			strconv.Itoa(cd.TotalStudents),
			strconv.Itoa(cd.TotalPayments),
			strconv.Itoa(cd.DevelopmentFees),
			strconv.Itoa(cd.BusFees),
			strconv.Itoa(cd.SpecialFees),
			strconv.Itoa(cd.TotalCollection),
		})
	}
	return joinCSV(ClassDivisionHeader, rows)
}

func BusStopCSV(report []BusStop) string {
	rows := make([][]string, 0, len(report))
	for _, bs := range report {
		rows = append(rows, []string{
			bs.BusStop,
			strconv.Itoa(bs.TotalStudents),
			strings.Join(bs.BusNumbers, ";"),
			strings.Join(bs.TripNumbers, ";"),
		})
	}
	return joinCSV(BusStopHeader, rows)
}

func MonthlyCSV(report Monthly) string {
	rows := make([][]string, 0, len(report.Daily))
	for _, d := range report.Daily {
		rows = append(rows, []string{payment.FormatDate(d.Date), strconv.Itoa(d.Amount)})
	}
	return joinCSV(MonthlyHeader, rows)
}

// SampleCSV returns the import template with two example rows.
func SampleCSV() string {
	return joinCSV(ImportHeader, [][]string{
		{"2024001", "John Doe", "9876543210", "1", "A", "Main Gate", "1", "1"},
		{"2024002", "Jane Smith", "9876543211", "1", "A", "Market Square", "2", "1"},
	})
}

// ParseStudents reads an import file. The first line is the header; every other line is split on commas
// and kept only if it has as many fields as the header and a non-empty first field.
// Fields map by position: admission number, name, mobile, class, division, bus stop, bus number, trip number.
func ParseStudents(content string) []student.NewStudent {
	lines := strings.Split(content, "\n")
	header := strings.Split(lines[0], ",")

	students := make([]student.NewStudent, 0)
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		if len(values) != len(header) || values[0] == "" {
			continue
		}
		field := func(i int) string {
			if i < len(values) {
				return values[i]
			}
			return ""
		}
		students = append(students, student.NewStudent{
			AdmissionNo: field(0),
			Name:        field(1),
			Mobile:      field(2),
			Class:       field(3),
			Division:    field(4),
			BusStop:     field(5),
			BusNumber:   field(6),
			TripNumber:  field(7),
		})
	}
	return students
}

func dateSuffix(now time.Time) string {
	return now.Format("2006-01-02")
}

func AllStudentsFileName(now time.Time) string {
	return "all_students_" + dateSuffix(now) + ".csv"
}

func ClassStudentsFileName(class string, now time.Time) string {
	return fmt.Sprintf("class_%s_students_%s.csv", class, dateSuffix(now))
}

func AllPaymentsFileName(now time.Time) string {
	return "all_payments_" + dateSuffix(now) + ".csv"
}

// ReportFileName returns eg. bus_stop_report_2024-03-05.csv for BusStopReport.
func ReportFileName(name string, now time.Time) string {
	return strings.ReplaceAll(name, "-", "_") + "_report_" + dateSuffix(now) + ".csv"
}

// MonthlyReportFileName returns eg. monthly_report_2024-02_2024-03-05.csv for month 2024-02.
func MonthlyReportFileName(month string, now time.Time) string {
	return MonthlyReport + "_report_" + month + "_" + dateSuffix(now) + ".csv"
}
