package student

import (
	"strings"

	"github.com/sarvodaya/feedesk/core"
)

type Student struct {
	ID          string `json:"id"`
	AdmissionNo string `json:"admissionNo"`
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Class       string `json:"class"`
	Division    string `json:"division"`
	BusStop     string `json:"busStop"`
	BusNumber   string `json:"busNumber"`
	TripNumber  string `json:"tripNumber"`
}

// NewStudent contains information needed to create a new Student.
// Admission numbers are not required to be unique.
type NewStudent struct {
	AdmissionNo string `json:"admissionNo" validate:"notblank"`
	Name        string `json:"name" validate:"notblank"`
	Mobile      string `json:"mobile"`
	Class       string `json:"class" validate:"class"`
	Division    string `json:"division" validate:"division"`
	BusStop     string `json:"busStop"`
	BusNumber   string `json:"busNumber"`
	TripNumber  string `json:"tripNumber"`
}

func (ns *NewStudent) clean() {
	ns.AdmissionNo = core.CleanString(ns.AdmissionNo)
	ns.Name = core.CleanString(ns.Name)
	ns.Mobile = core.CleanString(ns.Mobile)
	ns.Class = core.CleanString(ns.Class)
	ns.Division = strings.ToUpper(core.CleanString(ns.Division))
	ns.BusStop = core.CleanString(ns.BusStop)
	ns.BusNumber = core.CleanString(ns.BusNumber)
	ns.TripNumber = core.CleanString(ns.TripNumber)
}

func (ns *NewStudent) Validate() error {
	ns.clean()
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Nil fields are left unchanged.
type UpdateStudent struct {
	AdmissionNo *string `json:"admissionNo" validate:"omitempty,notblank"`
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Mobile      *string `json:"mobile"`
	Class       *string `json:"class" validate:"omitempty,class"`
	Division    *string `json:"division" validate:"omitempty,division"`
	BusStop     *string `json:"busStop"`
	BusNumber   *string `json:"busNumber"`
	TripNumber  *string `json:"tripNumber"`
}

func cleanPtr(s *string, upper ...bool) {
	if s == nil {
		return
	}
	*s = core.CleanString(*s)
	if len(upper) > 0 && upper[0] {
		*s = strings.ToUpper(*s)
	}
}

func (us *UpdateStudent) Validate() error {
	cleanPtr(us.AdmissionNo)
	cleanPtr(us.Name)
	cleanPtr(us.Mobile)
	cleanPtr(us.Class)
	cleanPtr(us.Division, true /* upper */)
	cleanPtr(us.BusStop)
	cleanPtr(us.BusNumber)
	cleanPtr(us.TripNumber)
	return core.Validate.Struct(us)
}

func (us UpdateStudent) apply(s *Student) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.AdmissionNo, us.AdmissionNo)
	set(&s.Name, us.Name)
	set(&s.Mobile, us.Mobile)
	set(&s.Class, us.Class)
	set(&s.Division, us.Division)
	set(&s.BusStop, us.BusStop)
	set(&s.BusNumber, us.BusNumber)
	set(&s.TripNumber, us.TripNumber)
}

type QueryFilter struct {
	Class    string `query:"class"`
	Division string `query:"division"`
	BusStop  string `query:"bus_stop"`
	// Search does a case-insensitive match on Student.Name or Student.AdmissionNo.
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Class = core.CleanString(qf.Class)
	qf.Division = strings.ToUpper(core.CleanString(qf.Division))
	qf.BusStop = core.CleanString(qf.BusStop)
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

func (qf QueryFilter) match(s Student) bool {
	if qf.Class != "" && s.Class != qf.Class {
		return false
	}
	if qf.Division != "" && s.Division != qf.Division {
		return false
	}
	if qf.BusStop != "" && s.BusStop != qf.BusStop {
		return false
	}
	if qf.Search != "" &&
		!strings.Contains(strings.ToLower(s.Name), qf.Search) &&
		!strings.Contains(strings.ToLower(s.AdmissionNo), qf.Search) {
		return false
	}
	return true
}
