package student

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
)

var ErrNotFound = errors.New("student not found")

// Directory is the write-through student collection.
type Directory struct {
	mu       sync.RWMutex
	blobs    core.BlobStore
	students []Student
}

func NewDirectory(blobs core.BlobStore) (*Directory, error) {
	students := make([]Student, 0)
	if _, err := core.LoadJSON(blobs, core.KeyStudents, &students); err != nil {
		return nil, pkgerrors.Wrap(err, "loading students")
	}
	return &Directory{blobs: blobs, students: students}, nil
}

// save persists students and, on success only, makes them the current collection.
// The caller must hold dir.mu.
func (dir *Directory) save(students []Student) error {
	if err := core.SaveJSON(dir.blobs, core.KeyStudents, students); err != nil {
		return pkgerrors.Wrap(err, "saving students")
	}
	dir.students = students
	return nil
}

// newID returns a random id absent from taken, and marks it taken.
func newID(taken map[string]struct{}) string {
	for {
		id := uuid.NewString()
		if _, ok := taken[id]; !ok {
			taken[id] = struct{}{}
			return id
		}
	}
}

func (dir *Directory) takenIDs() map[string]struct{} {
	taken := make(map[string]struct{}, len(dir.students))
	for _, s := range dir.students {
		taken[s.ID] = struct{}{}
	}
	return taken
}

func (dir *Directory) copyStudents(extra int) []Student {
	students := make([]Student, len(dir.students), len(dir.students)+extra)
	copy(students, dir.students)
	return students
}

func (ns NewStudent) toStudent(id string) Student {
	return Student{
		ID:          id,
		AdmissionNo: ns.AdmissionNo,
		Name:        ns.Name,
		Mobile:      ns.Mobile,
		Class:       ns.Class,
		Division:    ns.Division,
		BusStop:     ns.BusStop,
		BusNumber:   ns.BusNumber,
		TripNumber:  ns.TripNumber,
	}
}

func (dir *Directory) Add(ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	dir.mu.Lock()
	defer dir.mu.Unlock()

	stu := ns.toStudent(newID(dir.takenIDs()))
	if err := dir.save(append(dir.copyStudents(1), stu)); err != nil {
		return Student{}, err
	}
	return stu, nil
}

// Import adds all students at once. If any of them is invalid nothing is added.
func (dir *Directory) Import(list []NewStudent) ([]Student, error) {
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, core.ScopeValidationError(err, fmt.Sprintf("student %d", i+1))
		}
	}

	dir.mu.Lock()
	defer dir.mu.Unlock()

	taken := dir.takenIDs()
	students := dir.copyStudents(len(list))
	added := make([]Student, 0, len(list))
	for _, ns := range list {
		stu := ns.toStudent(newID(taken))
		students = append(students, stu)
		added = append(added, stu)
	}
	if err := dir.save(students); err != nil {
		return nil, err
	}
	return added, nil
}

// Update replaces the supplied fields of the student; unknown ids are ignored.
func (dir *Directory) Update(id string, us UpdateStudent) error {
	if err := us.Validate(); err != nil {
		return err
	}

	dir.mu.Lock()
	defer dir.mu.Unlock()

	students := dir.copyStudents(0)
	for i := range students {
		if students[i].ID == id {
			us.apply(&students[i])
		}
	}
	return dir.save(students)
}

// Delete removes the student; unknown ids are ignored. Payments of the student are kept.
func (dir *Directory) Delete(id string) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	students := make([]Student, 0, len(dir.students))
	for _, s := range dir.students {
		if s.ID != id {
			students = append(students, s)
		}
	}
	return dir.save(students)
}

// Clear removes every student.
func (dir *Directory) Clear() error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	if err := dir.blobs.Delete(core.KeyStudents); err != nil {
		return pkgerrors.Wrap(err, "deleting students")
	}
	dir.students = make([]Student, 0)
	return nil
}

// All returns the students in insertion order.
func (dir *Directory) All() []Student {
	dir.mu.RLock()
	defer dir.mu.RUnlock()
	return dir.copyStudents(0)
}

func (dir *Directory) Get(id string) (Student, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	for _, s := range dir.students {
		if s.ID == id {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

// Filter applies AND operation on available QueryFilter fields.
func (dir *Directory) Filter(qf QueryFilter) []Student {
	qf.Clean()

	dir.mu.RLock()
	defer dir.mu.RUnlock()

	students := make([]Student, 0)
	for _, s := range dir.students {
		if qf.match(s) {
			students = append(students, s)
		}
	}
	return students
}
