package classroom

import (
	"time"

	"github.com/eaduck/eaduck/core"
)

type Classroom struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	AcademicYear string    `json:"academic_year" db:"academic_year"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// membership (user pks)
	TeacherIDs []int `json:"teacher_ids" db:"-"`
	StudentIDs []int `json:"student_ids" db:"-"`
}

func (c *Classroom) HasTeacher(userID int) bool {
	for _, id := range c.TeacherIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Classroom) HasStudent(userID int) bool {
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Classroom) IsMember(userID int) bool {
	return c.HasTeacher(userID) || c.HasStudent(userID)
}

func (c *Classroom) AddTeacher(userID int) {
	if !c.HasTeacher(userID) {
		c.TeacherIDs = append(c.TeacherIDs, userID)
	}
}

func (c *Classroom) AddStudent(userID int) {
	if !c.HasStudent(userID) {
		c.StudentIDs = append(c.StudentIDs, userID)
	}
}

func (c *Classroom) RemoveTeacher(userID int) {
	c.TeacherIDs = removeID(c.TeacherIDs, userID)
}

func (c *Classroom) RemoveStudent(userID int) {
	c.StudentIDs = removeID(c.StudentIDs, userID)
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

type NewClassroom struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required,academicyear"`
	TeacherIDs   []int  `json:"teacher_ids"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	return core.Validate.Struct(nc)
}

type UpdateClassroom struct {
	Name         string `json:"name"`
	AcademicYear string `json:"academic_year" validate:"omitempty,academicyear"`
}

func (uc *UpdateClassroom) Validate() error {
	uc.Name = core.CleanString(uc.Name)
	uc.AcademicYear = core.CleanString(uc.AcademicYear)
	return core.Validate.Struct(uc)
}
