package domain

import (
	"strconv"
	"time"
)

// Mark is a numeric grade tying a student, a teacher and a course.
// The backend expects values in [0,100]; the portal does not enforce it.
type Mark struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	TeacherID string    `json:"teacherId"`
	CourseID  string    `json:"courseId"`
	Mark      float64   `json:"mark"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarkInput creates a mark.
type MarkInput struct {
	StudentID string  `json:"studentId"`
	TeacherID string  `json:"teacherId"`
	CourseID  string  `json:"courseId"`
	MarkValue float64 `json:"markValue"`
}

// MarkUpdate changes the value of an existing mark.
type MarkUpdate struct {
	NewMarkValue float64 `json:"newMarkValue"`
}

// StudentWithMarks is one roster row of the teacher console.
type StudentWithMarks struct {
	User
	Marks []Mark `json:"marks"`
}

// MarkBy returns the mark recorded by teacherID, if any.
func (s StudentWithMarks) MarkBy(teacherID string) (Mark, bool) {
	for _, m := range s.Marks {
		if m.TeacherID == teacherID {
			return m, true
		}
	}
	return Mark{}, false
}

// CourseIDs lists the course of every mark, in backend order.
func (s StudentWithMarks) CourseIDs() []string {
	ids := make([]string, len(s.Marks))
	for i, m := range s.Marks {
		ids[i] = m.CourseID
	}
	return ids
}

// MarkValues formats every mark value, in backend order.
func (s StudentWithMarks) MarkValues() []string {
	vals := make([]string, len(s.Marks))
	for i, m := range s.Marks {
		vals[i] = strconv.FormatFloat(m.Mark, 'f', -1, 64)
	}
	return vals
}

// TeacherName is the teacher shown next to a student's course.
type TeacherName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// StudentCourse is one read-only row of the student console.
type StudentCourse struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Teacher TeacherName `json:"teacher"`
	Mark    float64     `json:"mark"`
}

// StudentData is the payload of GET /student/data.
type StudentData struct {
	Courses []StudentCourse `json:"courses"`
}
