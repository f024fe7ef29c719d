package domain

import "time"

// Course is a subject taught at the school.
type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CourseInput is the payload for creating or renaming a course.
type CourseInput struct {
	Name string `json:"name"`
}

// AssignedCourse links a student, a teacher and a course.
type AssignedCourse struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	TeacherID string    `json:"teacherId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AssignmentInput is the payload for POST /admin/assign.
type AssignmentInput struct {
	StudentID string `json:"studentId"`
	TeacherID string `json:"teacherId"`
	CourseID  string `json:"courseId"`
}
