package models

import "time"

// Assignment represents a piece of work a tutor hands out to students.
type Assignment struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Description string              `gorm:"type:text;not null" json:"description"`
	TutorID     uint                `gorm:"not null;index" json:"tutor_id"`
	PublishedAt time.Time           `gorm:"not null" json:"published_at"`
	Deadline    *time.Time          `json:"deadline"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Tutor       User                `gorm:"foreignKey:TutorID" json:"-"`
	Roster      []AssignmentStudent `gorm:"foreignKey:AssignmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"roster,omitempty"`
	Submissions []Submission        `gorm:"foreignKey:AssignmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"submissions,omitempty"`
}

// IsScheduled reports whether the assignment publishes strictly after the reference time.
func (a Assignment) IsScheduled(reference time.Time) bool {
	return a.PublishedAt.After(reference)
}

// IsPastDeadline reports whether the assignment has a deadline that already passed.
func (a Assignment) IsPastDeadline(reference time.Time) bool {
	return a.Deadline != nil && a.Deadline.Before(reference)
}

// Stored per-pair progress states. PENDING and OVERDUE are feed filter labels
// derived at query time and never persisted.
const (
	PairStatusScheduled = "SCHEDULED"
	PairStatusOngoing   = "ONGOING"
	PairStatusSubmitted = "SUBMITTED"
)

// AssignmentStudent links a student to an assignment roster and carries the
// student's progress state for that assignment. One row per pair.
type AssignmentStudent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Status       string    `gorm:"size:16;not null;default:SCHEDULED" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Student      User      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsOpen reports whether the pair still accepts a submission status change.
func (as AssignmentStudent) IsOpen() bool {
	return as.Status == PairStatusScheduled || as.Status == PairStatusOngoing
}
