package models

import "time"

// Submission records a student's answer for an assignment. At most one per
// (assignment, student) pair, enforced by a unique index.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_submission_pair" json:"student_id"`
	Remark       string     `gorm:"type:text;not null" json:"remark"`
	Grade        *string    `gorm:"size:32" json:"grade"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Student      User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether a tutor has graded the submission.
func (s Submission) IsGraded() bool {
	return s.GradedAt != nil
}
