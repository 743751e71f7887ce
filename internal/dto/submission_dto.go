package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an assignment.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Remark       string `json:"remark" validate:"required,min=1,max=2000"`
}

// GradeRequest describes the payload for grading a submission. Re-grading
// overwrites the previous grade and feedback.
type GradeRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	StudentID    uint   `json:"student_id" validate:"required,gt=0"`
	Grade        string `json:"grade" validate:"required,min=1,max=16"`
	Feedback     string `json:"feedback" validate:"omitempty,max=2000"`
}

// SubmissionResponse is the serialized representation of a submission.
type SubmissionResponse struct {
	ID           uint         `json:"id"`
	AssignmentID uint         `json:"assignment_id"`
	Remark       string       `json:"remark"`
	Grade        *string      `json:"grade"`
	Feedback     string       `json:"feedback"`
	GradedAt     *time.Time   `json:"graded_at"`
	CreatedAt    time.Time    `json:"created_at"`
	Student      UserResponse `json:"student"`
}

// NewSubmissionResponse maps a submission model to its API representation.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		Remark:       submission.Remark,
		Grade:        submission.Grade,
		Feedback:     submission.Feedback,
		GradedAt:     submission.GradedAt,
		CreatedAt:    submission.CreatedAt,
		Student: UserResponse{
			ID:       submission.StudentID,
			Username: submission.Student.Username,
			Role:     submission.Student.Role,
		},
	}
}

// NewSubmissionResponseSlice maps a slice of submission models.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
