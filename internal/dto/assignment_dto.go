package dto

import (
	"time"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Description string `json:"description" validate:"required,min=10,max=1000"`
	StudentIDs  []uint `json:"student_ids" validate:"omitempty,dive,gt=0"`
	PublishedAt string `json:"published_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Deadline    string `json:"deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
// Absent fields keep their stored value; a non-nil StudentIDs replaces the
// roster as a set.
type AssignmentUpdateRequest struct {
	Description *string `json:"description" validate:"omitempty,min=10,max=1000"`
	StudentIDs  []uint  `json:"student_ids" validate:"omitempty,dive,gt=0"`
	PublishedAt *string `json:"published_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Deadline    *string `json:"deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// RosterEntry is a student on an assignment together with their pair status.
type RosterEntry struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// AssignmentResponse is the serialized representation returned to API clients.
// Submissions is populated only on the details endpoint and filtered by role.
type AssignmentResponse struct {
	ID          uint                 `json:"id"`
	Description string               `json:"description"`
	TutorID     uint                 `json:"tutor_id"`
	PublishedAt time.Time            `json:"published_at"`
	Deadline    *time.Time           `json:"deadline"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Students    []RosterEntry        `json:"students"`
	Submissions []SubmissionResponse `json:"submissions,omitempty"`
}

// AssignmentFeedRequest carries the feed filters and pagination window.
type AssignmentFeedRequest struct {
	PublishedAt string `query:"published_at" validate:"omitempty,oneof=SCHEDULED ONGOING"`
	Status      string `query:"status" validate:"omitempty,oneof=ALL PENDING OVERDUE SUBMITTED"`
	Page        int    `query:"page" validate:"omitempty,gte=1"`
	Limit       int    `query:"limit" validate:"omitempty,gte=1"`
}

// PaginationMeta describes the window of a paginated listing.
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

// AssignmentFeedResponse is the paginated feed payload.
type AssignmentFeedResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Pagination  PaginationMeta       `json:"pagination"`
}

// NewAssignmentResponse maps an assignment model, including any preloaded
// roster, to its API representation.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	students := make([]RosterEntry, 0, len(assignment.Roster))
	for _, pair := range assignment.Roster {
		students = append(students, RosterEntry{
			ID:       pair.StudentID,
			Username: pair.Student.Username,
			Status:   pair.Status,
		})
	}

	return AssignmentResponse{
		ID:          assignment.ID,
		Description: assignment.Description,
		TutorID:     assignment.TutorID,
		PublishedAt: assignment.PublishedAt,
		Deadline:    assignment.Deadline,
		CreatedAt:   assignment.CreatedAt,
		UpdatedAt:   assignment.UpdatedAt,
		Students:    students,
	}
}

// NewAssignmentResponseSlice maps a slice of assignment models.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
