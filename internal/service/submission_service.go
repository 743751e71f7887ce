package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/utils"
)

// SubmissionService exposes the submission and grading use cases.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, tutorID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *utils.Sanitizer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, validate *validator.Validate, sanitizer *utils.Sanitizer, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		sanitizer:   sanitizer,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit records the student's submission for an assignment they are rostered
// on. A pair accepts exactly one submission; resubmission is rejected, not
// merged. The pair status flips to SUBMITTED atomically with the insert.
func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assignments.GetPair(ctx, payload.AssignmentID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotAssigned
		}
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.submissions.GetByPair(ctx, payload.AssignmentID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    studentID,
		Remark:       s.sanitizer.Clean(payload.Remark),
	}

	if err := s.submissions.CreateAndMarkSubmitted(ctx, &submission); err != nil {
		// Unique index on the pair backstops a concurrent duplicate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", payload.AssignmentID).
		Uint("student_id", studentID).
		Msg("submission recorded")

	stored, err := s.submissions.GetByPair(ctx, payload.AssignmentID, studentID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(stored), nil
}

// Grade attaches grade, feedback and a grading timestamp to the submission of
// the given pair. Only the owning tutor may grade; re-grading overwrites.
func (s *submissionService) Grade(ctx context.Context, tutorID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assignments.GetOwned(ctx, payload.AssignmentID, tutorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByPair(ctx, payload.AssignmentID, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	grade := payload.Grade
	gradedAt := s.now()
	submission.Grade = &grade
	submission.Feedback = s.sanitizer.Clean(payload.Feedback)
	submission.GradedAt = &gradedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", payload.AssignmentID).
		Uint("student_id", payload.StudentID).
		Str("grade", grade).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}
