package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/utils"
)

// AssignmentService exposes the assignment lifecycle use cases.
type AssignmentService interface {
	Create(ctx context.Context, tutorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, tutorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, tutorID uint) error
	Details(ctx context.Context, userID uint, role string, id uint) (dto.AssignmentResponse, error)
	Feed(ctx context.Context, userID uint, role string, payload dto.AssignmentFeedRequest) (dto.AssignmentFeedResponse, error)
}

// AssignmentServiceOptions tunes feed pagination and caching.
type AssignmentServiceOptions struct {
	Cache           *redis.Client
	CacheTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

type assignmentService struct {
	assignments     repository.AssignmentRepository
	users           repository.UserRepository
	validator       *validator.Validate
	sanitizer       *utils.Sanitizer
	cache           *redis.Client
	cacheTTL        time.Duration
	defaultPageSize int
	maxPageSize     int
	logger          zerolog.Logger
	now             func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, users repository.UserRepository, validate *validator.Validate, sanitizer *utils.Sanitizer, opts AssignmentServiceOptions, logger zerolog.Logger) AssignmentService {
	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = 100
	}

	return &assignmentService{
		assignments:     assignments,
		users:           users,
		validator:       validate,
		sanitizer:       sanitizer,
		cache:           opts.Cache,
		cacheTTL:        opts.CacheTTL,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger.With().Str("component", "assignment_service").Logger(),
		now:             time.Now,
	}
}

// Create stores a new assignment owned by tutorID. When student ids are given
// the whole roster must resolve to existing students or nothing is written.
func (s *assignmentService) Create(ctx context.Context, tutorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	publishedAt := s.now()
	if payload.PublishedAt != "" {
		parsed, err := time.Parse(time.RFC3339, payload.PublishedAt)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid published date: %w", err)
		}
		publishedAt = parsed
	}

	var deadline *time.Time
	if payload.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Deadline)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		deadline = &parsed
	}

	students, err := s.resolveStudents(ctx, payload.StudentIDs)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Description: s.sanitizer.Clean(payload.Description),
		TutorID:     tutorID,
		PublishedAt: publishedAt,
		Deadline:    deadline,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.assignments.AttachStudents(ctx, assignment.ID, payload.StudentIDs); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("tutor_id", tutorID).
		Int("roster_size", len(students)).
		Msg("assignment created")

	response := dto.NewAssignmentResponse(assignment)
	for _, student := range students {
		response.Students = append(response.Students, dto.RosterEntry{
			ID:       student.ID,
			Username: student.Username,
			Status:   models.PairStatusScheduled,
		})
	}

	return response, nil
}

// Update replaces only the supplied fields. A non-nil StudentIDs replaces the
// roster as a set; students retained across the update keep their pair status.
func (s *assignmentService) Update(ctx context.Context, id, tutorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetOwned(ctx, id, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Description != nil {
		assignment.Description = s.sanitizer.Clean(*payload.Description)
	}

	if payload.PublishedAt != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.PublishedAt)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid published date: %w", err)
		}
		assignment.PublishedAt = parsed
	}

	if payload.Deadline != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.Deadline)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		assignment.Deadline = &parsed
	}

	if payload.StudentIDs != nil {
		if _, err := s.resolveStudents(ctx, payload.StudentIDs); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.StudentIDs != nil {
		if err := s.assignments.ReconcileRoster(ctx, assignment.ID, payload.StudentIDs); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	updated, err := s.assignments.GetDetails(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(updated), nil
}

// Delete removes an assignment owned by tutorID together with its roster and
// submissions.
func (s *assignmentService) Delete(ctx context.Context, id, tutorID uint) error {
	if err := s.assignments.Delete(ctx, id, tutorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

// Details loads an assignment with its roster and submissions, applying the
// caller's visibility: students must be rostered and see only their own
// submission, tutors must own the assignment and see everything.
func (s *assignmentService) Details(ctx context.Context, userID uint, role string, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	submissions := assignment.Submissions

	switch role {
	case models.RoleStudent:
		assigned := false
		for _, pair := range assignment.Roster {
			if pair.StudentID == userID {
				assigned = true
				break
			}
		}
		if !assigned {
			return dto.AssignmentResponse{}, ErrNotAssigned
		}

		own := make([]models.Submission, 0, 1)
		for _, submission := range submissions {
			if submission.StudentID == userID {
				own = append(own, submission)
			}
		}
		submissions = own
	case models.RoleTutor:
		if assignment.TutorID != userID {
			return dto.AssignmentResponse{}, ErrNotAuthorized
		}
	}

	response := dto.NewAssignmentResponse(assignment)
	response.Submissions = dto.NewSubmissionResponseSlice(submissions)

	return response, nil
}

// Feed lists assignments scoped to the caller, newest first. Results are
// cached per caller and filter window for a short TTL when a cache is wired.
func (s *assignmentService) Feed(ctx context.Context, userID uint, role string, payload dto.AssignmentFeedRequest) (dto.AssignmentFeedResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentFeedResponse{}, err
	}

	page := payload.Page
	if page <= 0 {
		page = 1
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	status := payload.Status
	if role != models.RoleStudent {
		// The status filter rides the caller's own pair state; tutors have none.
		status = ""
	}

	cacheKey := fmt.Sprintf("feed:%s:%d:p=%s:s=%s:page=%d:limit=%d", role, userID, payload.PublishedAt, status, page, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AssignmentFeedResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("cache_key", cacheKey).Msg("feed cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read feed cache")
		}
	}

	assignments, total, err := s.assignments.Feed(ctx, repository.FeedFilter{
		UserID:      userID,
		Role:        role,
		PublishedAt: payload.PublishedAt,
		Status:      status,
		Page:        page,
		PageSize:    limit,
		Now:         s.now(),
	})
	if err != nil {
		return dto.AssignmentFeedResponse{}, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	response := dto.AssignmentFeedResponse{
		Assignments: dto.NewAssignmentResponseSlice(assignments),
		Pagination: dto.PaginationMeta{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}

	if s.cache != nil {
		if payloadBytes, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payloadBytes, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store feed cache")
			}
		}
	}

	return response, nil
}

// resolveStudents maps ids to existing student users, failing when any id does
// not resolve so no partial roster can be committed.
func (s *assignmentService) resolveStudents(ctx context.Context, studentIDs []uint) ([]models.User, error) {
	if len(studentIDs) == 0 {
		return []models.User{}, nil
	}

	students, err := s.users.ListStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}

	if len(students) != len(studentIDs) {
		return nil, ErrInvalidStudents
	}

	return students, nil
}
