package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

// FeedFilter describes the scoping, filtering and pagination of a feed query.
type FeedFilter struct {
	UserID      uint
	Role        string
	PublishedAt string
	Status      string
	Page        int
	PageSize    int
	Now         time.Time
}

// AssignmentRepository defines persistence operations for assignments and
// their rosters.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	GetOwned(ctx context.Context, id, tutorID uint) (models.Assignment, error)
	GetDetails(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id, tutorID uint) error
	AttachStudents(ctx context.Context, assignmentID uint, studentIDs []uint) error
	ReconcileRoster(ctx context.Context, assignmentID uint, studentIDs []uint) error
	GetPair(ctx context.Context, assignmentID, studentID uint) (models.AssignmentStudent, error)
	Feed(ctx context.Context, filter FeedFilter) ([]models.Assignment, int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

// GetOwned resolves an assignment scoped to its owning tutor. A missing row
// and a row owned by someone else are indistinguishable to the caller.
func (r *assignmentRepository) GetOwned(ctx context.Context, id, tutorID uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tutor_id = ?", id, tutorID).
		First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) GetDetails(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Roster.Student").
		Preload("Submissions.Student").
		First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).
		Omit("Roster", "Submissions").
		Save(assignment).Error
}

// Delete removes an assignment owned by tutorID together with its roster rows
// and submissions.
func (r *assignmentRepository) Delete(ctx context.Context, id, tutorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND tutor_id = ?", id, tutorID).Delete(&models.Assignment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.AssignmentStudent{}).Error; err != nil {
			return err
		}

		return tx.Where("assignment_id = ?", id).Delete(&models.Submission{}).Error
	})
}

func (r *assignmentRepository) AttachStudents(ctx context.Context, assignmentID uint, studentIDs []uint) error {
	if len(studentIDs) == 0 {
		return nil
	}

	rows := make([]models.AssignmentStudent, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		rows = append(rows, models.AssignmentStudent{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Status:       models.PairStatusScheduled,
		})
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

// ReconcileRoster diffs the stored roster against studentIDs and applies only
// the additions and removals, so retained students keep their pair status.
func (r *assignmentRepository) ReconcileRoster(ctx context.Context, assignmentID uint, studentIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []models.AssignmentStudent
		if err := tx.Where("assignment_id = ?", assignmentID).Find(&current).Error; err != nil {
			return err
		}

		wanted := make(map[uint]struct{}, len(studentIDs))
		for _, id := range studentIDs {
			wanted[id] = struct{}{}
		}

		existing := make(map[uint]struct{}, len(current))
		removed := make([]uint, 0)
		for _, row := range current {
			existing[row.StudentID] = struct{}{}
			if _, keep := wanted[row.StudentID]; !keep {
				removed = append(removed, row.StudentID)
			}
		}

		added := make([]models.AssignmentStudent, 0)
		for _, id := range studentIDs {
			if _, ok := existing[id]; !ok {
				added = append(added, models.AssignmentStudent{
					AssignmentID: assignmentID,
					StudentID:    id,
					Status:       models.PairStatusScheduled,
				})
			}
		}

		if len(removed) > 0 {
			if err := tx.Where("assignment_id = ? AND student_id IN ?", assignmentID, removed).
				Delete(&models.AssignmentStudent{}).Error; err != nil {
				return err
			}
		}

		if len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *assignmentRepository) GetPair(ctx context.Context, assignmentID, studentID uint) (models.AssignmentStudent, error) {
	var pair models.AssignmentStudent
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&pair).Error; err != nil {
		return models.AssignmentStudent{}, err
	}

	return pair, nil
}

// Feed lists assignments visible to the caller, newest first, with the filter
// labels translated into predicates over the stored columns.
func (r *assignmentRepository) Feed(ctx context.Context, filter FeedFilter) ([]models.Assignment, int64, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	switch filter.Role {
	case models.RoleTutor:
		query = query.Where("assignments.tutor_id = ?", filter.UserID)
	case models.RoleStudent:
		query = query.Joins(
			"JOIN assignment_students ON assignment_students.assignment_id = assignments.id AND assignment_students.student_id = ?",
			filter.UserID,
		)
	}

	switch filter.PublishedAt {
	case "SCHEDULED":
		query = query.Where("assignments.published_at > ?", now)
	case "ONGOING":
		query = query.Where("assignments.published_at <= ?", now)
	}

	if filter.Role == models.RoleStudent {
		switch filter.Status {
		case "PENDING":
			query = query.Where("assignment_students.status IN ?", []string{models.PairStatusScheduled, models.PairStatusOngoing})
		case "OVERDUE":
			query = query.Where("assignment_students.status IN ?", []string{models.PairStatusScheduled, models.PairStatusOngoing}).
				Where("assignments.deadline < ?", now)
		case "SUBMITTED":
			query = query.Where("assignment_students.status = ?", models.PairStatusSubmitted)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	if filter.PageSize > 0 {
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var assignments []models.Assignment
	if err := query.
		Preload("Roster.Student").
		Order("assignments.created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}
