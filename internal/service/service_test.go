package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/utils"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// memoryStore backs the in-memory repository fakes shared by the service
// tests.
type memoryStore struct {
	users       map[uint]models.User
	assignments map[uint]models.Assignment
	pairs       []models.AssignmentStudent
	submissions []models.Submission

	nextUserID       uint
	nextAssignmentID uint
	nextPairID       uint
	nextSubmissionID uint

	clock time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:            make(map[uint]models.User),
		assignments:      make(map[uint]models.Assignment),
		nextUserID:       1,
		nextAssignmentID: 1,
		nextPairID:       1,
		nextSubmissionID: 1,
		clock:            time.Now().Add(-time.Hour),
	}
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryStore) addUser(username, role string) models.User {
	user := models.User{ID: m.nextUserID, Username: username, Role: role, CreatedAt: m.tick()}
	m.users[user.ID] = user
	m.nextUserID++
	return user
}

type memoryUserRepo struct {
	store *memoryStore
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range r.store.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = r.store.nextUserID
	user.CreatedAt = r.store.tick()
	r.store.users[user.ID] = *user
	r.store.nextUserID++
	return nil
}

func (r *memoryUserRepo) ListStudentsByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	students := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.store.users[id]; ok && user.Role == models.RoleStudent {
			students = append(students, user)
		}
	}
	return students, nil
}

type memoryAssignmentRepo struct {
	store *memoryStore
}

func (r *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := r.store.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *memoryAssignmentRepo) GetOwned(_ context.Context, id, tutorID uint) (models.Assignment, error) {
	assignment, ok := r.store.assignments[id]
	if !ok || assignment.TutorID != tutorID {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *memoryAssignmentRepo) GetDetails(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := r.store.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}

	assignment.Roster = r.rosterOf(id)
	assignment.Submissions = nil
	for _, submission := range r.store.submissions {
		if submission.AssignmentID == id {
			submission.Student = r.store.users[submission.StudentID]
			assignment.Submissions = append(assignment.Submissions, submission)
		}
	}

	return assignment, nil
}

func (r *memoryAssignmentRepo) rosterOf(assignmentID uint) []models.AssignmentStudent {
	roster := make([]models.AssignmentStudent, 0)
	for _, pair := range r.store.pairs {
		if pair.AssignmentID == assignmentID {
			pair.Student = r.store.users[pair.StudentID]
			roster = append(roster, pair)
		}
	}
	return roster
}

func (r *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = r.store.nextAssignmentID
	assignment.CreatedAt = r.store.tick()
	assignment.UpdatedAt = assignment.CreatedAt
	r.store.assignments[assignment.ID] = *assignment
	r.store.nextAssignmentID++
	return nil
}

func (r *memoryAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	if _, ok := r.store.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = r.store.tick()
	r.store.assignments[assignment.ID] = *assignment
	return nil
}

func (r *memoryAssignmentRepo) Delete(_ context.Context, id, tutorID uint) error {
	assignment, ok := r.store.assignments[id]
	if !ok || assignment.TutorID != tutorID {
		return gorm.ErrRecordNotFound
	}

	delete(r.store.assignments, id)

	pairs := r.store.pairs[:0]
	for _, pair := range r.store.pairs {
		if pair.AssignmentID != id {
			pairs = append(pairs, pair)
		}
	}
	r.store.pairs = pairs

	submissions := r.store.submissions[:0]
	for _, submission := range r.store.submissions {
		if submission.AssignmentID != id {
			submissions = append(submissions, submission)
		}
	}
	r.store.submissions = submissions

	return nil
}

func (r *memoryAssignmentRepo) AttachStudents(_ context.Context, assignmentID uint, studentIDs []uint) error {
	for _, studentID := range studentIDs {
		r.store.pairs = append(r.store.pairs, models.AssignmentStudent{
			ID:           r.store.nextPairID,
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Status:       models.PairStatusScheduled,
			CreatedAt:    r.store.tick(),
		})
		r.store.nextPairID++
	}
	return nil
}

func (r *memoryAssignmentRepo) ReconcileRoster(ctx context.Context, assignmentID uint, studentIDs []uint) error {
	wanted := make(map[uint]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = struct{}{}
	}

	existing := make(map[uint]struct{})
	pairs := r.store.pairs[:0]
	for _, pair := range r.store.pairs {
		if pair.AssignmentID == assignmentID {
			if _, keep := wanted[pair.StudentID]; !keep {
				continue
			}
			existing[pair.StudentID] = struct{}{}
		}
		pairs = append(pairs, pair)
	}
	r.store.pairs = pairs

	added := make([]uint, 0)
	for _, id := range studentIDs {
		if _, ok := existing[id]; !ok {
			added = append(added, id)
		}
	}

	return r.AttachStudents(ctx, assignmentID, added)
}

func (r *memoryAssignmentRepo) GetPair(_ context.Context, assignmentID, studentID uint) (models.AssignmentStudent, error) {
	for _, pair := range r.store.pairs {
		if pair.AssignmentID == assignmentID && pair.StudentID == studentID {
			return pair, nil
		}
	}
	return models.AssignmentStudent{}, gorm.ErrRecordNotFound
}

func (r *memoryAssignmentRepo) Feed(_ context.Context, filter repository.FeedFilter) ([]models.Assignment, int64, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	matches := make([]models.Assignment, 0)
	for _, assignment := range r.store.assignments {
		var pair *models.AssignmentStudent
		switch filter.Role {
		case models.RoleTutor:
			if assignment.TutorID != filter.UserID {
				continue
			}
		case models.RoleStudent:
			found, err := r.GetPair(context.Background(), assignment.ID, filter.UserID)
			if err != nil {
				continue
			}
			pair = &found
		}

		switch filter.PublishedAt {
		case "SCHEDULED":
			if !assignment.PublishedAt.After(now) {
				continue
			}
		case "ONGOING":
			if assignment.PublishedAt.After(now) {
				continue
			}
		}

		if filter.Role == models.RoleStudent && pair != nil {
			switch filter.Status {
			case "PENDING":
				if !pair.IsOpen() {
					continue
				}
			case "OVERDUE":
				if !pair.IsOpen() || !assignment.IsPastDeadline(now) {
					continue
				}
			case "SUBMITTED":
				if pair.Status != models.PairStatusSubmitted {
					continue
				}
			}
		}

		assignment.Roster = r.rosterOf(assignment.ID)
		matches = append(matches, assignment)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(matches) {
			return []models.Assignment{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(matches) {
			end = len(matches)
		}
		matches = matches[start:end]
	}

	return matches, total, nil
}

type memorySubmissionRepo struct {
	store *memoryStore
}

func (r *memorySubmissionRepo) GetByPair(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range r.store.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			submission.Student = r.store.users[submission.StudentID]
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *memorySubmissionRepo) CreateAndMarkSubmitted(ctx context.Context, submission *models.Submission) error {
	if _, err := r.GetByPair(ctx, submission.AssignmentID, submission.StudentID); err == nil {
		return gorm.ErrDuplicatedKey
	}

	submission.ID = r.store.nextSubmissionID
	submission.CreatedAt = r.store.tick()
	r.store.submissions = append(r.store.submissions, *submission)
	r.store.nextSubmissionID++

	for i, pair := range r.store.pairs {
		if pair.AssignmentID == submission.AssignmentID && pair.StudentID == submission.StudentID {
			r.store.pairs[i].Status = models.PairStatusSubmitted
		}
	}

	return nil
}

func (r *memorySubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	for i, stored := range r.store.submissions {
		if stored.ID == submission.ID {
			r.store.submissions[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memorySubmissionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	for _, submission := range r.store.submissions {
		if submission.AssignmentID == assignmentID {
			submission.Student = r.store.users[submission.StudentID]
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

type testEnv struct {
	store       *memoryStore
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
}

func newTestEnv() *testEnv {
	store := newMemoryStore()
	return &testEnv{
		store:       store,
		users:       &memoryUserRepo{store: store},
		assignments: &memoryAssignmentRepo{store: store},
		submissions: &memorySubmissionRepo{store: store},
	}
}

func (e *testEnv) assignmentService() AssignmentService {
	return NewAssignmentService(e.assignments, e.users, testValidator(), utils.NewSanitizer(), AssignmentServiceOptions{}, testLogger())
}

func (e *testEnv) submissionService() SubmissionService {
	return NewSubmissionService(e.submissions, e.assignments, testValidator(), utils.NewSanitizer(), testLogger())
}
