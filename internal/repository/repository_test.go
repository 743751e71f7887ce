package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/classroom-go-api/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.AssignmentStudent{}, &models.Submission{}))

	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()

	user := models.User{Username: username, Role: role}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func createAssignment(t *testing.T, db *gorm.DB, tutorID uint, description string, createdAt time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Description: description,
		TutorID:     tutorID,
		PublishedAt: createdAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return assignment
}

func TestGetOwnedScopesByTutor(t *testing.T) {
	db := setupDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	other := createUser(t, db, "other", models.RoleTutor)
	assignment := createAssignment(t, db, tutor.ID, "Read chapters 1-3 and summarize", time.Now())

	owned, err := repo.GetOwned(ctx, assignment.ID, tutor.ID)
	require.NoError(t, err)
	require.Equal(t, assignment.ID, owned.ID)

	// A foreign assignment looks exactly like a missing one.
	_, err = repo.GetOwned(ctx, assignment.ID, other.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetOwned(ctx, 999, tutor.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReconcileRosterPreservesStatus(t *testing.T) {
	db := setupDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	alice := createUser(t, db, "alice", models.RoleStudent)
	bob := createUser(t, db, "bob", models.RoleStudent)
	carol := createUser(t, db, "carol", models.RoleStudent)
	assignment := createAssignment(t, db, tutor.ID, "Read chapters 1-3 and summarize", time.Now())

	require.NoError(t, repo.AttachStudents(ctx, assignment.ID, []uint{alice.ID, bob.ID}))
	require.NoError(t, db.Model(&models.AssignmentStudent{}).
		Where("assignment_id = ? AND student_id = ?", assignment.ID, alice.ID).
		Update("status", models.PairStatusSubmitted).Error)

	require.NoError(t, repo.ReconcileRoster(ctx, assignment.ID, []uint{alice.ID, carol.ID}))

	details, err := repo.GetDetails(ctx, assignment.ID)
	require.NoError(t, err)
	require.Len(t, details.Roster, 2)

	statuses := make(map[uint]string, len(details.Roster))
	for _, pair := range details.Roster {
		statuses[pair.StudentID] = pair.Status
	}
	require.Equal(t, models.PairStatusSubmitted, statuses[alice.ID])
	require.Equal(t, models.PairStatusScheduled, statuses[carol.ID])
	require.NotContains(t, statuses, bob.ID)
}

func TestDeleteRemovesRosterAndSubmissions(t *testing.T) {
	db := setupDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	alice := createUser(t, db, "alice", models.RoleStudent)
	assignment := createAssignment(t, db, tutor.ID, "Read chapters 1-3 and summarize", time.Now())
	require.NoError(t, repo.AttachStudents(ctx, assignment.ID, []uint{alice.ID}))
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    alice.ID,
		Remark:       "done",
	}).Error)

	require.ErrorIs(t, repo.Delete(ctx, assignment.ID, 999), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(ctx, assignment.ID, tutor.ID))

	var pairCount, submissionCount int64
	require.NoError(t, db.Model(&models.AssignmentStudent{}).Where("assignment_id = ?", assignment.ID).Count(&pairCount).Error)
	require.NoError(t, db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&submissionCount).Error)
	require.Zero(t, pairCount)
	require.Zero(t, submissionCount)
}

func TestFeedScopingAndFilters(t *testing.T) {
	db := setupDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	rival := createUser(t, db, "rival", models.RoleTutor)
	alice := createUser(t, db, "alice", models.RoleStudent)

	now := time.Now().Truncate(time.Second)
	pastDeadline := now.Add(-24 * time.Hour)

	ongoing := createAssignment(t, db, tutor.ID, "ongoing", now.Add(-3*time.Hour))
	overdue := createAssignment(t, db, tutor.ID, "overdue", now.Add(-2*time.Hour))
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", overdue.ID).Update("deadline", pastDeadline).Error)
	scheduled := createAssignment(t, db, tutor.ID, "scheduled", now.Add(-1*time.Hour))
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", scheduled.ID).Update("published_at", now.Add(24*time.Hour)).Error)
	foreign := createAssignment(t, db, rival.ID, "foreign", now)

	require.NoError(t, repo.AttachStudents(ctx, ongoing.ID, []uint{alice.ID}))
	require.NoError(t, repo.AttachStudents(ctx, overdue.ID, []uint{alice.ID}))
	require.NoError(t, repo.AttachStudents(ctx, scheduled.ID, []uint{alice.ID}))

	t.Run("tutor scope", func(t *testing.T) {
		assignments, total, err := repo.Feed(ctx, FeedFilter{UserID: tutor.ID, Role: models.RoleTutor, Now: now})
		require.NoError(t, err)
		require.Equal(t, int64(3), total)
		require.Len(t, assignments, 3)

		// Newest first.
		require.Equal(t, scheduled.ID, assignments[0].ID)
		require.Equal(t, overdue.ID, assignments[1].ID)
		require.Equal(t, ongoing.ID, assignments[2].ID)
	})

	t.Run("student scope excludes foreign assignments", func(t *testing.T) {
		assignments, total, err := repo.Feed(ctx, FeedFilter{UserID: alice.ID, Role: models.RoleStudent, Now: now})
		require.NoError(t, err)
		require.Equal(t, int64(3), total)
		for _, assignment := range assignments {
			require.NotEqual(t, foreign.ID, assignment.ID)
		}
	})

	t.Run("published window", func(t *testing.T) {
		assignments, _, err := repo.Feed(ctx, FeedFilter{UserID: tutor.ID, Role: models.RoleTutor, PublishedAt: "SCHEDULED", Now: now})
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		require.Equal(t, scheduled.ID, assignments[0].ID)

		assignments, _, err = repo.Feed(ctx, FeedFilter{UserID: tutor.ID, Role: models.RoleTutor, PublishedAt: "ONGOING", Now: now})
		require.NoError(t, err)
		require.Len(t, assignments, 2)
	})

	t.Run("overdue is derived from deadline and open status", func(t *testing.T) {
		assignments, _, err := repo.Feed(ctx, FeedFilter{UserID: alice.ID, Role: models.RoleStudent, Status: "OVERDUE", Now: now})
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		require.Equal(t, overdue.ID, assignments[0].ID)
	})

	t.Run("submitted filter follows the pair status", func(t *testing.T) {
		assignments, _, err := repo.Feed(ctx, FeedFilter{UserID: alice.ID, Role: models.RoleStudent, Status: "SUBMITTED", Now: now})
		require.NoError(t, err)
		require.Empty(t, assignments)

		require.NoError(t, db.Model(&models.AssignmentStudent{}).
			Where("assignment_id = ? AND student_id = ?", ongoing.ID, alice.ID).
			Update("status", models.PairStatusSubmitted).Error)

		assignments, _, err = repo.Feed(ctx, FeedFilter{UserID: alice.ID, Role: models.RoleStudent, Status: "SUBMITTED", Now: now})
		require.NoError(t, err)
		require.Len(t, assignments, 1)
		require.Equal(t, ongoing.ID, assignments[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		assignments, total, err := repo.Feed(ctx, FeedFilter{UserID: tutor.ID, Role: models.RoleTutor, Page: 2, PageSize: 2, Now: now})
		require.NoError(t, err)
		require.Equal(t, int64(3), total)
		require.Len(t, assignments, 1)
		require.Equal(t, ongoing.ID, assignments[0].ID)
	})
}

func TestCreateAndMarkSubmitted(t *testing.T) {
	db := setupDB(t)
	assignments := NewAssignmentRepository(db)
	submissions := NewSubmissionRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	alice := createUser(t, db, "alice", models.RoleStudent)
	assignment := createAssignment(t, db, tutor.ID, "Read chapters 1-3 and summarize", time.Now())
	require.NoError(t, assignments.AttachStudents(ctx, assignment.ID, []uint{alice.ID}))

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: alice.ID, Remark: "done"}
	require.NoError(t, submissions.CreateAndMarkSubmitted(ctx, &submission))

	pair, err := assignments.GetPair(ctx, assignment.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.PairStatusSubmitted, pair.Status)

	// The unique pair index rejects a second insert.
	duplicate := models.Submission{AssignmentID: assignment.ID, StudentID: alice.ID, Remark: "again"}
	require.ErrorIs(t, submissions.CreateAndMarkSubmitted(ctx, &duplicate), gorm.ErrDuplicatedKey)
}

func TestListStudentsByIDsFiltersRole(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tutor := createUser(t, db, "tutor", models.RoleTutor)
	alice := createUser(t, db, "alice", models.RoleStudent)

	students, err := repo.ListStudentsByIDs(ctx, []uint{tutor.ID, alice.ID, 999})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, alice.ID, students[0].ID)

	students, err = repo.ListStudentsByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, students)
}
