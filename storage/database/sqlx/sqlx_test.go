package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

const (
	teacherID    = "6f1c7bb2-42a4-4a36-9e38-1f0fd1b0c001"
	studentID    = "6f1c7bb2-42a4-4a36-9e38-1f0fd1b0c002"
	assignmentID = "6f1c7bb2-42a4-4a36-9e38-1f0fd1b0c003"
	otherID      = "6f1c7bb2-42a4-4a36-9e38-1f0fd1b0c004"
)

var (
	userCols       = []string{"id", "email", "password_hash", "role", "teacher_id", "created_at", "updated_at", "last_login"}
	assignmentCols = []string{"id", "title", "description", "file_url", "teacher_id", "created_at"}
	submissionCols = []string{"id", "assignment_id", "student_id", "teacher_id", "answers", "file_url", "created_at"}

	now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func sqlLike(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix)
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	usr := user.User{
		Email:        "student@test.io",
		PasswordHash: []byte("hash"),
		Role:         user.RoleStudent,
		TeacherID:    teacherID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectExec(sqlLike("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "student@test.io", []byte("hash"), user.RoleStudent, teacherID, now, now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := repo.CreateUser(ctx, usr)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, teacherID, created.TeacherID)

	mock.ExpectExec(sqlLike("INSERT INTO users")).WillReturnError(&pq.Error{Code: uniqueViolation})
	_, err = repo.CreateUser(ctx, usr)
	assert.Equal(t, user.ErrEmailExists, err)

	mock.ExpectExec(sqlLike("INSERT INTO users")).WillReturnError(errors.New("connection reset"))
	_, err = repo.CreateUser(ctx, usr)
	assert.EqualError(t, errors.Cause(err), "connection reset")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(sqlLike("SELECT id, email")).WithArgs(studentID).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(studentID, "student@test.io", []byte("hash"), "student", teacherID, now, now, nil))
	usr, err := repo.GetUserByID(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, user.User{
		ID:           studentID,
		Email:        "student@test.io",
		PasswordHash: []byte("hash"),
		Role:         user.RoleStudent,
		TeacherID:    teacherID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, usr)
	assert.True(t, usr.LastLogin.IsZero())

	mock.ExpectQuery(sqlLike("SELECT id, email")).WithArgs("nobody@test.io").
		WillReturnRows(sqlmock.NewRows(userCols))
	_, err = repo.GetUserByEmail(ctx, "nobody@test.io")
	assert.Equal(t, user.ErrNotFound, err)

	// not a uuid: no query
	_, err = repo.GetUserByID(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckEmailUniqueness(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(sqlLike("SELECT EXISTS")).WithArgs("taken@test.io").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "taken@test.io"))

	mock.ExpectQuery(sqlLike("SELECT EXISTS")).WithArgs("free@test.io").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	assert.NoError(t, repo.CheckEmailUniqueness(ctx, "free@test.io"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_QueryUsersByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users, err := repo.QueryUsersByID(ctx, []string{"ghost"})
	require.NoError(t, err)
	assert.Empty(t, users)

	mock.ExpectQuery(sqlLike("SELECT id, email")).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(teacherID, "teacher@test.io", []byte("hash"), "teacher", nil, now, now, now))
	users, err = repo.QueryUsersByID(ctx, []string{teacherID, "ghost", studentID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "teacher@test.io", users[0].Email)
	assert.Empty(t, users[0].TeacherID)
	assert.Equal(t, now, users[0].LastLogin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	usr := user.User{ID: studentID, PasswordHash: []byte("hash"), TeacherID: otherID, UpdatedAt: now, LastLogin: now}

	mock.ExpectExec(sqlLike("UPDATE users")).
		WithArgs([]byte("hash"), otherID, now, now, studentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	updated, err := repo.UpdateUser(ctx, usr)
	require.NoError(t, err)
	assert.Equal(t, otherID, updated.TeacherID)

	mock.ExpectExec(sqlLike("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = repo.UpdateUser(ctx, usr)
	assert.Equal(t, user.ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	mock.ExpectExec(sqlLike("INSERT INTO assignments")).
		WithArgs(sqlmock.AnyArg(), "HW1", "Cells", nil, teacherID, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	a, err := repo.CreateAssignment(ctx, assignment.Assignment{Title: "HW1", Description: "Cells", TeacherID: teacherID, CreatedAt: now})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	mock.ExpectQuery(sqlLike("SELECT id, title")).WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows(assignmentCols).AddRow(assignmentID, "HW1", "Cells", "https://f/hw1.pdf", teacherID, now))
	got, err := repo.GetAssignment(ctx, assignmentID)
	require.NoError(t, err)
	assert.Equal(t, assignment.Assignment{
		ID:          assignmentID,
		Title:       "HW1",
		Description: "Cells",
		FileURL:     "https://f/hw1.pdf",
		TeacherID:   teacherID,
		CreatedAt:   now,
	}, got)

	mock.ExpectQuery(sqlLike("SELECT id, title")).WithArgs(otherID).WillReturnRows(sqlmock.NewRows(assignmentCols))
	_, err = repo.GetAssignment(ctx, otherID)
	assert.Equal(t, assignment.ErrNotFound, err)

	_, err = repo.GetAssignment(ctx, "not-a-uuid")
	assert.Equal(t, assignment.ErrNotFound, err)

	mock.ExpectQuery(sqlLike("SELECT id, title")).WithArgs(teacherID).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(otherID, "HW2", "", nil, teacherID, now.Add(time.Hour)).
			AddRow(assignmentID, "HW1", "Cells", nil, teacherID, now))
	list, err := repo.QueryAssignmentsByTeacher(ctx, teacherID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "HW2", list[0].Title)
	assert.Empty(t, list[0].FileURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_CreateSubmission(t *testing.T) {
	sub := submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		TeacherID:    teacherID,
		Answers:      []submission.Answer{{Question: "Q1", Answer: "42"}},
		CreatedAt:    now,
	}
	answersJSON := []byte(`[{"question":"Q1","answer":"42"}]`)

	t.Run("insert", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectExec(sqlLike("INSERT INTO submissions")).
			WithArgs(sqlmock.AnyArg(), assignmentID, studentID, teacherID, answersJSON, nil, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		created, err := repo.CreateSubmission(context.Background(), sub, false)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replace", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(sqlLike("DELETE FROM submissions")).WithArgs(assignmentID, studentID).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(sqlLike("INSERT INTO submissions")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		_, err := repo.CreateSubmission(context.Background(), sub, true)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replace rolls back", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(sqlLike("DELETE FROM submissions")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(sqlLike("INSERT INTO submissions")).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()
		_, err := repo.CreateSubmission(context.Background(), sub, true)
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubmissionRepository_Query(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(sqlLike("SELECT id, assignment_id")).WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(otherID, assignmentID, studentID, teacherID, []byte(`[{"question":"Q1","answer":"42"}]`), nil, now).
			AddRow(studentID, assignmentID, studentID, teacherID, []byte(`[]`), "https://f/a.txt", now.Add(time.Minute)))
	subs, err := repo.QuerySubmissionsByAssignment(ctx, assignmentID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, []submission.Answer{{Question: "Q1", Answer: "42"}}, subs[0].Answers)
	assert.Equal(t, []submission.Answer{}, subs[1].Answers)
	assert.Equal(t, "https://f/a.txt", subs[1].FileURL)

	mock.ExpectQuery(sqlLike("SELECT EXISTS")).WithArgs(assignmentID, studentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := repo.SubmissionExists(ctx, assignmentID, studentID)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(sqlLike("SELECT assignment_id, COUNT(DISTINCT student_id)")).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"assignment_id", "count"}).AddRow(assignmentID, 3))
	counts, err := repo.CountByAssignment(ctx, []string{assignmentID, otherID, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{assignmentID: 3, otherID: 0, "ghost": 0}, counts)

	assert.NoError(t, mock.ExpectationsWereMet())
}
