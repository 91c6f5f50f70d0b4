package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
)

const assignmentColumns = "id, title, description, file_url, teacher_id, created_at"

type assignmentRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	FileURL     null.String `db:"file_url"`
	TeacherID   string      `db:"teacher_id"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		FileURL:     row.FileURL.String,
		TeacherID:   row.TeacherID,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

type assignmentRepository struct {
	db core.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db core.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	row := assignmentRow{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		FileURL:     null.NewString(a.FileURL, a.FileURL != ""),
		TeacherID:   a.TeacherID,
		CreatedAt:   a.CreatedAt.UTC(),
	}
	q := `INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (:id, :title, :description, :file_url, :teacher_id, :created_at)`
	if _, err := namedExec(ctx, getExec(repo.db, exec), q, row); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var row assignmentRow
	q := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	if err := getExec(repo.db, exec).GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) QueryAssignmentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	if _, err := uuid.Parse(teacherID); err != nil {
		return []assignment.Assignment{}, nil
	}
	var rows []assignmentRow
	q := `SELECT ` + assignmentColumns + ` FROM assignments WHERE teacher_id = $1 ORDER BY created_at DESC, id DESC`
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	list := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toAssignment())
	}
	return list, nil
}
