package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
)

const submissionColumns = "id, assignment_id, student_id, teacher_id, answers, file_url, created_at"

type submissionRow struct {
	ID           string         `db:"id"`
	AssignmentID string         `db:"assignment_id"`
	StudentID    string         `db:"student_id"`
	TeacherID    string         `db:"teacher_id"`
	Answers      types.JSONText `db:"answers"`
	FileURL      null.String    `db:"file_url"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (row submissionRow) toSubmission() (submission.Submission, error) {
	answers := make([]submission.Answer, 0)
	if len(row.Answers) > 0 {
		if err := row.Answers.Unmarshal(&answers); err != nil {
			return submission.Submission{}, errors.Wrapf(err, "decoding answers of submission %s", row.ID)
		}
	}
	return submission.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		TeacherID:    row.TeacherID,
		Answers:      answers,
		FileURL:      row.FileURL.String,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

type submissionRepository struct {
	db core.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db core.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission, replace bool, exec ...core.DBExecutor) (submission.Submission, error) {
	if sub.Answers == nil {
		sub.Answers = []submission.Answer{}
	}
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "encoding answers")
	}

	sub.ID = uuid.New().String()
	row := submissionRow{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		TeacherID:    sub.TeacherID,
		Answers:      types.JSONText(answers),
		FileURL:      null.NewString(sub.FileURL, sub.FileURL != ""),
		CreatedAt:    sub.CreatedAt.UTC(),
	}
	insertQ := `INSERT INTO submissions (` + submissionColumns + `)
		VALUES (:id, :assignment_id, :student_id, :teacher_id, :answers, :file_url, :created_at)`

	if !replace {
		if _, err = namedExec(ctx, getExec(repo.db, exec), insertQ, row); err != nil {
			return submission.Submission{}, errors.Wrap(err, "inserting submission")
		}
		return sub, nil
	}

	err = inTx(ctx, repo.db, exec, func(tx core.DBExecutor) error {
		deleteQ := `DELETE FROM submissions WHERE assignment_id = $1 AND student_id = $2`
		if _, err := tx.ExecContext(ctx, deleteQ, sub.AssignmentID, sub.StudentID); err != nil {
			return errors.Wrap(err, "deleting previous submissions")
		}
		if _, err := namedExec(ctx, tx, insertQ, row); err != nil {
			return errors.Wrap(err, "inserting submission")
		}
		return nil
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return sub, nil
}

func (repo submissionRepository) SubmissionExists(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)`
	if err := getExec(repo.db, exec).GetContext(ctx, &exists, q, assignmentID, studentID); err != nil {
		return false, errors.Wrap(err, "checking submission existence")
	}
	return exists, nil
}

func (repo submissionRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]submission.Submission, error) {
	if _, err := uuid.Parse(assignmentID); err != nil {
		return []submission.Submission{}, nil
	}
	var rows []submissionRow
	q := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 ORDER BY created_at, id`
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := row.toSubmission()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (repo submissionRepository) CountByAssignment(ctx context.Context, ids []string, exec ...core.DBExecutor) (map[string]int, error) {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		AssignmentID string `db:"assignment_id"`
		Count        int    `db:"count"`
	}
	q := `SELECT assignment_id, COUNT(DISTINCT student_id) AS count
		FROM submissions WHERE assignment_id = ANY($1::uuid[]) GROUP BY assignment_id`
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "counting submissions")
	}
	for _, row := range rows {
		counts[row.AssignmentID] = row.Count
	}
	return counts, nil
}
