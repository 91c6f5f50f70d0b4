package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		// QueryAssignmentsByTeacher returns the teacher's assignments, newest first.
		QueryAssignmentsByTeacher(ctx context.Context, teacherID string, exec ...core.DBExecutor) ([]Assignment, error)
	}

	// SubmissionCounter counts the distinct students who submitted each assignment.
	SubmissionCounter interface {
		CountByAssignment(ctx context.Context, ids []string, exec ...core.DBExecutor) (map[string]int, error)
	}

	// Roster maps a student to the teacher whose assignments they see ("" if none).
	Roster interface {
		ResolveTeacherFor(ctx context.Context, studentID string) (string, error)
	}

	Service struct {
		repo    Repository
		counter SubmissionCounter
		roster  Roster
		blobs   core.BlobStore
	}
)

func NewService(repo Repository, counter SubmissionCounter, roster Roster, blobs core.BlobStore) *Service {
	return &Service{
		repo:    repo,
		counter: counter,
		roster:  roster,
		blobs:   blobs,
	}
}

// Create persists a new Assignment owned by teacher.
// The optional file is uploaded first: an upload failure means nothing is written.
func (svc *Service) Create(ctx context.Context, teacher auth.Claims, na NewAssignment, file *core.Upload) (Assignment, error) {
	if !teacher.IsTeacher() {
		return Assignment{}, auth.ErrForbidden
	}

	a := Assignment{
		Title:       na.Title,
		Description: na.Description,
		TeacherID:   teacher.UserID(),
		CreatedAt:   time.Now().UTC(),
	}

	if file != nil {
		url, err := svc.blobs.Put(ctx, core.BlobKey("assignments", file.Filename), *file)
		if err != nil {
			return Assignment{}, errors.Wrap(err, "uploading assignment file")
		}
		a.FileURL = url
	}

	a, err := svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

// GetForTeacher returns the assignment only if it is owned by teacherID; ErrNotFound otherwise.
func (svc *Service) GetForTeacher(ctx context.Context, id, teacherID string) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.TeacherID != teacherID {
		return Assignment{}, ErrNotFound
	}
	return a, nil
}

// ListForTeacher returns the teacher's assignments with their submission count.
func (svc *Service) ListForTeacher(ctx context.Context, teacherID string) ([]WithCount, error) {
	assignments, err := svc.repo.QueryAssignmentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if len(assignments) == 0 {
		return []WithCount{}, nil
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}
	counts, err := svc.counter.CountByAssignment(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "counting submissions")
	}

	list := make([]WithCount, 0, len(assignments))
	for _, a := range assignments {
		list = append(list, WithCount{Assignment: a, SubmissionCount: counts[a.ID]})
	}
	return list, nil
}

// ListForStudent returns the assignments of the student's teacher.
// A student with no teacher gets an empty list.
func (svc *Service) ListForStudent(ctx context.Context, student auth.Claims) ([]Assignment, error) {
	if !student.IsStudent() {
		return nil, auth.ErrForbidden
	}
	teacherID, err := svc.roster.ResolveTeacherFor(ctx, student.UserID())
	if err != nil {
		return nil, errors.Wrap(err, "resolving teacher")
	}
	if teacherID == "" {
		return []Assignment{}, nil
	}

	assignments, err := svc.repo.QueryAssignmentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	return assignments, nil
}
