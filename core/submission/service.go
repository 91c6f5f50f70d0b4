package submission

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

var (
	// errors
	ErrAlreadySubmitted = errors.New("assignment already submitted")
)

type (
	Repository interface {
		// CreateSubmission inserts sub. With replace, the student's previous submissions
		// for the same assignment are deleted in the same transaction.
		CreateSubmission(ctx context.Context, sub Submission, replace bool, exec ...core.DBExecutor) (Submission, error)
		SubmissionExists(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (bool, error)
		// QuerySubmissionsByAssignment returns the assignment's submissions, oldest first.
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]Submission, error)
		// CountByAssignment counts distinct students per assignment.
		CountByAssignment(ctx context.Context, ids []string, exec ...core.DBExecutor) (map[string]int, error)
	}

	AssignmentGetter interface {
		Get(ctx context.Context, id string) (assignment.Assignment, error)
	}

	UserResolver interface {
		GetByIDs(ctx context.Context, ids []string) (map[string]user.User, error)
	}

	Options struct {
		Policy          Policy
		FrontendBaseURL string
	}

	Service struct {
		repo        Repository
		assignments AssignmentGetter
		users       UserResolver
		blobs       core.BlobStore
		mailSvc     core.EmailService
		logger      core.Logger
		opts        Options
	}
)

func NewService(
	repo Repository,
	assignments AssignmentGetter,
	users UserResolver,
	blobs core.BlobStore,
	mailSvc core.EmailService,
	logger core.Logger,
	opts Options,
) *Service {
	if opts.Policy == "" {
		opts.Policy = PolicyMultiple
	}
	return &Service{
		repo:        repo,
		assignments: assignments,
		users:       users,
		blobs:       blobs,
		mailSvc:     mailSvc,
		logger:      logger,
		opts:        opts,
	}
}

func (svc *Service) Policy() Policy { return svc.opts.Policy }

// Submit records the student's answers for the assignment.
// The submission's teacher is always copied from the assignment, never taken from the caller.
func (svc *Service) Submit(ctx context.Context, student auth.Claims, assignmentID string, ns NewSubmission, file *core.Upload) (Submission, error) {
	if !student.IsStudent() {
		return Submission{}, auth.ErrForbidden
	}

	a, err := svc.assignments.Get(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}

	if svc.opts.Policy == PolicySingle {
		exists, err := svc.repo.SubmissionExists(ctx, a.ID, student.UserID())
		if err != nil {
			return Submission{}, errors.Wrap(err, "checking previous submissions")
		}
		if exists {
			return Submission{}, core.NewValidationError(ErrAlreadySubmitted)
		}
	}

	sub := Submission{
		AssignmentID: a.ID,
		StudentID:    student.UserID(),
		TeacherID:    a.TeacherID,
		Answers:      ns.Answers,
		CreatedAt:    time.Now().UTC(),
	}
	if sub.Answers == nil {
		sub.Answers = []Answer{}
	}

	if file != nil {
		url, err := svc.blobs.Put(ctx, core.BlobKey("submissions/"+a.ID, file.Filename), *file)
		if err != nil {
			return Submission{}, errors.Wrap(err, "uploading submission file")
		}
		sub.FileURL = url
	}

	sub, err = svc.repo.CreateSubmission(ctx, sub, svc.opts.Policy == PolicyLatest)
	if err != nil {
		return Submission{}, errors.Wrap(err, "creating submission")
	}

	svc.notifyTeacher(ctx, a, sub)
	return sub, nil
}

// ListForAssignment returns the assignment's submissions with their author resolved.
// An author that cannot be resolved is listed as a nil Student.
func (svc *Service) ListForAssignment(ctx context.Context, assignmentID string) ([]WithStudent, error) {
	subs, err := svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	if len(subs) == 0 {
		return []WithStudent{}, nil
	}

	studentIDs := lo.Uniq(lo.Map(subs, func(s Submission, _ int) string { return s.StudentID }))
	students, err := svc.users.GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "resolving students")
	}

	return lo.Map(subs, func(s Submission, _ int) WithStudent {
		ws := WithStudent{Submission: s}
		if usr, ok := students[s.StudentID]; ok {
			ws.Student = &Student{ID: usr.ID, Email: usr.Email}
		}
		return ws
	}), nil
}

// QueryByAssignment returns the raw submissions of an assignment, oldest first.
func (svc *Service) QueryByAssignment(ctx context.Context, assignmentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
}

// CountForAssignment counts the distinct students who submitted the assignment.
func (svc *Service) CountForAssignment(ctx context.Context, assignmentID string) (int, error) {
	counts, err := svc.repo.CountByAssignment(ctx, []string{assignmentID})
	if err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return counts[assignmentID], nil
}

func (svc *Service) notifyTeacher(ctx context.Context, a assignment.Assignment, sub Submission) {
	if svc.mailSvc == nil {
		return
	}
	users, err := svc.users.GetByIDs(ctx, []string{a.TeacherID, sub.StudentID})
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notifying teacher of submission %s: %v", sub.ID, err), err)
		return
	}
	teacher, ok := users[a.TeacherID]
	if !ok {
		return
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: teacher.Email}},
		Subject:      "New submission: " + a.Title,
		TemplateName: "new_submission",
		TemplateData: map[string]string{
			"TeacherEmail":    teacher.Email,
			"StudentEmail":    users[sub.StudentID].Email,
			"AssignmentTitle": a.Title,
			"SubmissionsURL":  fmt.Sprintf("%s/assignment/%s/submissions", svc.opts.FrontendBaseURL, a.ID),
		},
	}
	if student, ok := users[sub.StudentID]; ok {
		msg.ReplyTo = &mail.Address{Address: student.Email}
	}
	svc.mailSvc.SendMessages(msg)
}
