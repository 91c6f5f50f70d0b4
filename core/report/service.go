package report

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
)

const DefaultClassifierTimeout = time.Minute

var (
	// errors
	ErrNoSubmissions = errors.New("no submissions to analyze")
)

// AnalysisError is returned when the classifier fails or its response cannot be used.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return "analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

type (
	// Classifier groups free-text answers into misconception clusters.
	// Implementations must not be given any student identity.
	Classifier interface {
		Classify(ctx context.Context, answers []string) ([]Cluster, error)
	}

	AssignmentGetter interface {
		GetForTeacher(ctx context.Context, id, teacherID string) (assignment.Assignment, error)
	}

	SubmissionQuerier interface {
		QueryByAssignment(ctx context.Context, assignmentID string) ([]submission.Submission, error)
	}

	Service struct {
		assignments AssignmentGetter
		submissions SubmissionQuerier
		classifier  Classifier
		logger      core.Logger
		timeout     time.Duration
		inflight    singleflight.Group
		nowFunc     func() time.Time
	}
)

func NewService(
	assignments AssignmentGetter,
	submissions SubmissionQuerier,
	classifier Classifier,
	logger core.Logger,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	return &Service{
		assignments: assignments,
		submissions: submissions,
		classifier:  classifier,
		logger:      logger,
		timeout:     timeout,
		nowFunc:     time.Now,
	}
}

// Generate builds the misconception report of an assignment owned by requester.
// Concurrent calls for the same assignment share one classifier invocation.
func (svc *Service) Generate(ctx context.Context, assignmentID string, requester auth.Claims) (Report, error) {
	if !requester.IsTeacher() {
		return Report{}, auth.ErrForbidden
	}
	a, err := svc.assignments.GetForTeacher(ctx, assignmentID, requester.UserID())
	if err != nil {
		return Report{}, err
	}

	ch := svc.inflight.DoChan(a.ID, func() (interface{}, error) {
		return svc.generate(a.ID)
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// generate runs one analysis, detached from any caller's context and bounded by the classifier timeout.
func (svc *Service) generate(assignmentID string) (Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), svc.timeout)
	defer cancel()

	r := &run{assignmentID: assignmentID, logger: svc.logger, state: stateIdle}

	r.transition(stateFetching)
	subs, err := svc.submissions.QueryByAssignment(ctx, assignmentID)
	if err != nil {
		r.fail(err)
		return Report{}, errors.Wrap(err, "fetching submissions")
	}
	if len(subs) == 0 {
		r.transition(stateRejected)
		return Report{}, ErrNoSubmissions
	}

	r.transition(stateExtracting)
	texts := answerTexts(subs)

	r.transition(stateClassifying)
	clusters, err := svc.classifier.Classify(ctx, texts)
	if err != nil {
		r.fail(err)
		return Report{}, &AnalysisError{Err: err}
	}
	if clusters == nil {
		clusters = []Cluster{}
	}

	r.transition(stateDone)
	return Report{
		AssignmentID: assignmentID,
		Clusters:     clusters,
		Stats: Stats{
			TotalSubmissions:   len(subs),
			AnswerCount:        len(texts),
			MisconceptionCount: len(clusters),
		},
		GeneratedAt: svc.nowFunc().UTC(),
	}, nil
}

// answerTexts flattens the answers in submission order then answer order, one string per pair.
func answerTexts(subs []submission.Submission) []string {
	texts := lo.FlatMap(subs, func(s submission.Submission, _ int) []string {
		return lo.Map(s.Answers, func(ans submission.Answer, _ int) string {
			return ans.Answer
		})
	})
	if texts == nil {
		texts = []string{}
	}
	return texts
}

type state string

const (
	stateIdle        state = "idle"
	stateFetching    state = "fetching"
	stateRejected    state = "rejected"
	stateExtracting  state = "extracting"
	stateClassifying state = "classifying"
	stateDone        state = "done"
	stateFailed      state = "failed"
)

type run struct {
	assignmentID string
	logger       core.Logger
	state        state
}

func (r *run) transition(to state) {
	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf("report %s: %s -> %s", r.assignmentID, r.state, to))
	}
	r.state = to
}

func (r *run) fail(err error) {
	from := r.state
	r.transition(stateFailed)
	if r.logger != nil {
		r.logger.Warn(fmt.Sprintf("report %s failed while %s", r.assignmentID, from), err)
	}
}
