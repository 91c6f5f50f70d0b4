package submission_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
	blobsvc "github.com/PARTHSHARMA4010/ClarityAI/services/blob"
	emailsvc "github.com/PARTHSHARMA4010/ClarityAI/services/email"
	logsvc "github.com/PARTHSHARMA4010/ClarityAI/services/logger"
	inmemdb "github.com/PARTHSHARMA4010/ClarityAI/storage/database/inmem"
)

type failingBlobStore struct{}

func (failingBlobStore) Put(context.Context, string, core.Upload) (string, error) {
	return "", errors.New("bucket unreachable")
}

type env struct {
	users       *user.Service
	assignments *assignment.Service
	submissions *submission.Service
	blobs       *blobsvc.MemoryStore
	mail        *emailsvc.ConsoleServiceMock

	teacher user.User
	student user.User
	hw1     assignment.Assignment
}

func setup(t *testing.T, policy submission.Policy, blobs ...core.BlobStore) *env {
	t.Helper()
	conf := &core.Config{AppName: "ClarityAI", TestMode: true, FrontendBaseURL: "http://front"}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	e := &env{
		blobs: blobsvc.NewMemoryStore("memory://test"),
		mail:  emailsvc.NewConsoleServiceMock(),
	}
	var store core.BlobStore = e.blobs
	if len(blobs) > 0 {
		store = blobs[0]
	}

	db := inmemdb.Open()
	subRepo := inmemdb.NewSubmissionRepository(db)
	e.users = user.NewService(inmemdb.NewUserRepository(db), nil, conf)
	e.assignments = assignment.NewService(inmemdb.NewAssignmentRepository(db), subRepo, e.users, e.blobs)
	e.submissions = submission.NewService(subRepo, e.assignments, e.users, store, e.mail, logger, submission.Options{
		Policy:          policy,
		FrontendBaseURL: conf.FrontendBaseURL,
	})

	ctx := context.Background()
	var err error
	e.teacher, err = e.users.Register(ctx, user.NewUser{Email: "teacher@test.io", Password: "pwd-teacher", Role: user.RoleTeacher})
	require.NoError(t, err)
	e.student, err = e.users.Register(ctx, user.NewUser{Email: "student@test.io", Password: "pwd-student", Role: user.RoleStudent, TeacherEmail: "teacher@test.io"})
	require.NoError(t, err)
	e.hw1, err = e.assignments.Create(ctx, claimsOf(e.teacher), assignment.NewAssignment{Title: "HW1"}, nil)
	require.NoError(t, err)
	return e
}

func claimsOf(usr user.User) auth.Claims {
	return auth.Claims{User: auth.Identity{ID: usr.ID, Role: usr.Role, TeacherID: usr.TeacherID}}
}

func answers(ans ...string) submission.NewSubmission {
	ns := submission.NewSubmission{}
	for i, a := range ans {
		ns.Answers = append(ns.Answers, submission.Answer{Question: fmt.Sprintf("Q%d", i+1), Answer: a})
	}
	return ns
}

func TestService_Submit(t *testing.T) {
	e := setup(t, submission.PolicyMultiple)
	ctx := context.Background()

	// a forged teacherId on the claims is ignored
	claims := claimsOf(e.student)
	claims.User.TeacherID = "someone-else"

	sub, err := e.submissions.Submit(ctx, claims, e.hw1.ID, answers("42"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, e.hw1.ID, sub.AssignmentID)
	assert.Equal(t, e.student.ID, sub.StudentID)
	assert.Equal(t, e.teacher.ID, sub.TeacherID)
	assert.Equal(t, []submission.Answer{{Question: "Q1", Answer: "42"}}, sub.Answers)

	count, err := e.submissions.CountForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// the teacher is notified
	sent := e.mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "teacher@test.io", sent[0].To[0].Address)
	assert.Equal(t, "New submission: HW1", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "student@test.io")
	assert.Contains(t, sent[0].TextContent, "http://front/assignment/"+e.hw1.ID+"/submissions")
}

func TestService_Submit_Errors(t *testing.T) {
	e := setup(t, submission.PolicyMultiple)
	ctx := context.Background()

	_, err := e.submissions.Submit(ctx, claimsOf(e.student), "does-not-exist", answers("42"), nil)
	assert.Equal(t, assignment.ErrNotFound, errors.Cause(err))

	_, err = e.submissions.Submit(ctx, claimsOf(e.teacher), e.hw1.ID, answers("42"), nil)
	assert.Equal(t, auth.ErrForbidden, err)

	// nothing was written
	subs, err := e.submissions.QueryByAssignment(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, subs)
	count, err := e.submissions.CountForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, e.mail.SentMessages())
}

func TestService_Submit_Policies(t *testing.T) {
	tests := []struct {
		policy      submission.Policy
		wantErr     error
		wantRecords []string // answers of the stored submissions, in order
	}{
		{policy: submission.PolicyMultiple, wantRecords: []string{"first", "second"}},
		{policy: submission.PolicyLatest, wantRecords: []string{"second"}},
		{policy: submission.PolicySingle, wantErr: submission.ErrAlreadySubmitted, wantRecords: []string{"first"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			e := setup(t, tt.policy)
			ctx := context.Background()
			assert.Equal(t, tt.policy, e.submissions.Policy())

			_, err := e.submissions.Submit(ctx, claimsOf(e.student), e.hw1.ID, answers("first"), nil)
			require.NoError(t, err)
			_, err = e.submissions.Submit(ctx, claimsOf(e.student), e.hw1.ID, answers("second"), nil)
			if tt.wantErr != nil {
				vErr, ok := errors.Cause(err).(*core.ValidationError)
				require.True(t, ok, "expected a validation error, got %v", err)
				assert.Equal(t, tt.wantErr, vErr.Err)
			} else {
				require.NoError(t, err)
			}

			subs, err := e.submissions.QueryByAssignment(ctx, e.hw1.ID)
			require.NoError(t, err)
			got := make([]string, 0, len(subs))
			for _, s := range subs {
				got = append(got, s.Answers[0].Answer)
			}
			assert.Equal(t, tt.wantRecords, got)

			// one student, whatever the number of records
			count, err := e.submissions.CountForAssignment(ctx, e.hw1.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestService_Submit_File(t *testing.T) {
	e := setup(t, submission.PolicyMultiple)
	ctx := context.Background()

	sub, err := e.submissions.Submit(ctx, claimsOf(e.student), e.hw1.ID, submission.NewSubmission{}, &core.Upload{
		Filename:    "my answers.txt",
		ContentType: "text/plain",
		Content:     strings.NewReader("42"),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sub.FileURL, "memory://test/submissions/"+e.hw1.ID+"/"))
	assert.True(t, strings.HasSuffix(sub.FileURL, "-my_answers.txt"))
	assert.Equal(t, []submission.Answer{}, sub.Answers)

	obj, ok := e.blobs.Get(strings.TrimPrefix(sub.FileURL, "memory://test/"))
	require.True(t, ok)
	assert.Equal(t, []byte("42"), obj.Data)
}

func TestService_Submit_UploadFailure(t *testing.T) {
	e := setup(t, submission.PolicyMultiple, failingBlobStore{})
	ctx := context.Background()

	_, err := e.submissions.Submit(ctx, claimsOf(e.student), e.hw1.ID, answers("42"), &core.Upload{
		Filename: "a.txt",
		Content:  strings.NewReader("42"),
	})
	require.Error(t, err)

	count, err := e.submissions.CountForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_ListForAssignment(t *testing.T) {
	e := setup(t, submission.PolicyMultiple)
	ctx := context.Background()

	list, err := e.submissions.ListForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = e.submissions.Submit(ctx, claimsOf(e.student), e.hw1.ID, answers("42"), nil)
	require.NoError(t, err)
	ghost := auth.Claims{User: auth.Identity{ID: "ghost", Role: user.RoleStudent}}
	_, err = e.submissions.Submit(ctx, ghost, e.hw1.ID, answers("43"), nil)
	require.NoError(t, err)

	list, err = e.submissions.ListForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NotNil(t, list[0].Student)
	assert.Equal(t, submission.Student{ID: e.student.ID, Email: "student@test.io"}, *list[0].Student)
	assert.Equal(t, "ghost", list[1].StudentID)
	assert.Nil(t, list[1].Student, "an unknown student must not fail the listing")
}

func TestService_CountMatchesListing(t *testing.T) {
	e := setup(t, submission.PolicyMultiple)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := auth.Claims{User: auth.Identity{ID: fmt.Sprintf("student-%d", i), Role: user.RoleStudent}}
			_, err := e.submissions.Submit(ctx, s, e.hw1.ID, answers("42"), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := e.submissions.CountForAssignment(ctx, e.hw1.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, count)

	list, err := e.assignments.ListForTeacher(ctx, e.teacher.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, count, list[0].SubmissionCount)
}
