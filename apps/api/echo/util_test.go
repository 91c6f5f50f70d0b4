package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	echoapi "github.com/PARTHSHARMA4010/ClarityAI/apps/api/echo"
	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
	blobsvc "github.com/PARTHSHARMA4010/ClarityAI/services/blob"
	classifiersvc "github.com/PARTHSHARMA4010/ClarityAI/services/classifier"
	emailsvc "github.com/PARTHSHARMA4010/ClarityAI/services/email"
	logsvc "github.com/PARTHSHARMA4010/ClarityAI/services/logger"
	inmemdb "github.com/PARTHSHARMA4010/ClarityAI/storage/database/inmem"
)

const testPassword = "Sup3r-s3cret!"

type app struct {
	*echoapi.Server

	guard       *auth.Guard
	users       *user.Service
	assignments *assignment.Service
	submissions *submission.Service
	blobs       *blobsvc.MemoryStore
	mail        *emailsvc.ConsoleServiceMock
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, []string) ([]report.Cluster, error) {
	return nil, io.ErrUnexpectedEOF
}

func setup(t *testing.T, classifier ...report.Classifier) *app {
	t.Helper()

	conf := &core.Config{AppName: "ClarityAI", TestMode: true, SecretKey: "test-secret", FrontendBaseURL: "http://front"}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.MaxUploadSize = 1 << 20
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	var clf report.Classifier = classifiersvc.SampleClassifier{}
	if len(classifier) > 0 {
		clf = classifier[0]
	}

	a := &app{
		guard: auth.NewGuard(conf),
		blobs: blobsvc.NewMemoryStore("memory://test"),
		mail:  emailsvc.NewConsoleServiceMock(),
	}
	db := inmemdb.Open()
	subRepo := inmemdb.NewSubmissionRepository(db)
	a.users = user.NewService(inmemdb.NewUserRepository(db), a.mail, conf)
	a.assignments = assignment.NewService(inmemdb.NewAssignmentRepository(db), subRepo, a.users, a.blobs)
	a.submissions = submission.NewService(subRepo, a.assignments, a.users, a.blobs, a.mail, logger, submission.Options{})
	reports := report.NewService(a.assignments, a.submissions, clf, logger, time.Second)

	a.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Guard:         a.guard,
		UserSvc:       a.users,
		AssignmentSvc: a.assignments,
		SubmissionSvc: a.submissions,
		ReportSvc:     reports,
		Validate:      validate,
		Translator:    translator,
	})
	return a
}

func (a *app) createUser(t *testing.T, email, role string, teacherEmail ...string) user.User {
	t.Helper()
	nu := user.NewUser{Email: email, Password: testPassword, Role: role}
	if len(teacherEmail) > 0 {
		nu.TeacherEmail = teacherEmail[0]
	}
	usr, err := a.users.Register(context.Background(), nu)
	require.NoError(t, err)
	return usr
}

func (a *app) createAssignment(t *testing.T, teacher user.User, title string) assignment.Assignment {
	t.Helper()
	time.Sleep(time.Millisecond) // distinct creation times
	asg, err := a.assignments.Create(context.Background(), a.guard.NewClaims(teacher), assignment.NewAssignment{Title: title}, nil)
	require.NoError(t, err)
	return asg
}

func (a *app) submit(t *testing.T, student user.User, asg assignment.Assignment, answers ...string) {
	t.Helper()
	ns := submission.NewSubmission{}
	for i, ans := range answers {
		ns.Answers = append(ns.Answers, submission.Answer{Question: string(rune('A' + i)), Answer: ans})
	}
	_, err := a.submissions.Submit(context.Background(), a.guard.NewClaims(student), asg.ID, ns, nil)
	require.NoError(t, err)
}

func getToken(t *testing.T, a *app, usr user.User) string {
	token, err := a.guard.IssueToken(usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

type formFile struct {
	field, name string
	content     []byte
}

func newMultipartRequest(t *testing.T, path, token string, fields map[string]string, files ...formFile) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func detail(t *testing.T, d interface{}) []byte {
	return marshalObj(t, map[string]interface{}{"detail": d})
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
