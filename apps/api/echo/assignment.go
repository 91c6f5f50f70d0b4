package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

type assignmentApi struct {
	assignments *assignment.Service
	submissions *submission.Service
	reports     *report.Service
	validate    *validator.Validate
}

func registerAssignmentAPI(
	g *echo.Group,
	guard *auth.Guard,
	assignments *assignment.Service,
	submissions *submission.Service,
	reports *report.Service,
	validate *validator.Validate,
) {
	api := assignmentApi{
		assignments: assignments,
		submissions: submissions,
		reports:     reports,
		validate:    validate,
	}

	teacherOnly := authMiddleware(guard, user.RoleTeacher)
	studentOnly := authMiddleware(guard, user.RoleStudent)

	ag := g.Group("/assignments")
	ag.POST("", api.create, teacherOnly)
	ag.GET("", api.listForTeacher, teacherOnly)
	ag.GET("/student", api.listForStudent, studentOnly)

	// detail endpoints
	ag.POST("/:id/submit", api.submit, studentOnly)
	ag.GET("/:id/submissions", api.listSubmissions, teacherOnly)
	ag.GET("/:id/analyze", api.analyze, teacherOnly)
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	file, err := bindUpload(ctx, "assignmentFile")
	if err != nil {
		return err
	}
	defer closeUpload(file)

	a, err := api.assignments.Create(ctx.Request().Context(), claims, data, file)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) listForTeacher(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	list, err := api.assignments.ListForTeacher(ctx.Request().Context(), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "listing teacher assignments")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *assignmentApi) listForStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	list, err := api.assignments.ListForStudent(ctx.Request().Context(), claims)
	if err != nil {
		return errors.Wrap(err, "listing student assignments")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	if _, err = api.assignments.Get(reqCtx, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding assignment")
	}

	var data submission.NewSubmission
	if err = bindSubmission(ctx, &data); err != nil {
		return err
	}
	file, err := bindUpload(ctx, "submissionFile")
	if err != nil {
		return err
	}
	defer closeUpload(file)

	if err = data.Validate(api.validate, file != nil); err != nil {
		return err
	}

	if _, err = api.submissions.Submit(reqCtx, claims, ctx.Param("id"), data, file); err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "Assignment submitted successfully!"})
}

func (api *assignmentApi) listSubmissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	a, err := api.assignments.GetForTeacher(reqCtx, ctx.Param("id"), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "finding assignment")
	}
	list, err := api.submissions.ListForAssignment(reqCtx, a.ID)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}

	resp := make([]SubmissionResponse, 0, len(list))
	if err = copier.Copy(&resp, &list); err != nil {
		return errors.Wrap(err, "copying submissions")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *assignmentApi) analyze(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rep, err := api.reports.Generate(ctx.Request().Context(), ctx.Param("id"), claims)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

// SubmissionResponse is a Submission as listed for its teacher.
type SubmissionResponse struct {
	ID           string              `json:"id"`
	AssignmentID string              `json:"assignmentId"`
	Answers      []submission.Answer `json:"answers"`
	FileURL      string              `json:"fileUrl,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	Student      *submission.Student `json:"student"`
}
