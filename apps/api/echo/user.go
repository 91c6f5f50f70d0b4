package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

type userApi struct {
	svc      *user.Service
	guard    *auth.Guard
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, svc *user.Service, guard *auth.Guard, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		guard:    guard,
		validate: validate,
	}

	// TODO: rate limit `/login` once the access attempts are recorded
	g.POST("/register", api.register)
	g.POST("/login", api.login)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "User registered successfully!"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.guard.IssueToken(usr)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}

type (
	LoginResponse struct {
		AccessToken string `json:"access_token"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)
