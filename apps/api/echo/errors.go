package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

// statusCode maps the domain errors a client can cause to their HTTP status.
func statusCode(err error) (int, bool) {
	switch err {
	case auth.ErrUnauthenticated:
		return http.StatusUnauthorized, true
	case auth.ErrForbidden:
		return http.StatusForbidden, true
	case user.ErrNotFound, assignment.ErrNotFound:
		return http.StatusNotFound, true
	case user.ErrInvalidCredentials, report.ErrNoSubmissions:
		return http.StatusBadRequest, true
	}
	return 0, false
}

type errorResponse struct {
	Detail interface{} `json:"detail"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		if c, ok := statusCode(origErr); ok {
			code = c
			message = origErr.Error()
		} else {
			switch cErr := origErr.(type) {
			case *echo.HTTPError:
				if herr, ok := cErr.Internal.(*echo.HTTPError); ok {
					cErr = herr
				}
				code = cErr.Code
				message = cErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(cErr))
				for _, vErr := range cErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if len(cErr.Fields) > 0 {
					fldErrs := make(map[string]string, len(cErr.Fields))
					for _, fErr := range cErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = cErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				if _, ok := cErr.(*report.AnalysisError); ok {
					msg = "Failed to generate report"
				}
				message = msg

				if claims, clErr := getContextClaims(ctx); clErr == nil {
					logger.Error(msg, errors.Wrap(err, msg), claims)
				} else {
					logger.Error(msg, errors.Wrap(err, msg))
				}

				if ctx.Echo().Debug {
					message = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, errorResponse{Detail: message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
