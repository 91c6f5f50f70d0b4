package echoapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
)

func isMultipart(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// bindUpload returns the file sent under field in a multipart request, or nil if there is none.
// The caller must closeUpload it.
func bindUpload(ctx echo.Context, field string) (*core.Upload, error) {
	if !isMultipart(ctx) {
		return nil, nil
	}
	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading form file %q", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening form file %q", field)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return &core.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Content:     f,
	}, nil
}

func closeUpload(up *core.Upload) {
	if up == nil {
		return
	}
	if c, ok := up.Content.(io.Closer); ok {
		_ = c.Close()
	}
}

// bindSubmission reads the answers either from a JSON body or, for multipart requests,
// from the `answers` form field holding a JSON array.
func bindSubmission(ctx echo.Context, ns *submission.NewSubmission) error {
	if !isMultipart(ctx) {
		if err := ctx.Bind(ns); err != nil {
			return errors.Wrap(err, "binding to NewSubmission")
		}
		return nil
	}

	raw := strings.TrimSpace(ctx.FormValue("answers"))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &ns.Answers); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "answers", Error: "answers must be a JSON array"})
	}
	return nil
}
