package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"fileUrl,omitempty"`
	TeacherID   string    `json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

// WithCount is an Assignment listed for its teacher.
type WithCount struct {
	Assignment
	SubmissionCount int `json:"submissionCount"`
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string `json:"title" form:"title" validate:"notblank,max=200"`
	Description string `json:"description" form:"description" validate:"max=10000"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}
