package submission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// Policy decides what happens when a student submits the same assignment again.
type Policy string

const (
	PolicyMultiple Policy = "multiple" // every submit creates a new Submission
	PolicyLatest   Policy = "latest"   // a new submit replaces the previous ones
	PolicySingle   Policy = "single"   // only the first submit is accepted
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(core.CleanString(s, true /* lower */)); p {
	case "", PolicyMultiple:
		return PolicyMultiple, nil
	case PolicyLatest, PolicySingle:
		return p, nil
	default:
		return "", core.NewValidationError(nil, core.FieldError{Field: "policy", Error: "unknown submission policy: " + s})
	}
}

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Submission struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	TeacherID    string    `json:"teacherId"`
	Answers      []Answer  `json:"answers"`
	FileURL      string    `json:"fileUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

// Student is the resolved identity of a submission's author.
type Student struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// WithStudent is a Submission listed for the teacher. Student is nil when the author no longer resolves.
type WithStudent struct {
	Submission
	Student *Student `json:"student"`
}

// NewSubmission contains information needed to submit an assignment.
type NewSubmission struct {
	Answers []Answer `json:"answers" validate:"dive"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate, hasFile bool) error {
	for i := range ns.Answers {
		ns.Answers[i].Question = core.CleanString(ns.Answers[i].Question)
		ns.Answers[i].Answer = core.CleanString(ns.Answers[i].Answer)
	}
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if len(ns.Answers) == 0 && !hasFile {
		return core.NewValidationError(nil, core.FieldError{Field: "answers", Error: "this field is required"})
	}
	return nil
}
