package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var AllRoles = []string{RoleTeacher, RoleStudent}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TeacherID    string    `json:"teacherId,omitempty"` // students only
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=teacher student"`
	TeacherEmail string `json:"teacher_email" validate:"omitempty,email"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.TeacherEmail = core.CleanString(nu.TeacherEmail, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if nu.TeacherEmail != "" && nu.Role != RoleStudent {
		return core.NewValidationError(nil, core.FieldError{Field: "teacher_email", Error: "only students can have a teacher"})
	}
	return svc.checkUniqueness(nu.Email)
}

// Credentials are used to log a User in.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}
