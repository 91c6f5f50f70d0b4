package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		QueryUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) ([]User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkUniqueness(email string) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err)
		}
		return err
	}
	return nil
}

// Register creates a new User. A student may name their teacher by email; the teacher must exist.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if nu.TeacherEmail != "" {
		teacher, err := svc.getTeacher(ctx, nu.TeacherEmail)
		if err != nil {
			return User{}, err
		}
		usr.TeacherID = teacher.ID
	}

	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(err)
		}
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting lastLogin")
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetByIDs returns the found users keyed by ID. Unknown IDs are simply absent.
func (svc *Service) GetByIDs(ctx context.Context, ids []string) (map[string]User, error) {
	users, err := svc.repo.QueryUsersByID(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying users by ID")
	}
	found := make(map[string]User, len(users))
	for _, u := range users {
		found[u.ID] = u
	}
	return found, nil
}

// AssignTeacher puts the student on the teacher's roster.
func (svc *Service) AssignTeacher(ctx context.Context, studentEmail, teacherEmail string) (User, error) {
	student, err := svc.GetByEmail(ctx, studentEmail)
	if err != nil {
		return User{}, errors.Wrap(err, "finding student")
	}
	if !student.IsStudent() {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "student", Error: "user is not a student"})
	}
	teacher, err := svc.getTeacher(ctx, teacherEmail)
	if err != nil {
		return User{}, err
	}

	student.TeacherID = teacher.ID
	student.UpdatedAt = time.Now().UTC()
	student, err = svc.repo.UpdateUser(ctx, student)
	return student, errors.Wrap(err, "assigning teacher")
}

// ResetPassword sets a new password for the user with given email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return errors.Wrap(err, "finding user")
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

func (svc *Service) getTeacher(ctx context.Context, email string) (User, error) {
	teacher, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewValidationError(nil, core.FieldError{Field: "teacher_email", Error: "teacher not found"})
		}
		return User{}, errors.Wrap(err, "finding teacher")
	}
	if !teacher.IsTeacher() {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "teacher_email", Error: "user is not a teacher"})
	}
	return teacher, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Welcome!",
		TemplateName: "welcome",
		TemplateData: map[string]string{
			"Email":    usr.Email,
			"Role":     usr.Role,
			"LoginURL": svc.conf.FrontendBaseURL + "/login",
		},
	})
}
