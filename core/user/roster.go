package user

import (
	"context"

	"github.com/pkg/errors"
)

// ResolveTeacherFor returns the ID of the teacher whose assignments the student sees.
// A student without a teacher (or an unknown student) resolves to "" which is not an error.
// The stored record is used rather than the token so a re-assignment applies without a new login.
func (svc *Service) ResolveTeacherFor(ctx context.Context, studentID string) (string, error) {
	if studentID == "" {
		return "", nil
	}
	usr, err := svc.repo.GetUserByID(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return "", nil
		}
		return "", errors.Wrap(err, "finding student")
	}
	if !usr.IsStudent() {
		return "", nil
	}
	return usr.TeacherID, nil
}
