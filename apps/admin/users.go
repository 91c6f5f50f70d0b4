package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations need a postgres database")
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

// addUser registers a user, applying the same validation as the API.
func (cli *commandLine) addUser(email, pwd, role, teacherEmail string) error {
	nu := user.NewUser{Email: email, Password: pwd, Role: role, TeacherEmail: teacherEmail}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Register(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s created (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.usrSvc.ResetPassword(context.Background(), email, pwd)
}

func (cli *commandLine) assignTeacher(studentEmail, teacherEmail string) error {
	_, err := cli.usrSvc.AssignTeacher(context.Background(), studentEmail, teacherEmail)
	return err
}
