package main

import (
	"fmt"

	"github.com/sarvodaya/feedesk/core/user"
)

func (cli *commandLine) login(uname, pwd string) error {
	usr, err := cli.app.Users.Login(uname, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", describe(usr))
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.app.Users.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

func (cli *commandLine) whoami() error {
	usr, ok := cli.app.Users.Current()
	if !ok {
		return user.ErrNoSession
	}
	fmt.Fprintln(cli.out, describe(usr))
	return nil
}

func (cli *commandLine) changePassword(oldPwd, newPwd string) error {
	data := user.ChangePassword{OldPassword: oldPwd, NewPassword: newPwd}
	if err := data.Validate(); err != nil {
		return err
	}
	if err := cli.app.Users.ChangePassword(data.OldPassword, data.NewPassword); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Password changed")
	return nil
}

// describe returns eg. "class4b (teacher of 4-B)".
func describe(usr user.User) string {
	if usr.IsTeacher() {
		return fmt.Sprintf("%s (teacher of %s-%s)", usr.Username, usr.Class, usr.Division)
	}
	return fmt.Sprintf("%s (%s)", usr.Username, usr.Role)
}
