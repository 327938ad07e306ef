package main

import (
	"time"

	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/user"
)

// addAdmin creates an active admin account, or promotes an existing
// account to admin and resets its password.
func (cli *commandLine) addAdmin(email, pwd string) error {
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(email)
	switch err {
	case nil:
		usr.Role = user.RoleAdmin
		usr.IsActive = true
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.UpdatedAt = time.Now()
		_, err = cli.usrRepo.UpdateUser(usr)
		return errors.Wrap(err, "updating user")
	case user.ErrNotFound:
		usr = user.User{
			Name:      user.NameFromEmail(email),
			Email:     email,
			Role:      user.RoleAdmin,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(usr)
		return errors.Wrap(err, "creating user")
	default:
		return errors.Wrap(err, "getting user")
	}
}

// resetPassword sets a new password for an existing account.
func (cli *commandLine) resetPassword(email, pwd string) error {
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now()
	_, err = cli.usrRepo.UpdateUser(usr)
	return errors.Wrap(err, "updating user")
}
