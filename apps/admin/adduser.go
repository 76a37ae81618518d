package main

import (
	"context"
	"time"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, isAdmin bool) error {
	repo := cli.ds.Users()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := repo.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		if usr, err = repo.GetByUsernameOrEmail(ctx, email); err != nil && !core.IsNotFound(err) {
			return err
		}
	}
	creating := usr.ID == 0
	if creating {
		usr = user.User{Roles: []string{}, CreatedAt: now}
	}

	if name = core.CleanString(name); name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = uname
	}
	usr.Username = uname
	usr.Email = email
	usr.IsActive = true
	usr.UpdatedAt = now
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if creating {
		_, err = repo.Create(ctx, usr)
	} else {
		_, err = repo.Update(ctx, usr)
	}
	return err
}
