package main

import (
	"context"
	"time"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	repo := cli.ds.Users()
	usr, err := repo.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = repo.Update(ctx, usr)
	return err
}
