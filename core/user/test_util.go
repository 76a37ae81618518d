package user

import (
	"context"

	"github.com/trezcool/diario/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service sending password reset emails synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) Service {
	_ = NewService(repo, mailSvc, logger, conf)
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
			logger:  logger,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeToken exposes password reset tokens to tests.
func MakeToken(usr User) string { return makeToken(usr) }
