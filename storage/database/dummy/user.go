package dummydb

import (
	"context"

	"github.com/trezcool/diario/core/user"
)

type userRepository struct {
	*table[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db.users}
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.RLock()
	defer repo.RUnlock()

	excluded := make(map[int64]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	for _, usr := range repo.all() {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) getBy(pred func(user.User) bool) (user.User, error) {
	if found := repo.find(pred); len(found) > 0 {
		return found[0], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetByUsername(_ context.Context, username string) (user.User, error) {
	return repo.getBy(func(u user.User) bool { return u.Username == username })
}

func (repo *userRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	return repo.getBy(func(u user.User) bool { return u.Email == email })
}

func (repo *userRepository) GetByUsernameOrEmail(_ context.Context, username string) (user.User, error) {
	return repo.getBy(func(u user.User) bool { return u.Username == username || u.Email == username })
}
