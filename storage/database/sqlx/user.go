package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/user"
)

type userRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

type userRepository struct {
	*table[user.User, userRow]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{&table[user.User, userRow]{
		db:       db,
		schema:   user.Schema,
		resource: "user",
		notFound: user.ErrNotFound,
		id:       func(u user.User) int64 { return u.ID },
		toRow:    toUserRow,
		fromRow:  fromUserRow,
	}}
}

func toUserRow(usr user.User) userRow {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     nullString(usr.Username),
		Email:        nullString(usr.Email),
		IsActive:     usr.IsActive,
		Roles:        roles,
		PasswordHash: null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    nullTime(usr.LastLogin),
	}
}

func fromUserRow(r userRow) user.User {
	roles := []string(r.Roles)
	if roles == nil {
		roles = []string{}
	}
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        roles,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	ids := make([]int64, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}

	check := func(col, val string, errExists error) error {
		if val == "" {
			return nil
		}
		pred := sq.And{sq.Eq{col: val}}
		if len(ids) > 0 {
			pred = append(pred, sq.NotEq{"id": ids})
		}
		query, args, err := psql.Select("1").From(repo.schema.Table).Where(pred).Limit(1).ToSql()
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		var found int
		if err = repo.db.GetContext(ctx, &found, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return errors.Wrap(err, "checking user uniqueness")
		}
		return errExists
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getWhere(ctx, sq.Eq{"username": username})
}

func (repo *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getWhere(ctx, sq.Eq{"email": email})
}

func (repo *userRepository) GetByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getWhere(ctx, sq.Or{sq.Eq{"username": username}, sq.Eq{"email": username}})
}
