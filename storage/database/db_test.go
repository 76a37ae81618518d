package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/assets"
	"github.com/trezcool/diario/core"
)

func testConfig() *core.Config {
	return &core.Config{Database: core.DatabaseConfig{
		Driver:        "postgres",
		Host:          "db",
		Port:          "5432",
		Name:          "diario",
		User:          "app",
		Password:      "p@ss word",
		AdminUser:     "postgres",
		AdminPassword: "root",
		DisableTLS:    true,
	}}
}

func TestDSN(t *testing.T) {
	conf := testConfig()

	u, err := url.Parse(dsn(conf.Database.Name, false, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/diario", u.Path)
	assert.Equal(t, "app", u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pwd)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "utc", u.Query().Get("timezone"))

	u, err = url.Parse(dsn("postgres", true, conf))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.User.Username())
	assert.Equal(t, "/postgres", u.Path)

	conf.Database.DisableTLS = false
	conf.Database.AdminUser = ""
	u, err = url.Parse(dsn("postgres", true, conf))
	require.NoError(t, err)
	assert.Equal(t, "app", u.User.Username())
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestMigrate(t *testing.T) {
	defer func() { gooseRunFunc = gooseRunFuncOrig }()

	var gotCmd, gotDir string
	var gotArgs []string
	gooseRunFunc = func(_ context.Context, command string, _ *sql.DB, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		return nil
	}
	require.NoError(t, Migrate(context.Background(), nil, "up-to", "3"))
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, assets.MigrationsDir, gotDir)
	assert.Equal(t, []string{"3"}, gotArgs)

	gooseRunFunc = func(context.Context, string, *sql.DB, string, ...string) error { return errors.New("no such command") }
	err := Migrate(context.Background(), nil, "lol")
	assert.ErrorContains(t, err, "migrating database (lol)")
}

var gooseRunFuncOrig = gooseRunFunc

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(assets.FS, assets.MigrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		data, err := fs.ReadFile(assets.FS, f)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "-- +goose Up"), f)
		assert.True(t, strings.Contains(string(data), "-- +goose Down"), f)
	}
}
