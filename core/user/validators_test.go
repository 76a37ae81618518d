package user

import (
	"testing"
	"testing/fstest"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newValidate() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestPasswordPolicy(t *testing.T) {
	LoadCommonPasswords(fstest.MapFS{"pwds.txt": {Data: []byte("P@ssw0rd\nqwerty\n")}}, "pwds.txt", nopLogger{})
	validate := newValidate()

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Abcd 1234!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "common", pwd: "p@SSw0rd", wantTag: pwdNoCommonTag},
		{name: "not complex", pwd: "abcdefgh1", wantTag: pwdComplexityTag},
		{name: "similar to username", pwd: "Jdoe2024!", wantTag: pwdAttrSimTag},
		{name: "valid", pwd: "Tr0ub4dor&3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := NewUser{Name: "Jane", Username: "jdoe2024", Password: tt.pwd, PasswordConfirm: tt.pwd}
			err := validate.Struct(nu)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			require.Len(t, vErrs, 1)
			assert.Equal(t, "password", vErrs[0].Field())
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}

func TestUsernameOrEmailRequired(t *testing.T) {
	validate := newValidate()
	err := validate.Struct(NewUser{Name: "Jane", Password: "Tr0ub4dor&3", PasswordConfirm: "Tr0ub4dor&3"})

	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	fields := make([]string, 0, len(vErrs))
	for _, e := range vErrs {
		fields = append(fields, e.Field())
	}
	assert.ElementsMatch(t, []string{"username", "email"}, fields)
}

func TestAllRolesValidation(t *testing.T) {
	validate := newValidate()
	pwd := "Tr0ub4dor&3"

	err := validate.Struct(NewUser{Name: "Jane", Username: "jane", Password: pwd, PasswordConfirm: pwd, Roles: []string{RoleTeacher, RoleSecretary}})
	assert.NoError(t, err)

	err = validate.Struct(NewUser{Name: "Jane", Username: "jane", Password: pwd, PasswordConfirm: pwd, Roles: []string{"student:"}})
	assert.Error(t, err)
}

func TestMaxRolePriority(t *testing.T) {
	assert.Equal(t, 0, MaxRolePriority(nil))
	assert.Equal(t, 30, MaxRolePriority([]string{RoleTeacher, RoleAdminOwner}))
	assert.Greater(t, MaxRolePriority([]string{RoleSecretary}), MaxRolePriority([]string{RoleTeacher}))
}
