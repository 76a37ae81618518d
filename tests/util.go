package testutil

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// Config returns the configuration of the TEST env, without reading the environment.
func Config() *core.Config {
	return &core.Config{
		AppName:         "Diario",
		Build:           "test",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://diario.test",
		DefaultFromName: "Diario",
		DefaultFromAddr: "noreply@diario.test",
		DataSource:      core.DataSourceFixture,
		Server: core.ServerConfig{
			Address:                   ":0",
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
			PasswordResetTimeoutDelta: time.Hour,
			ShutdownTimeout:           time.Second,
		},
		Database: core.DatabaseConfig{Driver: "postgres"},
	}
}

// NewValidator returns a validator with every custom validator of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	class.InitValidators(validate, translator)
	enrollment.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{}
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateSchool(t *testing.T, repo school.Repository, name, code, city string) school.School {
	now := time.Now().UTC()
	s, err := repo.Create(context.Background(), school.School{
		Name:      name,
		Code:      code,
		City:      city,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSchool(): %v", err)
	}
	return s
}

func CreateStudent(t *testing.T, repo student.Repository, schoolID int64, name, regNo string, isActive bool) student.Student {
	now := time.Now().UTC()
	s, err := repo.Create(context.Background(), student.Student{
		SchoolID:           schoolID,
		Name:               name,
		RegistrationNumber: regNo,
		BirthDate:          civil.Date{Year: 2012, Month: time.May, Day: 4},
		IsActive:           isActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return s
}

func CreateTeacher(t *testing.T, repo teacher.Repository, schoolID int64, name, email string) teacher.Teacher {
	now := time.Now().UTC()
	tch, err := repo.Create(context.Background(), teacher.Teacher{
		SchoolID:  schoolID,
		Name:      name,
		Email:     email,
		Subjects:  []string{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}
	return tch
}

func CreateClass(t *testing.T, repo class.Repository, schoolID int64, name string, capacity, year int) class.Class {
	now := time.Now().UTC()
	c, err := repo.Create(context.Background(), class.Class{
		SchoolID:   schoolID,
		Name:       name,
		Grade:      "5",
		Shift:      class.ShiftMorning,
		Capacity:   capacity,
		SchoolYear: year,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	return c
}

func Enroll(t *testing.T, repo enrollment.Repository, studentID, classID int64, year int, status string) enrollment.Enrollment {
	now := time.Now().UTC()
	e, err := repo.Create(context.Background(), enrollment.Enrollment{
		StudentID:  studentID,
		ClassID:    classID,
		SchoolYear: year,
		Status:     status,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	return e
}
