package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/diario/apps/api/echo"
	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/dashboard"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
	emailsvc "github.com/trezcool/diario/services/email"
	logsvc "github.com/trezcool/diario/services/logger"
	"github.com/trezcool/diario/storage"
)

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDataSource picks the DataSource once, at startup.
func newDataSource(conf *core.Config, logger core.Logger) storage.DataSource {
	ds, err := storage.Open(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up data source: %v", err), err)
	}
	return ds
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newUserService(ds storage.DataSource, mailSvc core.EmailService, logger core.Logger, conf *core.Config) user.Service {
	return user.NewService(ds.Users(), mailSvc, logger, conf)
}

func newSchoolService(ds storage.DataSource, validate *validator.Validate) *school.Service {
	return school.NewService(ds.Schools(), validate)
}

func newStudentService(ds storage.DataSource, validate *validator.Validate) *student.Service {
	return student.NewService(ds.Students(), ds.Schools(), validate)
}

func newTeacherService(ds storage.DataSource, validate *validator.Validate) *teacher.Service {
	return teacher.NewService(ds.Teachers(), ds.Schools(), ds.Users(), validate)
}

func newClassService(ds storage.DataSource, validate *validator.Validate) *class.Service {
	return class.NewService(ds.Classes(), ds.Schools(), ds.Teachers(), validate)
}

func newEnrollmentService(ds storage.DataSource, validate *validator.Validate) *enrollment.Service {
	return enrollment.NewService(ds.Enrollments(), ds.Classes(), ds.Students(), validate)
}

// newDiaryService reads the rosters through the enrollment service.
func newDiaryService(ds storage.DataSource, enrollSvc *enrollment.Service, validate *validator.Validate) *diary.Service {
	return diary.NewService(ds.Diary(), enrollSvc, ds.Classes(), validate)
}

func newCalendarService(ds storage.DataSource, validate *validator.Validate) *calendar.Service {
	return calendar.NewService(ds.Periods(), ds.Holidays(), ds.Events(), ds.Schools(), validate)
}

func newDashboardService(ds storage.DataSource, cal *calendar.Service) *dashboard.Service {
	return dashboard.NewService(ds.Schools(), ds.Students(), ds.Teachers(), ds.Classes(), ds.Enrollments(), ds.Diary(), cal)
}

type ServerParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	DS         storage.DataSource
	Validate   *validator.Validate
	Translator ut.Translator

	UserSvc       user.Service
	SchoolSvc     *school.Service
	StudentSvc    *student.Service
	TeacherSvc    *teacher.Service
	ClassSvc      *class.Service
	EnrollmentSvc *enrollment.Service
	DiarySvc      *diary.Service
	CalendarSvc   *calendar.Service
	DashboardSvc  *dashboard.Service
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Conf:          p.Conf,
		Logger:        p.Logger,
		DataSource:    p.DS.Kind(),
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		SchoolSvc:     p.SchoolSvc,
		StudentSvc:    p.StudentSvc,
		TeacherSvc:    p.TeacherSvc,
		ClassSvc:      p.ClassSvc,
		EnrollmentSvc: p.EnrollmentSvc,
		DiarySvc:      p.DiarySvc,
		CalendarSvc:   p.CalendarSvc,
		DashboardSvc:  p.DashboardSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDataSource))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newValidator))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newUserService))
	must(c.Provide(newSchoolService))
	must(c.Provide(newStudentService))
	must(c.Provide(newTeacherService))
	must(c.Provide(newClassService))
	must(c.Provide(newEnrollmentService))
	must(c.Provide(newDiaryService))
	must(c.Provide(newCalendarService))
	must(c.Provide(newDashboardService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
