package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type Options struct {
	Conf       *core.Config
	Logger     core.Logger
	DataSource string // kind of the DataSource the services run on
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

type Server struct {
	opts     *Options
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(opts *Options) *Server {
	setAuthConfig(opts.Conf)

	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.JSONSerializer = sonicSerializer{}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Server.RequestTimeout > 0 {
		s.app.Use(middleware.ContextTimeout(conf.Server.RequestTimeout))
	}

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	v1.GET("/status", s.status)

	jwt := jwtMiddleware()
	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Validate)
	registerSchoolAPI(v1, jwt, s.opts.SchoolSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerClassAPI(v1, jwt, s.opts.ClassSvc, s.opts.EnrollmentSvc)
	registerEnrollmentAPI(v1, jwt, s.opts.EnrollmentSvc)
	registerDiaryAPI(v1, jwt, s.opts.DiarySvc)
	registerCalendarAPI(v1, jwt, s.opts.CalendarSvc)
	registerDashboardAPI(v1, jwt, s.opts.DashboardSvc)
}

// Start listens on the configured address until Shutdown or Close.
// Listening errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal receives SIGINT, SIGTERM, or SIGTERM on behalf of a core.shutdown error.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s API!", s.opts.Conf.AppName))
}

type StatusResponse struct {
	App        string `json:"app"`
	Build      string `json:"build"`
	DataSource string `json:"data_source"`
}

// status lets clients know whether they are served sample data.
func (s *Server) status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, StatusResponse{
		App:        s.opts.Conf.AppName,
		Build:      s.opts.Conf.Build,
		DataSource: s.opts.DataSource,
	})
}
