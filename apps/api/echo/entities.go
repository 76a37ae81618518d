package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
)

// Schools, students & teachers are deactivated on DELETE.

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service) {
	registerCRUD[school.School, school.NewSchool, school.UpdateSchool](
		g.Group("/schools", jwt), "school", svc, teacherMiddleware(), adminMiddleware(),
	)
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	registerCRUD[student.Student, student.NewStudent, student.UpdateStudent](
		g.Group("/students", jwt), "student", svc, teacherMiddleware(), staffMiddleware(),
	)
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service) {
	registerCRUD[teacher.Teacher, teacher.NewTeacher, teacher.UpdateTeacher](
		g.Group("/teachers", jwt), "teacher", svc, teacherMiddleware(), staffMiddleware(),
	)
}

// Classes are never deleted either.
func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *class.Service, enrollSvc *enrollment.Service) {
	cg := g.Group("/classes", jwt)
	registerCRUD[class.Class, class.NewClass, class.UpdateClass](
		cg, "class", svc, teacherMiddleware(), staffMiddleware(),
	)
	cg.GET("/:id/roster", rosterHandler(enrollSvc), teacherMiddleware())
}

func rosterHandler(svc *enrollment.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}
		roster, err := svc.ActiveRoster(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "fetching roster")
		}
		if roster == nil {
			roster = []enrollment.RosterEntry{}
		}
		return ctx.JSON(http.StatusOK, roster)
	}
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *enrollment.Service) {
	registerCRUD[enrollment.Enrollment, enrollment.NewEnrollment, enrollment.UpdateEnrollment](
		g.Group("/enrollments", jwt), "enrollment", svc, teacherMiddleware(), staffMiddleware(),
	)
}
