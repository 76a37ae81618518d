package dummydb

import (
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
)

var (
	_ school.Repository          = (*table[school.School])(nil)
	_ student.Repository         = (*table[student.Student])(nil)
	_ teacher.Repository         = (*table[teacher.Teacher])(nil)
	_ class.Repository           = (*table[class.Class])(nil)
	_ calendar.PeriodRepository  = (*table[calendar.Period])(nil)
	_ calendar.HolidayRepository = (*table[calendar.Holiday])(nil)
	_ calendar.EventRepository   = (*table[calendar.Event])(nil)
)

func NewSchoolRepository(db *DB) school.Repository           { return db.schools }
func NewStudentRepository(db *DB) student.Repository         { return db.students }
func NewTeacherRepository(db *DB) teacher.Repository         { return db.teachers }
func NewClassRepository(db *DB) class.Repository             { return db.classes }
func NewPeriodRepository(db *DB) calendar.PeriodRepository   { return db.periods }
func NewHolidayRepository(db *DB) calendar.HolidayRepository { return db.holidays }
func NewEventRepository(db *DB) calendar.EventRepository     { return db.events }
