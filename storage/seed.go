package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
)

// DemoPassword is the password of the sample users.
const DemoPassword = "Diario#2024"

var nowFunc = time.Now // mockable

type sampleStudent struct {
	name, gender, guardian string
	birth                  civil.Date
	class                  int // index in the sample classes
}

// Seed loads the sample data set through the repositories of ds:
// one school with its staff, two classes, their students, a calendar & a saved diary entry.
func Seed(ctx context.Context, ds DataSource) error {
	now := nowFunc().UTC()
	today := civil.DateOf(now)
	year := today.Year

	// users
	users := make(map[string]user.User, 3)
	for _, u := range []struct {
		name, username string
		roles          []string
	}{
		{"Helena Prado", "admin", []string{user.RoleAdminOwner}},
		{"Marcos Reis", "secretary", []string{user.RoleSecretary}},
		{"Ana Souza", "ana_souza", []string{user.RoleTeacher}},
	} {
		usr := user.User{
			Name:      u.name,
			Username:  u.username,
			Email:     u.username + "@diario.local",
			IsActive:  true,
			Roles:     u.roles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(DemoPassword); err != nil {
			return errors.Wrap(err, "setting sample password")
		}
		created, err := ds.Users().Create(ctx, usr)
		if err != nil {
			return errors.Wrap(err, "creating sample user")
		}
		users[u.username] = created
	}

	sch, err := ds.Schools().Create(ctx, school.School{
		Name:      "Central Municipal School",
		Code:      "central",
		Address:   "12 Market Street",
		City:      "Springfield",
		State:     "IL",
		Phone:     "+1 217 555 0100",
		Email:     "office@central.school",
		Principal: "Helena Prado",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return errors.Wrap(err, "creating sample school")
	}

	// teachers
	anaID := users["ana_souza"].ID
	hired := civil.Date{Year: year - 3, Month: time.February, Day: 1}
	teachers := make([]teacher.Teacher, 0, 2)
	for _, t := range []teacher.Teacher{
		{Name: "Ana Souza", Email: "ana.souza@central.school", UserID: &anaID, Degree: "MSc", Specialization: "Mathematics", Subjects: []string{"math", "science"}, WorkloadHours: 40},
		{Name: "Bruno Lima", Email: "bruno.lima@central.school", Degree: "BA", Specialization: "Languages", Subjects: []string{"english", "history"}, WorkloadHours: 20},
	} {
		t.SchoolID = sch.ID
		t.HireDate = &hired
		t.IsActive = true
		t.CreatedAt, t.UpdatedAt = now, now
		created, err := ds.Teachers().Create(ctx, t)
		if err != nil {
			return errors.Wrap(err, "creating sample teacher")
		}
		teachers = append(teachers, created)
	}

	// classes
	classes := make([]class.Class, 0, 2)
	for i, c := range []class.Class{
		{Name: "5th Grade A", Grade: "5", Shift: class.ShiftMorning, Capacity: 30, Room: "101"},
		{Name: "6th Grade B", Grade: "6", Shift: class.ShiftAfternoon, Capacity: 25, Room: "204"},
	} {
		c.SchoolID = sch.ID
		c.TeacherID = &teachers[i].ID
		c.SchoolYear = year
		c.IsActive = true
		c.CreatedAt, c.UpdatedAt = now, now
		created, err := ds.Classes().Create(ctx, c)
		if err != nil {
			return errors.Wrap(err, "creating sample class")
		}
		classes = append(classes, created)
	}

	// students & enrollments
	var roster []enrollment.RosterEntry
	for i, s := range []sampleStudent{
		{"Beatriz Alves", "female", "Carla Alves", civil.Date{Year: year - 10, Month: time.March, Day: 14}, 0},
		{"Caio Martins", "male", "Paulo Martins", civil.Date{Year: year - 10, Month: time.July, Day: 2}, 0},
		{"Davi Rocha", "male", "Lia Rocha", civil.Date{Year: year - 11, Month: time.November, Day: 23}, 0},
		{"Elisa Nunes", "female", "", civil.Date{Year: year - 10, Month: time.January, Day: 30}, 0},
		{"Felipe Costa", "male", "Rita Costa", civil.Date{Year: year - 11, Month: time.May, Day: 8}, 1},
		{"Gabriela Dias", "female", "Jorge Dias", civil.Date{Year: year - 12, Month: time.September, Day: 17}, 1},
	} {
		std := student.Student{
			SchoolID:           sch.ID,
			Name:               s.name,
			RegistrationNumber: fmt.Sprintf("%d%03d", year, i+1),
			BirthDate:          s.birth,
			Gender:             s.gender,
			City:               sch.City,
			State:              sch.State,
			GuardianName:       s.guardian,
			IsActive:           true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if s.guardian != "" {
			std.GuardianRelation = "parent"
		}
		created, err := ds.Students().Create(ctx, std)
		if err != nil {
			return errors.Wrap(err, "creating sample student")
		}

		_, err = ds.Enrollments().Create(ctx, enrollment.Enrollment{
			StudentID:  created.ID,
			ClassID:    classes[s.class].ID,
			SchoolYear: year,
			Status:     enrollment.StatusActive,
			EnrolledAt: now,
			UpdatedAt:  now,
		})
		if err != nil {
			return errors.Wrap(err, "creating sample enrollment")
		}
		if s.class == 0 {
			roster = append(roster, enrollment.RosterEntry{StudentID: created.ID, Name: created.Name})
		}
	}

	// calendar
	for _, p := range []calendar.Period{
		{Name: "1st semester", StartDate: civil.Date{Year: year, Month: time.February, Day: 1}, EndDate: civil.Date{Year: year, Month: time.June, Day: 30}},
		{Name: "2nd semester", StartDate: civil.Date{Year: year, Month: time.August, Day: 1}, EndDate: civil.Date{Year: year, Month: time.December, Day: 15}},
	} {
		p.SchoolID = sch.ID
		p.SchoolYear = year
		p.CreatedAt, p.UpdatedAt = now, now
		if _, err = ds.Periods().Create(ctx, p); err != nil {
			return errors.Wrap(err, "creating sample period")
		}
	}
	for _, h := range []calendar.Holiday{
		{Name: "Labor Day", Date: civil.Date{Year: year, Month: time.May, Day: 1}},
		{Name: "Christmas", Date: civil.Date{Year: year, Month: time.December, Day: 25}},
	} {
		h.SchoolID = sch.ID
		h.CreatedAt, h.UpdatedAt = now, now
		if _, err = ds.Holidays().Create(ctx, h); err != nil {
			return errors.Wrap(err, "creating sample holiday")
		}
	}
	for _, e := range []calendar.Event{
		{Title: "Parents meeting", Description: "Mid-term results", Date: today.AddDays(7), StartTime: "19:00", EndTime: "21:00"},
		{Title: "Science fair", Date: today.AddDays(20), StartTime: "09:00", EndTime: "16:00"},
	} {
		e.SchoolID = sch.ID
		e.CreatedAt, e.UpdatedAt = now, now
		if _, err = ds.Events().Create(ctx, e); err != nil {
			return errors.Wrap(err, "creating sample event")
		}
	}

	// today's diary of the first class, with one absence
	attendance := make([]diary.AttendanceRecord, 0, len(roster))
	for i, r := range roster {
		attendance = append(attendance, diary.AttendanceRecord{StudentID: r.StudentID, Present: i != 1})
	}
	_, err = ds.Diary().Upsert(ctx, diary.Entry{
		ClassID:    classes[0].ID,
		Date:       today,
		Subject:    "Mathematics",
		Content:    "Fractions: equivalent fractions",
		Homework:   "Exercises 1 to 5, page 42",
		Attendance: attendance,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return errors.Wrap(err, "creating sample diary entry")
}
