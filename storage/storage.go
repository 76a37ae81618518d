// Package storage selects & opens the DataSource the application runs on.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
	"github.com/trezcool/diario/storage/database"
	dummydb "github.com/trezcool/diario/storage/database/dummy"
	"github.com/trezcool/diario/storage/database/pgerr"
	sqlxrepos "github.com/trezcool/diario/storage/database/sqlx"
)

// DataSource gives access to every repository of one store.
type DataSource interface {
	Kind() string // core.DataSourceLive | core.DataSourceFixture
	Users() user.Repository
	Schools() school.Repository
	Students() student.Repository
	Teachers() teacher.Repository
	Classes() class.Repository
	Enrollments() enrollment.Repository
	Diary() diary.Repository
	Periods() calendar.PeriodRepository
	Holidays() calendar.HolidayRepository
	Events() calendar.EventRepository
	Close() error
}

type repos struct {
	users       user.Repository
	schools     school.Repository
	students    student.Repository
	teachers    teacher.Repository
	classes     class.Repository
	enrollments enrollment.Repository
	diary       diary.Repository
	periods     calendar.PeriodRepository
	holidays    calendar.HolidayRepository
	events      calendar.EventRepository
}

func (r repos) Users() user.Repository               { return r.users }
func (r repos) Schools() school.Repository           { return r.schools }
func (r repos) Students() student.Repository         { return r.students }
func (r repos) Teachers() teacher.Repository         { return r.teachers }
func (r repos) Classes() class.Repository            { return r.classes }
func (r repos) Enrollments() enrollment.Repository   { return r.enrollments }
func (r repos) Diary() diary.Repository              { return r.diary }
func (r repos) Periods() calendar.PeriodRepository   { return r.periods }
func (r repos) Holidays() calendar.HolidayRepository { return r.holidays }
func (r repos) Events() calendar.EventRepository     { return r.events }

// LiveStore is the Postgres DataSource.
type LiveStore struct {
	repos
	db *sqlx.DB
}

var _ DataSource = (*LiveStore)(nil)

func NewLiveStore(db *sqlx.DB) *LiveStore {
	return &LiveStore{
		db: db,
		repos: repos{
			users:       sqlxrepos.NewUserRepository(db),
			schools:     sqlxrepos.NewSchoolRepository(db),
			students:    sqlxrepos.NewStudentRepository(db),
			teachers:    sqlxrepos.NewTeacherRepository(db),
			classes:     sqlxrepos.NewClassRepository(db),
			enrollments: sqlxrepos.NewEnrollmentRepository(db),
			diary:       sqlxrepos.NewDiaryRepository(db),
			periods:     sqlxrepos.NewPeriodRepository(db),
			holidays:    sqlxrepos.NewHolidayRepository(db),
			events:      sqlxrepos.NewEventRepository(db),
		},
	}
}

func (s *LiveStore) Kind() string { return core.DataSourceLive }
func (s *LiveStore) DB() *sqlx.DB { return s.db }
func (s *LiveStore) Close() error { return s.db.Close() }

// FixtureStore is the in-memory DataSource, seeded with sample data.
type FixtureStore struct {
	repos
}

var _ DataSource = (*FixtureStore)(nil)

// NewFixtureStore returns an empty in-memory store.
func NewFixtureStore() *FixtureStore {
	db := dummydb.Open()
	return &FixtureStore{repos{
		users:       dummydb.NewUserRepository(db),
		schools:     dummydb.NewSchoolRepository(db),
		students:    dummydb.NewStudentRepository(db),
		teachers:    dummydb.NewTeacherRepository(db),
		classes:     dummydb.NewClassRepository(db),
		enrollments: dummydb.NewEnrollmentRepository(db),
		diary:       dummydb.NewDiaryRepository(db),
		periods:     dummydb.NewPeriodRepository(db),
		holidays:    dummydb.NewHolidayRepository(db),
		events:      dummydb.NewEventRepository(db),
	}}
}

func (s *FixtureStore) Kind() string { return core.DataSourceFixture }
func (s *FixtureStore) Close() error { return nil }

// liveTables are checked at startup to detect a missing schema.
var liveTables = []string{"users", "schools", "students", "teachers", "classes", "enrollments", "diary_entries", "periods", "holidays", "events"}

// openLiveFunc opens, migrates & checks the Postgres database.
var openLiveFunc = openLive // mockable

func openLive(ctx context.Context, conf *core.Config) (*LiveStore, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*LiveStore, error) {
		_ = db.Close()
		return nil, err
	}

	if err = database.Ping(ctx, db); err != nil {
		return fail(err)
	}
	if conf.Database.AutoMigrate {
		if err = database.Migrate(ctx, db.DB, "up"); err != nil {
			return fail(err)
		}
	}
	for _, tbl := range liveTables {
		if _, err = db.ExecContext(ctx, "SELECT 1 FROM "+tbl+" LIMIT 1"); err != nil {
			return fail(errors.Wrapf(err, "probing table %s", tbl))
		}
	}
	return NewLiveStore(db), nil
}

// Open returns the DataSource selected by conf.DataSource:
//   - fixture: sample data in memory
//   - live: Postgres, any error is returned
//   - auto: Postgres, falling back to the fixture only when its schema is missing
//
// The choice is made once, at startup.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (DataSource, error) {
	if conf.IsFixture() {
		return openFixture(ctx, logger)
	}

	live, err := openLiveFunc(ctx, conf)
	if err == nil {
		logger.Info("storage: using the live database")
		return live, nil
	}
	if conf.DataSource == core.DataSourceAuto && pgerr.IsSchemaMissing(err) {
		logger.Warn("storage: database schema not found, serving sample data", err)
		return openFixture(ctx, logger)
	}
	return nil, errors.Wrap(err, "opening live database")
}

func openFixture(ctx context.Context, logger core.Logger) (DataSource, error) {
	store := NewFixtureStore()
	if err := Seed(ctx, store); err != nil {
		return nil, errors.Wrap(err, "seeding fixture store")
	}
	logger.Info("storage: using the fixture store")
	return store, nil
}
