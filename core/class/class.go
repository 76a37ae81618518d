package class

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/teacher"
)

// Shifts
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftEvening   = "evening"
	ShiftFull      = "full"
)

var (
	ErrNotFound = core.NewNotFoundError("class")

	Shifts = []string{ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftFull}

	shiftTag  = "shift"
	shiftText = "shift must be one of: morning, afternoon, evening, full"
)

// Class is a teaching group. Classes are never deleted, only deactivated.
type Class struct {
	ID         int64     `json:"id"`
	SchoolID   int64     `json:"school_id"`
	TeacherID  *int64    `json:"teacher_id"`
	Name       string    `json:"name"`
	Grade      string    `json:"grade"`
	Shift      string    `json:"shift"`
	Capacity   int       `json:"capacity"`
	SchoolYear int       `json:"school_year"`
	Room       string    `json:"room"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var Schema = core.Schema[Class]{
	Table: "classes",
	Fields: []core.Field[Class]{
		{Name: "id", Column: "id", Value: func(c Class) any { return c.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(c Class) any { return c.SchoolID }, Filter: true},
		{Name: "teacher_id", Column: "teacher_id", Value: func(c Class) any { return c.TeacherID }, Filter: true},
		{Name: "name", Column: "name", Value: func(c Class) any { return c.Name }, Search: true, Sort: true},
		{Name: "grade", Column: "grade", Value: func(c Class) any { return c.Grade }, Search: true, Filter: true, Sort: true},
		{Name: "shift", Column: "shift", Value: func(c Class) any { return c.Shift }, Filter: true, Sort: true},
		{Name: "capacity", Column: "capacity", Value: func(c Class) any { return c.Capacity }, Sort: true},
		{Name: "school_year", Column: "school_year", Value: func(c Class) any { return c.SchoolYear }, Filter: true, Sort: true},
		{Name: "room", Column: "room", Value: func(c Class) any { return c.Room }, Search: true},
		{Name: "is_active", Column: "is_active", Value: func(c Class) any { return c.IsActive }, Filter: true, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{
		{Field: "school_year", Ascending: false},
		{Field: "name", Ascending: true},
	},
}

// InitValidators registers the class validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(shiftTag, func(fl validator.FieldLevel) bool {
		shift := fl.Field().String()
		for _, s := range Shifts {
			if s == shift {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, shiftTag, shiftText)
}

type NewClass struct {
	SchoolID   int64  `json:"school_id" validate:"required"`
	TeacherID  *int64 `json:"teacher_id"`
	Name       string `json:"name" validate:"required,max=100"`
	Grade      string `json:"grade" validate:"required,max=50"`
	Shift      string `json:"shift" validate:"required,shift"`
	Capacity   int    `json:"capacity" validate:"required,gt=0,lte=200"`
	SchoolYear int    `json:"school_year" validate:"required,schoolyear"`
	Room       string `json:"room" validate:"max=50"`
}

func (nc *NewClass) clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	nc.Shift = core.CleanString(nc.Shift, true /* lower */)
	nc.Room = core.CleanString(nc.Room)
}

func (nc NewClass) apply(c *Class, now time.Time) {
	c.SchoolID = nc.SchoolID
	c.TeacherID = nc.TeacherID
	c.Name = nc.Name
	c.Grade = nc.Grade
	c.Shift = nc.Shift
	c.Capacity = nc.Capacity
	c.SchoolYear = nc.SchoolYear
	c.Room = nc.Room
	c.UpdatedAt = now
}

type UpdateClass struct {
	NewClass
	IsActive *bool `json:"is_active"`
}

type Repository interface {
	core.Repository[Class]
}

type Service struct {
	repo     Repository
	schools  school.Repository
	teachers teacher.Repository
	validate *validator.Validate
}

func NewService(repo Repository, schools school.Repository, teachers teacher.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, schools: schools, teachers: teachers, validate: validate}
}

func (svc *Service) List(ctx context.Context, q core.ListQuery) (core.Page[Class], error) {
	q, err := Schema.Clean(q)
	if err != nil {
		return core.Page[Class]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Get(ctx context.Context, id int64) (Class, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) checkRefs(ctx context.Context, nc NewClass, orig Class) error {
	if nc.SchoolID != orig.SchoolID {
		if err := school.RequireActive(ctx, svc.schools, nc.SchoolID, "school_id"); err != nil {
			return err
		}
	}
	if nc.TeacherID != nil && (orig.TeacherID == nil || *orig.TeacherID != *nc.TeacherID) {
		if err := teacher.RequireActive(ctx, svc.teachers, *nc.TeacherID, "teacher_id"); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	nc.clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Class{}, err
	}
	if err := svc.checkRefs(ctx, nc, Class{}); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	c := Class{IsActive: true, CreatedAt: now}
	nc.apply(&c, now)
	return svc.repo.Create(ctx, c)
}

func (svc *Service) Update(ctx context.Context, id int64, uc UpdateClass) (Class, error) {
	uc.clean()
	if err := svc.validate.Struct(uc); err != nil {
		return Class{}, err
	}
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if err = svc.checkRefs(ctx, uc.NewClass, c); err != nil {
		return Class{}, err
	}
	uc.apply(&c, time.Now().UTC())
	if uc.IsActive != nil {
		c.IsActive = *uc.IsActive
	}
	return svc.repo.Update(ctx, c)
}

// Delete deactivates the class: diary entries & enrollments still reference it.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = false
	c.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.Update(ctx, c)
	return errors.Wrap(err, "deactivating class")
}
