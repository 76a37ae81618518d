package teacher

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/user"
)

var ErrNotFound = core.NewNotFoundError("teacher")

type Teacher struct {
	ID       int64  `json:"id"`
	SchoolID int64  `json:"school_id"`
	UserID   *int64 `json:"user_id"` // optional staff account

	// personal
	Name      string      `json:"name"`
	Document  string      `json:"document"`
	BirthDate *civil.Date `json:"birth_date"`
	Gender    string      `json:"gender"`

	// contact
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`

	// professional
	Degree         string      `json:"degree"`
	Specialization string      `json:"specialization"`
	Subjects       []string    `json:"subjects"`
	HireDate       *civil.Date `json:"hire_date"`
	WorkloadHours  int         `json:"workload_hours"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var Schema = core.Schema[Teacher]{
	Table: "teachers",
	Fields: []core.Field[Teacher]{
		{Name: "id", Column: "id", Value: func(t Teacher) any { return t.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(t Teacher) any { return t.SchoolID }, Filter: true},
		{Name: "user_id", Column: "user_id", Value: func(t Teacher) any { return t.UserID }, Filter: true},
		{Name: "name", Column: "name", Value: func(t Teacher) any { return t.Name }, Search: true, Sort: true},
		{Name: "email", Column: "email", Value: func(t Teacher) any { return t.Email }, Search: true, Filter: true, Sort: true},
		{Name: "degree", Column: "degree", Value: func(t Teacher) any { return t.Degree }, Filter: true, Sort: true},
		{Name: "specialization", Column: "specialization", Value: func(t Teacher) any { return t.Specialization }, Search: true, Sort: true},
		{Name: "workload_hours", Column: "workload_hours", Value: func(t Teacher) any { return t.WorkloadHours }, Filter: true, Sort: true},
		{Name: "is_active", Column: "is_active", Value: func(t Teacher) any { return t.IsActive }, Filter: true, Sort: true},
		{Name: "created_at", Column: "created_at", Value: func(t Teacher) any { return t.CreatedAt }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "name", Ascending: true}},
}

type NewTeacher struct {
	SchoolID int64  `json:"school_id" validate:"required"`
	UserID   *int64 `json:"user_id"`

	Name      string      `json:"name" validate:"required,max=255"`
	Document  string      `json:"document" validate:"max=50"`
	BirthDate *civil.Date `json:"birth_date" validate:"omitempty,pastdate"`
	Gender    string      `json:"gender" validate:"omitempty,gender"`

	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address" validate:"max=255"`
	City    string `json:"city" validate:"max=100"`

	Degree         string      `json:"degree" validate:"max=50"`
	Specialization string      `json:"specialization" validate:"max=255"`
	Subjects       []string    `json:"subjects" validate:"max=20,dive,max=100"`
	HireDate       *civil.Date `json:"hire_date" validate:"omitempty,pastdate"`
	WorkloadHours  int         `json:"workload_hours" validate:"gte=0,lte=60"`
}

func (nt *NewTeacher) clean() {
	nt.Name = core.CleanString(nt.Name)
	nt.Document = core.CleanString(nt.Document)
	nt.Gender = core.CleanString(nt.Gender, true /* lower */)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Address = core.CleanString(nt.Address)
	nt.City = core.CleanString(nt.City)
	nt.Degree = core.CleanString(nt.Degree)
	nt.Specialization = core.CleanString(nt.Specialization)
	nt.Subjects = core.CleanStrings(nt.Subjects)
	if nt.Subjects == nil {
		nt.Subjects = []string{}
	}
}

func (nt NewTeacher) apply(t *Teacher, now time.Time) {
	t.SchoolID = nt.SchoolID
	t.UserID = nt.UserID
	t.Name = nt.Name
	t.Document = nt.Document
	t.BirthDate = nt.BirthDate
	t.Gender = nt.Gender
	t.Email = nt.Email
	t.Phone = nt.Phone
	t.Address = nt.Address
	t.City = nt.City
	t.Degree = nt.Degree
	t.Specialization = nt.Specialization
	t.Subjects = nt.Subjects
	t.HireDate = nt.HireDate
	t.WorkloadHours = nt.WorkloadHours
	t.UpdatedAt = now
}

type UpdateTeacher struct {
	NewTeacher
	IsActive *bool `json:"is_active"`
}

type Repository interface {
	core.Repository[Teacher]
}

type Service struct {
	repo     Repository
	schools  school.Repository
	users    user.Repository
	validate *validator.Validate
}

func NewService(repo Repository, schools school.Repository, users user.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, schools: schools, users: users, validate: validate}
}

func (svc *Service) List(ctx context.Context, q core.ListQuery) (core.Page[Teacher], error) {
	q, err := Schema.Clean(q)
	if err != nil {
		return core.Page[Teacher]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Get(ctx context.Context, id int64) (Teacher, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) checkRefs(ctx context.Context, nt NewTeacher, orig Teacher) error {
	if nt.SchoolID != orig.SchoolID {
		if err := school.RequireActive(ctx, svc.schools, nt.SchoolID, "school_id"); err != nil {
			return err
		}
	}
	if nt.UserID != nil && (orig.UserID == nil || *orig.UserID != *nt.UserID) {
		usr, err := svc.users.Get(ctx, *nt.UserID)
		if err != nil {
			if core.IsNotFound(err) {
				return core.NewValidationError(err, core.FieldError{Field: "user_id", Error: "user not found"})
			}
			return errors.Wrap(err, "finding user")
		}
		if !usr.IsTeacher() {
			return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "user is not a teacher"})
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	nt.clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Teacher{}, err
	}
	if err := svc.checkRefs(ctx, nt, Teacher{}); err != nil {
		return Teacher{}, err
	}
	now := time.Now().UTC()
	t := Teacher{IsActive: true, CreatedAt: now}
	nt.apply(&t, now)
	return svc.repo.Create(ctx, t)
}

func (svc *Service) Update(ctx context.Context, id int64, ut UpdateTeacher) (Teacher, error) {
	ut.clean()
	if err := svc.validate.Struct(ut); err != nil {
		return Teacher{}, err
	}
	t, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if err = svc.checkRefs(ctx, ut.NewTeacher, t); err != nil {
		return Teacher{}, err
	}
	ut.apply(&t, time.Now().UTC())
	if ut.IsActive != nil {
		t.IsActive = *ut.IsActive
	}
	return svc.repo.Update(ctx, t)
}

// Delete deactivates the teacher.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	t, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.Update(ctx, t)
	return errors.Wrap(err, "deactivating teacher")
}

// RequireActive returns a validation error on `field` unless teacher `id` exists and is active.
func RequireActive(ctx context.Context, repo Repository, id int64, field string) error {
	t, err := repo.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: field, Error: "teacher not found"})
		}
		return errors.Wrap(err, "finding teacher")
	}
	if !t.IsActive {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "teacher is inactive"})
	}
	return nil
}
