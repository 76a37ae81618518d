package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
)

var ErrNotFound = core.NewNotFoundError("school")

type School struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Principal string    `json:"principal"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var Schema = core.Schema[School]{
	Table: "schools",
	Fields: []core.Field[School]{
		{Name: "id", Column: "id", Value: func(s School) any { return s.ID }, Sort: true},
		{Name: "name", Column: "name", Value: func(s School) any { return s.Name }, Search: true, Sort: true},
		{Name: "code", Column: "code", Value: func(s School) any { return s.Code }, Search: true, Filter: true, Sort: true},
		{Name: "city", Column: "city", Value: func(s School) any { return s.City }, Search: true, Filter: true, Sort: true},
		{Name: "state", Column: "state", Value: func(s School) any { return s.State }, Filter: true, Sort: true},
		{Name: "principal", Column: "principal", Value: func(s School) any { return s.Principal }, Search: true},
		{Name: "is_active", Column: "is_active", Value: func(s School) any { return s.IsActive }, Filter: true, Sort: true},
		{Name: "created_at", Column: "created_at", Value: func(s School) any { return s.CreatedAt }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "name", Ascending: true}},
}

type NewSchool struct {
	Name      string `json:"name" validate:"required,max=255"`
	Code      string `json:"code" validate:"required,max=50,alphanum_"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=50"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Principal string `json:"principal" validate:"max=255"`
}

func (ns *NewSchool) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.Address = core.CleanString(ns.Address)
	ns.City = core.CleanString(ns.City)
	ns.State = core.CleanString(ns.State)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Principal = core.CleanString(ns.Principal)
}

type UpdateSchool struct {
	NewSchool
	IsActive *bool `json:"is_active"`
}

type Repository interface {
	core.Repository[School]
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) List(ctx context.Context, q core.ListQuery) (core.Page[School], error) {
	q, err := Schema.Clean(q)
	if err != nil {
		return core.Page[School]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Get(ctx context.Context, id int64) (School, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (School, error) {
	ns.clean()
	if err := svc.validate.Struct(ns); err != nil {
		return School{}, err
	}
	now := time.Now().UTC()
	s := School{IsActive: true, CreatedAt: now}
	ns.apply(&s, now)
	return svc.repo.Create(ctx, s)
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateSchool) (School, error) {
	us.clean()
	if err := svc.validate.Struct(us); err != nil {
		return School{}, err
	}
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return School{}, err
	}
	us.apply(&s, time.Now().UTC())
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	return svc.repo.Update(ctx, s)
}

// Delete deactivates the school.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.IsActive = false
	s.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.Update(ctx, s)
	return errors.Wrap(err, "deactivating school")
}

// RequireActive returns a validation error on `field` unless school `id` exists and is active.
func RequireActive(ctx context.Context, repo Repository, id int64, field string) error {
	s, err := repo.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: field, Error: "school not found"})
		}
		return errors.Wrap(err, "finding school")
	}
	if !s.IsActive {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "school is inactive"})
	}
	return nil
}

func (ns NewSchool) apply(s *School, now time.Time) {
	s.Name = ns.Name
	s.Code = ns.Code
	s.Address = ns.Address
	s.City = ns.City
	s.State = ns.State
	s.Phone = ns.Phone
	s.Email = ns.Email
	s.Principal = ns.Principal
	s.UpdatedAt = now
}
