package student

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/school"
)

var ErrNotFound = core.NewNotFoundError("student")

// Student is filled through a sectioned registration form: only the personal section is mandatory.
type Student struct {
	ID       int64 `json:"id"`
	SchoolID int64 `json:"school_id"`

	// personal
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	BirthDate          civil.Date `json:"birth_date"`
	Gender             string     `json:"gender"`
	Document           string     `json:"document"`

	// contact
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`

	// guardian
	GuardianName     string `json:"guardian_name"`
	GuardianRelation string `json:"guardian_relation"`
	GuardianPhone    string `json:"guardian_phone"`
	GuardianEmail    string `json:"guardian_email"`

	// health
	BloodType    string `json:"blood_type"`
	Allergies    string `json:"allergies"`
	MedicalNotes string `json:"medical_notes"`

	Notes     string    `json:"notes"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var Schema = core.Schema[Student]{
	Table: "students",
	Fields: []core.Field[Student]{
		{Name: "id", Column: "id", Value: func(s Student) any { return s.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(s Student) any { return s.SchoolID }, Filter: true},
		{Name: "name", Column: "name", Value: func(s Student) any { return s.Name }, Search: true, Sort: true},
		{Name: "registration_number", Column: "registration_number", Value: func(s Student) any { return s.RegistrationNumber }, Search: true, Filter: true, Sort: true},
		{Name: "birth_date", Column: "birth_date", Value: func(s Student) any { return s.BirthDate }, Filter: true, Sort: true},
		{Name: "gender", Column: "gender", Value: func(s Student) any { return s.Gender }, Filter: true},
		{Name: "city", Column: "city", Value: func(s Student) any { return s.City }, Filter: true, Sort: true},
		{Name: "guardian_name", Column: "guardian_name", Value: func(s Student) any { return s.GuardianName }, Search: true},
		{Name: "is_active", Column: "is_active", Value: func(s Student) any { return s.IsActive }, Filter: true, Sort: true},
		{Name: "created_at", Column: "created_at", Value: func(s Student) any { return s.CreatedAt }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "name", Ascending: true}},
}

type NewStudent struct {
	SchoolID int64 `json:"school_id" validate:"required"`

	Name               string     `json:"name" validate:"required,max=255"`
	RegistrationNumber string     `json:"registration_number" validate:"required,max=50,alphanum_"`
	BirthDate          civil.Date `json:"birth_date" validate:"required,pastdate"`
	Gender             string     `json:"gender" validate:"omitempty,gender"`
	Document           string     `json:"document" validate:"max=50"`

	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=50"`
	PostalCode string `json:"postal_code" validate:"max=20"`

	GuardianName     string `json:"guardian_name" validate:"required_with=GuardianRelation GuardianPhone GuardianEmail,max=255"`
	GuardianRelation string `json:"guardian_relation" validate:"max=50"`
	GuardianPhone    string `json:"guardian_phone" validate:"omitempty,phone"`
	GuardianEmail    string `json:"guardian_email" validate:"omitempty,email"`

	BloodType    string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies    string `json:"allergies"`
	MedicalNotes string `json:"medical_notes"`

	Notes string `json:"notes"`
}

func (ns *NewStudent) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.RegistrationNumber = core.CleanString(ns.RegistrationNumber)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.Document = core.CleanString(ns.Document)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
	ns.City = core.CleanString(ns.City)
	ns.State = core.CleanString(ns.State)
	ns.PostalCode = core.CleanString(ns.PostalCode)
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianRelation = core.CleanString(ns.GuardianRelation)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	ns.BloodType = core.CleanString(ns.BloodType)
	ns.Allergies = core.CleanString(ns.Allergies)
	ns.MedicalNotes = core.CleanString(ns.MedicalNotes)
	ns.Notes = core.CleanString(ns.Notes)
}

func (ns NewStudent) apply(s *Student, now time.Time) {
	s.SchoolID = ns.SchoolID
	s.Name = ns.Name
	s.RegistrationNumber = ns.RegistrationNumber
	s.BirthDate = ns.BirthDate
	s.Gender = ns.Gender
	s.Document = ns.Document
	s.Email = ns.Email
	s.Phone = ns.Phone
	s.Address = ns.Address
	s.City = ns.City
	s.State = ns.State
	s.PostalCode = ns.PostalCode
	s.GuardianName = ns.GuardianName
	s.GuardianRelation = ns.GuardianRelation
	s.GuardianPhone = ns.GuardianPhone
	s.GuardianEmail = ns.GuardianEmail
	s.BloodType = ns.BloodType
	s.Allergies = ns.Allergies
	s.MedicalNotes = ns.MedicalNotes
	s.Notes = ns.Notes
	s.UpdatedAt = now
}

type UpdateStudent struct {
	NewStudent
	IsActive *bool `json:"is_active"`
}

type Repository interface {
	core.Repository[Student]
}

type Service struct {
	repo     Repository
	schools  school.Repository
	validate *validator.Validate
}

func NewService(repo Repository, schools school.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, schools: schools, validate: validate}
}

func (svc *Service) List(ctx context.Context, q core.ListQuery) (core.Page[Student], error) {
	q, err := Schema.Clean(q)
	if err != nil {
		return core.Page[Student]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Get(ctx context.Context, id int64) (Student, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}
	if err := school.RequireActive(ctx, svc.schools, ns.SchoolID, "school_id"); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	s := Student{IsActive: true, CreatedAt: now}
	ns.apply(&s, now)
	return svc.repo.Create(ctx, s)
}

func (svc *Service) Update(ctx context.Context, id int64, us UpdateStudent) (Student, error) {
	us.clean()
	if err := svc.validate.Struct(us); err != nil {
		return Student{}, err
	}
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.SchoolID != s.SchoolID {
		if err = school.RequireActive(ctx, svc.schools, us.SchoolID, "school_id"); err != nil {
			return Student{}, err
		}
	}
	us.apply(&s, time.Now().UTC())
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	return svc.repo.Update(ctx, s)
}

// Delete deactivates the student. Enrollments & attendance history are kept.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	s, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.IsActive = false
	s.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.Update(ctx, s)
	return errors.Wrap(err, "deactivating student")
}
