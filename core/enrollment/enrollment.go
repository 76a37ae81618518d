package enrollment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/student"
)

// Statuses
const (
	StatusActive      = "active"
	StatusTransferred = "transferred"
	StatusAbandoned   = "abandoned"
	StatusConcluded   = "concluded"
)

var (
	ErrNotFound = core.NewNotFoundError("enrollment")

	Statuses = []string{StatusActive, StatusTransferred, StatusAbandoned, StatusConcluded}

	statusTag  = "enrollstatus"
	statusText = "status must be one of: active, transferred, abandoned, concluded"
)

type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	ClassID    int64     `json:"class_id"`
	SchoolYear int       `json:"school_year"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RosterEntry is an actively enrolled student of a class.
type RosterEntry struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`

	// Since is the day the student joined the class (zero when unknown).
	Since civil.Date `json:"-"`
}

var Schema = core.Schema[Enrollment]{
	Table: "enrollments",
	Fields: []core.Field[Enrollment]{
		{Name: "id", Column: "id", Value: func(e Enrollment) any { return e.ID }, Sort: true},
		{Name: "student_id", Column: "student_id", Value: func(e Enrollment) any { return e.StudentID }, Filter: true, Sort: true},
		{Name: "class_id", Column: "class_id", Value: func(e Enrollment) any { return e.ClassID }, Filter: true, Sort: true},
		{Name: "school_year", Column: "school_year", Value: func(e Enrollment) any { return e.SchoolYear }, Filter: true, Sort: true},
		{Name: "status", Column: "status", Value: func(e Enrollment) any { return e.Status }, Filter: true, Sort: true},
		{Name: "enrolled_at", Column: "enrolled_at", Value: func(e Enrollment) any { return e.EnrolledAt }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "enrolled_at", Ascending: false}},
}

// InitValidators registers the enrollment validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		for _, s := range Statuses {
			if s == status {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// CanTransition reports whether an enrollment may move from status `from` to `to`.
// Only active enrollments change status; every other status is final.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusActive && (to == StatusTransferred || to == StatusAbandoned || to == StatusConcluded)
}

type NewEnrollment struct {
	StudentID  int64 `json:"student_id" validate:"required"`
	ClassID    int64 `json:"class_id" validate:"required"`
	SchoolYear int   `json:"school_year" validate:"omitempty,schoolyear"` // defaults to the class year
}

type UpdateEnrollment struct {
	Status string `json:"status" validate:"required,enrollstatus"`
}

type Repository interface {
	core.Repository[Enrollment]
	// ActiveRoster returns the active students actively enrolled in the class, ordered by name then ID.
	ActiveRoster(ctx context.Context, classID int64) ([]RosterEntry, error)
}

type Service struct {
	repo     Repository
	classes  class.Repository
	students student.Repository
	validate *validator.Validate
}

func NewService(repo Repository, classes class.Repository, students student.Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, classes: classes, students: students, validate: validate}
}

func (svc *Service) List(ctx context.Context, q core.ListQuery) (core.Page[Enrollment], error) {
	q, err := Schema.Clean(q)
	if err != nil {
		return core.Page[Enrollment]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Get(ctx context.Context, id int64) (Enrollment, error) {
	return svc.repo.Get(ctx, id)
}

// CountActive returns the number of active enrollments of a class.
func (svc *Service) CountActive(ctx context.Context, classID int64) (int, error) {
	q, _ := Schema.Clean(core.ListQuery{
		Filters:  map[string]string{"class_id": strconv.FormatInt(classID, 10), "status": StatusActive},
		PageSize: 1,
	})
	page, err := svc.repo.List(ctx, q)
	if err != nil {
		return 0, errors.Wrap(err, "counting active enrollments")
	}
	return page.Total, nil
}

func (svc *Service) Create(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if err := svc.validate.Struct(ne); err != nil {
		return Enrollment{}, err
	}

	cls, err := svc.classes.Get(ctx, ne.ClassID)
	if err != nil {
		if core.IsNotFound(err) {
			return Enrollment{}, core.NewValidationError(err, core.FieldError{Field: "class_id", Error: "class not found"})
		}
		return Enrollment{}, errors.Wrap(err, "finding class")
	}
	if !cls.IsActive {
		return Enrollment{}, core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "class is inactive"})
	}

	std, err := svc.students.Get(ctx, ne.StudentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Enrollment{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: "student not found"})
		}
		return Enrollment{}, errors.Wrap(err, "finding student")
	}
	if !std.IsActive {
		return Enrollment{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student is inactive"})
	}

	if ne.SchoolYear == 0 {
		ne.SchoolYear = cls.SchoolYear
	} else if ne.SchoolYear != cls.SchoolYear {
		return Enrollment{}, core.NewValidationError(nil, core.FieldError{
			Field: "school_year",
			Error: fmt.Sprintf("class is offered for the %d school year", cls.SchoolYear),
		})
	}

	count, err := svc.CountActive(ctx, cls.ID)
	if err != nil {
		return Enrollment{}, err
	}
	if count >= cls.Capacity {
		return Enrollment{}, core.NewConflictError("class is full (%d/%d)", count, cls.Capacity)
	}

	now := time.Now().UTC()
	return svc.repo.Create(ctx, Enrollment{
		StudentID:  ne.StudentID,
		ClassID:    ne.ClassID,
		SchoolYear: ne.SchoolYear,
		Status:     StatusActive,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
}

func (svc *Service) Update(ctx context.Context, id int64, ue UpdateEnrollment) (Enrollment, error) {
	ue.Status = core.CleanString(ue.Status, true /* lower */)
	if err := svc.validate.Struct(ue); err != nil {
		return Enrollment{}, err
	}
	e, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if !CanTransition(e.Status, ue.Status) {
		return Enrollment{}, core.NewValidationError(nil, core.FieldError{
			Field: "status",
			Error: fmt.Sprintf("cannot change status from %s to %s", e.Status, ue.Status),
		})
	}
	e.Status = ue.Status
	e.UpdatedAt = time.Now().UTC()
	return svc.repo.Update(ctx, e)
}

// ActiveRoster is the roster provider of the class diary.
func (svc *Service) ActiveRoster(ctx context.Context, classID int64) ([]RosterEntry, error) {
	if _, err := svc.classes.Get(ctx, classID); err != nil {
		return nil, err
	}
	return svc.repo.ActiveRoster(ctx, classID)
}
