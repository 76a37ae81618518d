package sqlxrepos

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/student"
)

type studentRow struct {
	ID                 int64       `db:"id"`
	SchoolID           int64       `db:"school_id"`
	Name               string      `db:"name"`
	RegistrationNumber string      `db:"registration_number"`
	BirthDate          time.Time   `db:"birth_date"`
	Gender             null.String `db:"gender"`
	Document           null.String `db:"document"`
	Email              null.String `db:"email"`
	Phone              null.String `db:"phone"`
	Address            null.String `db:"address"`
	City               null.String `db:"city"`
	State              null.String `db:"state"`
	PostalCode         null.String `db:"postal_code"`
	GuardianName       null.String `db:"guardian_name"`
	GuardianRelation   null.String `db:"guardian_relation"`
	GuardianPhone      null.String `db:"guardian_phone"`
	GuardianEmail      null.String `db:"guardian_email"`
	BloodType          null.String `db:"blood_type"`
	Allergies          null.String `db:"allergies"`
	MedicalNotes       null.String `db:"medical_notes"`
	Notes              null.String `db:"notes"`
	IsActive           bool        `db:"is_active"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

type studentRepository struct {
	*table[student.Student, studentRow]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{&table[student.Student, studentRow]{
		db:       db,
		schema:   student.Schema,
		resource: "student",
		notFound: student.ErrNotFound,
		id:       func(s student.Student) int64 { return s.ID },
		toRow:    toStudentRow,
		fromRow:  fromStudentRow,
	}}
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:                 s.ID,
		SchoolID:           s.SchoolID,
		Name:               s.Name,
		RegistrationNumber: s.RegistrationNumber,
		BirthDate:          dateToTime(s.BirthDate),
		Gender:             nullString(s.Gender),
		Document:           nullString(s.Document),
		Email:              nullString(s.Email),
		Phone:              nullString(s.Phone),
		Address:            nullString(s.Address),
		City:               nullString(s.City),
		State:              nullString(s.State),
		PostalCode:         nullString(s.PostalCode),
		GuardianName:       nullString(s.GuardianName),
		GuardianRelation:   nullString(s.GuardianRelation),
		GuardianPhone:      nullString(s.GuardianPhone),
		GuardianEmail:      nullString(s.GuardianEmail),
		BloodType:          nullString(s.BloodType),
		Allergies:          nullString(s.Allergies),
		MedicalNotes:       nullString(s.MedicalNotes),
		Notes:              nullString(s.Notes),
		IsActive:           s.IsActive,
		CreatedAt:          s.CreatedAt.UTC(),
		UpdatedAt:          s.UpdatedAt.UTC(),
	}
}

func fromStudentRow(r studentRow) student.Student {
	return student.Student{
		ID:                 r.ID,
		SchoolID:           r.SchoolID,
		Name:               r.Name,
		RegistrationNumber: r.RegistrationNumber,
		BirthDate:          civil.DateOf(r.BirthDate),
		Gender:             r.Gender.String,
		Document:           r.Document.String,
		Email:              r.Email.String,
		Phone:              r.Phone.String,
		Address:            r.Address.String,
		City:               r.City.String,
		State:              r.State.String,
		PostalCode:         r.PostalCode.String,
		GuardianName:       r.GuardianName.String,
		GuardianRelation:   r.GuardianRelation.String,
		GuardianPhone:      r.GuardianPhone.String,
		GuardianEmail:      r.GuardianEmail.String,
		BloodType:          r.BloodType.String,
		Allergies:          r.Allergies.String,
		MedicalNotes:       r.MedicalNotes.String,
		Notes:              r.Notes.String,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}
