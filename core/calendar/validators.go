package calendar

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/diario/core"
)

var (
	dateOrderTag  = "dateorder"
	dateOrderText = "end_date must not be before start_date"

	timeOrderTag  = "timeorder"
	timeOrderText = "end_time must be after start_time"

	yearMatchTag  = "yearmatch"
	yearMatchText = "period must start within its school year"
)

// InitValidators registers the calendar validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(calendarStructValidation, NewPeriod{}, NewEvent{})
	core.RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)
	core.RegisterCustomTranslation(validate, translator, timeOrderTag, timeOrderText)
	core.RegisterCustomTranslation(validate, translator, yearMatchTag, yearMatchText)
}

func calendarStructValidation(sl validator.StructLevel) {
	switch v := sl.Current().Interface().(type) {
	case NewPeriod:
		if v.StartDate.IsValid() && v.EndDate.IsValid() && v.EndDate.Before(v.StartDate) {
			sl.ReportError(v.EndDate, "end_date", "EndDate", dateOrderTag, "")
		}
		if v.StartDate.IsValid() && v.SchoolYear != 0 && v.StartDate.Year != v.SchoolYear {
			sl.ReportError(v.StartDate, "start_date", "StartDate", yearMatchTag, "")
		}
	case NewEvent:
		// HH:MM strings order lexically
		if v.StartTime != "" && v.EndTime != "" && v.EndTime <= v.StartTime {
			sl.ReportError(v.EndTime, "end_time", "EndTime", timeOrderTag, "")
		}
	}
}
