package leave

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hrms/core"
)

var (
	endAfterStartTag  = "end_after_start"
	endAfterStartText = "end date cannot be before the start date"

	maxSpanTag  = "max_span"
	maxSpanText = "a leave request cannot span more than a year"
	maxSpanDays = 366
)

// InitValidators registers the leave validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(leaveStructValidation, NewLeaveRequest{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)
	core.RegisterCustomTranslation(validate, translator, maxSpanTag, maxSpanText)
}

func leaveStructValidation(sl validator.StructLevel) {
	nl, ok := sl.Current().Interface().(NewLeaveRequest)
	if !ok {
		return
	}
	start, err := core.ParseDate(nl.StartDate)
	if err != nil {
		return
	}
	end, err := core.ParseDate(nl.EndDate)
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(nl.EndDate, "end_date", "EndDate", endAfterStartTag, "")
		return
	}
	if core.DaysBetween(start, end) > maxSpanDays {
		sl.ReportError(nl.EndDate, "end_date", "EndDate", maxSpanTag, "")
	}
}

func itoa(i int) string { return strconv.Itoa(i) }
