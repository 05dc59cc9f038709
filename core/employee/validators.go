package employee

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hrms/core"
)

var (
	bornBeforeJoiningTag  = "born_before_joining"
	bornBeforeJoiningText = "date of birth must be before the date of joining"
)

// InitValidators registers the employee validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(employeeStructValidation, NewEmployee{})
	core.RegisterCustomTranslation(validate, translator, bornBeforeJoiningTag, bornBeforeJoiningText)
}

func employeeStructValidation(sl validator.StructLevel) {
	ne, ok := sl.Current().Interface().(NewEmployee)
	if !ok || ne.DateOfBirth == "" {
		return
	}
	born, err := core.ParseDate(ne.DateOfBirth)
	if err != nil {
		return
	}
	joined, err := core.ParseDate(ne.DateOfJoining)
	if err != nil {
		return
	}
	if !born.Before(joined) {
		sl.ReportError(ne.DateOfBirth, "date_of_birth", "DateOfBirth", bornBeforeJoiningTag, "")
	}
}
