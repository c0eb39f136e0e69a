package lead

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

var (
	leadStatusTag  = "leadstatus"
	leadStatusText = "status must be one of new, contacted, enrolled or lost"
)

// InitValidators registers the lead validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(leadStatusTag, func(fl validator.FieldLevel) bool {
		return core.StringInSlice(fl.Field().String(), Statuses)
	})
	core.RegisterCustomTranslation(validate, translator, leadStatusTag, leadStatusText)
}
