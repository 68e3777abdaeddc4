// Валидация входных данных HTTP-слоя. Использует go-playground/validator,
// дополняя встроенные проверки валидатором имени файла.
package inkwell

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("fileName", fileNameValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func fileNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidFileName(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 255
}

func isValidFileName(str string) bool {
	pt := `^[^/\\]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}
