package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
)

const gradeLevelTag = "grade_level"

// RegisterValidators installs the custom binding tags on v and reports
// field names by their json tag.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation(gradeLevelTag, gradeLevel)
}

// gradeLevel accepts AD, A, B, C in any case, or empty for "no grade".
func gradeLevel(fl validator.FieldLevel) bool {
	_, err := grading.ParseLevel(fl.Field().String())
	return err == nil
}
