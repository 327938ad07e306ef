package classroom

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/eaduck/eaduck/core"
)

var academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

func init() {
	if err := core.Validate.RegisterValidation("academicyear", academicYearValidation); err != nil {
		panic(err)
	}
	core.RegisterCustomTranslation("academicyear", "{0} must be of the form YYYY-YYYY with consecutive years")
}

// academicYearValidation checks the "2024-2025" form with consecutive years
// in a sane range.
func academicYearValidation(fl validator.FieldLevel) bool {
	match := academicYearRegex.FindStringSubmatch(fl.Field().String())
	if match == nil {
		return false
	}
	start, _ := strconv.Atoi(match[1])
	end, _ := strconv.Atoi(match[2])
	return start >= 1900 && end <= 2100 && end == start+1
}
