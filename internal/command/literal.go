package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flowscribe/flowscribe/internal/model"
)

// numberPattern accepts plain decimal numerals with an optional sign and
// fraction. Exponent and separator forms stay strings.
var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// CoerceLiteral classifies a raw assignment value. Booleans win over
// numbers, numbers over strings; anything else is kept verbatim as a
// string. "true" and "false" match case-insensitively.
func CoerceLiteral(raw string) model.Value {
	v := strings.TrimSpace(raw)
	if strings.EqualFold(v, "true") {
		return model.Bool(true)
	}
	if strings.EqualFold(v, "false") {
		return model.Bool(false)
	}
	if numberPattern.MatchString(v) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return model.Number(f)
		}
	}
	return model.String(v)
}
