// Package validate runs the validate tags on request DTOs (reminder and
// medication creation, destination registration) through one shared
// validator instance.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is initialised once at package load. Custom type registrations must
// happen during init() before the first call to Struct.
var v = validator.New()

// Struct validates s against its validate tags, flattening all failures into
// a single readable error. Callers wrap the result in domain.ErrBadRequest.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
