package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

type IExtend interface {
	Extend(message string) error
}

// Extend prefixes the error message with the given one, keeping the type of marketplace errors.
// Only the outermost error is extended in place, wrapped errors keep their wrappers.
func Extend(err error, message string) error {
	if ex, ok := err.(IExtend); ok {
		return ex.Extend(message)
	}
	return errors.Wrap(err, message)
}

func fmtExtend(self error, message string) string {
	return fmt.Sprintf("%s: %s", message, self)
}
