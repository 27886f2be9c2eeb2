package spend

import "fmt"

// FilterError rejects a request whose filter, sort or bucket parameters
// cannot be interpreted. Values that are well-formed but match no rows are
// not errors; they produce an empty subset.
type FilterError struct {
	msg string
}

func NewFilterError(format string, args ...interface{}) *FilterError {
	return &FilterError{msg: fmt.Sprintf(format, args...)}
}

func (e *FilterError) Error() string {
	return e.msg
}
