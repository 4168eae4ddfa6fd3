package matching

import "errors"

var ErrInvalidMapping = errors.New("matching: invalid mapping")
