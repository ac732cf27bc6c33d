package content

import "errors"

var (
	ErrDuplicateURL    = errors.New("url already exists")
	ErrSessionNotFound = errors.New("import session not found")
)
