package record

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record was modified concurrently")
	ErrNotBound = errors.New("record is not bound to a persister")
	ErrExists   = errors.New("record already exists")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
