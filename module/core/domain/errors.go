package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPlowNotFound       = errors.New("plow not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Plow %s does not exist", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrPlowNotFound
}
