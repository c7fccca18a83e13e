package database

import (
	"errors"
	"fmt"
	"strings"
)

// The stable error vocabulary exposed to callers. Raw driver faults never
// cross the package boundary; anything unexpected is wrapped in StorageError.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the requesting user is not the owner of the record.
	ErrForbidden = errors.New("not the owner")
	// ErrDuplicateName means a category or item name is already in use.
	ErrDuplicateName = errors.New("name already in use")
	// ErrUnauthenticated means the operation was attempted without a valid user.
	ErrUnauthenticated = errors.New("no signed-in user")
)

// StorageError wraps an unexpected storage fault. Op names the failed
// operation; the underlying driver error is available via Unwrap for logging
// but must not be shown to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageFailure reports whether err is (or wraps) a StorageError.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// isUniqueViolation detects a UNIQUE constraint fault from the sqlite driver.
// The driver exposes no typed constraint error, so this matches the message;
// duplicate names are normally caught by the in-transaction pre-check and
// this is only a backstop.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
