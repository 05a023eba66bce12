// Package tenancy implements tenant-scoped CRUD for users and the
// role/user/product mapping tables.
//
// Every operation takes the caller's tenant id from the resolved auth
// context and filters or stamps every row with it; payload tenant ids are
// never trusted. Check-then-write sequences run in a transaction and are
// backed by unique indexes, so a lost race still surfaces as ErrConflict.
package tenancy

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message and a sentinel kind
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func notFound(message string) error {
	return &Error{kind: ErrNotFound, Message: message}
}

func conflict(message string) error {
	return &Error{kind: ErrConflict, Message: message}
}

// Message returns the client-facing message of a tenancy error
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

// isUniqueViolation covers translated sqlite errors and raw lib/pq errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// notFoundOr maps gorm.ErrRecordNotFound to a tenancy not-found error
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(message)
	}
	return err
}
