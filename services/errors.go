package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a quote (or other record) id does not
// resolve on read, update or delete.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input. Field carries a hint when one
// is available.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// ReferenceNotFoundError reports a supplied foreign id that does not
// resolve to an existing record, named by payload field.
type ReferenceNotFoundError struct {
	Field string
}

func (e *ReferenceNotFoundError) Error() string {
	return e.Field + " not found"
}

// ConstraintViolationError reports a store-level foreign key violation
// surfaced after validation, named by the violated relation.
type ConstraintViolationError struct {
	Relation string
}

func (e *ConstraintViolationError) Error() string {
	return "foreign key constraint violated: " + e.Relation
}

// DeliveryError reports a mail dispatch failure. Stage distinguishes PDF
// conversion problems from transport problems for diagnostics.
type DeliveryError struct {
	Stage string // "convert" or "send"
	Err   error
}

func (e *DeliveryError) Error() string {
	return "delivery failed (" + e.Stage + "): " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Postgres error codes surfaced through lib/pq.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translateStoreError maps lib/pq constraint failures onto the error
// taxonomy. Anything unrecognized propagates untouched and ends up as an
// opaque 500.
func translateStoreError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
		relation := pqErr.Constraint
		if relation == "" {
			relation = pqErr.Table
		}
		return &ConstraintViolationError{Relation: relation}
	}
	return err
}

// isUniqueViolation reports whether err is a duplicate-key failure, on
// Postgres (lib/pq) or on the translated GORM error used by the sqlite
// test driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
