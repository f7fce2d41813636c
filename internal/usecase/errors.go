package usecase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xavierca1/contractorconnect/internal/entity"
)

// DomainError is a business rule violation with a stable code, e.g.
// EMAIL_IN_USE.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var target *DomainError
	return errors.As(err, &target)
}

// TechnicalError wraps infrastructure failures (record store, token signing).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var target *TechnicalError
	return errors.As(err, &target)
}

func storageError(op string, err error) error {
	return &TechnicalError{Code: "DATABASE_ERROR", Message: op, Err: err}
}

// NotFoundError is returned both for missing ids and for ids owned by
// someone else.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

var errLeadNotFound = &NotFoundError{Resource: "lead"}

// wellFormedID reports whether id can name a stored record. Anything else is
// answered as not found without a store round trip.
func wellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// AuthError means the caller has no valid credential.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return e.Reason
}

func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

var errMissingIdentity = &AuthError{Reason: "missing authenticated identity"}

func requireIdentity(id entity.Identity) error {
	if !id.Valid() {
		return errMissingIdentity
	}
	return nil
}

// DeliveryError describes a failed provider call. The notification engine
// stores it on the failed record and never returns it to callers.
type DeliveryError struct {
	Channel entity.Channel
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
