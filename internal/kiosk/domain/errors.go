package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below wrap one of these so callers can use errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrOutOfRange         = errors.New("out of range")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrIncompletePurchase = errors.New("incomplete purchase")
	ErrNotFound           = errors.New("not found")
)

// ValidationError reports a rejected argument. Nothing is applied when it is returned.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

// StateError reports an operation refused in the current transaction state.
type StateError struct {
	Op  string
	Msg string
	Err error
}

func (e StateError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Unwrap())
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e StateError) Unwrap() error {
	if e.Err == nil {
		return ErrIncompletePurchase
	}
	return e.Err
}

// PaymentError reports a rejected cash insertion.
type PaymentError struct {
	Amount float64
	Msg    string
}

func (e PaymentError) Error() string {
	return fmt.Sprintf("payment of %v rejected: %s", e.Amount, e.Msg)
}

func (e PaymentError) Unwrap() error { return ErrInvalidAmount }

// IOError reports a failed document write. The output must be treated as unusable.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e IOError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target StateError
	return errors.As(err, &target)
}

func IsPayment(err error) bool {
	var target PaymentError
	return errors.As(err, &target)
}

func IsIO(err error) bool {
	var target IOError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}
