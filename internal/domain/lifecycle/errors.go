package lifecycle

import (
	"errors"
	"fmt"
)

// Kind は呼び出し側が分岐するためのエラー種別。
type Kind string

const (
	KindNotFound                     Kind = "NotFound"
	KindInvalidTransition            Kind = "InvalidTransition"
	KindUnauthorizedTransition       Kind = "UnauthorizedTransition"
	KindTerminalStateViolation       Kind = "TerminalStateViolation"
	KindMissingPrescriptionData      Kind = "MissingPrescriptionData"
	KindFulfillmentSideEffectFailure Kind = "FulfillmentSideEffectFailure"
	KindConcurrentModification       Kind = "ConcurrentModification"
	KindPersistenceFailure           Kind = "PersistenceFailure"
	KindValidationFailed             Kind = "ValidationFailed"
)

// errors.Is で種別だけを比べるための番兵
var (
	ErrNotFound                     = &Error{Kind: KindNotFound}
	ErrInvalidTransition            = &Error{Kind: KindInvalidTransition}
	ErrUnauthorizedTransition       = &Error{Kind: KindUnauthorizedTransition}
	ErrTerminalStateViolation       = &Error{Kind: KindTerminalStateViolation}
	ErrMissingPrescriptionData      = &Error{Kind: KindMissingPrescriptionData}
	ErrFulfillmentSideEffectFailure = &Error{Kind: KindFulfillmentSideEffectFailure}
	ErrConcurrentModification       = &Error{Kind: KindConcurrentModification}
	ErrPersistenceFailure           = &Error{Kind: KindPersistenceFailure}
	ErrValidationFailed             = &Error{Kind: KindValidationFailed}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// 種別が同じなら一致
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(KindValidationFailed, format, args...)
}

func MissingPrescriptionData(format string, args ...any) error {
	return newError(KindMissingPrescriptionData, format, args...)
}

func ConcurrentModification(orderID int64) error {
	return newError(KindConcurrentModification, "order %d was modified concurrently; re-fetch and retry", orderID)
}

// 副作用（在庫）の失敗。原因エラーを保持する。
func SideEffectFailure(err error, format string, args ...any) error {
	e := newError(KindFulfillmentSideEffectFailure, format, args...)
	e.Err = err
	return e
}

func PersistenceFailure(err error, format string, args ...any) error {
	e := newError(KindPersistenceFailure, format, args...)
	e.Err = err
	return e
}

// KindOf は err の種別。lifecycle.Error でなければ空。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
