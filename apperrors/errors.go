package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for every failure kind the engine can surface.
// Handlers wrap these with context via fmt.Errorf("%w: ..."); callers
// match with errors.Is.
var (
	ErrFraudBlocked            = errors.New("account is flagged as fraud and cannot perform this action")
	ErrInsufficientRole        = errors.New("insufficient role for this action")
	ErrNotOwner                = errors.New("target does not belong to you")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidTransition       = errors.New("invalid state transition")
	ErrDuplicateRequest        = errors.New("a pending request of this type already exists")
	ErrRequestAlreadyFinalized = errors.New("request has already been finalized")
	ErrRoleAlreadyHeld         = errors.New("role is already held")
	ErrAlreadyFraud            = errors.New("user is already marked as fraud")
	ErrOrderNotPayable         = errors.New("order is not payable")
	ErrOrderNotFound           = errors.New("order not found")
	ErrPrincipalNotFound       = errors.New("no user record for verified identity")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrInvalidRequest          = errors.New("invalid request")
)

// Code is the stable machine-readable error code exposed to calling UIs.
type Code string

const (
	CodeFraudBlocked            Code = "FRAUD_BLOCKED"
	CodeInsufficientRole        Code = "INSUFFICIENT_ROLE"
	CodeNotOwner                Code = "NOT_OWNER"
	CodeForbidden               Code = "FORBIDDEN"
	CodeInvalidTransition       Code = "INVALID_TRANSITION"
	CodeDuplicateRequest        Code = "DUPLICATE_REQUEST"
	CodeRequestAlreadyFinalized Code = "REQUEST_ALREADY_FINALIZED"
	CodeRoleAlreadyHeld         Code = "ROLE_ALREADY_HELD"
	CodeAlreadyFraud            Code = "ALREADY_FRAUD"
	CodeOrderNotPayable         Code = "ORDER_NOT_PAYABLE"
	CodeOrderNotFound           Code = "ORDER_NOT_FOUND"
	CodePrincipalNotFound       Code = "PRINCIPAL_NOT_FOUND"
	CodeNotFound                Code = "NOT_FOUND"
	CodeConflict                Code = "CONFLICT"
	CodeInvalidRequest          Code = "INVALID_REQUEST"
	CodeInternal                Code = "INTERNAL"
)

type mapping struct {
	err    error
	code   Code
	status int
}

// Order matters only for readability; the sentinels are disjoint.
var mappings = []mapping{
	{ErrFraudBlocked, CodeFraudBlocked, http.StatusForbidden},
	{ErrInsufficientRole, CodeInsufficientRole, http.StatusForbidden},
	{ErrNotOwner, CodeNotOwner, http.StatusForbidden},
	{ErrForbidden, CodeForbidden, http.StatusForbidden},
	{ErrInvalidTransition, CodeInvalidTransition, http.StatusUnprocessableEntity},
	{ErrDuplicateRequest, CodeDuplicateRequest, http.StatusConflict},
	{ErrRequestAlreadyFinalized, CodeRequestAlreadyFinalized, http.StatusConflict},
	{ErrRoleAlreadyHeld, CodeRoleAlreadyHeld, http.StatusConflict},
	{ErrAlreadyFraud, CodeAlreadyFraud, http.StatusConflict},
	{ErrOrderNotPayable, CodeOrderNotPayable, http.StatusUnprocessableEntity},
	{ErrOrderNotFound, CodeOrderNotFound, http.StatusNotFound},
	// 503 marks the registration race as transient and retryable, not an
	// authorization failure.
	{ErrPrincipalNotFound, CodePrincipalNotFound, http.StatusServiceUnavailable},
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrConflict, CodeConflict, http.StatusConflict},
	{ErrInvalidRequest, CodeInvalidRequest, http.StatusBadRequest},
}

// CodeOf resolves the stable error code for err. Unknown errors map to
// INTERNAL so transport never leaks storage/driver details as a typed code.
func CodeOf(err error) Code {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return CodeInternal
}

// HTTPStatus resolves the HTTP status for err.
func HTTPStatus(err error) int {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
