package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Every precondition, authorization and
// arithmetic failure surfaces as one of these; the engine never retries internally.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Lookup failures.
var (
	ErrCampaignNotFound    = NewError(ErrCodeNotFound, "campaign not found")
	ErrRoundNotFound       = NewError(ErrCodeNotFound, "round not found")
	ErrCertificateNotFound = NewError(ErrCodeNotFound, "certificate not found")
	ErrProposalNotFound    = NewError(ErrCodeNotFound, "proposal not found")
	ErrEscrowNotFound      = NewError(ErrCodeNotFound, "escrow not found")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
)

// Round ledger preconditions.
var (
	ErrRoundStillActive    = NewError(ErrCodeConflict, "previous round is not finalized")
	ErrRoundNotActive      = NewError(ErrCodeConflict, "round is not active")
	ErrRoundExpired        = NewError(ErrCodeConflict, "round has expired")
	ErrAlreadyFinalized    = NewError(ErrCodeConflict, "round is already finalized")
	ErrNotEligible         = NewError(ErrCodeConflict, "round is not eligible for finalization")
	ErrInvalidParameters   = NewError(ErrCodeInvalid, "invalid round parameters")
	ErrInsufficientPayment = NewError(ErrCodeInvalid, "payment does not match share price")
)

// Certificate and redemption preconditions.
var (
	ErrNotOwner        = NewError(ErrCodeForbidden, "caller does not own the certificate")
	ErrAlreadyRedeemed = NewError(ErrCodeConflict, "certificate was already redeemed")
	ErrRefundNotOpen   = NewError(ErrCodeConflict, "certificate is not currently refundable")
)

// DAO lifecycle preconditions.
var (
	ErrWrongPhase = NewError(ErrCodeConflict, "operation not allowed in current phase")
	ErrInThePast  = NewError(ErrCodeInvalid, "scheduled time is in the past")
	ErrTooEarly   = NewError(ErrCodeConflict, "action attempted too early")
	ErrTooShort   = NewError(ErrCodeConflict, "live event duration below minimum")
)

// Governance preconditions.
var (
	ErrNotFounder        = NewError(ErrCodeForbidden, "caller is not the campaign founder")
	ErrNoElectorate      = NewError(ErrCodeConflict, "campaign has no outstanding certificates")
	ErrInvalidThresholds = NewError(ErrCodeInvalid, "quorum and majority must be within (0,100]")
	ErrAlreadyVoted      = NewError(ErrCodeConflict, "caller already voted on this proposal")
	ErrProposalClosed    = NewError(ErrCodeConflict, "proposal is closed")
	ErrNoVotingPower     = NewError(ErrCodeForbidden, "caller holds no outstanding certificates")
	ErrNotPassed         = NewError(ErrCodeConflict, "proposal did not pass")
)

// Escrow preconditions.
var ErrAlreadyReleased = NewError(ErrCodeConflict, "escrow was already released")

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
