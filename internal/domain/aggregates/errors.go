package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across domains.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeForbidden          ErrorCode = "forbidden"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Reasons refine a code into the machine-readable condition a client reacts to.
const (
	ReasonIncompleteSurvey   = "incomplete_survey"
	ReasonInvalidAnswer      = "invalid_answer"
	ReasonCommentRequired    = "comment_required"
	ReasonBodyRequired       = "body_required"
	ReasonInvalidAction      = "invalid_action"
	ReasonSkillNotClaimed    = "skill_not_claimed"
	ReasonSubmissionPending  = "submission_pending"
	ReasonSubmissionReviewed = "submission_reviewed"
	ReasonNotYourTurn        = "not_your_turn"
	ReasonSkillLocked        = "skill_locked"
	ReasonThreadNotOpen      = "thread_not_open"
	ReasonThreadExists       = "thread_exists"
	ReasonVersionConflict    = "version_conflict"
	ReasonWrongRole          = "wrong_role"
	ReasonNotOwner           = "not_owner"
	ReasonOtherCompany       = "other_company"
	ReasonMissingScope       = "missing_scope"
	ReasonUnknownSkill       = "unknown_skill"
	ReasonUnpublished        = "unpublished"
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Reason  string
	Message string
	// Fields names the offending inputs (e.g. unanswered skill ids).
	Fields []string
	Cause  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	code := string(e.Code)
	if e.Reason != "" {
		code = code + "/" + e.Reason
	}
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, code)
	default:
		return code
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Reasoned builds an aggregate error carrying a machine reason and optional fields.
func Reasoned(code ErrorCode, op, reason, message string, fields ...string) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Reason:  reason,
		Message: strings.TrimSpace(message),
		Fields:  fields,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// IsReason checks the machine reason of an aggregate error.
func IsReason(err error, reason string) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Reason == reason
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// As exposes the aggregate error for transport mapping.
func As(err error) (*Error, bool) {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return nil, false
	}
	return aggErr, true
}
