// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Input errors
const (
	ErrCodeInvalidResponses      ErrorCode = "INVALID_RESPONSES"
	ErrCodeInvalidQuestionCount  ErrorCode = "INVALID_QUESTION_COUNT"
	ErrCodeInvalidAssessmentType ErrorCode = "INVALID_ASSESSMENT_TYPE"
	ErrCodeMissingUser           ErrorCode = "MISSING_USER"
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"
)

// Lookup errors
const (
	ErrCodeAssessmentNotFound ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"
	ErrCodeProfileNotFound    ErrorCode = "PROFILE_NOT_FOUND"
)

// AI errors
const (
	ErrCodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrCodeMalformedAssessment ErrorCode = "MALFORMED_ASSESSMENT"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
)

// Database errors
const (
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
)

// Workflow engine errors
const (
	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"
	ErrCodeBrokerRejected    ErrorCode = "BROKER_REJECTED"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// Is matches any StandardError carrying the same code, so callers can test
// with errors.Is(err, &StandardError{Code: ErrCodeX}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first StandardError in err's chain, or
// ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidResponsesError is returned when an evaluation carries no responses.
func NewInvalidResponsesError(details string) *StandardError {
	return newError(ErrCodeInvalidResponses, "Responses must be a non-empty mapping", details, false, nil)
}

// NewInvalidQuestionCountError rejects a question count outside [min, max].
func NewInvalidQuestionCountError(count, min, max int) *StandardError {
	e := newError(ErrCodeInvalidQuestionCount,
		fmt.Sprintf("Question count must be between %d and %d", min, max),
		fmt.Sprintf("requested %d", count), false, nil)
	e.Metadata = map[string]interface{}{"requested": count, "min": min, "max": max}
	return e
}

func NewInvalidAssessmentTypeError(value string) *StandardError {
	return newError(ErrCodeInvalidAssessmentType, "Unknown assessment type", value, false, nil)
}

func NewMissingUserError(operation string) *StandardError {
	return newError(ErrCodeMissingUser, "User id is required", operation, false, nil)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", detailsOf(err), false, err)
}

func NewAssessmentNotFoundError(assessmentID string) *StandardError {
	return newError(ErrCodeAssessmentNotFound, "Assessment not found", assessmentID, false, nil)
}

func NewEvaluationNotFoundError(evaluationID string) *StandardError {
	return newError(ErrCodeEvaluationNotFound, "Evaluation not found", evaluationID, false, nil)
}

func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Profile not found", userID, false, nil)
}

// NewGenerationFailedError wraps a generator failure; the LLM backend may
// recover so it is retryable.
func NewGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeGenerationFailed, "Question generation failed", detailsOf(err), true, err)
}

func NewMalformedAssessmentError(details string) *StandardError {
	return newError(ErrCodeMalformedAssessment, "Generated assessment is malformed", details, true, nil)
}

func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM request timed out", detailsOf(err), true, err)
}

func NewPersistenceError(operation string, err error) *StandardError {
	e := newError(ErrCodePersistenceFailed, fmt.Sprintf("Persistence failed: %s", operation), detailsOf(err), true, err)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewDatabaseConnectionError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", detailsOf(err), true, err)
}

func NewBrokerUnavailableError(operation string, err error) *StandardError {
	e := newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable during "+operation, detailsOf(err), true, err)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewBrokerRejectedError(operation string, err error) *StandardError {
	e := newError(ErrCodeBrokerRejected, "Workflow broker rejected "+operation, detailsOf(err), false, err)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidResponses:         "INVALID_RESPONSES",
	ErrCodeInvalidQuestionCount:     "INVALID_QUESTION_COUNT",
	ErrCodeInvalidAssessmentType:    "INVALID_ASSESSMENT_TYPE",
	ErrCodeMissingUser:              "MISSING_USER",
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeAssessmentNotFound:       "ASSESSMENT_NOT_FOUND",
	ErrCodeEvaluationNotFound:       "EVALUATION_NOT_FOUND",
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeGenerationFailed:         "GENERATION_FAILED",
	ErrCodeMalformedAssessment:      "GENERATION_FAILED",
	ErrCodeLLMTimeout:               "LLM_TIMEOUT",
	ErrCodePersistenceFailed:        "PERSISTENCE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeGenerationFailed,
		ErrCodeBrokerUnavailable:
		return 3

	case ErrCodeMalformedAssessment:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "PARSE"):
		return "INPUT"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "MALFORMED"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "PERSISTENCE"):
		return "DATABASE"
	case strings.Contains(codeStr, "BROKER"):
		return "WORKFLOW"
	default:
		return "OTHER"
	}
}
