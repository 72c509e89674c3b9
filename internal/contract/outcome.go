// Package contract holds the request and response types exchanged between
// the service layer and its callers.
package contract

// Outcome classifies the result of a manual sweep or an assignment request.
type Outcome string

const (
	OutcomeNoAction    Outcome = "no_action"
	OutcomeActionTaken Outcome = "action_taken"
	OutcomeFailed      Outcome = "failed"
)

type ErrorCode string

const (
	ErrInvalidPeriod   ErrorCode = "INVALID_PERIOD"
	ErrInvalidCriteria ErrorCode = "INVALID_CRITERIA"
	ErrInvalidWindow   ErrorCode = "INVALID_WINDOW"
)

// RequestError rejects a malformed request before any store access.
type RequestError struct {
	Code    ErrorCode
	Message string
}

func (e *RequestError) Error() string {
	return string(e.Code) + ": " + e.Message
}
