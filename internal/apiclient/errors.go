package apiclient

import (
	"errors"
	"fmt"
)

const (
	CodeNetworkFailure    = "NETWORK_FAILURE"
	CodeAuthFailure       = "AUTH_FAILURE"
	CodeServerFailure     = "SERVER_FAILURE"
	CodeMalformedResponse = "MALFORMED_RESPONSE"
)

// CodedError is a typed error used for stable mapping at component boundaries.
type CodedError struct {
	Code    string
	Message string
	Status  int
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, status int, cause error) error {
	return &CodedError{Code: code, Message: msg, Status: status, Cause: cause}
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// MessageOf returns a short human message for err.
func MessageOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
