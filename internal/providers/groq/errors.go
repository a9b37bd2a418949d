package groq

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a generation did not produce text.
type ErrorKind int

const (
	KindMissingCredential ErrorKind = iota + 1
	KindHTTPStatus
	KindTransport
	KindUnexpectedResponse
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindHTTPStatus:
		return "http_status"
	case KindTransport:
		return "transport"
	case KindUnexpectedResponse:
		return "unexpected_response"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Generate. Its message is the text the HTTP
// surface hands back to callers in place of generated content.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingCredential:
		return "Error: Missing API Key"
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP Error: %d - %s", e.StatusCode, e.Body)
	case KindTransport:
		return "Request Error: " + e.detail()
	case KindUnexpectedResponse:
		return "Error: Unexpected API response"
	default:
		return "Unexpected Error: " + e.detail()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// KindOf reports the ErrorKind carried by err, or 0 when err is nil or not a
// gateway error.
func KindOf(err error) ErrorKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// Describe flattens err into the legacy result string.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Error()
	}
	return (&Error{Kind: KindUnexpected, Err: err}).Error()
}
