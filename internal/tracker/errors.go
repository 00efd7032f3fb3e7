package tracker

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v47/github"
)

// Operations reported in tracker errors.
const (
	OpListIssues    = "listing issues"
	OpCreateIssue   = "creating issue"
	OpCreateComment = "creating comment"
	OpListLabels    = "listing labels"
	OpCreateLabel   = "creating label"
)

// RateLimitedError is returned when GitHub's abuse detection (secondary rate limit) trips.
// Callers may back off and retry; the importer itself does not.
type RateLimitedError struct {
	Operation  string
	Subject    string
	Message    string
	RetryAfter *time.Duration
}

func (e *RateLimitedError) Error() string {
	msg := fmt.Sprintf("rate limiter tripped while %s for %q: %s", e.Operation, e.Subject, e.Message)
	if e.RetryAfter != nil {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// RequestFailedError is any other unsuccessful tracker call.
// StatusCode is 0 when no response was received.
type RequestFailedError struct {
	Operation  string
	Subject    string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("Error %d %s for %q: %s", e.StatusCode, e.Operation, e.Subject, e.Message)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// abuseMarkers identify a secondary rate limit in a 403 message.
var abuseMarkers = []string{"abuse detection", "secondary rate limit"}

// Classify converts an error returned by go-github into RateLimitedError or RequestFailedError.
func Classify(operation, subject string, err error) error {
	if err == nil {
		return nil
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitedError{Operation: operation, Subject: subject, Message: abuseErr.Message, RetryAfter: abuseErr.RetryAfter}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		if status == http.StatusForbidden && isAbuseMessage(respErr.Message) {
			return &RateLimitedError{Operation: operation, Subject: subject, Message: respErr.Message}
		}
		return &RequestFailedError{Operation: operation, Subject: subject, StatusCode: status, Message: respErr.Message, Err: err}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		status := 0
		if rateErr.Response != nil {
			status = rateErr.Response.StatusCode
		}
		return &RequestFailedError{Operation: operation, Subject: subject, StatusCode: status, Message: rateErr.Message, Err: err}
	}

	return &RequestFailedError{Operation: operation, Subject: subject, Message: err.Error(), Err: err}
}

func isAbuseMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range abuseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err carries a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
