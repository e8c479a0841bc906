package retry

import (
	"context"
	"errors"
	"net"
)

// transportCodes are embedded-code strings that indicate a dropped
// connection rather than a semantic provider error.
var transportCodes = map[string]bool{
	"ECONNRESET":               true,
	"ETIMEDOUT":                true,
	"ERR_STREAM_PREMATURE_CLOSE": true,
}

// UpstreamError is the classifiable shape of an error returned by the wire
// codec: an HTTP status (0 if not applicable), a dialect-specific embedded
// code string, and a human message. All three fields empty/zero means an
// empty error body — common for abruptly dropped connections — which is
// itself treated as retryable.
type UpstreamError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "upstream error"
}

// IsEmpty reports whether every field is at its zero value.
func (e *UpstreamError) IsEmpty() bool {
	return e.StatusCode == 0 && e.Code == "" && e.Message == ""
}

// Classifier decides whether an error is worth retrying.
type Classifier struct {
	// RetryStatusCodes is the set of HTTP-equivalent status codes treated
	// as retryable. Defaults to {429, 500, 502, 503, 504}.
	RetryStatusCodes map[int]bool
}

// DefaultClassifier returns the typically configured set of retryable
// status codes.
func DefaultClassifier() Classifier {
	return Classifier{RetryStatusCodes: map[int]bool{
		429: true, 500: true, 502: true, 503: true, 504: true,
	}}
}

// IsRetryable reports whether err should trigger another attempt.
func (c Classifier) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsPermanent(err) {
		return false
	}

	codes := c.RetryStatusCodes
	if codes == nil {
		codes = DefaultClassifier().RetryStatusCodes
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		if ue.IsEmpty() {
			return true
		}
		if codes[ue.StatusCode] {
			return true
		}
		if transportCodes[ue.Code] {
			return true
		}
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || isConnReset(err)
	}

	return false
}

func isConnReset(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
