package retry

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable_ConfiguredStatusCodes(t *testing.T) {
	c := DefaultClassifier()
	for _, code := range []int{429, 500, 502, 503, 504} {
		err := &UpstreamError{StatusCode: code}
		if !c.IsRetryable(err) {
			t.Errorf("expected status %d retryable", code)
		}
	}
	for _, code := range []int{400, 401, 404, 422} {
		err := &UpstreamError{StatusCode: code, Message: "bad request"}
		if c.IsRetryable(err) {
			t.Errorf("expected status %d non-retryable", code)
		}
	}
}

func TestIsRetryable_NestedStatusCode(t *testing.T) {
	c := DefaultClassifier()
	err := fmt.Errorf("wrapped: %w", &UpstreamError{StatusCode: 503})
	if !c.IsRetryable(err) {
		t.Fatalf("expected wrapped 503 to be retryable")
	}
}

func TestIsRetryable_TransportCode(t *testing.T) {
	c := DefaultClassifier()
	err := &UpstreamError{Code: "ECONNRESET"}
	if !c.IsRetryable(err) {
		t.Fatalf("expected ECONNRESET retryable")
	}
}

func TestIsRetryable_EmptyBody(t *testing.T) {
	c := DefaultClassifier()
	if !c.IsRetryable(&UpstreamError{}) {
		t.Fatalf("expected empty error body retryable")
	}
}

func TestIsRetryable_PermanentOverrides(t *testing.T) {
	c := DefaultClassifier()
	err := Permanent(&UpstreamError{StatusCode: 500})
	if c.IsRetryable(err) {
		t.Fatalf("permanent wrapper must never be retryable")
	}
}

func TestIsRetryable_OutsideConfiguredSetIsNotRetryable(t *testing.T) {
	c := Classifier{RetryStatusCodes: map[int]bool{418: true}}
	if c.IsRetryable(&UpstreamError{StatusCode: 500, Message: "server error"}) {
		t.Fatalf("500 should not be retryable under a custom code set that excludes it")
	}
	if !c.IsRetryable(&UpstreamError{StatusCode: 418, Message: "teapot"}) {
		t.Fatalf("418 should be retryable under the custom code set")
	}
}

func TestIsRetryable_PlainErrorIsNotRetryable(t *testing.T) {
	c := DefaultClassifier()
	if c.IsRetryable(errors.New("boom")) {
		t.Fatalf("an unclassifiable plain error should not be retryable")
	}
}
