package providers

import (
	"fmt"
	"net/http"
)

// StatusError is returned when an upstream feed answers with a non-2xx status
type StatusError struct {
	Feed   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status=%d, body=%s", e.Feed, e.Status, e.Body)
}

// Retryable reports whether the request may succeed if repeated
func (e *StatusError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}
