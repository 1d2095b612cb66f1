package rates

import "fmt"

// StatusError reports a non-2xx response from the rate endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rate endpoint returned status %d", e.Code)
}

// PayloadError reports a response body the cache could not use.
type PayloadError struct {
	Reason string
}

func (e *PayloadError) Error() string {
	return "bad rate payload: " + e.Reason
}
