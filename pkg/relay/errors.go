package relay

import (
	"fmt"
	"time"
)

// RateLimitedError signals that the transport refused a send and the
// caller must wait RetryAfter before retrying. It is transient: the
// controller retries the same rendered message without bound.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
