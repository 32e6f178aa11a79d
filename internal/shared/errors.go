package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upstream call errors. ErrRetryable marks transient failures (rate
	// limits, 5xx responses, network hiccups) that may succeed on retry;
	// everything else is treated as fatal and propagated immediately.
	ErrRetryable          = fmt.Errorf("retryable upstream error")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Absence: modeled as explicit errors so callers can skip the unit of
	// work rather than fail the job.
	ErrJobNotFound      = fmt.Errorf("job not found")
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Job state machine errors
	ErrInvalidTransition = fmt.Errorf("invalid job status transition")
	ErrJobFinished       = fmt.Errorf("job already in a terminal state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
