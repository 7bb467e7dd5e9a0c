package pipeline

// Parsing run bookkeeping written by every store.
const (
	// ParserType identifies the rule-based SMS parser in parsing run rows.
	ParserType = "SMS_RULES"

	// ParserVersion is bumped whenever extraction or classification rules change.
	ParserVersion = "v1"

	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"

	// MaxErrorMessageLen caps the error text stored on a failed run.
	MaxErrorMessageLen = 2000

	// DefaultWorkers is the parse concurrency when callers pass zero.
	DefaultWorkers = 4
)

// TruncateError returns err's text cut to MaxErrorMessageLen.
func TruncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > MaxErrorMessageLen {
		msg = msg[:MaxErrorMessageLen]
	}
	return msg
}
