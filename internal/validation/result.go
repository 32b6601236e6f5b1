package validation

// Result is the outcome of validating one field: ok, or a message for the user.
type Result struct {
	message string
	failed  bool
}

func OK() Result {
	return Result{}
}

func Fail(message string) Result {
	return Result{message: message, failed: true}
}

func (r Result) Valid() bool {
	return !r.failed
}

func (r Result) Message() string {
	return r.message
}
