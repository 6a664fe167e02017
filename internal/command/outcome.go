package command

// Outcome is the structured result of exactly one command invocation.
// It is an immutable value; the zero ExitCode means success.
type Outcome struct {
	ExitCode int
	Message  string
	Cause    error
}

// OK returns a success outcome.
func OK() Outcome {
	return Outcome{}
}

// Failed wraps err into a nonzero outcome.
func Failed(err error) Outcome {
	return Outcome{ExitCode: 1, Message: err.Error(), Cause: err}
}

// FailedCode wraps err into an outcome with a specific exit code.
func FailedCode(code int, err error) Outcome {
	return Outcome{ExitCode: code, Message: err.Error(), Cause: err}
}

// Success reports whether the invocation succeeded.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}
