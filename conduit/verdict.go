package conduit

// verdictKind discriminates the arms of a Verdict.
type verdictKind int

const (
	verdictNone verdictKind = iota

	// Replace the current (data, status) pair and keep driving.
	verdictContinue

	// Abandon the current cycle and re-send with a new decision list.
	verdictRestart

	// Terminate with an error.
	verdictError

	// Terminate with a typed value.
	verdictDone
)

// Verdict is the single outcome produced by a decision's Apply step.
// Exactly one of the four constructors builds each value; the zero
// Verdict is invalid and rejected by the driver.
type Verdict struct {
	kind      verdictKind
	data      []byte
	status    int
	decisions []Decision
	value     any
	err       error
}

// ContinueWith replaces the current response body and status and lets
// the driver proceed with the remaining decisions.
func ContinueWith(data []byte, status int) Verdict {
	return Verdict{kind: verdictContinue, data: data, status: status}
}

// RestartWith abandons response-side processing and hands the given
// decision list back to the client for a full new send cycle. The
// request is rebuilt through its adapters and retransmitted.
func RestartWith(decisions []Decision) Verdict {
	return Verdict{kind: verdictRestart, decisions: decisions}
}

// Fail terminates the chain, surfacing cause to the caller.
func Fail(cause error) Verdict {
	return Verdict{kind: verdictError, err: cause}
}

// Done terminates the chain successfully with the typed result.
func Done(value any) Verdict {
	return Verdict{kind: verdictDone, value: value}
}

// String returns the verdict arm name, for logging.
func (v Verdict) String() string {
	switch v.kind {
	case verdictContinue:
		return "continue"
	case verdictRestart:
		return "restart"
	case verdictError:
		return "error"
	case verdictDone:
		return "done"
	default:
		return "invalid"
	}
}
