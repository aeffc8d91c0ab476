package conduit

import (
	"context"
)

// outcomeKind discriminates the terminal states of one drive.
type outcomeKind int

const (
	outcomeDone outcomeKind = iota
	outcomeFailed
	outcomeRestart
)

// driveOutcome is the result of walking a decision list to a terminal
// verdict, or to a restart request that the client trampolines.
type driveOutcome struct {
	kind      outcomeKind
	value     any
	err       error
	decisions []Decision
}

// drive walks the decision list against the current (data, status) pair.
//
// The first decision is popped; if it does not apply it is discarded for
// this cycle, not reinserted. An applying decision produces exactly one
// verdict: ContinueWith replaces the pair and driving proceeds with the
// remaining list, RestartWith returns control to the client for a full
// new send cycle, Fail and Done terminate.
//
// Running out of decisions without a terminal verdict is a programming
// contract violation (every list must end in a decision that always
// applies and terminates, such as ParseInto) and panics rather than
// returning an error.
func (c *Client) drive(
	ctx context.Context,
	req *Request,
	data []byte,
	status int,
	decisions []Decision,
) driveOutcome {
	pending := decisions
	for len(pending) > 0 {
		d := pending[0]
		pending = pending[1:]

		ex := &Exchange{
			Client:    c,
			Request:   req,
			Data:      data,
			Status:    status,
			Decisions: decisions,
		}
		if !d.ShouldApply(ex) {
			continue
		}

		verdict := d.Apply(ctx, ex)
		c.metrics.recordDecisionApplied(ctx, c.baseAttributes(req))
		if c.debug {
			logVerdict(c.logger, d, verdict)
		}

		switch verdict.kind {
		case verdictContinue:
			data, status = verdict.data, verdict.status
		case verdictRestart:
			return driveOutcome{kind: outcomeRestart, decisions: verdict.decisions}
		case verdictError:
			return driveOutcome{kind: outcomeFailed, err: verdict.err}
		case verdictDone:
			return driveOutcome{kind: outcomeDone, value: verdict.value}
		default:
			panic("conduit: decision produced an invalid verdict")
		}
	}
	panic("conduit: decision list exhausted without a terminal verdict")
}
