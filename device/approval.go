package device

import (
	"log/slog"
	"time"
)

// Decision is the external approval signal. The console collaborator answers
// Pending until the user presses a button.
type Decision uint8

const (
	DecisionPending Decision = iota
	DecisionApproved
	DecisionRejected
)

// UserConsole is the display/input collaborator. Render shows a one-line
// summary of the pending operation; Decision is polled by the gate, never
// called concurrently.
type UserConsole interface {
	Render(summary string)
	Decision() Decision
}

// approvalState is the gate's state machine:
//
//	idle -> awaiting -> approved | rejected | timedOut
//
// The terminal state stays set until the next ticket opens; at most one
// ticket is ever outstanding because the dispatcher blocks on await.
type approvalState uint8

const (
	approvalIdle approvalState = iota
	approvalAwaiting
	approvalApproved
	approvalRejected
	approvalTimedOut
)

type approvalGate struct {
	state   approvalState
	timeout time.Duration
}

// await renders the summary and blocks until the console reports a terminal
// decision or the timeout expires. The terminal state stays readable until
// the next ticket is opened. On anything but approval it returns the error
// whose status word the response will carry; the caller discards any derived
// material in that case.
func (gate *approvalGate) await(console UserConsole, summary string) error {

	gate.state = approvalAwaiting

	console.Render(summary)

	slog.Debug("Awaiting approval", "Summary", summary)

	deadline := time.Now().Add(gate.timeout)

	for {

		switch console.Decision() {

		case DecisionApproved:
			gate.state = approvalApproved
			return nil

		case DecisionRejected:
			gate.state = approvalRejected
			return errUserRejected

		}

		if time.Now().After(deadline) {
			gate.state = approvalTimedOut
			return errApprovalTimeout
		}

		time.Sleep(approvalPollInterval)

	}

}
