package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptConsole answers with a fixed decision, optionally after a number of
// polls, and records what it was asked to render.
type scriptConsole struct {
	decision   Decision
	afterPolls int
	polls      int
	rendered   []string
}

func (console *scriptConsole) Render(summary string) {
	console.rendered = append(console.rendered, summary)
}

func (console *scriptConsole) Decision() Decision {

	console.polls++

	if console.polls <= console.afterPolls {
		return DecisionPending
	}

	return console.decision

}

func TestApprovalGate(t *testing.T) {

	t.Run("approved", func(t *testing.T) {

		gate := approvalGate{timeout: time.Second}
		console := &scriptConsole{decision: DecisionApproved}

		require.NoError(t, gate.await(console, "Sign something"))
		assert.Equal(t, approvalApproved, gate.state)
		assert.Equal(t, []string{"Sign something"}, console.rendered)

	})

	t.Run("approved after pending polls", func(t *testing.T) {

		gate := approvalGate{timeout: time.Second}
		console := &scriptConsole{decision: DecisionApproved, afterPolls: 3}

		require.NoError(t, gate.await(console, "Sign something"))
		assert.Equal(t, approvalApproved, gate.state)
		assert.GreaterOrEqual(t, console.polls, 4)

	})

	t.Run("rejected", func(t *testing.T) {

		gate := approvalGate{timeout: time.Second}
		console := &scriptConsole{decision: DecisionRejected}

		err := gate.await(console, "Sign something")
		assert.ErrorIs(t, err, errUserRejected)
		assert.Equal(t, approvalRejected, gate.state)

	})

	t.Run("timed out", func(t *testing.T) {

		gate := approvalGate{timeout: 10 * time.Millisecond}
		console := &scriptConsole{decision: DecisionPending}

		err := gate.await(console, "Sign something")
		assert.ErrorIs(t, err, errApprovalTimeout)
		assert.Equal(t, approvalTimedOut, gate.state)

	})

	t.Run("gate is reusable after a terminal state", func(t *testing.T) {

		gate := approvalGate{timeout: time.Second}

		err := gate.await(&scriptConsole{decision: DecisionRejected}, "first")
		assert.ErrorIs(t, err, errUserRejected)

		require.NoError(t, gate.await(&scriptConsole{decision: DecisionApproved}, "second"))
		assert.Equal(t, approvalApproved, gate.state)

	})

}
