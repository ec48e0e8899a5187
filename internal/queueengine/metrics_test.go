package queueengine

import "testing"

func TestObserveVerdictDoesNotPanic(t *testing.T) {
	observeVerdict(9000, Accept)
	observeVerdict(9000, Drop)
	observeReceiveError(9000)
}
