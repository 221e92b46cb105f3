package jobqueue

import (
	"fmt"

	"github.com/sportolo/jobs/pkg/statemachine"
)

type lifecycleEvent string

const (
	eventClaim      lifecycleEvent = "claim"
	eventSucceed    lifecycleEvent = "succeed"
	eventRetry      lifecycleEvent = "retry"
	eventDeadLetter lifecycleEvent = "dead_letter"
)

// lifecycle is the full set of status transitions a job may take.
// Terminal statuses have no outgoing transitions.
var lifecycle = statemachine.MustNew(
	statemachine.WithTransitions(
		statemachine.Transition[Status, lifecycleEvent]{From: StatusQueued, Event: eventClaim, To: StatusProcessing},
		statemachine.Transition[Status, lifecycleEvent]{From: StatusProcessing, Event: eventSucceed, To: StatusSucceeded},
		statemachine.Transition[Status, lifecycleEvent]{From: StatusProcessing, Event: eventRetry, To: StatusQueued},
		statemachine.Transition[Status, lifecycleEvent]{From: StatusProcessing, Event: eventDeadLetter, To: StatusDeadLetter},
	),
)

// transition moves the job along the lifecycle.
// An undeclared transition means queue bookkeeping is corrupt, which is a bug, so it panics.
func (j *Job) transition(event lifecycleEvent) {
	next, err := lifecycle.Next(j.Status, event)
	if err != nil {
		panic(fmt.Sprintf("jobqueue: job %s: %v", j.ID, err))
	}
	j.Status = next
}
