// Package statemachine provides an immutable, generic transition table for
// modelling entity lifecycles.
//
// A Table maps (state, event) pairs to a target state. It holds no "current"
// state of its own; callers keep the state on their entity and ask the table
// for the next one. Because a Table never changes after construction it is
// safe for concurrent use without locking, so one table can govern any number
// of entities.
//
// # Usage
//
//	type Status string
//	type Event string
//
//	lifecycle := statemachine.MustNew(
//		statemachine.WithTransition[Status, Event]("draft", "submit", "in_review"),
//		statemachine.WithTransition[Status, Event]("in_review", "approve", "approved"),
//	)
//
//	next, err := lifecycle.Next("draft", "submit") // "in_review", nil
//	_, err = lifecycle.Next("approved", "submit")  // *ErrNoTransitionAvailable
//
// # Error Handling
//
// Construction fails with ErrDuplicateTransition when the same (state, event)
// pair is declared twice with different targets. Next returns
// *ErrNoTransitionAvailable for undeclared pairs; use
// IsNoTransitionAvailableError to detect it.
package statemachine
