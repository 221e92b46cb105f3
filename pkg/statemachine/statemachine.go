package statemachine

import (
	"fmt"
)

// Transition declares that firing Event while in From moves the entity to To.
type Transition[S, E comparable] struct {
	From  S
	Event E
	To    S
}

// Table is an immutable transition lookup: [from][event] -> to.
type Table[S, E comparable] struct {
	next map[S]map[E]S
}

// Option configures a Table during construction.
type Option[S, E comparable] func(*Table[S, E]) error

// New builds a transition table from the given options.
func New[S, E comparable](opts ...Option[S, E]) (*Table[S, E], error) {
	t := &Table[S, E]{next: make(map[S]map[E]S)}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if len(t.next) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// MustNew works like New but panics on error.
// Lifecycle tables are declared at package init, so a bad table is a programming error.
func MustNew[S, E comparable](opts ...Option[S, E]) *Table[S, E] {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create transition table: %v", err))
	}
	return t
}

// WithTransition declares a single transition.
func WithTransition[S, E comparable](from S, event E, to S) Option[S, E] {
	return func(t *Table[S, E]) error {
		return t.add(from, event, to)
	}
}

// WithTransitions declares several transitions at once.
func WithTransitions[S, E comparable](transitions ...Transition[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		for i, tr := range transitions {
			if err := t.add(tr.From, tr.Event, tr.To); err != nil {
				return fmt.Errorf("transition %d (%v --%v--> %v): %w", i, tr.From, tr.Event, tr.To, err)
			}
		}
		return nil
	}
}

func (t *Table[S, E]) add(from S, event E, to S) error {
	events, ok := t.next[from]
	if !ok {
		events = make(map[E]S)
		t.next[from] = events
	}
	if existing, ok := events[event]; ok && existing != to {
		return ErrDuplicateTransition
	}
	events[event] = to
	return nil
}

// Next returns the state reached by firing event in from.
func (t *Table[S, E]) Next(from S, event E) (S, error) {
	if to, ok := t.next[from][event]; ok {
		return to, nil
	}
	var zero S
	return zero, NewErrNoTransitionAvailable(fmt.Sprint(from), fmt.Sprint(event))
}

// CanFire reports whether event is allowed in from.
func (t *Table[S, E]) CanFire(from S, event E) bool {
	_, ok := t.next[from][event]
	return ok
}
