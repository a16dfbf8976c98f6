package models

import "fmt"

// AttemptStatus is the lifecycle state shared by attempts and attempt answers.
// Both move through the same forward-only machine, but independently: an
// attempt's status is never derived from its answers' statuses.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptGrading    AttemptStatus = "GRADING"
	AttemptGraded     AttemptStatus = "GRADED"
)

// attemptTransitions is the full transition table. GRADED is terminal.
var attemptTransitions = map[AttemptStatus][]AttemptStatus{
	AttemptInProgress: {AttemptSubmitted},
	AttemptSubmitted:  {AttemptGrading, AttemptGraded},
	AttemptGrading:    {AttemptGraded},
	AttemptGraded:     {},
}

func (s AttemptStatus) IsValid() bool {
	_, ok := attemptTransitions[s]
	return ok
}

func (s AttemptStatus) IsInProgress() bool { return s == AttemptInProgress }
func (s AttemptStatus) IsSubmitted() bool  { return s == AttemptSubmitted }
func (s AttemptStatus) IsGrading() bool    { return s == AttemptGrading }
func (s AttemptStatus) IsGraded() bool     { return s == AttemptGraded }

// CanTransitionTo reports whether the machine allows moving to next.
func (s AttemptStatus) CanTransitionTo(next AttemptStatus) bool {
	for _, allowed := range attemptTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates the move and returns the new status.
func (s AttemptStatus) Transition(next AttemptStatus) (AttemptStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("invalid attempt status transition %s -> %s", s, next)
	}
	return next, nil
}
