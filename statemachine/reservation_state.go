package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"bokaap-reservations/models"
)

var (
	ErrUnknownStatus     = errors.New("unknown reservation status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Policy decides how much of the state machine is enforced on status updates.
type Policy string

const (
	// PolicyPermissive stores any non-empty status.
	PolicyPermissive Policy = "permissive"
	// PolicyEnumerated accepts only the known statuses, in any order.
	PolicyEnumerated Policy = "enumerated"
	// PolicyStrict accepts only transitions listed in the table.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPermissive, PolicyEnumerated, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown status policy %q", s)
	}
}

// Transition is a status change the restaurant staff performs.
type Transition struct {
	From models.ReservationStatus `json:"from"`
	To   models.ReservationStatus `json:"to"`
}

var validTransitions = []Transition{
	// staff accepts the booking
	{From: models.StatusPending, To: models.StatusConfirmed},
	// staff cannot accommodate the booking
	{From: models.StatusPending, To: models.StatusCancelled},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

func IsKnown(status models.ReservationStatus) bool {
	for _, s := range models.KnownStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidTransitionsFrom returns all valid next states from a given state.
func ValidTransitionsFrom(status models.ReservationStatus) []models.ReservationStatus {
	var nexts []models.ReservationStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// TerminalStates are the known statuses nothing transitions out of.
func TerminalStates() []models.ReservationStatus {
	var terminal []models.ReservationStatus
	for _, s := range models.KnownStatuses {
		if len(ValidTransitionsFrom(s)) == 0 {
			terminal = append(terminal, s)
		}
	}
	return terminal
}

// CheckStatus validates a target status on its own. It is all a non-strict policy needs.
func CheckStatus(policy Policy, to models.ReservationStatus) error {
	if policy == PolicyPermissive || IsKnown(to) {
		return nil
	}
	return fmt.Errorf("%w %q, expected one of %s", ErrUnknownStatus, to, describe(models.KnownStatuses))
}

// CanTransition checks a status change under the given policy.
func CanTransition(policy Policy, from, to models.ReservationStatus) error {
	if err := CheckStatus(policy, to); err != nil {
		return err
	}
	if policy != PolicyStrict || transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed. Valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.ReservationStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	return describe(nexts)
}

func describe(statuses []models.ReservationStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
